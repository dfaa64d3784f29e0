package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/sortegrande/linkauth/internal/auth"
)

// CtxIdentityKey is the gin context key holding the authenticated identity.
const CtxIdentityKey = "authIdentity"

// CurrentIdentity returns the identity placed in the request context by the
// identify middleware, or nil when the request is unauthenticated.
func CurrentIdentity(c *gin.Context) *auth.Identity {
	v, ok := c.Get(CtxIdentityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*auth.Identity)
	return identity
}
