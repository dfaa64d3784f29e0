package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/sortegrande/linkauth/internal/auth"
	"github.com/sortegrande/linkauth/internal/handlers"
	"github.com/sortegrande/linkauth/pkg/errors"
	"github.com/sortegrande/linkauth/pkg/response"
)

// Identify resolves the session credential from the session cookie or a
// bearer token and, when valid, places the identity in the request context.
// It never aborts: unauthenticated requests proceed with no identity, which
// lets endpoints like session introspection treat "no session" as a normal
// state rather than an error.
func Identify(sessions *iauth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := extractCredential(c)
		if credential != "" {
			if identity, err := sessions.Validate(credential); err == nil {
				c.Set(handlers.CtxIdentityKey, identity)
			}
		}
		c.Next()
	}
}

// RequireAuth enforces a valid session credential. All failure modes
// (missing, malformed, bad signature, expired) are reported uniformly.
func RequireAuth(sessions *iauth.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := extractCredential(c)
		if credential == "" {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		identity, err := sessions.Validate(credential)
		if err != nil {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(handlers.CtxIdentityKey, identity)
		c.Next()
	}
}

func extractCredential(c *gin.Context) string {
	if cookie, err := c.Cookie(handlers.SessionCookieName); err == nil && cookie != "" {
		return cookie
	}

	authz := c.GetHeader("Authorization")
	if len(authz) >= 8 && strings.EqualFold(authz[:7], "Bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return ""
}
