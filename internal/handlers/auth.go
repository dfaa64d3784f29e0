package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	iauth "github.com/sortegrande/linkauth/internal/auth"
	"github.com/sortegrande/linkauth/internal/services"
	appErrors "github.com/sortegrande/linkauth/pkg/errors"
	"github.com/sortegrande/linkauth/pkg/metrics"
	"github.com/sortegrande/linkauth/pkg/response"
)

// SessionCookieName carries the signed session credential.
const SessionCookieName = "linkauth_session"

// AuthConfig tunes cookie and redirect behaviour of the auth handlers.
type AuthConfig struct {
	CookieDomain    string
	CookieSecure    bool
	SuccessRedirect string
	ErrorRedirect   string
}

// AuthHandler exposes the magic-link flow over HTTP: request a link, redeem
// it, introspect the resulting session, sign out.
type AuthHandler struct {
	links    *services.MagicLinkService
	sessions *iauth.SessionService
	users    *services.UserService
	cfg      AuthConfig
}

// NewAuthHandler wires the handler with its collaborators.
func NewAuthHandler(links *services.MagicLinkService, sessions *iauth.SessionService, users *services.UserService, cfg AuthConfig) *AuthHandler {
	if cfg.SuccessRedirect == "" {
		cfg.SuccessRedirect = "/dashboard"
	}
	if cfg.ErrorRedirect == "" {
		cfg.ErrorRedirect = "/login?error=Verification"
	}
	return &AuthHandler{links: links, sessions: sessions, users: users, cfg: cfg}
}

type requestLinkRequest struct {
	Email string `json:"email" validate:"required,max=254"`
}

// POST /api/auth/request-link
func (h *AuthHandler) RequestLink(c *gin.Context) {
	var req requestLinkRequest
	if !bindAndValidate(c, &req) {
		metrics.LinkRequests.WithLabelValues("invalid_email").Inc()
		return
	}

	_, err := h.links.Issue(c.Request.Context(), req.Email)
	switch {
	case err == nil:
		metrics.LinkRequests.WithLabelValues("sent").Inc()
		response.Success(c, http.StatusOK, gin.H{"accepted": true})
	case errors.Is(err, services.ErrInvalidIdentifier):
		metrics.LinkRequests.WithLabelValues("invalid_email").Inc()
		response.Error(c, appErrors.ErrInvalidIdentifier)
	case errors.Is(err, services.ErrRateLimited):
		metrics.LinkRequests.WithLabelValues("rate_limited").Inc()
		response.Error(c, appErrors.ErrRateLimit)
	case errors.Is(err, services.ErrDeliveryFailed):
		metrics.LinkRequests.WithLabelValues("delivery_failed").Inc()
		response.Error(c, appErrors.ErrDeliveryFailed)
	default:
		metrics.LinkRequests.WithLabelValues("error").Inc()
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
	}
}

// GET /api/auth/callback?token=...&email=...
func (h *AuthHandler) Callback(c *gin.Context) {
	token := c.Query("token")
	email := c.Query("email")

	identity, err := h.links.Verify(c.Request.Context(), email, token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			metrics.Redemptions.WithLabelValues("expired").Inc()
		case errors.Is(err, services.ErrTokenNotFound):
			metrics.Redemptions.WithLabelValues("not_found").Inc()
		default:
			metrics.Redemptions.WithLabelValues("error").Inc()
		}
		// Not-found and expired redirect identically so the endpoint does
		// not leak whether a token ever existed.
		c.Redirect(http.StatusFound, h.cfg.ErrorRedirect)
		return
	}

	credential, err := h.sessions.Issue(*identity)
	if err != nil {
		metrics.Redemptions.WithLabelValues("error").Inc()
		c.Redirect(http.StatusFound, h.cfg.ErrorRedirect)
		return
	}

	metrics.Redemptions.WithLabelValues("success").Inc()
	metrics.SessionsIssued.Inc()

	h.setSessionCookie(c, credential, int(h.sessions.TTL().Seconds()))
	c.Redirect(http.StatusFound, h.cfg.SuccessRedirect)
}

// GET /api/auth/session
// Unauthenticated is not an error: the payload carries a null user.
func (h *AuthHandler) Session(c *gin.Context) {
	identity := CurrentIdentity(c)
	if identity == nil {
		response.Success(c, http.StatusOK, gin.H{"user": nil})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), identity.UserID)
	if err != nil {
		// Credential is valid but the user row is gone (administrative
		// deletion); report unauthenticated rather than erroring.
		response.Success(c, http.StatusOK, gin.H{"user": nil})
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// POST /api/auth/logout
// Sign-out is a client-side action in the stateless model: the server only
// clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setSessionCookie(c, "", -1)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, value, maxAge, "/", h.cfg.CookieDomain, h.cfg.CookieSecure, true)
}
