package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sortegrande/linkauth/internal/app"
	iauth "github.com/sortegrande/linkauth/internal/auth"
	"github.com/sortegrande/linkauth/internal/database/testutil"
	"github.com/sortegrande/linkauth/internal/handlers"
	"github.com/sortegrande/linkauth/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type routerFixture struct {
	db     *gorm.DB
	links  *services.MagicLinkService
	router *gin.Engine
}

func newRouterFixture(t *testing.T, mutate func(cfg *app.Config)) *routerFixture {
	t.Helper()

	db := testutil.MustOpenTestDB(t)

	users, err := services.NewUserService(db)
	require.NoError(t, err)

	links, err := services.NewMagicLinkService(db, users, nil,
		services.WithBaseURL("http://localhost:8000"),
	)
	require.NoError(t, err)

	cfg, err := app.LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.Auth.JWT.Secret = "router-test-secret"
	cfg.Monitoring.Prometheus.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	sessions, err := iauth.NewSessionService(cfg.Auth.SessionServiceConfig())
	require.NoError(t, err)

	router, err := NewRouter(db, links, users, sessions, cfg, nil)
	require.NoError(t, err)

	return &routerFixture{db: db, links: links, router: router}
}

func (f *routerFixture) get(target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)
	return recorder
}

func TestRouterRequiresDependencies(t *testing.T) {
	_, err := NewRouter(nil, nil, nil, nil, nil, nil)
	require.Error(t, err)
}

func TestHealthEndpoint(t *testing.T) {
	f := newRouterFixture(t, nil)

	recorder := f.get("/health")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), `"status":"ok"`)
	require.Contains(t, recorder.Body.String(), `"database":"ok"`)
}

func TestMetricsEndpointWhenEnabled(t *testing.T) {
	f := newRouterFixture(t, func(cfg *app.Config) {
		cfg.Monitoring.Prometheus.Enabled = true
	})

	recorder := f.get("/metrics")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "go_goroutines")
}

func TestLoginFlowEndToEnd(t *testing.T) {
	f := newRouterFixture(t, nil)

	// Request a link through the API.
	req := httptest.NewRequest(http.MethodPost, "/api/auth/request-link",
		strings.NewReader(`{"email":"flow@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	f.router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)

	// The link travels by email; re-issue directly to capture it here.
	link, err := f.links.Issue(context.Background(), "flow@example.com")
	require.NoError(t, err)
	parsed, err := url.Parse(link)
	require.NoError(t, err)

	callback := f.get("/api/auth/callback?" + parsed.RawQuery)
	require.Equal(t, http.StatusFound, callback.Code)
	require.Equal(t, "/dashboard", callback.Header().Get("Location"))

	var session *http.Cookie
	for _, cookie := range callback.Result().Cookies() {
		if cookie.Name == handlers.SessionCookieName {
			session = cookie
		}
	}
	require.NotNil(t, session)

	// The session cookie authenticates introspection.
	who := f.get("/api/auth/session", session)
	require.Equal(t, http.StatusOK, who.Code)
	require.Contains(t, who.Body.String(), "flow@example.com")

	// Redeeming the same link again fails closed.
	replay := f.get("/api/auth/callback?" + parsed.RawQuery)
	require.Equal(t, "/login?error=Verification", replay.Header().Get("Location"))
}

func TestRouterAppliesRateLimitHeaders(t *testing.T) {
	f := newRouterFixture(t, func(cfg *app.Config) {
		cfg.Server.RateLimit.Requests = 5
		cfg.Server.RateLimit.Window = time.Minute
	})

	recorder := f.get("/health")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "5", recorder.Header().Get("X-RateLimit-Limit"))
}

func TestRouterSecurityHeadersOnEveryRoute(t *testing.T) {
	f := newRouterFixture(t, nil)

	recorder := f.get("/api/auth/session")
	require.Equal(t, "nosniff", recorder.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
}
