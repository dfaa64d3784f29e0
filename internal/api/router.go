package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/sortegrande/linkauth/internal/app"
	iauth "github.com/sortegrande/linkauth/internal/auth"
	"github.com/sortegrande/linkauth/internal/handlers"
	"github.com/sortegrande/linkauth/internal/middleware"
	"github.com/sortegrande/linkauth/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(
	db *gorm.DB,
	links *services.MagicLinkService,
	users *services.UserService,
	sessions *iauth.SessionService,
	cfg *app.Config,
	rates middleware.RateStore,
) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if links == nil {
		return nil, fmt.Errorf("magic link service must be provided")
	}
	if users == nil {
		return nil, fmt.Errorf("user service must be provided")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	r.Use(middleware.RateLimit(rates, cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window))

	r.GET("/health", handlers.Health(db))

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(links, sessions, users, handlers.AuthConfig{
		CookieDomain:    cfg.Server.Cookie.Domain,
		CookieSecure:    cfg.Server.Cookie.Secure,
		SuccessRedirect: cfg.Auth.SuccessRedirect,
		ErrorRedirect:   cfg.Auth.ErrorRedirect,
	})

	auth := r.Group("/api/auth")
	auth.Use(middleware.Identify(sessions))
	{
		auth.POST("/request-link", authHandler.RequestLink)
		auth.GET("/callback", authHandler.Callback)
		auth.GET("/session", authHandler.Session)
		auth.POST("/logout", authHandler.Logout)
	}

	return r, nil
}
