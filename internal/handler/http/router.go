package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/authd/internal/service"
	"github.com/utafrali/authd/pkg/health"
	"github.com/utafrali/authd/pkg/middleware"
)

// RouterConfig carries the handler-level knobs the router needs.
type RouterConfig struct {
	CORS           CORSConfig
	LoginRateLimit int
	LoginRateBurst int
}

// NewRouter creates a chi router with all auth service routes registered.
func NewRouter(
	applicationService *service.ApplicationService,
	tokenService *service.TokenService,
	userService *service.UserService,
	authorizer ApplicationAuthorizer,
	authenticator UserAuthenticator,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("auth"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	applicationHandler := NewApplicationHandler(applicationService, logger)
	authHandler := NewAuthHandler(tokenService, userService, applicationService, logger)

	// Application registry (admin surface)
	r.Route("/api/v1/applications", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", applicationHandler.CreateApplication)
		r.Get("/", applicationHandler.ListApplications)
		r.Post("/validate", applicationHandler.ValidateApplication)
		r.Get("/{id}", applicationHandler.GetApplication)
		r.Post("/{id}/deactivate", applicationHandler.DeactivateApplication)
		r.Post("/{id}/activate", applicationHandler.ActivateApplication)
		r.Delete("/{id}", applicationHandler.DeleteApplication)
	})

	// Login and refresh, gated by application authorization
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(RequireApplication(authorizer))

		r.With(middleware.RateLimit(cfg.LoginRateLimit, cfg.LoginRateBurst, logger)).
			Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
	})

	// User accounts
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/", authHandler.Register)
		r.With(RequireUser(authenticator)).Get("/me", authHandler.Me)
	})

	return r
}
