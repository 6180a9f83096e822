package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amaracare/careops-backend/api/controllers"
	"github.com/amaracare/careops-backend/api/middleware"
	"github.com/amaracare/careops-backend/internal/access"
	"github.com/amaracare/careops-backend/internal/auth"
	"github.com/amaracare/careops-backend/pkg/auth/session"
	"github.com/amaracare/careops-backend/pkg/config"
	"github.com/amaracare/careops-backend/pkg/enums"
	"github.com/amaracare/careops-backend/pkg/logger"
	"github.com/amaracare/careops-backend/pkg/metrics"
	"github.com/amaracare/careops-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(ctx context.Context, userID, oldAccessID, provided string) (string, string, error)
}

// Params bundles everything the router needs.
type Params struct {
	Config       *config.Config
	Logger       *logger.Logger
	Redis        *redis.Client
	Sessions     sessionManager
	AuthService  auth.Service
	Policy       *access.Policy
	Guard        *access.Guard
	AuthMetrics  *metrics.AuthMetrics
	Readiness    map[string]controllers.Pinger
	PromRegistry *prometheus.Registry
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Readiness))
	})

	if p.PromRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.PromRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).
			Post("/login", controllers.AuthLogin(p.AuthService, p.AuthMetrics, logg))
		r.Post("/logout", controllers.AuthLogout(p.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.Sessions, cfg.JWT, logg))
		r.Get("/session", controllers.AuthSession(p.AuthService, logg))
	})

	// Route authorization takes the caller's token when present but never
	// requires one, so the auth middleware stays off this endpoint.
	r.Get("/api/v1/navigation/authorize", controllers.NavigationAuthorize(p.AuthService, p.Guard, logg))

	// Profile edits are open to every portal role; the route guard rejects
	// tokens carrying a role outside the policy table.
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.RouteGuard(p.Policy, "/profile", logg))
		r.Patch("/{id}", controllers.UsersUpdate(p.AuthService, logg))
	})

	r.Route("/api/admin/v1/users", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))
		r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
		r.Patch("/{id}/role", controllers.AdminSetRole(p.AuthService, logg))
		r.Patch("/{id}/active", controllers.AdminSetActive(p.AuthService, logg))
	})

	return r
}
