package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/templatehub/template-manager/internal/action"
	"github.com/templatehub/template-manager/internal/auth"
	"github.com/templatehub/template-manager/internal/comment"
	"github.com/templatehub/template-manager/internal/config"
	"github.com/templatehub/template-manager/internal/httputil"
	"github.com/templatehub/template-manager/internal/logging"
	"github.com/templatehub/template-manager/internal/metrics"
	"github.com/templatehub/template-manager/internal/template"
	"github.com/templatehub/template-manager/internal/user"
)

// Handlers bundles the per-domain HTTP handlers the router mounts.
type Handlers struct {
	Auth      *auth.Handler
	Templates *template.Handler
	Comments  *comment.Handler
	Actions   *action.Handler
	Users     *user.Handler
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, h Handlers, authMiddleware *auth.Middleware, logger *logging.Logger) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	// Global middleware
	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(metrics.Middleware)
	r.Use(middleware.Compress(5))

	// Public operational routes
	r.Get("/health", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI - only in development
	if cfg.Server.IsDevelopment() {
		logger.Info("swagger UI enabled", "path", "/swagger/*")
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	isAdmin := func(req *http.Request) bool {
		identity, ok := auth.IdentityFromContext(req.Context())
		return ok && identity.Role == user.RoleAdmin
	}

	r.Route("/api", func(r chi.Router) {
		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Get("/verify", h.Auth.Verify)
			r.Post("/forgot-password", h.Auth.ForgotPassword)
			r.Post("/reset-password", h.Auth.ResetPassword)
		})

		// Template routes: reads are public, writes need a session
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", h.Templates.List)
			r.Get("/{id}", h.Templates.Get)
			r.Get("/{id}/versions", h.Templates.ListVersions)
			r.Post("/{id}/view", h.Templates.RecordView)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAuth)
				r.Post("/", h.Templates.Create)
				r.Put("/{id}", h.Templates.Update)
				r.Delete("/{id}", h.Templates.Delete)
			})
		})

		// Comment routes
		r.Route("/comments", func(r chi.Router) {
			r.Get("/template/{templateId}", h.Comments.ListByTemplate)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAuth)
				r.Post("/", h.Comments.Create)
				r.Put("/{id}", h.Comments.Update)
				r.Delete("/{id}", h.Comments.Delete)
			})
		})

		// User-action routes
		r.Route("/user-actions", func(r chi.Router) {
			r.Get("/user/{userId}", h.Actions.ListByUser)
			r.Get("/user/{userId}/target/{targetId}/type/{actionType}", h.Actions.Get)
			r.Get("/target/{targetId}/type/{actionType}/count", h.Actions.Count)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.RequireAuth)
				r.Post("/", h.Actions.Create)
				r.Delete("/user/{userId}/target/{targetId}/type/{actionType}", h.Actions.Delete)
			})
		})

		// User routes (all require a session; listing is admin only)
		r.Route("/users", func(r chi.Router) {
			r.Use(authMiddleware.RequireAuth)
			r.With(authMiddleware.RequireRole(user.RoleAdmin)).Get("/", h.Users.List)
			r.Get("/{id}", h.Users.Get)
			r.Put("/{id}", h.Users.Update(isAdmin))
		})
	})

	return r
}

// handleHealth is a simple health check endpoint
// @Summary      Health check
// @Description  Check if the API is running
// @Tags         health
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /health [get]
func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
