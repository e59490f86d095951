package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vitorvieirah/projeto-importacao-irisk/internal/handler"
	"github.com/vitorvieirah/projeto-importacao-irisk/internal/middleware"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler           *handler.Handler
	InspectionHandler *handler.InspectionHandler
	StatsHandler      *handler.StatsHandler

	Recovery        func(http.Handler) http.Handler
	Logging         func(http.Handler) http.Handler
	AuthMiddleware  func(http.Handler) http.Handler
	GlobalRateLimit func(http.Handler) http.Handler
	BulkRateLimit   func(http.Handler) http.Handler

	AllowedOrigins []string
	TrustProxy     bool
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	use(r, cfg.Recovery)
	r.Use(middleware.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.SecurityHeaders)
	use(r, cfg.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg.AllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// PUBLIC routes (no auth required)
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
		r.Get("/api/v1/health", cfg.Handler.Health)
		r.Get("/api/v1/ready", cfg.Handler.Ready)
	}

	// AUTHENTICATED routes (use Group to apply auth middleware only to these)
	r.Group(func(r chi.Router) {
		use(r, cfg.GlobalRateLimit)
		use(r, cfg.AuthMiddleware)

		inspectionRoutes(r, cfg)

		r.Route("/api/v1", func(r chi.Router) {
			inspectionRoutes(r, cfg)

			if cfg.StatsHandler != nil {
				r.Get("/stats", cfg.StatsHandler.GetStats)
			}
		})
	})

	return r
}

// inspectionRoutes mounts the inspection endpoints on r.
func inspectionRoutes(r chi.Router, cfg Config) {
	if cfg.InspectionHandler == nil {
		return
	}

	r.Route("/inspections", func(r chi.Router) {
		r.Get("/", cfg.InspectionHandler.List)
		r.With(optional(cfg.BulkRateLimit)).Post("/bulk", cfg.InspectionHandler.BulkCreate)
	})
}

func use(r chi.Router, mw func(http.Handler) http.Handler) {
	if mw != nil {
		r.Use(mw)
	}
}

// optional turns a nil middleware into a pass-through.
func optional(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:5173"}
	}
	return origins
}
