package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/pitaya-nails-booking/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/pitaya-nails-booking/internal/http/middleware"
	"github.com/wolfman30/pitaya-nails-booking/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger              *logging.Logger
	CatalogHandler      *handlers.CatalogHandler
	AvailabilityHandler *handlers.AvailabilityHandler
	SessionsHandler     *handlers.SessionsHandler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string

	// RateLimiter throttles the /api routes per client IP (optional)
	RateLimiter *httpmiddleware.RateLimiter
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if cfg.RateLimiter != nil {
			api.Use(cfg.RateLimiter.Middleware)
		}
		if cfg.CatalogHandler != nil {
			api.Get("/services", cfg.CatalogHandler.ListServices)
			api.Get("/team", cfg.CatalogHandler.ListTeam)
		}
		if cfg.AvailabilityHandler != nil {
			api.Get("/availability", cfg.AvailabilityHandler.GetSlots)
			api.Get("/availability/month", cfg.AvailabilityHandler.GetMonth)
		}
		if cfg.SessionsHandler != nil {
			api.Mount("/sessions", cfg.SessionsHandler.Routes())
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
