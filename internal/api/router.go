package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Carlavier/ai-chat-hub/internal/api/middleware"
	"github.com/Carlavier/ai-chat-hub/internal/handlers"
)

// NewRouter creates and configures the HTTP router. A nil limiter disables
// rate limiting.
func NewRouter(logger zerolog.Logger, h *handlers.Handler, limiter *middleware.RateLimiter) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(8 * 1024)) // 8KB max body
	r.Use(middleware.RequireJSON)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	if limiter != nil {
		r.Use(limiter.Middleware)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/api", h.Root)
	r.Get("/health", h.Health)
	r.Get("/stats", h.Stats)
	r.Get("/bots", h.ListBots)
	r.Get("/who", h.Who)

	r.Route("/chat", func(r chi.Router) {
		r.Get("/", h.GetChat)
		r.Post("/", h.PostChat)
	})

	r.Route("/arena", func(r chi.Router) {
		r.Get("/", h.GetArena)
		r.Delete("/", h.ResetArena)
	})

	r.Route("/room", func(r chi.Router) {
		r.Get("/", h.GetRoom)
		r.Post("/", h.PostRoom)
		r.Delete("/", h.ResetRoom)
	})

	return r
}
