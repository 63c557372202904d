package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/good-yellow-bee/docsentry/internal/api/alerts"
	"github.com/good-yellow-bee/docsentry/internal/api/documents"
	"github.com/good-yellow-bee/docsentry/internal/api/middleware"
	"github.com/good-yellow-bee/docsentry/internal/api/scans"
)

// setupRouter creates and configures the chi router with all routes.
func (s *Server) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	ipLimiter := middleware.NewRateLimiter(s.config.RateLimitPerIP)

	// Global middleware
	r.Use(middleware.RequestLogger(s.config.Verbose))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.PrometheusMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(ipLimiter))

		alertHandler := alerts.NewHandler(s.store, s.dispatcher)
		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", alertHandler.List)
			r.Get("/stats", alertHandler.Stats)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", alertHandler.GetByID)
				r.Put("/status", alertHandler.SetStatus)
				r.Post("/remediate", alertHandler.Remediate)
			})
		})

		scanHandler := scans.NewHandler(s.trigger)
		r.Post("/scans", scanHandler.Create)

		documentHandler := documents.NewHandler(s.store)
		r.Get("/documents", documentHandler.List)
	})

	// Health and metrics (public, no rate limit)
	r.Get("/health", s.healthHandler.Health)
	r.Get("/health/live", s.healthHandler.Live)
	r.Get("/health/ready", s.healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
