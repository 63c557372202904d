// Package api provides the HTTP REST API server.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/good-yellow-bee/docsentry/internal/api/health"
	"github.com/good-yellow-bee/docsentry/internal/api/scans"
	"github.com/good-yellow-bee/docsentry/internal/remediate"
	"github.com/good-yellow-bee/docsentry/internal/store"
)

// Config contains HTTP API server configuration.
type Config struct {
	Address            string
	RateLimitPerIP     int
	HealthCheckTimeout time.Duration // per-sweep budget for readiness checks
	Verbose            bool
}

// SetDefaults applies default values for missing configuration.
func (c *Config) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.RateLimitPerIP == 0 {
		c.RateLimitPerIP = 120 // 120 requests per minute
	}
	if c.HealthCheckTimeout == 0 {
		c.HealthCheckTimeout = 5 * time.Second
	}
}

// Server is the HTTP API server.
type Server struct {
	config        *Config
	store         *store.Store
	dispatcher    *remediate.Dispatcher
	trigger       scans.Trigger
	server        *http.Server
	healthHandler *health.Handler
}

// New creates a new API server.
func New(cfg *Config, st *store.Store, dispatcher *remediate.Dispatcher, trigger scans.Trigger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if st == nil {
		return nil, fmt.Errorf("store is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if trigger == nil {
		return nil, fmt.Errorf("scan trigger is required")
	}

	cfg.SetDefaults()

	s := &Server{
		config:        cfg,
		store:         st,
		dispatcher:    dispatcher,
		trigger:       trigger,
		healthHandler: health.NewHandler(cfg.HealthCheckTimeout),
	}

	s.server = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.setupRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Run starts the HTTP server and blocks until context is canceled.
func (s *Server) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		log.Printf("HTTP API listening on %s", s.config.Address)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("shutting down HTTP API server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Address returns the configured listen address.
func (s *Server) Address() string {
	return s.config.Address
}

// RegisterHealthChecker adds a health checker to the server.
func (s *Server) RegisterHealthChecker(c health.Checker) {
	if s.healthHandler != nil {
		s.healthHandler.RegisterChecker(c)
	}
}
