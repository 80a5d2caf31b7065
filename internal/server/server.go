// Package server exposes the HTTP API: paper ingest and lookup, digest
// creation and polling, and settings management. Digest processing itself
// happens on the worker pool; handlers only enqueue work and read state.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"scholarly/internal/config"
	"scholarly/internal/logger"
	"scholarly/internal/persistence"
	"scholarly/internal/pipeline"
	"scholarly/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	store      persistence.Store
	runner     *pipeline.Runner
	pool       *worker.Pool
	config     config.Server
	timeout    time.Duration
	log        *slog.Logger
}

// New creates a new HTTP server instance
func New(store persistence.Store, runner *pipeline.Runner, pool *worker.Pool, cfg config.Server) *Server {
	timeout, err := time.ParseDuration(cfg.RequestTimeout)
	if err != nil || timeout <= 0 {
		timeout = 60 * time.Second
	}

	s := &Server{
		router:  chi.NewRouter(),
		store:   store,
		runner:  runner,
		pool:    pool,
		config:  cfg,
		timeout: timeout,
		log:     logger.Get(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.timeout))

	if len(s.config.AllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Link"},
			AllowCredentials: false,
			MaxAge:           300, // Maximum value not ignored by any major browsers
		}))
	}
}

// setupRoutes configures routes for the server
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Papers API
		r.Route("/papers", func(r chi.Router) {
			r.Get("/", s.handleListPapers)
			r.Post("/", s.handleIngestPapers)
			r.Get("/{id}", s.handleGetPaper)
			r.Delete("/{id}", s.handleDeletePaper)
		})

		// Digests API
		r.Route("/digests", func(r chi.Router) {
			r.Get("/", s.handleListDigests)
			r.Post("/", s.handleCreateDigest)
			r.Get("/{id}", s.handleGetDigest)
			r.Post("/{id}/regenerate", s.handleRegenerateDigest)
			r.Delete("/{id}", s.handleDeleteDigest)
		})

		// Settings API
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", s.handleGetSettings)
			r.Put("/", s.handleUpdateSettings)
			r.Put("/credibility-weights", s.handleUpdateWeights)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"request_timeout", s.timeout,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server gracefully...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("HTTP server stopped")
	return nil
}

// Router returns the chi router instance (useful for testing)
func (s *Server) Router() *chi.Mux {
	return s.router
}
