// Package server provides the HTTP API server for the audit gateway.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"continuum-hq/continuum/pkg/config"
	"continuum-hq/continuum/pkg/gateway/middleware"
)

// Server is the HTTP front for the analysis API.
type Server struct {
	config       *config.ServerConfig
	api          APIHandlers
	promHandler  http.Handler
	logger       *slog.Logger
	httpServer   *http.Server
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// APIHandlers is the set of endpoint handlers the server routes to.
type APIHandlers interface {
	Root(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	Analyze(w http.ResponseWriter, r *http.Request)
	Feedback(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
	LicenseStatus(w http.ResponseWriter, r *http.Request)
	MetricsSnapshot(w http.ResponseWriter, r *http.Request)
}

// NewServer creates a new API server. promHandler may be nil when the
// Prometheus endpoint is disabled.
func NewServer(cfg *config.ServerConfig, api APIHandlers, promHandler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:       cfg,
		api:          api,
		promHandler:  promHandler,
		logger:       logger.With("component", "server"),
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "address", s.config.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// RequestShutdown asks a blocked Start to shut the server down.
func (s *Server) RequestShutdown() {
	s.shutdownOnce.Do(func() { close(s.shutdownChan) })
}

// Shutdown gracefully shuts down the server, letting in-flight
// requests finish within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	s.logger.Info("API server stopped")
	return nil
}

// Handler builds the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.api.Root)
	mux.HandleFunc("/health", s.api.HealthCheck)
	mux.HandleFunc("POST /api/v1/analyze", s.api.Analyze)
	mux.HandleFunc("POST /api/v1/feedback", s.api.Feedback)
	mux.HandleFunc("GET /api/v1/stats", s.api.Stats)
	mux.HandleFunc("GET /api/v1/license", s.api.LicenseStatus)
	mux.HandleFunc("GET /api/v1/metrics", s.api.MetricsSnapshot)
	if s.promHandler != nil {
		mux.Handle("GET /metrics", s.promHandler)
	}

	var handler http.Handler = mux

	handler = s.limitBody(handler)
	if s.config.CORS.Enabled {
		handler = middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: s.config.CORS.AllowedOrigins,
			MaxAge:         s.config.CORS.MaxAge,
		})(handler)
	}
	handler = middleware.Logging(s.logger)(handler)
	handler = middleware.Recovery(handler)
	handler = middleware.RequestID(handler)

	return handler
}

// limitBody caps request body reads at the configured maximum.
func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.MaxBodyBytes > 0 && r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
		}
		next.ServeHTTP(w, r)
	})
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
