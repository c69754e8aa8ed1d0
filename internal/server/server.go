package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	mdwlog "github.com/msto63/recordpad/foundation/core/log"
	"github.com/msto63/recordpad/foundation/recdef"
	"github.com/msto63/recordpad/internal/analyzer/service"
	"github.com/msto63/recordpad/internal/health"
	"github.com/msto63/recordpad/internal/server/handler"
)

// Server is the recordpad HTTP server
type Server struct {
	httpServer *http.Server
	service    *service.Service
	health     *health.Registry
	logger     *mdwlog.Logger
	config     Config
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Version      string
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:         "127.0.0.1",
		Port:         8420,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		Version:      "dev",
	}
}

// New creates a new server around an analysis service
func New(cfg Config, svc *service.Service, logger *mdwlog.Logger) *Server {
	if logger == nil {
		logger = mdwlog.GetDefault()
	}
	logger = logger.WithField("component", "server")

	registry := health.NewRegistry("recordpad", cfg.Version)
	registry.Register(health.ErrorCheck("catalogue", false, func(ctx context.Context) error {
		for _, locale := range recdef.Locales() {
			if _, err := svc.Translator(locale); err != nil {
				return err
			}
		}
		return nil
	}))
	registry.Register(health.ErrorCheck("history", true, func(ctx context.Context) error {
		_, err := svc.Stats(ctx)
		return err
	}))

	h := handler.NewHandler(cfg.Version, svc, registry, logger)
	wsHandler := handler.NewWebSocketHandler(svc, logger)

	mux := http.NewServeMux()

	// WebSocket route
	mux.Handle("/api/v1/analyze/ws", wsHandler)

	// API routes
	mux.Handle("/health", h)
	mux.Handle("/api/v1/", h)
	mux.Handle("/api/v1", h)

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)),
		Handler:      loggingMiddleware(logger, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		httpServer: httpServer,
		service:    svc,
		health:     registry,
		logger:     logger,
		config:     cfg,
	}
}

// Handler returns the root handler, including request logging
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *mdwlog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		fields := mdwlog.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   wrapper.statusCode,
			"duration": time.Since(start).String(),
		}
		if id := r.Header.Get(handler.RequestIDHeader); id != "" {
			fields["request_id"] = id
		}
		logger.Info("HTTP request", fields)
	})
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController and the WebSocket upgrader reach
// the underlying writer
func (w *responseWrapper) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Hijack implements http.Hijacker for WebSocket upgrades
func (w *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.statusCode = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting recordpad server", mdwlog.Fields{
		"address": s.Address(),
		"version": s.config.Version,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run starts the server and shuts it down gracefully when ctx is done
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Stop(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping recordpad server")
	return s.httpServer.Shutdown(ctx)
}

// Address returns the server address
func (s *Server) Address() string {
	return s.httpServer.Addr
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}
