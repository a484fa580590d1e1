// Copyright The Signalworks Authors.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/signalworks/subscription-gateway/internal/service"
	"github.com/signalworks/subscription-gateway/pkg/constants"
	"github.com/signalworks/subscription-gateway/pkg/log"
)

// ReadinessCheck reports whether a named dependency can serve traffic
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Config holds the configuration for the HTTP server
type Config struct {
	// ListenAddr is the address the HTTP server binds to
	ListenAddr string
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		ListenAddr: ":8080",
	}
}

// NewConfigFromEnv creates a Config from environment variables
func NewConfigFromEnv() Config {
	config := DefaultConfig()

	if addr := os.Getenv(constants.EnvGatewayListenAddr); addr != "" {
		config.ListenAddr = addr
	}

	return config
}

// Server is the gateway's HTTP server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	workflow   service.SubscriptionWorkflow
	config     Config
	checks     []ReadinessCheck
}

// NewServer creates a new HTTP server for the subscription gateway
func NewServer(workflow service.SubscriptionWorkflow, cfg Config, checks ...ReadinessCheck) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		workflow: workflow,
		config:   cfg,
		checks:   checks,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/subscribe", s.handleSubscribe)
	s.router.Get("/livez", s.handleLivez)
	s.router.Get("/readyz", s.handleReadyz)
}

// loggingMiddleware logs HTTP requests with the request ID attached to the
// context for downstream log correlation
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := middleware.GetReqID(r.Context())
		ctx := log.AppendCtx(r.Context(), slog.String("request_id", requestID))
		w.Header().Set(constants.RequestIDHeader, requestID)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		slog.InfoContext(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"bytes", ww.BytesWritten(),
			"remote_addr", r.RemoteAddr,
		)
	})
}

// Handler returns the server's HTTP handler, wrapped for tracing
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "subscription-gateway")
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("starting HTTP server", "addr", s.config.ListenAddr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down HTTP server")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
