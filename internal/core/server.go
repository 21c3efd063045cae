// Package core provides the HTTP chassis for the weather proxy. It builds a
// chi router that serves both standard HTTP (local development) and AWS
// Lambda proxy integration (via chiadapter), and applies the cross-cutting
// concerns (panic recovery, request IDs, logging, CORS, metrics and
// compression) before requests reach the proxy handler.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"skyglass/internal/config"
)

// MetricsCollector records API telemetry. Implementations publish
// types.MetricAPILatency and types.MetricAPIRequestCount.
type MetricsCollector interface {
	RecordRequest(method, endpoint, status string, duration time.Duration)
}

// RouteRegistrar mounts handler routes onto the router. Registrars are
// supplied by the entry point so core does not import handler packages.
type RouteRegistrar func(r chi.Router)

// Server holds the proxy's HTTP dependencies.
type Server struct {
	Config          *config.ProxyConfig
	Logger          *slog.Logger
	Metrics         MetricsCollector
	HealthProbes    []HealthProbe
	RouteRegistrars []RouteRegistrar

	router *chi.Mux
}

// NewServer validates the critical dependencies and prepares an empty router.
// Callers add registrars and probes, then call MountRoutes.
func NewServer(cfg *config.ProxyConfig, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	return &Server{
		Config: cfg,
		Logger: logger,
		router: chi.NewRouter(),
	}, nil
}

// Handler returns the router as an http.Handler.
// Used by http.Server (local) and chiadapter.New (Lambda).
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown releases server resources. The proxy holds no connections of its
// own, so this only flushes a metrics collector that buffers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutdown initiated")

	if flusher, ok := s.Metrics.(interface{ Flush(context.Context) error }); ok {
		if err := flusher.Flush(ctx); err != nil {
			s.Logger.Error("error flushing metrics", "error", err)
			return fmt.Errorf("flushing metrics: %w", err)
		}
	}

	s.Logger.Info("server shutdown complete")
	return nil
}
