package core

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"skyglass/internal/config"
)

type mockHealthProbe struct {
	name      string
	checkErr  error
	delay     time.Duration
	checkFunc func(ctx context.Context) error
	called    atomic.Bool
}

func (m *mockHealthProbe) Name() string { return m.name }

func (m *mockHealthProbe) Check(ctx context.Context) error {
	m.called.Store(true)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.checkFunc != nil {
		return m.checkFunc(ctx)
	}
	return m.checkErr
}

func newTestConfig() *config.ProxyConfig {
	cfg := &config.ProxyConfig{Environment: "local"}
	cfg.Security.CorsAllowedOrigins = []string{"*"}
	cfg.Build = config.BuildInfo{Version: "test"}
	return cfg
}

func newTestServerForHealth(probes ...HealthProbe) *Server {
	srv, _ := NewServer(newTestConfig(), slog.New(slog.DiscardHandler))
	srv.HealthProbes = probes
	return srv
}

func decodeHealth(t *testing.T, w *httptest.ResponseRecorder) healthResponse {
	t.Helper()
	var body healthResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	return body
}

func TestHandleHealth_NoProbes(t *testing.T) {
	srv := newTestServerForHealth()
	w := httptest.NewRecorder()
	srv.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeHealth(t, w)
	if body.Status != "healthy" {
		t.Errorf("expected healthy, got %q", body.Status)
	}
	if body.Version != "test" {
		t.Errorf("expected version 'test', got %q", body.Version)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
}

func TestHandleHealth_AllHealthy(t *testing.T) {
	a := &mockHealthProbe{name: "upstream"}
	b := &mockHealthProbe{name: "credential"}
	srv := newTestServerForHealth(a, b)

	w := httptest.NewRecorder()
	srv.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decodeHealth(t, w)
	if len(body.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(body.Components))
	}
	if !a.called.Load() || !b.called.Load() {
		t.Error("expected every probe to be called")
	}
}

func TestHandleHealth_OneUnhealthy(t *testing.T) {
	srv := newTestServerForHealth(
		&mockHealthProbe{name: "upstream", checkErr: errors.New("breaker open")},
		&mockHealthProbe{name: "credential"},
	)

	w := httptest.NewRecorder()
	srv.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	body := decodeHealth(t, w)
	if body.Status != "unhealthy" {
		t.Errorf("expected unhealthy, got %q", body.Status)
	}
	if got := body.Components["upstream"]; got.Status != "unhealthy" || got.Message != "breaker open" {
		t.Errorf("unexpected upstream component: %+v", got)
	}
	if got := body.Components["credential"]; got.Status != "healthy" {
		t.Errorf("unexpected credential component: %+v", got)
	}
}

func TestHandleHealth_Timeout(t *testing.T) {
	srv := newTestServerForHealth(&mockHealthProbe{
		name: "slow",
		checkFunc: func(ctx context.Context) error {
			<-ctx.Done()
			time.Sleep(50 * time.Millisecond)
			return nil
		},
	})

	start := time.Now()
	w := httptest.NewRecorder()
	srv.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if elapsed := time.Since(start); elapsed > healthCheckTimeout+time.Second {
		t.Errorf("health check took too long: %v", elapsed)
	}
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	body := decodeHealth(t, w)
	if got := body.Components["slow"]; got.Message != "health check timed out" {
		t.Errorf("expected timeout message, got %+v", got)
	}
}

func TestHandleHealth_ProbePanic(t *testing.T) {
	srv := newTestServerForHealth(&mockHealthProbe{
		name:      "boom",
		checkFunc: func(context.Context) error { panic("kaboom") },
	})

	w := httptest.NewRecorder()
	srv.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	body := decodeHealth(t, w)
	if got := body.Components["boom"]; got.Message != "probe panicked: kaboom" {
		t.Errorf("unexpected component: %+v", got)
	}
}

func TestNewServer_RejectsNilDependencies(t *testing.T) {
	if _, err := NewServer(nil, slog.Default()); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := NewServer(newTestConfig(), nil); err == nil {
		t.Error("expected error for nil logger")
	}
}

type flushingMetrics struct {
	recordingMetrics
	flushed bool
	err     error
}

func (f *flushingMetrics) Flush(context.Context) error {
	f.flushed = true
	return f.err
}

func TestShutdown_FlushesMetrics(t *testing.T) {
	srv := newTestServerForHealth()
	m := &flushingMetrics{}
	srv.Metrics = m

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.flushed {
		t.Error("expected Flush to be called")
	}

	m.err = errors.New("throttled")
	if err := srv.Shutdown(context.Background()); err == nil {
		t.Error("expected flush error to propagate")
	}
}
