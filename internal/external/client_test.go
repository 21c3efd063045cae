package external

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"skyglass/internal/types"

	"github.com/sony/gobreaker/v2"
)

func newTestClient(t *testing.T, opts ...BaseClientOption) *BaseClient {
	t.Helper()
	return NewBaseClient(
		&http.Client{Timeout: 5 * time.Second},
		BreakerSettings{Name: "test-breaker"},
		"Skyglass-Test/1.0",
		opts...,
	)
}

func requireTransportError(t *testing.T, err error) *types.AppError {
	t.Helper()
	var appErr *types.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *types.AppError, got %T: %v", err, err)
	}
	if appErr.Code != types.ErrCodeUpstreamTransport {
		t.Fatalf("expected code %s, got %s", types.ErrCodeUpstreamTransport, appErr.Code)
	}
	return appErr
}

func TestGet_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer server.Close()

	resp, err := newTestClient(t).Get(context.Background(), server.URL+"/current")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}
	if string(resp.Body) != `{"status":"ok"}` {
		t.Errorf("unexpected body: %s", resp.Body)
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("expected content type to be kept, got %q", resp.Header.Get("Content-Type"))
	}
}

func TestGet_InjectsHeaders(t *testing.T) {
	var traceID, ua string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = r.Header.Get("X-B3-TraceId")
		ua = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx := types.WithRequestID(context.Background(), "trace-abc-123")
	if _, err := newTestClient(t).Get(ctx, server.URL); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if traceID != "trace-abc-123" {
		t.Errorf("expected trace ID 'trace-abc-123', got '%s'", traceID)
	}
	if ua != "Skyglass-Test/1.0" {
		t.Errorf("expected User-Agent 'Skyglass-Test/1.0', got '%s'", ua)
	}
}

func TestGet_ServerErrorReturnedWithBody(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"info":"Rate limit reached"}}`))
	}))
	defer server.Close()

	resp, err := newTestClient(t).Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected 5xx to be returned without error, got: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
	if string(resp.Body) != `{"error":{"info":"Rate limit reached"}}` {
		t.Errorf("unexpected body: %s", resp.Body)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("expected exactly 1 upstream call, got %d", n)
	}
}

func TestGet_BreakerDisabledByDefault(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewBaseClient(nil, BreakerSettings{}, "")
	for range 10 {
		if _, err := client.Get(context.Background(), server.URL); err != nil {
			t.Fatalf("expected the 502 to be returned, got: %v", err)
		}
	}

	if n := calls.Load(); n != 10 {
		t.Errorf("expected every call to reach upstream, got %d of 10", n)
	}
	if client.State() != gobreaker.StateClosed {
		t.Errorf("expected a closed state, got %s", client.State())
	}
}

func TestGet_ClientErrorStatusReturned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"info":"nope"}}`))
	}))
	defer server.Close()

	resp, err := newTestClient(t).Get(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected 4xx to be returned without error, got: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestGet_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(t).Get(context.Background(), url)
	appErr := requireTransportError(t, err)
	if appErr.Message != "upstream request failed" {
		t.Errorf("unexpected message: %s", appErr.Message)
	}
}

func TestGet_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	_, err := newTestClient(t, WithTimeout(20*time.Millisecond)).Get(context.Background(), server.URL)
	appErr := requireTransportError(t, err)
	if appErr.Message != "upstream request timed out" {
		t.Errorf("unexpected message: %s", appErr.Message)
	}
}

func TestGet_CallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t).Get(ctx, "http://127.0.0.1:1/never")
	appErr := requireTransportError(t, err)
	if !errors.Is(appErr, context.Canceled) {
		t.Errorf("expected wrapped context.Canceled, got %v", appErr.Err)
	}
}

func TestGet_CircuitBreakerOpens(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewBaseClient(nil, BreakerSettings{Name: "trip", FailureThreshold: 3, OpenTimeout: time.Minute}, "")

	for range 3 {
		resp, err := client.Get(context.Background(), server.URL)
		if err != nil || resp.StatusCode != http.StatusBadGateway {
			t.Fatalf("expected the 502 to be returned, got %v, %v", resp, err)
		}
	}

	before := calls.Load()
	_, err := client.Get(context.Background(), server.URL)
	appErr := requireTransportError(t, err)
	if !errors.Is(appErr, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", appErr.Err)
	}
	if calls.Load() != before {
		t.Error("expected no upstream call while the breaker is open")
	}
}

func TestGet_InvalidURL(t *testing.T) {
	_, err := newTestClient(t).Get(context.Background(), "://bad")
	requireTransportError(t, err)
}

func TestGet_NetworkFailureRedactsQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := server.URL
	server.Close()

	_, err := newTestClient(t).Get(context.Background(), base+"/current?access_key=secret-key&query=Oslo")
	requireTransportError(t, err)

	for e := err; e != nil; e = errors.Unwrap(e) {
		if strings.Contains(e.Error(), "secret-key") {
			t.Fatalf("error chain leaks the query: %v", e)
		}
	}
}
