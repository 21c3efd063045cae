package core

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newMountedServer(t *testing.T, gzip bool, registrars ...RouteRegistrar) *Server {
	t.Helper()
	srv := newTestServerForMiddleware(t)
	srv.Config.Security.EnableGzip = gzip
	srv.RouteRegistrars = registrars
	srv.MountRoutes()
	return srv
}

func TestMountRoutes_HealthAndRegistrars(t *testing.T) {
	srv := newMountedServer(t, false, func(r chi.Router) {
		r.Get("/api/weather", func(w http.ResponseWriter, r *http.Request) {
			JSON(w, r, http.StatusOK, map[string]bool{"ok": true})
		})
	})

	for _, path := range []string{"/health", "/api/weather"} {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestMountRoutes_NotFoundCarriesCORS(t *testing.T) {
	srv := newMountedServer(t, false)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS headers on 404")
	}
	if got := rec.Body.String(); got != `{"error":"Not found"}` {
		t.Errorf("unexpected body: %s", got)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	srv := newMountedServer(t, false)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	generated := rec.Header().Get("X-Request-Id")
	if len(generated) != 36 {
		t.Errorf("expected a UUID request ID, got %q", generated)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "caller-supplied")
	srv.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got != "caller-supplied" {
		t.Errorf("expected propagated request ID, got %q", got)
	}
}

func TestMountRoutes_GzipLargeBodies(t *testing.T) {
	payload := `{"data":"` + strings.Repeat("x", 4096) + `"}`
	register := func(r chi.Router) {
		r.Get("/big", func(w http.ResponseWriter, r *http.Request) {
			Raw(w, http.StatusOK, []byte(payload))
		})
	}

	srv := newMountedServer(t, true, register)
	req := httptest.NewRequest(http.MethodGet, "/big", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip encoding, got headers %v", rec.Header())
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	got, _ := io.ReadAll(zr)
	if string(got) != payload {
		t.Error("decompressed body does not match the original")
	}

	plain := newMountedServer(t, false, register)
	rec = httptest.NewRecorder()
	plain.Handler().ServeHTTP(rec, req)
	if rec.Header().Get("Content-Encoding") != "" {
		t.Error("expected no compression when gzip is disabled")
	}
}
