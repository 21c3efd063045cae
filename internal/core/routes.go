package core

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"

	"skyglass/internal/types"
)

// defaultRedactedHeaders lists header names whose values are masked in
// request logs.
var defaultRedactedHeaders = []string{
	"Authorization",
	"Cookie",
	"X-Api-Key",
}

// MountRoutes installs the global middleware chain, the health endpoint and
// every registered route.
func (s *Server) MountRoutes() {
	s.registerGlobalMiddleware()

	s.router.Get("/health", s.HandleHealth)
	for _, registrar := range s.RouteRegistrars {
		registrar(s.router)
	}

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		JSON(w, r, http.StatusNotFound, MessageResponse{Error: "Not found"})
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		JSON(w, r, http.StatusMethodNotAllowed, MessageResponse{Error: "Method not allowed"})
	})
}

// registerGlobalMiddleware applies middleware in order:
//  1. Recoverer        - outermost so every panic becomes a JSON 500.
//  2. RequestID        - correlation ID for logs and upstream trace header.
//  3. SecurityHeaders
//  4. CORS             - on every response, including errors and preflight.
//  5. RequestLogger    - structured access log with redacted headers.
//  6. Metrics          - latency and count when a collector is configured.
//  7. Gzip             - compresses relayed bodies for clients that accept it.
func (s *Server) registerGlobalMiddleware() {
	s.router.Use(s.Recoverer)
	s.router.Use(RequestIDMiddleware)
	s.router.Use(s.SecurityHeadersMiddleware)
	s.router.Use(NewCORSMiddleware(s.corsAllowedOrigins()))
	s.router.Use(RequestLogger(s.Logger, defaultRedactedHeaders))
	s.router.Use(s.MetricsMiddleware)
	if s.Config.Security.EnableGzip {
		s.router.Use(func(next http.Handler) http.Handler {
			return gzhttp.GzipHandler(next)
		})
	}
}

func (s *Server) corsAllowedOrigins() []string {
	if len(s.Config.Security.CorsAllowedOrigins) > 0 {
		return s.Config.Security.CorsAllowedOrigins
	}
	return []string{"*"}
}

// RequestIDMiddleware reuses an incoming X-Request-Id or generates a UUID,
// stores it in the context, and echoes it on the response.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set("X-Request-Id", requestID)
		ctx := types.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
