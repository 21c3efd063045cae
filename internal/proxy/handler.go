// Package proxy implements the credential-holding weather relay. It accepts
// GET /api/weather?endpoint=<op>&<params>, injects the server-held provider
// key, forwards the request once and relays the provider's JSON.
package proxy

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"skyglass/internal/core"
	"skyglass/internal/external"
	"skyglass/internal/types"
	"skyglass/internal/weatherstack"
)

// fetchFailedInfo is the only detail a caller sees for a transport failure.
const fetchFailedInfo = "Failed to fetch weather data"

// Upstream issues the single provider GET. *external.BaseClient satisfies it.
type Upstream interface {
	Get(ctx context.Context, url string) (*external.Response, error)
}

// FailureRecorder counts failed provider calls. *metrics.CloudWatchCollector
// satisfies it.
type FailureRecorder interface {
	RecordUpstreamFailure(ctx context.Context, operation string)
}

// Handler relays weather requests to the provider.
type Handler struct {
	upstream Upstream
	target   weatherstack.Target
	recorder FailureRecorder
	logger   *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithFailureRecorder reports upstream failures to rec.
func WithFailureRecorder(rec FailureRecorder) Option {
	return func(h *Handler) {
		h.recorder = rec
	}
}

// NewHandler creates a Handler forwarding to baseURL with credential.
func NewHandler(upstream Upstream, baseURL string, credential types.SecretString, logger *slog.Logger, opts ...Option) (*Handler, error) {
	target, err := weatherstack.NewTarget(weatherstack.Options{BaseURL: baseURL, Credential: credential})
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{upstream: upstream, target: target, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// RegisterRoutes mounts the relay at the root of r. Mount it under the
// configured route path with r.Route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleWeather)
	r.Options("/", h.HandlePreflight)
}

// HandlePreflight answers OPTIONS with 200 and no body. The CORS middleware
// normally answers first; this covers routers mounted without it.
func (h *Handler) HandlePreflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// HandleWeather handles GET /api/weather.
//  1. Require a known endpoint.
//  2. Forward every other field, with access_key replaced by the server key.
//  3. Map the provider's answer by body, not status: error signal -> 400,
//     transport or parse failure -> 500, anything else relayed byte-for-byte
//     with 200.
func (h *Handler) HandleWeather(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	name := params.Get("endpoint")
	if name == "" {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationEndpointRequired, "Endpoint is required", nil))
		return
	}
	op, ok := types.ParseOperation(name)
	if !ok {
		core.Error(w, r, types.NewAppError(types.ErrCodeValidationUnknownEndpoint, "Unknown endpoint", nil).
			WithDetails(map[string]any{"endpoint": name}))
		return
	}
	params.Del("endpoint")

	ctx := r.Context()
	resp, err := h.upstream.Get(ctx, h.target.URL(op, params))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	info, failed, err := weatherstack.ErrorSignal(resp.Body)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	if failed {
		core.JSON(w, r, http.StatusBadRequest, core.ErrorResponse{Error: true, Info: info})
		return
	}

	core.Raw(w, http.StatusOK, resp.Body)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op types.Operation, err error) {
	types.LoggerFromContext(r.Context(), h.logger).Error("Weather API Error",
		"operation", string(op),
		"request_id", types.GetRequestID(r.Context()),
		"error", err,
	)
	if h.recorder != nil {
		h.recorder.RecordUpstreamFailure(r.Context(), string(op))
	}
	core.JSON(w, r, http.StatusInternalServerError, core.ErrorResponse{Error: true, Info: fetchFailedInfo})
}
