// Package external holds the outbound HTTP layer shared by the proxy and the
// weather client. Every call to the weather provider goes through BaseClient,
// which adds trace propagation, a User-Agent, an optional per-call timeout and
// an opt-in circuit breaker, and maps failures onto types.AppError.
//
// There are no retries: each logical operation issues exactly one request.
package external

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"skyglass/internal/types"

	"github.com/sony/gobreaker/v2"
)

// maxBodyBytes caps how much of an upstream body is buffered.
const maxBodyBytes = 8 << 20

// errServerStatus makes the breaker count a 5xx as a failure. Get still hands
// the response back to the caller.
var errServerStatus = errors.New("upstream server error")

// Response is a fully-read upstream response. The body is buffered so callers
// can both inspect it and relay it unchanged.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// BreakerSettings configures the circuit breaker around upstream calls.
type BreakerSettings struct {
	Name string
	// FailureThreshold is the number of consecutive failures that opens the
	// breaker. Zero disables the breaker, so every call reaches upstream.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before letting a probe
	// through. Zero means 30s.
	OpenTimeout time.Duration
}

func (s BreakerSettings) withDefaults() BreakerSettings {
	if s.Name == "" {
		s.Name = "weather-upstream"
	}
	if s.OpenTimeout == 0 {
		s.OpenTimeout = 30 * time.Second
	}
	return s
}

// BaseClient wraps an *http.Client and an optional circuit breaker.
type BaseClient struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[*Response]
	userAgent string
	timeout   time.Duration
	logger    *slog.Logger
}

// BaseClientOption is a functional option for configuring a BaseClient.
type BaseClientOption func(*BaseClient)

// WithTimeout bounds each call. Zero (the default) leaves calls bounded only by
// the caller's context.
func WithTimeout(d time.Duration) BaseClientOption {
	return func(c *BaseClient) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for breaker state transitions.
func WithLogger(l *slog.Logger) BaseClientOption {
	return func(c *BaseClient) {
		c.logger = l
	}
}

// WithBreaker replaces the breaker built from BreakerSettings. Tests use it to
// control trip behaviour.
func WithBreaker(cb *gobreaker.CircuitBreaker[*Response]) BaseClientOption {
	return func(c *BaseClient) {
		c.breaker = cb
	}
}

// NewBaseClient creates a BaseClient. A nil httpClient uses a fresh
// *http.Client with no client-level timeout.
func NewBaseClient(httpClient *http.Client, settings BreakerSettings, userAgent string, opts ...BaseClientOption) *BaseClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	bc := &BaseClient{
		client:    httpClient,
		userAgent: userAgent,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(bc)
	}

	if bc.breaker == nil && settings.FailureThreshold > 0 {
		bc.breaker = newBreaker(settings.withDefaults(), bc.logger)
	}
	return bc
}

func newBreaker(s BreakerSettings, logger *slog.Logger) *gobreaker.CircuitBreaker[*Response] {
	return gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		// A caller abandoning its request says nothing about upstream health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
}

// Get issues a single GET to rawURL and returns the fully-read response.
//
// Every response that arrives is returned with its body, whatever the status;
// interpreting it is the caller's job. A 5xx still counts as a breaker
// failure. Network failures, timeouts and an open breaker return a
// *types.AppError with ErrCodeUpstreamTransport.
func (c *BaseClient) Get(ctx context.Context, rawURL string) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamTransport, "invalid upstream request", redactURL(err))
	}
	req.Header.Set("Accept", "application/json")
	if traceID := types.GetRequestID(ctx); traceID != "" {
		req.Header.Set("X-B3-TraceId", traceID)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.execute(func() (*Response, error) {
		r, doErr := c.client.Do(req)
		if doErr != nil {
			return nil, redactURL(doErr)
		}
		defer r.Body.Close()

		body, readErr := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if readErr != nil {
			return nil, fmt.Errorf("reading upstream body: %w", readErr)
		}

		out := &Response{StatusCode: r.StatusCode, Header: r.Header, Body: body}
		if r.StatusCode >= 500 {
			return out, fmt.Errorf("upstream returned %d: %w", r.StatusCode, errServerStatus)
		}
		return out, nil
	})
	if errors.Is(err, errServerStatus) && resp != nil {
		return resp, nil
	}
	if err != nil {
		return nil, c.mapError(ctx, err)
	}
	return resp, nil
}

func (c *BaseClient) execute(fn func() (*Response, error)) (*Response, error) {
	if c.breaker == nil {
		return fn()
	}
	return c.breaker.Execute(fn)
}

// mapError translates transport-level failures into AppErrors.
func (c *BaseClient) mapError(ctx context.Context, err error) *types.AppError {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return types.NewAppError(types.ErrCodeUpstreamTransport,
			"circuit breaker is open; weather provider unavailable", err)
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return types.NewAppError(types.ErrCodeUpstreamTransport, "upstream request timed out", err)
	case errors.Is(err, context.Canceled):
		return types.NewAppError(types.ErrCodeUpstreamTransport, "upstream request cancelled", err)
	}
	return types.NewAppError(types.ErrCodeUpstreamTransport, "upstream request failed", err)
}

// State reports the breaker's current state. A disabled breaker is always
// closed.
func (c *BaseClient) State() gobreaker.State {
	if c.breaker == nil {
		return gobreaker.StateClosed
	}
	return c.breaker.State()
}

// redactURL strips the query from a *url.Error so the provider credential
// never reaches an error string or a log line.
func redactURL(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	u, parseErr := url.Parse(uerr.URL)
	if parseErr != nil {
		return &url.Error{Op: uerr.Op, URL: "[REDACTED]", Err: uerr.Err}
	}
	u.RawQuery = ""
	return &url.Error{Op: uerr.Op, URL: u.String(), Err: uerr.Err}
}
