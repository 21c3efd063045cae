// Package weatherstack is the client for the weather provider. It shapes
// requests for the five provider operations, routes them either directly to
// the provider or through the credential-holding proxy, and normalizes
// failures into types.AppError values:
//
//   - provider-reported errors carry types.ErrCodeUpstreamWeather and the
//     provider's own message;
//   - network, timeout and parse failures carry types.ErrCodeUpstreamTransport.
//
// Each operation issues exactly one request and never retries.
package weatherstack

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"skyglass/internal/external"
	"skyglass/internal/types"
)

const defaultUserAgent = "Skyglass-Client/1.0"

// Options configures a Client. BaseURL is the provider base in direct mode
// and the proxy route in proxied mode. Credential is required in direct mode
// and ignored when UseProxy is set.
type Options struct {
	BaseURL    string
	Credential types.SecretString
	UseProxy   bool

	// Timeout bounds each request. Zero means no client-side timeout.
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Breaker    external.BreakerSettings
	Logger     *slog.Logger
}

// Client performs provider operations.
type Client struct {
	target Target
	http   *external.BaseClient
	logger *slog.Logger
}

// New builds a Client from opts.
func New(opts Options) (*Client, error) {
	target, err := NewTarget(opts)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	return &Client{
		target: target,
		http: external.NewBaseClient(opts.HTTPClient, opts.Breaker, ua,
			external.WithTimeout(opts.Timeout),
			external.WithLogger(logger),
		),
		logger: logger,
	}, nil
}

// Proxied reports whether requests go through the proxy.
func (c *Client) Proxied() bool {
	return c.target.Proxied()
}

// Current fetches current conditions for location.
func (c *Client) Current(ctx context.Context, location string, units types.Units) (*Response, error) {
	return c.Do(ctx, Query{Operation: types.OpCurrent, Location: location, Units: units})
}

// Forecast fetches a days-long forecast with hourly detail. days <= 0 uses
// DefaultForecastDays.
func (c *Client) Forecast(ctx context.Context, location string, days int, units types.Units) (*Response, error) {
	if days <= 0 {
		days = DefaultForecastDays
	}
	return c.Do(ctx, Query{
		Operation: types.OpForecast,
		Location:  location,
		Units:     units,
		Params:    map[string]string{"forecast_days": strconv.Itoa(days)},
	})
}

// Historical fetches one past day, YYYY-MM-DD, with hourly detail.
func (c *Client) Historical(ctx context.Context, location, date string, units types.Units) (*Response, error) {
	if err := ValidateDate(date); err != nil {
		c.logFailure(ctx, types.OpHistorical, err)
		return nil, err
	}
	return c.Do(ctx, Query{
		Operation: types.OpHistorical,
		Location:  location,
		Units:     units,
		Params:    map[string]string{"historical_date": date},
	})
}

// Marine fetches sea conditions. The provider expects "lat,lon" locations.
func (c *Client) Marine(ctx context.Context, location string, units types.Units) (*Response, error) {
	return c.Do(ctx, Query{Operation: types.OpMarine, Location: location, Units: units})
}

// SearchLocations looks up places matching query.
func (c *Client) SearchLocations(ctx context.Context, query string) (*Response, error) {
	return c.Do(ctx, Query{Operation: types.OpLocations, Location: query})
}

// BulkCurrent fetches current conditions for several locations in one
// request. Decode the result with Response.Bulk.
func (c *Client) BulkCurrent(ctx context.Context, locations []string, units types.Units) (*Response, error) {
	return c.Do(ctx, Query{Operation: types.OpCurrent, Location: JoinLocations(locations), Units: units})
}

// Do validates q, issues one request and classifies the outcome by body: an
// error signal is an upstream error whatever the status, and a 5xx without
// one is a transport error.
func (c *Client) Do(ctx context.Context, q Query) (*Response, error) {
	if err := q.Validate(); err != nil {
		c.logFailure(ctx, q.Operation, err)
		return nil, err
	}

	resp, err := c.http.Get(ctx, c.target.URL(q.Operation, q.Values()))
	if err != nil {
		c.logFailure(ctx, q.Operation, err)
		return nil, err
	}

	info, failed, err := ErrorSignal(resp.Body)
	if err != nil {
		appErr := newTransportError("unreadable response from weather provider", err)
		c.logFailure(ctx, q.Operation, appErr)
		return nil, appErr
	}
	if failed {
		appErr := newUpstreamError(info)
		c.logFailure(ctx, q.Operation, appErr)
		return nil, appErr
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		appErr := newTransportError(fmt.Sprintf("weather service returned %d", resp.StatusCode), nil)
		c.logFailure(ctx, q.Operation, appErr)
		return nil, appErr
	}

	return &Response{Operation: q.Operation, Raw: resp.Body}, nil
}

func (c *Client) logFailure(ctx context.Context, op types.Operation, err error) {
	types.LoggerFromContext(ctx, c.logger).Error("Weather API Error",
		"operation", string(op),
		"proxied", c.target.Proxied(),
		"error", err,
	)
}
