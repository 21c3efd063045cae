package proxy

import (
	"context"
	"errors"

	"github.com/sony/gobreaker/v2"
)

// BreakerStater exposes a circuit breaker's state. *external.BaseClient
// satisfies it.
type BreakerStater interface {
	State() gobreaker.State
}

// UpstreamProbe reports the provider unhealthy while the breaker is open.
type UpstreamProbe struct {
	Breaker BreakerStater
}

// Name implements core.HealthProbe.
func (UpstreamProbe) Name() string { return "weather_upstream" }

// Check implements core.HealthProbe.
func (p UpstreamProbe) Check(_ context.Context) error {
	if p.Breaker.State() == gobreaker.StateOpen {
		return errors.New("circuit breaker open")
	}
	return nil
}
