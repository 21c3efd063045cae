package types

import (
	"context"
	"log/slog"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("GetRequestID() = %q, want %q", got, "req-123")
	}
}

func TestGetRequestIDMissing(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() = %q, want empty", got)
	}
}

func TestLoggerFromContext(t *testing.T) {
	stored := slog.New(slog.DiscardHandler)
	fallback := slog.New(slog.DiscardHandler)

	ctx := WithLogger(context.Background(), stored)
	if got := LoggerFromContext(ctx, fallback); got != stored {
		t.Error("expected the stored logger")
	}
	if got := LoggerFromContext(context.Background(), fallback); got != fallback {
		t.Error("expected the fallback logger")
	}
	if got := LoggerFromContext(context.Background(), nil); got == nil {
		t.Error("expected slog.Default() when no fallback is given")
	}
}

func TestParseOperation(t *testing.T) {
	for _, op := range Operations {
		got, ok := ParseOperation(string(op))
		if !ok || got != op {
			t.Errorf("ParseOperation(%q) = %q, %v", op, got, ok)
		}
	}
	for _, bad := range []string{"", "Current", "../admin", "bulk"} {
		if _, ok := ParseOperation(bad); ok {
			t.Errorf("ParseOperation(%q) should fail", bad)
		}
	}
}

func TestUnits(t *testing.T) {
	if !UnitsMetric.Valid() || !UnitsImperial.Valid() || !UnitsScientific.Valid() {
		t.Error("provider units codes must be valid")
	}
	if Units("k").Valid() {
		t.Error("k is not a provider units code")
	}
	if Units("").OrDefault() != UnitsMetric {
		t.Error("empty units must default to metric")
	}
	if UnitsImperial.OrDefault() != UnitsImperial {
		t.Error("non-empty units must be kept")
	}
}
