package types

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorImplementsError(t *testing.T) {
	var _ error = (*AppError)(nil)
}

// TestAppErrorErrorFormat verifies Error() produces "code: message".
func TestAppErrorErrorFormat(t *testing.T) {
	appErr := &AppError{
		Code:    ErrCodeValidationEndpointRequired,
		Message: "Endpoint is required",
	}

	expected := "validation_endpoint_required: Endpoint is required"
	if appErr.Error() != expected {
		t.Errorf("Error() = %q, want %q", appErr.Error(), expected)
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	underlying := errors.New("connection refused")
	appErr := NewAppError(ErrCodeUpstreamTransport, "upstream request failed", underlying)

	if appErr.Unwrap() != underlying {
		t.Errorf("Unwrap() = %v, want %v", appErr.Unwrap(), underlying)
	}
	if !errors.Is(appErr, underlying) {
		t.Error("errors.Is should find the underlying error")
	}
}

func TestAppErrorErrorsAs(t *testing.T) {
	appErr := NewAppError(ErrCodeUpstreamWeather, "invalid access key", nil)
	wrapped := fmt.Errorf("current weather: %w", appErr)

	var target *AppError
	if !errors.As(wrapped, &target) {
		t.Fatal("errors.As should find AppError in the chain")
	}
	if target.Code != ErrCodeUpstreamWeather {
		t.Errorf("Code = %q, want %q", target.Code, ErrCodeUpstreamWeather)
	}
}

func TestErrorCodeHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeValidationEndpointRequired, http.StatusBadRequest},
		{ErrCodeValidationUnknownEndpoint, http.StatusBadRequest},
		{ErrCodeValidationMissingField, http.StatusBadRequest},
		{ErrCodeValidationInvalidUnits, http.StatusBadRequest},
		{ErrCodeValidationInvalidDate, http.StatusBadRequest},
		{ErrCodeUpstreamWeather, http.StatusBadRequest},
		{ErrCodeUpstreamTransport, http.StatusInternalServerError},
		{ErrCodeInternalUnexpected, http.StatusInternalServerError},
		{ErrorCode("something_else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAppErrorIsUpstream(t *testing.T) {
	if !NewAppError(ErrCodeUpstreamWeather, "x", nil).IsUpstream() {
		t.Error("upstream_weather_error should be upstream")
	}
	if !NewAppError(ErrCodeUpstreamTransport, "x", nil).IsUpstream() {
		t.Error("upstream_transport_failure should be upstream")
	}
	if NewAppError(ErrCodeValidationMissingField, "x", nil).IsUpstream() {
		t.Error("validation errors are not upstream")
	}
}

// TestWithDetailsDoesNotMutate verifies WithDetails returns a copy.
func TestWithDetailsDoesNotMutate(t *testing.T) {
	original := NewAppErrorWithDetails(ErrCodeValidationMissingField, "query is required", nil,
		map[string]any{"field": "query"})

	extended := original.WithDetails(map[string]any{"operation": "current"})

	if len(original.Details) != 1 {
		t.Errorf("original details mutated: %v", original.Details)
	}
	if extended.Details["field"] != "query" || extended.Details["operation"] != "current" {
		t.Errorf("extended details = %v", extended.Details)
	}
}
