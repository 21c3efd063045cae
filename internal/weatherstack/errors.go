package weatherstack

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"skyglass/internal/types"
)

// DefaultErrorInfo is used when an error signal carries no usable message.
const DefaultErrorInfo = "Weather API error"

// ErrorSignal inspects a provider or proxy body for an error signal.
//
// A body signals an error when its top-level "error" field is truthy. The
// message is, in order: error.info when error is an object, error itself when
// it is a string, a top-level "info" string, and DefaultErrorInfo.
//
// A body that is not a JSON object returns a non-nil err.
func ErrorSignal(body []byte) (info string, failed bool, err error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		// Bulk responses are arrays of per-location objects.
		if !json.Valid(trimmed) {
			return "", false, fmt.Errorf("invalid JSON array in response body")
		}
		return "", false, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return "", false, fmt.Errorf("decoding response body: %w", err)
	}
	if envelope == nil {
		return "", false, fmt.Errorf("response body is null, not a JSON object")
	}

	raw, ok := envelope["error"]
	if !ok || !truthy(raw) {
		return "", false, nil
	}

	var obj struct {
		Info string `json:"info"`
	}
	var s string
	switch {
	case json.Unmarshal(raw, &obj) == nil && obj.Info != "":
		return obj.Info, true, nil
	case json.Unmarshal(raw, &s) == nil && s != "":
		return s, true, nil
	}

	if top, ok := envelope["info"]; ok {
		if json.Unmarshal(top, &s) == nil && s != "" {
			return s, true, nil
		}
	}
	return DefaultErrorInfo, true, nil
}

// truthy mirrors the loose truth test the proxy contract is defined by:
// null, false, 0 and "" are false; anything else is true.
func truthy(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}

// IsUpstreamError reports whether err is a provider-reported failure.
func IsUpstreamError(err error) bool {
	var appErr *types.AppError
	return errors.As(err, &appErr) && appErr.Code == types.ErrCodeUpstreamWeather
}

// IsTransportError reports whether err is a network, timeout or parse failure.
func IsTransportError(err error) bool {
	var appErr *types.AppError
	return errors.As(err, &appErr) && appErr.Code == types.ErrCodeUpstreamTransport
}

func newUpstreamError(info string) *types.AppError {
	return types.NewAppError(types.ErrCodeUpstreamWeather, info, nil)
}

func newTransportError(message string, err error) *types.AppError {
	return types.NewAppError(types.ErrCodeUpstreamTransport, message, err)
}
