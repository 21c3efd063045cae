package weatherstack

import (
	"bytes"
	"encoding/json"
	"fmt"

	"skyglass/internal/types"
)

// Response is a successful provider answer. Raw holds the body exactly as
// received; the typed views decode it on demand and tolerate missing fields.
type Response struct {
	Operation types.Operation
	Raw       json.RawMessage
}

func (r *Response) decode(v any) error {
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return fmt.Errorf("decoding %s response: %w", r.Operation, err)
	}
	return nil
}

func decodeAs[T any](r *Response) (*T, error) {
	var out T
	if err := r.decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Current decodes a current-weather body.
func (r *Response) Current() (*CurrentResponse, error) {
	return decodeAs[CurrentResponse](r)
}

// Forecast decodes a forecast body.
func (r *Response) Forecast() (*ForecastResponse, error) {
	return decodeAs[ForecastResponse](r)
}

// Historical decodes a historical body.
func (r *Response) Historical() (*HistoricalResponse, error) {
	return decodeAs[HistoricalResponse](r)
}

// Marine decodes a marine body.
func (r *Response) Marine() (*MarineResponse, error) {
	return decodeAs[MarineResponse](r)
}

// Locations decodes a location-search body.
func (r *Response) Locations() (*LocationsResponse, error) {
	return decodeAs[LocationsResponse](r)
}

// Bulk decodes a bulk current-weather body. The provider answers a
// multi-location query with an array and a single location with an object;
// both yield a slice.
func (r *Response) Bulk() ([]CurrentResponse, error) {
	if trimmed := bytes.TrimSpace(r.Raw); len(trimmed) > 0 && trimmed[0] == '[' {
		var out []CurrentResponse
		if err := r.decode(&out); err != nil {
			return nil, err
		}
		return out, nil
	}
	one, err := r.Current()
	if err != nil {
		return nil, err
	}
	return []CurrentResponse{*one}, nil
}
