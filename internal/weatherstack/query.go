package weatherstack

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"skyglass/internal/types"
)

// DefaultForecastDays is used when Forecast is called with days <= 0.
const DefaultForecastDays = 7

// dateLayout is the provider's historical_date format.
const dateLayout = "2006-01-02"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Query describes one provider request.
type Query struct {
	Operation types.Operation `validate:"required,oneof=current forecast historical marine locations"`
	Location  string          `validate:"required"`
	Units     types.Units     `validate:"omitempty,oneof=m f s"`
	// Params carries extra provider fields such as forecast_days or
	// historical_date.
	Params map[string]string
}

// Validate checks q and reports the first problem as a validation AppError.
func (q Query) Validate() error {
	err := validate.Struct(q)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return types.NewAppError(types.ErrCodeValidationInvalidQuery, "invalid query", err)
	}

	fe := verrs[0]
	switch fe.Field() {
	case "Operation":
		if fe.Tag() == "required" {
			return types.NewAppError(types.ErrCodeValidationEndpointRequired, "Endpoint is required", err)
		}
		return types.NewAppError(types.ErrCodeValidationUnknownEndpoint, "Unknown endpoint", err).
			WithDetails(map[string]any{"endpoint": string(q.Operation)})
	case "Location":
		return types.NewAppError(types.ErrCodeValidationMissingField, "location is required", err).
			WithDetails(map[string]any{"field": "query"})
	case "Units":
		return types.NewAppError(types.ErrCodeValidationInvalidUnits, "units must be one of m, f, s", err).
			WithDetails(map[string]any{"units": string(q.Units)})
	}
	return types.NewAppError(types.ErrCodeValidationInvalidQuery, "invalid query", err)
}

// Values builds the provider parameters for q. Precedence, lowest first:
//  1. defaults (units=m, except for locations, which takes no units)
//  2. Params
//  3. Location as query, and Units when set
//  4. fields forced by the operation (hourly=1 for forecast and historical)
//
// The routing fields endpoint and access_key are added later by the Target.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Operation != types.OpLocations {
		v.Set("units", string(types.DefaultUnits))
	}
	for k, val := range q.Params {
		v.Set(k, val)
	}
	v.Set("query", q.Location)
	if q.Units != "" && q.Operation != types.OpLocations {
		v.Set("units", string(q.Units))
	}
	for k, val := range forcedParams(q.Operation) {
		v.Set(k, val)
	}
	return v
}

func forcedParams(op types.Operation) map[string]string {
	switch op {
	case types.OpForecast, types.OpHistorical:
		return map[string]string{"hourly": "1"}
	}
	return nil
}

// ValidateDate checks that s is a YYYY-MM-DD calendar date.
func ValidateDate(s string) error {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return types.NewAppError(types.ErrCodeValidationInvalidDate,
			"historical date must be YYYY-MM-DD", err).
			WithDetails(map[string]any{"historical_date": s})
	}
	return nil
}

// JoinLocations joins bulk locations with ';', dropping blanks.
func JoinLocations(locations []string) string {
	parts := make([]string, 0, len(locations))
	for _, l := range locations {
		if l = strings.TrimSpace(l); l != "" {
			parts = append(parts, l)
		}
	}
	return strings.Join(parts, ";")
}
