package types

// Operation names one of the provider sub-resources the proxy and client know.
// The string value is both the upstream path segment and the proxy's
// "endpoint" query value.
type Operation string

const (
	OpCurrent    Operation = "current"
	OpForecast   Operation = "forecast"
	OpHistorical Operation = "historical"
	OpMarine     Operation = "marine"
	OpLocations  Operation = "locations"
)

// Operations lists every supported operation in display order.
var Operations = []Operation{OpCurrent, OpForecast, OpHistorical, OpMarine, OpLocations}

// ParseOperation returns the Operation for name, or false when the name is not
// one of the supported sub-resources.
func ParseOperation(name string) (Operation, bool) {
	for _, op := range Operations {
		if string(op) == name {
			return op, true
		}
	}
	return "", false
}

// Units is the provider's units code.
type Units string

const (
	UnitsMetric     Units = "m"
	UnitsImperial   Units = "f"
	UnitsScientific Units = "s"
)

// DefaultUnits is used whenever the caller leaves units empty.
const DefaultUnits = UnitsMetric

// Valid reports whether u is a code the provider accepts.
func (u Units) Valid() bool {
	switch u {
	case UnitsMetric, UnitsImperial, UnitsScientific:
		return true
	}
	return false
}

// OrDefault returns u, or DefaultUnits when u is empty.
func (u Units) OrDefault() Units {
	if u == "" {
		return DefaultUnits
	}
	return u
}
