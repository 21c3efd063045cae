package weatherstack

import (
	"math"

	"skyglass/internal/types"
)

// UnitLabelSet holds display labels for a units code.
type UnitLabelSet struct {
	Temp     string
	Speed    string
	Pressure string
	Precip   string
}

var unitLabels = map[types.Units]UnitLabelSet{
	types.UnitsMetric:     {Temp: "°C", Speed: "km/h", Pressure: "mb", Precip: "mm"},
	types.UnitsImperial:   {Temp: "°F", Speed: "mph", Pressure: "mb", Precip: "in"},
	types.UnitsScientific: {Temp: "K", Speed: "km/h", Pressure: "mb", Precip: "mm"},
}

// UnitLabels returns the labels for u. Unknown codes get the metric set.
func UnitLabels(u types.Units) UnitLabelSet {
	if l, ok := unitLabels[u]; ok {
		return l
	}
	return unitLabels[types.UnitsMetric]
}

// ConvertTemp converts t between unit systems and rounds to the nearest whole
// degree. When from and to are equal t is returned untouched. Scientific is
// Kelvin; unknown codes are treated as metric.
func ConvertTemp(t float64, from, to types.Units) float64 {
	if from == to {
		return t
	}

	var celsius float64
	switch from {
	case types.UnitsImperial:
		celsius = (t - 32) * 5 / 9
	case types.UnitsScientific:
		celsius = t - 273.15
	default:
		celsius = t
	}

	switch to {
	case types.UnitsImperial:
		return math.Round(celsius*9/5 + 32)
	case types.UnitsScientific:
		return math.Round(celsius + 273.15)
	}
	return math.Round(celsius)
}
