package weatherstack

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyglass/internal/types"
)

func TestConvertTemp_Identity(t *testing.T) {
	for _, u := range []types.Units{types.UnitsMetric, types.UnitsImperial, types.UnitsScientific, "?"} {
		for _, v := range []float64{-40, 0, 12.34, 99.5, 1e6} {
			assert.Equal(t, v, ConvertTemp(v, u, u), "units %q value %v", u, v)
		}
	}
}

func TestConvertTemp_RoundTrip(t *testing.T) {
	f := ConvertTemp(20, types.UnitsMetric, types.UnitsImperial)
	assert.Equal(t, 68.0, f)
	assert.InDelta(t, 20, ConvertTemp(f, types.UnitsImperial, types.UnitsMetric), 1)

	k := ConvertTemp(20, types.UnitsMetric, types.UnitsScientific)
	assert.Equal(t, 293.0, k)
	assert.InDelta(t, 20, ConvertTemp(k, types.UnitsScientific, types.UnitsMetric), 1)
}

func TestConvertTemp_Table(t *testing.T) {
	tests := []struct {
		in       float64
		from, to types.Units
		want     float64
	}{
		{212, types.UnitsImperial, types.UnitsMetric, 100},
		{-40, types.UnitsImperial, types.UnitsMetric, -40},
		{273.15, types.UnitsScientific, types.UnitsMetric, 0},
		{32, types.UnitsImperial, types.UnitsScientific, 273},
		{21.6, types.UnitsMetric, "unknown", 22},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ConvertTemp(tt.in, tt.from, tt.to), "%v %s->%s", tt.in, tt.from, tt.to)
	}
}

func TestUnitLabels(t *testing.T) {
	assert.Equal(t, UnitLabelSet{"°C", "km/h", "mb", "mm"}, UnitLabels(types.UnitsMetric))
	assert.Equal(t, UnitLabelSet{"°F", "mph", "mb", "in"}, UnitLabels(types.UnitsImperial))
	assert.Equal(t, UnitLabelSet{"K", "km/h", "mb", "mm"}, UnitLabels(types.UnitsScientific))
	assert.Equal(t, UnitLabels(types.UnitsMetric), UnitLabels("zz"))
	assert.Equal(t, UnitLabels(types.UnitsMetric), UnitLabels(""))
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		in    string
		style DateStyle
		want  string
	}{
		{"2024-01-15", DateFull, "Monday, January 15, 2024"},
		{"2024-01-15", DateShort, "Mon, Jan 15"},
		{"2024-01-15 14:30", DateTime, "02:30 PM"},
		{"2024-01-15", DateDay, "Mon"},
		{"2024-01-15T09:05:00Z", DateTime, "09:05 AM"},
		{"2024-01-15", "bogus", "Monday, January 15, 2024"},
	}
	for _, tt := range tests {
		got, err := FormatDate(tt.in, tt.style)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := FormatDate("yesterday", DateFull)
	assert.Error(t, err)
}

func TestWeatherIcon(t *testing.T) {
	assert.Equal(t, Icon{"sun", "#fbbf24"}, WeatherIcon(113, true))
	assert.Equal(t, Icon{"moon", "#fbbf24"}, WeatherIcon(113, false))
	assert.Equal(t, Icon{"cloud-moon", "#94a3b8"}, WeatherIcon(116, false))
	assert.Equal(t, Icon{"cloud", "#94a3b8"}, WeatherIcon(999, true))

	for _, code := range []int{182, 185, 281, 284} {
		assert.Equal(t, Icon{"cloud-sleet", "#94a3b8"}, WeatherIcon(code, true), "code %d", code)
	}
	assert.Equal(t, "cloud-lightning", WeatherIcon(395, true).Name)
}

func TestErrorSignal(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		info   string
		failed bool
		bad    bool
	}{
		{"success", `{"current":{}}`, "", false, false},
		{"error object", `{"error":{"info":"Invalid API key"}}`, "Invalid API key", true, false},
		{"error object no info", `{"error":{"code":1}}`, DefaultErrorInfo, true, false},
		{"proxy wire", `{"error":true,"info":"Rate limited"}`, "Rate limited", true, false},
		{"error string", `{"error":"Endpoint is required"}`, "Endpoint is required", true, false},
		{"error false", `{"error":false,"info":"ignored"}`, "", false, false},
		{"error null", `{"error":null}`, "", false, false},
		{"bulk array", `[{"current":{}}]`, "", false, false},
		{"garbage", `nope`, "", false, true},
		{"null", `null`, "", false, true},
		{"string", `"ok"`, "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, failed, err := ErrorSignal([]byte(tt.body))
			if tt.bad {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.failed, failed)
			assert.Equal(t, tt.info, info)
		})
	}
}

func TestNumber_Tolerance(t *testing.T) {
	var v struct {
		A Number `json:"a"`
		B Number `json:"b"`
		C Number `json:"c"`
		D Number `json:"d"`
		E Number `json:"e"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 1.5, "b": "-74.006", "c": null, "d": "N/A"}`), &v))

	assert.Equal(t, 1.5, v.A.Or(0))
	assert.Equal(t, -74.006, v.B.Or(0))
	for _, n := range []Number{v.C, v.D, v.E} {
		_, ok := n.Value()
		assert.False(t, ok)
	}

	out, err := json.Marshal(struct {
		X Number `json:"x"`
		Y Number `json:"y"`
	}{X: Num(2.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":2.5,"y":null}`, string(out))
}

func TestNilSafeAccessors(t *testing.T) {
	var c *Conditions
	assert.Equal(t, "", c.Description())
	assert.True(t, c.Daytime())

	var l *Location
	assert.Equal(t, "", l.DisplayName())

	name, region := "Porto", ""
	l = &Location{Name: &name, Region: &region}
	assert.Equal(t, "Porto", l.DisplayName())

	var m *MarineResponse
	_, ok := m.Info()
	assert.False(t, ok)

	var d *Day
	_, ok = d.Midday()
	assert.False(t, ok)

	s, ok := Value[string](nil)
	assert.False(t, ok)
	assert.Empty(t, s)
	assert.Equal(t, "fallback", Or[string](nil, "fallback"))
}
