package weatherstack

import (
	"bytes"
	"slices"
	"strconv"
	"strings"
)

// Value dereferences p, reporting whether it was set.
func Value[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// Or dereferences p, or returns def when p is nil.
func Or[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// Number is an optional numeric field. The provider sends some numbers as
// strings ("lat": "40.714"); both forms decode. Absent, null and non-numeric
// values leave it unset.
type Number struct {
	v  float64
	ok bool
}

// Num returns a set Number.
func Num(f float64) Number { return Number{v: f, ok: true} }

// Value returns the number and whether it was set.
func (n Number) Value() (float64, bool) { return n.v, n.ok }

// Or returns the number, or def when unset.
func (n Number) Or(def float64) float64 {
	if !n.ok {
		return def
	}
	return n.v
}

// Int returns the number truncated to an int, or def when unset.
func (n Number) Int(def int) int {
	if !n.ok {
		return def
	}
	return int(n.v)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(b), `"`))
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		*n = Number{}
		return nil
	}
	*n = Number{v: f, ok: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.ok {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, n.v, 'f', -1, 64), nil
}

// RequestInfo echoes the request the provider answered.
type RequestInfo struct {
	Type     *string `json:"type,omitempty"`
	Query    *string `json:"query,omitempty"`
	Language *string `json:"language,omitempty"`
	Unit     *string `json:"unit,omitempty"`
}

// Location is the resolved place of a weather response.
type Location struct {
	Name           *string `json:"name,omitempty"`
	Country        *string `json:"country,omitempty"`
	Region         *string `json:"region,omitempty"`
	Lat            Number  `json:"lat"`
	Lon            Number  `json:"lon"`
	TimezoneID     *string `json:"timezone_id,omitempty"`
	Localtime      *string `json:"localtime,omitempty"`
	LocaltimeEpoch Number  `json:"localtime_epoch"`
	UTCOffset      Number  `json:"utc_offset"`
}

// DisplayName renders "Name, Region, Country", skipping missing parts.
func (l *Location) DisplayName() string {
	if l == nil {
		return ""
	}
	var parts []string
	for _, p := range []*string{l.Name, l.Region, l.Country} {
		if s := Or(p, ""); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// Conditions is a point-in-time observation. Marine responses fill the
// water and wave fields as well.
type Conditions struct {
	ObservationTime     *string  `json:"observation_time,omitempty"`
	Temperature         Number   `json:"temperature"`
	WeatherCode         Number   `json:"weather_code"`
	WeatherIcons        []string `json:"weather_icons,omitempty"`
	WeatherDescriptions []string `json:"weather_descriptions,omitempty"`
	WindSpeed           Number   `json:"wind_speed"`
	WindDegree          Number   `json:"wind_degree"`
	WindDir             *string  `json:"wind_dir,omitempty"`
	Pressure            Number   `json:"pressure"`
	Precip              Number   `json:"precip"`
	Humidity            Number   `json:"humidity"`
	Cloudcover          Number   `json:"cloudcover"`
	Feelslike           Number   `json:"feelslike"`
	Dewpoint            Number   `json:"dewpoint"`
	UVIndex             Number   `json:"uv_index"`
	Visibility          Number   `json:"visibility"`
	IsDay               *string  `json:"is_day,omitempty"`

	WaterTemperature  Number `json:"water_temperature"`
	WaveHeight        Number `json:"wave_height"`
	WavePeriod        Number `json:"wave_period"`
	WaveDirection     Number `json:"wave_direction"`
	SwellHeight       Number `json:"swell_height"`
	SwellPeriod       Number `json:"swell_period"`
	SwellDirection    Number `json:"swell_direction"`
	WindWaveHeight    Number `json:"wind_wave_height"`
	WindWavePeriod    Number `json:"wind_wave_period"`
	WindWaveDirection Number `json:"wind_wave_direction"`
}

// Description returns the first weather description, or "".
func (c *Conditions) Description() string {
	if c == nil || len(c.WeatherDescriptions) == 0 {
		return ""
	}
	return c.WeatherDescriptions[0]
}

// Daytime reports whether the observation is flagged as daytime. A missing
// flag counts as day.
func (c *Conditions) Daytime() bool {
	if c == nil || c.IsDay == nil {
		return true
	}
	return *c.IsDay != "no"
}

// Hour is one hourly slot of a forecast or historical day.
type Hour struct {
	Time                *string  `json:"time,omitempty"`
	Temperature         Number   `json:"temperature"`
	WindSpeed           Number   `json:"wind_speed"`
	WindDegree          Number   `json:"wind_degree"`
	WindDir             *string  `json:"wind_dir,omitempty"`
	WeatherCode         Number   `json:"weather_code"`
	WeatherDescriptions []string `json:"weather_descriptions,omitempty"`
	Precip              Number   `json:"precip"`
	Humidity            Number   `json:"humidity"`
	Cloudcover          Number   `json:"cloudcover"`
	Feelslike           Number   `json:"feelslike"`
	ChanceOfRain        Number   `json:"chanceofrain"`
	Visibility          Number   `json:"visibility"`
	UVIndex             Number   `json:"uv_index"`
	IsDay               *string  `json:"is_day,omitempty"`
}

// Astro holds sun and moon times for a day.
type Astro struct {
	Sunrise          *string `json:"sunrise,omitempty"`
	Sunset           *string `json:"sunset,omitempty"`
	Moonrise         *string `json:"moonrise,omitempty"`
	Moonset          *string `json:"moonset,omitempty"`
	MoonPhase        *string `json:"moon_phase,omitempty"`
	MoonIllumination Number  `json:"moon_illumination"`
}

// Day is one forecast or historical day.
type Day struct {
	Date        *string `json:"date,omitempty"`
	DateEpoch   Number  `json:"date_epoch"`
	Astro       *Astro  `json:"astro,omitempty"`
	MinTemp     Number  `json:"mintemp"`
	MaxTemp     Number  `json:"maxtemp"`
	AvgTemp     Number  `json:"avgtemp"`
	TotalSnow   Number  `json:"totalsnow"`
	TotalPrecip Number  `json:"totalprecip"`
	SunHour     Number  `json:"sunhour"`
	UVIndex     Number  `json:"uv_index"`
	Hourly      []Hour  `json:"hourly,omitempty"`
}

// Midday returns the hourly slot closest to noon, which summarizes the day.
func (d *Day) Midday() (Hour, bool) {
	if d == nil || len(d.Hourly) == 0 {
		return Hour{}, false
	}
	return d.Hourly[len(d.Hourly)/2], true
}

// Days is a set of days keyed by YYYY-MM-DD.
type Days map[string]Day

// Sorted returns the days in date order.
func (d Days) Sorted() []Day {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]Day, 0, len(keys))
	for _, k := range keys {
		day := d[k]
		if day.Date == nil {
			date := k
			day.Date = &date
		}
		out = append(out, day)
	}
	return out
}

// CurrentResponse is the partial schema of a current-weather body.
type CurrentResponse struct {
	Request  *RequestInfo `json:"request,omitempty"`
	Location *Location    `json:"location,omitempty"`
	Current  *Conditions  `json:"current,omitempty"`
}

// ForecastResponse is the partial schema of a forecast body.
type ForecastResponse struct {
	Request  *RequestInfo `json:"request,omitempty"`
	Location *Location    `json:"location,omitempty"`
	Current  *Conditions  `json:"current,omitempty"`
	Forecast Days         `json:"forecast,omitempty"`
}

// HistoricalResponse is the partial schema of a historical body.
type HistoricalResponse struct {
	Request    *RequestInfo `json:"request,omitempty"`
	Location   *Location    `json:"location,omitempty"`
	Current    *Conditions  `json:"current,omitempty"`
	Historical Days         `json:"historical,omitempty"`
}

// Day returns the historical day for date.
func (h *HistoricalResponse) Day(date string) (Day, bool) {
	if h == nil {
		return Day{}, false
	}
	d, ok := h.Historical[date]
	if ok && d.Date == nil {
		d.Date = &date
	}
	return d, ok
}

// MarineResponse is the partial schema of a marine body.
type MarineResponse struct {
	Request  *RequestInfo `json:"request,omitempty"`
	Location *Location    `json:"location,omitempty"`
	Current  *Conditions  `json:"current,omitempty"`
}

// MarineInfo is the sea-state summary extracted from a marine response.
type MarineInfo struct {
	WaterTemp         Number
	WaveHeight        Number
	WavePeriod        Number
	WaveDirection     Number
	SwellHeight       Number
	SwellPeriod       Number
	SwellDirection    Number
	WindWaveHeight    Number
	WindWavePeriod    Number
	WindWaveDirection Number
	WindSpeed         Number
	WindDir           string
	Visibility        Number
	Cloudcover        Number
	UVIndex           Number
}

// Info extracts the sea state. Water temperature falls back to the air
// temperature when the provider leaves it out or reports zero.
func (m *MarineResponse) Info() (MarineInfo, bool) {
	if m == nil || m.Current == nil {
		return MarineInfo{}, false
	}
	c := m.Current

	water := c.WaterTemperature
	if v, ok := water.Value(); !ok || v == 0 {
		water = c.Temperature
	}

	return MarineInfo{
		WaterTemp:         water,
		WaveHeight:        c.WaveHeight,
		WavePeriod:        c.WavePeriod,
		WaveDirection:     c.WaveDirection,
		SwellHeight:       c.SwellHeight,
		SwellPeriod:       c.SwellPeriod,
		SwellDirection:    c.SwellDirection,
		WindWaveHeight:    c.WindWaveHeight,
		WindWavePeriod:    c.WindWavePeriod,
		WindWaveDirection: c.WindWaveDirection,
		WindSpeed:         c.WindSpeed,
		WindDir:           Or(c.WindDir, ""),
		Visibility:        c.Visibility,
		Cloudcover:        c.Cloudcover,
		UVIndex:           c.UVIndex,
	}, true
}

// LocationResult is one entry of a location search.
type LocationResult struct {
	Name        *string `json:"name,omitempty"`
	Country     *string `json:"country,omitempty"`
	CountryCode *string `json:"country_code,omitempty"`
	Region      *string `json:"region,omitempty"`
	Type        *string `json:"type,omitempty"`
	TimezoneID  *string `json:"timezone_id,omitempty"`
	Population  Number  `json:"population"`
	Latitude    Number  `json:"latitude"`
	Longitude   Number  `json:"longitude"`
	Lat         Number  `json:"lat"`
	Lon         Number  `json:"lon"`
}

// Coordinates returns latitude and longitude, preferring the long field
// names and falling back to lat/lon.
func (r *LocationResult) Coordinates() (lat, lon float64, ok bool) {
	if r == nil {
		return 0, 0, false
	}
	latN, lonN := r.Latitude, r.Longitude
	if _, set := latN.Value(); !set {
		latN = r.Lat
	}
	if _, set := lonN.Value(); !set {
		lonN = r.Lon
	}
	lat, latOK := latN.Value()
	lon, lonOK := lonN.Value()
	return lat, lon, latOK && lonOK
}

// LocationsResponse is the partial schema of a location-search body.
type LocationsResponse struct {
	Request *RequestInfo     `json:"request,omitempty"`
	Results []LocationResult `json:"results,omitempty"`
}
