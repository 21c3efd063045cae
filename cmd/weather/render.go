package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"skyglass/internal/types"
	"skyglass/internal/weatherstack"
)

// placeholder stands in for any field the provider left out.
const placeholder = "--"

// styles holds the terminal styles. With color off every style is a no-op.
type styles struct {
	color    bool
	renderer *lipgloss.Renderer
	title    lipgloss.Style
	label    lipgloss.Style
}

func newStyles(out io.Writer, color bool) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		color:    color,
		renderer: r,
		title:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#f8fafc")),
		label:    r.NewStyle().Foreground(lipgloss.Color("#94a3b8")),
	}
}

func (s styles) paint(st lipgloss.Style, text string) string {
	if !s.color {
		return text
	}
	return st.Render(text)
}

// icon renders the weather glyph name in its accent color.
func (s styles) icon(code weatherstack.Number, isDay bool) string {
	ic := weatherstack.WeatherIcon(code.Int(0), isDay)
	text := "[" + ic.Name + "]"
	if !s.color {
		return text
	}
	return s.renderer.NewStyle().Foreground(lipgloss.Color(ic.Color)).Render(text)
}

// sourceUnits is the unit system the provider answered in. It echoes the
// request's units; a missing or unknown echo means the requested ones.
func (a *app) sourceUnits(req *weatherstack.RequestInfo) types.Units {
	if req == nil {
		return a.units
	}
	if u := types.Units(weatherstack.Or(req.Unit, "")); u.Valid() {
		return u
	}
	return a.units
}

// temp formats a temperature in the display units. Other measures are
// shown as the provider sent them, labelled with the source units.
func (a *app) temp(n weatherstack.Number, from types.Units) string {
	v, ok := n.Value()
	if !ok {
		return placeholder
	}
	return fmtNum(weatherstack.ConvertTemp(v, from, a.units)) + weatherstack.UnitLabels(a.units).Temp
}

func measure(n weatherstack.Number, unit string) string {
	v, ok := n.Value()
	if !ok {
		return placeholder
	}
	if unit == "" {
		return fmtNum(v)
	}
	return fmtNum(v) + " " + unit
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func text(s *string) string {
	if v := weatherstack.Or(s, ""); v != "" {
		return v
	}
	return placeholder
}

func date(s *string, style weatherstack.DateStyle) string {
	v := weatherstack.Or(s, "")
	if v == "" {
		return placeholder
	}
	out, err := weatherstack.FormatDate(v, style)
	if err != nil {
		return v
	}
	return out
}

// hourTime turns the provider's "0", "300", "1500" slot names into 15:00.
func hourTime(s *string) string {
	v := weatherstack.Or(s, "")
	if _, err := strconv.Atoi(v); err != nil || len(v) > 4 {
		return text(s)
	}
	v = strings.Repeat("0", 4-len(v)) + v
	return v[:2] + ":" + v[2:]
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
}

func (a *app) renderLocation(loc *weatherstack.Location) {
	name := loc.DisplayName()
	if name == "" {
		return
	}
	fmt.Fprintln(a.out, a.styles.paint(a.styles.title, name))
	if lt := weatherstack.Or(loc.Localtime, ""); lt != "" {
		fmt.Fprintf(a.out, "%s %s\n", date(loc.Localtime, weatherstack.DateFull), date(loc.Localtime, weatherstack.DateTime))
	}
}

func (a *app) renderCurrent(cur *weatherstack.CurrentResponse) {
	a.renderLocation(cur.Location)
	c := cur.Current
	if c == nil {
		fmt.Fprintln(a.out, "No current conditions reported.")
		return
	}

	from := a.sourceUnits(cur.Request)
	labels := weatherstack.UnitLabels(from)
	fmt.Fprintf(a.out, "%s %s\n", a.styles.icon(c.WeatherCode, c.Daytime()), c.Description())

	tw := a.table()
	a.row(tw, "Temperature", fmt.Sprintf("%s (feels like %s)", a.temp(c.Temperature, from), a.temp(c.Feelslike, from)))
	a.row(tw, "Humidity", measure(c.Humidity, "%"))
	a.row(tw, "Wind", strings.TrimSpace(measure(c.WindSpeed, labels.Speed)+" "+weatherstack.Or(c.WindDir, "")))
	a.row(tw, "Pressure", measure(c.Pressure, labels.Pressure))
	a.row(tw, "Precipitation", measure(c.Precip, labels.Precip))
	a.row(tw, "Cloud cover", measure(c.Cloudcover, "%"))
	a.row(tw, "UV index", measure(c.UVIndex, ""))
	a.row(tw, "Visibility", measure(c.Visibility, "km"))
	tw.Flush()
}

func (a *app) row(tw *tabwriter.Writer, label, value string) {
	fmt.Fprintf(tw, "%s\t%s\n", a.styles.paint(a.styles.label, label), value)
}

func (a *app) renderForecast(fc *weatherstack.ForecastResponse) {
	a.renderLocation(fc.Location)
	days := fc.Forecast.Sorted()
	if len(days) == 0 {
		fmt.Fprintln(a.out, "No forecast days reported.")
		return
	}

	from := a.sourceUnits(fc.Request)
	labels := weatherstack.UnitLabels(from)
	tw := a.table()
	fmt.Fprintln(tw, "Day\t\tHigh\tLow\tPrecip\tRain\tConditions")
	for _, d := range days {
		mid, _ := d.Midday()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			date(d.Date, weatherstack.DateShort),
			a.styles.icon(mid.WeatherCode, true),
			a.temp(d.MaxTemp, from),
			a.temp(d.MinTemp, from),
			measure(d.TotalPrecip, labels.Precip),
			measure(mid.ChanceOfRain, "%"),
			firstOr(mid.WeatherDescriptions),
		)
	}
	tw.Flush()
}

func (a *app) renderHistorical(h *weatherstack.HistoricalResponse, day string) {
	a.renderLocation(h.Location)
	d, ok := h.Day(day)
	if !ok {
		fmt.Fprintf(a.out, "No data reported for %s.\n", day)
		return
	}

	from := a.sourceUnits(h.Request)
	labels := weatherstack.UnitLabels(from)
	fmt.Fprintln(a.out, a.styles.paint(a.styles.title, date(d.Date, weatherstack.DateFull)))

	tw := a.table()
	a.row(tw, "Average", a.temp(d.AvgTemp, from))
	a.row(tw, "High / low", a.temp(d.MaxTemp, from)+" / "+a.temp(d.MinTemp, from))
	a.row(tw, "Precipitation", measure(d.TotalPrecip, labels.Precip))
	a.row(tw, "Snow", measure(d.TotalSnow, "cm"))
	a.row(tw, "Sun hours", measure(d.SunHour, "h"))
	a.row(tw, "UV index", measure(d.UVIndex, ""))
	if d.Astro != nil {
		a.row(tw, "Sunrise / sunset", text(d.Astro.Sunrise)+" / "+text(d.Astro.Sunset))
	}
	tw.Flush()

	if len(d.Hourly) == 0 {
		return
	}
	fmt.Fprintln(a.out)
	tw = a.table()
	fmt.Fprintln(tw, "Time\t\tTemp\tWind\tConditions")
	for _, hr := range d.Hourly {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			hourTime(hr.Time),
			a.styles.icon(hr.WeatherCode, weatherstack.Or(hr.IsDay, "yes") != "no"),
			a.temp(hr.Temperature, from),
			measure(hr.WindSpeed, labels.Speed),
			firstOr(hr.WeatherDescriptions),
		)
	}
	tw.Flush()
}

type compareRow struct {
	date string
	day  weatherstack.Day
	from types.Units
}

func (a *app) renderCompare(rows []compareRow) {
	tw := a.table()
	fmt.Fprintln(tw, "Date\tAverage\tHigh\tLow\tPrecip\tSun")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			date(&r.date, weatherstack.DateShort),
			a.temp(r.day.AvgTemp, r.from),
			a.temp(r.day.MaxTemp, r.from),
			a.temp(r.day.MinTemp, r.from),
			measure(r.day.TotalPrecip, weatherstack.UnitLabels(r.from).Precip),
			measure(r.day.SunHour, "h"),
		)
	}
	tw.Flush()
}

func (a *app) renderMarine(m *weatherstack.MarineResponse, query string) {
	if m.Location.DisplayName() != "" {
		a.renderLocation(m.Location)
	} else {
		fmt.Fprintln(a.out, a.styles.paint(a.styles.title, "Sea conditions at "+query))
	}
	info, ok := m.Info()
	if !ok {
		fmt.Fprintln(a.out, "No marine conditions reported.")
		return
	}

	from := a.sourceUnits(m.Request)
	labels := weatherstack.UnitLabels(from)
	tw := a.table()
	a.row(tw, "Water", a.temp(info.WaterTemp, from))
	a.row(tw, "Waves", waves(info.WaveHeight, info.WavePeriod, info.WaveDirection))
	a.row(tw, "Swell", waves(info.SwellHeight, info.SwellPeriod, info.SwellDirection))
	a.row(tw, "Wind waves", waves(info.WindWaveHeight, info.WindWavePeriod, info.WindWaveDirection))
	a.row(tw, "Wind", strings.TrimSpace(measure(info.WindSpeed, labels.Speed)+" "+info.WindDir))
	a.row(tw, "Visibility", measure(info.Visibility, "km"))
	a.row(tw, "Cloud cover", measure(info.Cloudcover, "%"))
	a.row(tw, "UV index", measure(info.UVIndex, ""))
	tw.Flush()
}

func waves(height, period, direction weatherstack.Number) string {
	return fmt.Sprintf("%s every %s from %s", measure(height, "m"), measure(period, "s"), measure(direction, "°"))
}

func (a *app) renderLocations(locs *weatherstack.LocationsResponse) {
	if len(locs.Results) == 0 {
		fmt.Fprintln(a.out, "No matching locations.")
		return
	}
	tw := a.table()
	fmt.Fprintln(tw, "Name\tRegion\tCountry\tCoordinates")
	for _, r := range locs.Results {
		coords := placeholder
		if lat, lon, ok := r.Coordinates(); ok {
			coords = fmtNum(lat) + "," + fmtNum(lon)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", text(r.Name), text(r.Region), text(r.Country), coords)
	}
	tw.Flush()
}

func (a *app) renderBulk(all []weatherstack.CurrentResponse) {
	tw := a.table()
	fmt.Fprintln(tw, "Location\t\tTemp\tConditions")
	for _, cur := range all {
		name := cur.Location.DisplayName()
		if name == "" {
			name = text(nil)
		}
		if cur.Current == nil {
			fmt.Fprintf(tw, "%s\t\t%s\t%s\n", name, placeholder, placeholder)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			name,
			a.styles.icon(cur.Current.WeatherCode, cur.Current.Daytime()),
			a.temp(cur.Current.Temperature, a.sourceUnits(cur.Request)),
			firstOr(cur.Current.WeatherDescriptions),
		)
	}
	tw.Flush()
}

func firstOr(s []string) string {
	if len(s) == 0 || s[0] == "" {
		return placeholder
	}
	return s[0]
}
