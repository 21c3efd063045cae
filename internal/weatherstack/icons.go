package weatherstack

// Icon names a glyph and its accent color for a weather code.
type Icon struct {
	Name  string
	Color string
}

type iconSpec struct {
	day, night, color string
}

// defaultIcon covers codes missing from iconTable.
var defaultIcon = iconSpec{"cloud", "cloud", "#94a3b8"}

// iconTable maps provider weather codes to icons. 185, 281 and 284 are the
// freezing-drizzle codes and bind to sleet only.
var iconTable = map[int]iconSpec{
	113: {"sun", "moon", "#fbbf24"},
	116: {"cloud-sun", "cloud-moon", "#94a3b8"},
	119: {"cloud", "cloud", "#94a3b8"},
	122: {"cloud", "cloud", "#64748b"},
	143: {"fog", "fog", "#94a3b8"},

	176: {"cloud-rain", "cloud-rain", "#60a5fa"},
	266: {"cloud-rain", "cloud-rain", "#60a5fa"},
	293: {"cloud-rain", "cloud-rain", "#60a5fa"},
	296: {"cloud-rain", "cloud-rain", "#60a5fa"},
	299: {"cloud-rain", "cloud-rain", "#60a5fa"},
	302: {"cloud-rain", "cloud-rain", "#3b82f6"},
	305: {"cloud-rain", "cloud-rain", "#3b82f6"},
	308: {"cloud-rain", "cloud-rain", "#2563eb"},

	179: {"cloud-snow", "cloud-snow", "#e2e8f0"},
	227: {"snowflake", "snowflake", "#e2e8f0"},
	230: {"snowflake", "snowflake", "#e2e8f0"},
	323: {"snowflake", "snowflake", "#e2e8f0"},
	326: {"snowflake", "snowflake", "#e2e8f0"},
	329: {"snowflake", "snowflake", "#e2e8f0"},
	332: {"snowflake", "snowflake", "#e2e8f0"},
	335: {"snowflake", "snowflake", "#e2e8f0"},
	338: {"snowflake", "snowflake", "#e2e8f0"},

	182: {"cloud-sleet", "cloud-sleet", "#94a3b8"},
	185: {"cloud-sleet", "cloud-sleet", "#94a3b8"},
	281: {"cloud-sleet", "cloud-sleet", "#94a3b8"},
	284: {"cloud-sleet", "cloud-sleet", "#94a3b8"},

	200: {"cloud-lightning", "cloud-lightning", "#a78bfa"},
	386: {"cloud-lightning", "cloud-lightning", "#a78bfa"},
	389: {"cloud-lightning", "cloud-lightning", "#a78bfa"},
	392: {"cloud-lightning", "cloud-lightning", "#a78bfa"},
	395: {"cloud-lightning", "cloud-lightning", "#a78bfa"},
}

// WeatherIcon returns the icon for code, choosing the night glyph when isDay
// is false.
func WeatherIcon(code int, isDay bool) Icon {
	spec, ok := iconTable[code]
	if !ok {
		spec = defaultIcon
	}
	if isDay {
		return Icon{Name: spec.day, Color: spec.color}
	}
	return Icon{Name: spec.night, Color: spec.color}
}
