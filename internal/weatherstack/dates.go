package weatherstack

import (
	"fmt"
	"time"
)

// DateStyle selects a FormatDate presentation.
type DateStyle string

const (
	DateFull  DateStyle = "full"  // Monday, January 15, 2024
	DateShort DateStyle = "short" // Mon, Jan 15
	DateTime  DateStyle = "time"  // 02:30 PM
	DateDay   DateStyle = "day"   // Mon
)

var dateLayouts = map[DateStyle]string{
	DateFull:  "Monday, January 2, 2006",
	DateShort: "Mon, Jan 2",
	DateTime:  "03:04 PM",
	DateDay:   "Mon",
}

// inputLayouts are the shapes the provider uses for dates and local times.
var inputLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// FormatDate renders s in the en-US presentation for style. Unknown styles
// render as DateFull.
func FormatDate(s string, style DateStyle) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	layout, ok := dateLayouts[style]
	if !ok {
		layout = dateLayouts[DateFull]
	}
	return t.Format(layout), nil
}

// ParseDate parses the date and time shapes the provider emits. Times carry
// no zone and are returned as UTC wall-clock values.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
