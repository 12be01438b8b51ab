// Package format renders a models.Report as the six-line text summary.
package format

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/kjstillabower/weathernow/internal/models"
)

// Missing is printed in place of any absent numeric field.
const Missing = "?"

const timestampLayout = "2006-01-02 15:04 UTC"

// TempUnit returns the temperature suffix for a units setting. Anything
// other than metric or imperial is treated as standard (Kelvin).
func TempUnit(units string) string {
	switch units {
	case models.UnitsMetric:
		return "°C"
	case models.UnitsImperial:
		return "°F"
	default:
		return "K"
	}
}

// WindUnit returns the wind speed suffix for a units setting.
func WindUnit(units string) string {
	if units == models.UnitsImperial {
		return "mph"
	}
	return "m/s"
}

// Report renders r as exactly six newline-separated lines. It never fails:
// absent numbers print as Missing and an absent timestamp prints empty.
func Report(r models.Report, units string) string {
	tu := TempUnit(units)
	lines := []string{
		fmt.Sprintf("%s, %s — %s", r.Name, r.Sys.Country, Capitalize(string(r.PrimaryCondition().Description))),
		fmt.Sprintf("Temp: %s%s  (feels like %s%s)", number(r.Main.Temp), tu, number(r.Main.FeelsLike), tu),
		fmt.Sprintf("Min/Max: %s%s / %s%s", number(r.Main.TempMin), tu, number(r.Main.TempMax), tu),
		fmt.Sprintf("Humidity: %s%%   Pressure: %s hPa", number(r.Main.Humidity), number(r.Main.Pressure)),
		fmt.Sprintf("Wind: %s %s", number(r.Wind.Speed), WindUnit(units)),
		fmt.Sprintf("Updated: %s", Timestamp(r.Dt)),
	}
	return strings.Join(lines, "\n")
}

// Capitalize upper-cases the first rune and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToTitle(first)) + strings.ToLower(s[size:])
}

// Timestamp formats epoch seconds as "YYYY-MM-DD HH:MM UTC". Absent, zero
// or unparsable values yield "".
func Timestamp(dt *json.Number) string {
	if dt == nil {
		return ""
	}
	secs, err := dt.Int64()
	if err != nil {
		f, ferr := dt.Float64()
		if ferr != nil || math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return ""
		}
		secs = int64(f)
	}
	if secs == 0 {
		return ""
	}
	return time.Unix(secs, 0).UTC().Format(timestampLayout)
}

func number(n *json.Number) string {
	if n == nil || n.String() == "" {
		return Missing
	}
	return n.String()
}
