package domain

import (
	"fmt"
	"strings"
	"time"
)

// Convert returns a copy of f with every non-missing value multiplied by
// factor and the units label replaced. NaN cells stay NaN.
func Convert(f *Field, factor float64, newUnits string) *Field {
	out := f.Clone()
	out.Units = newUnits
	for i := range out.Values {
		for j := range out.Values[i] {
			out.Values[i][j] *= factor
		}
	}
	return out
}

// HoursToMinutes converts a field recorded in hours to minutes.
func HoursToMinutes(f *Field) *Field {
	return Convert(f, 60, "minutes")
}

// MonthlyHoursToDailyHours converts a monthly total in hours to a mean
// daily duration, dividing by the number of days in the field's month.
func MonthlyHoursToDailyHours(f *Field) (*Field, error) {
	if f.Time.IsZero() {
		return nil, fmt.Errorf("field has no valid time; cannot determine month length")
	}
	days := daysInMonth(f.Time.Year(), f.Time.Month())
	return Convert(f, 1/float64(days), "hours/day"), nil
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ConvertTo applies a named conversion to a field. Supported targets:
// "" or "source" (no-op), "minutes", "hours/day".
func ConvertTo(f *Field, unit string) (*Field, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "source":
		return f, nil
	case "minutes":
		return HoursToMinutes(f), nil
	case "hours/day", "hours_per_day":
		return MonthlyHoursToDailyHours(f)
	default:
		return nil, fmt.Errorf("unsupported unit conversion: %q", unit)
	}
}
