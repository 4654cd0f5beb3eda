package internal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidTimeUnit = errors.New("invalid time unit")

// ParseTimeUnit resolves a unit suffix like "ms" to a duration unit for
// display conversion.
func ParseTimeUnit(unitString string) (time.Duration, error) {
	switch strings.TrimSpace(strings.ToLower(unitString)) {
	case "ns":
		return time.Nanosecond, nil
	case "us", "µs":
		return time.Microsecond, nil
	case "ms":
		return time.Millisecond, nil
	case "s":
		return time.Second, nil
	case "m":
		return time.Minute, nil
	case "h":
		return time.Hour, nil
	default:
		return 0, ErrInvalidTimeUnit
	}
}

// unitSuffix returns the display suffix of a time unit.
func unitSuffix(unit time.Duration) string {
	switch unit {
	case time.Nanosecond:
		return "ns"
	case time.Microsecond:
		return "µs"
	case time.Millisecond:
		return "ms"
	case time.Second:
		return "s"
	case time.Minute:
		return "m"
	case time.Hour:
		return "h"
	default:
		// only used internally, unknown units must not reach here
		panic("unknown time unit: " + unit.String())
	}
}

// ConvertSeconds converts a duration measured in seconds to the given
// display unit.
func ConvertSeconds(seconds float64, unit time.Duration) float64 {
	return seconds * float64(time.Second) / float64(unit)
}

// FormatSeconds renders a duration measured in seconds in the given display
// unit, with a fixed precision so columns line up across commands.
func FormatSeconds(seconds float64, unit time.Duration) string {
	return fmt.Sprintf("%.1f %s", ConvertSeconds(seconds, unit), unitSuffix(unit))
}

// AutoTimeUnit picks a display unit for the given mean duration in seconds:
// milliseconds below one second, seconds otherwise.
func AutoTimeUnit(meanSeconds float64) time.Duration {
	if meanSeconds < 1 {
		return time.Millisecond
	}
	return time.Second
}
