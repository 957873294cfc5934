package contract

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ParseRelativeTime parses expressions like "3 days ago" or "2 weeks ago"
// relative to the given anchor time.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	if len(fields) != 3 || fields[2] != "ago" {
		return time.Time{}, fmt.Errorf("invalid relative time %q (expected 'N <unit> ago')", s)
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return time.Time{}, fmt.Errorf("invalid relative time count %q", fields[0])
	}

	d, err := unitDuration(fields[1])
	if err != nil {
		return time.Time{}, err
	}

	return now.Add(-time.Duration(n) * d), nil
}

// ParseLookbackDuration parses expressions like "7 days" or "6 months" into
// a duration.
func ParseLookbackDuration(s string) (time.Duration, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	if len(fields) != 2 {
		return 0, fmt.Errorf("invalid duration %q (expected 'N <unit>')", s)
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid duration count %q", fields[0])
	}

	d, err := unitDuration(fields[1])
	if err != nil {
		return 0, err
	}

	return time.Duration(n) * d, nil
}

// unitDuration maps a unit word to its duration. Months and years use fixed
// civil approximations, which is fine for analysis windows.
func unitDuration(unit string) (time.Duration, error) {
	switch strings.TrimSuffix(unit, "s") {
	case "minute", "min":
		return time.Minute, nil
	case "hour":
		return time.Hour, nil
	case "day":
		return 24 * time.Hour, nil
	case "week":
		return 7 * 24 * time.Hour, nil
	case "month":
		return 30 * 24 * time.Hour, nil
	case "year":
		return 365 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid time unit %q", unit)
	}
}
