// =============================================================================
// Bill Analyzer - Date Parsing
// =============================================================================
//
// Dates arrive in two shapes: ISO strings from newer tooling, and the
// day-first formats found on German receipts and in historical ledger rows
// ("10.12.25", "10.12.2025", "10/12/25"). ISO is tried first so that
// "2025-12-10" is never misread day-first.
//
// =============================================================================

package bill

import (
	"fmt"
	"strings"
	"time"
)

// dayFirstLayouts are tried in order after the ISO layouts fail.
var dayFirstLayouts = []string{
	"2.1.2006",
	"2.1.06",
	"2/1/2006",
	"2/1/06",
	"2-1-2006",
	"2 January 2006",
	"2 Jan 2006",
}

// isoLayouts are unambiguous year-first representations.
var isoLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z",
	"20060102",
}

// ParseDate parses a locale-flexible, day-first date string.
// The returned time is normalized to midnight UTC.
func ParseDate(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return midnight(t), nil
		}
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return midnight(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// midnight truncates a timestamp to its calendar date in UTC.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
