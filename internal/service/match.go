package service

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

var dateOnly = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// containsFold is a Unicode case-insensitive substring test. An empty needle matches.
func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(haystack), fold.String(needle))
}

// parseDatetime accepts the datetime-local form value and RFC 3339. Values
// without an offset are read in loc.
func parseDatetime(value string, loc *time.Location) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeDate reduces a datetime to its calendar date (YYYY-MM-DD) in loc.
// Unparsable input yields "".
func normalizeDate(value string, loc *time.Location) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if dateOnly.MatchString(value) {
		return value
	}
	t, ok := parseDatetime(value, loc)
	if !ok {
		return ""
	}
	return t.In(loc).Format("2006-01-02")
}

// displayDate formats as dd/mm/yyyy, falling back to the raw value.
func displayDate(value string, loc *time.Location) string {
	if value == "" {
		return ""
	}
	t, ok := parseDatetime(value, loc)
	if !ok {
		return value
	}
	return t.In(loc).Format("02/01/2006")
}
