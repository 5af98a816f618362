package domain

import (
	"fmt"
	"strings"
	"time"
)

// Date calendar date as stored in the record store ("2024-01-15" or RFC 3339).
// The empty string means absent. Values are parsed lazily, so a malformed
// date is only reported by whoever needs it as a time.
type Date string

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// IsZero reports an absent date.
func (d Date) IsZero() bool {
	return strings.TrimSpace(string(d)) == ""
}

// Time parses the date; date-only values are UTC midnight.
func (d Date) Time() (time.Time, error) {
	s := strings.TrimSpace(string(d))
	if s == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// DateOf formats t as a date-only value.
func DateOf(t time.Time) Date {
	return Date(t.Format("2006-01-02"))
}

// Fielder is implemented by record types that expose their fields by
// camelCase name for dotted-path lookups. A nested record that is absent
// must be reported as (nil, true), never as a typed nil.
type Fielder interface {
	Field(name string) (any, bool)
}
