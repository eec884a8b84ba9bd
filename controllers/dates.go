package controllers

import (
	"fmt"
	"time"
)

// dateLayout is the wire format for calendar dates. Dates cross the API
// boundary without a time component.
const dateLayout = "2006-01-02"

// parseDate parses an ISO-8601 calendar date
func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected format %s", value, dateLayout)
	}
	return t, nil
}

// parseOptionalDate parses an ISO-8601 calendar date, treating the empty
// string as absent
func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := parseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
