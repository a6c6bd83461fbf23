package xero

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// msDate matches the Microsoft JSON date format Xero returns,
// e.g. "/Date(1573755038314+0000)/". The offset is informational:
// the milliseconds are always since the Unix epoch in UTC.
var msDate = regexp.MustCompile(`^/Date\((-?\d+)([+-]\d{4})?\)/$`)

// localLayouts are the ISO forms Xero uses for date-only fields.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02",
}

// xeroTime decodes either date representation. Null and empty decode
// to the zero time.
type xeroTime struct {
	time.Time
}

func (t *xeroTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("xero date: %w", err)
	}
	parsed, err := parseDate(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// parseDate parses a Xero date string into UTC.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if m := msDate.FindStringSubmatch(s); m != nil {
		ms, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("xero date %q: %w", s, err)
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	for _, layout := range localLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("xero date %q: unrecognised format", s)
}

// formatModifiedSince formats the If-Modified-Since header value.
// Xero accepts a UTC timestamp without zone designator.
func formatModifiedSince(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05")
}

// sameSecond reports whether a and b fall in the same If-Modified-Since step.
func sameSecond(a, b time.Time) bool {
	return a.Truncate(time.Second).Equal(b.Truncate(time.Second))
}
