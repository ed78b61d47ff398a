package shared

import "time"

// ParseDate accepts RFC3339 or YYYY-MM-DD and returns UTC.
func ParseDate(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.UTC(), nil
	}
	return time.Parse("2006-01-02", value)
}
