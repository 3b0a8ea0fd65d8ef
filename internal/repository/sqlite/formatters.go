package sqlite

import (
	"time"
)

// TimeLayout is RFC3339 with a fixed nine-digit fraction. Values are always
// stored in UTC so that ORDER BY on the text column is chronological.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTimeForDB formats a time.Time value for consistent database storage
func FormatTimeForDB(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// FormatRemoteIDForDB returns nil for an absent remote ID so it is stored as NULL
func FormatRemoteIDForDB(id *string) interface{} {
	if id == nil || *id == "" {
		return nil
	}
	return *id
}

// ParseTimeFromDB parses a stored timestamp. Plain RFC3339 values are accepted too.
func ParseTimeFromDB(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
