package utils

import (
	"time"
)

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// FormatInstant renders t as an ISO-8601 UTC instant with milliseconds.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(isoMillis)
}
