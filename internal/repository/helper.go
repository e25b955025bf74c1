package repository

import (
	"fmt"
	"strings"
	"time"
)

// timeLayout is how every datetime column is written. Values are naive UTC wall clocks.
const timeLayout = "2006-01-02 15:04:05.999999999"

// dayLayout is how date-only columns are written.
const dayLayout = "2006-01-02"

// formatTime renders t for a datetime column.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// ParseTime parses a datetime column. The sqlite driver hands DATE and DATETIME columns back
// either as written or converted to RFC3339, so both forms are accepted.
func ParseTime(str string) (time.Time, error) {
	str = strings.TrimSpace(str)
	for _, layout := range []string{timeLayout, dayLayout, time.RFC3339Nano, "2006-01-02 15:04:05Z07:00"} {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date: %q", str)
}
