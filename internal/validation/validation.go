package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
)

// Common validation errors
var (
	ErrInvalidUUID      = apperrors.ErrInvalidUUID
	ErrInvalidDateRange = fmt.Errorf("invalid date range")
)

// CanonicalUUID validates id and returns it in the lower-case hyphenated form IDs are
// stored in, so "{6BA7B810-...}" and "urn:uuid:6ba7b810-..." find the same row.
func CanonicalUUID(id string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return parsed.String(), nil
}

// ParseTime parses a date in "2006-01-02", "2006-01-02 15:04:05" or RFC3339 format.
// Mirrors repository.ParseTime.
func ParseTime(str string) (time.Time, error) {
	str = strings.TrimSpace(str)
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, str); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", str)
}
