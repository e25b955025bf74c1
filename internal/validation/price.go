package validation

import (
	"strings"
	"time"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/request"
)

// ValidateRefreshPrices validates a price refresh request and returns its date range.
// An empty To means now.
func ValidateRefreshPrices(req request.RefreshPricesRequest, now time.Time) (from, to time.Time, err error) {
	errors := make(map[string]string)

	if len(req.Symbols) == 0 {
		errors["symbols"] = "at least one symbol is required"
	}
	for _, s := range req.Symbols {
		if strings.TrimSpace(s) == "" {
			errors["symbols"] = "symbols cannot be empty"
		}
	}

	to = now
	if req.To != "" {
		if to, err = ParseTime(req.To); err != nil {
			errors["to"] = err.Error()
		}
	}
	if strings.TrimSpace(req.From) == "" {
		errors["from"] = "from is required"
	} else if from, err = ParseTime(req.From); err != nil {
		errors["from"] = err.Error()
	} else if from.After(to) {
		errors["from"] = ErrInvalidDateRange.Error() + ": from is after to"
	}

	if len(errors) > 0 {
		return from, to, &Error{Fields: errors}
	}
	return from, to, nil
}
