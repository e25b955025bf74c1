package validation

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
)

// ValidateCreateTransaction validates a transaction creation request.
//
// Required fields:
//   - operation: one of BUY, SELL, GIFT_RECEIVED, GIFT_SENT, MINING, SPENDING
//   - date: YYYY-MM-DD, YYYY-MM-DD HH:MM:SS or RFC3339
//   - symbolReceived, symbolTraded: non-empty
//   - quantityReceived, quantityTraded, fees: non-negative
//
// SPLIT and TRADE_INPUT are produced by basis runs and are rejected here.
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Operation) == "" {
		errors["operation"] = "operation is required"
	} else if op, err := model.ParseOperation(req.Operation); err != nil {
		errors["operation"] = fmt.Sprintf("invalid operation: %s", req.Operation)
	} else if op.IsSynthetic() {
		errors["operation"] = fmt.Sprintf("%s is produced by basis runs and cannot be entered", op)
	}

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else if _, err := ParseTime(req.Date); err != nil {
		errors["date"] = err.Error()
	}

	if strings.TrimSpace(req.SymbolReceived) == "" {
		errors["symbolReceived"] = "symbolReceived is required"
	}
	if strings.TrimSpace(req.SymbolTraded) == "" {
		errors["symbolTraded"] = "symbolTraded is required"
	}

	if req.QuantityReceived.IsNegative() {
		errors["quantityReceived"] = "quantityReceived cannot be negative"
	}
	if req.QuantityTraded.IsNegative() {
		errors["quantityTraded"] = "quantityTraded cannot be negative"
	}
	if req.Fees.IsNegative() {
		errors["fees"] = "fees cannot be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
