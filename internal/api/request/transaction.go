package request

import "github.com/shopspring/decimal"

// CreateTransactionRequest is a single hand-entered transaction. Quantities accept JSON
// numbers or strings.
type CreateTransactionRequest struct {
	Operation        string          `json:"operation"`
	Date             string          `json:"date"`
	SymbolReceived   string          `json:"symbolReceived"`
	QuantityReceived decimal.Decimal `json:"quantityReceived"`
	SymbolTraded     string          `json:"symbolTraded"`
	QuantityTraded   decimal.Decimal `json:"quantityTraded"`
	Fees             decimal.Decimal `json:"fees"`
	FeeSymbol        string          `json:"feeSymbol"`
	Source           string          `json:"source"`
}
