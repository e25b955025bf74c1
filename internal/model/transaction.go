package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
)

// FiatSymbol is the reference fiat currency every basis and proceeds amount is expressed in.
const FiatSymbol = "USD"

// IsFiat reports whether symbol names the reference fiat currency.
func IsFiat(symbol string) bool {
	return strings.EqualFold(strings.TrimSpace(symbol), FiatSymbol)
}

// Operation is the kind of economic event a Transaction records.
type Operation string

const (
	OperationBuy          Operation = "BUY"
	OperationSell         Operation = "SELL"
	OperationGiftReceived Operation = "GIFT_RECEIVED"
	OperationGiftSent     Operation = "GIFT_SENT"
	OperationMining       Operation = "MINING"
	OperationSpending     Operation = "SPENDING"

	// OperationSplit is the unsold remainder of a partially consumed lot.
	OperationSplit Operation = "SPLIT"
	// OperationTradeInput is the fiat-valued acquisition side of a coin-to-coin trade.
	OperationTradeInput Operation = "TRADE_INPUT"
)

var validOperations = map[Operation]bool{
	OperationBuy:          true,
	OperationSell:         true,
	OperationGiftReceived: true,
	OperationGiftSent:     true,
	OperationMining:       true,
	OperationSpending:     true,
	OperationSplit:        true,
	OperationTradeInput:   true,
}

// ParseOperation converts a case-insensitive operation name such as "buy" or "gift_sent".
func ParseOperation(s string) (Operation, error) {
	op := Operation(strings.ToUpper(strings.TrimSpace(s)))
	if !validOperations[op] {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidOperation, s)
	}
	return op, nil
}

// IsSynthetic reports whether the operation is only ever created by the matching engine.
func (o Operation) IsSynthetic() bool {
	return o == OperationSplit || o == OperationTradeInput
}

// Transaction is the exchange-independent record of a single buy, sell, gift, mining
// reward, spend or coin-to-coin trade.
//
// For acquisitions QuantityReceived is the amount of SymbolReceived acquired and
// QuantityTraded is what was paid for it (the cost, usually fiat). For disposals
// QuantityTraded is the amount of SymbolTraded given up and QuantityReceived is what
// came back.
type Transaction struct {
	ID               string          `json:"id,omitempty"`
	UserID           string          `json:"userId,omitempty"`
	Operation        Operation       `json:"operation"`
	Date             time.Time       `json:"date"`
	SymbolReceived   string          `json:"symbolReceived"`
	QuantityReceived decimal.Decimal `json:"quantityReceived"`
	SymbolTraded     string          `json:"symbolTraded"`
	QuantityTraded   decimal.Decimal `json:"quantityTraded"`
	Fees             decimal.Decimal `json:"fees"`
	FeeSymbol        string          `json:"feeSymbol"`
	Source           string          `json:"source,omitempty"`

	// TriggeringTransaction links SPLIT and TRADE_INPUT records to the disposal that
	// created them. Display and audit only; it is never persisted.
	TriggeringTransaction *Transaction `json:"-"`
}

// NewTransaction validates t and returns a normalised copy.
// The date keeps its wall clock but loses its zone, symbols are upper-cased and an empty
// fee symbol defaults to the reference fiat.
func NewTransaction(t Transaction) (*Transaction, error) {
	if !validOperations[t.Operation] {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidOperation, t.Operation)
	}
	if t.Date.IsZero() {
		return nil, fmt.Errorf("%w: date", apperrors.ErrMissingRequiredField)
	}
	for name, v := range map[string]decimal.Decimal{
		"quantityReceived": t.QuantityReceived,
		"quantityTraded":   t.QuantityTraded,
		"fees":             t.Fees,
	} {
		if v.IsNegative() {
			return nil, fmt.Errorf("%w: %s is %s", apperrors.ErrNegativeAmount, name, v)
		}
	}

	t.Date = NaiveDate(t.Date)
	t.SymbolReceived = strings.ToUpper(strings.TrimSpace(t.SymbolReceived))
	t.SymbolTraded = strings.ToUpper(strings.TrimSpace(t.SymbolTraded))
	t.FeeSymbol = strings.ToUpper(strings.TrimSpace(t.FeeSymbol))
	if t.FeeSymbol == "" {
		t.FeeSymbol = FiatSymbol
	}
	return &t, nil
}

// MustTransaction is NewTransaction for literals known to be valid. It panics otherwise.
func MustTransaction(t Transaction) *Transaction {
	tx, err := NewTransaction(t)
	if err != nil {
		panic(err)
	}
	return tx
}

// NaiveDate drops the time zone of d while keeping its wall clock.
func NaiveDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), d.Hour(), d.Minute(), d.Second(), d.Nanosecond(), time.UTC)
}

// WithUser returns a copy of t owned by userID.
func (t *Transaction) WithUser(userID string) *Transaction {
	c := *t
	c.UserID = userID
	return &c
}

// IsSimpleInput reports whether t adds a lot to the pool without any tax consequence.
func (t *Transaction) IsSimpleInput() bool {
	switch t.Operation {
	case OperationBuy, OperationMining, OperationGiftReceived, OperationTradeInput:
		return true
	}
	return false
}

// IsTaxableOutput reports whether t triggers gain or loss recognition.
func (t *Transaction) IsTaxableOutput() bool {
	return t.Operation == OperationSell || t.Operation == OperationSpending
}

// IsCoinToCoin reports whether t is a trade where neither leg is the reference fiat.
func (t *Transaction) IsCoinToCoin() bool {
	if t.Operation != OperationBuy && t.Operation != OperationSell {
		return false
	}
	return !IsFiat(t.SymbolReceived) && !IsFiat(t.SymbolTraded)
}

// NormalizeCoinToCoin returns t, or a SELL copy of t when t is a coin-to-coin BUY.
// Both legs keep their orientation; only the disposal side is made explicit so the
// engine values the traded coin and adds a TRADE_INPUT for the received one.
func (t *Transaction) NormalizeCoinToCoin() *Transaction {
	if t.Operation != OperationBuy || !t.IsCoinToCoin() {
		return t
	}
	c := *t
	c.Operation = OperationSell
	return &c
}

func (t *Transaction) String() string {
	return fmt.Sprintf("<%s %s: received %s %s, traded %s %s, fee %s %s, source %q>",
		t.Operation,
		t.Date.Format("2006-01-02 15:04:05"),
		t.QuantityReceived, t.SymbolReceived,
		t.QuantityTraded, t.SymbolTraded,
		t.Fees, t.FeeSymbol,
		t.Source,
	)
}
