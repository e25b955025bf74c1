package testutil

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
)

// RefDate is day 0 of test scenarios. ohlc.ReferenceProvider carries prices for it.
var RefDate = time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)

// Day returns RefDate shifted by n days.
func Day(n int) time.Time {
	return RefDate.AddDate(0, 0, n)
}

// Dec parses a decimal literal and panics on malformed input.
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// TransactionBuilder provides a fluent interface for creating test transactions.
//
// Example usage:
//
//	buy := testutil.Buy("2", "BTC", "2000").OnDay(0).Build()
//	sell := testutil.Sell("1", "BTC", "1010").OnDay(1).WithFee("10", "USD").Build()
//	trade := testutil.Trade("1", "BTC", "150", "ETH").OnDay(3).Build()
type TransactionBuilder struct {
	tx model.Transaction
}

// NewTransaction creates a TransactionBuilder for op dated RefDate.
func NewTransaction(op model.Operation) *TransactionBuilder {
	return &TransactionBuilder{tx: model.Transaction{
		Operation:        op,
		Date:             RefDate,
		QuantityReceived: decimal.Zero,
		QuantityTraded:   decimal.Zero,
		Fees:             decimal.Zero,
		FeeSymbol:        model.FiatSymbol,
		Source:           "test",
	}}
}

// Buy acquires qty of symbol for cost in fiat.
func Buy(qty, symbol, cost string) *TransactionBuilder {
	return NewTransaction(model.OperationBuy).Receive(qty, symbol).Trade(cost, model.FiatSymbol)
}

// Sell disposes of qty of symbol for proceeds in fiat.
func Sell(qty, symbol, proceeds string) *TransactionBuilder {
	return NewTransaction(model.OperationSell).Trade(qty, symbol).Receive(proceeds, model.FiatSymbol)
}

// Trade sells qtyTraded of symTraded for qtyReceived of symReceived.
func Trade(qtyTraded, symTraded, qtyReceived, symReceived string) *TransactionBuilder {
	return NewTransaction(model.OperationSell).Trade(qtyTraded, symTraded).Receive(qtyReceived, symReceived)
}

// GiftReceived acquires qty of symbol with a fiat basis of value.
func GiftReceived(qty, symbol, value string) *TransactionBuilder {
	return NewTransaction(model.OperationGiftReceived).Receive(qty, symbol).Trade(value, model.FiatSymbol)
}

// GiftSent gives qty of symbol away.
func GiftSent(qty, symbol string) *TransactionBuilder {
	return NewTransaction(model.OperationGiftSent).Trade(qty, symbol).Receive("0", model.FiatSymbol)
}

// Mining acquires qty of symbol valued at value in fiat.
func Mining(qty, symbol, value string) *TransactionBuilder {
	return NewTransaction(model.OperationMining).Receive(qty, symbol).Trade(value, model.FiatSymbol)
}

// Spend disposes of qty of symbol for goods worth value in fiat.
func Spend(qty, symbol, value string) *TransactionBuilder {
	return NewTransaction(model.OperationSpending).Trade(qty, symbol).Receive(value, model.FiatSymbol)
}

// Receive sets the received leg.
func (b *TransactionBuilder) Receive(qty, symbol string) *TransactionBuilder {
	b.tx.QuantityReceived = Dec(qty)
	b.tx.SymbolReceived = symbol
	return b
}

// Trade sets the traded leg.
func (b *TransactionBuilder) Trade(qty, symbol string) *TransactionBuilder {
	b.tx.QuantityTraded = Dec(qty)
	b.tx.SymbolTraded = symbol
	return b
}

// On sets the transaction date.
func (b *TransactionBuilder) On(date time.Time) *TransactionBuilder {
	b.tx.Date = date
	return b
}

// OnDay sets the transaction date to Day(n).
func (b *TransactionBuilder) OnDay(n int) *TransactionBuilder {
	return b.On(Day(n))
}

// WithFee sets the fee and its currency.
func (b *TransactionBuilder) WithFee(amount, symbol string) *TransactionBuilder {
	b.tx.Fees = Dec(amount)
	b.tx.FeeSymbol = symbol
	return b
}

// WithSource sets the originating exchange.
func (b *TransactionBuilder) WithSource(source string) *TransactionBuilder {
	b.tx.Source = source
	return b
}

// WithUser sets the owner.
func (b *TransactionBuilder) WithUser(userID string) *TransactionBuilder {
	b.tx.UserID = userID
	return b
}

// Build validates and returns the transaction. It panics on invalid input.
func (b *TransactionBuilder) Build() *model.Transaction {
	return model.MustTransaction(b.tx)
}
