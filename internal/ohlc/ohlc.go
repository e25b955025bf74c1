// Package ohlc provides daily open/high/low/close prices of assets in the reference fiat
// currency. Every implementation fails with apperrors.ErrNoPriceData when a symbol and day
// are unknown; none of them ever substitutes a placeholder price.
package ohlc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
)

// Data is one day of prices for one asset.
type Data struct {
	Open  decimal.Decimal `json:"open"`
	High  decimal.Decimal `json:"high"`
	Low   decimal.Decimal `json:"low"`
	Close decimal.Decimal `json:"close"`
}

// Flat returns Data with all four prices set to price.
func Flat(price decimal.Decimal) Data {
	return Data{Open: price, High: price, Low: price, Close: price}
}

// Provider looks up the prices of symbol on the calendar day of date.
type Provider interface {
	Get(ctx context.Context, symbol string, date time.Time) (Data, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, symbol string, date time.Time) (Data, error)

// Get calls f.
func (f ProviderFunc) Get(ctx context.Context, symbol string, date time.Time) (Data, error) {
	return f(ctx, symbol, date)
}

// Day truncates date to midnight of its own calendar day, ignoring its location.
func Day(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey formats the calendar day of date as YYYY-MM-DD.
func DayKey(date time.Time) string {
	return Day(date).Format("2006-01-02")
}

// NormalizeSymbol upper-cases and trims an asset symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// NoData returns an error wrapping apperrors.ErrNoPriceData for symbol on date.
func NoData(symbol string, date time.Time) error {
	return fmt.Errorf("%w: %s on %s", apperrors.ErrNoPriceData, NormalizeSymbol(symbol), DayKey(date))
}
