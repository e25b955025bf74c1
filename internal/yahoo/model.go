package yahoo

import (
	"time"

	"github.com/shopspring/decimal"
)

// Response is the raw JSON body of the Yahoo Finance v8 chart endpoint.
type Response struct {
	Chart Chart `json:"chart"`
}

// Chart holds the results of one chart query, or an error.
type Chart struct {
	Result []Result    `json:"result"`
	Error  *ChartError `json:"error"`
}

// ChartError is the error object Yahoo returns in place of results.
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Result is the chart of a single ticker.
type Result struct {
	Meta       Meta                `json:"meta"`
	Timestamp  []int64             `json:"timestamp"`
	Indicators IndicatorsContainer `json:"indicators"`
}

// Meta describes the ticker of a Result.
type Meta struct {
	Currency       string `json:"currency"`
	Symbol         string `json:"symbol"`
	ExchangeName   string `json:"exchangeName"`
	InstrumentType string `json:"instrumentType"`
}

// IndicatorsContainer wraps the quote series.
type IndicatorsContainer struct {
	Quote []Quote `json:"quote"`
}

// Quote holds parallel price series. Entries are null for days without trading data,
// hence the pointers.
type Quote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

// PriceChart is a parsed chart: metadata plus one Indicators entry per day with
// complete data.
type PriceChart struct {
	Currency     string       `json:"currency"`
	Symbol       string       `json:"symbol"`
	ExchangeName string       `json:"exchangeName"`
	Indicators   []Indicators `json:"indicators"`
}

// Indicators is one day of prices. Date is midnight UTC of the trading day.
type Indicators struct {
	Date       time.Time
	PriceOpen  decimal.Decimal
	PriceHigh  decimal.Decimal
	PriceLow   decimal.Decimal
	PriceClose decimal.Decimal
}
