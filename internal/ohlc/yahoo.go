package ohlc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/yahoo"
)

// YahooProvider fetches prices from Yahoo Finance on demand. It is slow and rate
// limited, so it is normally wrapped in a CachedProvider and placed after the
// database in a ChainProvider.
type YahooProvider struct {
	client yahoo.Client
}

// NewYahooProvider returns a provider using client.
func NewYahooProvider(client yahoo.Client) *YahooProvider {
	return &YahooProvider{client: client}
}

// Get implements Provider.
func (p *YahooProvider) Get(ctx context.Context, symbol string, date time.Time) (Data, error) {
	day := Day(date)
	prices, err := p.FetchRange(ctx, symbol, day, day.AddDate(0, 0, 1))
	if err != nil {
		return Data{}, err
	}
	d, ok := prices[day]
	if !ok {
		return Data{}, NoData(symbol, date)
	}
	return d, nil
}

// FetchRange returns every day of prices Yahoo has for symbol between from and to,
// keyed by day.
func (p *YahooProvider) FetchRange(ctx context.Context, symbol string, from, to time.Time) (map[time.Time]Data, error) {
	resp, err := p.client.QueryChart(ctx, yahoo.Ticker(symbol), Day(from), Day(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query prices of %s: %w", NormalizeSymbol(symbol), err)
	}
	chart, err := yahoo.ParseChart(resp)
	if errors.Is(err, yahoo.ErrNoData) {
		return map[time.Time]Data{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse prices of %s: %w", NormalizeSymbol(symbol), err)
	}

	prices := make(map[time.Time]Data, len(chart.Indicators))
	for _, ind := range chart.Indicators {
		prices[ind.Date] = Data{
			Open:  ind.PriceOpen,
			High:  ind.PriceHigh,
			Low:   ind.PriceLow,
			Close: ind.PriceClose,
		}
	}
	return prices, nil
}
