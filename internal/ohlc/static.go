package ohlc

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type priceKey struct {
	symbol string
	day    string
}

// StaticProvider is an in-memory price table.
type StaticProvider struct {
	mu     sync.RWMutex
	prices map[priceKey]Data
}

// NewStaticProvider returns an empty table.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{prices: make(map[priceKey]Data)}
}

// ReferenceProvider returns the small fixed table used by tests and the CLI when no price
// file is given.
func ReferenceProvider() *StaticProvider {
	p := NewStaticProvider()
	jan1 := time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)
	p.Set("ETH", jan1, Data{
		Open:  decimal.NewFromInt(1000),
		High:  decimal.RequireFromString("1008.6"),
		Low:   decimal.NewFromInt(990),
		Close: decimal.NewFromInt(1000),
	})
	p.Set("BTC", jan1, Flat(decimal.NewFromInt(1000)))
	return p
}

// Set stores prices for symbol on the day of date, replacing any earlier value.
func (p *StaticProvider) Set(symbol string, date time.Time, d Data) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices[priceKey{NormalizeSymbol(symbol), DayKey(date)}] = d
}

// Len returns the number of stored symbol and day pairs.
func (p *StaticProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.prices)
}

// Get implements Provider.
func (p *StaticProvider) Get(_ context.Context, symbol string, date time.Time) (Data, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	d, ok := p.prices[priceKey{NormalizeSymbol(symbol), DayKey(date)}]
	if !ok {
		return Data{}, NoData(symbol, date)
	}
	return d, nil
}

// LoadCSV adds rows of the form symbol,date,open,high,low,close to the table.
// A first row starting with "symbol" is treated as a header. Dates are YYYY-MM-DD.
func (p *StaticProvider) LoadCSV(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 6
	reader.TrimLeadingSpace = true

	loaded := 0
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return loaded, fmt.Errorf("failed to read price file: %w", err)
		}
		if line == 1 && strings.EqualFold(record[0], "symbol") {
			continue
		}

		date, err := time.Parse("2006-01-02", record[1])
		if err != nil {
			return loaded, fmt.Errorf("line %d: invalid date %q: %w", line, record[1], err)
		}
		values := make([]decimal.Decimal, 4)
		for i := range values {
			values[i], err = decimal.NewFromString(record[i+2])
			if err != nil {
				return loaded, fmt.Errorf("line %d: invalid price %q: %w", line, record[i+2], err)
			}
		}
		p.Set(record[0], date, Data{Open: values[0], High: values[1], Low: values[2], Close: values[3]})
		loaded++
	}
	return loaded, nil
}
