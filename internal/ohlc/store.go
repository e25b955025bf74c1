package ohlc

import (
	"context"
	"time"
)

// Store is persistent price storage, implemented by repository.PriceRepository.
type Store interface {
	GetPrice(ctx context.Context, symbol string, day time.Time) (Data, error)
	UpsertPrices(ctx context.Context, symbol string, prices map[time.Time]Data) error
}

// StoreProvider serves prices from a Store.
type StoreProvider struct {
	store Store
}

// NewStoreProvider returns a Provider backed by store.
func NewStoreProvider(store Store) *StoreProvider {
	return &StoreProvider{store: store}
}

// Get implements Provider.
func (p *StoreProvider) Get(ctx context.Context, symbol string, date time.Time) (Data, error) {
	return p.store.GetPrice(ctx, NormalizeSymbol(symbol), Day(date))
}
