package ohlc

import (
	"context"
	"errors"
	"time"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
)

// ChainProvider asks each provider in turn. It moves to the next one only when the
// current one has no data; any other failure is returned as is.
type ChainProvider struct {
	providers []Provider
}

// NewChainProvider returns a provider trying providers in order.
func NewChainProvider(providers ...Provider) *ChainProvider {
	return &ChainProvider{providers: providers}
}

// Get implements Provider.
func (p *ChainProvider) Get(ctx context.Context, symbol string, date time.Time) (Data, error) {
	for _, provider := range p.providers {
		d, err := provider.Get(ctx, symbol, date)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, apperrors.ErrNoPriceData) {
			return Data{}, err
		}
	}
	return Data{}, NoData(symbol, date)
}
