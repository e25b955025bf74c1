package ohlc

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedProvider memoises successful lookups of another provider. Misses are not
// cached, so data backfilled later becomes visible on the next lookup.
type CachedProvider struct {
	next  Provider
	cache *cache.Cache
}

// NewCachedProvider wraps next with an in-memory cache whose entries expire after ttl.
// A ttl of zero or less keeps entries forever.
func NewCachedProvider(next Provider, ttl time.Duration) *CachedProvider {
	expiration := ttl
	if ttl <= 0 {
		expiration = cache.NoExpiration
	}
	return &CachedProvider{
		next:  next,
		cache: cache.New(expiration, 10*time.Minute),
	}
}

// Get implements Provider.
func (p *CachedProvider) Get(ctx context.Context, symbol string, date time.Time) (Data, error) {
	key := NormalizeSymbol(symbol) + "|" + DayKey(date)
	if v, found := p.cache.Get(key); found {
		return v.(Data), nil
	}

	d, err := p.next.Get(ctx, symbol, date)
	if err != nil {
		return Data{}, err
	}
	p.cache.SetDefault(key, d)
	return d, nil
}

// Flush drops every cached entry.
func (p *CachedProvider) Flush() {
	p.cache.Flush()
}

// ItemCount returns the number of cached entries, including expired ones not yet evicted.
func (p *CachedProvider) ItemCount() int {
	return p.cache.ItemCount()
}
