package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/ohlc"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/repository"
)

// maxParallelFetches bounds concurrent requests to the price source.
const maxParallelFetches = 3

// defaultHistoryStart is where Update begins for a symbol with no stored prices.
var defaultHistoryStart = time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC)

// RangeFetcher downloads daily prices for a date range. ohlc.YahooProvider implements it.
type RangeFetcher interface {
	FetchRange(ctx context.Context, symbol string, from, to time.Time) (map[time.Time]ohlc.Data, error)
}

// PriceService keeps the ohlc_price table filled from an external price source.
type PriceService struct {
	fetcher   RangeFetcher
	priceRepo *repository.PriceRepository
	log       logrus.FieldLogger
}

// NewPriceService creates a new PriceService with the provided dependencies.
func NewPriceService(fetcher RangeFetcher, priceRepo *repository.PriceRepository, log logrus.FieldLogger) *PriceService {
	return &PriceService{
		fetcher:   fetcher,
		priceRepo: priceRepo,
		log:       log,
	}
}

// Refresh downloads and stores the prices of each symbol between from and to.
// Symbols are fetched in parallel. It returns the number of days stored per symbol.
func (s *PriceService) Refresh(ctx context.Context, symbols []string, from, to time.Time) (map[string]int, error) {
	symbols = lo.Uniq(lo.Map(symbols, func(sym string, _ int) string { return ohlc.NormalizeSymbol(sym) }))
	return s.refresh(ctx, symbols, func(string) (time.Time, error) { return from, nil }, to)
}

// Update extends the stored prices of each symbol up to now, starting from the last
// stored day. An empty symbols list updates every symbol already in the table.
func (s *PriceService) Update(ctx context.Context, symbols []string, now time.Time) (map[string]int, error) {
	if len(symbols) == 0 {
		stored, err := s.priceRepo.Symbols(ctx)
		if err != nil {
			return nil, err
		}
		symbols = stored
	}
	symbols = lo.Uniq(lo.Map(symbols, func(sym string, _ int) string { return ohlc.NormalizeSymbol(sym) }))

	return s.refresh(ctx, symbols, func(symbol string) (time.Time, error) {
		latest, err := s.priceRepo.LatestDate(ctx, symbol)
		if err != nil {
			return time.Time{}, err
		}
		if latest.IsZero() {
			return defaultHistoryStart, nil
		}
		// the latest day may have been stored before it closed
		return latest, nil
	}, now)
}

func (s *PriceService) refresh(ctx context.Context, symbols []string, start func(string) (time.Time, error), to time.Time) (map[string]int, error) {
	var mu sync.Mutex
	stored := make(map[string]int, len(symbols))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for _, symbol := range symbols {
		g.Go(func() error {
			from, err := start(symbol)
			if err != nil {
				return err
			}
			prices, err := s.fetcher.FetchRange(ctx, symbol, from, to)
			if err != nil {
				return err
			}
			if err := s.priceRepo.UpsertPrices(ctx, symbol, prices); err != nil {
				return fmt.Errorf("failed to store prices of %s: %w", symbol, err)
			}

			s.log.WithFields(logrus.Fields{
				"symbol": symbol,
				"from":   ohlc.DayKey(from),
				"to":     ohlc.DayKey(to),
				"days":   len(prices),
			}).Info("refreshed prices")

			mu.Lock()
			stored[symbol] = len(prices)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stored, nil
}
