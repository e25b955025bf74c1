package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/ohlc"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/repository"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/testutil"
)

// TestPriceRepository tests OHLC storage.
//
// WHY: The price table backs the oracle of every basis run. A missing day must surface
// as ErrNoPriceData so the run aborts instead of valuing a coin at zero.
func TestPriceRepository(t *testing.T) {
	ctx := context.Background()
	day := testutil.Day(0)
	btc := ohlc.Data{
		Open:  testutil.Dec("1000"),
		High:  testutil.Dec("1008.6"),
		Low:   testutil.Dec("990"),
		Close: testutil.Dec("1001.25"),
	}

	t.Run("round trips prices ignoring time of day", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPriceRepository(db)
		testutil.StorePrice(t, db, "btc", day, btc)

		got, err := repo.GetPrice(ctx, "BTC", day.Add(15*time.Hour))
		if err != nil {
			t.Fatalf("GetPrice() returned unexpected error: %v", err)
		}
		if !got.High.Equal(btc.High) || !got.Close.Equal(btc.Close) {
			t.Errorf("GetPrice() = %+v, want %+v", got, btc)
		}
	})

	t.Run("missing day is ErrNoPriceData", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPriceRepository(db)
		testutil.StorePrice(t, db, "BTC", day, btc)

		_, err := repo.GetPrice(ctx, "BTC", testutil.Day(1))
		if !errors.Is(err, apperrors.ErrNoPriceData) {
			t.Errorf("GetPrice() error = %v, want ErrNoPriceData", err)
		}
	})

	t.Run("upsert overwrites existing day", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPriceRepository(db)
		testutil.StorePrice(t, db, "BTC", day, btc)
		testutil.StorePrice(t, db, "BTC", day, ohlc.Flat(testutil.Dec("2000")))

		got, err := repo.GetPrice(ctx, "BTC", day)
		if err != nil {
			t.Fatalf("GetPrice() returned unexpected error: %v", err)
		}
		if !got.High.Equal(testutil.Dec("2000")) {
			t.Errorf("GetPrice() high = %s, want 2000", got.High)
		}
		testutil.AssertRowCount(t, db, "ohlc_price", 1)
	})

	t.Run("latest date and symbols", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewPriceRepository(db)

		latest, err := repo.LatestDate(ctx, "BTC")
		if err != nil {
			t.Fatalf("LatestDate() returned unexpected error: %v", err)
		}
		if !latest.IsZero() {
			t.Errorf("LatestDate() on empty table = %v, want zero", latest)
		}

		testutil.StorePrice(t, db, "BTC", testutil.Day(0), btc)
		testutil.StorePrice(t, db, "BTC", testutil.Day(7), btc)
		testutil.StorePrice(t, db, "ETH", testutil.Day(3), btc)

		latest, err = repo.LatestDate(ctx, "btc")
		if err != nil {
			t.Fatalf("LatestDate() returned unexpected error: %v", err)
		}
		if !latest.Equal(testutil.Day(7)) {
			t.Errorf("LatestDate() = %v, want %v", latest, testutil.Day(7))
		}

		symbols, err := repo.Symbols(ctx)
		if err != nil {
			t.Fatalf("Symbols() returned unexpected error: %v", err)
		}
		if len(symbols) != 2 || symbols[0] != "BTC" || symbols[1] != "ETH" {
			t.Errorf("Symbols() = %v, want [BTC ETH]", symbols)
		}
	})

	t.Run("serves a StoreProvider", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.StorePrice(t, db, "ETH", day, btc)
		provider := ohlc.NewStoreProvider(repository.NewPriceRepository(db))

		got, err := provider.Get(ctx, "eth", day)
		if err != nil {
			t.Fatalf("Get() returned unexpected error: %v", err)
		}
		if !got.High.Equal(btc.High) {
			t.Errorf("Get() high = %s, want %s", got.High, btc.High)
		}
	})
}
