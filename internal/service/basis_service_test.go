package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/coinpool"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/ohlc"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/repository"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/testutil"
)

// TestBasisService_Run tests a basis run over stored transactions.
//
// WHY: This is the end-to-end path of the service: load, match, persist. Reports must
// be stored only when the whole run succeeds.
func TestBasisService_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("stores reports of a successful run", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBasisService(t, db, nil)
		user := testutil.NewUser().Build(t, db)
		testutil.StoreTransactions(t, db, user.ID,
			testutil.Buy("2", "BTC", "2000").OnDay(0).Build(),
			testutil.Sell("1", "BTC", "1500").OnDay(400).Build(),
		)

		result, err := svc.Run(ctx, user.ID, coinpool.FIFO, model.RoundDollars)
		if err != nil {
			t.Fatalf("Run() returned unexpected error: %v", err)
		}
		if len(result.Reports) != 1 {
			t.Fatalf("Expected 1 report, got %d", len(result.Reports))
		}
		rep := result.Reports[0]
		if !rep.Basis.Equal(testutil.Dec("1000")) || !rep.Proceeds.Equal(testutil.Dec("1500")) || !rep.LongTerm {
			t.Errorf("report = %s", rep)
		}
		if got := result.Pool.Get("BTC"); len(got) != 1 || got[0].Operation != model.OperationSplit {
			t.Errorf("remaining pool = %v, want one SPLIT lot", got)
		}

		batch, method, err := svc.GetReports(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetReports() returned unexpected error: %v", err)
		}
		if batch.Count() != 1 || method != "FIFO" {
			t.Errorf("GetReports() = %d reports, method %q", batch.Count(), method)
		}
		if !batch.Totals().GainOrLoss.Equal(testutil.Dec("500")) {
			t.Errorf("stored gain = %s, want 500", batch.Totals().GainOrLoss)
		}
	})

	t.Run("failed run keeps previous reports", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBasisService(t, db, nil)
		user := testutil.NewUser().Build(t, db)
		testutil.StoreTransactions(t, db, user.ID,
			testutil.Buy("2", "BTC", "2000").OnDay(0).Build(),
			testutil.Sell("1", "BTC", "1500").OnDay(400).Build(),
		)
		if _, err := svc.Run(ctx, user.ID, coinpool.FIFO, model.RoundDollars); err != nil {
			t.Fatalf("Run() returned unexpected error: %v", err)
		}

		// no ETH price on day 500
		testutil.StoreTransactions(t, db, user.ID, testutil.Trade("1", "BTC", "15", "ETH").OnDay(500).Build())
		_, err := svc.Run(ctx, user.ID, coinpool.FIFO, model.RoundDollars)
		if !errors.Is(err, apperrors.ErrNoPriceData) {
			t.Fatalf("Run() error = %v, want ErrNoPriceData", err)
		}
		testutil.AssertRowCount(t, db, "basis_report", 1)
	})

	t.Run("values coin-to-coin trades with stored prices", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		oracle := ohlc.NewStoreProvider(repository.NewPriceRepository(db))
		svc := testutil.NewTestBasisService(t, db, oracle)
		user := testutil.NewUser().Build(t, db)
		testutil.StorePrice(t, db, "ETH", testutil.Day(10), ohlc.Flat(testutil.Dec("100")))
		testutil.StorePrice(t, db, "BTC", testutil.Day(10), ohlc.Flat(testutil.Dec("1500")))
		testutil.StoreTransactions(t, db, user.ID,
			testutil.Buy("1", "BTC", "1000").OnDay(0).Build(),
			testutil.Trade("1", "BTC", "15", "ETH").OnDay(10).Build(),
		)

		result, err := svc.Run(ctx, user.ID, coinpool.FIFO, model.RoundDollars)
		if err != nil {
			t.Fatalf("Run() returned unexpected error: %v", err)
		}
		if len(result.Reports) != 1 {
			t.Fatalf("Expected 1 report, got %d", len(result.Reports))
		}
		rep := result.Reports[0]
		if !rep.Proceeds.Equal(testutil.Dec("1500")) || rep.SecondaryAsset != "ETH" {
			t.Errorf("report = %s, secondary %q", rep, rep.SecondaryAsset)
		}
		eth := result.Pool.Get("ETH")
		if len(eth) != 1 || eth[0].Operation != model.OperationTradeInput {
			t.Errorf("ETH pool = %v, want one TRADE_INPUT", eth)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestBasisService(t, db, nil)

		if _, err := svc.Run(ctx, testutil.MakeID(), coinpool.FIFO, model.RoundDollars); !errors.Is(err, apperrors.ErrUserNotFound) {
			t.Errorf("Run() error = %v, want ErrUserNotFound", err)
		}
	})
}

// TestBasisService_RunAll tests running every user at once.
//
// WHY: Users run in parallel. Each user's reports must come only from that user's
// transactions.
func TestBasisService_RunAll(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestBasisService(t, db, nil)

	users := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		u := testutil.NewUser().Build(t, db)
		users = append(users, u.ID)
		txs := []*model.Transaction{testutil.Buy("10", "BTC", "10000").OnDay(0).Build()}
		for j := 0; j <= i; j++ {
			txs = append(txs, testutil.Sell("1", "BTC", "1200").OnDay(10+j).Build())
		}
		testutil.StoreTransactions(t, db, u.ID, txs...)
	}

	summaries, err := svc.RunAll(ctx, coinpool.LIFO, model.RoundCents)
	if err != nil {
		t.Fatalf("RunAll() returned unexpected error: %v", err)
	}
	if len(summaries) != len(users) {
		t.Fatalf("Expected %d summaries, got %d", len(users), len(summaries))
	}

	for i, id := range users {
		batch, method, err := svc.GetReports(ctx, id)
		if err != nil {
			t.Fatalf("GetReports() returned unexpected error: %v", err)
		}
		if batch.Count() != i+1 {
			t.Errorf("user %d: %d reports, want %d", i, batch.Count(), i+1)
		}
		if method != "LIFO" || batch.Rounding != model.RoundCents {
			t.Errorf("user %d: method %q rounding %v", i, method, batch.Rounding)
		}
	}
}
