package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/testutil"
)

// TestTransactionService_CreateTransaction tests manual transaction entry.
//
// WHY: Manual entries bypass the import parsers, so the service itself must normalise
// symbols and dates, store coin-to-coin buys as sells and refuse engine-only operations.
func TestTransactionService_CreateTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a normalised buy", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTransactionService(t, db)
		user := testutil.NewUser().Build(t, db)

		tx, err := svc.CreateTransaction(ctx, user.ID, request.CreateTransactionRequest{
			Operation:        "buy",
			Date:             "2017-01-01",
			SymbolReceived:   "btc",
			QuantityReceived: testutil.Dec("1.5"),
			SymbolTraded:     "usd",
			QuantityTraded:   testutil.Dec("1500"),
		})
		if err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}
		if tx.Operation != model.OperationBuy || tx.SymbolReceived != "BTC" || tx.FeeSymbol != model.FiatSymbol {
			t.Errorf("CreateTransaction() = %s", tx)
		}
		if tx.Source != "manual" {
			t.Errorf("CreateTransaction() source = %q, want manual", tx.Source)
		}
		if !tx.Date.Equal(testutil.RefDate) {
			t.Errorf("CreateTransaction() date = %v, want %v", tx.Date, testutil.RefDate)
		}

		stored, err := svc.GetTransactions(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetTransactions() returned unexpected error: %v", err)
		}
		if len(stored) != 1 || stored[0].ID != tx.ID {
			t.Errorf("GetTransactions() = %v, want the created transaction", stored)
		}
	})

	t.Run("stores coin-to-coin buy as sell", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTransactionService(t, db)
		user := testutil.NewUser().Build(t, db)

		tx, err := svc.CreateTransaction(ctx, user.ID, request.CreateTransactionRequest{
			Operation:        "BUY",
			Date:             "2017-01-01 10:00:00",
			SymbolReceived:   "ETH",
			QuantityReceived: testutil.Dec("15"),
			SymbolTraded:     "BTC",
			QuantityTraded:   testutil.Dec("1"),
		})
		if err != nil {
			t.Fatalf("CreateTransaction() returned unexpected error: %v", err)
		}
		if tx.Operation != model.OperationSell {
			t.Errorf("CreateTransaction() operation = %s, want SELL", tx.Operation)
		}
	})

	tests := []struct {
		name    string
		req     request.CreateTransactionRequest
		wantErr error
	}{
		{
			name:    "rejects split",
			req:     request.CreateTransactionRequest{Operation: "SPLIT", Date: "2017-01-01", SymbolReceived: "BTC", SymbolTraded: "USD"},
			wantErr: apperrors.ErrSyntheticInput,
		},
		{
			name:    "rejects unknown operation",
			req:     request.CreateTransactionRequest{Operation: "STAKE", Date: "2017-01-01", SymbolReceived: "BTC", SymbolTraded: "USD"},
			wantErr: apperrors.ErrInvalidOperation,
		},
		{
			name: "rejects negative amount",
			req: request.CreateTransactionRequest{
				Operation: "BUY", Date: "2017-01-01", SymbolReceived: "BTC", SymbolTraded: "USD",
				QuantityReceived: testutil.Dec("-1"),
			},
			wantErr: apperrors.ErrNegativeAmount,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			svc := testutil.NewTestTransactionService(t, db)
			user := testutil.NewUser().Build(t, db)

			_, err := svc.CreateTransaction(ctx, user.ID, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateTransaction() error = %v, want %v", err, tt.wantErr)
			}
			testutil.AssertRowCount(t, db, `"transaction"`, 0)
		})
	}

	t.Run("unknown user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTransactionService(t, db)

		_, err := svc.CreateTransaction(ctx, testutil.MakeID(), request.CreateTransactionRequest{
			Operation: "BUY", Date: "2017-01-01", SymbolReceived: "BTC", SymbolTraded: "USD",
		})
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			t.Errorf("CreateTransaction() error = %v, want ErrUserNotFound", err)
		}
	})
}

// TestTransactionService_DeleteTransaction tests deletion.
func TestTransactionService_DeleteTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestTransactionService(t, db)
	user := testutil.NewUser().Build(t, db)
	stored := testutil.StoreTransactions(t, db, user.ID, testutil.Buy("1", "BTC", "1000").Build())

	if err := svc.DeleteTransaction(context.Background(), stored[0].ID); err != nil {
		t.Fatalf("DeleteTransaction() returned unexpected error: %v", err)
	}
	if _, err := svc.GetTransaction(context.Background(), stored[0].ID); !errors.Is(err, apperrors.ErrTransactionNotFound) {
		t.Errorf("GetTransaction() error = %v, want ErrTransactionNotFound", err)
	}
}
