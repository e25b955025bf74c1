package basis_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/basis"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/coinpool"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/ohlc"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/testutil"
)

// run processes txs and fails the test on error.
func run(t *testing.T, method coinpool.Method, oracle ohlc.Provider, txs []*model.Transaction, opts ...basis.Option) *basis.Result {
	t.Helper()

	if oracle == nil {
		oracle = ohlc.ReferenceProvider()
	}
	opts = append([]basis.Option{basis.WithLogger(logger.Discard())}, opts...)
	p, err := basis.NewProcessor(method, oracle, opts...)
	if err != nil {
		t.Fatalf("NewProcessor() returned unexpected error: %v", err)
	}
	result, err := p.Process(context.Background(), txs)
	if err != nil {
		t.Fatalf("Process() returned unexpected error: %v", err)
	}
	return result
}

func assertDec(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(testutil.Dec(want)) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}
