package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/coinpool"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/formats"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/ohlc"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/repository"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/service"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/yahoo"
)

// TestTaxDocKey returns a fresh fernet key for encrypting uploaded documents in tests.
func TestTaxDocKey(t *testing.T) *fernet.Key {
	t.Helper()

	var key fernet.Key
	if err := key.Generate(); err != nil {
		t.Fatalf("Failed to generate fernet key: %v", err)
	}
	return &key
}

func NewTestUserService(t *testing.T, db *sql.DB) *service.UserService {
	t.Helper()

	return service.NewUserService(repository.NewUserRepository(db))
}

func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()

	return service.NewTransactionService(
		repository.NewTransactionRepository(db),
		repository.NewUserRepository(db),
	)
}

func NewTestImportService(t *testing.T, db *sql.DB) *service.ImportService {
	t.Helper()

	return service.NewImportService(
		formats.DefaultRegistry(),
		repository.NewUserRepository(db),
		repository.NewTaxDocRepository(db, TestTaxDocKey(t)),
		logger.Discard(),
	)
}

// NewTestBasisService returns a FIFO, whole-dollar BasisService valuing coins with oracle.
// A nil oracle selects ohlc.ReferenceProvider.
func NewTestBasisService(t *testing.T, db *sql.DB, oracle ohlc.Provider) *service.BasisService {
	t.Helper()

	if oracle == nil {
		oracle = ohlc.ReferenceProvider()
	}
	return service.NewBasisService(
		repository.NewUserRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewReportRepository(db),
		oracle,
		coinpool.FIFO,
		model.RoundDollars,
		logger.Discard(),
	)
}

// NewTestPriceServiceWithMockYahoo returns a PriceService fetching from mockYahoo.
func NewTestPriceServiceWithMockYahoo(t *testing.T, db *sql.DB, mockYahoo yahoo.Client) *service.PriceService {
	t.Helper()

	return service.NewPriceService(
		ohlc.NewYahooProvider(mockYahoo),
		repository.NewPriceRepository(db),
		logger.Discard(),
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db, coinpool.FIFO, map[string]bool{"livePrices": false})
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeUserName generates a unique user name for testing.
//
// Example usage:
//
//	name := testutil.MakeUserName("Alice")
//	// Returns: "Alice ABC123"
func MakeUserName(base string) string {
	if base == "" {
		base = "User"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
