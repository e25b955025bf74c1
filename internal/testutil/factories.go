package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/ohlc"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/repository"
)

// UserBuilder provides a fluent interface for creating test users.
//
// Example usage:
//
//	// Simple creation with defaults
//	user := testutil.NewUser().Build(t, db)
//
//	// Customized user
//	user := testutil.NewUser().WithName("Alice").Build(t, db)
type UserBuilder struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// NewUser creates a UserBuilder with sensible defaults.
func NewUser() *UserBuilder {
	return &UserBuilder{
		ID:        MakeID(),
		Name:      MakeUserName("Test User"),
		CreatedAt: time.Now().UTC(),
	}
}

// WithID sets a custom ID.
func (b *UserBuilder) WithID(id string) *UserBuilder {
	b.ID = id
	return b
}

// WithName sets a custom name.
func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.Name = name
	return b
}

// WithCreatedAt sets a custom creation time.
func (b *UserBuilder) WithCreatedAt(createdAt time.Time) *UserBuilder {
	b.CreatedAt = createdAt
	return b
}

// Build inserts the user into the database and returns it.
func (b *UserBuilder) Build(t *testing.T, db *sql.DB) model.User {
	t.Helper()

	user := model.User{ID: b.ID, Name: b.Name, CreatedAt: b.CreatedAt}
	if err := repository.NewUserRepository(db).InsertUser(context.Background(), &user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// CreateUser is a shorthand for creating a user with a specific name.
func CreateUser(t *testing.T, db *sql.DB, name string) model.User {
	t.Helper()
	return NewUser().WithName(name).Build(t, db)
}

// StoreTransactions assigns IDs where missing and inserts txs for userID.
// The stored copies are returned in input order.
//
// Example usage:
//
//	user := testutil.NewUser().Build(t, db)
//	txs := testutil.StoreTransactions(t, db, user.ID,
//	    testutil.Buy("1", "BTC", "1000").OnDay(0).Build(),
//	    testutil.Sell("1", "BTC", "1500").OnDay(10).Build(),
//	)
func StoreTransactions(t *testing.T, db *sql.DB, userID string, txs ...*model.Transaction) []*model.Transaction {
	t.Helper()

	stored := make([]*model.Transaction, 0, len(txs))
	for _, tx := range txs {
		c := tx.WithUser(userID)
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		stored = append(stored, c)
	}
	repo := repository.NewTransactionRepository(db)
	if err := repo.InsertTransactions(context.Background(), userID, "", stored); err != nil {
		t.Fatalf("Failed to store test transactions: %v", err)
	}
	return stored
}

// StorePrice inserts one day of prices for symbol.
func StorePrice(t *testing.T, db *sql.DB, symbol string, day time.Time, d ohlc.Data) {
	t.Helper()

	repo := repository.NewPriceRepository(db)
	if err := repo.UpsertPrices(context.Background(), symbol, map[time.Time]ohlc.Data{ohlc.Day(day): d}); err != nil {
		t.Fatalf("Failed to store test price: %v", err)
	}
}
