package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/ohlc"
)

// PriceRepository stores daily OHLC prices. It implements ohlc.Store.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new PriceRepository with the provided database connection.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

var _ ohlc.Store = (*PriceRepository)(nil)

// GetPrice retrieves the prices of symbol on day. A missing row is ohlc.NoData.
func (r *PriceRepository) GetPrice(ctx context.Context, symbol string, day time.Time) (ohlc.Data, error) {
	symbol = ohlc.NormalizeSymbol(symbol)
	var d ohlc.Data
	err := r.db.QueryRowContext(ctx,
		`SELECT open, high, low, close FROM ohlc_price WHERE symbol = ? AND date = ?`,
		symbol, ohlc.DayKey(day),
	).Scan(&d.Open, &d.High, &d.Low, &d.Close)
	if errors.Is(err, sql.ErrNoRows) {
		return ohlc.Data{}, ohlc.NoData(symbol, day)
	}
	if err != nil {
		return ohlc.Data{}, fmt.Errorf("failed to query ohlc_price table: %w", err)
	}
	return d, nil
}

// UpsertPrices inserts or overwrites the prices of symbol for every day in prices.
func (r *PriceRepository) UpsertPrices(ctx context.Context, symbol string, prices map[time.Time]ohlc.Data) error {
	if len(prices) == 0 {
		return nil
	}
	symbol = ohlc.NormalizeSymbol(symbol)

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback() //nolint:errcheck // no-op after Commit

	stmt, err := dbTx.PrepareContext(ctx, `INSERT INTO ohlc_price (symbol, date, open, high, low, close)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			open = excluded.open, high = excluded.high, low = excluded.low, close = excluded.close`)
	if err != nil {
		return fmt.Errorf("failed to prepare price upsert: %w", err)
	}
	defer stmt.Close()

	for day, d := range prices {
		if _, err := stmt.ExecContext(ctx, symbol, ohlc.DayKey(day), d.Open, d.High, d.Low, d.Close); err != nil {
			return fmt.Errorf("failed to upsert price %s on %s: %w", symbol, ohlc.DayKey(day), err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit prices: %w", err)
	}
	return nil
}

// LatestDate returns the most recent day stored for symbol, or the zero time when there is none.
func (r *PriceRepository) LatestDate(ctx context.Context, symbol string) (time.Time, error) {
	var latest sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT MAX(date) FROM ohlc_price WHERE symbol = ?`,
		ohlc.NormalizeSymbol(symbol)).Scan(&latest)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query ohlc_price table: %w", err)
	}
	if !latest.Valid {
		return time.Time{}, nil
	}
	return ParseTime(latest.String)
}

// Symbols lists every symbol with at least one stored price.
func (r *PriceRepository) Symbols(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT symbol FROM ohlc_price`)
	if err != nil {
		return nil, fmt.Errorf("failed to query ohlc_price table: %w", err)
	}
	defer rows.Close()

	symbols := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan ohlc_price table results: %w", err)
		}
		symbols = append(symbols, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ohlc_price table: %w", err)
	}
	sort.Strings(symbols)
	return symbols, nil
}
