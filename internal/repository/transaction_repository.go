package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
)

// TransactionRepository provides data access methods for the transaction table.
// Only user-entered operations are stored; SPLIT and TRADE_INPUT records live and die
// inside a single basis run.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, user_id, operation, date, symbol_received, quantity_received,
	symbol_traded, quantity_traded, fees, fee_symbol, source`

// InsertTransactions stores txs for userID in one database transaction. Every transaction must
// already carry an ID. taxdocID links the rows to the uploaded file they came from and may be empty.
func (r *TransactionRepository) InsertTransactions(ctx context.Context, userID, taxdocID string, txs []*model.Transaction) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback() //nolint:errcheck // no-op after Commit

	if err := insertTransactions(ctx, dbTx, userID, taxdocID, txs); err != nil {
		return err
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transactions: %w", err)
	}
	return nil
}

func insertTransactions(ctx context.Context, dbTx *sql.Tx, userID, taxdocID string, txs []*model.Transaction) error {
	stmt, err := dbTx.PrepareContext(ctx, `INSERT INTO "transaction" (`+transactionColumns+`, taxdoc_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare transaction insert: %w", err)
	}
	defer stmt.Close()

	var taxdoc sql.NullString
	if taxdocID != "" {
		taxdoc = sql.NullString{String: taxdocID, Valid: true}
	}
	for _, t := range txs {
		if t.Operation.IsSynthetic() {
			return fmt.Errorf("%w: %s", apperrors.ErrSyntheticInput, t.Operation)
		}
		if t.ID == "" {
			return fmt.Errorf("%w: transaction id", apperrors.ErrMissingRequiredField)
		}
		_, err := stmt.ExecContext(ctx,
			t.ID, userID, string(t.Operation), formatTime(t.Date),
			t.SymbolReceived, t.QuantityReceived,
			t.SymbolTraded, t.QuantityTraded,
			t.Fees, t.FeeSymbol, t.Source, taxdoc,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", t.ID, err)
		}
	}
	return nil
}

// GetTransactions retrieves every transaction of userID ordered by date, then by insertion.
func (r *TransactionRepository) GetTransactions(ctx context.Context, userID string) ([]*model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+transactionColumns+`
		FROM "transaction"
		WHERE user_id = ?
		ORDER BY date ASC, rowid ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	txs := []*model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}
	return txs, nil
}

// GetTransaction retrieves one transaction by ID. Returns apperrors.ErrTransactionNotFound if
// there is none.
func (r *TransactionRepository) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM "transaction" WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrTransactionNotFound
	}
	return t, err
}

// DeleteTransaction removes one transaction. Returns apperrors.ErrTransactionNotFound if
// nothing was deleted.
func (r *TransactionRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM "transaction" WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if n == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// CountTransactions returns the number of transactions stored for userID.
func (r *TransactionRepository) CountTransactions(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM "transaction" WHERE user_id = ?`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (*model.Transaction, error) {
	var t model.Transaction
	var op, dateStr string
	var source sql.NullString
	err := s.Scan(
		&t.ID,
		&t.UserID,
		&op,
		&dateStr,
		&t.SymbolReceived,
		&t.QuantityReceived,
		&t.SymbolTraded,
		&t.QuantityTraded,
		&t.Fees,
		&t.FeeSymbol,
		&source,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction table results: %w", err)
	}
	if t.Operation, err = model.ParseOperation(op); err != nil {
		return nil, err
	}
	if t.Date, err = ParseTime(dateStr); err != nil {
		return nil, err
	}
	t.Source = source.String
	return &t, nil
}
