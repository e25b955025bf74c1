package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fernet/fernet-go"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
)

// TaxDocRepository stores uploaded exchange exports encrypted with a fernet key, alongside the
// transactions parsed from them.
type TaxDocRepository struct {
	db  *sql.DB
	key *fernet.Key
}

// NewTaxDocRepository creates a new TaxDocRepository. key encrypts and decrypts document contents.
func NewTaxDocRepository(db *sql.DB, key *fernet.Key) *TaxDocRepository {
	return &TaxDocRepository{db: db, key: key}
}

const taxdocColumns = `id, user_id, file_name, file_hash, format, transaction_count, uploaded_at`

// InsertTaxDoc encrypts contents and stores the document together with txs in one database
// transaction, so an import is either fully stored or not at all.
// A second upload of the same file hash by the same user fails with apperrors.ErrDuplicateUpload.
func (r *TaxDocRepository) InsertTaxDoc(ctx context.Context, doc *model.TaxDoc, contents []byte, txs []*model.Transaction) error {
	token, err := fernet.EncryptAndSign(contents, r.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt document: %w", err)
	}

	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback() //nolint:errcheck // no-op after Commit

	var existing string
	err = dbTx.QueryRowContext(ctx, `SELECT id FROM taxdoc WHERE user_id = ? AND file_hash = ?`,
		doc.UserID, doc.FileHash).Scan(&existing)
	if err == nil {
		return fmt.Errorf("%w: %s matches document %s", apperrors.ErrDuplicateUpload, doc.FileName, existing)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to query taxdoc table: %w", err)
	}

	_, err = dbTx.ExecContext(ctx, `INSERT INTO taxdoc (`+taxdocColumns+`, contents) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.UserID, doc.FileName, doc.FileHash, doc.Format, doc.TransactionCount,
		formatTime(doc.UploadedAt), token,
	)
	if err != nil {
		return fmt.Errorf("failed to insert taxdoc: %w", err)
	}
	if err := insertTransactions(ctx, dbTx, doc.UserID, doc.ID, txs); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit taxdoc: %w", err)
	}
	return nil
}

// GetTaxDocs retrieves the metadata of every document uploaded by userID, newest first.
func (r *TaxDocRepository) GetTaxDocs(ctx context.Context, userID string) ([]model.TaxDoc, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taxdocColumns+`
		FROM taxdoc WHERE user_id = ? ORDER BY uploaded_at DESC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query taxdoc table: %w", err)
	}
	defer rows.Close()

	docs := []model.TaxDoc{}
	for rows.Next() {
		doc, err := scanTaxDoc(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating taxdoc table: %w", err)
	}
	return docs, nil
}

// GetTaxDoc retrieves the metadata of one document. Returns apperrors.ErrTaxDocNotFound if
// there is none.
func (r *TaxDocRepository) GetTaxDoc(ctx context.Context, id string) (*model.TaxDoc, error) {
	doc, err := scanTaxDoc(r.db.QueryRowContext(ctx, `SELECT `+taxdocColumns+` FROM taxdoc WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrTaxDocNotFound
	}
	return doc, err
}

// GetContents decrypts the stored file of document id.
func (r *TaxDocRepository) GetContents(ctx context.Context, id string) ([]byte, error) {
	var token []byte
	err := r.db.QueryRowContext(ctx, `SELECT contents FROM taxdoc WHERE id = ?`, id).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrTaxDocNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query taxdoc table: %w", err)
	}

	// negative ttl: stored documents never expire
	plain := fernet.VerifyAndDecrypt(token, -1, []*fernet.Key{r.key})
	if plain == nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrDecryptionFailed, id)
	}
	return plain, nil
}

// DeleteTaxDoc removes a document and every transaction imported from it.
func (r *TaxDocRepository) DeleteTaxDoc(ctx context.Context, id string) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback() //nolint:errcheck // no-op after Commit

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM "transaction" WHERE taxdoc_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete imported transactions: %w", err)
	}
	res, err := dbTx.ExecContext(ctx, `DELETE FROM taxdoc WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete taxdoc: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to delete taxdoc: %w", err)
	} else if n == 0 {
		return apperrors.ErrTaxDocNotFound
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit taxdoc deletion: %w", err)
	}
	return nil
}

func scanTaxDoc(s scanner) (*model.TaxDoc, error) {
	var doc model.TaxDoc
	var uploadedAtStr string
	err := s.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&doc.FileHash,
		&doc.Format,
		&doc.TransactionCount,
		&uploadedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan taxdoc table results: %w", err)
	}
	if doc.UploadedAt, err = ParseTime(uploadedAtStr); err != nil {
		return nil, err
	}
	return &doc, nil
}
