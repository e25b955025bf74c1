package repository_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/repository"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/testutil"
)

func newTaxDoc(userID, hash string) *model.TaxDoc {
	return &model.TaxDoc{
		ID:               testutil.MakeID(),
		UserID:           userID,
		FileName:         "export.csv",
		FileHash:         hash,
		Format:           "adhoc",
		TransactionCount: 1,
		UploadedAt:       time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func importedBuy() []*model.Transaction {
	tx := testutil.Buy("1", "BTC", "1000").Build()
	tx.ID = testutil.MakeID()
	return []*model.Transaction{tx}
}

// TestTaxDocRepository tests encrypted document storage.
//
// WHY: Uploaded exchange exports contain personal financial data. They must be stored
// encrypted, come back byte for byte, and take their transactions with them on delete.
func TestTaxDocRepository(t *testing.T) {
	ctx := context.Background()
	contents := []byte("Type,Timestamp\nBuy,2017-01-01\n")

	t.Run("stores encrypted contents and transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTaxDocRepository(db, testutil.TestTaxDocKey(t))
		user := testutil.NewUser().Build(t, db)
		doc := newTaxDoc(user.ID, "hash-1")

		if err := repo.InsertTaxDoc(ctx, doc, contents, importedBuy()); err != nil {
			t.Fatalf("InsertTaxDoc() returned unexpected error: %v", err)
		}
		testutil.AssertRowCount(t, db, `"transaction"`, 1)

		var raw []byte
		if err := db.QueryRow(`SELECT contents FROM taxdoc WHERE id = ?`, doc.ID).Scan(&raw); err != nil {
			t.Fatalf("Failed to read raw contents: %v", err)
		}
		if bytes.Contains(raw, []byte("Timestamp")) {
			t.Error("Stored contents are not encrypted")
		}

		got, err := repo.GetContents(ctx, doc.ID)
		if err != nil {
			t.Fatalf("GetContents() returned unexpected error: %v", err)
		}
		if !bytes.Equal(got, contents) {
			t.Errorf("GetContents() = %q, want %q", got, contents)
		}

		meta, err := repo.GetTaxDoc(ctx, doc.ID)
		if err != nil {
			t.Fatalf("GetTaxDoc() returned unexpected error: %v", err)
		}
		if meta.FileHash != "hash-1" || meta.Format != "adhoc" || !meta.UploadedAt.Equal(doc.UploadedAt) {
			t.Errorf("GetTaxDoc() = %+v", meta)
		}
	})

	t.Run("rejects duplicate upload", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTaxDocRepository(db, testutil.TestTaxDocKey(t))
		user := testutil.NewUser().Build(t, db)

		if err := repo.InsertTaxDoc(ctx, newTaxDoc(user.ID, "same"), contents, importedBuy()); err != nil {
			t.Fatalf("InsertTaxDoc() returned unexpected error: %v", err)
		}
		err := repo.InsertTaxDoc(ctx, newTaxDoc(user.ID, "same"), contents, importedBuy())
		if !errors.Is(err, apperrors.ErrDuplicateUpload) {
			t.Fatalf("second InsertTaxDoc() error = %v, want ErrDuplicateUpload", err)
		}
		testutil.AssertRowCount(t, db, "taxdoc", 1)
		testutil.AssertRowCount(t, db, `"transaction"`, 1)
	})

	t.Run("wrong key fails to decrypt", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		user := testutil.NewUser().Build(t, db)
		doc := newTaxDoc(user.ID, "hash-2")

		writer := repository.NewTaxDocRepository(db, testutil.TestTaxDocKey(t))
		if err := writer.InsertTaxDoc(ctx, doc, contents, importedBuy()); err != nil {
			t.Fatalf("InsertTaxDoc() returned unexpected error: %v", err)
		}

		reader := repository.NewTaxDocRepository(db, testutil.TestTaxDocKey(t))
		if _, err := reader.GetContents(ctx, doc.ID); !errors.Is(err, apperrors.ErrDecryptionFailed) {
			t.Errorf("GetContents() error = %v, want ErrDecryptionFailed", err)
		}
	})

	t.Run("delete removes imported transactions only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTaxDocRepository(db, testutil.TestTaxDocKey(t))
		user := testutil.NewUser().Build(t, db)
		testutil.StoreTransactions(t, db, user.ID, testutil.Buy("2", "ETH", "20").Build())
		doc := newTaxDoc(user.ID, "hash-3")
		if err := repo.InsertTaxDoc(ctx, doc, contents, importedBuy()); err != nil {
			t.Fatalf("InsertTaxDoc() returned unexpected error: %v", err)
		}

		if err := repo.DeleteTaxDoc(ctx, doc.ID); err != nil {
			t.Fatalf("DeleteTaxDoc() returned unexpected error: %v", err)
		}
		testutil.AssertRowCount(t, db, "taxdoc", 0)
		testutil.AssertRowCount(t, db, `"transaction"`, 1)

		if err := repo.DeleteTaxDoc(ctx, doc.ID); !errors.Is(err, apperrors.ErrTaxDocNotFound) {
			t.Errorf("second DeleteTaxDoc() error = %v, want ErrTaxDocNotFound", err)
		}
		if _, err := repo.GetContents(ctx, doc.ID); !errors.Is(err, apperrors.ErrTaxDocNotFound) {
			t.Errorf("GetContents() error = %v, want ErrTaxDocNotFound", err)
		}
	})

	t.Run("lists documents of one user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		repo := repository.NewTaxDocRepository(db, testutil.TestTaxDocKey(t))
		alice := testutil.CreateUser(t, db, "Alice")
		bob := testutil.CreateUser(t, db, "Bob")

		if err := repo.InsertTaxDoc(ctx, newTaxDoc(alice.ID, "a"), contents, importedBuy()); err != nil {
			t.Fatalf("InsertTaxDoc() returned unexpected error: %v", err)
		}
		if err := repo.InsertTaxDoc(ctx, newTaxDoc(bob.ID, "a"), contents, importedBuy()); err != nil {
			t.Fatalf("InsertTaxDoc() for another user returned unexpected error: %v", err)
		}

		docs, err := repo.GetTaxDocs(ctx, alice.ID)
		if err != nil {
			t.Fatalf("GetTaxDocs() returned unexpected error: %v", err)
		}
		if len(docs) != 1 || docs[0].UserID != alice.ID {
			t.Errorf("GetTaxDocs() = %+v, want one document of Alice", docs)
		}
	})
}
