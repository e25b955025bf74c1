package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/formats"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/repository"
)

// ImportService turns uploaded exchange exports into stored transactions.
// The uploaded file itself is kept, encrypted, so an import can be audited or undone.
type ImportService struct {
	registry   *formats.Registry
	userRepo   *repository.UserRepository
	taxdocRepo *repository.TaxDocRepository
	log        logrus.FieldLogger
}

// NewImportService creates a new ImportService with the provided dependencies.
func NewImportService(
	registry *formats.Registry,
	userRepo *repository.UserRepository,
	taxdocRepo *repository.TaxDocRepository,
	log logrus.FieldLogger,
) *ImportService {
	return &ImportService{
		registry:   registry,
		userRepo:   userRepo,
		taxdocRepo: taxdocRepo,
		log:        log,
	}
}

// ImportResult summarizes one import.
type ImportResult struct {
	TaxDoc       model.TaxDoc         `json:"taxdoc"`
	Transactions []*model.Transaction `json:"transactions"`
}

// Formats lists the supported export formats in detection order.
func (s *ImportService) Formats() []string {
	return s.registry.Names()
}

// Import parses data, with the format named by hint or detected when hint is empty, and
// stores the transactions together with the encrypted file for userID.
//
// Uploading the same file twice fails with apperrors.ErrDuplicateUpload.
func (s *ImportService) Import(ctx context.Context, userID, filename string, data []byte, hint string) (*ImportResult, error) {
	if _, err := s.userRepo.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", apperrors.ErrUnrecognizedFormat)
	}

	parsed, err := s.registry.Parse(data, hint)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(data)
	doc := model.TaxDoc{
		ID:               uuid.New().String(),
		UserID:           userID,
		FileName:         cleanFileName(filename, parsed.Format),
		FileHash:         hex.EncodeToString(sum[:]),
		Format:           parsed.Format,
		TransactionCount: len(parsed.Transactions),
		UploadedAt:       time.Now().UTC(),
	}

	txs := make([]*model.Transaction, 0, len(parsed.Transactions))
	for _, t := range parsed.Transactions {
		t = t.WithUser(userID)
		t.ID = uuid.New().String()
		if t.Source == "" {
			t.Source = parsed.Format
		}
		txs = append(txs, t)
	}

	if err := s.taxdocRepo.InsertTaxDoc(ctx, &doc, data, txs); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user":         userID,
		"format":       doc.Format,
		"file":         doc.FileName,
		"transactions": doc.TransactionCount,
	}).Info("imported exchange export")

	return &ImportResult{TaxDoc: doc, Transactions: txs}, nil
}

// GetTaxDocs lists the documents uploaded by userID.
func (s *ImportService) GetTaxDocs(ctx context.Context, userID string) ([]model.TaxDoc, error) {
	if _, err := s.userRepo.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.taxdocRepo.GetTaxDocs(ctx, userID)
}

// GetTaxDoc returns the metadata and decrypted contents of one document.
func (s *ImportService) GetTaxDoc(ctx context.Context, taxdocID string) (*model.TaxDoc, []byte, error) {
	doc, err := s.taxdocRepo.GetTaxDoc(ctx, taxdocID)
	if err != nil {
		return nil, nil, err
	}
	contents, err := s.taxdocRepo.GetContents(ctx, taxdocID)
	if err != nil {
		return nil, nil, err
	}
	return doc, contents, nil
}

// DeleteTaxDoc removes a document and the transactions imported from it.
func (s *ImportService) DeleteTaxDoc(ctx context.Context, taxdocID string) error {
	return s.taxdocRepo.DeleteTaxDoc(ctx, taxdocID)
}

func cleanFileName(name, format string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == "" {
		return format + ".csv"
	}
	return name
}
