package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/repository"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/validation"
)

// TransactionService handles transaction-related business logic operations.
type TransactionService struct {
	transactionRepo *repository.TransactionRepository
	userRepo        *repository.UserRepository
}

// NewTransactionService creates a new TransactionService with the provided repository dependencies.
func NewTransactionService(
	transactionRepo *repository.TransactionRepository,
	userRepo *repository.UserRepository,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		userRepo:        userRepo,
	}
}

// GetTransactions retrieves every transaction of a user ordered by date.
// Returns apperrors.ErrUserNotFound when the user does not exist.
func (s *TransactionService) GetTransactions(ctx context.Context, userID string) ([]*model.Transaction, error) {
	if _, err := s.userRepo.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.transactionRepo.GetTransactions(ctx, userID)
}

// GetTransaction retrieves a single transaction by its ID.
func (s *TransactionService) GetTransaction(ctx context.Context, transactionID string) (*model.Transaction, error) {
	return s.transactionRepo.GetTransaction(ctx, transactionID)
}

// CreateTransaction stores one manually entered transaction for userID.
// Coin-to-coin buys are stored as the equivalent sell.
func (s *TransactionService) CreateTransaction(ctx context.Context, userID string, req request.CreateTransactionRequest) (*model.Transaction, error) {
	if _, err := s.userRepo.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	op, err := model.ParseOperation(req.Operation)
	if err != nil {
		return nil, err
	}
	if op.IsSynthetic() {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSyntheticInput, op)
	}
	date, err := validation.ParseTime(req.Date)
	if err != nil {
		return nil, err
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = "manual"
	}
	tx, err := model.NewTransaction(model.Transaction{
		ID:               uuid.New().String(),
		UserID:           userID,
		Operation:        op,
		Date:             date,
		SymbolReceived:   req.SymbolReceived,
		QuantityReceived: req.QuantityReceived,
		SymbolTraded:     req.SymbolTraded,
		QuantityTraded:   req.QuantityTraded,
		Fees:             req.Fees,
		FeeSymbol:        req.FeeSymbol,
		Source:           source,
	})
	if err != nil {
		return nil, err
	}
	tx = tx.NormalizeCoinToCoin()

	if err := s.transactionRepo.InsertTransactions(ctx, userID, "", []*model.Transaction{tx}); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return tx, nil
}

// DeleteTransaction removes a transaction by its ID.
func (s *TransactionService) DeleteTransaction(ctx context.Context, transactionID string) error {
	return s.transactionRepo.DeleteTransaction(ctx, transactionID)
}
