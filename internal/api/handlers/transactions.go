package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/service"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/validation"
)

// TransactionHandler handles HTTP requests for transaction endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the transactionService.
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// Transactions handles GET requests to retrieve the transactions of a user, ordered by date.
//
// Endpoint: GET /api/user/{uuid}/transaction
// Response: 200 OK with array of model.Transaction
// Error: 404 Not Found if the user does not exist
func (h *TransactionHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.transactionService.GetTransactions(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveTransactions, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, transactions)
}

// CreateTransaction handles POST requests to add a hand-entered transaction to a user.
//
// Endpoint: POST /api/user/{uuid}/transaction
// Request body: request.CreateTransactionRequest
// Response: 201 Created with model.Transaction
// Error: 400 Bad Request on validation failure, 404 Not Found if the user does not exist
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidRequestBody.Error(), err.Error())
		return
	}
	if err := validation.ValidateCreateTransaction(req); err != nil {
		respondServiceError(w, apperrors.ErrFailedToCreateTransaction, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(r.Context(), chi.URLParam(r, "uuid"), req)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToCreateTransaction, err)
		return
	}
	response.RespondJSON(w, http.StatusCreated, transaction)
}

// GetTransaction handles GET requests to retrieve a single transaction.
//
// Endpoint: GET /api/transaction/{uuid}
// Response: 200 OK with model.Transaction
// Error: 404 Not Found if the transaction does not exist
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	transaction, err := h.transactionService.GetTransaction(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveTransactions, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, transaction)
}

// DeleteTransaction handles DELETE requests to remove a transaction.
//
// Endpoint: DELETE /api/transaction/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if the transaction does not exist
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.transactionService.DeleteTransaction(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, apperrors.ErrFailedToDeleteTransaction, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
