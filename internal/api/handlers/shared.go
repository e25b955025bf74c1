package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/validation"
)

// maxJSONBody limits JSON request bodies.
const maxJSONBody = 1 << 20

// respondJSON sends a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.L.WithError(err).Error("Failed to encode JSON")
		}
	}
}

// parseJSON decodes the request body into a T. Unknown fields are rejected.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	return req, nil
}

// notFound lists the errors answered with 404.
var notFound = []error{
	apperrors.ErrUserNotFound,
	apperrors.ErrTransactionNotFound,
	apperrors.ErrTaxDocNotFound,
}

// badInput lists the errors caused by the request content, answered with 400.
var badInput = []error{
	apperrors.ErrInvalidUUID,
	apperrors.ErrInvalidOperation,
	apperrors.ErrSyntheticInput,
	apperrors.ErrNegativeAmount,
	apperrors.ErrMissingRequiredField,
	apperrors.ErrInvalidPoolMethod,
	apperrors.ErrInvalidRounding,
	apperrors.ErrUnrecognizedFormat,
	apperrors.ErrMalformedRow,
}

// respondServiceError maps a service error onto an HTTP status. failure is the message
// used when nothing more specific applies.
//
//   - validation errors and bad input: 400
//   - unknown user, transaction or document: 404
//   - duplicate upload: 409
//   - a price the basis run needs is missing: 422
//   - anything else: 500
func respondServiceError(w http.ResponseWriter, failure error, err error) {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		response.RespondError(w, http.StatusBadRequest, "validation failed", vErr.Fields)
		return
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			response.RespondError(w, http.StatusNotFound, target.Error(), err.Error())
			return
		}
	}
	for _, target := range badInput {
		if errors.Is(err, target) {
			response.RespondError(w, http.StatusBadRequest, failure.Error(), err.Error())
			return
		}
	}
	switch {
	case errors.Is(err, apperrors.ErrDuplicateUpload):
		response.RespondError(w, http.StatusConflict, apperrors.ErrDuplicateUpload.Error(), err.Error())
	case errors.Is(err, apperrors.ErrNoPriceData):
		response.RespondError(w, http.StatusUnprocessableEntity, failure.Error(), err.Error())
	default:
		logger.L.WithError(err).Error(failure.Error())
		response.RespondError(w, http.StatusInternalServerError, failure.Error(), err.Error())
	}
}
