package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/validation"
)

// TestRespondJSON tests the respondJSON helper function.
// This is an internal test (package handlers, not handlers_test) because
// respondJSON is unexported.
func TestRespondJSON(t *testing.T) {
	t.Run("sets content-type and status code correctly", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := map[string]string{"message": "success"}

		respondJSON(w, 200, data)

		if w.Code != 200 {
			t.Errorf("Expected status 200, got %d", w.Code)
		}

		if w.Header().Get("Content-Type") != "application/json" {
			t.Errorf("Expected Content-Type 'application/json', got '%s'", w.Header().Get("Content-Type"))
		}
	})

	t.Run("handles nil data without error", func(t *testing.T) {
		w := httptest.NewRecorder()

		respondJSON(w, 204, nil)

		if w.Code != 204 {
			t.Errorf("Expected status 204, got %d", w.Code)
		}
	})

	t.Run("handles un-encodable data gracefully", func(t *testing.T) {
		w := httptest.NewRecorder()

		// Channels cannot be JSON encoded
		data := map[string]interface{}{
			"channel": make(chan int),
		}

		// Should not panic, just log the error
		respondJSON(w, 200, data)

		// Status should still be set even if encoding fails
		if w.Code != 200 {
			t.Errorf("Expected status 200, got %d", w.Code)
		}

		// Content-Type should still be set
		if w.Header().Get("Content-Type") != "application/json" {
			t.Errorf("Expected Content-Type to be set")
		}
	})

	t.Run("encodes valid data successfully", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := map[string]string{
			"name":  "test",
			"value": "data",
		}

		respondJSON(w, 200, data)

		if w.Body.Len() == 0 {
			t.Error("Expected response body to contain JSON data")
		}

		body := w.Body.String()
		if body == "" {
			t.Error("Expected non-empty response body")
		}
	})
}

// TestParseJSON tests decoding of JSON request bodies.
//
// WHY: Request structs are shared with validation. A typo in a field name must be reported
// rather than silently leaving the field empty.
func TestParseJSON(t *testing.T) {
	t.Run("decodes a valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/user", strings.NewReader(`{"name":"alice"}`))

		req, err := parseJSON[request.CreateUserRequest](r)
		if err != nil {
			t.Fatalf("parseJSON() returned unexpected error: %v", err)
		}
		if req.Name != "alice" {
			t.Errorf("Expected name 'alice', got %q", req.Name)
		}
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/user", strings.NewReader(`{"nmae":"alice"}`))

		if _, err := parseJSON[request.CreateUserRequest](r); err == nil {
			t.Error("Expected error for unknown field")
		}
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/api/user", strings.NewReader(`{"name":`))

		if _, err := parseJSON[request.CreateUserRequest](r); err == nil {
			t.Error("Expected error for malformed JSON")
		}
	})
}

// TestRespondServiceError tests the mapping of service errors onto HTTP status codes.
//
// WHY: Clients branch on the status code. Wrapped sentinels must keep their meaning after
// passing through services and repositories.
func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"validation error", &validation.Error{Fields: map[string]string{"name": "name is required"}},
			http.StatusBadRequest, "validation failed"},
		{"unknown user", fmt.Errorf("lookup: %w", apperrors.ErrUserNotFound),
			http.StatusNotFound, apperrors.ErrUserNotFound.Error()},
		{"unknown document", apperrors.ErrTaxDocNotFound,
			http.StatusNotFound, apperrors.ErrTaxDocNotFound.Error()},
		{"malformed row", fmt.Errorf("adhoc row 3: %w", apperrors.ErrMalformedRow),
			http.StatusBadRequest, apperrors.ErrFailedToImportTransactions.Error()},
		{"unrecognized format", apperrors.ErrUnrecognizedFormat,
			http.StatusBadRequest, apperrors.ErrFailedToImportTransactions.Error()},
		{"duplicate upload", fmt.Errorf("%w: export.csv", apperrors.ErrDuplicateUpload),
			http.StatusConflict, apperrors.ErrDuplicateUpload.Error()},
		{"missing price", fmt.Errorf("%w for ETH", apperrors.ErrNoPriceData),
			http.StatusUnprocessableEntity, apperrors.ErrFailedToImportTransactions.Error()},
		{"anything else", errors.New("disk full"),
			http.StatusInternalServerError, apperrors.ErrFailedToImportTransactions.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			respondServiceError(w, apperrors.ErrFailedToImportTransactions, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			var body response.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if body.Error != tt.wantError {
				t.Errorf("Expected error %q, got %q", tt.wantError, body.Error)
			}
		})
	}
}
