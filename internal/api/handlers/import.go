package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/service"
)

// MaxUploadSize limits the size of an uploaded exchange export.
const MaxUploadSize = 10 << 20

// ImportHandler handles uploads of exchange exports and the stored tax documents.
type ImportHandler struct {
	importService *service.ImportService
}

// NewImportHandler creates a new ImportHandler with the provided service dependency.
func NewImportHandler(importService *service.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// Formats handles GET requests listing the supported file formats in detection order.
//
// Endpoint: GET /api/import/formats
// Response: 200 OK with array of format names
func (h *ImportHandler) Formats(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, h.importService.Formats())
}

// Import handles POST requests carrying an exchange export as the raw request body.
// The format is detected unless ?format= names one. ?filename= is stored with the document.
//
// Endpoint: POST /api/user/{uuid}/import?format=&filename=
// Response: 201 Created with service.ImportResult
// Error: 400 Bad Request if the file is not recognised or a row is malformed,
// 404 Not Found if the user does not exist, 409 Conflict if the file was imported before,
// 413 Request Entity Too Large if the body exceeds MaxUploadSize
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondError(w, http.StatusRequestEntityTooLarge, apperrors.ErrFailedToImportTransactions.Error(),
				fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidRequestBody.Error(), err.Error())
		return
	}

	q := r.URL.Query()
	result, err := h.importService.Import(r.Context(), chi.URLParam(r, "uuid"), q.Get("filename"), data, q.Get("format"))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToImportTransactions, err)
		return
	}
	response.RespondJSON(w, http.StatusCreated, result)
}

// TaxDocs handles GET requests listing the documents a user uploaded, newest first.
//
// Endpoint: GET /api/user/{uuid}/taxdoc
// Response: 200 OK with array of model.TaxDoc
// Error: 404 Not Found if the user does not exist
func (h *ImportHandler) TaxDocs(w http.ResponseWriter, r *http.Request) {
	docs, err := h.importService.GetTaxDocs(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveTaxDocs, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, docs)
}

// DownloadTaxDoc handles GET requests returning the decrypted original file.
//
// Endpoint: GET /api/taxdoc/{uuid}
// Response: 200 OK with the file as text/csv attachment
// Error: 404 Not Found if the document does not exist, 500 if it cannot be decrypted
func (h *ImportHandler) DownloadTaxDoc(w http.ResponseWriter, r *http.Request) {
	doc, contents, err := h.importService.GetTaxDoc(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveTaxDocs, err)
		return
	}

	response.RespondAttachment(w, "text/csv", doc.FileName, contents)
}

// DeleteTaxDoc handles DELETE requests removing a document and the transactions imported from it.
//
// Endpoint: DELETE /api/taxdoc/{uuid}
// Response: 204 No Content
// Error: 404 Not Found if the document does not exist
func (h *ImportHandler) DeleteTaxDoc(w http.ResponseWriter, r *http.Request) {
	if err := h.importService.DeleteTaxDoc(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		respondServiceError(w, apperrors.ErrFailedToDeleteTaxDoc, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
