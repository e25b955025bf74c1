package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/basis"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/logger"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/model"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/report"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/service"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/validation"
)

// BasisHandler handles basis runs and the reports they produce.
type BasisHandler struct {
	basisService *service.BasisService
}

// NewBasisHandler creates a new BasisHandler with the provided service dependency.
func NewBasisHandler(basisService *service.BasisService) *BasisHandler {
	return &BasisHandler{basisService: basisService}
}

// ReportsResponse is the JSON form of a set of cost basis reports.
type ReportsResponse struct {
	Method    string                   `json:"method"`
	Rounding  string                   `json:"rounding"`
	Reports   []*model.CostBasisReport `json:"reports"`
	Totals    model.Totals             `json:"totals"`
	ShortTerm model.Totals             `json:"shortTerm"`
	LongTerm  model.Totals             `json:"longTerm"`
}

// RunResponse is the outcome of a basis run: its reports, the data quality flags raised along
// the way and the lots still held afterwards.
type RunResponse struct {
	ReportsResponse
	Flags []model.Flag                    `json:"flags"`
	Pool  map[string][]*model.Transaction `json:"pool"`
}

func newReportsResponse(method string, batch *model.ReportBatch) ReportsResponse {
	return ReportsResponse{
		Method:    method,
		Rounding:  batch.Rounding.String(),
		Reports:   batch.Reports,
		Totals:    batch.Totals(),
		ShortTerm: batch.ShortTerm().Totals(),
		LongTerm:  batch.LongTerm().Totals(),
	}
}

func newRunResponse(method string, result *basis.Result) RunResponse {
	pool := make(map[string][]*model.Transaction)
	for _, symbol := range result.Pool.Symbols() {
		pool[symbol] = result.Pool.Get(symbol)
	}
	flags := result.Flags
	if flags == nil {
		flags = []model.Flag{}
	}
	return RunResponse{
		ReportsResponse: newReportsResponse(method, result.Batch()),
		Flags:           flags,
		Pool:            pool,
	}
}

// Run handles POST requests that run the basis engine over all transactions of a user and
// replace the user's stored reports with the result.
//
// Endpoint: POST /api/user/{uuid}/basis?method=fifo|lifo&rounding=dollars|cents
// Response: 200 OK with RunResponse
// Error: 400 Bad Request on an unknown method or rounding, 404 Not Found if the user does not exist,
// 422 Unprocessable Entity if a required price is missing
func (h *BasisHandler) Run(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	method, rounding, err := validation.ParseBasisParams(q.Get("method"), q.Get("rounding"),
		h.basisService.DefaultMethod(), h.basisService.DefaultRounding())
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRunBasis, err)
		return
	}

	result, err := h.basisService.Run(r.Context(), chi.URLParam(r, "uuid"), method, rounding)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRunBasis, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, newRunResponse(method.String(), result))
}

// RunAll handles POST requests that run the basis engine for every user.
//
// Endpoint: POST /api/basis?method=fifo|lifo&rounding=dollars|cents
// Response: 200 OK with array of service.RunSummary
// Error: 400 Bad Request on an unknown method or rounding, 422 if a required price is missing
func (h *BasisHandler) RunAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	method, rounding, err := validation.ParseBasisParams(q.Get("method"), q.Get("rounding"),
		h.basisService.DefaultMethod(), h.basisService.DefaultRounding())
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRunBasis, err)
		return
	}

	summaries, err := h.basisService.RunAll(r.Context(), method, rounding)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRunBasis, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, summaries)
}

// Reports handles GET requests for the stored reports of a user's last basis run.
// ?format= selects the representation: json (default), csv, 8949 or text.
//
// Endpoint: GET /api/user/{uuid}/report?format=json|csv|8949|text
// Response: 200 OK with ReportsResponse, a CSV attachment or plain text
// Error: 400 Bad Request on an unknown format, 404 Not Found if the user does not exist
func (h *BasisHandler) Reports(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "uuid")
	format := r.URL.Query().Get("format")
	switch format {
	case "", "json", "csv", "8949", "text":
	default:
		response.RespondError(w, http.StatusBadRequest, "invalid report format",
			fmt.Sprintf("unknown format %q, expected json, csv, 8949 or text", format))
		return
	}

	batch, method, err := h.basisService.GetReports(r.Context(), userID)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveReports, err)
		return
	}

	switch format {
	case "csv":
		writeReportCSV(w, "cost_basis_"+userID+".csv", batch, report.WriteCSV)
	case "8949":
		writeReportCSV(w, "form_8949_"+userID+".csv", batch, report.WriteForm8949CSV)
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := fmt.Fprint(w, report.HumanReadable(batch)); err != nil {
			logger.L.WithError(err).Error("failed to write report text")
		}
	default:
		response.RespondJSON(w, http.StatusOK, newReportsResponse(method, batch))
	}
}

// ReportCSV handles GET requests for the stored reports as a CSV download.
//
// Endpoint: GET /api/user/{uuid}/report.csv
// Response: 200 OK with a text/csv attachment
// Error: 404 Not Found if the user does not exist
func (h *BasisHandler) ReportCSV(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "uuid")
	batch, _, err := h.basisService.GetReports(r.Context(), userID)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveReports, err)
		return
	}
	writeReportCSV(w, "cost_basis_"+userID+".csv", batch, report.WriteCSV)
}

// writeReportCSV renders into a buffer first so a render failure can still become a 500.
func writeReportCSV(w http.ResponseWriter, filename string, batch *model.ReportBatch, render func(io.Writer, *model.ReportBatch) error) {
	var buf bytes.Buffer
	if err := render(&buf, batch); err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveReports, err)
		return
	}
	response.RespondAttachment(w, "text/csv", filename, buf.Bytes())
}
