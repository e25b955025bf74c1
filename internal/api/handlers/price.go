package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/request"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/response"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/apperrors"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/service"
	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/validation"
)

// PriceHandler handles requests that load daily prices into the price store.
type PriceHandler struct {
	priceService *service.PriceService
	now          func() time.Time
}

// NewPriceHandler creates a new PriceHandler with the provided service dependency.
func NewPriceHandler(priceService *service.PriceService) *PriceHandler {
	return &PriceHandler{priceService: priceService, now: time.Now}
}

// RefreshResponse reports how many days were stored per symbol.
type RefreshResponse struct {
	From   string         `json:"from"`
	To     string         `json:"to"`
	Stored map[string]int `json:"stored"`
}

// Refresh handles POST requests that fetch daily prices for a date range and store them.
//
// Endpoint: POST /api/price/refresh
// Request body: {"symbols": ["BTC"], "from": "2024-01-01", "to": "2024-01-31"}
// Response: 200 OK with RefreshResponse
// Error: 400 Bad Request on validation failure, 500 if the fetch fails
func (h *PriceHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RefreshPricesRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidRequestBody.Error(), err.Error())
		return
	}
	from, to, err := validation.ValidateRefreshPrices(req, h.now())
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRefreshPrices, err)
		return
	}

	stored, err := h.priceService.Refresh(r.Context(), req.Symbols, from, to)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRefreshPrices, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, RefreshResponse{
		From:   from.Format(time.DateOnly),
		To:     to.Format(time.DateOnly),
		Stored: stored,
	})
}

// Update handles POST requests that bring stored prices up to date, starting after the most
// recent stored day of each symbol. An empty body updates every stored symbol.
//
// Endpoint: POST /api/price/update
// Request body: optional {"symbols": ["BTC"]}
// Response: 200 OK with map of symbol to stored days
func (h *PriceHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RefreshPricesRequest](r)
	if err != nil && !errors.Is(err, io.EOF) {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidRequestBody.Error(), err.Error())
		return
	}

	stored, err := h.priceService.Update(r.Context(), req.Symbols, h.now())
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRefreshPrices, err)
		return
	}
	response.RespondJSON(w, http.StatusOK, stored)
}
