package handlers

import (
	"net/http"

	"github.com/advisordesk/costbasis-backend/internal/api/response"
	"github.com/advisordesk/costbasis-backend/internal/apperrors"
	"github.com/advisordesk/costbasis-backend/internal/service"
)

// PriceHandler handles HTTP requests for price refresh endpoints.
type PriceHandler struct {
	priceService *service.PriceService
}

// NewPriceHandler creates a new PriceHandler with the provided service dependency.
func NewPriceHandler(priceService *service.PriceService) *PriceHandler {
	return &PriceHandler{
		priceService: priceService,
	}
}

// RefreshPrices handles POST requests to refresh all held security prices
// from the quote provider. Individual symbol failures are skipped; the
// response reports how many securities were updated.
//
// Endpoint: POST /api/price/refresh
// Response: 200 OK with {"updated": n}
// Error: 500 Internal Server Error if the security list cannot be loaded
func (h *PriceHandler) RefreshPrices(w http.ResponseWriter, r *http.Request) {
	updated, err := h.priceService.RefreshPrices(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRefreshPrices.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

// SetQuoteToken handles POST requests to store the quote provider API token.
// The token is encrypted before it reaches the database.
//
// Endpoint: POST /api/price/token
// Request Body: {"token": "..."}
// Response: 204 No Content
// Error: 400 Bad Request if the body is invalid or the token is empty
// Error: 500 Internal Server Error if the token cannot be stored
func (h *PriceHandler) SetQuoteToken(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[struct {
		Token string `json:"token"`
	}](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.Token == "" {
		response.RespondError(w, http.StatusBadRequest, "validation failed", "token is required")
		return
	}

	if err := h.priceService.SetQuoteToken(r.Context(), req.Token); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to store quote token", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
