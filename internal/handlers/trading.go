package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"brokerage/internal/middleware"
	"brokerage/internal/money"
	"brokerage/internal/services"
	"brokerage/internal/validator"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetQuote(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	quote, err := h.service.GetQuote(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		switch err {
		case services.ErrInvalidSymbol:
			respondError(w, http.StatusNotFound, "invalid_symbol")
		case services.ErrQuoteUnavailable:
			respondError(w, http.StatusServiceUnavailable, "quote_service_unavailable")
		default:
			respondError(w, http.StatusInternalServerError, "quote_failed")
		}
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"symbol": quote.Symbol,
		"name":   quote.Name,
		"price":  money.FormatMinor(quote.PriceMinor),
	})
}

type tradeRequest struct {
	Symbol string `json:"symbol"`
	Shares string `json:"shares"`
}

func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.service.Buy)
}

func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	h.trade(w, r, h.service.Sell)
}

func (h *Handler) trade(w http.ResponseWriter, r *http.Request, execute func(ctx context.Context, req services.TradeRequest) (string, error)) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	shares, err := validator.ParseShares(req.Shares)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_share_count")
		return
	}
	transactionID, err := execute(r.Context(), services.TradeRequest{
		UserID: userID,
		Symbol: req.Symbol,
		Shares: shares,
	})
	if err != nil {
		switch err {
		case services.ErrInvalidSymbol:
			respondError(w, http.StatusBadRequest, "invalid_symbol")
		case services.ErrInvalidShareCount:
			respondError(w, http.StatusBadRequest, "invalid_share_count")
		case services.ErrInsufficientFunds:
			respondError(w, http.StatusBadRequest, "insufficient_funds")
		case services.ErrNoHoldings:
			respondError(w, http.StatusBadRequest, "no_holdings")
		case services.ErrInsufficientShares:
			respondError(w, http.StatusBadRequest, "insufficient_shares")
		case services.ErrQuoteUnavailable:
			respondError(w, http.StatusServiceUnavailable, "quote_service_unavailable")
		default:
			respondError(w, http.StatusServiceUnavailable, "store_unavailable")
		}
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"transaction_id": transactionID})
}
