package handlers

import (
	"net/http"

	"brokerage/internal/middleware"
	"brokerage/internal/money"
)

func (h *Handler) Portfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	view, err := h.service.Portfolio(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "store_unavailable")
		return
	}
	lines := make([]map[string]any, 0, len(view.Lines))
	for _, line := range view.Lines {
		lines = append(lines, map[string]any{
			"symbol": line.Symbol,
			"name":   line.Name,
			"shares": line.Shares,
			"price":  money.FormatUSD(line.PriceMinor),
			"total":  money.FormatUSD(line.TotalMinor),
			"stale":  line.Stale,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"holdings":    lines,
		"cash":        money.FormatUSD(view.CashMinor),
		"grand_total": money.FormatUSD(view.GrandTotalMinor),
	})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit := parseLimit(query.Get("limit"), 20)
	offset := (page - 1) * limit
	entries, err := h.service.History(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "store_unavailable")
		return
	}
	normalized := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		shares := entry.Shares
		if shares < 0 {
			shares = -shares
		}
		normalized = append(normalized, map[string]any{
			"id":         entry.ID,
			"symbol":     entry.Symbol,
			"name":       entry.Name,
			"side":       entry.Side,
			"shares":     shares,
			"price":      money.FormatMinor(entry.PriceMinor),
			"created_at": entry.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, normalized)
}

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	page := parseInt(query.Get("page"), 1)
	limit := parseLimit(query.Get("limit"), 20)
	offset := (page - 1) * limit
	logs, err := h.audit.ListByActor(r.Context(), userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load audit logs")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

func (h *Handler) SelfCheck(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	type row struct {
		UserID          string `db:"user_id"`
		CashMinor       int64  `db:"cash_minor"`
		LedgerCashMinor int64  `db:"ledger_cash_minor"`
		DifferenceMinor int64  `db:"difference_minor"`
	}
	query := `
		SELECT u.id AS user_id,
		       u.cash_minor,
		       u.starting_cash_minor - COALESCE(SUM(t.shares * t.price_minor), 0) AS ledger_cash_minor,
		       u.cash_minor - (u.starting_cash_minor - COALESCE(SUM(t.shares * t.price_minor), 0)) AS difference_minor
		FROM users u
		LEFT JOIN transactions t ON t.user_id = u.id
		WHERE u.id = $1
		GROUP BY u.id, u.cash_minor, u.starting_cash_minor
	`
	var rows []row
	if err := h.reconcileDB.SelectContext(r.Context(), &rows, query, userID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to self_check")
		return
	}
	response := make([]map[string]any, 0, len(rows))
	for _, item := range rows {
		response = append(response, map[string]any{
			"user_id":     item.UserID,
			"cash":        money.FormatMinor(item.CashMinor),
			"ledger_cash": money.FormatMinor(item.LedgerCashMinor),
			"difference":  money.FormatMinor(item.DifferenceMinor),
		})
	}
	respondJSON(w, http.StatusOK, response)
}
