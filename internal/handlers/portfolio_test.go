package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"testing"
	"time"

	"brokerage/internal/services"
)

func TestPortfolio(t *testing.T) {
	handler := newTestHandler(stubReconcileDB{}, fakeTxRunner{}, stubUserStore{}, stubAuditStore{}, stubService{
		portfolioFn: func(_ context.Context, userID string) (services.PortfolioView, error) {
			if userID != "user-1" {
				t.Fatalf("unexpected user: %s", userID)
			}
			return services.PortfolioView{
				Lines: []services.PortfolioLine{
					{Symbol: "NFLX", Name: "Netflix Inc", Shares: 2, PriceMinor: 60000, TotalMinor: 120000},
					{Symbol: "AAPL", Name: "Apple Inc", Shares: 10, PriceMinor: 20000, TotalMinor: 200000, Stale: true},
				},
				CashMinor:       930000,
				GrandTotalMinor: 1250000,
			}, nil
		},
	})
	rr := serveWithAuth(t, handler.Portfolio, "user-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload struct {
		Holdings []map[string]any `json:"holdings"`
		Cash     string           `json:"cash"`
		Total    string           `json:"grand_total"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Cash != "$9,300.00" || payload.Total != "$12,500.00" {
		t.Fatalf("unexpected totals: cash=%s total=%s", payload.Cash, payload.Total)
	}
	if len(payload.Holdings) != 2 {
		t.Fatalf("unexpected holdings: %#v", payload.Holdings)
	}
	if payload.Holdings[0]["price"] != "$600.00" || payload.Holdings[0]["stale"] != false {
		t.Fatalf("unexpected live line: %#v", payload.Holdings[0])
	}
	if payload.Holdings[1]["stale"] != true {
		t.Fatalf("expected stale line: %#v", payload.Holdings[1])
	}
}

func TestPortfolioStoreDown(t *testing.T) {
	handler := newTestHandler(stubReconcileDB{}, fakeTxRunner{}, stubUserStore{}, stubAuditStore{}, stubService{
		portfolioFn: func(context.Context, string) (services.PortfolioView, error) {
			return services.PortfolioView{}, context.DeadlineExceeded
		},
	})
	rr := serveWithAuth(t, handler.Portfolio, "user-1")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
}

func TestListTransactions(t *testing.T) {
	now := time.Now()
	handler := newTestHandler(stubReconcileDB{}, fakeTxRunner{}, stubUserStore{}, stubAuditStore{}, stubService{
		historyFn: func(_ context.Context, userID string, limit, offset int) ([]services.HistoryEntry, error) {
			if userID != "user-1" || limit != 20 || offset != 0 {
				t.Fatalf("unexpected paging: %s %d %d", userID, limit, offset)
			}
			return []services.HistoryEntry{
				{ID: "tx-2", Symbol: "NFLX", Shares: -3, PriceMinor: 60000, Side: services.SideSold, CreatedAt: now},
				{ID: "tx-1", Symbol: "NFLX", Shares: 5, PriceMinor: 50000, Side: services.SidePurchased, CreatedAt: now},
			}, nil
		},
	})
	rr := serveWithAuth(t, handler.ListTransactions, "user-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload) != 2 {
		t.Fatalf("unexpected entries: %#v", payload)
	}
	if payload[0]["side"] != "SOLD" || payload[0]["shares"] != float64(3) {
		t.Fatalf("unexpected sell row: %#v", payload[0])
	}
	if payload[1]["side"] != "PURCHASED" || payload[1]["price"] != "500.00" {
		t.Fatalf("unexpected buy row: %#v", payload[1])
	}
}

func TestListTransactionsClampsLimit(t *testing.T) {
	handler := newTestHandler(stubReconcileDB{}, fakeTxRunner{}, stubUserStore{}, stubAuditStore{}, stubService{
		historyFn: func(_ context.Context, _ string, limit, offset int) ([]services.HistoryEntry, error) {
			if limit != 100 || offset != 100 {
				t.Fatalf("unexpected paging: %d %d", limit, offset)
			}
			return nil, nil
		},
	})
	rr := getAsUser(t, handler.ListTransactions, "user-1", "/transactions?page=2&limit=1000000000")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestSelfCheck(t *testing.T) {
	handler := newTestHandler(stubReconcileDB{
		selectFn: func(_ context.Context, dest any, _ string, args ...any) error {
			if len(args) != 1 || args[0] != "user-1" {
				t.Fatalf("unexpected args: %#v", args)
			}
			value := reflect.ValueOf(dest)
			if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Slice {
				return nil
			}
			slice := reflect.MakeSlice(value.Elem().Type(), 1, 1)
			row := slice.Index(0)
			row.FieldByName("UserID").SetString("user-1")
			row.FieldByName("CashMinor").SetInt(930000)
			row.FieldByName("LedgerCashMinor").SetInt(930000)
			row.FieldByName("DifferenceMinor").SetInt(0)
			value.Elem().Set(slice)
			return nil
		},
	}, fakeTxRunner{}, stubUserStore{}, stubAuditStore{}, stubService{})
	rr := serveWithAuth(t, handler.SelfCheck, "user-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload) != 1 || payload[0]["difference"] != "0.00" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestListAuditLogs(t *testing.T) {
	handler := newTestHandler(stubReconcileDB{}, fakeTxRunner{}, stubUserStore{}, stubAuditStore{
		listByActorFn: func(_ context.Context, actorID string, limit, offset int) ([]map[string]any, error) {
			if actorID != "user-1" {
				t.Fatalf("unexpected actor: %s", actorID)
			}
			return []map[string]any{{"id": "audit-1", "action": "buy"}}, nil
		},
	}, stubService{})
	rr := serveWithAuth(t, handler.ListAuditLogs, "user-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var payload []map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload) != 1 || payload[0]["action"] != "buy" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}
