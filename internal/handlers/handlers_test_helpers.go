package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"brokerage/internal/auth"
	"brokerage/internal/config"
	"brokerage/internal/db"
	"brokerage/internal/middleware"
	"brokerage/internal/models"
	"brokerage/internal/services"
	"brokerage/internal/store"
	"brokerage/internal/websocket"

	"github.com/jmoiron/sqlx"
)

type fakeTxRunner struct {
	withTxFn func(ctx context.Context, fn func(*sqlx.Tx) error) error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.withTxFn != nil {
		return f.withTxFn(ctx, fn)
	}
	return fn(nil)
}

type stubReconcileDB struct {
	selectFn func(ctx context.Context, dest any, query string, args ...any) error
}

func (s stubReconcileDB) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	if s.selectFn == nil {
		return nil
	}
	return s.selectFn(ctx, dest, query, args...)
}

type stubUserStore struct {
	createFn        func(ctx context.Context, tx store.Execer, id, username, passwordHash string, startingCashMinor int64) error
	getByUsernameFn func(ctx context.Context, username string) (models.User, error)
	getByIDFn       func(ctx context.Context, userID string) (models.User, error)
}

func (s stubUserStore) Create(ctx context.Context, tx store.Execer, id, username, passwordHash string, startingCashMinor int64) error {
	if s.createFn == nil {
		return nil
	}
	return s.createFn(ctx, tx, id, username, passwordHash, startingCashMinor)
}

func (s stubUserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	if s.getByUsernameFn == nil {
		return models.User{}, nil
	}
	return s.getByUsernameFn(ctx, username)
}

func (s stubUserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	if s.getByIDFn == nil {
		return models.User{}, nil
	}
	return s.getByIDFn(ctx, userID)
}

type stubAuditStore struct {
	logFn         func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	listByActorFn func(ctx context.Context, actorID string, limit, offset int) ([]map[string]any, error)
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

func (s stubAuditStore) ListByActor(ctx context.Context, actorID string, limit, offset int) ([]map[string]any, error) {
	if s.listByActorFn == nil {
		return nil, nil
	}
	return s.listByActorFn(ctx, actorID, limit, offset)
}

type stubService struct {
	getQuoteFn  func(ctx context.Context, symbol string) (models.Quote, error)
	buyFn       func(ctx context.Context, req services.TradeRequest) (string, error)
	sellFn      func(ctx context.Context, req services.TradeRequest) (string, error)
	portfolioFn func(ctx context.Context, userID string) (services.PortfolioView, error)
	historyFn   func(ctx context.Context, userID string, limit, offset int) ([]services.HistoryEntry, error)
}

func (s stubService) GetQuote(ctx context.Context, symbol string) (models.Quote, error) {
	if s.getQuoteFn == nil {
		return models.Quote{}, nil
	}
	return s.getQuoteFn(ctx, symbol)
}

func (s stubService) Buy(ctx context.Context, req services.TradeRequest) (string, error) {
	if s.buyFn == nil {
		return "", nil
	}
	return s.buyFn(ctx, req)
}

func (s stubService) Sell(ctx context.Context, req services.TradeRequest) (string, error) {
	if s.sellFn == nil {
		return "", nil
	}
	return s.sellFn(ctx, req)
}

func (s stubService) Portfolio(ctx context.Context, userID string) (services.PortfolioView, error) {
	if s.portfolioFn == nil {
		return services.PortfolioView{}, nil
	}
	return s.portfolioFn(ctx, userID)
}

func (s stubService) History(ctx context.Context, userID string, limit, offset int) ([]services.HistoryEntry, error) {
	if s.historyFn == nil {
		return nil, nil
	}
	return s.historyFn(ctx, userID, limit, offset)
}

func newTestHandler(reconcileDB store.Selecter, txRunner db.TxRunner, users UserStore, audit AuditStore, service LedgerService) *Handler {
	cfg := config.Config{
		AppEnv:            "test",
		Port:              "0",
		DatabaseURL:       "",
		JWTSecret:         "secret",
		TokenTTL:          time.Minute,
		AllowedOrigins:    "*",
		StartingCashMinor: 1000000,
	}
	return New(reconcileDB, txRunner, cfg, users, audit, service, websocket.NewHub())
}

func serveWithAuth(t *testing.T, handler http.HandlerFunc, userID string) *httptest.ResponseRecorder {
	t.Helper()
	return getAsUser(t, handler, userID, "/")
}

func getAsUser(t *testing.T, handler http.HandlerFunc, userID, target string) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken("secret", userID, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	middleware.Auth("secret")(handler).ServeHTTP(rr, req)
	return rr
}
