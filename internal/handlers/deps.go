package handlers

import (
	"context"

	"brokerage/internal/models"
	"brokerage/internal/services"
	"brokerage/internal/store"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, username, passwordHash string, startingCashMinor int64) error
	GetByUsername(ctx context.Context, username string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
	ListByActor(ctx context.Context, actorID string, limit, offset int) ([]map[string]any, error)
}

type LedgerService interface {
	GetQuote(ctx context.Context, symbol string) (models.Quote, error)
	Buy(ctx context.Context, req services.TradeRequest) (string, error)
	Sell(ctx context.Context, req services.TradeRequest) (string, error)
	Portfolio(ctx context.Context, userID string) (services.PortfolioView, error)
	History(ctx context.Context, userID string, limit, offset int) ([]services.HistoryEntry, error)
}
