package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"brokerage/internal/db"
	"brokerage/internal/models"
	"brokerage/internal/money"
	"brokerage/internal/quotes"
	"brokerage/internal/store"
	"brokerage/internal/validator"
	"brokerage/internal/websocket"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidSymbol      = errors.New("invalid or unknown symbol")
	ErrInvalidShareCount  = errors.New("invalid share count")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrNoHoldings         = errors.New("no holdings in symbol")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrQuoteUnavailable   = errors.New("quote service unavailable")
)

// LedgerService owns the trade log and the cash balance derived from it.
// Each mutation runs in a single database transaction that first locks the
// user row, so concurrent trades for one user serialize and can never
// overspend cash or oversell a position.
type LedgerService struct {
	txRunner     db.TxRunner
	users        UserStore
	transactions TransactionStore
	prices       PriceStore
	audit        AuditStore
	quotes       quotes.Lookuper
	hub          PortfolioHub
	opTimeout    time.Duration
}

type UserStore interface {
	GetByID(ctx context.Context, userID string) (models.User, error)
	GetForUpdate(ctx context.Context, tx store.Getter, userID string) (models.User, error)
	UpdateCash(ctx context.Context, tx store.Execer, userID string, cashMinor int64) error
}

type TransactionStore interface {
	Insert(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	SumShares(ctx context.Context, tx store.Getter, userID, symbol string) (int64, error)
	HoldingsByUser(ctx context.Context, userID string) ([]models.Holding, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error)
}

type PriceStore interface {
	Record(ctx context.Context, tx store.Execer, symbol, name string, priceMinor int64) error
	GetLatest(ctx context.Context, symbol string) (store.ObservedPrice, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type PortfolioHub interface {
	BroadcastPortfolio(userID string, update websocket.PortfolioUpdate)
}

func NewLedgerService(txRunner db.TxRunner, users UserStore, transactions TransactionStore, prices PriceStore, audit AuditStore, quoteClient quotes.Lookuper, hub PortfolioHub, opTimeout time.Duration) *LedgerService {
	return &LedgerService{
		txRunner:     txRunner,
		users:        users,
		transactions: transactions,
		prices:       prices,
		audit:        audit,
		quotes:       quoteClient,
		hub:          hub,
		opTimeout:    opTimeout,
	}
}

func (s *LedgerService) boundCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *LedgerService) lookupQuote(ctx context.Context, symbol string) (models.Quote, error) {
	quote, err := s.quotes.Lookup(ctx, symbol)
	if err != nil {
		if errors.Is(err, quotes.ErrNotFound) {
			return models.Quote{}, ErrInvalidSymbol
		}
		return models.Quote{}, ErrQuoteUnavailable
	}
	return quote, nil
}

// GetQuote resolves a live quote and records the observed price so the
// portfolio view has a fallback when the feed is down later.
func (s *LedgerService) GetQuote(ctx context.Context, symbol string) (models.Quote, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()
	normalized, err := validator.NormalizeSymbol(symbol)
	if err != nil {
		return models.Quote{}, ErrInvalidSymbol
	}
	quote, err := s.lookupQuote(ctx, normalized)
	if err != nil {
		return models.Quote{}, err
	}
	if err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.prices.Record(ctx, tx, quote.Symbol, quote.Name, quote.PriceMinor)
	}); err != nil {
		log.Warn().Err(err).Str("symbol", quote.Symbol).Msg("failed to record observed price")
	}
	return quote, nil
}

type TradeRequest struct {
	UserID string
	Symbol string
	Shares int64
}

// tradeValue returns shares times priceMinor. A product that would wrap
// past the int64 ceiling is rejected so a huge share count can never turn
// a debit into a credit.
func tradeValue(shares, priceMinor int64) (int64, error) {
	if priceMinor > 0 && shares > math.MaxInt64/priceMinor {
		return 0, ErrInvalidShareCount
	}
	return shares * priceMinor, nil
}

// Buy executes a purchase at the current quoted price.
func (s *LedgerService) Buy(ctx context.Context, req TradeRequest) (string, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()
	if req.Shares < 1 {
		return "", ErrInvalidShareCount
	}
	symbol, err := validator.NormalizeSymbol(req.Symbol)
	if err != nil {
		return "", ErrInvalidSymbol
	}
	quote, err := s.lookupQuote(ctx, symbol)
	if err != nil {
		return "", err
	}
	cost, err := tradeValue(req.Shares, quote.PriceMinor)
	if err != nil {
		return "", err
	}

	var transactionID string
	var cashAfter, holdingAfter int64
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		user, err := s.users.GetForUpdate(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		if cost > user.CashMinor {
			return ErrInsufficientFunds
		}
		transactionID = uuid.NewString()
		if err := s.transactions.Insert(ctx, tx, store.TransactionInput{
			ID:         transactionID,
			UserID:     req.UserID,
			Symbol:     quote.Symbol,
			Name:       quote.Name,
			Shares:     req.Shares,
			PriceMinor: quote.PriceMinor,
		}); err != nil {
			return err
		}
		cashAfter = user.CashMinor - cost
		if err := s.users.UpdateCash(ctx, tx, req.UserID, cashAfter); err != nil {
			return err
		}
		holdingAfter, err = s.transactions.SumShares(ctx, tx, req.UserID, quote.Symbol)
		if err != nil {
			return err
		}
		if err := s.prices.Record(ctx, tx, quote.Symbol, quote.Name, quote.PriceMinor); err != nil {
			return err
		}
		return s.logTrade(ctx, tx, req.UserID, "buy", transactionID, quote, req.Shares)
	})
	if err != nil {
		return "", err
	}
	s.hub.BroadcastPortfolio(req.UserID, websocket.PortfolioUpdate{
		Symbol: quote.Symbol,
		Shares: holdingAfter,
		Cash:   money.FormatMinor(cashAfter),
	})
	return transactionID, nil
}

// Sell executes a sale at the current quoted price. The position check and
// the mutation happen under the same user row lock, so the net holding can
// never go negative.
func (s *LedgerService) Sell(ctx context.Context, req TradeRequest) (string, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()
	if req.Shares < 1 {
		return "", ErrInvalidShareCount
	}
	symbol, err := validator.NormalizeSymbol(req.Symbol)
	if err != nil {
		return "", ErrInvalidSymbol
	}
	quote, err := s.lookupQuote(ctx, symbol)
	if err != nil {
		return "", err
	}
	proceeds, err := tradeValue(req.Shares, quote.PriceMinor)
	if err != nil {
		return "", err
	}

	var transactionID string
	var cashAfter, holdingAfter int64
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		user, err := s.users.GetForUpdate(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		holding, err := s.transactions.SumShares(ctx, tx, req.UserID, quote.Symbol)
		if err != nil {
			return err
		}
		if holding <= 0 {
			return ErrNoHoldings
		}
		if req.Shares > holding {
			return ErrInsufficientShares
		}
		transactionID = uuid.NewString()
		if err := s.transactions.Insert(ctx, tx, store.TransactionInput{
			ID:         transactionID,
			UserID:     req.UserID,
			Symbol:     quote.Symbol,
			Name:       quote.Name,
			Shares:     -req.Shares,
			PriceMinor: quote.PriceMinor,
		}); err != nil {
			return err
		}
		cashAfter = user.CashMinor + proceeds
		if err := s.users.UpdateCash(ctx, tx, req.UserID, cashAfter); err != nil {
			return err
		}
		holdingAfter = holding - req.Shares
		if err := s.prices.Record(ctx, tx, quote.Symbol, quote.Name, quote.PriceMinor); err != nil {
			return err
		}
		return s.logTrade(ctx, tx, req.UserID, "sell", transactionID, quote, -req.Shares)
	})
	if err != nil {
		return "", err
	}
	s.hub.BroadcastPortfolio(req.UserID, websocket.PortfolioUpdate{
		Symbol: quote.Symbol,
		Shares: holdingAfter,
		Cash:   money.FormatMinor(cashAfter),
	})
	return transactionID, nil
}

func (s *LedgerService) logTrade(ctx context.Context, tx store.Tx, userID, action, transactionID string, quote models.Quote, shares int64) error {
	data, _ := json.Marshal(map[string]any{
		"symbol":      quote.Symbol,
		"shares":      shares,
		"price_minor": quote.PriceMinor,
	})
	return s.audit.Log(ctx, tx, userID, action, "transaction", transactionID, string(data))
}

type PortfolioLine struct {
	Symbol     string
	Name       string
	Shares     int64
	PriceMinor int64
	TotalMinor int64
	// Stale marks a line priced from the last recorded observation
	// because the live lookup failed.
	Stale bool
}

type PortfolioView struct {
	Lines           []PortfolioLine
	CashMinor       int64
	GrandTotalMinor int64
}

// Portfolio prices every open position. A feed failure on one symbol falls
// back to the most recently recorded price instead of failing the view.
func (s *LedgerService) Portfolio(ctx context.Context, userID string) (PortfolioView, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return PortfolioView{}, err
	}
	holdings, err := s.transactions.HoldingsByUser(ctx, userID)
	if err != nil {
		return PortfolioView{}, err
	}
	view := PortfolioView{
		Lines:     make([]PortfolioLine, 0, len(holdings)),
		CashMinor: user.CashMinor,
	}
	grandTotal := user.CashMinor
	for _, holding := range holdings {
		line := PortfolioLine{
			Symbol: holding.Symbol,
			Name:   holding.Name,
			Shares: holding.Shares,
		}
		if quote, err := s.quotes.Lookup(ctx, holding.Symbol); err == nil {
			line.Name = quote.Name
			line.PriceMinor = quote.PriceMinor
		} else if observed, err := s.prices.GetLatest(ctx, holding.Symbol); err == nil {
			line.PriceMinor = observed.PriceMinor
			line.Stale = true
		} else {
			log.Warn().Str("symbol", holding.Symbol).Msg("no price available for held symbol")
			line.Stale = true
		}
		line.TotalMinor = clampedMul(line.Shares, line.PriceMinor)
		grandTotal = clampedAdd(grandTotal, line.TotalMinor)
		view.Lines = append(view.Lines, line)
	}
	view.GrandTotalMinor = grandTotal
	return view, nil
}

// clampedMul and clampedAdd saturate at the int64 ceiling instead of
// wrapping. Portfolio valuations are informational, so a clamped figure
// beats refusing the whole view.
func clampedMul(shares, priceMinor int64) int64 {
	if priceMinor > 0 && shares > math.MaxInt64/priceMinor {
		return math.MaxInt64
	}
	return shares * priceMinor
}

func clampedAdd(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

const (
	SidePurchased = "PURCHASED"
	SideSold      = "SOLD"
)

type HistoryEntry struct {
	ID         string
	Symbol     string
	Name       string
	Shares     int64
	PriceMinor int64
	Side       string
	CreatedAt  time.Time
}

// History returns the user's trade log, newest first.
func (s *LedgerService) History(ctx context.Context, userID string, limit, offset int) ([]HistoryEntry, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()
	rows, err := s.transactions.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	entries := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		side := SidePurchased
		if row.Shares < 0 {
			side = SideSold
		}
		entries = append(entries, HistoryEntry{
			ID:         row.ID,
			Symbol:     row.Symbol,
			Name:       row.Name,
			Shares:     row.Shares,
			PriceMinor: row.PriceMinor,
			Side:       side,
			CreatedAt:  row.CreatedAt,
		})
	}
	return entries, nil
}
