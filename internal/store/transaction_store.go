package store

import (
	"context"

	"brokerage/internal/models"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

type TransactionInput struct {
	ID         string
	UserID     string
	Symbol     string
	Name       string
	Shares     int64
	PriceMinor int64
}

// Insert appends one execution to the trade log. Rows are never updated
// or deleted afterwards.
func (s *TransactionStore) Insert(ctx context.Context, tx Execer, input TransactionInput) error {
	query := `
		INSERT INTO transactions (id, user_id, symbol, name, shares, price_minor)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.UserID, input.Symbol, input.Name, input.Shares, input.PriceMinor,
	)
	return err
}

// SumShares returns the user's net position in one symbol. Run against the
// transaction that holds the user row lock when deciding a sell.
func (s *TransactionStore) SumShares(ctx context.Context, tx Getter, userID, symbol string) (int64, error) {
	var sum int64
	err := tx.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(shares), 0)
		FROM transactions
		WHERE user_id = $1 AND symbol = $2
	`, userID, symbol)
	return sum, err
}

// HoldingsByUser lists every symbol with a nonzero net position, with the
// name snapshot from the most recent execution.
func (s *TransactionStore) HoldingsByUser(ctx context.Context, userID string) ([]models.Holding, error) {
	var holdings []models.Holding
	err := s.db.SelectContext(ctx, &holdings, `
		SELECT t.symbol,
		       (ARRAY_AGG(t.name ORDER BY t.created_at DESC))[1] AS name,
		       SUM(t.shares) AS shares
		FROM transactions t
		WHERE t.user_id = $1
		GROUP BY t.symbol
		HAVING SUM(t.shares) <> 0
		ORDER BY t.symbol
	`, userID)
	if err != nil {
		return nil, err
	}
	return holdings, nil
}

func (s *TransactionStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, symbol, name, shares, price_minor, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
