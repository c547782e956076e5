package store

import (
	"context"
	"time"
)

// PriceStore keeps the most recently observed price per symbol. The
// portfolio view falls back to it when the quote feed is down.
type PriceStore struct {
	db DB
}

func NewPriceStore(db DB) *PriceStore {
	return &PriceStore{db: db}
}

type ObservedPrice struct {
	Symbol     string    `db:"symbol"`
	Name       string    `db:"name"`
	PriceMinor int64     `db:"price_minor"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (s *PriceStore) Record(ctx context.Context, tx Execer, symbol, name string, priceMinor int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO stock_prices (symbol, name, price_minor, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (symbol)
		DO UPDATE SET name = EXCLUDED.name, price_minor = EXCLUDED.price_minor, updated_at = NOW()
	`, symbol, name, priceMinor)
	return err
}

func (s *PriceStore) GetLatest(ctx context.Context, symbol string) (ObservedPrice, error) {
	var price ObservedPrice
	err := s.db.GetContext(ctx, &price, `
		SELECT symbol, name, price_minor, updated_at
		FROM stock_prices
		WHERE symbol = $1
	`, symbol)
	return price, err
}
