package models

import "time"

type User struct {
	ID                string    `db:"id" json:"id"`
	Username          string    `db:"username" json:"username"`
	PasswordHash      string    `db:"password_hash" json:"-"`
	CashMinor         int64     `db:"cash_minor" json:"cash_minor"`
	StartingCashMinor int64     `db:"starting_cash_minor" json:"starting_cash_minor"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// Transaction is one row of the append-only trade log. Shares are signed:
// positive for a buy, negative for a sell. PriceMinor is the per-share
// price snapshot at execution time.
type Transaction struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Symbol     string    `db:"symbol" json:"symbol"`
	Name       string    `db:"name" json:"name"`
	Shares     int64     `db:"shares" json:"shares"`
	PriceMinor int64     `db:"price_minor" json:"price_minor"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Holding is derived from the transaction log, never stored.
type Holding struct {
	Symbol string `db:"symbol" json:"symbol"`
	Name   string `db:"name" json:"name"`
	Shares int64  `db:"shares" json:"shares"`
}

type Quote struct {
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	PriceMinor int64  `json:"price_minor"`
}
