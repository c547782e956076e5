package store

import (
	"context"

	"brokerage/internal/models"
)

type UserStore struct {
	db DB
}

func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, tx Execer, id, username, passwordHash string, startingCashMinor int64) error {
	query := `
		INSERT INTO users (id, username, password_hash, cash_minor, starting_cash_minor)
		VALUES ($1, $2, $3, $4, $4)
	`
	_, err := tx.ExecContext(ctx, query, id, username, passwordHash, startingCashMinor)
	return err
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `
		SELECT id, username, password_hash, cash_minor, starting_cash_minor, created_at
		FROM users
		WHERE username = $1
	`, username)
	return user, err
}

func (s *UserStore) GetByID(ctx context.Context, userID string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `
		SELECT id, username, password_hash, cash_minor, starting_cash_minor, created_at
		FROM users
		WHERE id = $1
	`, userID)
	return user, err
}

// GetForUpdate locks the user row for the remainder of the transaction.
// Every buy/sell takes this lock first, which serializes trades per user.
func (s *UserStore) GetForUpdate(ctx context.Context, tx Getter, userID string) (models.User, error) {
	var user models.User
	err := tx.GetContext(ctx, &user, `
		SELECT id, username, password_hash, cash_minor, starting_cash_minor, created_at
		FROM users
		WHERE id = $1
		FOR UPDATE
	`, userID)
	return user, err
}

func (s *UserStore) UpdateCash(ctx context.Context, tx Execer, userID string, cashMinor int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users
		SET cash_minor = $1, updated_at = NOW()
		WHERE id = $2
	`, cashMinor, userID)
	return err
}
