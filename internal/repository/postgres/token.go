package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// TokenRepository persists password-reset tokens. Unlike diagnosis access
// codes, reset tokens survive process restarts, so they live in postgres.
type TokenRepository interface {
	StoreResetToken(ctx context.Context, userID uuid.UUID, token string, expiry time.Time) error
	ValidateResetToken(ctx context.Context, token string) (uuid.UUID, error)
	InvalidateResetToken(ctx context.Context, token string) error
}

type tokenRepository struct {
	BaseRepository
}

func NewTokenRepository(base BaseRepository) TokenRepository {
	return &tokenRepository{base}
}

func (r *tokenRepository) StoreResetToken(ctx context.Context, userID uuid.UUID, token string, expiry time.Time) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO user_tokens (user_id, token, type, expires_at, created_at)
			VALUES ($1, $2, 'reset', $3, NOW())
			ON CONFLICT (user_id, type) DO UPDATE
			SET token = $2, expires_at = $3, used_at = NULL, updated_at = NOW()
		`
		_, err := tx.ExecContext(ctx, query, userID, token, expiry)
		return err
	})
}

func (r *tokenRepository) ValidateResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	query := `
		SELECT user_id
		FROM user_tokens
		WHERE token = $1
		AND type = 'reset'
		AND expires_at > NOW()
		AND used_at IS NULL
	`

	var userID uuid.UUID
	if err := r.GetDB().GetContext(ctx, &userID, query, token); err != nil {
		return uuid.Nil, fmt.Errorf("invalid or expired token")
	}
	return userID, nil
}

func (r *tokenRepository) InvalidateResetToken(ctx context.Context, token string) error {
	query := `
		UPDATE user_tokens
		SET used_at = NOW()
		WHERE token = $1
		AND type = 'reset'
	`

	result, err := r.GetDB().ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("token not found or already used")
	}
	return nil
}
