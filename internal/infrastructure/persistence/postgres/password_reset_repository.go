package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
)

type PasswordResetRepository struct {
	db *DB
}

func NewPasswordResetRepository(db *DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) Create(ctx context.Context, userID domain.UserID, tokenHash string, expiresAt time.Time) error {
	_, err := r.db.q(ctx).Exec(ctx, `
		INSERT INTO password_reset_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)`,
		userID, tokenHash, expiresAt)
	return asConflict(err, "reset token already exists")
}

// Consume marks the token used in the same statement that resolves it,
// so a token can only ever be redeemed once.
func (r *PasswordResetRepository) Consume(ctx context.Context, tokenHash string) (*domain.UserID, error) {
	var userID domain.UserID
	err := r.db.q(ctx).QueryRow(ctx, `
		UPDATE password_reset_tokens
		SET used_at = now()
		WHERE token_hash = $1 AND used_at IS NULL AND expires_at > now()
		RETURNING user_id`, tokenHash).Scan(&userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &userID, nil
}

func (r *PasswordResetRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.q(ctx).Exec(ctx, `
		DELETE FROM password_reset_tokens
		WHERE expires_at < $1 OR used_at IS NOT NULL`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ ports.PasswordResetRepository = (*PasswordResetRepository)(nil)
