package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jsmuster/isstrack/internal/application/ports"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

// HashResetToken returns the storage form of a reset token. Raw tokens
// never touch the database.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ForgotPassword issues a single-use reset token and enqueues the email.
// It never discloses whether the email is registered.
type ForgotPassword struct {
	users     ports.UserRepository
	resets    ports.PasswordResetRepository
	enqueuer  ports.TaskEnqueuer
	resetBase string
	ttl       time.Duration
	log       zerolog.Logger
}

func NewForgotPassword(users ports.UserRepository, resets ports.PasswordResetRepository, enqueuer ports.TaskEnqueuer, resetBaseURL string, ttlSeconds int64, log zerolog.Logger) *ForgotPassword {
	if ttlSeconds <= 0 {
		ttlSeconds = 3600
	}
	return &ForgotPassword{
		users:     users,
		resets:    resets,
		enqueuer:  enqueuer,
		resetBase: resetBaseURL,
		ttl:       time.Duration(ttlSeconds) * time.Second,
		log:       log,
	}
}

func (uc *ForgotPassword) Execute(ctx context.Context, email string) error {
	normalized := strings.ToLower(strings.TrimSpace(email))
	user, err := uc.users.GetByEmail(ctx, normalized)
	if err != nil {
		return err
	}
	if user == nil {
		// Same outward behavior for unknown emails.
		return nil
	}
	token := uuid.NewString()
	if err := uc.resets.Create(ctx, user.ID, HashResetToken(token), time.Now().Add(uc.ttl)); err != nil {
		return err
	}
	resetURL := uc.resetBase + "?token=" + token
	if err := uc.enqueuer.EnqueueSendPasswordReset(ctx, normalized, resetURL); err != nil {
		uc.log.Warn().Err(err).Str("email", normalized).Msg("enqueue password reset email failed")
	}
	return nil
}

// ResetPassword consumes a reset token and stores the new hash.
type ResetPassword struct {
	users  ports.UserRepository
	resets ports.PasswordResetRepository
	hasher ports.PasswordHasher
}

func NewResetPassword(users ports.UserRepository, resets ports.PasswordResetRepository, hasher ports.PasswordHasher) *ResetPassword {
	return &ResetPassword{users: users, resets: resets, hasher: hasher}
}

func (uc *ResetPassword) Execute(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return domerrors.BadRequest("Password is too weak")
	}
	userID, err := uc.resets.Consume(ctx, HashResetToken(token))
	if err != nil {
		return err
	}
	if userID == nil {
		return domerrors.BadRequest("Invalid or expired reset token")
	}
	hash, err := uc.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return uc.users.UpdatePassword(ctx, *userID, hash)
}

// CleanupExpiredResets deletes lapsed or used reset tokens. Run
// periodically from the worker.
func CleanupExpiredResets(ctx context.Context, resets ports.PasswordResetRepository) (int64, error) {
	return resets.DeleteExpired(ctx, time.Now())
}
