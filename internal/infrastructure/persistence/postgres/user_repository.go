package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, username, password_hash, first_name, last_name, role, active, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.db.q(ctx).QueryRow(ctx, `
		INSERT INTO users (email, username, password_hash, first_name, last_name, role, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		user.Email, user.Username, user.PasswordHash, user.FirstName, user.LastName, user.Role, user.Active,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return asConflict(err, "user already exists")
}

func (r *UserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	return scanUser(r.db.q(ctx).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.q(ctx).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(r.db.q(ctx).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username))
}

func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	return scanUser(r.db.q(ctx).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE lower(email) = lower($1) OR lower(username) = lower($1)`, identifier))
}

func (r *UserRepository) Exists(ctx context.Context, id domain.UserID) (bool, error) {
	var exists bool
	err := r.db.q(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id domain.UserID, passwordHash string) error {
	tag, err := r.db.q(ctx).Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, passwordHash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domerrors.NotFound("User not found")
	}
	return nil
}

var _ ports.UserRepository = (*UserRepository)(nil)
