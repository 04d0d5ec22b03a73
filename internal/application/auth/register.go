// Package auth is the thin authentication collaborator: registration,
// login and the password-reset flow. The core consumes only the
// resolved numeric user id.
package auth

import (
	"context"
	"regexp"
	"strings"

	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// MinPasswordLength is the minimal accepted password length.
const MinPasswordLength = 8

// RegisterInput is the registration payload.
type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// RegisterUser creates accounts with unique email and username.
type RegisterUser struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
}

func NewRegisterUser(users ports.UserRepository, hasher ports.PasswordHasher) *RegisterUser {
	return &RegisterUser{users: users, hasher: hasher}
}

func (uc *RegisterUser) Execute(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !emailPattern.MatchString(email) {
		return nil, domerrors.BadRequest("Invalid email")
	}
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, domerrors.BadRequest("Username is required")
	}
	if len(input.Password) < MinPasswordLength {
		return nil, domerrors.BadRequest("Password is too weak")
	}
	if existing, err := uc.users.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domerrors.BadRequest("Email already in use")
	}
	if existing, err := uc.users.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, domerrors.BadRequest("Username already in use")
	}
	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Role:         domain.RoleUser,
		Active:       true,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
