package auth

import (
	"context"
	"strings"

	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

// DefaultAccessTokenExpiry is the fallback token lifetime in seconds.
const DefaultAccessTokenExpiry = 3600

// LoginResult carries the signed token and the authenticated user.
type LoginResult struct {
	AccessToken string
	ExpiresIn   int64
	User        *domain.User
}

// Login authenticates by email or username.
type Login struct {
	users     ports.UserRepository
	hasher    ports.PasswordHasher
	issuer    ports.TokenIssuer
	accessExp int64
}

func NewLogin(users ports.UserRepository, hasher ports.PasswordHasher, issuer ports.TokenIssuer, accessExp int64) *Login {
	if accessExp <= 0 {
		accessExp = DefaultAccessTokenExpiry
	}
	return &Login{users: users, hasher: hasher, issuer: issuer, accessExp: accessExp}
}

func (uc *Login) Execute(ctx context.Context, identifier, password string) (*LoginResult, error) {
	user, err := uc.users.GetByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active || !uc.hasher.Verify(password, user.PasswordHash) {
		return nil, domerrors.Unauthorized("Invalid credentials")
	}
	token, err := uc.issuer.IssueAccessToken(user.ID.String(), uc.accessExp)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, ExpiresIn: uc.accessExp, User: user}, nil
}
