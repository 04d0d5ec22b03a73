package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jsmuster/isstrack/internal/application/apptest"
	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

// fakeHasher makes password hashes readable in assertions.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "h:" + password, nil }
func (fakeHasher) Verify(password, hash string) bool    { return hash == "h:"+password }

// fakeIssuer signs nothing; the token is the subject.
type fakeIssuer struct{}

func (fakeIssuer) IssueAccessToken(userID string, _ int64) (string, error) {
	return "token-for-" + userID, nil
}

func (fakeIssuer) ValidateAccessToken(tokenString string) (string, error) {
	return strings.TrimPrefix(tokenString, "token-for-"), nil
}

func registerUser(t *testing.T, users *apptest.UserRepo, email, username string) {
	t.Helper()
	uc := NewRegisterUser(users, fakeHasher{})
	if _, err := uc.Execute(context.Background(), RegisterInput{
		Email:    email,
		Username: username,
		Password: "correct-horse",
	}); err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
}

func TestRegisterUser(t *testing.T) {
	users := apptest.NewUserRepo()
	uc := NewRegisterUser(users, fakeHasher{})

	user, err := uc.Execute(context.Background(), RegisterInput{
		Email:     " Jane@Example.COM ",
		Username:  " jane ",
		Password:  "correct-horse",
		FirstName: " Jane ",
		LastName:  " Doe ",
	})
	if err != nil {
		t.Fatal(err)
	}
	if user.Email != "jane@example.com" || user.Username != "jane" {
		t.Errorf("user = %+v", user)
	}
	if user.FirstName != "Jane" || user.LastName != "Doe" {
		t.Errorf("names = %q %q", user.FirstName, user.LastName)
	}
	if user.PasswordHash != "h:correct-horse" {
		t.Errorf("hash = %q", user.PasswordHash)
	}
	if !user.Active {
		t.Error("new users start active")
	}
}

func TestRegisterUserValidation(t *testing.T) {
	users := apptest.NewUserRepo()
	registerUser(t, users, "jane@example.com", "jane")
	uc := NewRegisterUser(users, fakeHasher{})

	cases := []struct {
		name  string
		input RegisterInput
		want  string
	}{
		{"bad email", RegisterInput{Email: "not-an-email", Username: "x", Password: "longenough"}, "Invalid email"},
		{"blank username", RegisterInput{Email: "a@b.com", Username: "  ", Password: "longenough"}, "Username is required"},
		{"short password", RegisterInput{Email: "a@b.com", Username: "x", Password: "short"}, "Password is too weak"},
		{"dup email", RegisterInput{Email: "JANE@example.com", Username: "other", Password: "longenough"}, "Email already in use"},
		{"dup username", RegisterInput{Email: "other@example.com", Username: "jane", Password: "longenough"}, "Username already in use"},
	}
	for _, tc := range cases {
		_, err := uc.Execute(context.Background(), tc.input)
		if !domerrors.IsKind(err, domerrors.KindBadRequest) {
			t.Errorf("%s: kind %v", tc.name, domerrors.KindOf(err))
			continue
		}
		if err.Error() != tc.want {
			t.Errorf("%s: message = %q, want %q", tc.name, err.Error(), tc.want)
		}
	}
}

func TestLogin(t *testing.T) {
	users := apptest.NewUserRepo()
	registerUser(t, users, "jane@example.com", "jane")
	uc := NewLogin(users, fakeHasher{}, fakeIssuer{}, 0)

	// Email and username both resolve.
	for _, identifier := range []string{"jane@example.com", "JANE@example.com", "jane"} {
		res, err := uc.Execute(context.Background(), identifier, "correct-horse")
		if err != nil {
			t.Fatalf("login as %q: %v", identifier, err)
		}
		if res.ExpiresIn != DefaultAccessTokenExpiry {
			t.Errorf("expiresIn = %d", res.ExpiresIn)
		}
		if res.AccessToken != "token-for-"+res.User.ID.String() {
			t.Errorf("token = %q", res.AccessToken)
		}
	}
}

func TestLoginRejections(t *testing.T) {
	users := apptest.NewUserRepo()
	registerUser(t, users, "jane@example.com", "jane")
	suspended := users.Seed("gone@example.com", "gone")
	suspended.PasswordHash = "h:correct-horse"
	suspended.Active = false
	uc := NewLogin(users, fakeHasher{}, fakeIssuer{}, 3600)

	cases := []struct {
		name       string
		identifier string
		password   string
	}{
		{"unknown user", "nobody@example.com", "correct-horse"},
		{"wrong password", "jane@example.com", "incorrect"},
		{"inactive user", "gone@example.com", "correct-horse"},
	}
	for _, tc := range cases {
		_, err := uc.Execute(context.Background(), tc.identifier, tc.password)
		if !domerrors.IsKind(err, domerrors.KindUnauthorized) {
			t.Errorf("%s: kind %v", tc.name, domerrors.KindOf(err))
			continue
		}
		if err.Error() != "Invalid credentials" {
			t.Errorf("%s: message = %q", tc.name, err.Error())
		}
	}
}

func TestHashResetToken(t *testing.T) {
	a, b := HashResetToken("tok"), HashResetToken("tok")
	if a != b {
		t.Error("hash must be deterministic")
	}
	if a == HashResetToken("other") {
		t.Error("distinct tokens must not collide")
	}
	if a == "tok" || len(a) != 64 {
		t.Errorf("hash = %q", a)
	}
}

func TestPasswordResetRoundtrip(t *testing.T) {
	users := apptest.NewUserRepo()
	registerUser(t, users, "jane@example.com", "jane")
	resets := apptest.NewPasswordResetRepo()
	enq := &apptest.Enqueuer{}
	resetBase := "https://app.example.com/reset-password"

	forgot := NewForgotPassword(users, resets, enq, resetBase, 3600, zerolog.Nop())
	if err := forgot.Execute(context.Background(), " Jane@Example.com "); err != nil {
		t.Fatal(err)
	}
	if len(enq.ResetEmails) != 1 || enq.ResetEmails[0] != "jane@example.com" {
		t.Fatalf("reset emails = %v", enq.ResetEmails)
	}
	token := strings.TrimPrefix(enq.ResetURLs[0], resetBase+"?token=")
	if token == enq.ResetURLs[0] || token == "" {
		t.Fatalf("reset url = %q", enq.ResetURLs[0])
	}
	if _, ok := resets.Tokens[token]; ok {
		t.Error("raw token must not be stored")
	}

	reset := NewResetPassword(users, resets, fakeHasher{})
	if err := reset.Execute(context.Background(), token, "brand-new-pass"); err != nil {
		t.Fatal(err)
	}
	login := NewLogin(users, fakeHasher{}, fakeIssuer{}, 3600)
	if _, err := login.Execute(context.Background(), "jane", "brand-new-pass"); err != nil {
		t.Errorf("login with new password: %v", err)
	}
	if _, err := login.Execute(context.Background(), "jane", "correct-horse"); err == nil {
		t.Error("old password should no longer work")
	}

	// Single use.
	err := reset.Execute(context.Background(), token, "another-pass")
	if err == nil || err.Error() != "Invalid or expired reset token" {
		t.Errorf("token reuse: %v", err)
	}
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	users := apptest.NewUserRepo()
	resets := apptest.NewPasswordResetRepo()
	enq := &apptest.Enqueuer{}
	forgot := NewForgotPassword(users, resets, enq, "https://x", 3600, zerolog.Nop())

	if err := forgot.Execute(context.Background(), "nobody@example.com"); err != nil {
		t.Fatal(err)
	}
	if len(enq.ResetEmails) != 0 {
		t.Errorf("emails = %v", enq.ResetEmails)
	}
	if len(resets.Tokens) != 0 {
		t.Error("no token row for unknown email")
	}
}

func TestResetPasswordRejections(t *testing.T) {
	users := apptest.NewUserRepo()
	resets := apptest.NewPasswordResetRepo()
	reset := NewResetPassword(users, resets, fakeHasher{})

	if err := reset.Execute(context.Background(), "whatever", "short"); err == nil || err.Error() != "Password is too weak" {
		t.Errorf("weak password: %v", err)
	}
	if err := reset.Execute(context.Background(), "unknown", "longenough"); err == nil || err.Error() != "Invalid or expired reset token" {
		t.Errorf("unknown token: %v", err)
	}
}

func TestCleanupExpiredResets(t *testing.T) {
	users := apptest.NewUserRepo()
	u := users.Seed("jane@example.com", "jane")
	resets := apptest.NewPasswordResetRepo()
	ctx := context.Background()

	if err := resets.Create(ctx, u.ID, HashResetToken("lapsed"), time.Now().Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}
	if err := resets.Create(ctx, u.ID, HashResetToken("live"), time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	n, err := CleanupExpiredResets(ctx, resets)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("deleted %d rows, want 1", n)
	}
	if uid, _ := resets.Consume(ctx, HashResetToken("live")); uid == nil {
		t.Error("live token should survive cleanup")
	}
}
