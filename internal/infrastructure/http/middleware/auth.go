package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/domain"
)

// AuthValidator validates the JWT and sets the user id in context (see UserFromContext).
type AuthValidator struct {
	issuer ports.TokenIssuer
}

func NewAuthValidator(issuer ports.TokenIssuer) *AuthValidator {
	return &AuthValidator{issuer: issuer}
}

func (m *AuthValidator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			writeErr(w, http.StatusUnauthorized, "missing or invalid authorization")
			return
		}
		tokenString := strings.TrimPrefix(auth, "Bearer ")
		subject, err := m.issuer.ValidateAccessToken(tokenString)
		if err != nil {
			writeErr(w, http.StatusUnauthorized, "invalid token")
			return
		}
		userID, err := strconv.ParseInt(subject, 10, 64)
		if err != nil {
			writeErr(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := WithUser(r.Context(), domain.UserID(userID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeErr(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
