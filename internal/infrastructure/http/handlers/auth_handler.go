package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/jsmuster/isstrack/internal/application/auth"
	"github.com/jsmuster/isstrack/internal/application/ports"
	"github.com/jsmuster/isstrack/internal/infrastructure/http/middleware"
)

type AuthHandler struct {
	register       *auth.RegisterUser
	login          *auth.Login
	forgotPassword *auth.ForgotPassword
	resetPassword  *auth.ResetPassword
	userRepo       ports.UserRepository
	validate       *validator.Validate
	log            zerolog.Logger
}

func NewAuthHandler(register *auth.RegisterUser, login *auth.Login, forgotPassword *auth.ForgotPassword, resetPassword *auth.ResetPassword, userRepo ports.UserRepository, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		register:       register,
		login:          login,
		forgotPassword: forgotPassword,
		resetPassword:  resetPassword,
		userRepo:       userRepo,
		validate:       validator.New(),
		log:            log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email     string `json:"email" validate:"required,email,max=254"`
		Username  string `json:"username" validate:"required,min=3,max=50"`
		Password  string `json:"password" validate:"required,min=8,max=128"`
		FirstName string `json:"firstName" validate:"max=100"`
		LastName  string `json:"lastName" validate:"max=100"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	user, err := h.register.Execute(r.Context(), auth.RegisterInput{
		Email:     SanitizeEmail(body.Email),
		Username:  body.Username,
		Password:  SanitizePassword(body.Password),
		FirstName: body.FirstName,
		LastName:  body.LastName,
	})
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	h.log.Info().Str("user_id", user.ID.String()).Msg("user registered")
	writeJSON(w, http.StatusCreated, user.ToView())
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Identifier string `json:"identifier" validate:"required,max=254"`
		Password   string `json:"password" validate:"required,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	result, err := h.login.Execute(r.Context(), body.Identifier, SanitizePassword(body.Password))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"accessToken": result.AccessToken,
		"expiresIn":   result.ExpiresIn,
		"user":        result.User.ToView(),
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "", "authentication required")
		return
	}
	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	if user == nil {
		writeErr(w, http.StatusNotFound, "", "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user.ToView())
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email" validate:"required,email,max=254"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	if err := h.forgotPassword.Execute(r.Context(), SanitizeEmail(body.Email)); err != nil {
		respondError(w, h.log, err)
		return
	}
	// Same response whether or not the email exists.
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token       string `json:"token" validate:"required,max=256"`
		NewPassword string `json:"newPassword" validate:"required,min=8,max=128"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", err.Error())
		return
	}
	if err := h.resetPassword.Execute(r.Context(), body.Token, SanitizePassword(body.NewPassword)); err != nil {
		respondError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
