package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	domerrors "github.com/jsmuster/isstrack/internal/domain/errors"
)

// writeErr sends JSON { "error": message, "code": errCode }. If errCode is empty, a default is used from code.
func writeErr(w http.ResponseWriter, code int, errCode string, message string) {
	if errCode == "" {
		errCode = defaultErrCode(code)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": errCode})
}

func defaultErrCode(httpCode int) string {
	switch httpCode {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusForbidden:
		return ErrCodeForbidden
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusTooManyRequests:
		return ErrCodeRateLimited
	default:
		return ErrCodeInternal
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError maps a domain error kind to its HTTP status. Unknown
// kinds are logged and masked as 500.
func respondError(w http.ResponseWriter, log zerolog.Logger, err error) {
	switch domerrors.KindOf(err) {
	case domerrors.KindUnauthorized:
		writeErr(w, http.StatusUnauthorized, "", err.Error())
	case domerrors.KindForbidden:
		writeErr(w, http.StatusForbidden, "", err.Error())
	case domerrors.KindNotFound:
		writeErr(w, http.StatusNotFound, "", err.Error())
	case domerrors.KindBadRequest:
		writeErr(w, http.StatusBadRequest, "", err.Error())
	case domerrors.KindConflict:
		writeErr(w, http.StatusConflict, "", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
	}
}
