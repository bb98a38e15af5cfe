package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"qrate/internal/domain"
)

type errorBody struct {
	Error  string            `json:"error"`
	Field  string            `json:"field,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeError is the single place errors are mapped to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	if cr, ok := domain.IsContentRejected(err); ok {
		writeJSON(w, http.StatusForbidden, errorBody{Error: cr.Error(), Field: cr.Field})
		return
	}
	if ve, ok := domain.IsValidation(err); ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Error(), Fields: ve.Fields})
		return
	}

	status, msg := statusOf(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func statusOf(err error) (int, string) {
	for _, m := range []struct {
		target error
		status int
	}{
		{domain.ErrUnauthenticated, http.StatusUnauthorized},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{domain.ErrUnverified, http.StatusForbidden},
		{domain.ErrOwnershipMismatch, http.StatusForbidden},
		{domain.ErrDomainRejected, http.StatusBadRequest},
		{domain.ErrVerificationFailed, http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrConflict, http.StatusConflict},
		{domain.ErrVersionConflict, http.StatusConflict},
		{domain.ErrNotificationFailed, http.StatusBadGateway},
	} {
		if errors.Is(err, m.target) {
			return m.status, m.target.Error()
		}
	}
	return http.StatusInternalServerError, domain.ErrInternal.Error()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}
