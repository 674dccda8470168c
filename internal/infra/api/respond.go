package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hemanthreddykoduru/StudentNotes/internal/domain"
)

type errorBody struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP. Messages stay generic.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusBadRequest, domain.ErrInvalidSignature.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "already purchased"
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid request"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "too many requests"
	case errors.Is(err, domain.ErrUpstream):
		return http.StatusBadGateway, "payment gateway unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger(r).Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorBody{Error: msg})
}

// failVerify keeps the {success:false} shape the checkout client expects.
func (s *Server) failVerify(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger(r).Error().Err(err).Msg("payment confirmation failed")
	}
	f := false
	writeJSON(w, status, errorBody{Success: &f, Error: msg})
}
