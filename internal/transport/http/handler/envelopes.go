package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/classifieds-api/internal/domain"
	"go.uber.org/zap"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps login responses.
type AuthEnvelope struct {
	Bearer string       `json:"Bearer"`
	User   *domain.User `json:"user"`
}

// AdPageEnvelope wraps a page of the ad feed.
type AdPageEnvelope struct {
	Data       []domain.Ad `json:"data"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// statusFor maps a domain sentinel to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError writes the user-facing part of err. Errors that carry no
// domain sentinel are logged and answered with a generic 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError && !isDomain(err) {
		zap.L().Error("unhandled error", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, status, "Internal Server Error")
		return
	}
	writeError(w, status, domain.Message(err))
}

func isDomain(err error) bool {
	return errors.Is(err, domain.ErrPersistence) || errors.Is(err, domain.ErrUpstreamConfig)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}
