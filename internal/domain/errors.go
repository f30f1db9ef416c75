package domain

import (
	"errors"
	"strings"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrUpstreamConfig      = errors.New("upstream misconfigured")
	ErrPersistence         = errors.New("persistence failure")
)

// Message returns the user-facing part of an error built as
// fmt.Errorf("<message>: %w", sentinel).
func Message(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i > 0 {
		return msg[:i]
	}
	return msg
}
