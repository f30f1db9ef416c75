package token

import (
	"fmt"

	"github.com/google/uuid"
)

// NewVerificationToken returns an opaque, unguessable email verification token.
func NewVerificationToken() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate verification token: %w", err)
	}
	return u.String(), nil
}
