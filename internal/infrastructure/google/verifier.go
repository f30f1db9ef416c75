package google

import (
	"context"
	"fmt"
	"strings"

	"github.com/classifieds-api/internal/domain"
	"google.golang.org/api/idtoken"
)

// Payload is the part of a Google identity the account service needs.
type Payload struct {
	Sub           string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// Verifier checks Google ID tokens issued for one OAuth client.
type Verifier struct {
	clientID string
	validate validateFunc
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{clientID: clientID, validate: idtoken.Validate}
}

// Verify fails with domain.ErrUnauthorized when sign-in is not configured or
// the token does not validate for the client ID.
func (v *Verifier) Verify(ctx context.Context, token string) (*Payload, error) {
	if v.clientID == "" {
		return nil, fmt.Errorf("Google sign-in is not configured: %w", domain.ErrUnauthorized)
	}
	p, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("invalid google token: %w", domain.ErrUnauthorized)
	}
	return payloadFromClaims(p), nil
}

func payloadFromClaims(p *idtoken.Payload) *Payload {
	claim := func(k string) string {
		s, _ := p.Claims[k].(string)
		return s
	}
	name := claim("name")
	if name == "" {
		name = strings.TrimSpace(claim("given_name") + " " + claim("family_name"))
	}
	return &Payload{
		Sub:           p.Subject,
		Email:         claim("email"),
		EmailVerified: truthy(p.Claims["email_verified"]),
		Name:          name,
		Picture:       claim("picture"),
	}
}

// truthy reads a boolean claim that some issuers encode as a string.
func truthy(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(b, "true")
	}
	return false
}
