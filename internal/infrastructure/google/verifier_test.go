package google

import (
	"context"
	"errors"
	"testing"

	"github.com/classifieds-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func TestVerify_ExtractsClaims(t *testing.T) {
	v := &Verifier{clientID: "client-1", validate: func(_ context.Context, token, aud string) (*idtoken.Payload, error) {
		assert.Equal(t, "tok", token)
		assert.Equal(t, "client-1", aud)
		return &idtoken.Payload{Subject: "sub-1", Claims: map[string]interface{}{
			"email":          "alice@example.com",
			"email_verified": true,
			"name":           "Alice",
			"picture":        "https://lh3.example.com/a.png",
		}}, nil
	}}

	p, err := v.Verify(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, &Payload{Sub: "sub-1", Email: "alice@example.com", EmailVerified: true, Name: "Alice", Picture: "https://lh3.example.com/a.png"}, p)
}

func TestVerify_InvalidToken(t *testing.T) {
	v := &Verifier{clientID: "client-1", validate: func(context.Context, string, string) (*idtoken.Payload, error) {
		return nil, errors.New("audience mismatch")
	}}
	_, err := v.Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestVerify_NotConfigured(t *testing.T) {
	_, err := NewVerifier("").Verify(context.Background(), "tok")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestPayloadFromClaims_Fallbacks(t *testing.T) {
	p := payloadFromClaims(&idtoken.Payload{Subject: "sub-2", Claims: map[string]interface{}{
		"email":          "bob@example.com",
		"email_verified": "true",
		"given_name":     "Bob",
		"family_name":    "Stone",
	}})
	assert.Equal(t, "Bob Stone", p.Name)
	assert.True(t, p.EmailVerified)
	assert.Empty(t, p.Picture)

	p = payloadFromClaims(&idtoken.Payload{Subject: "sub-3", Claims: map[string]interface{}{}})
	assert.False(t, p.EmailVerified)
	assert.Empty(t, p.Name)
}
