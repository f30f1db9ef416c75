package jwtinfra

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is stamped into every token and required on verification.
const Issuer = "classifieds-api"

// Claims identifies the signed-in user.
type Claims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Provider signs and verifies RS256 JWTs.
type Provider struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	expiry     time.Duration
	parser     *jwt.Parser
}

// NewProvider loads a PEM key pair from disk.
func NewProvider(privateKeyPath, publicKeyPath string, expiry time.Duration) (*Provider, error) {
	privKey, err := readPEM(privateKeyPath, jwt.ParseRSAPrivateKeyFromPEM)
	if err != nil {
		return nil, fmt.Errorf("private key: %w", err)
	}
	pubKey, err := readPEM(publicKeyPath, jwt.ParseRSAPublicKeyFromPEM)
	if err != nil {
		return nil, fmt.Errorf("public key: %w", err)
	}
	return &Provider{
		privateKey: privKey,
		publicKey:  pubKey,
		expiry:     expiry,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(Issuer),
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(30*time.Second),
		),
	}, nil
}

func readPEM[K any](path string, parse func([]byte) (K, error)) (K, error) {
	var zero K
	raw, err := os.ReadFile(path)
	if err != nil {
		return zero, err
	}
	key, err := parse(raw)
	if err != nil {
		return zero, fmt.Errorf("parse %s: %w", path, err)
	}
	return key, nil
}

// Sign issues a token for the user valid for the provider's expiry.
func (p *Provider) Sign(userID, name, email string) (string, error) {
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{
		UserID: userID,
		Name:   name,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}).SignedString(p.privateKey)
}

func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := p.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return p.publicKey, nil
	})
	if err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, errors.New("token carries no user")
	}
	return claims, nil
}
