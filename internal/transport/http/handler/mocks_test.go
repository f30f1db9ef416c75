package handler

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/classifieds-api/internal/application/account"
	"github.com/classifieds-api/internal/application/ad"
	"github.com/classifieds-api/internal/application/ai"
	"github.com/classifieds-api/internal/domain"
	jwtinfra "github.com/classifieds-api/internal/infrastructure/jwt"
	"github.com/classifieds-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockAdSvc struct{ mock.Mock }

func (m *mockAdSvc) Create(ctx context.Context, authorID string, req domain.CreateAdRequest, uploads []ad.Upload) (*domain.Ad, error) {
	args := m.Called(ctx, authorID, req, uploads)
	if a, _ := args.Get(0).(*domain.Ad); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAdSvc) Delete(ctx context.Context, adID, requesterID string) error {
	return m.Called(ctx, adID, requesterID).Error(0)
}
func (m *mockAdSvc) List(ctx context.Context, limit int, cursor string) ([]domain.Ad, string, error) {
	args := m.Called(ctx, limit, cursor)
	ads, _ := args.Get(0).([]domain.Ad)
	return ads, args.String(1), args.Error(2)
}
func (m *mockAdSvc) Get(ctx context.Context, adID string) (*domain.Ad, error) {
	args := m.Called(ctx, adID)
	if a, _ := args.Get(0).(*domain.Ad); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAccountSvc struct{ mock.Mock }

func (m *mockAccountSvc) Register(ctx context.Context, req domain.RegisterRequest) (*account.RegisterResult, error) {
	args := m.Called(ctx, req)
	if r, _ := args.Get(0).(*account.RegisterResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountSvc) VerifyEmail(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}
func (m *mockAccountSvc) CheckUser(ctx context.Context, req domain.CredentialsRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *mockAccountSvc) Login(ctx context.Context, req domain.CredentialsRequest) (*account.Session, error) {
	args := m.Called(ctx, req)
	if s, _ := args.Get(0).(*account.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAccountSvc) GoogleSignIn(ctx context.Context, idToken string) (*account.Session, error) {
	args := m.Called(ctx, idToken)
	if s, _ := args.Get(0).(*account.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockContentGen struct{ mock.Mock }

func (m *mockContentGen) Generate(ctx context.Context, title, description string) (*ai.Content, error) {
	args := m.Called(ctx, title, description)
	if c, _ := args.Get(0).(*ai.Content); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockImageGen struct{ mock.Mock }

func (m *mockImageGen) Generate(ctx context.Context, title string) (string, error) {
	args := m.Called(ctx, title)
	return args.String(0), args.Error(1)
}

// --- helpers ---

// newTestJWTProvider generates a fresh RSA key pair and returns a *jwtinfra.Provider.
func newTestJWTProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	p, err := jwtinfra.NewProvider(privPath, pubPath, 24*time.Hour)
	require.NoError(t, err)
	return p
}

// bearerReq builds a request with a signed Bearer token for userID.
func bearerReq(t *testing.T, p *jwtinfra.Provider, method, target, userID string, body []byte) *http.Request {
	t.Helper()
	token, err := p.Sign(userID, "Ann", "ann@example.com")
	require.NoError(t, err)
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r.Header.Set("Authorization", "Bearer "+token)
	return r
}

// withChiID injects a chi URL param "id" into the request context.
func withChiID(r *http.Request, id string) *http.Request {
	return withChiParam(r, "id", id)
}

func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// serveAuthed wraps the handler with middleware.Auth before serving.
func serveAuthed(p *jwtinfra.Provider, h http.Handler, w http.ResponseWriter, r *http.Request) {
	middleware.Auth(p)(h).ServeHTTP(w, r)
}

func ptr[T any](v T) *T { return &v }
