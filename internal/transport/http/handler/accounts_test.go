package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/classifieds-api/internal/application/account"
	"github.com/classifieds-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegister_InvalidBody(t *testing.T) {
	h := NewAccountHandler(&mockAccountSvc{})
	rr := httptest.NewRecorder()
	h.Register(rr, httptest.NewRequest(http.MethodPost, "/v1/register", bytes.NewBufferString("not-json")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRegister_Created(t *testing.T) {
	svc := &mockAccountSvc{}
	h := NewAccountHandler(svc)
	req := domain.RegisterRequest{Name: "Ann", Email: "ann@example.com", Password: "secret1"}
	svc.On("Register", mock.Anything, req).Return(&account.RegisterResult{
		ID: "u1", Name: "Ann", Email: "ann@example.com", Message: "Account created. Please check your email to verify.",
	}, nil)

	body, _ := json.Marshal(req)
	rr := httptest.NewRecorder()
	h.Register(rr, httptest.NewRequest(http.MethodPost, "/v1/register", bytes.NewReader(body)))

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"id":"u1","name":"Ann","email":"ann@example.com","message":"Account created. Please check your email to verify."}`, rr.Body.String())
}

func TestRegister_Conflict(t *testing.T) {
	svc := &mockAccountSvc{}
	h := NewAccountHandler(svc)
	svc.On("Register", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("User with this email already exists: %w", domain.ErrConflict))

	rr := httptest.NewRecorder()
	h.Register(rr, httptest.NewRequest(http.MethodPost, "/v1/register", bytes.NewBufferString(`{"name":"a","email":"a@b.co","password":"secret1"}`)))

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.JSONEq(t, `{"error":"User with this email already exists"}`, rr.Body.String())
}

func TestVerifyEmail_FromQuery(t *testing.T) {
	svc := &mockAccountSvc{}
	h := NewAccountHandler(svc)
	svc.On("VerifyEmail", mock.Anything, "tok-1").Return(nil)

	rr := httptest.NewRecorder()
	h.VerifyEmail(rr, httptest.NewRequest(http.MethodPost, "/v1/verify-email?token=tok-1", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Email verified successfully!"}`, rr.Body.String())
}

func TestVerifyEmail_FromBodyInvalid(t *testing.T) {
	svc := &mockAccountSvc{}
	h := NewAccountHandler(svc)
	svc.On("VerifyEmail", mock.Anything, "stale").
		Return(fmt.Errorf("Invalid or expired token: %w", domain.ErrValidation))

	rr := httptest.NewRecorder()
	h.VerifyEmail(rr, httptest.NewRequest(http.MethodPost, "/v1/verify-email", bytes.NewBufferString(`{"token":"stale"}`)))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid or expired token"}`, rr.Body.String())
}

func TestCheckUser_StatusMapping(t *testing.T) {
	cases := []struct {
		err      error
		wantCode int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("Please enter your email and password.: %w", domain.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("Invalid password! Try again.: %w", domain.ErrUnauthorized), http.StatusUnauthorized},
		{fmt.Errorf("Email not verified! Check your inbox.: %w", domain.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("No user found! You need to Sign Up!: %w", domain.ErrNotFound), http.StatusNotFound},
	}
	for _, tc := range cases {
		svc := &mockAccountSvc{}
		h := NewAccountHandler(svc)
		svc.On("CheckUser", mock.Anything, domain.CredentialsRequest{Email: "a@b.co", Password: "pw"}).Return(tc.err)

		rr := httptest.NewRecorder()
		h.CheckUser(rr, httptest.NewRequest(http.MethodPost, "/v1/check-user", bytes.NewBufferString(`{"email":"a@b.co","password":"pw"}`)))

		assert.Equal(t, tc.wantCode, rr.Code)
		if tc.err == nil {
			assert.JSONEq(t, `{"success":true}`, rr.Body.String())
		} else {
			assert.JSONEq(t, fmt.Sprintf(`{"error":%q}`, domain.Message(tc.err)), rr.Body.String())
		}
	}
}

func TestLogin_ReturnsBearerAndUser(t *testing.T) {
	svc := &mockAccountSvc{}
	h := NewAccountHandler(svc)
	svc.On("Login", mock.Anything, mock.Anything).Return(&account.Session{
		Bearer: "signed.jwt",
		User:   &domain.User{UserID: "u1", Name: "Ann", Email: "ann@example.com", PasswordHash: "secret-hash"},
	}, nil)

	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest(http.MethodPost, "/v1/sessions/login", bytes.NewBufferString(`{"email":"ann@example.com","password":"secret1"}`)))

	require.Equal(t, http.StatusOK, rr.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "signed.jwt", out["Bearer"])
	user := out["user"].(map[string]any)
	assert.Equal(t, "u1", user["id"])
	assert.NotContains(t, user, "password_hash")
	assert.NotContains(t, rr.Body.String(), "secret-hash")
}

func TestGoogle_UnexpectedErrorIsGeneric(t *testing.T) {
	svc := &mockAccountSvc{}
	h := NewAccountHandler(svc)
	svc.On("GoogleSignIn", mock.Anything, "id-tok").Return(nil, errors.New("sign token: key missing"))

	rr := httptest.NewRecorder()
	h.Google(rr, httptest.NewRequest(http.MethodPost, "/v1/sessions/google", bytes.NewBufferString(`{"idToken":"id-tok"}`)))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rr.Body.String())
}
