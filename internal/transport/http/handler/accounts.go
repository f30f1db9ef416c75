package handler

import (
	"net/http"

	"github.com/classifieds-api/internal/application/account"
	"github.com/classifieds-api/internal/domain"
)

type verifyEmailRequest struct {
	Token string `json:"token"`
}

type googleSignInRequest struct {
	IDToken string `json:"idToken"`
}

// AccountHandler handles registration, verification and sign-in.
type AccountHandler struct {
	svc account.Service
}

func NewAccountHandler(svc account.Service) *AccountHandler { return &AccountHandler{svc: svc} }

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.Register(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// VerifyEmail accepts the token in a JSON body or as the ?token= query
// parameter of the emailed link.
func (h *AccountHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if tok := r.URL.Query().Get("token"); tok != "" {
		req.Token = tok
	} else if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if err := h.svc.VerifyEmail(r.Context(), req.Token); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Email verified successfully!"})
}

func (h *AccountHandler) CheckUser(w http.ResponseWriter, r *http.Request) {
	var req domain.CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.svc.CheckUser(r.Context(), req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := h.svc.Login(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Bearer: sess.Bearer, User: sess.User})
}

func (h *AccountHandler) Google(w http.ResponseWriter, r *http.Request) {
	var req googleSignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sess, err := h.svc.GoogleSignIn(r.Context(), req.IDToken)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Bearer: sess.Bearer, User: sess.User})
}
