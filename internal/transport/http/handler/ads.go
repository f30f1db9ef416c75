package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/classifieds-api/internal/application/ad"
	"github.com/classifieds-api/internal/domain"
	"github.com/classifieds-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
)

// maxUploadMemory is how much of a multipart body is kept in memory; the rest
// spills to temp files.
const maxUploadMemory = 32 << 20

// defaultMaxUpload caps an ad submission when no limit is configured.
const defaultMaxUpload = 50 << 20

// mediaFields are the accepted multipart file field names.
var mediaFields = []string{"media", "media[]"}

// AdHandler handles the ad endpoints.
type AdHandler struct {
	svc       ad.Service
	maxUpload int64
}

// NewAdHandler creates an AdHandler. maxUpload bounds the whole multipart
// body; zero selects defaultMaxUpload.
func NewAdHandler(svc ad.Service, maxUpload int64) *AdHandler {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &AdHandler{svc: svc, maxUpload: maxUpload}
}

func (h *AdHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(min(maxUploadMemory, h.maxUpload)); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	req := domain.CreateAdRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
		Category:    r.FormValue("category"),
		SubCategory: r.FormValue("subCategory"),
		Hashtags:    r.FormValue("hashtags"),
		AIImageURL:  r.FormValue("aiImageUrl"),
	}

	created, err := h.svc.Create(r.Context(), claims.UserID, req, uploadsFrom(r.MultipartForm))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func uploadsFrom(form *multipart.Form) []ad.Upload {
	var uploads []ad.Upload
	for _, field := range mediaFields {
		for _, fh := range form.File[field] {
			uploads = append(uploads, ad.Upload{
				Filename: fh.Filename,
				Size:     fh.Size,
				Open:     func() (io.ReadCloser, error) { return fh.Open() },
			})
		}
	}
	return uploads
}

func (h *AdHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	ads, next, err := h.svc.List(r.Context(), limit, r.URL.Query().Get("cursor"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if ads == nil {
		ads = []domain.Ad{}
	}
	writeJSON(w, http.StatusOK, AdPageEnvelope{Data: ads, NextCursor: next})
}

func (h *AdHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

func (h *AdHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Ad deleted successfully"})
}
