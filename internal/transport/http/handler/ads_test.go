package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/classifieds-api/internal/application/ad"
	"github.com/classifieds-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func multipartBody(t *testing.T, fields map[string]string, files map[string][]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, names := range files {
		for _, name := range names {
			fw, err := mw.CreateFormFile(field, name)
			require.NoError(t, err)
			_, err = fw.Write([]byte("content of " + name))
			require.NoError(t, err)
		}
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestCreateAd_Unauthenticated(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockAdSvc{}
	h := NewAdHandler(svc, 0)

	r := httptest.NewRequest(http.MethodPost, "/v1/ads", nil)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Create), rr, r)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"Not authenticated"}`, rr.Body.String())
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateAd_PassesFieldsAndFiles(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockAdSvc{}
	h := NewAdHandler(svc, 0)

	body, ctype := multipartBody(t, map[string]string{
		"title":       "Honda CB500",
		"description": "Well kept motorcycle, single owner.",
		"price":       "120.5",
		"category":    "VEHICLES",
		"subCategory": "MOTORCYCLES",
		"hashtags":    "#moto #honda",
	}, map[string][]string{"media": {"bike.jpg"}, "media[]": {"side.jpg"}})

	wantReq := domain.CreateAdRequest{
		Title:       "Honda CB500",
		Description: "Well kept motorcycle, single owner.",
		Price:       "120.5",
		Category:    "VEHICLES",
		SubCategory: "MOTORCYCLES",
		Hashtags:    "#moto #honda",
	}
	var gotUploads []ad.Upload
	var firstContent []byte
	svc.On("Create", mock.Anything, "u1", wantReq, mock.Anything).
		Run(func(args mock.Arguments) {
			gotUploads = args.Get(3).([]ad.Upload)
			rc, err := gotUploads[0].Open()
			require.NoError(t, err)
			defer rc.Close()
			firstContent, _ = io.ReadAll(rc)
		}).
		Return(&domain.Ad{AdID: "a1", Title: "Honda CB500", Price: 120.5, MediaURLs: []string{"/uploads/x"}}, nil)

	r := bearerReq(t, p, http.MethodPost, "/v1/ads", "u1", body.Bytes())
	r.Header.Set("Content-Type", ctype)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Create), rr, r)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.Len(t, gotUploads, 2)
	assert.Equal(t, "bike.jpg", gotUploads[0].Filename)
	assert.Equal(t, "side.jpg", gotUploads[1].Filename)
	assert.Equal(t, "content of bike.jpg", string(firstContent))

	var out domain.Ad
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "a1", out.AdID)
	assert.Equal(t, 120.5, out.Price)
}

func TestCreateAd_NotMultipart(t *testing.T) {
	p := newTestJWTProvider(t)
	h := NewAdHandler(&mockAdSvc{}, 0)

	r := bearerReq(t, p, http.MethodPost, "/v1/ads", "u1", []byte(`{"title":"x"}`))
	r.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Create), rr, r)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateAd_BodyOverLimit(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockAdSvc{}
	h := NewAdHandler(svc, 1024)

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	require.NoError(t, mw.WriteField("title", "Honda CB500"))
	fw, err := mw.CreateFormFile("media", "big.jpg")
	require.NoError(t, err)
	_, err = fw.Write(bytes.Repeat([]byte("x"), 4096))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := bearerReq(t, p, http.MethodPost, "/v1/ads", "u1", buf.Bytes())
	r.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Create), rr, r)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	assert.JSONEq(t, `{"error":"Upload too large"}`, rr.Body.String())
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateAd_ValidationError(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockAdSvc{}
	h := NewAdHandler(svc, 0)
	svc.On("Create", mock.Anything, "u1", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("Invalid sub-category for selected category: %w", domain.ErrValidation))

	body, ctype := multipartBody(t, map[string]string{"title": "Phone"}, nil)
	r := bearerReq(t, p, http.MethodPost, "/v1/ads", "u1", body.Bytes())
	r.Header.Set("Content-Type", ctype)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Create), rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid sub-category for selected category"}`, rr.Body.String())
}

func TestDeleteAd_StatusMapping(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"ok", nil, http.StatusOK, `{"message":"Ad deleted successfully"}`},
		{"missing", fmt.Errorf("Ad not found: %w", domain.ErrNotFound), http.StatusNotFound, `{"error":"Ad not found"}`},
		{"not owner", fmt.Errorf("Not authorized to delete this ad: %w", domain.ErrForbidden), http.StatusForbidden, `{"error":"Not authorized to delete this ad"}`},
		{"store", fmt.Errorf("Failed to delete ad: %w", domain.ErrPersistence), http.StatusInternalServerError, `{"error":"Failed to delete ad"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newTestJWTProvider(t)
			svc := &mockAdSvc{}
			h := NewAdHandler(svc, 0)
			svc.On("Delete", mock.Anything, "a1", "u1").Return(tc.err)

			r := withChiID(bearerReq(t, p, http.MethodDelete, "/v1/ads/a1", "u1", nil), "a1")
			rr := httptest.NewRecorder()
			serveAuthed(p, http.HandlerFunc(h.Delete), rr, r)

			assert.Equal(t, tc.wantCode, rr.Code)
			assert.JSONEq(t, tc.wantBody, rr.Body.String())
		})
	}
}

func TestListAds_PassesLimitAndCursor(t *testing.T) {
	svc := &mockAdSvc{}
	h := NewAdHandler(svc, 0)
	svc.On("List", mock.Anything, 5, "abc").Return([]domain.Ad{{AdID: "a1"}}, "next", nil)

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/v1/ads?limit=5&cursor=abc", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var out AdPageEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out.Data, 1)
	assert.Equal(t, "a1", out.Data[0].AdID)
	assert.Equal(t, "next", out.NextCursor)
}

func TestListAds_EmptyIsArray(t *testing.T) {
	svc := &mockAdSvc{}
	h := NewAdHandler(svc, 0)
	svc.On("List", mock.Anything, 0, "").Return(nil, "", nil)

	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/v1/ads", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"data":[]}`, rr.Body.String())
}

func TestGetAd_NotFound(t *testing.T) {
	svc := &mockAdSvc{}
	h := NewAdHandler(svc, 0)
	svc.On("Get", mock.Anything, "zz").Return(nil, fmt.Errorf("Ad not found: %w", domain.ErrNotFound))

	rr := httptest.NewRecorder()
	h.Get(rr, withChiID(httptest.NewRequest(http.MethodGet, "/v1/ads/zz", nil), "zz"))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetAd_IncludesAuthor(t *testing.T) {
	svc := &mockAdSvc{}
	h := NewAdHandler(svc, 0)
	svc.On("Get", mock.Anything, "a1").Return(&domain.Ad{
		AdID:       "a1",
		AIImageURL: ptr("/uploads/ai.png"),
		Author:     &domain.Author{ID: "u1", Name: "Ann"},
	}, nil)

	rr := httptest.NewRecorder()
	h.Get(rr, withChiID(httptest.NewRequest(http.MethodGet, "/v1/ads/a1", nil), "a1"))

	require.Equal(t, http.StatusOK, rr.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, "/uploads/ai.png", out["aiImageUrl"])
	assert.Equal(t, "Ann", out["author"].(map[string]any)["name"])
	assert.NotContains(t, out, "feed")
}
