package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/classifieds-api/internal/application/ai"
	"github.com/classifieds-api/internal/domain"
	"go.uber.org/zap"
)

type contentGenerator interface {
	Generate(ctx context.Context, title, description string) (*ai.Content, error)
}

type imageGenerator interface {
	Generate(ctx context.Context, title string) (string, error)
}

type aiContentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type aiImageRequest struct {
	Title string `json:"title"`
}

type aiImageResponse struct {
	AIImageURL string `json:"aiImageUrl"`
}

// AIHandler exposes the AI helpers used while drafting an ad.
type AIHandler struct {
	content contentGenerator
	image   imageGenerator
}

func NewAIHandler(content contentGenerator, image imageGenerator) *AIHandler {
	return &AIHandler{content: content, image: image}
}

func (h *AIHandler) Content(w http.ResponseWriter, r *http.Request) {
	var req aiContentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	out, err := h.content.Generate(r.Context(), req.Title, req.Description)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, out)
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, domain.Message(err))
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		writeError(w, http.StatusServiceUnavailable, "The AI model is currently overloaded. Please try again in a moment.")
	default:
		zap.L().Error("ai content generation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to generate content. Please try again later.")
	}
}

func (h *AIHandler) Image(w http.ResponseWriter, r *http.Request) {
	var req aiImageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	url, err := h.image.Generate(r.Context(), req.Title)
	if err == nil {
		writeJSON(w, http.StatusOK, aiImageResponse{AIImageURL: url})
		return
	}
	if errors.Is(err, domain.ErrValidation) {
		writeError(w, http.StatusBadRequest, domain.Message(err))
		return
	}

	zap.L().Error("ai image generation failed", zap.Error(err))
	switch ai.Classify(err) {
	case domain.ErrUpstreamConfig:
		writeError(w, http.StatusInternalServerError, "AI image generation failed. This feature may require billing info to be enabled on your Google Cloud project.")
	case domain.ErrUpstreamUnavailable:
		writeError(w, http.StatusServiceUnavailable, "The AI image model is currently overloaded. Please try again later.")
	default:
		writeError(w, http.StatusInternalServerError, "Failed to generate image. Please try again later.")
	}
}
