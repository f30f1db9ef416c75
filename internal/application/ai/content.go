package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/classifieds-api/internal/domain"
	"github.com/classifieds-api/internal/logger"
	"go.uber.org/zap"
)

const defaultDescription = "No description provided."

const contentPrompt = `
You are a professional marketing copywriter.
A user is creating an ad with the current title: %q and provided this description: %q.

Your task is to:
1. Enhance the provided title to be more attractive and compelling (2-8 words).
2. Generate an attractive, promotional description (around 2-3 sentences).
3. Generate 5 relevant hashtags, separated by spaces (e.g., #tag1 #tag2).

Respond *only* with a valid JSON object in this exact format:
{
  "enhancedTitle": "Your enhanced title.",
  "description": "Your generated description here.",
  "hashtags": "Your generated hashtags (space separated)."
}
`

// TextModel is a prompt-in, text-out language model.
type TextModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Content is the enhanced ad copy produced by the text model.
type Content struct {
	EnhancedTitle string `json:"enhancedTitle"`
	Description   string `json:"description"`
	Hashtags      string `json:"hashtags"`
}

// ContentGenerator turns a draft title and description into enhanced ad copy.
type ContentGenerator struct {
	model   TextModel
	timeout time.Duration
	log     *zap.Logger
}

// NewContentGenerator creates a ContentGenerator. A nil model makes every call
// fail with ErrNotConfigured; a zero timeout disables the per-call deadline.
func NewContentGenerator(model TextModel, timeout time.Duration, log *zap.Logger) *ContentGenerator {
	return &ContentGenerator{model: model, timeout: timeout, log: logger.OrNop(log)}
}

// Generate calls the text model once. No retry is attempted.
func (g *ContentGenerator) Generate(ctx context.Context, title, description string) (*Content, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("Title is required for AI generation.: %w", domain.ErrValidation)
	}
	if strings.TrimSpace(description) == "" {
		description = defaultDescription
	}
	if g.model == nil {
		return nil, ErrNotConfigured
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	raw, err := g.model.GenerateText(ctx, fmt.Sprintf(contentPrompt, title, description))
	if err != nil {
		g.log.Warn("AI content generation failed", zap.Error(err))
		if Classify(err) == domain.ErrUpstreamUnavailable {
			return nil, fmt.Errorf("content model unavailable: %w", domain.ErrUpstreamUnavailable)
		}
		return nil, fmt.Errorf("content model: %w", err)
	}
	c, err := ParseContent(raw)
	if err != nil {
		g.log.Warn("AI content response rejected", zap.Error(err), zap.String("raw", raw))
		return nil, err
	}
	return c, nil
}

// ParseContent strips markdown code fences from raw and decodes the three
// required string fields. Unknown fields are ignored.
func ParseContent(raw string) (*Content, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, "```", ""))

	var fields map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("decode: %v: %w", err, ErrParse)
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON object: %w", ErrParse)
	}

	var c Content
	for name, dst := range map[string]*string{
		"enhancedTitle": &c.EnhancedTitle,
		"description":   &c.Description,
		"hashtags":      &c.Hashtags,
	} {
		v, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("missing field %q: %w", name, ErrParse)
		}
		if string(v) == "null" || json.Unmarshal(v, dst) != nil {
			return nil, fmt.Errorf("field %q is not a string: %w", name, ErrParse)
		}
	}
	return &c, nil
}
