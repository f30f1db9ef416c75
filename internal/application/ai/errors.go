package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/classifieds-api/internal/domain"
)

// ErrParse reports a model response that is not the expected JSON object.
var ErrParse = errors.New("unparseable model response")

// ErrNotConfigured is returned by generators built without a model.
var ErrNotConfigured = fmt.Errorf("AI model is not configured: %w", domain.ErrUpstreamConfig)

// Stage names the step of image generation that failed.
type Stage string

const (
	StageGenerate Stage = "generate"
	StagePersist  Stage = "persist"
)

// GenerationError is returned when both the primary image path and the
// placeholder fallback failed. Unwrap yields the primary error so callers
// classify by root cause.
type GenerationError struct {
	Stage    Stage
	Err      error
	Fallback error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("image %s failed: %v (fallback: %v)", e.Stage, e.Err, e.Fallback)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Classify maps a generator error onto domain.ErrUpstreamConfig,
// domain.ErrUpstreamUnavailable or nil for a generic failure.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrUpstreamConfig):
		return domain.ErrUpstreamConfig
	case errors.Is(err, domain.ErrUpstreamUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return domain.ErrUpstreamUnavailable
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission denied"),
		strings.Contains(msg, "billing"),
		strings.Contains(msg, "api key"):
		return domain.ErrUpstreamConfig
	case strings.Contains(msg, "overloaded"),
		strings.Contains(msg, "503 service unavailable"):
		return domain.ErrUpstreamUnavailable
	}
	return nil
}
