package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/classifieds-api/internal/domain"
	"github.com/classifieds-api/internal/logger"
	"github.com/classifieds-api/internal/pkg/filename"
	"go.uber.org/zap"
)

// PlaceholderName is the constant file name of the fallback image, so repeated
// fallbacks overwrite one file.
const PlaceholderName = domain.PlaceholderImageName

const imagePrompt = `A professional, clean, eye-catching promotional banner image for an ad titled: "%s". Do not include any text in the image. Photorealistic, 1024x1024.`

// maxPlaceholderBytes caps the fallback download.
const maxPlaceholderBytes = 20 << 20

// ImageModel is a prompt-in, image-bytes-out model.
type ImageModel interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

type mediaSaver interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// ImageGeneratorDeps holds the collaborators of an ImageGenerator.
type ImageGeneratorDeps struct {
	Model          ImageModel // nil means the primary path always fails
	Media          mediaSaver
	HTTPClient     *http.Client
	PlaceholderURL string
	Timeout        time.Duration
	Log            *zap.Logger
	Now            func() time.Time
}

// ImageGenerator produces an ad thumbnail, falling back to a static placeholder.
type ImageGenerator struct {
	model          ImageModel
	media          mediaSaver
	http           *http.Client
	placeholderURL string
	timeout        time.Duration
	log            *zap.Logger
	now            func() time.Time
}

func NewImageGenerator(deps ImageGeneratorDeps) *ImageGenerator {
	g := &ImageGenerator{
		model:          deps.Model,
		media:          deps.Media,
		http:           deps.HTTPClient,
		placeholderURL: deps.PlaceholderURL,
		timeout:        deps.Timeout,
		log:            logger.OrNop(deps.Log),
		now:            deps.Now,
	}
	if g.http == nil {
		g.http = &http.Client{Timeout: 30 * time.Second}
	}
	if g.now == nil {
		g.now = time.Now
	}
	return g
}

// Generate returns the public path of a thumbnail for title. Any failure of the
// model call or of persisting its bytes triggers the placeholder fallback. If
// the fallback fails too, a *GenerationError carrying the primary error is returned.
func (g *ImageGenerator) Generate(ctx context.Context, title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("Post Title is required for image generation.: %w", domain.ErrValidation)
	}

	p, stage, err := g.primary(ctx, title)
	if err == nil {
		return p, nil
	}
	g.log.Warn("AI image generation failed, falling back to placeholder",
		zap.String("stage", string(stage)), zap.Error(err))

	p, fbErr := g.fallback(ctx)
	if fbErr == nil {
		return p, nil
	}
	g.log.Error("placeholder fallback failed", zap.Error(fbErr))
	return "", &GenerationError{Stage: stage, Err: err, Fallback: fbErr}
}

func (g *ImageGenerator) primary(ctx context.Context, title string) (string, Stage, error) {
	if g.model == nil {
		return "", StageGenerate, ErrNotConfigured
	}
	genCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	data, err := g.model.GenerateImage(genCtx, fmt.Sprintf(imagePrompt, title))
	if err != nil {
		return "", StageGenerate, err
	}
	name := fmt.Sprintf(domain.GeneratedImagePrefix+"%d-%s.png", g.now().UnixMilli(), filename.Sanitize(title))
	p, err := g.media.Save(ctx, name, bytes.NewReader(data))
	if err != nil {
		return "", StagePersist, err
	}
	return p, "", nil
}

func (g *ImageGenerator) fallback(ctx context.Context) (string, error) {
	if g.placeholderURL == "" {
		return "", fmt.Errorf("no placeholder URL configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.placeholderURL, nil)
	if err != nil {
		return "", fmt.Errorf("build placeholder request: %w", err)
	}
	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch placeholder: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("placeholder fetch failed: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPlaceholderBytes))
	if err != nil {
		return "", fmt.Errorf("read placeholder: %w", err)
	}
	p, err := g.media.Save(ctx, PlaceholderName, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("save placeholder: %w", err)
	}
	return p, nil
}
