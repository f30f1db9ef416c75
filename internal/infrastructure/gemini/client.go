// Package gemini adapts the Google GenAI SDK to the text and image model
// interfaces used by the AI generators.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/classifieds-api/internal/domain"
	"google.golang.org/genai"
)

// Client calls a Gemini text model and an Imagen image model with one API key.
type Client struct {
	client       *genai.Client
	contentModel string
	imageModel   string
}

// Options configures a Client. BaseURL is only set in tests.
type Options struct {
	APIKey       string
	ContentModel string
	ImageModel   string
	BaseURL      string
}

// New creates a Gemini client.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if opts.ContentModel == "" {
		opts.ContentModel = "gemini-2.5-flash"
	}
	if opts.ImageModel == "" {
		opts.ImageModel = "imagen-3.0-generate-002"
	}
	cc := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Client{client: client, contentModel: opts.ContentModel, imageModel: opts.ImageModel}, nil
}

// GenerateText sends prompt to the content model and returns the concatenated text parts.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.contentModel, genai.Text(prompt), nil)
	if err != nil {
		return "", translate("generate content", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("generate content: empty response")
	}
	return text, nil
}

// GenerateImage asks the image model for one square PNG and returns its bytes.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := c.client.Models.GenerateImages(ctx, c.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    "1:1",
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return nil, translate("generate image", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, fmt.Errorf("generate image: no image returned")
	}
	img := resp.GeneratedImages[0]
	if len(img.Image.ImageBytes) == 0 {
		if img.RAIFilteredReason != "" {
			return nil, fmt.Errorf("generate image: filtered: %s", img.RAIFilteredReason)
		}
		return nil, fmt.Errorf("generate image: empty image")
	}
	return img.Image.ImageBytes, nil
}

// translate maps GenAI API errors onto domain sentinels so callers never see SDK types.
func translate(op string, err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var p *genai.APIError
		if !errors.As(err, &p) || p == nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		apiErr = *p
	}
	msg := strings.ToLower(apiErr.Message)
	switch {
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden,
		apiErr.Status == "PERMISSION_DENIED",
		strings.Contains(msg, "billing"), strings.Contains(msg, "api key"):
		return fmt.Errorf("%s: %d %s: %w", op, apiErr.Code, apiErr.Message, domain.ErrUpstreamConfig)
	case apiErr.Code == http.StatusServiceUnavailable,
		apiErr.Status == "UNAVAILABLE",
		strings.Contains(msg, "overloaded"):
		return fmt.Errorf("%s: %d %s: %w", op, apiErr.Code, apiErr.Message, domain.ErrUpstreamUnavailable)
	}
	return fmt.Errorf("%s: %d %s", op, apiErr.Code, apiErr.Message)
}
