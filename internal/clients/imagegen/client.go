// Package imagegen generates character portraits over the OpenAI images API
package imagegen

//go:generate mockgen -destination=mock/mock_client.go -package=imagegenmock github.com/dabidoe/character-foundry/internal/clients/imagegen Client

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	ooption "github.com/openai/openai-go/option"

	"github.com/dabidoe/character-foundry/internal/errors"
)

// Defaults
const (
	DefaultModel   = string(openai.ImageModelDallE3)
	DefaultTimeout = 120 * time.Second

	DefaultNegativePrompt = "blurry, low quality, distorted, ugly, deformed, bad anatomy, watermark, text, signature"
)

// GenerateInput describes one image
type GenerateInput struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
}

// GenerateOutput carries the decoded image bytes. URL is set instead when
// the provider only returns a link.
type GenerateOutput struct {
	Data          []byte
	URL           string
	RevisedPrompt string
	Size          string
}

// Client generates images
type Client interface {
	Generate(ctx context.Context, input *GenerateInput) (*GenerateOutput, error)
}

// Config for the OpenAI images client
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Validate checks required fields and fills defaults
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("api_key", c.APIKey, vb)

	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return vb.Build()
}

type client struct {
	client openai.Client
	model  string
}

// New creates an images client
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []ooption.RequestOption{
		ooption.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		ooption.WithMaxRetries(0),
		ooption.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, ooption.WithBaseURL(strings.TrimSpace(cfg.BaseURL)))
	}

	return &client{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

func (c *client) Generate(ctx context.Context, input *GenerateInput) (*GenerateOutput, error) {
	if input == nil || strings.TrimSpace(input.Prompt) == "" {
		return nil, errors.InvalidArgument("prompt is required")
	}

	size := sizeFor(input.Width, input.Height)
	params := openai.ImageGenerateParams{
		Prompt:         buildPrompt(input.Prompt, input.NegativePrompt),
		Model:          openai.ImageModel(c.model),
		N:              openai.Int(1),
		Size:           size,
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	}

	slog.DebugContext(ctx, "generating image", "model", c.model, "size", string(size))

	resp, err := c.client.Images.Generate(ctx, params)
	if err != nil {
		slog.ErrorContext(ctx, "image generation failed", "model", c.model, "error", err)
		return nil, errors.External(err, "failed to generate image")
	}
	if len(resp.Data) == 0 {
		return nil, errors.External(nil, "image provider returned no images")
	}

	img := resp.Data[0]
	out := &GenerateOutput{
		URL:           img.URL,
		RevisedPrompt: img.RevisedPrompt,
		Size:          string(size),
	}
	if img.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(img.B64JSON)
		if err != nil {
			return nil, errors.External(err, "image provider returned invalid data")
		}
		out.Data = data
	}
	if len(out.Data) == 0 && out.URL == "" {
		return nil, errors.External(nil, "image provider returned an empty image")
	}

	return out, nil
}

// buildPrompt folds the negative prompt into the text; the images API has
// no separate field for it
func buildPrompt(prompt, negative string) string {
	prompt = strings.TrimSpace(prompt)
	negative = strings.TrimSpace(negative)
	if negative == "" {
		return prompt
	}
	return prompt + "\n\nAvoid: " + negative
}

// sizeFor picks the closest supported size by orientation
func sizeFor(width, height int) openai.ImageGenerateParamsSize {
	switch {
	case width > height:
		return openai.ImageGenerateParamsSize1792x1024
	case height > width:
		return openai.ImageGenerateParamsSize1024x1792
	default:
		return openai.ImageGenerateParamsSize1024x1024
	}
}
