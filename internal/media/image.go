// Package media provides image generation and speech synthesis clients.
package media

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
)

// ImageGenerator produces an image from a prompt and returns a reference
// (URL) to it.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIImageGenerator generates images via the OpenAI Images API.
type OpenAIImageGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIImageGenerator creates an image generator. If model is empty,
// dall-e-3 is used.
func NewOpenAIImageGenerator(apiKey, model string) (*OpenAIImageGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if model == "" {
		model = openai.CreateImageModelDallE3
	}
	return &OpenAIImageGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// Generate requests one image and returns its URL.
func (g *OpenAIImageGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          g.model,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "", errors.New("image provider returned no data")
	}
	return resp.Data[0].URL, nil
}
