package intent

import (
	"context"
	"fmt"

	"github.com/vnestate/chatbot-platform/internal/media"
	"github.com/vnestate/chatbot-platform/internal/model"
)

const imagePromptTemplate = `High quality, photorealistic rendering for a Vietnamese real-estate platform: %s`

// ImageHandler generates an image from the user's request.
type ImageHandler struct {
	generator media.ImageGenerator
}

// NewImageHandler creates the image generation handler.
func NewImageHandler(generator media.ImageGenerator) *ImageHandler {
	return &ImageHandler{generator: generator}
}

func (h *ImageHandler) Name() string { return "generate_image" }

func (h *ImageHandler) Keywords() []string {
	return []string{"vẽ", "tạo ảnh", "generate image", "hình ảnh", "bức ảnh"}
}

// Handle expands the message into an image prompt and returns the image
// URL as the media reference.
func (h *ImageHandler) Handle(ctx context.Context, message string, _ *model.Session) (*Response, error) {
	prompt := fmt.Sprintf(imagePromptTemplate, message)

	url, err := h.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: image: %v", ErrGenerationFailed, err)
	}

	return &Response{
		Text:     "Đây là hình ảnh bạn yêu cầu.",
		MediaRef: url,
	}, nil
}
