package intent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/vnestate/chatbot-platform/internal/media"
	"github.com/vnestate/chatbot-platform/internal/model"
	"github.com/vnestate/chatbot-platform/internal/scrape"
)

// maxSpeechChars caps the text sent to speech synthesis.
const maxSpeechChars = 3000

var urlPattern = regexp.MustCompile(`https?://\S+`)

// AudioHandler converts text, or the content of a linked web page, to speech.
type AudioHandler struct {
	synthesizer media.SpeechSynthesizer
	fetcher     scrape.Fetcher
}

// NewAudioHandler creates the audio generation handler.
func NewAudioHandler(synthesizer media.SpeechSynthesizer, fetcher scrape.Fetcher) *AudioHandler {
	return &AudioHandler{synthesizer: synthesizer, fetcher: fetcher}
}

func (h *AudioHandler) Name() string { return "generate_audio" }

func (h *AudioHandler) Keywords() []string {
	return []string{"đọc", "phát", "audio", "âm thanh", "podcast"}
}

// Handle synthesizes speech for the message. If the message contains a
// URL, the page's readable content is used as the source text instead.
func (h *AudioHandler) Handle(ctx context.Context, message string, _ *model.Session) (*Response, error) {
	text := message

	if link := urlPattern.FindString(message); link != "" {
		content, err := h.fetcher.Fetch(ctx, link)
		if err != nil {
			return nil, fmt.Errorf("%w: fetch %s: %v", ErrGenerationFailed, link, err)
		}
		text = strings.TrimSpace(content)
		if text == "" {
			return nil, fmt.Errorf("%w: no readable content at %s", ErrGenerationFailed, link)
		}
	}

	if runes := []rune(text); len(runes) > maxSpeechChars {
		text = string(runes[:maxSpeechChars])
	}

	path, err := h.synthesizer.Synthesize(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: speech: %v", ErrGenerationFailed, err)
	}

	return &Response{
		Text:     "Đây là bản âm thanh bạn yêu cầu.",
		MediaRef: path,
	}, nil
}
