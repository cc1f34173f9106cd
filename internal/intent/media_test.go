package intent_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnestate/chatbot-platform/internal/intent"
)

type fakeImageGenerator struct {
	url    string
	err    error
	prompt string
}

func (f *fakeImageGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakeSynthesizer struct {
	path string
	err  error
	text string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text string) (string, error) {
	f.text = text
	if f.err != nil {
		return "", f.err
	}
	return f.path, nil
}

type fakeFetcher struct {
	content string
	err     error
	url     string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (string, error) {
	f.url = rawURL
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

func TestImageHandlerReturnsMediaRef(t *testing.T) {
	gen := &fakeImageGenerator{url: "https://images.example.com/abc.png"}
	h := intent.NewImageHandler(gen)

	resp, err := h.Handle(context.Background(), "vẽ một căn biệt thự ven biển", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://images.example.com/abc.png", resp.MediaRef)
	assert.NotEmpty(t, resp.Text)
	assert.Contains(t, gen.prompt, "vẽ một căn biệt thự ven biển")
}

func TestImageHandlerWrapsGenerationFailure(t *testing.T) {
	h := intent.NewImageHandler(&fakeImageGenerator{err: errors.New("rate limited")})

	_, err := h.Handle(context.Background(), "vẽ một căn nhà", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, intent.ErrGenerationFailed)
}

func TestAudioHandlerSynthesizesMessageText(t *testing.T) {
	synth := &fakeSynthesizer{path: "data/audio_generations/out.mp3"}
	fetcher := &fakeFetcher{}
	h := intent.NewAudioHandler(synth, fetcher)

	resp, err := h.Handle(context.Background(), "đọc đoạn văn này giúp tôi", nil)
	require.NoError(t, err)
	assert.Equal(t, "data/audio_generations/out.mp3", resp.MediaRef)
	assert.Equal(t, "đọc đoạn văn này giúp tôi", synth.text)
	assert.Empty(t, fetcher.url, "no URL in message means no fetch")
}

func TestAudioHandlerFetchesLinkedPage(t *testing.T) {
	synth := &fakeSynthesizer{path: "data/audio_generations/out.mp3"}
	fetcher := &fakeFetcher{content: "Nội dung bài báo về thị trường bất động sản."}
	h := intent.NewAudioHandler(synth, fetcher)

	_, err := h.Handle(context.Background(), "đọc https://news.example.com/bai-bao cho tôi", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://news.example.com/bai-bao", fetcher.url)
	assert.Equal(t, "Nội dung bài báo về thị trường bất động sản.", synth.text)
}

func TestAudioHandlerEmptyPageContentFails(t *testing.T) {
	h := intent.NewAudioHandler(&fakeSynthesizer{}, &fakeFetcher{content: "   "})

	_, err := h.Handle(context.Background(), "đọc https://news.example.com/trong cho tôi", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, intent.ErrGenerationFailed)
}

func TestAudioHandlerTruncatesLongText(t *testing.T) {
	synth := &fakeSynthesizer{path: "out.mp3"}
	h := intent.NewAudioHandler(synth, &fakeFetcher{})

	long := make([]rune, 5000)
	for i := range long {
		long[i] = 'đ'
	}
	_, err := h.Handle(context.Background(), string(long), nil)
	require.NoError(t, err)
	assert.Equal(t, 3000, len([]rune(synth.text)))
}
