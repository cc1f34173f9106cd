package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
)

// SpeechSynthesizer converts text to speech and returns a reference
// (local file path) to the produced audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

// OpenAISpeechSynthesizer synthesizes speech via the OpenAI Speech API
// and writes mp3 files into a target directory.
type OpenAISpeechSynthesizer struct {
	client *openai.Client
	voice  openai.SpeechVoice
	dir    string
}

// NewOpenAISpeechSynthesizer creates a speech synthesizer. If voice is
// empty, "nova" is used.
func NewOpenAISpeechSynthesizer(apiKey, voice, dir string) (*OpenAISpeechSynthesizer, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if voice == "" {
		voice = string(openai.VoiceNova)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}
	return &OpenAISpeechSynthesizer{
		client: openai.NewClient(apiKey),
		voice:  openai.SpeechVoice(voice),
		dir:    dir,
	}, nil
}

// Synthesize converts text to speech and returns the mp3 file path.
func (s *OpenAISpeechSynthesizer) Synthesize(ctx context.Context, text string) (string, error) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.TTSModel1,
		Input: text,
		Voice: s.voice,
	})
	if err != nil {
		return "", err
	}
	defer resp.Close()

	path := filepath.Join(s.dir, uuid.New().String()+".mp3")
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create audio file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	return path, nil
}
