package intent

import (
	"context"
	"fmt"

	"github.com/vnestate/chatbot-platform/internal/llm"
	"github.com/vnestate/chatbot-platform/internal/model"
)

const (
	// contextWindow is how many trailing history messages the chat
	// handler replays to the model.
	contextWindow = 5

	// contextMessageLimit caps each replayed message, in runes.
	contextMessageLimit = 200
)

const generalSystemPrompt = `Bạn là trợ lý ảo thân thiện của một nền tảng bất động sản Việt Nam.
Trả lời ngắn gọn, lịch sự và hữu ích bằng tiếng Việt, trừ khi người dùng dùng ngôn ngữ khác.`

// GeneralChatHandler answers free-form conversation with the language model.
type GeneralChatHandler struct {
	client llm.Client
	model  string
}

// NewGeneralChatHandler creates the default conversational handler.
func NewGeneralChatHandler(client llm.Client, model string) *GeneralChatHandler {
	return &GeneralChatHandler{client: client, model: model}
}

func (h *GeneralChatHandler) Name() string { return "general_chat" }

func (h *GeneralChatHandler) Keywords() []string {
	return []string{"chào", "hello", "xin chào", "giới thiệu"}
}

// Handle replays the recent history and the new message to the model.
func (h *GeneralChatHandler) Handle(ctx context.Context, message string, session *model.Session) (*Response, error) {
	messages := buildContextWindow(session, contextWindow)
	messages = append(messages, llm.ChatMessage{Role: "user", Content: message})

	resp, err := h.client.Complete(ctx, &llm.CompletionRequest{
		Model:       h.model,
		System:      generalSystemPrompt,
		Messages:    messages,
		MaxTokens:   1024,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	return &Response{Text: resp.Content}, nil
}

// buildContextWindow converts the tail of the session history into LLM
// messages, truncating each to contextMessageLimit runes.
func buildContextWindow(session *model.Session, window int) []llm.ChatMessage {
	if session == nil || len(session.Messages) == 0 {
		return nil
	}

	history := session.Messages
	if len(history) > window {
		history = history[len(history)-window:]
	}

	out := make([]llm.ChatMessage, 0, len(history))
	for _, m := range history {
		out = append(out, llm.ChatMessage{
			Role:    string(m.Role),
			Content: truncateRunes(m.Content, contextMessageLimit),
		})
	}
	return out
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
