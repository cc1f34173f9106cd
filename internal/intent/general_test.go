package intent_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnestate/chatbot-platform/internal/intent"
	"github.com/vnestate/chatbot-platform/internal/llm"
	"github.com/vnestate/chatbot-platform/internal/model"
)

// capturingLLM records the request it receives.
type capturingLLM struct {
	content string
	req     *llm.CompletionRequest
}

func (c *capturingLLM) Complete(_ context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	c.req = req
	return &llm.CompletionResponse{Content: c.content}, nil
}

func (c *capturingLLM) Name() string { return "capturing" }

func TestGeneralChatHandlerReplaysRecentHistory(t *testing.T) {
	client := &capturingLLM{content: "Chào bạn, tôi có thể giúp gì?"}
	h := intent.NewGeneralChatHandler(client, "gpt-4o")

	session := &model.Session{ID: "s1", UserID: "u1"}
	for i := 0; i < 8; i++ {
		session.Messages = append(session.Messages, model.Message{
			Role:      model.RoleUser,
			Content:   fmt.Sprintf("tin nhắn số %d", i),
			Timestamp: time.Now().UTC(),
		})
	}

	resp, err := h.Handle(context.Background(), "chào bạn", session)
	require.NoError(t, err)
	assert.Equal(t, "Chào bạn, tôi có thể giúp gì?", resp.Text)

	require.NotNil(t, client.req)
	// last 5 history messages plus the new one
	require.Len(t, client.req.Messages, 6)
	assert.Equal(t, "tin nhắn số 3", client.req.Messages[0].Content)
	assert.Equal(t, "chào bạn", client.req.Messages[5].Content)
}

func TestGeneralChatHandlerTruncatesLongHistoryMessages(t *testing.T) {
	client := &capturingLLM{content: "ok"}
	h := intent.NewGeneralChatHandler(client, "gpt-4o")

	session := &model.Session{
		ID:     "s1",
		UserID: "u1",
		Messages: []model.Message{
			{Role: model.RoleAssistant, Content: strings.Repeat("a", 500)},
		},
	}

	_, err := h.Handle(context.Background(), "tiếp tục đi", session)
	require.NoError(t, err)

	require.Len(t, client.req.Messages, 2)
	assert.Equal(t, 203, len([]rune(client.req.Messages[0].Content)), "200 runes plus ellipsis")
}
