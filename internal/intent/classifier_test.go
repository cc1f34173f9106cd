package intent_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnestate/chatbot-platform/internal/intent"
	"github.com/vnestate/chatbot-platform/internal/llm"
	"github.com/vnestate/chatbot-platform/internal/model"
	"github.com/vnestate/chatbot-platform/pkg/logger"
)

// fakeLLM returns a canned completion or error.
type fakeLLM struct {
	content string
	err     error
	called  bool
}

func (f *fakeLLM) Complete(_ context.Context, _ *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.called = true
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.content}, nil
}

func (f *fakeLLM) Name() string { return "fake" }

func newTestRegistry(t *testing.T) *intent.Registry {
	t.Helper()
	r := intent.NewRegistry()
	handlers := []intent.Handler{
		&fakeHandler{name: "general_chat", keywords: []string{"chào", "hello", "xin chào", "giới thiệu"}},
		&fakeHandler{name: "generate_image", keywords: []string{"vẽ", "tạo ảnh", "generate image", "hình ảnh", "bức ảnh"}},
		&fakeHandler{name: "generate_audio", keywords: []string{"đọc", "phát", "audio", "âm thanh", "podcast"}},
		&fakeHandler{name: "estate_query", keywords: []string{"nhà", "đất", "bất động sản", "mua nhà", "bán nhà", "cho thuê"}},
	}
	for _, h := range handlers {
		require.NoError(t, r.Register(h))
	}
	return r
}

func TestClassifyByKeyword(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{name: "greeting", message: "chào bạn", want: "general_chat"},
		{name: "image request", message: "vẽ cho tôi một căn nhà", want: "generate_image"},
		{name: "audio request", message: "đọc bài này cho tôi nghe", want: "generate_audio"},
		{name: "estate query", message: "tôi muốn mua nhà ở quận 7", want: "estate_query"},
		{name: "case insensitive", message: "HELLO there", want: "general_chat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeLLM{}
			c := intent.NewClassifier(newTestRegistry(t), model, "gpt-4o", logger.NewNop())

			got, err := c.Classify(context.Background(), tt.message, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.False(t, model.called, "keyword match must not call the model")
		})
	}
}

// "vẽ cho tôi một căn nhà" contains keywords of both generate_image and
// estate_query; the earlier registration wins.
func TestClassifyKeywordPriorityFollowsRegistrationOrder(t *testing.T) {
	c := intent.NewClassifier(newTestRegistry(t), &fakeLLM{}, "gpt-4o", logger.NewNop())

	got, err := c.Classify(context.Background(), "vẽ cho tôi một căn nhà", nil)
	require.NoError(t, err)
	assert.Equal(t, "generate_image", got)
}

func TestClassifyFallsBackToModel(t *testing.T) {
	model := &fakeLLM{content: "estate_query"}
	c := intent.NewClassifier(newTestRegistry(t), model, "gpt-4o", logger.NewNop())

	got, err := c.Classify(context.Background(), "so sánh giá khu vực Thủ Đức và Bình Thạnh", nil)
	require.NoError(t, err)
	assert.Equal(t, "estate_query", got)
	assert.True(t, model.called)
}

func TestClassifyUnrecognizedModelAnswerUsesDefault(t *testing.T) {
	model := &fakeLLM{content: "book_flight"}
	c := intent.NewClassifier(newTestRegistry(t), model, "gpt-4o", logger.NewNop())

	got, err := c.Classify(context.Background(), "một câu hỏi không rõ ràng", nil)
	require.NoError(t, err)
	assert.Equal(t, intent.DefaultIntent, got)
}

func TestClassifyFallbackCarriesHistory(t *testing.T) {
	client := &capturingLLM{content: "estate_query"}
	c := intent.NewClassifier(newTestRegistry(t), client, "gpt-4o", logger.NewNop())

	history := []model.Message{
		{Role: model.RoleUser, Content: "tôi đang tìm chỗ ở gần trường học"},
		{Role: model.RoleAssistant, Content: "Bạn quan tâm khu vực nào?"},
	}
	got, err := c.Classify(context.Background(), "khu Thảo Điền thì sao", history)
	require.NoError(t, err)
	assert.Equal(t, "estate_query", got)

	require.NotNil(t, client.req)
	require.Len(t, client.req.Messages, 3)
	assert.Equal(t, "khu Thảo Điền thì sao", client.req.Messages[2].Content)
}

func TestClassifyModelFailureReturnsUnavailable(t *testing.T) {
	model := &fakeLLM{err: errors.New("connection refused")}
	c := intent.NewClassifier(newTestRegistry(t), model, "gpt-4o", logger.NewNop())

	_, err := c.Classify(context.Background(), "một câu hỏi không rõ ràng", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, intent.ErrClassificationUnavailable)
}
