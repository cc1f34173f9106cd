package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/vnestate/chatbot-platform/internal/llm"
	"github.com/vnestate/chatbot-platform/internal/model"
	"github.com/vnestate/chatbot-platform/internal/rag"
)

const estateSystemPrompt = `Bạn là chuyên viên tư vấn bất động sản. Chỉ trả lời dựa trên
các tin đăng được cung cấp dưới đây. Không được bịa đặt thông tin không có trong dữ liệu.
Nếu dữ liệu không đủ để trả lời, hãy nói rõ điều đó.

Tin đăng:
%s`

// estateNoDataReply is returned verbatim when retrieval finds nothing,
// without consulting the language model.
const estateNoDataReply = "Xin lỗi, hiện tại tôi không tìm thấy tin đăng bất động sản nào phù hợp với yêu cầu của bạn. Bạn có thể thử mô tả lại nhu cầu chi tiết hơn."

// EstateHandler answers real-estate questions grounded on retrieved listings.
type EstateHandler struct {
	retriever rag.Retriever
	client    llm.Client
	model     string
	topK      int
}

// NewEstateHandler creates the retrieval-augmented estate handler.
func NewEstateHandler(retriever rag.Retriever, client llm.Client, model string, topK int) *EstateHandler {
	if topK <= 0 {
		topK = 5
	}
	return &EstateHandler{
		retriever: retriever,
		client:    client,
		model:     model,
		topK:      topK,
	}
}

func (h *EstateHandler) Name() string { return "estate_query" }

func (h *EstateHandler) Keywords() []string {
	return []string{"nhà", "đất", "bất động sản", "mua nhà", "bán nhà", "cho thuê"}
}

// Handle retrieves matching listings and answers grounded on them. When
// nothing is retrieved the fixed no-data reply is returned and the model
// is not called.
func (h *EstateHandler) Handle(ctx context.Context, message string, _ *model.Session) (*Response, error) {
	records, err := h.retriever.Search(ctx, message, h.topK)
	if err != nil {
		return nil, fmt.Errorf("listing retrieval failed: %w", err)
	}

	if len(records) == 0 {
		return &Response{Text: estateNoDataReply}, nil
	}

	var sb strings.Builder
	for i, r := range records {
		fmt.Fprintf(&sb, "[%d] %s\n", i+1, strings.TrimSpace(r.Content))
	}

	resp, err := h.client.Complete(ctx, &llm.CompletionRequest{
		Model:       h.model,
		System:      fmt.Sprintf(estateSystemPrompt, sb.String()),
		Messages:    []llm.ChatMessage{{Role: "user", Content: message}},
		MaxTokens:   1024,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("estate completion failed: %w", err)
	}

	return &Response{Text: resp.Content}, nil
}
