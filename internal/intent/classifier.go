package intent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vnestate/chatbot-platform/internal/llm"
	"github.com/vnestate/chatbot-platform/internal/model"
	"github.com/vnestate/chatbot-platform/pkg/logger"
	"github.com/vnestate/chatbot-platform/pkg/metrics"
)

const classifierSystemPrompt = `You are an intent classifier for a Vietnamese real-estate chatbot.
Classify the user's latest message into exactly one of the following intents: %s.
Respond with the intent name only, nothing else.`

// classifierHistoryWindow caps how much history the fallback prompt carries.
const classifierHistoryWindow = 5

// Classifier maps a user message to an intent name. It tries keyword
// matching first and falls back to the language model.
type Classifier struct {
	registry *Registry
	client   llm.Client
	model    string
	logger   *logger.Logger
}

// NewClassifier creates a classifier backed by the registry's handlers
// and the given language model client.
func NewClassifier(registry *Registry, client llm.Client, model string, log *logger.Logger) *Classifier {
	return &Classifier{
		registry: registry,
		client:   client,
		model:    model,
		logger:   log,
	}
}

// Classify returns the intent name for a message. History carries the
// session's prior messages and may be empty.
//
// Keyword matching runs over handlers in registration order and the
// first handler with a matching keyword wins. When no keyword matches,
// the language model is asked with the recent history as context; an
// answer that is not a registered intent name falls back to
// DefaultIntent. A transport failure returns ErrClassificationUnavailable.
func (c *Classifier) Classify(ctx context.Context, message string, history []model.Message) (string, error) {
	lowered := strings.ToLower(message)

	for _, h := range c.registry.Handlers() {
		for _, kw := range h.Keywords() {
			if strings.Contains(lowered, kw) {
				metrics.ClassificationsTotal.WithLabelValues(h.Name(), "keyword").Inc()
				return h.Name(), nil
			}
		}
	}

	name, err := c.classifyWithModel(ctx, message, history)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrClassificationUnavailable, err)
	}

	if _, resolveErr := c.registry.Resolve(name); resolveErr != nil {
		c.logger.Warn("classifier returned unregistered intent, using default",
			zap.String("intent", name),
		)
		metrics.ClassificationsTotal.WithLabelValues(DefaultIntent, "fallback").Inc()
		return DefaultIntent, nil
	}

	metrics.ClassificationsTotal.WithLabelValues(name, "llm").Inc()
	return name, nil
}

func (c *Classifier) classifyWithModel(ctx context.Context, message string, history []model.Message) (string, error) {
	names := c.registry.Names()
	system := fmt.Sprintf(classifierSystemPrompt, strings.Join(names, ", "))

	if len(history) > classifierHistoryWindow {
		history = history[len(history)-classifierHistoryWindow:]
	}
	messages := make([]llm.ChatMessage, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, llm.ChatMessage{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, llm.ChatMessage{Role: "user", Content: message})

	resp, err := c.client.Complete(ctx, &llm.CompletionRequest{
		Model:       c.model,
		System:      system,
		Messages:    messages,
		MaxTokens:   16,
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}

	return strings.ToLower(strings.TrimSpace(resp.Content)), nil
}
