// Package intent classifies user messages and dispatches them to handlers.
package intent

import (
	"context"

	"github.com/vnestate/chatbot-platform/internal/model"
)

// DefaultIntent is used when classification cannot produce a confident answer.
const DefaultIntent = "general_chat"

// Response is the result of handling a single user message.
type Response struct {
	// Text is the assistant reply shown to the user.
	Text string

	// MediaRef points at generated media (image URL, audio file path).
	// Empty for text-only replies.
	MediaRef string
}

// Handler processes messages that were classified with its intent.
type Handler interface {
	// Name returns the intent name this handler serves.
	Name() string

	// Keywords returns the substrings that route a message to this
	// handler without consulting the language model. Matching is
	// case-insensitive.
	Keywords() []string

	// Handle produces a reply for the message. The session carries the
	// conversation history accumulated before this turn.
	Handle(ctx context.Context, message string, session *model.Session) (*Response, error)
}
