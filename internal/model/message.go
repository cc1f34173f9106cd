package model

import (
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents one turn entry in a session. Messages are immutable
// once appended.
type Message struct {
	Role      Role      `json:"role" bson:"role"`
	Content   string    `json:"content" bson:"content"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	MediaRef  string    `json:"media_ref,omitempty" bson:"media_ref,omitempty"`
}

// ChatRequest is the request to process one conversation turn.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse is the response after processing a turn.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Intent    string `json:"intent"`
	Reply     string `json:"reply"`
	MediaRef  string `json:"media_ref,omitempty"`
}
