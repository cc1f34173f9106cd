// Package model defines data structures for the chatbot platform.
package model

import (
	"time"
)

// Session represents a persisted conversation between one user and the system.
type Session struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Title     string    `json:"title" bson:"title"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	Messages  []Message `json:"messages" bson:"messages"`
}

// SessionSummary is a session without its message history, used for listings.
type SessionSummary struct {
	ID           string    `json:"id" bson:"_id"`
	UserID       string    `json:"user_id" bson:"user_id"`
	Title        string    `json:"title" bson:"title"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
	MessageCount int       `json:"message_count" bson:"message_count"`
}

// Summary returns the summary view of a session.
func (s *Session) Summary() SessionSummary {
	return SessionSummary{
		ID:           s.ID,
		UserID:       s.UserID,
		Title:        s.Title,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
		MessageCount: len(s.Messages),
	}
}

// RenameSessionRequest is the request to rename a session.
type RenameSessionRequest struct {
	Title string `json:"title"`
}

// ListSessionsResponse is the response for listing a user's sessions.
type ListSessionsResponse struct {
	Sessions []SessionSummary `json:"sessions"`
	Total    int              `json:"total"`
}
