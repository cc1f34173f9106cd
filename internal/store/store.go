// Package store provides session and user persistence with interchangeable
// file and MongoDB backends. The backend is selected once at startup; the
// file backend is the always-available fallback.
package store

import (
	"context"

	"github.com/vnestate/chatbot-platform/internal/model"
)

// SessionStore persists conversation sessions. AppendMessages must be atomic
// with respect to other appends on the same session id.
type SessionStore interface {
	// Create creates a new session for a user.
	Create(ctx context.Context, userID, title string) (*model.Session, error)

	// Get retrieves a session by id. Returns ErrSessionNotFound if absent.
	Get(ctx context.Context, sessionID string) (*model.Session, error)

	// AppendMessages appends messages to a session in one atomic operation
	// and refreshes updated_at. Returns the updated session.
	AppendMessages(ctx context.Context, sessionID string, msgs ...model.Message) (*model.Session, error)

	// ListForUser returns session summaries for a user, most recently
	// updated first.
	ListForUser(ctx context.Context, userID string) ([]model.SessionSummary, error)

	// Rename updates a session's title. Idempotent.
	Rename(ctx context.Context, sessionID, title string) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error
}

// UserStore persists user accounts. Accounts are soft-disabled via the
// Active flag rather than deleted.
type UserStore interface {
	// Create inserts a new user. Username and email must be unique.
	Create(ctx context.Context, user *model.User) error

	// GetByUsername retrieves a user by username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)

	// GetByID retrieves a user by id.
	GetByID(ctx context.Context, id string) (*model.User, error)

	// Save replaces an existing user record.
	Save(ctx context.Context, user *model.User) error

	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]model.User, error)
}
