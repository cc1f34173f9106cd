package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vnestate/chatbot-platform/internal/model"
	"github.com/vnestate/chatbot-platform/pkg/metrics"
)

// FileSessionStore persists sessions as one JSON document keyed by session
// id. Appends are serialized by a process-wide mutex and the file is
// replaced atomically via temp file + rename, so a crash never leaves a
// half-written collection.
type FileSessionStore struct {
	path string
	mu   sync.Mutex
}

// NewFileSessionStore creates a file-backed session store. The parent
// directory is created if missing.
func NewFileSessionStore(path string) (*FileSessionStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileSessionStore{path: path}, nil
}

func (s *FileSessionStore) load() (map[string]*model.Session, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]*model.Session), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions file: %w", err)
	}

	sessions := make(map[string]*model.Session)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &sessions); err != nil {
			return nil, fmt.Errorf("failed to parse sessions file: %w", err)
		}
	}
	return sessions, nil
}

func (s *FileSessionStore) save(sessions map[string]*model.Session) error {
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sessions: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write sessions file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace sessions file: %w", err)
	}
	return nil
}

// Create creates a new session for a user.
func (s *FileSessionStore) Create(ctx context.Context, userID, title string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.load()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess := &model.Session{
		ID:        uuid.Must(uuid.NewV7()).String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []model.Message{},
	}

	sessions[sess.ID] = sess
	if err := s.save(sessions); err != nil {
		return nil, err
	}
	metrics.SessionsTotal.WithLabelValues("file").Inc()
	return sess, nil
}

// Get retrieves a session by id.
func (s *FileSessionStore) Get(ctx context.Context, sessionID string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.load()
	if err != nil {
		return nil, err
	}

	sess, ok := sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// AppendMessages appends messages to a session atomically.
func (s *FileSessionStore) AppendMessages(ctx context.Context, sessionID string, msgs ...model.Message) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.load()
	if err != nil {
		return nil, err
	}

	sess, ok := sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	sess.Messages = append(sess.Messages, msgs...)
	sess.UpdatedAt = time.Now().UTC()

	if err := s.save(sessions); err != nil {
		return nil, err
	}
	return sess, nil
}

// ListForUser returns session summaries for a user, most recently updated first.
func (s *FileSessionStore) ListForUser(ctx context.Context, userID string) ([]model.SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.load()
	if err != nil {
		return nil, err
	}

	summaries := make([]model.SessionSummary, 0)
	for _, sess := range sessions {
		if sess.UserID == userID {
			summaries = append(summaries, sess.Summary())
		}
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// Rename updates a session's title.
func (s *FileSessionStore) Rename(ctx context.Context, sessionID, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.load()
	if err != nil {
		return err
	}

	sess, ok := sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}

	sess.Title = title
	sess.UpdatedAt = time.Now().UTC()
	return s.save(sessions)
}

// Delete removes a session.
func (s *FileSessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}

	delete(sessions, sessionID)
	return s.save(sessions)
}
