package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vnestate/chatbot-platform/internal/model"
)

// FileUserStore persists user accounts as one JSON document keyed by user id.
type FileUserStore struct {
	path string
	mu   sync.Mutex
}

// storedUser is the on-disk form of a user. model.User hides the password
// hash from API responses, so the file store keeps its own record type.
type storedUser struct {
	ID           string         `json:"id"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"password_hash"`
	Role         model.UserRole `json:"role"`
	Active       bool           `json:"active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func toStored(u *model.User) *storedUser {
	return &storedUser{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Active:       u.Active,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (su *storedUser) toModel() *model.User {
	return &model.User{
		ID:           su.ID,
		Username:     su.Username,
		Email:        su.Email,
		PasswordHash: su.PasswordHash,
		Role:         su.Role,
		Active:       su.Active,
		CreatedAt:    su.CreatedAt,
		UpdatedAt:    su.UpdatedAt,
	}
}

// NewFileUserStore creates a file-backed user store.
func NewFileUserStore(path string) (*FileUserStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileUserStore{path: path}, nil
}

func (s *FileUserStore) load() (map[string]*storedUser, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]*storedUser), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}

	users := make(map[string]*storedUser)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &users); err != nil {
			return nil, fmt.Errorf("failed to parse users file: %w", err)
		}
	}
	return users, nil
}

func (s *FileUserStore) save(users map[string]*storedUser) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal users: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write users file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace users file: %w", err)
	}
	return nil
}

// Create inserts a new user after checking username and email uniqueness.
func (s *FileUserStore) Create(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}

	for _, existing := range users {
		if strings.EqualFold(existing.Username, user.Username) {
			return ErrUsernameTaken
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return ErrEmailTaken
		}
	}

	users[user.ID] = toStored(user)
	return s.save(users)
}

// GetByUsername retrieves a user by username.
func (s *FileUserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, user := range users {
		if strings.EqualFold(user.Username, username) {
			return user.toModel(), nil
		}
	}
	return nil, ErrUserNotFound
}

// GetByID retrieves a user by id.
func (s *FileUserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	user, ok := users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user.toModel(), nil
}

// Save replaces an existing user record.
func (s *FileUserStore) Save(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := users[user.ID]; !ok {
		return ErrUserNotFound
	}

	users[user.ID] = toStored(user)
	return s.save(users)
}

// List returns all users ordered by creation time.
func (s *FileUserStore) List(ctx context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	list := make([]model.User, 0, len(users))
	for _, user := range users {
		list = append(list, *user.toModel())
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}
