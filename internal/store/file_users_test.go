package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnestate/chatbot-platform/internal/model"
	"github.com/vnestate/chatbot-platform/internal/store"
)

func newUserStore(t *testing.T) *store.FileUserStore {
	t.Helper()
	s, err := store.NewFileUserStore(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	return s
}

func testUser(id, username, email string) *model.User {
	now := time.Now().UTC()
	return &model.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$10$fakehash",
		Role:         model.RoleRegularUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestFileUserStoreUniqueness(t *testing.T) {
	ctx := context.Background()
	s := newUserStore(t)

	require.NoError(t, s.Create(ctx, testUser("u1", "alice", "alice@example.com")))

	err := s.Create(ctx, testUser("u2", "ALICE", "other@example.com"))
	assert.ErrorIs(t, err, store.ErrUsernameTaken)

	err = s.Create(ctx, testUser("u3", "bob", "Alice@Example.com"))
	assert.ErrorIs(t, err, store.ErrEmailTaken)
}

func TestFileUserStoreLookup(t *testing.T) {
	ctx := context.Background()
	s := newUserStore(t)

	require.NoError(t, s.Create(ctx, testUser("u1", "alice", "alice@example.com")))

	byName, err := s.GetByUsername(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", byName.ID)

	byID, err := s.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = s.GetByUsername(ctx, "carol")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestFileUserStoreSave(t *testing.T) {
	ctx := context.Background()
	s := newUserStore(t)

	user := testUser("u1", "alice", "alice@example.com")
	require.NoError(t, s.Create(ctx, user))

	user.Active = false
	user.Role = model.RoleAdmin
	require.NoError(t, s.Save(ctx, user))

	got, err := s.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, got.Active)
	assert.Equal(t, model.RoleAdmin, got.Role)

	assert.ErrorIs(t, s.Save(ctx, testUser("missing", "x", "x@example.com")), store.ErrUserNotFound)
}

func TestFileUserStoreListOrdersByCreation(t *testing.T) {
	ctx := context.Background()
	s := newUserStore(t)

	older := testUser("u1", "alice", "alice@example.com")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, s.Create(ctx, older))
	require.NoError(t, s.Create(ctx, testUser("u2", "bob", "bob@example.com")))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "u1", list[0].ID)
	assert.Equal(t, "u2", list[1].ID)
}
