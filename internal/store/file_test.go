package store_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnestate/chatbot-platform/internal/model"
	"github.com/vnestate/chatbot-platform/internal/store"
	"github.com/vnestate/chatbot-platform/pkg/metrics"
)

func newSessionStore(t *testing.T) *store.FileSessionStore {
	t.Helper()
	s, err := store.NewFileSessionStore(filepath.Join(t.TempDir(), "sessions.json"))
	require.NoError(t, err)
	return s
}

func TestFileSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newSessionStore(t)

	created, err := s.Create(ctx, "user-1", "Tư vấn mua nhà")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "user-1", created.UserID)
	assert.Equal(t, "Tư vấn mua nhà", created.Title)
	assert.Empty(t, created.Messages)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Title, got.Title)
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt), "timestamps must round-trip losslessly")
	assert.True(t, got.UpdatedAt.Equal(created.UpdatedAt))
}

func TestFileSessionStoreCreateCountsSessions(t *testing.T) {
	ctx := context.Background()
	s := newSessionStore(t)

	before := testutil.ToFloat64(metrics.SessionsTotal.WithLabelValues("file"))

	_, err := s.Create(ctx, "user-1", "first")
	require.NoError(t, err)
	_, err = s.Create(ctx, "user-1", "second")
	require.NoError(t, err)

	after := testutil.ToFloat64(metrics.SessionsTotal.WithLabelValues("file"))
	assert.Equal(t, before+2, after)
}

func TestFileSessionStoreGetMissing(t *testing.T) {
	s := newSessionStore(t)

	_, err := s.Get(context.Background(), "d1a2b3c4-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestFileSessionStoreAppendMessages(t *testing.T) {
	ctx := context.Background()
	s := newSessionStore(t)

	created, err := s.Create(ctx, "user-1", "chào")
	require.NoError(t, err)

	before := created.UpdatedAt
	time.Sleep(10 * time.Millisecond)

	now := time.Now().UTC()
	updated, err := s.AppendMessages(ctx, created.ID,
		model.Message{Role: model.RoleUser, Content: "chào bạn", Timestamp: now},
		model.Message{Role: model.RoleAssistant, Content: "Chào bạn!", Timestamp: now},
	)
	require.NoError(t, err)
	require.Len(t, updated.Messages, 2)
	assert.Equal(t, model.RoleUser, updated.Messages[0].Role)
	assert.Equal(t, model.RoleAssistant, updated.Messages[1].Role)
	assert.True(t, updated.UpdatedAt.After(before), "append must refresh updated_at")

	_, err = s.AppendMessages(ctx, "missing-id", model.Message{Role: model.RoleUser, Content: "x"})
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestFileSessionStoreConcurrentAppendsLoseNothing(t *testing.T) {
	ctx := context.Background()
	s := newSessionStore(t)

	created, err := s.Create(ctx, "user-1", "concurrent")
	require.NoError(t, err)

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			defer wg.Done()
			now := time.Now().UTC()
			_, err := s.AppendMessages(ctx, created.ID,
				model.Message{Role: model.RoleUser, Content: fmt.Sprintf("câu hỏi %d", n), Timestamp: now},
				model.Message{Role: model.RoleAssistant, Content: fmt.Sprintf("trả lời %d", n), Timestamp: now},
			)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, writers*2, "no append may be lost")

	// each writer's pair must survive intact and adjacent, since the
	// whole multi-message append is one atomic operation
	seen := make(map[string]bool, writers)
	for i, m := range got.Messages {
		if m.Role != model.RoleUser {
			continue
		}
		seen[m.Content] = true
		var n int
		_, err := fmt.Sscanf(m.Content, "câu hỏi %d", &n)
		require.NoError(t, err)
		require.Less(t, i+1, len(got.Messages))
		assert.Equal(t, fmt.Sprintf("trả lời %d", n), got.Messages[i+1].Content)
	}
	for i := 0; i < writers; i++ {
		assert.True(t, seen[fmt.Sprintf("câu hỏi %d", i)], "missing append from writer %d", i)
	}

	assert.False(t, got.UpdatedAt.Before(created.UpdatedAt), "updated_at must never move backwards")
}

func TestFileSessionStoreListForUser(t *testing.T) {
	ctx := context.Background()
	s := newSessionStore(t)

	first, err := s.Create(ctx, "user-1", "first")
	require.NoError(t, err)
	_, err = s.Create(ctx, "user-2", "other user")
	require.NoError(t, err)
	second, err := s.Create(ctx, "user-1", "second")
	require.NoError(t, err)

	// touch the first session so it becomes most recent
	time.Sleep(10 * time.Millisecond)
	_, err = s.AppendMessages(ctx, first.ID, model.Message{Role: model.RoleUser, Content: "hi"})
	require.NoError(t, err)

	summaries, err := s.ListForUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, first.ID, summaries[0].ID)
	assert.Equal(t, second.ID, summaries[1].ID)
	assert.Equal(t, 1, summaries[0].MessageCount)
}

func TestFileSessionStoreRenameIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newSessionStore(t)

	created, err := s.Create(ctx, "user-1", "old title")
	require.NoError(t, err)

	require.NoError(t, s.Rename(ctx, created.ID, "new title"))
	require.NoError(t, s.Rename(ctx, created.ID, "new title"))

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "new title", got.Title)

	assert.ErrorIs(t, s.Rename(ctx, "missing", "x"), store.ErrSessionNotFound)
}

func TestFileSessionStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := newSessionStore(t)

	created, err := s.Create(ctx, "user-1", "to delete")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, created.ID))

	_, err = s.Get(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
	assert.ErrorIs(t, s.Delete(ctx, created.ID), store.ErrSessionNotFound)
}
