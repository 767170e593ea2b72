package repository

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heygpt/pkg/schema"
)

func newStore(t *testing.T) *HistoryStore {
	t.Helper()
	path := ConversationPath(filepath.Join(t.TempDir(), "conversations"), schema.DefaultConversation)
	require.NoError(t, EnsureHistoryFile(path))
	return NewHistoryStore(path)
}

func TestEnsureHistoryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "convo")
	require.NoError(t, EnsureHistoryFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "dialogue: ", string(data))

	// Existing content is left alone.
	require.NoError(t, os.WriteFile(path, []byte("dialogue: []\n"), 0o644))
	require.NoError(t, EnsureHistoryFile(path))
	data, _ = os.ReadFile(path)
	assert.Equal(t, "dialogue: []\n", string(data))
}

func TestHistoryStore_EmptyFile(t *testing.T) {
	store := newStore(t)

	segments, err := store.GetHistory(5)
	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestHistoryStore_SaveAndGet(t *testing.T) {
	store := newStore(t)
	first := time.Date(2023, 5, 14, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return first }

	require.NoError(t, store.SaveHistory([]schema.HistoryEntry{
		{Author: "user", Content: "Hello"},
		{Author: "assistant", Content: "Hi"},
	}))

	store.now = func() time.Time { return first.Add(time.Minute) }
	require.NoError(t, store.SaveHistory([]schema.HistoryEntry{
		{Author: "user", Content: "Again"},
		{Author: "assistant", Content: "Yes"},
	}))

	all, err := store.GetHistory(10)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Hello", all[0].Content)
	assert.Equal(t, "user", all[0].Role)
	assert.True(t, all[0].CreatedAt.Equal(first))
	assert.Equal(t, "Yes", all[3].Content)

	recent, err := store.GetHistory(3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, []string{"Hi", "Again", "Yes"}, []string{recent[0].Content, recent[1].Content, recent[2].Content})

	none, err := store.GetHistory(0)
	require.NoError(t, err)
	assert.Empty(t, none)

	relock := NewFileLock(store.Path()+".lock", "next")
	require.NoError(t, relock.Acquire(), "lock is free after save")
	require.NoError(t, relock.Release())
}

func TestHistoryStore_SaveCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh")
	store := NewHistoryStore(path)

	require.NoError(t, store.SaveHistory([]schema.HistoryEntry{{Author: "user", Content: "x"}}))

	segments, err := store.GetHistory(1)
	require.NoError(t, err)
	require.Len(t, segments, 1)
}

func TestHistoryStore_RejectsEmptyRole(t *testing.T) {
	store := newStore(t)

	err := store.SaveHistory([]schema.HistoryEntry{{Author: " ", Content: "x"}})
	require.Error(t, err)

	segments, err := store.GetHistory(5)
	require.NoError(t, err)
	assert.Empty(t, segments)
}

func TestHistoryStore_LockedByOther(t *testing.T) {
	store := newStore(t)

	other := NewFileLock(store.Path()+".lock", "other")
	require.NoError(t, other.Acquire())
	defer other.Release()

	err := store.SaveHistory([]schema.HistoryEntry{{Author: "user", Content: "x"}})
	var lockErr *LockError
	require.ErrorAs(t, err, &lockErr)
}

func TestHistoryStore_MissingFile(t *testing.T) {
	store := NewHistoryStore(filepath.Join(t.TempDir(), "absent"))
	_, err := store.GetHistory(1)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestHistoryStore_CorruptFile(t *testing.T) {
	store := newStore(t)
	require.NoError(t, os.WriteFile(store.Path(), []byte("dialogue: [unterminated"), 0o644))

	_, err := store.GetHistory(1)
	assert.Error(t, err)
}
