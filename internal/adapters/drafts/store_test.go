package drafts

import (
	"context"
	"os"
	"testing"

	"github.com/bnema/inline-edit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRejectsInvalidIDs(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	testCases := []struct {
		name string
		id   domain.DocumentID
	}{
		{name: "empty", id: ""},
		{name: "traversal", id: "../escape"},
		{name: "nested", id: "a/b"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := store.Put(context.Background(), tc.id, "body")
			require.ErrorIs(t, err, domain.ErrInvalidDocumentID)
		})
	}
}

func TestStorePutGetRoundTripAndPermissions(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	require.NoError(t, store.Put(context.Background(), "notes", "unsaved\nedits"))

	got, ok, err := store.Get(context.Background(), "notes")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "unsaved\nedits", got)

	path, err := store.Path("notes")
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(draftFileMode), info.Mode().Perm())
}

func TestStoreGetMissingDraft(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())

	got, ok, err := store.Get(context.Background(), "notes")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestStoreDeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	require.NoError(t, store.Put(context.Background(), "notes", "x"))

	require.NoError(t, store.Delete(context.Background(), "notes"))
	require.NoError(t, store.Delete(context.Background(), "notes"))

	_, ok, err := store.Get(context.Background(), "notes")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreCanceledContext(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, store.Put(ctx, "notes", "x"), context.Canceled)
	_, _, err := store.Get(ctx, "notes")
	require.ErrorIs(t, err, context.Canceled)
}
