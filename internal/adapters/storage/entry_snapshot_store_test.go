package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweethome-care/voice-entry-service/internal/domain/entities"
	apperrors "github.com/sweethome-care/voice-entry-service/pkg/errors"
)

func newTestEntry(id string) *entities.Entry {
	entry := entities.NewEntry(entities.AudioRef{
		Filename:     "123_voice.wav",
		OriginalName: "voice.wav",
		ContentType:  "audio/wav",
		LocalPath:    "uploads/123_voice.wav",
	}, true, time.Now().UTC().Truncate(time.Second))
	entry.ID = id
	return entry
}

func TestEntrySnapshotStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.json")

	store, err := NewEntrySnapshotStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	transcript := "hello"
	entry := newTestEntry("e_1")
	entry.Status = entities.EntryStatusReady
	entry.Transcript = &transcript
	entry.AI.Summary = []string{"a", "b"}

	require.NoError(t, store.Save(ctx, entry))
	require.NoError(t, store.Save(ctx, newTestEntry("e_2")))
	require.NoError(t, store.Close())

	// Reopen and verify every field survived the restart.
	reopened, err := NewEntrySnapshotStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, 2, reopened.Len())

	loaded, err := reopened.GetByID(ctx, "e_1")
	require.NoError(t, err)
	assert.Equal(t, entry.ID, loaded.ID)
	assert.Equal(t, entities.EntryStatusReady, loaded.Status)
	assert.Equal(t, "hello", *loaded.Transcript)
	assert.Equal(t, []string{"a", "b"}, loaded.AI.Summary)
	assert.Equal(t, entry.Audio, loaded.Audio)
	assert.True(t, loaded.Meta.DemoMode)
}

func TestEntrySnapshotStore_GetByID_NotFound(t *testing.T) {
	store, err := NewEntrySnapshotStore(filepath.Join(t.TempDir(), "entries.json"))
	require.NoError(t, err)
	defer store.Close()

	_, err = store.GetByID(context.Background(), "e_missing")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))
}

func TestEntrySnapshotStore_MalformedSnapshot_StartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	store, err := NewEntrySnapshotStore(path)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, 0, store.Len())

	// The store stays usable after recovery.
	require.NoError(t, store.Save(context.Background(), newTestEntry("e_1")))
	assert.Equal(t, 1, store.Len())
}

func TestEntrySnapshotStore_SnapshotIsAlwaysValidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.json")
	store, err := NewEntrySnapshotStore(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	for _, id := range []string{"e_1", "e_2", "e_3"} {
		require.NoError(t, store.Save(ctx, newTestEntry(id)))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var snapshot map[string]*entities.Entry
		require.NoError(t, json.Unmarshal(data, &snapshot))
	}
}

func TestEntrySnapshotStore_SaveStoresCopy(t *testing.T) {
	store, err := NewEntrySnapshotStore(filepath.Join(t.TempDir(), "entries.json"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	entry := newTestEntry("e_1")
	require.NoError(t, store.Save(ctx, entry))

	// Mutating the caller's entry after Save must not leak into the store.
	entry.Status = entities.EntryStatusFailed

	loaded, err := store.GetByID(ctx, "e_1")
	require.NoError(t, err)
	assert.Equal(t, entities.EntryStatusUploaded, loaded.Status)
}

func TestEntrySnapshotStore_ConcurrentSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.json")
	store, err := NewEntrySnapshotStore(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			entry := newTestEntry(entities.NewEntryID(time.Now()))
			assert.NoError(t, store.Save(ctx, entry))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, store.Len())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var snapshot map[string]*entities.Entry
	require.NoError(t, json.Unmarshal(data, &snapshot))
	assert.Len(t, snapshot, 20)
}

func TestEntrySnapshotStore_SecondInstanceRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.json")
	store, err := NewEntrySnapshotStore(path)
	require.NoError(t, err)
	defer store.Close()

	_, err = NewEntrySnapshotStore(path)
	assert.Error(t, err)
}
