package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"

	"github.com/sweethome-care/voice-entry-service/internal/domain/entities"
	apperrors "github.com/sweethome-care/voice-entry-service/pkg/errors"
)

// EntrySnapshotStore persists entries as one JSON snapshot file. Every
// mutation rewrites the complete snapshot before returning; a temp-file plus
// rename keeps a crash mid-write from truncating the previous snapshot.
type EntrySnapshotStore struct {
	path     string
	fileLock *flock.Flock

	mu      sync.RWMutex
	entries map[string]*entities.Entry
}

// NewEntrySnapshotStore opens the snapshot at path, creating parent
// directories as needed. An unreadable or malformed snapshot is logged and
// treated as an empty store. The store holds an exclusive lock file so a
// second process cannot interleave snapshot writes.
func NewEntrySnapshotStore(path string) (*EntrySnapshotStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	fileLock := flock.New(path + ".lock")
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire snapshot lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("snapshot %s is locked by another process", path)
	}

	store := &EntrySnapshotStore{
		path:     path,
		fileLock: fileLock,
		entries:  make(map[string]*entities.Entry),
	}
	store.load()
	return store, nil
}

// load reads the snapshot into memory. Recovery is lossy but available: any
// read or decode failure leaves the store empty instead of refusing to start.
func (s *EntrySnapshotStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", s.path).Msg("snapshot unreadable, starting with empty store")
		}
		return
	}

	var entries map[string]*entities.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Warn().Err(err).Str("path", s.path).Msg("snapshot malformed, starting with empty store")
		return
	}
	s.entries = entries
}

// GetByID returns a copy of the entry or a not found error.
func (s *EntrySnapshotStore) GetByID(ctx context.Context, id string) (*entities.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("entry %s not found", id))
	}
	return entry.Clone(), nil
}

// Save stores the entry and rewrites the snapshot. On a persist failure the
// in-memory store is rolled back so memory and disk stay in agreement.
func (s *EntrySnapshotStore) Save(ctx context.Context, entry *entities.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.entries[entry.ID]
	s.entries[entry.ID] = entry.Clone()

	if err := s.persistLocked(); err != nil {
		if existed {
			s.entries[entry.ID] = prev
		} else {
			delete(s.entries, entry.ID)
		}
		return apperrors.NewInternalError("failed to persist entry store", err)
	}
	return nil
}

// List returns copies of all entries.
func (s *EntrySnapshotStore) List(ctx context.Context) ([]*entities.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]*entities.Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		entries = append(entries, entry.Clone())
	}
	return entries, nil
}

// Len returns the number of stored entries.
func (s *EntrySnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close releases the snapshot lock file.
func (s *EntrySnapshotStore) Close() error {
	return s.fileLock.Unlock()
}

// persistLocked writes the full snapshot atomically. Callers hold s.mu.
func (s *EntrySnapshotStore) persistLocked() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".entries-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}
	return nil
}
