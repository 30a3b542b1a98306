package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/sweethome-care/voice-entry-service/internal/domain/entities"
)

var unsafeNameChars = regexp.MustCompile(`[^\w.\-]`)

// BlobStore writes uploaded audio bytes into a local directory. Write-only:
// the core never reads or deletes blobs.
type BlobStore struct {
	dir string
}

// NewBlobStore creates the upload directory if it does not exist.
func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &BlobStore{dir: dir}, nil
}

// Store persists the stream under a generated name and returns the blob
// reference. The stored name is a millisecond prefix plus the sanitized
// original name; on a name collision a random fragment is appended so
// concurrent uploads never overwrite each other.
func (b *BlobStore) Store(r io.Reader, originalName, contentType string) (entities.AudioRef, error) {
	safe := sanitizeName(originalName)

	storedName := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), safe)
	f, err := os.OpenFile(filepath.Join(b.dir, storedName), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if os.IsExist(err) {
		storedName = fmt.Sprintf("%d_%s_%s", time.Now().UnixMilli(), uuid.NewString()[:8], safe)
		f, err = os.OpenFile(filepath.Join(b.dir, storedName), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return entities.AudioRef{}, fmt.Errorf("failed to create blob file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(filepath.Join(b.dir, storedName))
		return entities.AudioRef{}, fmt.Errorf("failed to write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		return entities.AudioRef{}, fmt.Errorf("failed to close blob: %w", err)
	}

	return entities.AudioRef{
		Filename:     storedName,
		OriginalName: originalName,
		ContentType:  contentType,
		LocalPath:    filepath.Join(b.dir, storedName),
	}, nil
}

// sanitizeName strips path components and traversal characters from a
// client-supplied file name.
func sanitizeName(name string) string {
	base := filepath.Base(name)
	safe := unsafeNameChars.ReplaceAllString(base, "_")
	if safe == "" || safe == "." || safe == ".." {
		safe = "audio"
	}
	return safe
}
