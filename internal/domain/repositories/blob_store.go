package repositories

import (
	"io"

	"github.com/sweethome-care/voice-entry-service/internal/domain/entities"
)

// BlobStore persists uploaded audio bytes. Write-only from the core's point
// of view.
type BlobStore interface {
	// Store writes the stream under a generated collision-resistant name and
	// returns the blob reference.
	Store(r io.Reader, originalName, contentType string) (entities.AudioRef, error)
}
