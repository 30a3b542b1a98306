package repositories

import (
	"context"

	"github.com/sweethome-care/voice-entry-service/internal/domain/entities"
)

// EntryRepository defines durable entry persistence. Every Save must have
// reached durable storage before it returns.
type EntryRepository interface {
	// GetByID returns the entry or a not found AppError.
	GetByID(ctx context.Context, id string) (*entities.Entry, error)

	// Save writes the entry and persists the full store snapshot.
	Save(ctx context.Context, entry *entities.Entry) error

	// List returns all entries.
	List(ctx context.Context) ([]*entities.Entry, error)
}
