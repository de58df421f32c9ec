package ports

import (
	"context"

	"github.com/eventboard/eventboard/internal/core/domain"
)

// EventRepository is the event store.
type EventRepository interface {
	// FindByID returns the event with its creator name joined in.
	FindByID(ctx context.Context, id string) (*domain.Event, error)
	// FindAll returns every event sorted by date, newest first.
	FindAll(ctx context.Context) ([]*domain.Event, error)
	Create(ctx context.Context, creatorID string, fields domain.EventFields) (*domain.Event, error)
	// Update replaces all mutable fields in a single conditional write
	// keyed by id and returns the stored result.
	Update(ctx context.Context, id string, fields domain.EventFields) (*domain.Event, error)
	Delete(ctx context.Context, id string) error
}
