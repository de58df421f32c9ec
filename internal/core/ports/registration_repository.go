package ports

import (
	"context"

	"github.com/eventboard/eventboard/internal/core/domain"
)

// RegistrationRepository is the registration store. The pair
// (userID, eventID) is unique at the store level.
type RegistrationRepository interface {
	Exists(ctx context.Context, userID, eventID string) (bool, error)
	// Create fails with domain.ErrAlreadyRegistered on a uniqueness violation.
	Create(ctx context.Context, userID, eventID string) (*domain.Registration, error)
	// Delete removes one registration; domain.ErrNotFound when none matched.
	Delete(ctx context.Context, userID, eventID string) error
	// DeleteByEvent removes every registration of an event. Idempotent.
	DeleteByEvent(ctx context.Context, eventID string) (int64, error)
	CountByEvent(ctx context.Context, eventID string) (int64, error)
	// CountByEvents counts registrations for several events in one pass.
	// Events without registrations are absent from the result.
	CountByEvents(ctx context.Context, eventIDs []string) (map[string]int64, error)
	// FindEventsByUser joins the user's registrations to their events.
	FindEventsByUser(ctx context.Context, userID string) ([]*domain.Event, error)
	// FindRegistrantsByEvent joins an event's registrations to users,
	// oldest registration first.
	FindRegistrantsByEvent(ctx context.Context, eventID string) ([]domain.Registrant, error)
}
