package ports

import (
	"context"

	"github.com/eventboard/eventboard/internal/core/domain"
)

// RegistrationService manages user sign-ups for events.
type RegistrationService interface {
	IsRegistered(ctx context.Context, p *domain.Principal, eventID string) (bool, error)
	// CountRegistrants is public; unknown events count zero.
	CountRegistrants(ctx context.Context, eventID string) (int64, error)
	Register(ctx context.Context, p *domain.Principal, eventID string) error
	Cancel(ctx context.Context, p *domain.Principal, eventID string) error
	ListRegistrantsForEvent(ctx context.Context, p *domain.Principal, eventID string) ([]domain.Registrant, error)
	ListMyRegisteredEvents(ctx context.Context, p *domain.Principal) ([]*domain.Event, error)
}
