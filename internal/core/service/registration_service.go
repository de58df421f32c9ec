package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/eventboard/eventboard/internal/core/domain"
	"github.com/eventboard/eventboard/internal/core/policy"
	"github.com/eventboard/eventboard/internal/core/ports"
	"github.com/eventboard/eventboard/internal/pkg/metrics"
)

// RegistrationService implements user sign-ups for events.
type RegistrationService struct {
	events        ports.EventRepository
	registrations ports.RegistrationRepository
	log           zerolog.Logger
}

func NewRegistrationService(events ports.EventRepository, registrations ports.RegistrationRepository, log zerolog.Logger) *RegistrationService {
	return &RegistrationService{events: events, registrations: registrations, log: log}
}

// IsRegistered probes the caller's own registration. Anonymous callers are
// never registered.
func (s *RegistrationService) IsRegistered(ctx context.Context, p *domain.Principal, eventID string) (bool, error) {
	if p == nil {
		return false, nil
	}
	ok, err := s.registrations.Exists(ctx, p.ID, eventID)
	if err != nil {
		return false, domain.Wrap("is registered", err)
	}
	return ok, nil
}

// CountRegistrants counts the event's registrations at read time.
func (s *RegistrationService) CountRegistrants(ctx context.Context, eventID string) (int64, error) {
	if err := policy.Authorize(nil, policy.ViewEvent); err != nil {
		return 0, err
	}
	n, err := s.registrations.CountByEvent(ctx, eventID)
	if err != nil {
		return 0, domain.Wrap("count registrants", err)
	}
	return n, nil
}

// Register moves (p, event) from NotRegistered to Registered. The
// pre-check gives a clean Conflict in the common case; the store's unique
// index settles concurrent requests that both pass it.
func (s *RegistrationService) Register(ctx context.Context, p *domain.Principal, eventID string) error {
	if err := policy.Authorize(p, policy.RegisterForEvent); err != nil {
		return err
	}

	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return domain.Wrap("register", err)
	}

	exists, err := s.registrations.Exists(ctx, p.ID, eventID)
	if err != nil {
		return domain.Wrap("register", err)
	}
	if !domain.StateOf(exists).CanTransitionTo(domain.StateRegistered) {
		return domain.ErrAlreadyRegistered
	}

	if _, err := s.registrations.Create(ctx, p.ID, eventID); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			s.log.Debug().Str("user_id", p.ID).Str("event_id", eventID).Msg("registration lost insert race")
			return domain.ErrAlreadyRegistered
		}
		return domain.Wrap("register", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("register").Inc()
	s.log.Info().Str("user_id", p.ID).Str("event_id", eventID).Msg("registered for event")
	return nil
}

// Cancel removes the caller's own registration.
func (s *RegistrationService) Cancel(ctx context.Context, p *domain.Principal, eventID string) error {
	if err := policy.Authorize(p, policy.CancelRegistration); err != nil {
		return err
	}

	if err := s.registrations.Delete(ctx, p.ID, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound("registration")
		}
		return domain.Wrap("cancel registration", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("cancel").Inc()
	s.log.Info().Str("user_id", p.ID).Str("event_id", eventID).Msg("registration cancelled")
	return nil
}

// ListRegistrantsForEvent is admin only.
func (s *RegistrationService) ListRegistrantsForEvent(ctx context.Context, p *domain.Principal, eventID string) ([]domain.Registrant, error) {
	if err := policy.Authorize(p, policy.ListRegistrantsForEvent); err != nil {
		return nil, err
	}

	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return nil, domain.Wrap("list registrants", err)
	}

	registrants, err := s.registrations.FindRegistrantsByEvent(ctx, eventID)
	if err != nil {
		return nil, domain.Wrap("list registrants", err)
	}
	if registrants == nil {
		registrants = []domain.Registrant{}
	}
	return registrants, nil
}

// ListMyRegisteredEvents returns the events the caller signed up for.
func (s *RegistrationService) ListMyRegisteredEvents(ctx context.Context, p *domain.Principal) ([]*domain.Event, error) {
	if err := policy.Authorize(p, policy.ViewOwnRegistrations); err != nil {
		return nil, err
	}

	events, err := s.registrations.FindEventsByUser(ctx, p.ID)
	if err != nil {
		return nil, domain.Wrap("list my events", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}
