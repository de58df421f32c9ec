package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eventboard/eventboard/internal/core/domain"
	"github.com/eventboard/eventboard/internal/core/policy"
	"github.com/eventboard/eventboard/internal/core/ports"
	"github.com/eventboard/eventboard/internal/pkg/metrics"
)

type eventService struct {
	events        ports.EventRepository
	registrations ports.RegistrationRepository
	users         ports.UserRepository
	cascade       ports.CascadeReporter
	log           zerolog.Logger
}

// NewEventService returns an EventService implementation. cascade may be
// nil, in which case failed clean-ups are only logged.
func NewEventService(
	events ports.EventRepository,
	registrations ports.RegistrationRepository,
	users ports.UserRepository,
	cascade ports.CascadeReporter,
	log zerolog.Logger,
) ports.EventService {
	return &eventService{
		events:        events,
		registrations: registrations,
		users:         users,
		cascade:       cascade,
		log:           log,
	}
}

// CreateEvent validates and stores a new event owned by the calling admin.
func (s *eventService) CreateEvent(ctx context.Context, p *domain.Principal, draft ports.EventDraft) (*domain.Event, error) {
	if err := policy.Authorize(p, policy.CreateEvent); err != nil {
		return nil, err
	}

	fields, err := parseDraft(draft)
	if err != nil {
		return nil, err
	}

	// The token says admin; the identity store must agree.
	creator, err := s.users.FindByID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, domain.Wrap("create event", err)
	}
	if creator.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	event, err := s.events.Create(ctx, creator.ID, fields)
	if err != nil {
		s.log.Error().Err(err).Str("creator_id", creator.ID).Msg("failed to create event")
		return nil, domain.Wrap("create event", err)
	}
	event.CreatorName = creator.Name
	metrics.EventMutationsTotal.WithLabelValues("create").Inc()

	s.log.Info().Str("event_id", event.ID).Str("creator_id", creator.ID).Msg("event created")
	return event, nil
}

// UpdateEvent replaces every mutable field. Any admin may edit any event.
func (s *eventService) UpdateEvent(ctx context.Context, p *domain.Principal, id string, draft ports.EventDraft) (*domain.Event, error) {
	if err := policy.Authorize(p, policy.UpdateEvent); err != nil {
		return nil, err
	}

	fields, err := parseDraft(draft)
	if err != nil {
		return nil, err
	}

	event, err := s.events.Update(ctx, id, fields)
	if err != nil {
		return nil, domain.Wrap("update event", err)
	}

	metrics.EventMutationsTotal.WithLabelValues("update").Inc()
	s.log.Info().Str("event_id", id).Str("admin_id", p.ID).Msg("event updated")
	return event, nil
}

// DeleteEvent removes the event first and its registrations second. Once
// the event is gone the call succeeds even when the cascade does not: an
// orphaned registration is recoverable, a visible deleted event is not.
func (s *eventService) DeleteEvent(ctx context.Context, p *domain.Principal, id string) error {
	if err := policy.Authorize(p, policy.DeleteEvent); err != nil {
		return err
	}

	if err := s.events.Delete(ctx, id); err != nil {
		return domain.Wrap("delete event", err)
	}

	metrics.EventMutationsTotal.WithLabelValues("delete").Inc()

	removed, err := s.registrations.DeleteByEvent(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Str("event_id", id).Msg("registration cascade failed after event delete")
		if s.cascade != nil {
			s.cascade.ReportCascadeFailure(id, err)
		}
	}

	s.log.Info().
		Str("event_id", id).
		Str("admin_id", p.ID).
		Int64("registrations_removed", removed).
		Msg("event deleted")
	return nil
}

// ListEvents returns all events, newest date first, each with a
// registrant count aggregated at read time.
func (s *eventService) ListEvents(ctx context.Context) ([]domain.EventSummary, error) {
	events, err := s.events.FindAll(ctx)
	if err != nil {
		return nil, domain.Wrap("list events", err)
	}
	if len(events) == 0 {
		return []domain.EventSummary{}, nil
	}

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	counts, err := s.registrations.CountByEvents(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list events: count registrants: %w", err)
	}

	out := make([]domain.EventSummary, len(events))
	for i, e := range events {
		out[i] = domain.EventSummary{Event: *e, RegistrantCount: counts[e.ID]}
	}
	return out, nil
}

// GetEvent is public and includes the creator's display name.
func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	event, err := s.events.FindByID(ctx, id)
	if err != nil {
		return nil, domain.Wrap("get event", err)
	}
	return event, nil
}
