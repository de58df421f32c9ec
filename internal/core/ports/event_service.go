package ports

import (
	"context"

	"github.com/eventboard/eventboard/internal/core/domain"
)

// EventDraft is the DTO passed from the transport layer to EventService.
// Date and Time use domain.DateLayout and domain.TimeLayout.
type EventDraft struct {
	Title       string
	Description string
	Date        string
	Time        string
	Location    string
	Images      []string
	SheetLink   string
}

// EventService manages the event lifecycle.
type EventService interface {
	CreateEvent(ctx context.Context, p *domain.Principal, draft EventDraft) (*domain.Event, error)
	UpdateEvent(ctx context.Context, p *domain.Principal, id string, draft EventDraft) (*domain.Event, error)
	DeleteEvent(ctx context.Context, p *domain.Principal, id string) error
	ListEvents(ctx context.Context) ([]domain.EventSummary, error)
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
}

// CascadeReporter receives registration clean-ups that failed after their
// event was already deleted.
type CascadeReporter interface {
	ReportCascadeFailure(eventID string, cause error)
}
