package domain

import "time"

// DateLayout and TimeLayout are the wire formats of an event's calendar
// date and optional time of day.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// EventFields holds every mutable attribute of an event. Updates replace
// all of them at once.
type EventFields struct {
	Title       string
	Description string
	Date        time.Time
	Time        string
	Location    string
	Images      []string
	SheetLink   string
}

// Event is an admin-managed happening users can sign up for.
type Event struct {
	ID          string
	Title       string
	Description string
	Date        time.Time // UTC midnight of the calendar date
	Time        string    // optional, HH:MM
	Location    string
	Images      []string
	SheetLink   string // optional external registration sheet
	CreatorID   string
	CreatorName string // joined from users at read time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EventSummary decorates an event with its registrant count, aggregated
// from registrations when read. The count is never stored on the event.
type EventSummary struct {
	Event
	RegistrantCount int64
}
