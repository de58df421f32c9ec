// Package policy decides who may do what. Decisions depend only on the
// principal and the action, and are re-evaluated on every request.
package policy

import "github.com/eventboard/eventboard/internal/core/domain"

// Action is an operation subject to authorization.
type Action string

const (
	ViewEvent               Action = "view_event"
	ListEvents              Action = "list_events"
	CreateEvent             Action = "create_event"
	UpdateEvent             Action = "update_event"
	DeleteEvent             Action = "delete_event"
	ListRegistrantsForEvent Action = "list_registrants_for_event"
	RegisterForEvent        Action = "register_for_event"
	CancelRegistration      Action = "cancel_registration"
	ViewOwnRegistrations    Action = "view_own_registrations"
)

// Can reports whether p (nil for anonymous) may perform action.
// Unknown actions are denied.
func Can(p *domain.Principal, action Action) bool {
	switch action {
	case ViewEvent, ListEvents:
		return true
	case CreateEvent, UpdateEvent, DeleteEvent, ListRegistrantsForEvent:
		return p.IsAdmin()
	case RegisterForEvent, CancelRegistration:
		// admins manage events, they do not attend them
		return p != nil && p.Role == domain.RoleUser
	case ViewOwnRegistrations:
		return p != nil
	default:
		return false
	}
}

// Authorize is Can as an error: anonymous callers get Unauthorized,
// authenticated ones Forbidden.
func Authorize(p *domain.Principal, action Action) error {
	if Can(p, action) {
		return nil
	}
	if p == nil {
		return domain.ErrUnauthorized
	}
	return domain.ErrForbidden
}
