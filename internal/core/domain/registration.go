package domain

import "time"

// RegistrationState is the sign-up state of one user for one event.
type RegistrationState string

const (
	StateNotRegistered RegistrationState = "not_registered"
	StateRegistered    RegistrationState = "registered"
)

var registrationTransitions = map[RegistrationState]RegistrationState{
	StateNotRegistered: StateRegistered,
	StateRegistered:    StateNotRegistered,
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s RegistrationState) CanTransitionTo(next RegistrationState) bool {
	return registrationTransitions[s] == next
}

// StateOf maps an existence probe onto the state machine.
func StateOf(exists bool) RegistrationState {
	if exists {
		return StateRegistered
	}
	return StateNotRegistered
}

// Registration links a user to an event. (UserID, EventID) is unique.
type Registration struct {
	ID        string
	UserID    string
	EventID   string
	CreatedAt time.Time
}

// Registrant is a user holding a registration, as shown to admins.
type Registrant struct {
	UserID       string
	Name         string
	Email        string
	RegisteredAt time.Time
}
