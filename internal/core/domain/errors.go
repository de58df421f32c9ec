package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies every error a manager can return. The set is closed.
type Kind string

const (
	KindValidation          Kind = "validation"
	KindForbidden           Kind = "forbidden"
	KindUnauthorized        Kind = "unauthorized"
	KindNotFound            Kind = "not_found"
	KindConflict            Kind = "conflict"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindServer              Kind = "server"
)

// Stable codes for errors that callers need to tell apart within a kind.
const (
	CodeInvalidCredentials = "invalid_credentials"
	CodeAlreadyRegistered  = "already_registered"
	CodeEmailTaken         = "email_taken"
)

// FieldError names one offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the tagged error carried across the manager boundary.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind, and on code when the target carries one, so that
// errors.Is(err, ErrNotFound) holds for any not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrValidation          = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrForbidden           = &Error{Kind: KindForbidden, Message: "access forbidden"}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized, Message: "authentication required"}
	ErrNotFound            = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict            = &Error{Kind: KindConflict, Message: "conflict"}
	ErrUpstreamUnavailable = &Error{Kind: KindUpstreamUnavailable, Message: "upstream unavailable"}
	ErrServer              = &Error{Kind: KindServer, Message: "internal server error"}

	ErrInvalidCredentials = &Error{Kind: KindUnauthorized, Code: CodeInvalidCredentials, Message: "invalid credentials"}
	ErrAlreadyRegistered  = &Error{Kind: KindConflict, Code: CodeAlreadyRegistered, Message: "already registered for this event"}
	ErrEmailTaken         = &Error{Kind: KindConflict, Code: CodeEmailTaken, Message: "email already registered"}
)

// NotFound builds a not-found error for the named entity.
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// Validation builds a validation error listing every offending field.
func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// Unavailable wraps a store failure that the caller may retry.
func Unavailable(op string, err error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Message: op + ": store unavailable", Err: err}
}

// Internal wraps an unexpected failure.
func Internal(op string, err error) *Error {
	return &Error{Kind: KindServer, Message: op, Err: err}
}

// KindOf reports the kind of err, or KindServer for errors outside the taxonomy.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindServer
}

// Wrap annotates err with op while keeping its kind.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
