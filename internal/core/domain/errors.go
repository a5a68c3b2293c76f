package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers. It implements error so a kind can be
// used directly as an errors.Is target.
type Kind string

func (k Kind) Error() string { return string(k) }

const (
	ErrValidation   Kind = "validation"
	ErrNotFound     Kind = "not_found"
	ErrForbidden    Kind = "forbidden"
	ErrInvalidState Kind = "invalid_state"
	ErrConflict     Kind = "conflict"
	ErrInternal     Kind = "internal"
)

// Error carries a kind, a message safe to show to end users, and an optional
// cause that is only meant for logs.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Msg + ": " + e.Cause.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

var (
	ErrProposalNotFound   = &Error{Kind: ErrNotFound, Msg: "proposal not found"}
	ErrUserNotFound       = &Error{Kind: ErrNotFound, Msg: "user not found"}
	ErrInvalidProposalID  = &Error{Kind: ErrValidation, Msg: "invalid proposal id"}
	ErrInvalidChoice      = &Error{Kind: ErrValidation, Msg: "choice is not one of the proposal's voting options"}
	ErrProposalNotOpen    = &Error{Kind: ErrInvalidState, Msg: "proposal is not open for voting"}
	ErrProposalNotActive  = &Error{Kind: ErrInvalidState, Msg: "proposal is no longer active"}
	ErrProposalArchived   = &Error{Kind: ErrInvalidState, Msg: "proposal is archived"}
	ErrProposalStillOpen  = &Error{Kind: ErrInvalidState, Msg: "proposal must be closed before it can be archived"}
	ErrNoAllocation       = &Error{Kind: ErrForbidden, Msg: "user holds no voting allocation for this proposal"}
	ErrNotProposalManager = &Error{Kind: ErrForbidden, Msg: "only the proposal creator or an administrator may do this"}
	ErrAdminOnly          = &Error{Kind: ErrForbidden, Msg: "administrator privileges required"}
)

// Validationf builds a validation error with a formatted message.
func Validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

// Conflict wraps a storage-level uniqueness violation that escaped an upsert.
func Conflict(msg string, cause error) error {
	return &Error{Kind: ErrConflict, Msg: msg, Cause: cause}
}

// KindOf reports the kind of err, or ErrInternal for anything unclassified.
func KindOf(err error) Kind {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return ErrInternal
}

// PublicMessage returns the text of err that may be shown to end users.
func PublicMessage(err error) string {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Msg
	}
	var k Kind
	if errors.As(err, &k) {
		return string(k)
	}
	return "internal server error"
}
