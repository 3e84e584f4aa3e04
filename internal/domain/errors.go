package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation           ErrorKind = "VALIDATION_ERROR"
	KindNotFound             ErrorKind = "NOT_FOUND"
	KindSlotNotFound         ErrorKind = "SLOT_NOT_FOUND"
	KindForbidden            ErrorKind = "FORBIDDEN"
	KindInsufficientCapacity ErrorKind = "INSUFFICIENT_CAPACITY"
	KindCodeGeneration       ErrorKind = "CONFIRMATION_CODE_GENERATION_FAILED"
	KindConflict             ErrorKind = "OPTIMISTIC_LOCK_CONFLICT"
	KindDuplicate            ErrorKind = "DUPLICATE"
	KindInternal             ErrorKind = "INTERNAL_ERROR"
)

// Error is the error type surfaced by the service layer. Message is safe to show to clients;
// Err holds the underlying cause and is only ever logged.
type Error struct {
	Kind           ErrorKind
	Message        string
	AvailableSeats int
	Err            error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func NewValidationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

func NewSlotNotFoundError() *Error {
	return &Error{Kind: KindSlotNotFound, Message: "time slot not found"}
}

func NewForbiddenError() *Error {
	return &Error{Kind: KindForbidden, Message: "you are not allowed to perform this action"}
}

func NewInsufficientCapacityError(available int) *Error {
	if available < 0 {
		available = 0
	}
	return &Error{
		Kind:           KindInsufficientCapacity,
		Message:        fmt.Sprintf("Only %d seats left", available),
		AvailableSeats: available,
	}
}

func NewCodeGenerationError(attempts int) *Error {
	return &Error{
		Kind:    KindCodeGeneration,
		Message: "could not generate a unique confirmation code",
		Err:     fmt.Errorf("all %d attempts collided", attempts),
	}
}

func NewConflictError() *Error {
	return &Error{Kind: KindConflict, Message: "the record was modified concurrently, reload and retry"}
}

func NewDuplicateError(what string) *Error {
	return &Error{Kind: KindDuplicate, Message: what + " already exists"}
}

func NewInternalError(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// KindOf classifies any error; errors that are not *Error are internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// AsError extracts the service error, wrapping unknown errors as internal.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewInternalError(err)
}
