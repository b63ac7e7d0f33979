package services

import "errors"

// Sentinel errors shared by the service layer. Handlers classify these into
// HTTP statuses; services only ever wrap them with context.
var (
	// ErrNotFound covers both genuinely missing rows and rows hidden from
	// the caller by library/member scoping, so a scoped miss is
	// indistinguishable from a missing record.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller lacks the role, library
	// assignment, or member link an operation requires.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned on unique-constraint violations.
	ErrConflict = errors.New("conflict")

	// ErrCopyUnavailable is returned when a borrow or loan creation loses
	// the race for a copy, or targets one already on loan.
	ErrCopyUnavailable = errors.New("book copy is not available")

	// ErrAlreadyReturned is returned when returning a loan twice.
	ErrAlreadyReturned = errors.New("loan already returned")

	// ErrValidation wraps request validation failures.
	ErrValidation = errors.New("validation error")
)
