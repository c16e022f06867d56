// Package service implements the booking lifecycle: first-come-first-serve
// claim resolution, admin force-assignment and the status state machine.
// All three operate against the Store contract so the same logic runs on
// the MySQL store in production and an in-memory store in tests.
package service

import "errors"

// Sentinel errors returned by the lifecycle operations.  Handlers compare
// with errors.Is and translate them into stable HTTP responses; anything
// not in this set is treated as an infrastructure failure.
var (
	// ErrNotFound means the booking, or a referenced user, does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyClaimed means another cleaner won the claim race.  It is
	// expected and frequent under contention and is never logged at error
	// severity.
	ErrAlreadyClaimed = errors.New("already claimed")

	// ErrInvalidTransition means the requested status edge is not in the
	// lifecycle graph, or the operation targets a terminal booking.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrForbidden means the actor lacks the rights for the edge.
	ErrForbidden = errors.New("forbidden")

	// ErrBusy means the row lock could not be acquired within the
	// configured bound.  Callers may retry.
	ErrBusy = errors.New("booking is busy, try again")
)
