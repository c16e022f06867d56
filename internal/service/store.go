package service

import (
	"context"

	"github.com/iliyamo/hostel-cleaning-service/internal/model"
)

// Actor identifies the authenticated caller of a state-changing
// operation.  Role is one of the model.Role* constants, taken from the
// verified JWT.
type Actor struct {
	ID   uint64
	Role string
}

// TxScope exposes the mutations available while a booking row is held
// under its exclusive lock.  Everything recorded through the scope is
// persisted atomically with the booking update: either the whole claim
// or transition commits, or none of it does.
type TxScope interface {
	// UpdateBooking persists the booking's mutated fields (status,
	// assigned cleaner, payment fields, updated_at).
	UpdateBooking(b *model.Booking) error

	// AddNotification inserts one in-app notification row.
	AddNotification(n model.Notification) error

	// DeleteClaimTickets removes the booking's pending NEW_BOOKING
	// tickets.  When exceptUserID is non-zero that recipient's ticket is
	// kept (the claim winner's own ticket is resolved, not deleted).  It
	// returns the number of tickets removed.
	DeleteClaimTickets(exceptUserID uint64) (int64, error)

	// ResolveClaimTicket rewrites the recipient's pending ticket in
	// place: new title and message, marked read.
	ResolveClaimTicket(userID uint64, title, message string) error
}

// Store is the persistence contract for the lifecycle operations.  The
// production implementation wraps MySQL with SELECT ... FOR UPDATE inside
// a transaction; tests use an in-memory store guarded by a mutex.  Both
// must provide the same atomicity: WithBooking runs fn with the row
// exclusively locked, and the mutations made through the scope become
// visible to other callers only after fn returns nil.
type Store interface {
	// WithBooking locks the booking row and runs fn against the loaded
	// state.  A missing row yields ErrNotFound.  A lock that cannot be
	// acquired within the store's configured bound yields ErrBusy.  Any
	// error from fn aborts the unit with no partial writes.
	WithBooking(ctx context.Context, bookingID uint64, fn func(b *model.Booking, scope TxScope) error) error

	// GetUser loads a user by ID, ErrNotFound when missing.
	GetUser(ctx context.Context, id uint64) (model.User, error)
}
