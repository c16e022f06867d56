package model

import "time"

// BookingType identifies the kind of cleaning service requested.  The
// type is fixed at creation and determines the price.
type BookingType string

const (
	TypeStandard BookingType = "STANDARD" // regular room cleaning
	TypeDeep     BookingType = "DEEP"     // deep cleaning, higher price
)

// Display returns the human-readable name used in notification text.
func (t BookingType) Display() string {
	if t == TypeDeep {
		return "Deep Cleaning"
	}
	return "Standard Cleaning"
}

// Urgency marks how quickly the student needs the service.  It does not
// affect the claim flow; cleaners see it when deciding what to accept.
type Urgency string

const (
	UrgencyNormal Urgency = "NORMAL"
	UrgencyUrgent Urgency = "URGENT"
)

// Status is the booking lifecycle state.  WAITING_FOR_CLEANER is the
// initial state for every booking created through the API; PENDING exists
// in the enumeration for rows provisioned outside the live flow but is
// never produced by the service itself.  COMPLETED and CANCELLED are
// terminal.
type Status string

const (
	StatusPending           Status = "PENDING"
	StatusWaitingForCleaner Status = "WAITING_FOR_CLEANER"
	StatusAssigned          Status = "ASSIGNED"
	StatusInProgress        Status = "IN_PROGRESS"
	StatusCompleted         Status = "COMPLETED"
	StatusCancelled         Status = "CANCELLED"
)

// statusGraph defines every allowed lifecycle edge.  CANCELLED is
// reachable from any non-terminal state; the working path is strictly
// WAITING_FOR_CLEANER -> ASSIGNED -> IN_PROGRESS -> COMPLETED with no
// skipped steps.
var statusGraph = map[Status][]Status{
	StatusPending:           {StatusWaitingForCleaner, StatusCancelled},
	StatusWaitingForCleaner: {StatusAssigned, StatusCancelled},
	StatusAssigned:          {StatusInProgress, StatusCancelled},
	StatusInProgress:        {StatusCompleted, StatusCancelled},
	StatusCompleted:         {},
	StatusCancelled:         {},
}

// IsValid reports whether s is a recognized booking status.
func (s Status) IsValid() bool {
	_, ok := statusGraph[s]
	return ok
}

// CanTransitionTo reports whether the edge from s to target exists in the
// lifecycle graph.  It says nothing about who is allowed to drive the
// edge; authorization is enforced by the status transitioner.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range statusGraph[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	allowed, ok := statusGraph[s]
	if !ok {
		return true
	}
	return len(allowed) == 0
}

// RequiresCleaner reports whether a booking in this status must carry an
// assigned cleaner.  The invariant is enforced on every write: the
// assigned cleaner is non-null exactly in ASSIGNED, IN_PROGRESS and
// COMPLETED.
func (s Status) RequiresCleaner() bool {
	return s == StatusAssigned || s == StatusInProgress || s == StatusCompleted
}

// PaymentMethod records how a completed booking was paid.
type PaymentMethod string

const (
	PaymentOffline PaymentMethod = "OFFLINE"
	PaymentOnline  PaymentMethod = "ONLINE"
)

// PaymentStatus tracks the payment sub-state.  Payment fields only
// change once the booking itself is COMPLETED.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

// Booking mirrors the `bookings` table.  A booking is one cleaning
// request for a single room slot.  Rows are never deleted; cancellation
// is the logical delete.
//
// Fields:
//  ID              – primary key identifier.
//  StudentID       – requesting student, immutable after creation.
//  BookingType     – STANDARD or DEEP, immutable.
//  PreferredDate   – requested calendar day.
//  PreferredTime   – slot on the 30-minute grid ("15:04" formatted).
//  Urgency         – NORMAL or URGENT.
//  Instructions    – free-form notes from the student.
//  Block           – hostel block code, e.g. 25E.
//  RoomNumber      – room code, e.g. 25E-04-10.
//  Status          – lifecycle state, see Status.
//  CleanerID       – assigned cleaner, nil until claimed or force-assigned.
//  PaymentMethod   – OFFLINE or ONLINE, set when the student pays.
//  PaymentStatus   – PENDING until paid.
//  ReceiptRef      – opaque reference for an uploaded payment receipt.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last modification timestamp.
type Booking struct {
	ID            uint64        `json:"id"`
	StudentID     uint64        `json:"student_id"`
	BookingType   BookingType   `json:"booking_type"`
	PreferredDate time.Time     `json:"preferred_date"`
	PreferredTime string        `json:"preferred_time"`
	Urgency       Urgency       `json:"urgency_level"`
	Instructions  string        `json:"special_instructions,omitempty"`
	Block         string        `json:"block"`
	RoomNumber    string        `json:"room_number"`
	Status        Status        `json:"status"`
	CleanerID     *uint64       `json:"assigned_cleaner,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	ReceiptRef    *string       `json:"receipt_ref,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Price returns the service price in whole currency units.  Deep cleaning
// costs 30, standard cleaning 20.
func (b *Booking) Price() int {
	if b.BookingType == TypeDeep {
		return 30
	}
	return 20
}

// AssignedTo reports whether the booking is currently assigned to the
// given cleaner.
func (b *Booking) AssignedTo(cleanerID uint64) bool {
	return b.CleanerID != nil && *b.CleanerID == cleanerID
}
