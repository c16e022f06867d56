// Package queue defines message payloads exchanged over the message
// broker and the background consumer that delivers them.
package queue

// Event kinds published by the booking lifecycle.  Each value maps to a
// distinct delivery template in the consumer.
const (
	EventBookingCreated   = "booking.created"
	EventBookingClaimed   = "booking.claimed"
	EventBookingAssigned  = "booking.assigned"
	EventBookingStarted   = "booking.started"
	EventBookingCompleted = "booking.completed"
	EventStatusChanged    = "booking.status_changed"
	EventPaymentReceived  = "booking.payment_received"
)

// NotificationEvent is published once per recipient per lifecycle event.
// It carries enough information for the delivery worker to compose an
// email or SMS without querying the primary database.
type NotificationEvent struct {
	Kind        string `json:"kind"`
	UserID      uint64 `json:"user_id"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	BookingID   uint64 `json:"booking_id"`
	BookingType string `json:"booking_type,omitempty"`
	Block       string `json:"block,omitempty"`
	RoomNumber  string `json:"room_number,omitempty"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	OccurredAt  string `json:"occurred_at"`
}
