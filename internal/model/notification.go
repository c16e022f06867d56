package model

import "time"

// NotificationKind classifies in-app notifications.  NEW_BOOKING rows
// double as claim tickets: one is created per active cleaner when a
// booking is published, and they are removed or resolved transactionally
// when the claim race settles.
type NotificationKind string

const (
	KindNewBooking       NotificationKind = "NEW_BOOKING"
	KindBookingAccepted  NotificationKind = "BOOKING_ACCEPTED"
	KindBookingCompleted NotificationKind = "BOOKING_COMPLETED"
	KindGeneral          NotificationKind = "GENERAL"
)

// Notification mirrors the `notifications` table.  BookingID is set for
// booking-related notifications and nil for account-level messages.
type Notification struct {
	ID        uint64           `json:"id"`
	UserID    uint64           `json:"user_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Kind      NotificationKind `json:"notification_type"`
	BookingID *uint64          `json:"booking_id,omitempty"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
