package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hostel-cleaning-service/internal/model"
	"github.com/iliyamo/hostel-cleaning-service/internal/service"
)

// NotificationRepo reads and updates the notifications table. Claim
// tickets are written only through the booking transaction scope; this
// repo covers the inbox side.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

const notificationColumns = "id, user_id, title, message, notification_type, booking_id, is_read, created_at"

// ListByUser returns the user's notifications, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Notification, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+notificationColumns+" FROM notifications WHERE user_id=? ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Notification, 0)
	for rows.Next() {
		var (
			n         model.Notification
			bookingID sql.NullInt64
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Kind, &bookingID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		if bookingID.Valid {
			id := uint64(bookingID.Int64)
			n.BookingID = &id
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags one notification read. The owner check is part of the
// statement so users cannot touch each other's inboxes.
func (r *NotificationRepo) MarkRead(ctx context.Context, userID, notificationID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read=1 WHERE id=? AND user_id=?", notificationID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		err := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM notifications WHERE id=? AND user_id=?", notificationID, userID).Scan(&exists)
		if err == sql.ErrNoRows {
			return service.ErrNotFound
		}
		return err
	}
	return nil
}

// MarkAllRead flags every unread notification of the user.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET is_read=1 WHERE user_id=? AND is_read=0", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UnreadCount returns how many unread notifications the user has.
func (r *NotificationRepo) UnreadCount(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id=? AND is_read=0", userID).Scan(&n)
	return n, err
}
