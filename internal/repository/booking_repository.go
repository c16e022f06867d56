package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/hostel-cleaning-service/internal/model"
	"github.com/iliyamo/hostel-cleaning-service/internal/service"
)

// BookingRepo provides CRUD and locking access to the bookings table.
// It implements service.Store: WithBooking runs its callback with the
// row held under SELECT ... FOR UPDATE so the claim race is settled by
// the database, never by application-level check-then-act.
type BookingRepo struct {
	DB *sql.DB
	// LockWait bounds how long WithBooking waits for the row lock
	// before giving up with ErrBusy.
	LockWait time.Duration
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB, lockWait time.Duration) *BookingRepo {
	return &BookingRepo{DB: db, LockWait: lockWait}
}

const bookingColumns = `id, student_id, booking_type, preferred_date, preferred_time, urgency_level,
COALESCE(special_instructions,''), block, room_number, status, assigned_cleaner_id,
COALESCE(payment_method,''), payment_status, receipt_ref, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (model.Booking, error) {
	var (
		b         model.Booking
		cleanerID sql.NullInt64
		receipt   sql.NullString
	)
	err := row.Scan(&b.ID, &b.StudentID, &b.BookingType, &b.PreferredDate, &b.PreferredTime,
		&b.Urgency, &b.Instructions, &b.Block, &b.RoomNumber, &b.Status, &cleanerID,
		&b.PaymentMethod, &b.PaymentStatus, &receipt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return b, err
	}
	if cleanerID.Valid {
		id := uint64(cleanerID.Int64)
		b.CleanerID = &id
	}
	if receipt.Valid {
		ref := receipt.String
		b.ReceiptRef = &ref
	}
	return b, nil
}

// Create inserts the booking in WAITING_FOR_CLEANER and fans out the
// claim tickets in the same transaction: one NEW_BOOKING notification
// per active cleaner plus a confirmation to the student. The generated
// ID and timestamps are populated on b.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking, cleanerIDs []uint64, ticketTitle, ticketMessage, confirmTitle, confirmMessage string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (student_id, booking_type, preferred_date, preferred_time, urgency_level,
		 special_instructions, block, room_number, status, payment_status)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		b.StudentID, b.BookingType, b.PreferredDate.Format("2006-01-02"), b.PreferredTime, b.Urgency,
		nullable(b.Instructions), b.Block, b.RoomNumber, model.StatusWaitingForCleaner, model.PaymentPending)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	// Query back the full row to populate timestamps and defaults.
	full, err := scanBooking(tx.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id=?", b.ID))
	if err != nil {
		return err
	}
	*b = full

	if len(cleanerIDs) > 0 {
		query := "INSERT INTO notifications (user_id, title, message, notification_type, booking_id) VALUES "
		args := make([]interface{}, 0, len(cleanerIDs)*5)
		for i, cid := range cleanerIDs {
			if i > 0 {
				query += ","
			}
			query += "(?,?,?,?,?)"
			args = append(args, cid, ticketTitle, ticketMessage, model.KindNewBooking, b.ID)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO notifications (user_id, title, message, notification_type, booking_id) VALUES (?,?,?,?,?)",
		b.StudentID, confirmTitle, confirmMessage, model.KindGeneral, b.ID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// WithBooking implements service.Store. The booking row is selected FOR
// UPDATE inside a transaction; every mutation made through the scope
// commits atomically with the booking update. Lock waits beyond
// LockWait surface as service.ErrBusy.
func (r *BookingRepo) WithBooking(ctx context.Context, bookingID uint64, fn func(b *model.Booking, scope service.TxScope) error) error {
	if r.LockWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.LockWait)
		defer cancel()
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	b, err := scanBooking(tx.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id=? FOR UPDATE", bookingID))
	if err != nil {
		switch {
		case err == sql.ErrNoRows:
			return service.ErrNotFound
		case isLockTimeout(err), errors.Is(err, context.DeadlineExceeded):
			return service.ErrBusy
		}
		return err
	}

	if err := fn(&b, &txScope{ctx: ctx, tx: tx, bookingID: bookingID}); err != nil {
		if isLockTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
			return service.ErrBusy
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetUser implements service.Store.
func (r *BookingRepo) GetUser(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// txScope is the service.TxScope implementation backed by the open
// transaction of WithBooking.
type txScope struct {
	ctx       context.Context
	tx        *sql.Tx
	bookingID uint64
}

func (s *txScope) UpdateBooking(b *model.Booking) error {
	var cleanerID interface{}
	if b.CleanerID != nil {
		cleanerID = *b.CleanerID
	}
	var receipt interface{}
	if b.ReceiptRef != nil {
		receipt = *b.ReceiptRef
	}
	_, err := s.tx.ExecContext(s.ctx,
		`UPDATE bookings SET status=?, assigned_cleaner_id=?, payment_method=?, payment_status=?,
		 receipt_ref=?, updated_at=? WHERE id=?`,
		b.Status, cleanerID, nullable(string(b.PaymentMethod)), b.PaymentStatus, receipt,
		b.UpdatedAt, b.ID)
	return err
}

func (s *txScope) AddNotification(n model.Notification) error {
	var bookingID interface{}
	if n.BookingID != nil {
		bookingID = *n.BookingID
	}
	_, err := s.tx.ExecContext(s.ctx,
		"INSERT INTO notifications (user_id, title, message, notification_type, booking_id, is_read) VALUES (?,?,?,?,?,?)",
		n.UserID, n.Title, n.Message, n.Kind, bookingID, n.IsRead)
	return err
}

func (s *txScope) DeleteClaimTickets(exceptUserID uint64) (int64, error) {
	query := "DELETE FROM notifications WHERE booking_id=? AND notification_type=?"
	args := []interface{}{s.bookingID, model.KindNewBooking}
	if exceptUserID != 0 {
		query += " AND user_id<>?"
		args = append(args, exceptUserID)
	}
	res, err := s.tx.ExecContext(s.ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *txScope) ResolveClaimTicket(userID uint64, title, message string) error {
	_, err := s.tx.ExecContext(s.ctx,
		"UPDATE notifications SET title=?, message=?, is_read=1 WHERE booking_id=? AND user_id=? AND notification_type=?",
		title, message, s.bookingID, userID, model.KindNewBooking)
	return err
}

// GetByID fetches one booking.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	b, err := scanBooking(r.DB.QueryRowContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE id=?", id))
	if err == sql.ErrNoRows {
		return b, service.ErrNotFound
	}
	return b, err
}

// Filter narrows booking list queries. Zero values mean "no constraint".
type Filter struct {
	Status model.Status
	Type   model.BookingType
	Date   string // YYYY-MM-DD
}

func (f Filter) apply(query string, args []interface{}) (string, []interface{}) {
	if f.Status != "" {
		query += " AND status=?"
		args = append(args, f.Status)
	}
	if f.Type != "" {
		query += " AND booking_type=?"
		args = append(args, f.Type)
	}
	if f.Date != "" {
		query += " AND preferred_date=?"
		args = append(args, f.Date)
	}
	return query, args
}

func (r *BookingRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListByStudent returns the student's bookings, newest first.
func (r *BookingRepo) ListByStudent(ctx context.Context, studentID uint64, f Filter) ([]model.Booking, error) {
	query := "SELECT " + bookingColumns + " FROM bookings WHERE student_id=?"
	args := []interface{}{studentID}
	query, args = f.apply(query, args)
	return r.list(ctx, query+" ORDER BY created_at DESC", args...)
}

// ListHistoryByStudent returns the student's terminal bookings.
func (r *BookingRepo) ListHistoryByStudent(ctx context.Context, studentID uint64) ([]model.Booking, error) {
	return r.list(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE student_id=? AND status IN (?,?) ORDER BY updated_at DESC",
		studentID, model.StatusCompleted, model.StatusCancelled)
}

// ListWaiting returns claimable bookings, urgent ones first, then oldest
// first so early requests are not starved.
func (r *BookingRepo) ListWaiting(ctx context.Context) ([]model.Booking, error) {
	return r.list(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE status=? ORDER BY urgency_level='URGENT' DESC, created_at ASC",
		model.StatusWaitingForCleaner)
}

// ListByCleaner returns the cleaner's open tasks.
func (r *BookingRepo) ListByCleaner(ctx context.Context, cleanerID uint64) ([]model.Booking, error) {
	return r.list(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE assigned_cleaner_id=? AND status IN (?,?) ORDER BY preferred_date ASC, preferred_time ASC",
		cleanerID, model.StatusAssigned, model.StatusInProgress)
}

// ListTodayByCleaner returns the cleaner's open tasks scheduled today.
func (r *BookingRepo) ListTodayByCleaner(ctx context.Context, cleanerID uint64) ([]model.Booking, error) {
	return r.list(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE assigned_cleaner_id=? AND status IN (?,?) AND preferred_date=CURDATE() ORDER BY preferred_time ASC",
		cleanerID, model.StatusAssigned, model.StatusInProgress)
}

// ListHistoryByCleaner returns the cleaner's completed tasks.
func (r *BookingRepo) ListHistoryByCleaner(ctx context.Context, cleanerID uint64) ([]model.Booking, error) {
	return r.list(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE assigned_cleaner_id=? AND status=? ORDER BY updated_at DESC",
		cleanerID, model.StatusCompleted)
}

// ListAll returns all bookings for the admin view, newest first.
func (r *BookingRepo) ListAll(ctx context.Context, f Filter) ([]model.Booking, error) {
	query := "SELECT " + bookingColumns + " FROM bookings WHERE 1=1"
	var args []interface{}
	query, args = f.apply(query, args)
	return r.list(ctx, query+" ORDER BY created_at DESC", args...)
}

// ListReceipts returns completed bookings that carry an uploaded
// receipt reference, for admin payment review.
func (r *BookingRepo) ListReceipts(ctx context.Context) ([]model.Booking, error) {
	return r.list(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE receipt_ref IS NOT NULL ORDER BY updated_at DESC")
}

// CleanerStats aggregates a cleaner's workload and earnings.
type CleanerStats struct {
	Assigned       int `json:"assigned"`
	InProgress     int `json:"in_progress"`
	CompletedTotal int `json:"completed_total"`
	CompletedToday int `json:"completed_today"`
	Earnings       int `json:"earnings"`
}

// StatsByCleaner computes the cleaner dashboard numbers. Earnings use
// the fixed per-type prices.
func (r *BookingRepo) StatsByCleaner(ctx context.Context, cleanerID uint64) (CleanerStats, error) {
	var s CleanerStats
	err := r.DB.QueryRowContext(ctx, `
		SELECT
		  COALESCE(SUM(status='ASSIGNED'),0),
		  COALESCE(SUM(status='IN_PROGRESS'),0),
		  COALESCE(SUM(status='COMPLETED'),0),
		  COALESCE(SUM(status='COMPLETED' AND DATE(updated_at)=CURDATE()),0),
		  COALESCE(SUM(CASE WHEN status='COMPLETED' THEN IF(booking_type='DEEP',30,20) ELSE 0 END),0)
		  FROM bookings WHERE assigned_cleaner_id=?`, cleanerID).
		Scan(&s.Assigned, &s.InProgress, &s.CompletedTotal, &s.CompletedToday, &s.Earnings)
	return s, err
}

// AdminStats aggregates platform-wide numbers for the admin dashboard.
type AdminStats struct {
	TotalBookings  int            `json:"total_bookings"`
	ByStatus       map[string]int `json:"by_status"`
	Revenue        int            `json:"revenue"`
	ActiveCleaners int            `json:"active_cleaners"`
	OpenIssues     int            `json:"open_issues"`
}

// Stats computes platform totals. Revenue counts paid, completed
// bookings at the fixed per-type prices.
func (r *BookingRepo) Stats(ctx context.Context) (AdminStats, error) {
	s := AdminStats{ByStatus: make(map[string]int)}

	rows, err := r.DB.QueryContext(ctx, "SELECT status, COUNT(*) FROM bookings GROUP BY status")
	if err != nil {
		return s, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return s, err
		}
		s.ByStatus[status] = n
		s.TotalBookings += n
	}
	if err := rows.Err(); err != nil {
		return s, err
	}

	err = r.DB.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(IF(booking_type='DEEP',30,20)),0)
		  FROM bookings WHERE status='COMPLETED' AND payment_status='PAID'`).Scan(&s.Revenue)
	if err != nil {
		return s, err
	}
	err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE role='CLEANER' AND is_active=1").Scan(&s.ActiveCleaners)
	if err != nil {
		return s, err
	}
	err = r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM issues WHERE status='OPEN'").Scan(&s.OpenIssues)
	return s, err
}

// RecordOfflinePayment marks the student's completed booking as paid in
// cash. Payment fields only move once the booking is COMPLETED.
func (r *BookingRepo) RecordOfflinePayment(ctx context.Context, bookingID, studentID uint64) (model.Booking, error) {
	return r.updatePayment(ctx, bookingID, studentID, func(b *model.Booking) {
		b.PaymentMethod = model.PaymentOffline
		b.PaymentStatus = model.PaymentPaid
	})
}

// AttachReceipt records an online payment with an uploaded receipt
// reference on the student's completed booking.
func (r *BookingRepo) AttachReceipt(ctx context.Context, bookingID, studentID uint64, ref string) (model.Booking, error) {
	return r.updatePayment(ctx, bookingID, studentID, func(b *model.Booking) {
		b.PaymentMethod = model.PaymentOnline
		b.PaymentStatus = model.PaymentPaid
		b.ReceiptRef = &ref
	})
}

func (r *BookingRepo) updatePayment(ctx context.Context, bookingID, studentID uint64, mutate func(*model.Booking)) (model.Booking, error) {
	var out model.Booking
	err := r.WithBooking(ctx, bookingID, func(b *model.Booking, scope service.TxScope) error {
		if b.StudentID != studentID {
			return service.ErrForbidden
		}
		if b.Status != model.StatusCompleted {
			return service.ErrInvalidTransition
		}
		mutate(b)
		b.UpdatedAt = time.Now().UTC()
		if err := scope.UpdateBooking(b); err != nil {
			return err
		}
		out = *b
		return nil
	})
	return out, err
}
