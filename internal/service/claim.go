package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/hostel-cleaning-service/internal/model"
	"github.com/iliyamo/hostel-cleaning-service/internal/queue"
)

// ClaimResolver settles the first-come-first-serve race for bookings in
// WAITING_FOR_CLEANER.  At most one Accept call ever wins for a given
// booking; every later attempt, including repeats by the winner, gets
// ErrAlreadyClaimed.  The whole check-then-act runs inside one atomic
// unit on the store, so there is no window between reading the row and
// writing the assignment.
type ClaimResolver struct {
	store      Store
	dispatcher Dispatcher
}

// NewClaimResolver constructs a ClaimResolver.  Both dependencies must be
// non-nil.
func NewClaimResolver(store Store, dispatcher Dispatcher) *ClaimResolver {
	if store == nil || dispatcher == nil {
		panic("nil dependency passed to NewClaimResolver")
	}
	return &ClaimResolver{store: store, dispatcher: dispatcher}
}

// Accept assigns the booking to cleanerID if it is still unclaimed.
//
// Under the row lock it re-checks the state: anything other than
// WAITING_FOR_CLEANER with no cleaner set means somebody was faster, and
// the caller gets ErrAlreadyClaimed rather than a generic failure so
// clients can tell "lost the race" from "system broke".  Within the same
// transaction the other cleaners' pending claim tickets are deleted, the
// winner's own ticket is resolved as read, and the student's acceptance
// notification is inserted.  The external "claimed" event goes out only
// after the commit.
func (r *ClaimResolver) Accept(ctx context.Context, bookingID, cleanerID uint64) (*model.Booking, error) {
	cleaner, err := r.store.GetUser(ctx, cleanerID)
	if err != nil {
		return nil, err
	}

	var claimed model.Booking
	err = r.store.WithBooking(ctx, bookingID, func(b *model.Booking, scope TxScope) error {
		if b.Status != model.StatusWaitingForCleaner || b.CleanerID != nil {
			return ErrAlreadyClaimed
		}
		now := time.Now().UTC()
		b.CleanerID = &cleanerID
		b.Status = model.StatusAssigned
		b.UpdatedAt = now
		if err := scope.UpdateBooking(b); err != nil {
			return err
		}
		// The race is settled: losing cleaners' tickets disappear, the
		// winner's is rewritten so their inbox reflects the outcome.
		if _, err := scope.DeleteClaimTickets(cleanerID); err != nil {
			return err
		}
		if err := scope.ResolveClaimTicket(cleanerID, "Task Accepted",
			fmt.Sprintf("You accepted the %s task for %s - %s.", b.BookingType.Display(), b.Block, b.RoomNumber)); err != nil {
			return err
		}
		if err := scope.AddNotification(model.Notification{
			UserID:    b.StudentID,
			Title:     "Cleaner Accepted Your Request",
			Message:   fmt.Sprintf("Cleaner %s has accepted your %s request for %s at %s.", cleaner.Name, b.BookingType.Display(), b.PreferredDate.Format("2006-01-02"), b.PreferredTime),
			Kind:      model.KindBookingAccepted,
			BookingID: &b.ID,
		}); err != nil {
			return err
		}
		claimed = *b
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.dispatchClaimed(ctx, &claimed, cleaner)
	return &claimed, nil
}

// dispatchClaimed emits the post-commit event to the requester.  Lookup
// or delivery problems are absorbed by the dispatcher; the claim has
// already committed.
func (r *ClaimResolver) dispatchClaimed(ctx context.Context, b *model.Booking, cleaner model.User) {
	student, err := r.store.GetUser(ctx, b.StudentID)
	if err != nil {
		student = model.User{ID: b.StudentID}
	}
	r.dispatcher.Notify(ctx, queue.NotificationEvent{
		Kind:        queue.EventBookingClaimed,
		UserID:      b.StudentID,
		Email:       student.Email,
		Phone:       student.Phone,
		BookingID:   b.ID,
		BookingType: string(b.BookingType),
		Block:       b.Block,
		RoomNumber:  b.RoomNumber,
		Date:        b.PreferredDate.Format("2006-01-02"),
		Time:        b.PreferredTime,
		Title:       "Cleaning Request Accepted",
		Message:     fmt.Sprintf("Cleaner %s has accepted your cleaning request.", cleaner.Name),
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	})
}
