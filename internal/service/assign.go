package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/hostel-cleaning-service/internal/model"
	"github.com/iliyamo/hostel-cleaning-service/internal/queue"
)

// AssignmentController handles the administrative override of the claim
// flow.  A force-assignment is final for the race: it overwrites any
// previous assignment and removes every pending claim ticket, so no
// cleaner can claim the booking afterwards.
type AssignmentController struct {
	store      Store
	dispatcher Dispatcher
}

// NewAssignmentController constructs an AssignmentController.
func NewAssignmentController(store Store, dispatcher Dispatcher) *AssignmentController {
	if store == nil || dispatcher == nil {
		panic("nil dependency passed to NewAssignmentController")
	}
	return &AssignmentController{store: store, dispatcher: dispatcher}
}

// ForceAssign puts the booking in ASSIGNED with the given cleaner on
// behalf of adminID, regardless of any prior claim.  The target must be
// an active cleaner account or the call fails with ErrNotFound before
// touching the booking.  Terminal bookings are rejected with
// ErrInvalidTransition and left untouched.  All pending claim tickets
// for the booking are deleted in the same transaction; both the student
// and the chosen cleaner get in-app notifications, and the matching
// events are published after commit.
func (a *AssignmentController) ForceAssign(ctx context.Context, bookingID, adminID, cleanerID uint64) (*model.Booking, error) {
	cleaner, err := a.store.GetUser(ctx, cleanerID)
	if err != nil {
		return nil, err
	}
	if cleaner.Role != model.RoleCleaner || !cleaner.IsActive {
		return nil, ErrNotFound
	}

	var assigned model.Booking
	err = a.store.WithBooking(ctx, bookingID, func(b *model.Booking, scope TxScope) error {
		if b.Status.IsTerminal() {
			return ErrInvalidTransition
		}
		b.CleanerID = &cleanerID
		b.Status = model.StatusAssigned
		b.UpdatedAt = time.Now().UTC()
		if err := scope.UpdateBooking(b); err != nil {
			return err
		}
		// Every outstanding ticket goes, including one a previously
		// assigned cleaner may still hold.  The assignment is final.
		if _, err := scope.DeleteClaimTickets(0); err != nil {
			return err
		}
		if err := scope.AddNotification(model.Notification{
			UserID:    b.StudentID,
			Title:     "Cleaner Assigned",
			Message:   fmt.Sprintf("Cleaner %s has been assigned to your %s request for %s at %s.", cleaner.Name, b.BookingType.Display(), b.PreferredDate.Format("2006-01-02"), b.PreferredTime),
			Kind:      model.KindBookingAccepted,
			BookingID: &b.ID,
		}); err != nil {
			return err
		}
		if err := scope.AddNotification(model.Notification{
			UserID:    cleanerID,
			Title:     "Task Assigned to You",
			Message:   fmt.Sprintf("An administrator assigned you the %s task for %s - %s on %s at %s.", b.BookingType.Display(), b.Block, b.RoomNumber, b.PreferredDate.Format("2006-01-02"), b.PreferredTime),
			Kind:      model.KindGeneral,
			BookingID: &b.ID,
		}); err != nil {
			return err
		}
		assigned = *b
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("assignment: admin %d force-assigned cleaner %d to booking %d", adminID, cleanerID, bookingID)
	a.dispatchAssigned(ctx, &assigned, cleaner)
	return &assigned, nil
}

func (a *AssignmentController) dispatchAssigned(ctx context.Context, b *model.Booking, cleaner model.User) {
	occurred := time.Now().UTC().Format(time.RFC3339)
	student, err := a.store.GetUser(ctx, b.StudentID)
	if err != nil {
		student = model.User{ID: b.StudentID}
	}
	a.dispatcher.Notify(ctx, queue.NotificationEvent{
		Kind:        queue.EventBookingAssigned,
		UserID:      b.StudentID,
		Email:       student.Email,
		Phone:       student.Phone,
		BookingID:   b.ID,
		BookingType: string(b.BookingType),
		Block:       b.Block,
		RoomNumber:  b.RoomNumber,
		Date:        b.PreferredDate.Format("2006-01-02"),
		Time:        b.PreferredTime,
		Title:       "Cleaner Assigned",
		Message:     fmt.Sprintf("Cleaner %s has been assigned to your cleaning request.", cleaner.Name),
		OccurredAt:  occurred,
	})
	a.dispatcher.Notify(ctx, queue.NotificationEvent{
		Kind:        queue.EventBookingAssigned,
		UserID:      cleaner.ID,
		Email:       cleaner.Email,
		Phone:       cleaner.Phone,
		BookingID:   b.ID,
		BookingType: string(b.BookingType),
		Block:       b.Block,
		RoomNumber:  b.RoomNumber,
		Date:        b.PreferredDate.Format("2006-01-02"),
		Time:        b.PreferredTime,
		Title:       "Task Assigned to You",
		Message:     fmt.Sprintf("You were assigned the %s task for %s - %s.", b.BookingType.Display(), b.Block, b.RoomNumber),
		OccurredAt:  occurred,
	})
}
