package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/hostel-cleaning-service/internal/model"
	"github.com/iliyamo/hostel-cleaning-service/internal/queue"
)

// StatusTransitioner drives the explicit lifecycle edges that are not
// covered by claiming or force-assignment: starting work, completing it,
// and cancelling.  The graph check and the authorization check are
// separate on purpose so callers can tell an impossible move (409) from
// a move they are not allowed to make (403).
type StatusTransitioner struct {
	store      Store
	dispatcher Dispatcher
}

// NewStatusTransitioner constructs a StatusTransitioner.
func NewStatusTransitioner(store Store, dispatcher Dispatcher) *StatusTransitioner {
	if store == nil || dispatcher == nil {
		panic("nil dependency passed to NewStatusTransitioner")
	}
	return &StatusTransitioner{store: store, dispatcher: dispatcher}
}

// Transition moves the booking to target on behalf of actor.
//
// Rules, checked in order under the row lock:
//   - the edge must exist in the lifecycle graph, else ErrInvalidTransition;
//   - a move into a cleaner-carrying status needs a cleaner already set,
//     else ErrInvalidTransition (assignment happens via claim or
//     force-assign, never through a bare status write);
//   - admins may drive any remaining edge; the assigned cleaner may drive
//     the forward edges of their own task; the requesting student may only
//     cancel their own booking.  Everything else is ErrForbidden.
//
// Cancelling clears the assigned cleaner so the cleaner column stays
// consistent with the status.
func (t *StatusTransitioner) Transition(ctx context.Context, bookingID uint64, actor Actor, target model.Status) (*model.Booking, error) {
	if !target.IsValid() {
		return nil, ErrInvalidTransition
	}

	var updated model.Booking
	err := t.store.WithBooking(ctx, bookingID, func(b *model.Booking, scope TxScope) error {
		if !b.Status.CanTransitionTo(target) {
			return ErrInvalidTransition
		}
		if target.RequiresCleaner() && b.CleanerID == nil {
			return ErrInvalidTransition
		}
		if err := authorizeTransition(b, actor, target); err != nil {
			return err
		}

		b.Status = target
		if target == model.StatusCancelled {
			b.CleanerID = nil
		}
		b.UpdatedAt = time.Now().UTC()
		if err := scope.UpdateBooking(b); err != nil {
			return err
		}
		if target == model.StatusCancelled {
			// A cancelled booking can no longer be claimed; drop any
			// tickets still sitting in cleaner inboxes.
			if _, err := scope.DeleteClaimTickets(0); err != nil {
				return err
			}
		}

		for _, n := range transitionNotifications(b, actor, target) {
			if err := scope.AddNotification(n); err != nil {
				return err
			}
		}
		updated = *b
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.dispatchTransition(ctx, &updated, target)
	return &updated, nil
}

// authorizeTransition enforces who may drive which edge.  The graph edge
// itself has already been validated.
func authorizeTransition(b *model.Booking, actor Actor, target model.Status) error {
	switch actor.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleCleaner:
		if !b.AssignedTo(actor.ID) {
			return ErrForbidden
		}
		if target == model.StatusInProgress || target == model.StatusCompleted {
			return nil
		}
		return ErrForbidden
	case model.RoleStudent:
		if b.StudentID != actor.ID {
			return ErrForbidden
		}
		if target == model.StatusCancelled {
			return nil
		}
		return ErrForbidden
	default:
		return ErrForbidden
	}
}

// transitionNotifications builds the in-app rows for the student.  The
// started and completed edges get specific wording; everything else gets
// the generic status line.
func transitionNotifications(b *model.Booking, actor Actor, target model.Status) []model.Notification {
	room := fmt.Sprintf("%s - %s", b.Block, b.RoomNumber)
	switch target {
	case model.StatusInProgress:
		return []model.Notification{{
			UserID:    b.StudentID,
			Title:     "Cleaning Started",
			Message:   fmt.Sprintf("Your %s for %s is now in progress.", b.BookingType.Display(), room),
			Kind:      model.KindGeneral,
			BookingID: &b.ID,
		}}
	case model.StatusCompleted:
		return []model.Notification{{
			UserID:    b.StudentID,
			Title:     "Cleaning Completed",
			Message:   fmt.Sprintf("Your %s for %s has been completed. Please proceed with payment.", b.BookingType.Display(), room),
			Kind:      model.KindBookingCompleted,
			BookingID: &b.ID,
		}}
	case model.StatusCancelled:
		// The student initiated or already knows about their own
		// cancellation; only notify them when somebody else cancelled.
		if actor.Role == model.RoleStudent {
			return nil
		}
		return []model.Notification{{
			UserID:    b.StudentID,
			Title:     "Booking Cancelled",
			Message:   fmt.Sprintf("Your %s request for %s has been cancelled.", b.BookingType.Display(), room),
			Kind:      model.KindGeneral,
			BookingID: &b.ID,
		}}
	default:
		return []model.Notification{{
			UserID:    b.StudentID,
			Title:     "Booking Updated",
			Message:   fmt.Sprintf("Your %s request for %s is now %s.", b.BookingType.Display(), room, target),
			Kind:      model.KindGeneral,
			BookingID: &b.ID,
		}}
	}
}

func (t *StatusTransitioner) dispatchTransition(ctx context.Context, b *model.Booking, target model.Status) {
	kind := queue.EventStatusChanged
	title := "Booking Status Updated"
	switch target {
	case model.StatusInProgress:
		kind = queue.EventBookingStarted
		title = "Cleaning Started"
	case model.StatusCompleted:
		kind = queue.EventBookingCompleted
		title = "Cleaning Completed"
	}
	student, err := t.store.GetUser(ctx, b.StudentID)
	if err != nil {
		student = model.User{ID: b.StudentID}
	}
	t.dispatcher.Notify(ctx, queue.NotificationEvent{
		Kind:        kind,
		UserID:      b.StudentID,
		Email:       student.Email,
		Phone:       student.Phone,
		BookingID:   b.ID,
		BookingType: string(b.BookingType),
		Block:       b.Block,
		RoomNumber:  b.RoomNumber,
		Date:        b.PreferredDate.Format("2006-01-02"),
		Time:        b.PreferredTime,
		Title:       title,
		Message:     fmt.Sprintf("Your booking is now %s.", b.Status),
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	})
}
