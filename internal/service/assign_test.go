package service

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/hostel-cleaning-service/internal/model"
	"github.com/iliyamo/hostel-cleaning-service/internal/queue"
)

func TestForceAssignOverridesPriorClaim(t *testing.T) {
	store := newMemStore()
	store.addUser(model.User{ID: 1, Role: model.RoleStudent, IsActive: true})
	store.addUser(cleanerUser(10, "amir"))
	store.addUser(cleanerUser(11, "lina"))
	store.addBooking(waitingBooking(7, 1))
	store.addClaimTicket(7, 10)
	store.addClaimTicket(7, 11)
	disp := &recordingDispatcher{}
	resolver := NewClaimResolver(store, disp)
	controller := NewAssignmentController(store, disp)

	// Cleaner 10 wins the claim first.
	if _, err := resolver.Accept(context.Background(), 7, 10); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	// Admin overrides with cleaner 11. The assignment is final.
	b, err := controller.ForceAssign(context.Background(), 7, 99, 11)
	if err != nil {
		t.Fatalf("ForceAssign: %v", err)
	}
	if b.Status != model.StatusAssigned {
		t.Errorf("status = %s, want ASSIGNED", b.Status)
	}
	if b.CleanerID == nil || *b.CleanerID != 11 {
		t.Errorf("cleaner = %v, want 11", b.CleanerID)
	}
	// Cleaner 10's resolved ticket is gone with the rest.
	if got := store.claimTickets(7); len(got) != 0 {
		t.Errorf("claim tickets left = %d, want 0", len(got))
	}
	// The superseded cleaner can no longer drive the task.
	transitioner := NewStatusTransitioner(store, disp)
	_, err = transitioner.Transition(context.Background(), 7, Actor{ID: 10, Role: model.RoleCleaner}, model.StatusInProgress)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("superseded cleaner transition: err = %v, want ErrForbidden", err)
	}

	assigned := disp.byKind(queue.EventBookingAssigned)
	if len(assigned) != 2 {
		t.Fatalf("assigned events = %d, want 2 (student and cleaner)", len(assigned))
	}
}

func TestForceAssignWhileWaitingClearsAllTickets(t *testing.T) {
	store := newMemStore()
	store.addUser(model.User{ID: 1, Role: model.RoleStudent, IsActive: true})
	store.addUser(cleanerUser(10, "amir"))
	store.addUser(cleanerUser(11, "lina"))
	store.addUser(cleanerUser(12, "rafiq"))
	store.addBooking(waitingBooking(2, 1))
	for _, cid := range []uint64{10, 11, 12} {
		store.addClaimTicket(2, cid)
	}
	controller := NewAssignmentController(store, NopDispatcher{})

	if _, err := controller.ForceAssign(context.Background(), 2, 99, 12); err != nil {
		t.Fatalf("ForceAssign: %v", err)
	}
	if got := store.claimTickets(2); len(got) != 0 {
		t.Errorf("claim tickets left = %d, want 0", len(got))
	}
	// Nobody can claim a force-assigned booking anymore.
	resolver := NewClaimResolver(store, NopDispatcher{})
	if _, err := resolver.Accept(context.Background(), 2, 10); !errors.Is(err, ErrAlreadyClaimed) {
		t.Errorf("claim after force-assign: err = %v, want ErrAlreadyClaimed", err)
	}
}

func TestForceAssignTerminalRejectedWithoutMutation(t *testing.T) {
	store := newMemStore()
	store.addUser(model.User{ID: 1, Role: model.RoleStudent, IsActive: true})
	store.addUser(cleanerUser(11, "lina"))
	b := waitingBooking(4, 1)
	b.Status = model.StatusCancelled
	store.addBooking(b)
	controller := NewAssignmentController(store, NopDispatcher{})

	_, err := controller.ForceAssign(context.Background(), 4, 99, 11)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
	got := store.booking(4)
	if got.Status != model.StatusCancelled || got.CleanerID != nil {
		t.Errorf("terminal booking mutated: %+v", got)
	}
}

func TestForceAssignTargetValidation(t *testing.T) {
	store := newMemStore()
	store.addUser(model.User{ID: 1, Role: model.RoleStudent, IsActive: true})
	inactive := cleanerUser(20, "idle")
	inactive.IsActive = false
	store.addUser(inactive)
	store.addBooking(waitingBooking(6, 1))
	controller := NewAssignmentController(store, NopDispatcher{})

	// A student is not an assignable target.
	if _, err := controller.ForceAssign(context.Background(), 6, 99, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("student target: err = %v, want ErrNotFound", err)
	}
	// Neither is a deactivated cleaner.
	if _, err := controller.ForceAssign(context.Background(), 6, 99, 20); !errors.Is(err, ErrNotFound) {
		t.Errorf("inactive target: err = %v, want ErrNotFound", err)
	}
	// Nor a missing user.
	if _, err := controller.ForceAssign(context.Background(), 6, 99, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing target: err = %v, want ErrNotFound", err)
	}
}

func TestForceAssignSameCleanerIsIdempotent(t *testing.T) {
	store := newMemStore()
	store.addUser(model.User{ID: 1, Role: model.RoleStudent, IsActive: true})
	store.addUser(cleanerUser(11, "lina"))
	store.addBooking(waitingBooking(8, 1))
	controller := NewAssignmentController(store, NopDispatcher{})

	if _, err := controller.ForceAssign(context.Background(), 8, 99, 11); err != nil {
		t.Fatalf("first ForceAssign: %v", err)
	}
	b, err := controller.ForceAssign(context.Background(), 8, 99, 11)
	if err != nil {
		t.Fatalf("repeat ForceAssign: %v", err)
	}
	if b.CleanerID == nil || *b.CleanerID != 11 || b.Status != model.StatusAssigned {
		t.Errorf("repeat assignment changed state: %+v", b)
	}
}
