package service

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/hostel-cleaning-service/internal/model"
	"github.com/iliyamo/hostel-cleaning-service/internal/queue"
)

func seededStore() *memStore {
	store := newMemStore()
	store.addUser(model.User{ID: 1, Name: "Student", Role: model.RoleStudent, IsActive: true})
	store.addUser(model.User{ID: 2, Name: "Other Student", Role: model.RoleStudent, IsActive: true})
	store.addUser(cleanerUser(10, "amir"))
	store.addUser(cleanerUser(11, "lina"))
	store.addUser(model.User{ID: 99, Name: "Admin", Role: model.RoleAdmin, IsActive: true})
	return store
}

func assignedBooking(id, studentID, cleanerID uint64) model.Booking {
	b := waitingBooking(id, studentID)
	b.Status = model.StatusAssigned
	b.CleanerID = &cleanerID
	return b
}

func TestTransitionAuthorizationMatrix(t *testing.T) {
	cases := []struct {
		name    string
		actor   Actor
		target  model.Status
		wantErr error
	}{
		{"assigned cleaner may start", Actor{10, model.RoleCleaner}, model.StatusInProgress, nil},
		{"other cleaner may not start", Actor{11, model.RoleCleaner}, model.StatusInProgress, ErrForbidden},
		{"cleaner may not cancel", Actor{10, model.RoleCleaner}, model.StatusCancelled, ErrForbidden},
		{"owning student may cancel", Actor{1, model.RoleStudent}, model.StatusCancelled, nil},
		{"other student may not cancel", Actor{2, model.RoleStudent}, model.StatusCancelled, ErrForbidden},
		{"student may not start", Actor{1, model.RoleStudent}, model.StatusInProgress, ErrForbidden},
		{"admin may start", Actor{99, model.RoleAdmin}, model.StatusInProgress, nil},
		{"admin may cancel", Actor{99, model.RoleAdmin}, model.StatusCancelled, nil},
		{"unknown role rejected", Actor{5, "JANITOR"}, model.StatusInProgress, ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := seededStore()
			store.addBooking(assignedBooking(1, 1, 10))
			tr := NewStatusTransitioner(store, NopDispatcher{})

			_, err := tr.Transition(context.Background(), 1, tc.actor, tc.target)
			if tc.wantErr == nil && err != nil {
				t.Fatalf("err = %v, want nil", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestTransitionRejectsEdgesOutsideGraph(t *testing.T) {
	cases := []struct {
		name   string
		status model.Status
		target model.Status
	}{
		{"waiting cannot complete", model.StatusWaitingForCleaner, model.StatusCompleted},
		{"assigned cannot complete directly", model.StatusAssigned, model.StatusCompleted},
		{"completed is terminal", model.StatusCompleted, model.StatusCancelled},
		{"cancelled is terminal", model.StatusCancelled, model.StatusAssigned},
		{"no going back", model.StatusInProgress, model.StatusAssigned},
		{"unknown target", model.StatusAssigned, model.Status("SHINY")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := seededStore()
			b := assignedBooking(1, 1, 10)
			b.Status = tc.status
			if !tc.status.RequiresCleaner() {
				b.CleanerID = nil
			}
			store.addBooking(b)
			tr := NewStatusTransitioner(store, NopDispatcher{})

			_, err := tr.Transition(context.Background(), 1, Actor{99, model.RoleAdmin}, tc.target)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("err = %v, want ErrInvalidTransition", err)
			}
			if got := store.booking(1); got.Status != tc.status {
				t.Errorf("status mutated to %s on rejected transition", got.Status)
			}
		})
	}
}

func TestTransitionIntoAssignedNeedsCleaner(t *testing.T) {
	store := seededStore()
	store.addBooking(waitingBooking(1, 1))
	tr := NewStatusTransitioner(store, NopDispatcher{})

	// Even an admin cannot put a booking in ASSIGNED through a bare
	// status write; assignment goes through claim or force-assign.
	_, err := tr.Transition(context.Background(), 1, Actor{99, model.RoleAdmin}, model.StatusAssigned)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestCancelClearsCleanerAndTickets(t *testing.T) {
	store := seededStore()
	store.addBooking(assignedBooking(1, 1, 10))
	store.addClaimTicket(1, 11)
	tr := NewStatusTransitioner(store, NopDispatcher{})

	b, err := tr.Transition(context.Background(), 1, Actor{1, model.RoleStudent}, model.StatusCancelled)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if b.CleanerID != nil {
		t.Errorf("cleaner = %v, want nil after cancel", b.CleanerID)
	}
	if got := store.claimTickets(1); len(got) != 0 {
		t.Errorf("claim tickets left = %d, want 0", len(got))
	}
}

func TestCompletionNotifiesStudent(t *testing.T) {
	store := seededStore()
	b := assignedBooking(1, 1, 10)
	b.Status = model.StatusInProgress
	store.addBooking(b)
	disp := &recordingDispatcher{}
	tr := NewStatusTransitioner(store, disp)

	if _, err := tr.Transition(context.Background(), 1, Actor{10, model.RoleCleaner}, model.StatusCompleted); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	var completed bool
	for _, n := range store.notificationsFor(1) {
		if n.Kind == model.KindBookingCompleted {
			completed = true
		}
	}
	if !completed {
		t.Error("student did not receive a BOOKING_COMPLETED notification")
	}
	if evs := disp.byKind(queue.EventBookingCompleted); len(evs) != 1 {
		t.Errorf("completed events = %d, want 1", len(evs))
	}
}

// The happy path end to end: claim, start, complete.
func TestLifecycleHappyPath(t *testing.T) {
	store := seededStore()
	store.addBooking(waitingBooking(1, 1))
	store.addClaimTicket(1, 10)
	store.addClaimTicket(1, 11)
	disp := &recordingDispatcher{}
	resolver := NewClaimResolver(store, disp)
	tr := NewStatusTransitioner(store, disp)

	if _, err := resolver.Accept(context.Background(), 1, 10); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if _, err := tr.Transition(context.Background(), 1, Actor{10, model.RoleCleaner}, model.StatusInProgress); err != nil {
		t.Fatalf("start: %v", err)
	}
	b, err := tr.Transition(context.Background(), 1, Actor{10, model.RoleCleaner}, model.StatusCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if b.Status != model.StatusCompleted {
		t.Errorf("status = %s, want COMPLETED", b.Status)
	}
	if b.CleanerID == nil || *b.CleanerID != 10 {
		t.Errorf("cleaner = %v, want 10 on completion", b.CleanerID)
	}

	// One external event per lifecycle step for the student.
	for _, kind := range []string{queue.EventBookingClaimed, queue.EventBookingStarted, queue.EventBookingCompleted} {
		if evs := disp.byKind(kind); len(evs) != 1 {
			t.Errorf("%s events = %d, want 1", kind, len(evs))
		}
	}
}
