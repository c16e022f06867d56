package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/hostel-cleaning-service/internal/model"
	"github.com/iliyamo/hostel-cleaning-service/internal/queue"
)

func waitingBooking(id, studentID uint64) model.Booking {
	return model.Booking{
		ID:            id,
		StudentID:     studentID,
		BookingType:   model.TypeDeep,
		PreferredDate: time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC),
		PreferredTime: "10:30",
		Urgency:       model.UrgencyNormal,
		Block:         "25E",
		RoomNumber:    "25E-04-10",
		Status:        model.StatusWaitingForCleaner,
		PaymentStatus: model.PaymentPending,
	}
}

func cleanerUser(id uint64, name string) model.User {
	return model.User{ID: id, Name: name, Email: name + "@campus.test", Role: model.RoleCleaner, IsActive: true}
}

func TestAcceptAssignsWinnerAndSettlesTickets(t *testing.T) {
	store := newMemStore()
	store.addUser(model.User{ID: 1, Name: "Student", Email: "s@campus.test", Role: model.RoleStudent, IsActive: true})
	store.addUser(cleanerUser(10, "amir"))
	store.addUser(cleanerUser(11, "lina"))
	store.addUser(cleanerUser(12, "rafiq"))
	store.addBooking(waitingBooking(7, 1))
	for _, cid := range []uint64{10, 11, 12} {
		store.addClaimTicket(7, cid)
	}
	disp := &recordingDispatcher{}
	resolver := NewClaimResolver(store, disp)

	b, err := resolver.Accept(context.Background(), 7, 11)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if b.Status != model.StatusAssigned {
		t.Errorf("status = %s, want ASSIGNED", b.Status)
	}
	if b.CleanerID == nil || *b.CleanerID != 11 {
		t.Errorf("cleaner = %v, want 11", b.CleanerID)
	}

	tickets := store.claimTickets(7)
	if len(tickets) != 1 {
		t.Fatalf("claim tickets left = %d, want 1 (the winner's)", len(tickets))
	}
	if tickets[0].UserID != 11 || !tickets[0].IsRead || tickets[0].Title != "Task Accepted" {
		t.Errorf("winner ticket not resolved: %+v", tickets[0])
	}

	var accepted bool
	for _, n := range store.notificationsFor(1) {
		if n.Kind == model.KindBookingAccepted {
			accepted = true
		}
	}
	if !accepted {
		t.Error("student did not receive a BOOKING_ACCEPTED notification")
	}

	claimed := disp.byKind(queue.EventBookingClaimed)
	if len(claimed) != 1 || claimed[0].UserID != 1 {
		t.Errorf("claimed events = %+v, want one for the student", claimed)
	}
}

func TestAcceptExactlyOneWinner(t *testing.T) {
	const contenders = 32

	store := newMemStore()
	store.addUser(model.User{ID: 1, Role: model.RoleStudent, IsActive: true})
	store.addBooking(waitingBooking(3, 1))
	for i := uint64(0); i < contenders; i++ {
		store.addUser(cleanerUser(100+i, "c"))
		store.addClaimTicket(3, 100+i)
	}
	resolver := NewClaimResolver(store, NopDispatcher{})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []uint64
		losses  int
	)
	start := make(chan struct{})
	for i := uint64(0); i < contenders; i++ {
		wg.Add(1)
		go func(cleanerID uint64) {
			defer wg.Done()
			<-start
			_, err := resolver.Accept(context.Background(), 3, cleanerID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, cleanerID)
			case errors.Is(err, ErrAlreadyClaimed):
				losses++
			default:
				t.Errorf("cleaner %d: unexpected error %v", cleanerID, err)
			}
		}(100 + i)
	}
	close(start)
	wg.Wait()

	if len(winners) != 1 {
		t.Fatalf("winners = %v, want exactly one", winners)
	}
	if losses != contenders-1 {
		t.Errorf("losses = %d, want %d", losses, contenders-1)
	}
	b := store.booking(3)
	if b.CleanerID == nil || *b.CleanerID != winners[0] {
		t.Errorf("booking cleaner = %v, want winner %d", b.CleanerID, winners[0])
	}
	if got := store.claimTickets(3); len(got) != 1 {
		t.Errorf("claim tickets left = %d, want 1", len(got))
	}
}

func TestAcceptRepeatCallsStayRejected(t *testing.T) {
	store := newMemStore()
	store.addUser(model.User{ID: 1, Role: model.RoleStudent, IsActive: true})
	store.addUser(cleanerUser(10, "amir"))
	store.addUser(cleanerUser(11, "lina"))
	store.addBooking(waitingBooking(5, 1))
	resolver := NewClaimResolver(store, NopDispatcher{})

	if _, err := resolver.Accept(context.Background(), 5, 10); err != nil {
		t.Fatalf("first Accept: %v", err)
	}
	// Both the loser and the winner itself must get the same answer.
	if _, err := resolver.Accept(context.Background(), 5, 11); !errors.Is(err, ErrAlreadyClaimed) {
		t.Errorf("loser retry: err = %v, want ErrAlreadyClaimed", err)
	}
	if _, err := resolver.Accept(context.Background(), 5, 10); !errors.Is(err, ErrAlreadyClaimed) {
		t.Errorf("winner retry: err = %v, want ErrAlreadyClaimed", err)
	}
	b := store.booking(5)
	if b.CleanerID == nil || *b.CleanerID != 10 {
		t.Errorf("cleaner = %v, want original winner 10", b.CleanerID)
	}
}

func TestAcceptMissingBooking(t *testing.T) {
	store := newMemStore()
	store.addUser(cleanerUser(10, "amir"))
	resolver := NewClaimResolver(store, NopDispatcher{})

	if _, err := resolver.Accept(context.Background(), 99, 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAcceptUnknownCleaner(t *testing.T) {
	store := newMemStore()
	store.addUser(model.User{ID: 1, Role: model.RoleStudent, IsActive: true})
	store.addBooking(waitingBooking(5, 1))
	resolver := NewClaimResolver(store, NopDispatcher{})

	if _, err := resolver.Accept(context.Background(), 5, 404); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if got := store.booking(5); got.Status != model.StatusWaitingForCleaner {
		t.Errorf("booking mutated: status = %s", got.Status)
	}
}
