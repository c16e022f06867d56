package service

import (
	"context"
	"sync"

	"github.com/iliyamo/hostel-cleaning-service/internal/model"
	"github.com/iliyamo/hostel-cleaning-service/internal/queue"
)

// memStore is an in-memory Store used by the service tests. A single
// mutex held for the whole WithBooking callback gives the same
// atomicity the MySQL implementation gets from SELECT ... FOR UPDATE,
// so the race properties are exercised with real goroutines.
type memStore struct {
	mu            sync.Mutex
	bookings      map[uint64]*model.Booking
	users         map[uint64]model.User
	notifications []model.Notification
	nextNotifID   uint64
}

func newMemStore() *memStore {
	return &memStore{
		bookings: make(map[uint64]*model.Booking),
		users:    make(map[uint64]model.User),
	}
}

func (s *memStore) addUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *memStore) addBooking(b model.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := b
	s.bookings[b.ID] = &cp
}

// addClaimTicket seeds the NEW_BOOKING row a cleaner would have
// received at fan-out.
func (s *memStore) addClaimTicket(bookingID, cleanerID uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextNotifID++
	id := bookingID
	s.notifications = append(s.notifications, model.Notification{
		ID:        s.nextNotifID,
		UserID:    cleanerID,
		Title:     "New Cleaning Request",
		Kind:      model.KindNewBooking,
		BookingID: &id,
	})
}

func (s *memStore) WithBooking(ctx context.Context, bookingID uint64, fn func(b *model.Booking, scope TxScope) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[bookingID]
	if !ok {
		return ErrNotFound
	}

	// Snapshot state so an error from fn rolls everything back.
	before := *b
	notifBefore := make([]model.Notification, len(s.notifications))
	copy(notifBefore, s.notifications)

	work := *b
	if err := fn(&work, &memScope{store: s, bookingID: bookingID}); err != nil {
		*b = before
		s.notifications = notifBefore
		return err
	}
	*b = work
	return nil
}

func (s *memStore) GetUser(ctx context.Context, id uint64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (s *memStore) notificationsFor(userID uint64) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (s *memStore) claimTickets(bookingID uint64) []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Notification
	for _, n := range s.notifications {
		if n.Kind == model.KindNewBooking && n.BookingID != nil && *n.BookingID == bookingID {
			out = append(out, n)
		}
	}
	return out
}

func (s *memStore) booking(id uint64) model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.bookings[id]
}

// memScope mutates the store directly; the caller already holds the
// mutex and handles rollback.
type memScope struct {
	store     *memStore
	bookingID uint64
}

func (m *memScope) UpdateBooking(b *model.Booking) error {
	// The callback's working copy is written back by WithBooking.
	return nil
}

func (m *memScope) AddNotification(n model.Notification) error {
	m.store.nextNotifID++
	n.ID = m.store.nextNotifID
	m.store.notifications = append(m.store.notifications, n)
	return nil
}

func (m *memScope) DeleteClaimTickets(exceptUserID uint64) (int64, error) {
	var kept []model.Notification
	var removed int64
	for _, n := range m.store.notifications {
		ticket := n.Kind == model.KindNewBooking && n.BookingID != nil && *n.BookingID == m.bookingID
		if ticket && (exceptUserID == 0 || n.UserID != exceptUserID) {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	m.store.notifications = kept
	return removed, nil
}

func (m *memScope) ResolveClaimTicket(userID uint64, title, message string) error {
	for i := range m.store.notifications {
		n := &m.store.notifications[i]
		if n.Kind == model.KindNewBooking && n.BookingID != nil && *n.BookingID == m.bookingID && n.UserID == userID {
			n.Title = title
			n.Message = message
			n.IsRead = true
		}
	}
	return nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []queue.NotificationEvent
}

func (d *recordingDispatcher) Notify(_ context.Context, ev queue.NotificationEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
}

func (d *recordingDispatcher) byKind(kind string) []queue.NotificationEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []queue.NotificationEvent
	for _, ev := range d.events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
