package service

import (
	"context"

	"github.com/iliyamo/hostel-cleaning-service/internal/queue"
)

// Dispatcher fans lifecycle events out to external channels (email, SMS,
// push).  It is strictly fire-and-forget: implementations log delivery
// failures and never surface them, so a lost notification can never roll
// back a committed state transition.  The lifecycle operations call
// Notify exactly once per logical event per recipient, after commit.
type Dispatcher interface {
	Notify(ctx context.Context, ev queue.NotificationEvent)
}

// NopDispatcher discards all events.  Used when the broker is not
// configured.
type NopDispatcher struct{}

func (NopDispatcher) Notify(context.Context, queue.NotificationEvent) {}
