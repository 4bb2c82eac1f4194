package notification

import (
	"context"
)

// Publisher delivers one event to one channel. Implementations are the transport.
type Publisher interface {
	Publish(ctx context.Context, channel string, event Event) error
}

// Notifier is what the attendance workflows call after a successful mutation.
// It never reports failure to the caller.
type Notifier interface {
	Notify(ctx context.Context, event Event, channels ...string)
}
