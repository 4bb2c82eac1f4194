package notification

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/sse"
)

// Config holds notifier configuration
type Config struct {
	PublishTimeout time.Duration // default: 200ms
	WorkerCount    int           // default: 2
	QueueSize      int           // default: 256
}

type delivery struct {
	channel string
	event   notification.Event
}

// Notifier hands events to background workers that publish with a bounded timeout.
// Notify never blocks on the transport and never reports failure.
type Notifier struct {
	publisher notification.Publisher
	config    Config
	logger    *slog.Logger

	queue   chan delivery
	wg      sync.WaitGroup
	stopCh  chan struct{}
	stopped atomic.Bool
	once    sync.Once
}

// NewNotifier creates a notifier and starts its workers
func NewNotifier(publisher notification.Publisher, logger *slog.Logger, cfg Config) *Notifier {
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 200 * time.Millisecond
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if logger == nil {
		logger = slog.Default()
	}

	n := &Notifier{
		publisher: publisher,
		config:    cfg,
		logger:    logger,
		queue:     make(chan delivery, cfg.QueueSize),
		stopCh:    make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		n.wg.Add(1)
		go n.worker(i)
	}

	return n
}

// Notify implements notification.Notifier.
func (n *Notifier) Notify(ctx context.Context, event notification.Event, channels ...string) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	for _, channel := range channels {
		if n.stopped.Load() {
			n.logger.WarnContext(ctx, "notifier stopped, event dropped", "channel", channel, "event", event.Type)
			return
		}
		select {
		case n.queue <- delivery{channel: channel, event: event}:
		default:
			n.logger.WarnContext(ctx, "notification queue full, event dropped",
				"channel", channel, "event", event.Type, "employee_id", event.EmployeeRef)
		}
	}
}

func (n *Notifier) worker(id int) {
	defer n.wg.Done()

	for {
		select {
		case d := <-n.queue:
			n.publish(d)
		case <-n.stopCh:
			// drain what is already queued
			for {
				select {
				case d := <-n.queue:
					n.publish(d)
				default:
					return
				}
			}
		}
	}
}

func (n *Notifier) publish(d delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), n.config.PublishTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				n.logger.Error("publisher panicked", "channel", d.channel, "event", d.event.Type, "panic", p)
				done <- nil
			}
		}()
		done <- n.publisher.Publish(ctx, d.channel, d.event)
	}()

	select {
	case err := <-done:
		if err != nil {
			n.logger.Warn("publish failed",
				"channel", d.channel, "event", d.event.Type, "employee_id", d.event.EmployeeRef, "error", err)
		}
	case <-ctx.Done():
		n.logger.Warn("publish timed out",
			"channel", d.channel, "event", d.event.Type, "employee_id", d.event.EmployeeRef, "timeout", n.config.PublishTimeout)
	}
}

// Stop flushes queued events and stops the workers
func (n *Notifier) Stop() {
	n.once.Do(func() {
		n.stopped.Store(true)
		close(n.stopCh)
		n.wg.Wait()
	})
}

// HubPublisher adapts the in-process SSE hub to notification.Publisher.
type HubPublisher struct {
	hub *sse.Hub
}

func NewHubPublisher(hub *sse.Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

// Publish implements notification.Publisher.
func (p *HubPublisher) Publish(ctx context.Context, channel string, event notification.Event) error {
	return p.hub.Publish(ctx, channel, sse.Event{
		Event: string(event.Type),
		Data:  event,
	})
}
