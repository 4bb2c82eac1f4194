package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/office-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/office-backend-go/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu    sync.Mutex
	got   []string
	err   error
	block bool
}

func (p *recordingPublisher) Publish(ctx context.Context, channel string, event notification.Event) error {
	if p.block {
		<-ctx.Done()
		return ctx.Err()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, channel+"/"+string(event.Type))
	return p.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifier_DeliversToEveryChannel(t *testing.T) {
	// Setup
	pub := &recordingPublisher{}
	n := NewNotifier(pub, quietLogger(), Config{WorkerCount: 1})

	// Act
	n.Notify(context.Background(), notification.Event{Type: notification.TypeLeaveApproved},
		notification.ChannelSupervisors, notification.EmployeeChannel("emp-1"))
	n.Stop()

	// Assert
	assert.ElementsMatch(t, []string{
		"supervisors/leave-approved",
		"employee:emp-1/leave-approved",
	}, pub.got)
}

func TestNotifier_SwallowsFailures(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("transport down")}
	n := NewNotifier(pub, quietLogger(), Config{})

	assert.NotPanics(t, func() {
		n.Notify(context.Background(), notification.Event{Type: notification.TypeAttendanceMarked}, notification.ChannelSupervisors)
	})
	n.Stop()
	assert.Len(t, pub.got, 1)
}

func TestNotifier_NotifyDoesNotWaitForSlowTransport(t *testing.T) {
	pub := &recordingPublisher{block: true}
	n := NewNotifier(pub, quietLogger(), Config{PublishTimeout: 50 * time.Millisecond, WorkerCount: 1, QueueSize: 4})

	start := time.Now()
	for i := 0; i < 10; i++ {
		n.Notify(context.Background(), notification.Event{Type: notification.TypeAttendanceMarked}, notification.ChannelSupervisors)
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	n.Stop()
}

func TestNotifier_AfterStopDrops(t *testing.T) {
	pub := &recordingPublisher{}
	n := NewNotifier(pub, quietLogger(), Config{})
	n.Stop()
	n.Stop()

	n.Notify(context.Background(), notification.Event{Type: notification.TypeAttendanceMarked}, notification.ChannelSupervisors)
	assert.Empty(t, pub.got)
}

func TestHubPublisher(t *testing.T) {
	hub := sse.NewHub()
	ch, cleanup := hub.Subscribe(notification.ChannelSupervisors)
	defer cleanup()

	err := NewHubPublisher(hub).Publish(context.Background(), notification.ChannelSupervisors,
		notification.Event{Type: notification.TypeAttendanceUpdated, EmployeeRef: "emp-1"})
	require.NoError(t, err)

	got := <-ch
	assert.Equal(t, "attendance-updated", got.Event)
	ev, ok := got.Data.(notification.Event)
	require.True(t, ok)
	assert.Equal(t, "emp-1", ev.EmployeeRef)
}
