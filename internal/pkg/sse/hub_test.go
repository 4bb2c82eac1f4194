package sse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishToChannel(t *testing.T) {
	hub := NewHub()
	ctx := context.Background()

	sup, cleanupSup := hub.Subscribe("supervisors")
	defer cleanupSup()
	other, cleanupOther := hub.Subscribe("employee:1")
	defer cleanupOther()

	require.NoError(t, hub.Publish(ctx, "supervisors", Event{Event: "attendance-marked", Data: "x"}))

	got := <-sup
	assert.Equal(t, "supervisors", got.Channel)
	assert.Equal(t, "attendance-marked", got.Event)
	assert.Len(t, other, 0)
	assert.Equal(t, 1, hub.SubscriberCount("supervisors"))
	assert.Equal(t, 1, hub.SubscriberCount("employee:1"))
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ctx := context.Background()
	_, cleanup := hub.Subscribe("supervisors")
	defer cleanup()

	var lastErr error
	for i := 0; i < hub.bufferSize+1; i++ {
		lastErr = hub.Publish(ctx, "supervisors", Event{Event: "e"})
	}
	assert.ErrorIs(t, lastErr, ErrDropped)
}

func TestHub_CleanupIsIdempotent(t *testing.T) {
	hub := NewHub()
	ch, cleanup := hub.Subscribe("supervisors")
	cleanup()
	cleanup()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount("supervisors"))
	assert.NoError(t, hub.Publish(context.Background(), "supervisors", Event{}))
}

func TestHub_PublishHonoursCancelledContext(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, hub.Publish(ctx, "supervisors", Event{}), context.Canceled)
}
