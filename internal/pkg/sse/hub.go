package sse

import (
	"context"
	"errors"
	"sync"
)

// ErrDropped is returned when at least one subscriber buffer was full.
var ErrDropped = errors.New("sse: event dropped for a slow subscriber")

// Event represents an SSE event to be sent to subscribers
type Event struct {
	Channel string
	Event   string
	Data    interface{}
}

// Hub manages SSE subscribers per channel and event broadcasting
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	bufferSize  int
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
		bufferSize:  16,
	}
}

// Subscribe registers a new subscriber on a channel and returns the event channel and cleanup function
func (h *Hub) Subscribe(channel string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.bufferSize)

	if h.subscribers[channel] == nil {
		h.subscribers[channel] = make(map[chan Event]struct{})
	}
	h.subscribers[channel][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers[channel], ch)
			close(ch)
			if len(h.subscribers[channel]) == 0 {
				delete(h.subscribers, channel)
			}
		})
	}

	return ch, cleanup
}

// Publish sends an event to every subscriber of a channel without blocking.
// Full subscriber buffers are skipped and reported as ErrDropped.
func (h *Hub) Publish(ctx context.Context, channel string, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	event.Channel = channel
	dropped := false
	for ch := range h.subscribers[channel] {
		select {
		case ch <- event:
		default:
			dropped = true
		}
	}
	if dropped {
		return ErrDropped
	}
	return nil
}

// SubscriberCount returns the number of active subscribers on a channel
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers[channel])
}
