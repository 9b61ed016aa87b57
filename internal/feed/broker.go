// Package feed fans task change events out to the subscribers of each user.
package feed

import (
	"log/slog"
	"sync"

	"mytodo/internal/service"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 64

type subscriber struct {
	ch     chan service.ChangeEvent
	closed bool
}

// close closes the channel once. Caller holds the broker's mu.
func (s *subscriber) close() {
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Broker is an in-process publish/subscribe hub keyed by user id.
// Publish never blocks: a subscriber whose buffer is full misses the event.
type Broker struct {
	mu     sync.Mutex
	subs   map[string]map[*subscriber]struct{}
	closed bool
	buffer int
	logger *slog.Logger
}

// NewBroker creates a broker. buffer <= 0 uses DefaultBuffer.
func NewBroker(buffer int, logger *slog.Logger) *Broker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Broker{
		subs:   make(map[string]map[*subscriber]struct{}),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a subscriber for userID. The returned cancel func
// unregisters it and closes the channel; it is safe to call more than once.
func (b *Broker) Subscribe(userID string) (<-chan service.ChangeEvent, func()) {
	s := &subscriber{ch: make(chan service.ChangeEvent, b.buffer)}

	b.mu.Lock()
	if b.closed {
		s.close()
		b.mu.Unlock()
		return s.ch, func() {}
	}
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[*subscriber]struct{})
	}
	b.subs[userID][s] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs[userID], s)
			if len(b.subs[userID]) == 0 {
				delete(b.subs, userID)
			}
			s.close()
			b.mu.Unlock()
		})
	}
	return s.ch, cancel
}

// Publish delivers ev to every subscriber of userID.
func (b *Broker) Publish(userID string, ev service.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for s := range b.subs[userID] {
		select {
		case s.ch <- ev:
		default:
			b.logger.Warn("change feed subscriber lagging, event dropped",
				"user_id", userID, "type", ev.Type, "task_id", ev.TaskID())
		}
	}
}

// Close ends every subscription by closing its channel and makes later
// subscriptions start closed. Streams reading from the broker see the end
// of their feed.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	for _, subs := range b.subs {
		for s := range subs {
			s.close()
		}
	}
	b.subs = make(map[string]map[*subscriber]struct{})
}

// Subscribers returns the number of live subscribers for userID.
func (b *Broker) Subscribers(userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[userID])
}
