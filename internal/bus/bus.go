// Package bus carries events from the manager's dispatcher to interested
// consumers. The dispatcher is the only publisher and must never wait on a
// consumer, so every delivery path here is non-blocking.
package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

var _ctx = context.Background()

func SetContext(ctx context.Context) {
	_ctx = ctx
}

// subs is populated during startup, before the first Publish, so it carries
// no lock.
var subs = make(map[string][]func(ctx context.Context, event any))

func Subscribe[T any](name string, fn func(ctx context.Context, event T) error) {
	topic := fmt.Sprintf("%T", *new(T))
	subs[topic] = append(subs[topic], func(ctx context.Context, event any) {
		if err := fn(ctx, event.(T)); err != nil {
			slog.Error("Failed to handle event", "package", "bus", "name", name, "error", err)
		}
	})
}

func Publish[T any](event T) {
	for _, fn := range subs[fmt.Sprintf("%T", event)] {
		fn(_ctx, event)
	}
}

// Hub fans one event stream out to dynamically attached subscribers with
// latest-value delivery: each subscriber holds at most the newest event, and
// a subscriber that has not drained the previous one loses it rather than
// stalling Broadcast. Status consumers only ever want the current snapshot,
// so dropped intermediates are not a loss.
type Hub[T any] struct {
	mu   sync.Mutex
	subs map[chan T]struct{}
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{
		subs: make(map[chan T]struct{}),
	}
}

// Register wires the hub into Publish for T.
func (h *Hub[T]) Register() *Hub[T] {
	Subscribe("bus.Hub", h.Broadcast)
	return h
}

// Broadcast offers event to every subscriber, displacing a stale pending
// event where one sits undrained. It never blocks.
func (h *Hub[T]) Broadcast(_ context.Context, event T) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.subs {
		offer(c, event)
	}

	return nil
}

// offer delivers event on a one-slot channel without waiting. Broadcast is
// serialized by the hub mutex, so once the stale value is drained the send
// cannot lose a race to another publisher.
func offer[T any](c chan T, event T) {
	for {
		select {
		case c <- event:
			return
		default:
		}
		select {
		case <-c:
		default:
		}
	}
}

// Subscribe attaches a one-slot channel carrying the newest broadcast event.
// The cancel func detaches it; pending events do not have to be drained
// first.
func (h *Hub[T]) Subscribe(_ context.Context) (<-chan T, func()) {
	h.mu.Lock()
	c := make(chan T, 1)
	h.subs[c] = struct{}{}
	h.mu.Unlock()

	return c, func() {
		h.mu.Lock()
		delete(h.subs, c)
		h.mu.Unlock()
	}
}
