// Package eventbus provides an in-process pub/sub bus for record events.
// Handlers publish after the store commits; subscribers consume
// asynchronously on a single goroutine so SQLite sees one writer.
package eventbus

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"github.com/matthewbaird/opsconsole/internal/event"
)

// Handler processes a domain event. Implementations must be safe for
// concurrent calls from different goroutines.
type Handler interface {
	HandleEvent(ctx context.Context, evt event.DomainEvent) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, evt event.DomainEvent) error

func (f HandlerFunc) HandleEvent(ctx context.Context, evt event.DomainEvent) error {
	return f(ctx, evt)
}

// Stats counts what the bus has seen since it was created.
type Stats struct {
	Published uint64
	Dropped   uint64
	Delivered uint64
	Failed    uint64
}

// Bus dispatches events from a buffered channel to every subscriber in
// subscription order.
type Bus struct {
	mu          sync.RWMutex
	subscribers []namedHandler
	events      chan event.DomainEvent
	done        chan struct{}
	pending     sync.WaitGroup
	closeOnce   sync.Once

	published, dropped, delivered, failed atomic.Uint64
}

type namedHandler struct {
	name    string
	handler Handler
}

// New creates a Bus with the given channel buffer size.
func New(bufSize int) *Bus {
	if bufSize < 1 {
		bufSize = 256
	}
	return &Bus{
		events: make(chan event.DomainEvent, bufSize),
		done:   make(chan struct{}),
	}
}

// Subscribe registers a named handler. Handlers added after Start see only
// later events.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, namedHandler{name: name, handler: h})
}

// Publish queues an event without blocking. When the buffer is full the
// event is dropped and logged.
func (b *Bus) Publish(_ context.Context, evt event.DomainEvent) {
	b.pending.Add(1)
	select {
	case b.events <- evt:
		b.published.Add(1)
	default:
		b.pending.Done()
		b.dropped.Add(1)
		log.Printf("eventbus: buffer full, dropping event %s (%s)", evt.EventType, evt.ID)
	}
}

// Start runs the consumer goroutine until ctx is cancelled or Stop is
// called. Queued events are drained before it exits.
func (b *Bus) Start(ctx context.Context) {
	go func() {
		defer close(b.done)
		for {
			select {
			case evt, ok := <-b.events:
				if !ok {
					return
				}
				b.dispatch(ctx, evt)
			case <-ctx.Done():
				b.drain(context.WithoutCancel(ctx))
				return
			}
		}
	}()
}

func (b *Bus) drain(ctx context.Context) {
	for {
		select {
		case evt, ok := <-b.events:
			if !ok {
				return
			}
			b.dispatch(ctx, evt)
		default:
			return
		}
	}
}

// Wait blocks until every event published so far has been dispatched.
func (b *Bus) Wait() {
	b.pending.Wait()
}

// Stop closes the bus and waits for the consumer goroutine to finish. The
// bus must have been started. Publishing after Stop panics.
func (b *Bus) Stop() {
	b.closeOnce.Do(func() { close(b.events) })
	<-b.done
}

// Stats returns a snapshot of the bus counters.
func (b *Bus) Stats() Stats {
	return Stats{
		Published: b.published.Load(),
		Dropped:   b.dropped.Load(),
		Delivered: b.delivered.Load(),
		Failed:    b.failed.Load(),
	}
}

func (b *Bus) dispatch(ctx context.Context, evt event.DomainEvent) {
	defer b.pending.Done()

	b.mu.RLock()
	subs := b.subscribers
	b.mu.RUnlock()

	for _, s := range subs {
		if err := s.handler.HandleEvent(ctx, evt); err != nil {
			b.failed.Add(1)
			log.Printf("eventbus: %s handler error for %s: %v", s.name, evt.EventType, err)
			continue
		}
		b.delivered.Add(1)
	}
}
