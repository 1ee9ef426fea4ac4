package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/opsconsole/internal/event"
)

type collector struct {
	mu   sync.Mutex
	seen []string
}

func (c *collector) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seen = append(c.seen, evt.ID)
	return nil
}

func (c *collector) ids() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.seen...)
}

func TestBus_DeliversInOrderToEverySubscriber(t *testing.T) {
	bus := New(8)
	a, b := &collector{}, &collector{}
	bus.Subscribe("a", a)
	bus.Subscribe("b", b)
	bus.Start(context.Background())
	defer bus.Stop()

	for _, id := range []string{"1", "2", "3"} {
		bus.Publish(context.Background(), event.DomainEvent{ID: id})
	}
	bus.Wait()

	assert.Equal(t, []string{"1", "2", "3"}, a.ids())
	assert.Equal(t, []string{"1", "2", "3"}, b.ids())
	assert.Equal(t, Stats{Published: 3, Delivered: 6}, bus.Stats())
}

func TestBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := New(4)
	bus.Subscribe("broken", HandlerFunc(func(context.Context, event.DomainEvent) error {
		return errors.New("boom")
	}))
	ok := &collector{}
	bus.Subscribe("ok", ok)
	bus.Start(context.Background())
	defer bus.Stop()

	bus.Publish(context.Background(), event.DomainEvent{ID: "x"})
	bus.Wait()

	assert.Equal(t, []string{"x"}, ok.ids())
	st := bus.Stats()
	assert.Equal(t, uint64(1), st.Failed)
	assert.Equal(t, uint64(1), st.Delivered)
}

func TestBus_DropsWhenFull(t *testing.T) {
	bus := New(1)
	bus.Publish(context.Background(), event.DomainEvent{ID: "kept"})
	bus.Publish(context.Background(), event.DomainEvent{ID: "dropped"})

	c := &collector{}
	bus.Subscribe("c", c)
	bus.Start(context.Background())
	bus.Wait()
	bus.Stop()

	require.Equal(t, []string{"kept"}, c.ids())
	assert.Equal(t, uint64(1), bus.Stats().Dropped)
}

func TestBus_DrainsOnCancel(t *testing.T) {
	bus := New(4)
	c := &collector{}
	bus.Subscribe("c", c)
	bus.Publish(context.Background(), event.DomainEvent{ID: "1"})
	bus.Publish(context.Background(), event.DomainEvent{ID: "2"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Start(ctx)
	bus.Wait()

	assert.Equal(t, []string{"1", "2"}, c.ids())
}
