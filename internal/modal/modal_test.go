package modal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type rec struct{ ID string }

func TestCoordinator_InitialClosed(t *testing.T) {
	c := New[rec]()
	st := c.Current()
	assert.Equal(t, Closed, st.Kind)
	assert.False(t, st.Open())
}

func TestCoordinator_Transitions(t *testing.T) {
	c := New[rec]()

	c.OpenCreate()
	assert.Equal(t, Creating, c.Current().Kind)

	c.OpenEdit(rec{ID: "a"})
	st := c.Current()
	assert.Equal(t, Editing, st.Kind)
	assert.Equal(t, "a", st.Subject.ID)

	c.OpenView(rec{ID: "b"})
	st = c.Current()
	assert.Equal(t, Viewing, st.Kind, "opening replaces the previous modal")
	assert.Equal(t, "b", st.Subject.ID)

	c.Close()
	assert.Equal(t, Closed, c.Current().Kind)
}

func TestCoordinator_CloseIdempotent(t *testing.T) {
	c := New[rec]()
	c.Close()
	c.Close()
	assert.Equal(t, State[rec]{}, c.Current())
}

func TestCoordinator_TicketsDiscardStaleEffects(t *testing.T) {
	c := New[rec]()
	first := c.OpenEdit(rec{ID: "a"})
	second := c.OpenCreate()
	assert.NotEqual(t, first, second)

	assert.False(t, c.CloseTicket(first), "stale ticket must not close the new modal")
	assert.Equal(t, Creating, c.Current().Kind)

	assert.True(t, c.CloseTicket(second))
	assert.Equal(t, Closed, c.Current().Kind)
	assert.False(t, c.CloseTicket(second), "already closed")
	assert.False(t, c.CloseTicket(0))
}

func TestCoordinator_ReopenSameRecordGetsNewTicket(t *testing.T) {
	c := New[rec]()
	t1 := c.OpenEdit(rec{ID: "a"})
	c.Close()
	t2 := c.OpenEdit(rec{ID: "a"})

	assert.False(t, c.IsCurrent(t1))
	assert.True(t, c.IsCurrent(t2))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "creating", Creating.String())
	assert.Equal(t, "editing", Editing.String())
	assert.Equal(t, "viewing", Viewing.String())
}
