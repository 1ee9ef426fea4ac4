// Package modal tracks the single modal slot of an entity screen.
//
// Every open issues a new Ticket. Work started against a modal (a submit in
// flight) holds on to its ticket and closes through CloseTicket, which does
// nothing once the slot has been closed or reassigned in the meantime.
package modal

import "sync"

// Kind is the discriminant of the modal state.
type Kind int

const (
	Closed Kind = iota
	Creating
	Editing
	Viewing
)

func (k Kind) String() string {
	switch k {
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	case Viewing:
		return "viewing"
	default:
		return "closed"
	}
}

// Ticket identifies one opening of the modal slot. The zero Ticket never
// matches an open modal.
type Ticket uint64

// State is the current modal value. Subject is set for Editing and Viewing
// and is the record as it was in the collection when the modal opened.
type State[V any] struct {
	Kind    Kind
	Subject V
	Ticket  Ticket
}

// Open reports whether a modal is showing.
func (s State[V]) Open() bool { return s.Kind != Closed }

// Coordinator is the state machine Closed | Creating | Editing(r) | Viewing(r).
// Permission checks happen in the caller before opening.
type Coordinator[V any] struct {
	mu    sync.Mutex
	state State[V]
	next  Ticket
}

// New returns a Coordinator in the Closed state.
func New[V any]() *Coordinator[V] {
	return &Coordinator[V]{}
}

// OpenCreate replaces any open modal with Creating.
func (c *Coordinator[V]) OpenCreate() Ticket {
	var zero V
	return c.open(Creating, zero)
}

// OpenEdit replaces any open modal with Editing(r).
func (c *Coordinator[V]) OpenEdit(r V) Ticket {
	return c.open(Editing, r)
}

// OpenView replaces any open modal with Viewing(r).
func (c *Coordinator[V]) OpenView(r V) Ticket {
	return c.open(Viewing, r)
}

func (c *Coordinator[V]) open(k Kind, r V) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	c.state = State[V]{Kind: k, Subject: r, Ticket: c.next}
	return c.next
}

// Close moves to Closed. Closing a closed coordinator is a no-op.
func (c *Coordinator[V]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State[V]{}
}

// CloseTicket closes the modal only if t is still the open ticket and
// reports whether it did.
func (c *Coordinator[V]) CloseTicket(t Ticket) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t == 0 || c.state.Kind == Closed || c.state.Ticket != t {
		return false
	}
	c.state = State[V]{}
	return true
}

// Current returns the current state.
func (c *Coordinator[V]) Current() State[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsCurrent reports whether t is the ticket of the open modal.
func (c *Coordinator[V]) IsCurrent(t Ticket) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return t != 0 && c.state.Kind != Closed && c.state.Ticket == t
}
