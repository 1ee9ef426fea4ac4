package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Confirmer asks staff to confirm deleting subject, an instance of entity.
// A false answer means nothing happens.
type Confirmer interface {
	ConfirmDelete(ctx context.Context, subject, entity string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, subject, entity string) (bool, error)

func (f ConfirmFunc) ConfirmDelete(ctx context.Context, subject, entity string) (bool, error) {
	return f(ctx, subject, entity)
}

// Always answers every confirmation with yes.
func Always(yes bool) Confirmer {
	return ConfirmFunc(func(context.Context, string, string) (bool, error) { return yes, nil })
}

// Prompt is a pending delete confirmation.
type Prompt struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Entity  string `json:"entity"`
	Message string `json:"message"`
}

// DeleteMessage is the confirmation text for deleting subject.
func DeleteMessage(subject, entity string) string {
	return fmt.Sprintf("Delete %s %q? This cannot be undone.", entity, subject)
}

// PromptConfirmer turns ConfirmDelete into a prompt sent to a remote front
// end, then blocks until Answer is called with the prompt id or ctx ends.
type PromptConfirmer struct {
	send func(Prompt)

	mu      sync.Mutex
	pending map[string]chan bool
}

// NewPromptConfirmer creates a confirmer that delivers prompts through send.
// send must not block on the answer.
func NewPromptConfirmer(send func(Prompt)) *PromptConfirmer {
	return &PromptConfirmer{send: send, pending: make(map[string]chan bool)}
}

func (p *PromptConfirmer) ConfirmDelete(ctx context.Context, subject, entity string) (bool, error) {
	prompt := Prompt{
		ID:      uuid.NewString(),
		Subject: subject,
		Entity:  entity,
		Message: DeleteMessage(subject, entity),
	}
	ch := make(chan bool, 1)

	p.mu.Lock()
	p.pending[prompt.ID] = ch
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.pending, prompt.ID)
		p.mu.Unlock()
	}()

	p.send(prompt)

	select {
	case yes := <-ch:
		return yes, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Answer resolves the prompt with id. It reports false when no such prompt
// is waiting.
func (p *PromptConfirmer) Answer(id string, yes bool) bool {
	p.mu.Lock()
	ch, ok := p.pending[id]
	if ok {
		delete(p.pending, id)
	}
	p.mu.Unlock()
	if !ok {
		return false
	}
	ch <- yes
	return true
}

// Pending returns how many prompts are waiting for an answer.
func (p *PromptConfirmer) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}
