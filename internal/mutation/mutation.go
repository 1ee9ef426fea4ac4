// Package mutation wraps a single create, update or delete call: the
// in-flight guard, staff feedback, the authoritative reload of the list and
// closing the modal that started it.
package mutation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/matthewbaird/opsconsole/internal/form"
	"github.com/matthewbaird/opsconsole/internal/gateway"
	"github.com/matthewbaird/opsconsole/internal/modal"
	"github.com/matthewbaird/opsconsole/internal/notify"
	"github.com/matthewbaird/opsconsole/internal/record"
)

// ErrBusy is returned when a mutation is already in flight on the pipeline.
// The rejected call has no side effects.
var ErrBusy = errors.New("mutation: already submitting")

// Op is a mutation kind.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

var pastTense = map[Op]string{
	OpCreate: "created",
	OpUpdate: "updated",
	OpDelete: "deleted",
}

// Reloader is the list side of a pipeline.
type Reloader interface {
	RefreshAfterMutation(ctx context.Context) error
}

// Closer is the modal side of a pipeline.
type Closer interface {
	CloseTicket(t modal.Ticket) bool
}

// Request is one mutation. ID is required for update and delete. Ticket is
// the modal opening the request came from; only that modal is closed.
type Request struct {
	Op     Op
	ID     string
	Draft  form.Draft
	Ticket modal.Ticket
}

// Config wires a Pipeline.
type Config[R any] struct {
	Entity   string // collection name, e.g. "customers"
	Label    string // singular label for messages, e.g. "customer"
	Gateway  gateway.Gateway[R]
	Fields   FieldMap
	Notifier notify.Notifier
	Reloader Reloader
	Closer   Closer
	Metrics  *Metrics
}

// Pipeline runs mutations for one entity screen, one at a time.
type Pipeline[R any] struct {
	cfg        Config[R]
	submitting atomic.Bool
}

// New creates a Pipeline.
func New[R any](cfg Config[R]) *Pipeline[R] {
	if cfg.Notifier == nil {
		cfg.Notifier = notify.LogNotifier{Prefix: "mutation"}
	}
	if cfg.Label == "" {
		cfg.Label = cfg.Entity
	}
	return &Pipeline[R]{cfg: cfg}
}

// Submitting reports whether a mutation is in flight.
func (p *Pipeline[R]) Submitting() bool { return p.submitting.Load() }

// Execute runs req. A second call while one is in flight returns ErrBusy
// without touching the gateway.
//
// On success the order is: success notice, list reload, modal close. A
// failed reload is logged and left on the list controller; the mutation
// still succeeded. On failure an error notice carries the gateway message
// and the modal stays open.
func (p *Pipeline[R]) Execute(ctx context.Context, req Request) (R, error) {
	var zero R
	if !p.submitting.CompareAndSwap(false, true) {
		return zero, ErrBusy
	}
	defer p.submitting.Store(false)

	rec, err := p.call(ctx, req)
	p.cfg.Metrics.ObserveMutation(p.cfg.Entity, req.Op, err)
	if err != nil {
		log.Printf("mutation: %s %s failed: %v", req.Op, p.cfg.Entity, err)
		p.cfg.Notifier.Error(gateway.MessageOf(err, fmt.Sprintf("Failed to %s %s", req.Op, p.cfg.Label)))
		return zero, fmt.Errorf("%s %s: %w", req.Op, p.cfg.Label, err)
	}

	p.cfg.Notifier.Success(fmt.Sprintf("%s %s successfully", record.StatusLabel(p.cfg.Label), pastTense[req.Op]))
	if p.cfg.Reloader != nil {
		if rerr := p.cfg.Reloader.RefreshAfterMutation(ctx); rerr != nil {
			log.Printf("mutation: refresh %s after %s: %v", p.cfg.Entity, req.Op, rerr)
		}
	}
	if p.cfg.Closer != nil {
		p.cfg.Closer.CloseTicket(req.Ticket)
	}
	return rec, nil
}

func (p *Pipeline[R]) call(ctx context.Context, req Request) (R, error) {
	var zero R
	switch req.Op {
	case OpCreate:
		return p.cfg.Gateway.Create(ctx, p.cfg.Fields.Payload(req.Draft))
	case OpUpdate:
		if req.ID == "" {
			return zero, errors.New("update without id")
		}
		return p.cfg.Gateway.Update(ctx, req.ID, p.cfg.Fields.Payload(req.Draft))
	case OpDelete:
		if req.ID == "" {
			return zero, errors.New("delete without id")
		}
		return zero, p.cfg.Gateway.Delete(ctx, req.ID)
	default:
		return zero, fmt.Errorf("unknown operation %q", req.Op)
	}
}
