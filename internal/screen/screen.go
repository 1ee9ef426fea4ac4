// Package screen composes the list controller, modal coordinator, form
// session and mutation pipeline of one entity into a screen that front ends
// drive. A screen is guarded by its entry permission and every affordance is
// gated by the actor's capabilities.
package screen

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/matthewbaird/opsconsole/internal/form"
	"github.com/matthewbaird/opsconsole/internal/gateway"
	"github.com/matthewbaird/opsconsole/internal/listing"
	"github.com/matthewbaird/opsconsole/internal/modal"
	"github.com/matthewbaird/opsconsole/internal/mutation"
	"github.com/matthewbaird/opsconsole/internal/notify"
	"github.com/matthewbaird/opsconsole/internal/permission"
)

var (
	// ErrNoAccess is returned when the actor may not enter the screen.
	ErrNoAccess = errors.New("screen: no access")
	// ErrForbidden is returned when the actor lacks the capability for an action.
	ErrForbidden = errors.New("screen: forbidden")
	// ErrNoForm is returned by form operations while no create or edit modal is open.
	ErrNoForm = errors.New("screen: no form open")
	// ErrInvalid is returned by Submit when the draft has validation errors.
	ErrInvalid = errors.New("screen: draft has errors")
	// ErrNotInCollection is returned for keys absent from the loaded collection.
	ErrNotInCollection = errors.New("screen: record not in collection")
)

// Deps are the collaborators a screen is constructed with.
type Deps struct {
	Actor     permission.Actor
	Oracle    permission.Oracle
	Home      string // redirect target when entry is refused
	Notifier  notify.Notifier
	Confirmer notify.Confirmer
	Navigator notify.Navigator
	Metrics   *mutation.Metrics
	PageSize  int
}

// Screen is one entity screen.
type Screen[R any, V listing.Viewable] struct {
	def   Definition[R, V]
	deps  Deps
	list  *listing.Controller[R, V]
	modal *modal.Coordinator[V]
	pipe  *mutation.Pipeline[R]

	mu            sync.Mutex
	entered       bool
	search        string
	status        string
	session       *form.Session
	sessionTicket modal.Ticket
}

// New builds a screen over gw.
func New[R any, V listing.Viewable](def Definition[R, V], gw gateway.Gateway[R], deps Deps) *Screen[R, V] {
	if deps.Oracle == nil {
		deps.Oracle = permission.Grants()
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.LogNotifier{Prefix: def.Name}
	}
	if deps.Confirmer == nil {
		deps.Confirmer = notify.Always(false)
	}
	s := &Screen[R, V]{
		def:    def,
		deps:   deps,
		modal:  modal.New[V](),
		status: listing.StatusAll,
	}
	var opts []listing.Option
	if deps.PageSize > 0 {
		opts = append(opts, listing.WithPageSize(deps.PageSize))
	}
	if deps.Metrics != nil {
		opts = append(opts, listing.WithObserver(deps.Metrics))
	}
	s.list = listing.New(def.Name, gateway.Lister[R](gw), def.Transform, def.Palette.Codes(), opts...)
	s.pipe = mutation.New(mutation.Config[R]{
		Entity:   def.Name,
		Label:    def.Label,
		Gateway:  gw,
		Fields:   def.Fields,
		Notifier: deps.Notifier,
		Reloader: s.list,
		Closer:   s.modal,
		Metrics:  deps.Metrics,
	})
	return s
}

// Name returns the collection name.
func (s *Screen[R, V]) Name() string { return s.def.Name }

// Title returns the screen heading.
func (s *Screen[R, V]) Title() string { return s.def.Title }

// Can reports whether the actor holds the action capability on this entity.
func (s *Screen[R, V]) Can(action string) bool {
	return s.deps.Oracle.HasPermission(s.deps.Actor, permission.Cap(s.def.Name, action))
}

// Enter runs the entry guard once and performs the first load. An actor
// without access is redirected home and nothing is loaded.
func (s *Screen[R, V]) Enter(ctx context.Context) error {
	if !permission.CanEnter(s.deps.Oracle, s.deps.Actor, s.def.Name) {
		if s.deps.Navigator != nil {
			s.deps.Navigator.Redirect(s.deps.Home)
		}
		return ErrNoAccess
	}
	s.mu.Lock()
	s.entered = true
	s.mu.Unlock()
	return s.list.Load(ctx)
}

// Load reloads the collection. Load errors stay on the list state as well
// as being returned.
func (s *Screen[R, V]) Load(ctx context.Context) error {
	if !s.isEntered() {
		return ErrNoAccess
	}
	return s.list.Load(ctx)
}

func (s *Screen[R, V]) isEntered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entered
}

// SetFilter replaces the search text and status filter. An empty status
// means all.
func (s *Screen[R, V]) SetFilter(search, status string) {
	if status == "" {
		status = listing.StatusAll
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search, s.status = search, status
}

// Filter returns the current search text and status filter.
func (s *Screen[R, V]) Filter() (search, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.search, s.status
}

// Visible returns the filtered collection.
func (s *Screen[R, V]) Visible() []V {
	search, status := s.Filter()
	return s.list.ApplyFilter(search, status)
}

// Counts aggregates the whole collection, independent of the filter.
func (s *Screen[R, V]) Counts() listing.Counts { return s.list.AggregateCounts() }

// List returns the list state.
func (s *Screen[R, V]) List() listing.State[V] { return s.list.State() }

// Modal returns the modal state.
func (s *Screen[R, V]) Modal() modal.State[V] { return s.modal.Current() }

// OpenCreate opens an empty create form.
func (s *Screen[R, V]) OpenCreate() (modal.Ticket, error) {
	if !s.Can(permission.ActionCreate) {
		return 0, ErrForbidden
	}
	if s.def.Form == nil {
		return 0, ErrNoForm
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.modal.OpenCreate()
	s.session, s.sessionTicket = form.NewSession(s.def.Form, nil), t
	return t, nil
}

// OpenEdit opens the edit form for the record with key, seeded from the
// record as currently loaded.
func (s *Screen[R, V]) OpenEdit(key string) (modal.Ticket, error) {
	if !s.Can(permission.ActionEdit) {
		return 0, ErrForbidden
	}
	if s.def.Form == nil {
		return 0, ErrNoForm
	}
	r, ok := s.list.Find(key)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotInCollection, key)
	}
	var seed form.Draft
	if s.def.Seed != nil {
		seed = s.def.Seed(r)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.modal.OpenEdit(r)
	s.session, s.sessionTicket = form.NewSession(s.def.Form, seed), t
	return t, nil
}

// OpenView opens the read-only view of the record with key.
func (s *Screen[R, V]) OpenView(key string) (modal.Ticket, error) {
	if !s.Can(permission.ActionView) {
		return 0, ErrForbidden
	}
	r, ok := s.list.Find(key)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotInCollection, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.modal.OpenView(r)
	s.session, s.sessionTicket = nil, 0
	return t, nil
}

// Close closes any modal and discards its draft.
func (s *Screen[R, V]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modal.Close()
	s.session, s.sessionTicket = nil, 0
}

// activeSession returns the draft session of the open modal. A session left
// behind by a modal the pipeline already closed is dropped here.
func (s *Screen[R, V]) activeSession() (*form.Session, modal.State[V], bool) {
	st := s.modal.Current()
	if s.session == nil || !s.modal.IsCurrent(s.sessionTicket) {
		s.session, s.sessionTicket = nil, 0
		return nil, st, false
	}
	return s.session, st, true
}

// SetField updates one field of the open form.
func (s *Screen[R, V]) SetField(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, _, ok := s.activeSession()
	if !ok {
		return ErrNoForm
	}
	sess.SetField(name, coerce(s.def.Form, name, value))
	return nil
}

// coerce turns textual input for bool and number fields into typed values.
// Unparseable text is kept as is and left to validation.
func coerce(schema *form.Schema, name string, value any) any {
	str, isString := value.(string)
	if !isString || schema == nil {
		return value
	}
	for _, f := range schema.Fields {
		if f.Name != name {
			continue
		}
		switch f.Kind {
		case form.KindBool:
			if b, err := strconv.ParseBool(str); err == nil {
				return b
			}
		case form.KindNumber:
			if strings.TrimSpace(str) == "" {
				return nil
			}
			if n, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
				return n
			}
		}
	}
	return value
}

// FormState returns the open form's draft and errors.
func (s *Screen[R, V]) FormState() (form.Draft, form.Errors, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, _, ok := s.activeSession()
	if !ok {
		return nil, nil, false
	}
	return sess.Draft(), sess.Errors(), true
}

// Submit validates the open form and, when it is clean, runs the create or
// update. Validation errors come back with ErrInvalid and nothing is sent.
// On success the form's modal is closed; on failure it stays open with the
// draft intact.
func (s *Screen[R, V]) Submit(ctx context.Context) (form.Errors, error) {
	s.mu.Lock()
	sess, st, ok := s.activeSession()
	if !ok {
		s.mu.Unlock()
		return nil, ErrNoForm
	}
	errs := sess.Validate()
	draft := sess.Draft()
	ticket := s.sessionTicket
	s.mu.Unlock()

	if len(errs) > 0 {
		return errs, ErrInvalid
	}

	req := mutation.Request{Draft: draft, Ticket: ticket}
	switch st.Kind {
	case modal.Creating:
		if !s.Can(permission.ActionCreate) {
			return nil, ErrForbidden
		}
		req.Op = mutation.OpCreate
	case modal.Editing:
		if !s.Can(permission.ActionEdit) {
			return nil, ErrForbidden
		}
		req.Op, req.ID = mutation.OpUpdate, st.Subject.Key()
	default:
		return nil, ErrNoForm
	}
	_, err := s.pipe.Execute(ctx, req)
	return nil, err
}

// Delete asks for confirmation and deletes the record with key. It reports
// whether the record was deleted; a declined confirmation changes nothing.
// A modal showing the record is closed after a successful delete.
func (s *Screen[R, V]) Delete(ctx context.Context, key string) (bool, error) {
	if !s.Can(permission.ActionDelete) {
		return false, ErrForbidden
	}
	r, ok := s.list.Find(key)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotInCollection, key)
	}
	if s.pipe.Submitting() {
		return false, mutation.ErrBusy
	}

	yes, err := s.deps.Confirmer.ConfirmDelete(ctx, s.subject(r), s.def.Label)
	if err != nil {
		return false, fmt.Errorf("confirming delete: %w", err)
	}
	if !yes {
		return false, nil
	}

	var ticket modal.Ticket
	if st := s.modal.Current(); st.Open() && st.Kind != modal.Creating && st.Subject.Key() == key {
		ticket = st.Ticket
	}
	if _, err := s.pipe.Execute(ctx, mutation.Request{Op: mutation.OpDelete, ID: key, Ticket: ticket}); err != nil {
		return false, err
	}
	return true, nil
}

// Submitting reports whether a mutation is in flight.
func (s *Screen[R, V]) Submitting() bool { return s.pipe.Submitting() }

func (s *Screen[R, V]) subject(r V) string {
	if s.def.Subject != nil {
		if name := s.def.Subject(r); name != "" {
			return name
		}
	}
	return r.Key()
}
