package screen

import (
	"context"

	"github.com/matthewbaird/opsconsole/internal/form"
	"github.com/matthewbaird/opsconsole/internal/listing"
	"github.com/matthewbaird/opsconsole/internal/modal"
	"github.com/matthewbaird/opsconsole/internal/permission"
	"github.com/matthewbaird/opsconsole/internal/record"
)

// Handle is a screen with its record types erased, for front ends that keep
// several entity screens side by side.
type Handle interface {
	Name() string
	Title() string
	Enter(ctx context.Context) error
	Load(ctx context.Context) error
	SetFilter(search, status string)
	OpenCreate() (modal.Ticket, error)
	OpenEdit(key string) (modal.Ticket, error)
	OpenView(key string) (modal.Ticket, error)
	Close()
	SetField(name string, value any) error
	Submit(ctx context.Context) (form.Errors, error)
	Delete(ctx context.Context, key string) (bool, error)
	Submitting() bool
	Snapshot() Snapshot
}

// Row is one rendered list row.
type Row struct {
	Key         string       `json:"key"`
	Status      string       `json:"status"`
	StatusLabel string       `json:"status_label"`
	Color       record.Color `json:"color"`
	Cells       []string     `json:"cells"`
}

// StatusCount is one status bucket of the counts header.
type StatusCount struct {
	Code  string       `json:"code"`
	Label string       `json:"label"`
	Color record.Color `json:"color"`
	Count int          `json:"count"`
}

// FieldState is one form field with its current value and error.
type FieldState struct {
	form.Field
	Value string `json:"value"`
	Error string `json:"error,omitempty"`
}

// ModalSnapshot describes the open modal.
type ModalSnapshot struct {
	Kind    string       `json:"kind"`
	Ticket  modal.Ticket `json:"ticket"`
	Title   string       `json:"title"`
	Subject *Row         `json:"subject,omitempty"`
	Fields  []FieldState `json:"fields,omitempty"`
	Details []Detail     `json:"details,omitempty"`
}

// Snapshot is a render-ready copy of the whole screen.
type Snapshot struct {
	Entity     string             `json:"entity"`
	Title      string             `json:"title"`
	Columns    []Column           `json:"columns"`
	Rows       []Row              `json:"rows"`
	Total      int                `json:"total"`
	Statuses   []StatusCount      `json:"statuses"`
	Search     string             `json:"search"`
	Status     string             `json:"status"`
	Loading    bool               `json:"loading"`
	Error      *listing.ErrorInfo `json:"error,omitempty"`
	Submitting bool               `json:"submitting"`
	Modal      *ModalSnapshot     `json:"modal,omitempty"`
	Can        map[string]bool    `json:"can"`
}

// Snapshot renders the current state.
func (s *Screen[R, V]) Snapshot() Snapshot {
	search, status := s.Filter()
	st := s.list.State()
	counts := listing.Aggregate(st.Records, s.def.Palette.Codes())

	snap := Snapshot{
		Entity:     s.def.Name,
		Title:      s.def.Title,
		Columns:    s.def.Columns,
		Total:      counts.Total,
		Search:     search,
		Status:     status,
		Loading:    st.IsLoading,
		Error:      st.Error,
		Submitting: s.pipe.Submitting(),
		Can:        make(map[string]bool, 4),
	}
	for _, a := range []string{permission.ActionView, permission.ActionCreate, permission.ActionEdit, permission.ActionDelete} {
		snap.Can[a] = s.Can(a)
	}
	for _, p := range s.def.Palette {
		snap.Statuses = append(snap.Statuses, StatusCount{
			Code:  p.Code,
			Label: record.StatusLabel(p.Code),
			Color: p.Color,
			Count: counts.ByStatus[p.Code],
		})
	}
	for _, r := range listing.Filter(st.Records, search, status) {
		snap.Rows = append(snap.Rows, s.row(r))
	}
	snap.Modal = s.modalSnapshot()
	return snap
}

func (s *Screen[R, V]) row(r V) Row {
	code := record.NormalizeStatus(r.StatusCode())
	row := Row{
		Key:         r.Key(),
		Status:      code,
		StatusLabel: record.StatusLabel(code),
		Color:       s.def.Palette.Color(code),
	}
	if s.def.Cells != nil {
		row.Cells = s.def.Cells(r)
	}
	return row
}

func (s *Screen[R, V]) modalSnapshot() *ModalSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, st, hasForm := s.activeSession()
	if !st.Open() {
		return nil
	}
	ms := &ModalSnapshot{Kind: st.Kind.String(), Ticket: st.Ticket}
	switch st.Kind {
	case modal.Creating:
		ms.Title = "New " + s.def.Label
	case modal.Editing:
		ms.Title = "Edit " + s.subject(st.Subject)
	case modal.Viewing:
		ms.Title = s.subject(st.Subject)
	}
	if st.Kind != modal.Creating {
		row := s.row(st.Subject)
		ms.Subject = &row
		if st.Kind == modal.Viewing && s.def.Details != nil {
			ms.Details = s.def.Details(st.Subject)
		}
	}
	if hasForm {
		draft, errs := sess.Draft(), sess.Errors()
		for _, f := range sess.Schema().Fields {
			ms.Fields = append(ms.Fields, FieldState{Field: f, Value: draft.String(f.Name), Error: errs[f.Name]})
		}
	}
	return ms
}
