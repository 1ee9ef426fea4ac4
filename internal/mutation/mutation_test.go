package mutation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/opsconsole/internal/form"
	"github.com/matthewbaird/opsconsole/internal/gateway"
	"github.com/matthewbaird/opsconsole/internal/modal"
	"github.com/matthewbaird/opsconsole/internal/notify"
)

type customer struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
}

var customerFields = FieldMap{
	"firstName": "first_name",
	"email":     "email",
}

// trace records reloads and closes in call order.
type trace struct {
	mu     sync.Mutex
	events []string
	reload error
}

func (tr *trace) RefreshAfterMutation(context.Context) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.events = append(tr.events, "refresh")
	return tr.reload
}

func (tr *trace) CloseTicket(modal.Ticket) bool {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.events = append(tr.events, "close")
	return true
}

func (tr *trace) Events() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.events...)
}

func newPipeline(t *testing.T, gw gateway.Gateway[customer]) (*Pipeline[customer], *trace, *notify.Recorder) {
	t.Helper()
	tr := &trace{}
	rec := &notify.Recorder{}
	p := New(Config[customer]{
		Entity:   "customers",
		Label:    "customer",
		Gateway:  gw,
		Fields:   customerFields,
		Notifier: rec,
		Reloader: tr,
		Closer:   tr,
	})
	return p, tr, rec
}

func TestExecute_CreateFailureKeepsDraft(t *testing.T) {
	gw := gateway.NewMemory[customer]()
	gw.FailNext(gateway.OpCreate, &gateway.Error{StatusCode: 409, Code: "DUPLICATE", Message: "Duplicate email"})
	p, tr, rec := newPipeline(t, gw)

	draft := form.Draft{"firstName": "Jane", "email": "jane@example.com"}
	before := draft.Clone()
	_, err := p.Execute(context.Background(), Request{Op: OpCreate, Draft: draft, Ticket: 1})
	require.Error(t, err)

	assert.Equal(t, before, draft)
	assert.Empty(t, tr.Events(), "no reload and no close on failure")
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, notify.LevelError, last.Level)
	assert.Equal(t, "Duplicate email", last.Text)
	assert.False(t, p.Submitting())
}

func TestExecute_FallbackMessage(t *testing.T) {
	gw := gateway.NewMemory[customer]()
	gw.FailNext(gateway.OpCreate, assert.AnError)
	p, _, rec := newPipeline(t, gw)

	_, err := p.Execute(context.Background(), Request{Op: OpCreate, Draft: form.Draft{}})
	require.ErrorIs(t, err, assert.AnError)
	last, _ := rec.Last()
	assert.Equal(t, "Failed to create customer", last.Text)
}

func TestExecute_DeleteRefreshesThenCloses(t *testing.T) {
	gw := gateway.NewMemory[customer](map[string]any{"id": "c1", "first_name": "Jane"})
	p, tr, rec := newPipeline(t, gw)

	_, err := p.Execute(context.Background(), Request{Op: OpDelete, ID: "c1", Ticket: 3})
	require.NoError(t, err)

	assert.Equal(t, []string{"refresh", "close"}, tr.Events())
	assert.Equal(t, 1, gw.Calls(gateway.OpDelete))
	assert.Zero(t, gw.Len())
	last, _ := rec.Last()
	assert.Equal(t, notify.Notice{Level: notify.LevelSuccess, Text: "Customer deleted successfully", At: last.At}, last)
}

func TestExecute_RefreshFailureStillSucceeds(t *testing.T) {
	gw := gateway.NewMemory[customer]()
	p, tr, _ := newPipeline(t, gw)
	tr.reload = assert.AnError

	got, err := p.Execute(context.Background(), Request{Op: OpCreate, Draft: form.Draft{"firstName": "Li"}, Ticket: 1})
	require.NoError(t, err)
	assert.Equal(t, "Li", got.FirstName)
	assert.Equal(t, []string{"refresh", "close"}, tr.Events())
}

func TestExecute_SecondSubmitWhileInFlight(t *testing.T) {
	gw := gateway.NewMemory[customer]()
	entered := make(chan struct{})
	release := make(chan struct{})
	gw.OnCall(func(op string) {
		if op == gateway.OpCreate {
			close(entered)
			<-release
		}
	})
	p, _, _ := newPipeline(t, gw)
	req := Request{Op: OpCreate, Draft: form.Draft{"firstName": "Jane"}, Ticket: 1}

	done := make(chan error, 1)
	go func() {
		_, err := p.Execute(context.Background(), req)
		done <- err
	}()
	<-entered
	assert.True(t, p.Submitting())

	_, err := p.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("first submit did not finish")
	}
	assert.Equal(t, 1, gw.Calls(gateway.OpCreate))
}

func TestExecute_UpdateSendsMappedFields(t *testing.T) {
	gw := gateway.NewMemory[customer](map[string]any{"id": "c1", "first_name": "Jane", "email": "old@example.com"})
	p, _, _ := newPipeline(t, gw)

	got, err := p.Execute(context.Background(), Request{
		Op:    OpUpdate,
		ID:    "c1",
		Draft: form.Draft{"firstName": "Janet", "email": "new@example.com", "ignored": "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, customer{ID: "c1", FirstName: "Janet", Email: "new@example.com"}, got)
}

func TestExecute_MissingID(t *testing.T) {
	p, tr, _ := newPipeline(t, gateway.NewMemory[customer]())
	_, err := p.Execute(context.Background(), Request{Op: OpDelete})
	require.Error(t, err)
	assert.Empty(t, tr.Events())
}

func TestExecute_ClosesOnlyItsOwnModal(t *testing.T) {
	gw := gateway.NewMemory[customer]()
	coord := modal.New[string]()
	stale := coord.OpenCreate()
	current := coord.OpenView("c9")

	p := New(Config[customer]{Entity: "customers", Gateway: gw, Fields: customerFields, Notifier: &notify.Recorder{}, Closer: coord})
	_, err := p.Execute(context.Background(), Request{Op: OpCreate, Draft: form.Draft{"firstName": "A"}, Ticket: stale})
	require.NoError(t, err)

	st := coord.Current()
	assert.Equal(t, modal.Viewing, st.Kind)
	assert.Equal(t, current, st.Ticket)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	gw := gateway.NewMemory[customer]()
	gw.FailNext(gateway.OpCreate, assert.AnError)
	p := New(Config[customer]{Entity: "customers", Gateway: gw, Fields: customerFields, Notifier: &notify.Recorder{}, Metrics: m})

	_, _ = p.Execute(context.Background(), Request{Op: OpCreate, Draft: form.Draft{}})
	_, _ = p.Execute(context.Background(), Request{Op: OpCreate, Draft: form.Draft{}})
	m.ObserveLoad("customers", 10*time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("customers", "create", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("customers", "create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loads.WithLabelValues("customers", "ok")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveMutation("x", OpDelete, nil) })
}
