package listing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/opsconsole/internal/gateway"
)

type rawCustomer struct {
	ID        any    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Status    string `json:"status"`
}

type viewCustomer struct {
	ID, Name, Email, Status string
}

func (v viewCustomer) Key() string            { return v.ID }
func (v viewCustomer) StatusCode() string     { return v.Status }
func (v viewCustomer) SearchFields() []string { return []string{v.Name, v.ID, v.Email} }

func toView(r rawCustomer) viewCustomer {
	return viewCustomer{
		ID:     fmt.Sprint(r.ID),
		Name:   r.FirstName + " " + r.LastName,
		Email:  r.Email,
		Status: r.Status,
	}
}

var customerStatuses = []string{"active", "inactive", "suspended"}

func fourCustomers() []map[string]any {
	return []map[string]any{
		{"id": "c1", "first_name": "Jane", "last_name": "Smith", "email": "jane@example.com", "status": "active"},
		{"id": "c2", "first_name": "Omar", "last_name": "Haddad", "email": "omar@example.com", "status": "active"},
		{"id": "c3", "first_name": "Li", "last_name": "Wei", "email": "li@example.com", "status": "Active"},
		{"id": "c4", "first_name": "Ana", "last_name": "Costa", "email": "ana@example.com", "status": "inactive"},
	}
}

func newController(t *testing.T, seed ...map[string]any) (*Controller[rawCustomer, viewCustomer], *gateway.Memory[rawCustomer]) {
	t.Helper()
	gw := gateway.NewMemory[rawCustomer](seed...)
	return New[rawCustomer, viewCustomer]("customers", gw, toView, customerStatuses), gw
}

func TestController_Load(t *testing.T) {
	c, _ := newController(t, fourCustomers()...)
	require.NoError(t, c.Load(context.Background()))

	st := c.State()
	assert.Len(t, st.Records, 4)
	assert.False(t, st.IsLoading)
	assert.Nil(t, st.Error)
}

func TestController_AggregateCounts(t *testing.T) {
	c, _ := newController(t, fourCustomers()...)
	require.NoError(t, c.Load(context.Background()))

	counts := c.AggregateCounts()
	assert.Equal(t, 4, counts.Total)
	assert.Equal(t, map[string]int{"active": 3, "inactive": 1, "suspended": 0}, counts.ByStatus)
}

func TestController_SearchByName(t *testing.T) {
	c, _ := newController(t, fourCustomers()...)
	require.NoError(t, c.Load(context.Background()))

	got := c.ApplyFilter("jane", StatusAll)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)
}

func TestController_LoadFailureKeepsRecords(t *testing.T) {
	c, gw := newController(t, fourCustomers()...)
	ctx := context.Background()
	require.NoError(t, c.Load(ctx))

	gw.FailNext(gateway.OpList, &gateway.Error{Message: "upstream unavailable"})
	err := c.Load(ctx)
	require.Error(t, err)

	st := c.State()
	assert.Len(t, st.Records, 4, "stale records stay available")
	assert.False(t, st.IsLoading)
	require.NotNil(t, st.Error)
	assert.Equal(t, "upstream unavailable", st.Error.Message)

	require.NoError(t, c.Load(ctx))
	assert.Nil(t, c.State().Error)
}

func TestController_IsLoadingDuringLoad(t *testing.T) {
	c, gw := newController(t, fourCustomers()...)
	entered := make(chan struct{})
	release := make(chan struct{})
	gw.OnCall(func(string) {
		close(entered)
		<-release
	})

	done := make(chan error)
	go func() { done <- c.Load(context.Background()) }()

	<-entered
	assert.True(t, c.State().IsLoading)
	close(release)
	require.NoError(t, <-done)
	assert.False(t, c.State().IsLoading)
}

func TestController_WalksPages(t *testing.T) {
	var seed []map[string]any
	for i := range 7 {
		seed = append(seed, map[string]any{"id": fmt.Sprint(i), "status": "active"})
	}
	gw := gateway.NewMemory[rawCustomer](seed...)
	c := New[rawCustomer, viewCustomer]("customers", gw, toView, customerStatuses, WithPageSize(3))

	require.NoError(t, c.Load(context.Background()))
	assert.Len(t, c.Records(), 7)
	assert.Equal(t, 3, gw.Calls(gateway.OpList))
}

func TestController_RecordsAreCopies(t *testing.T) {
	c, _ := newController(t, fourCustomers()...)
	require.NoError(t, c.Load(context.Background()))

	recs := c.Records()
	recs[0].Name = "changed"
	assert.Equal(t, "Jane Smith", c.Records()[0].Name)

	_ = c.ApplyFilter("omar", "active")
	assert.Len(t, c.Records(), 4, "filtering does not mutate the collection")
}

type recordingObserver struct {
	calls int
	err   error
}

func (o *recordingObserver) ObserveLoad(_ string, _ time.Duration, err error) {
	o.calls++
	o.err = err
}

func TestController_Observer(t *testing.T) {
	gw := gateway.NewMemory[rawCustomer](fourCustomers()...)
	obs := &recordingObserver{}
	c := New[rawCustomer, viewCustomer]("customers", gw, toView, customerStatuses, WithObserver(obs))

	gw.FailNext(gateway.OpList, &gateway.Error{Message: "nope"})
	assert.Error(t, c.Load(context.Background()))
	assert.Equal(t, 1, obs.calls)
	assert.Error(t, obs.err)
}

func TestFind(t *testing.T) {
	c, _ := newController(t, fourCustomers()...)
	require.NoError(t, c.Load(context.Background()))

	v, ok := c.Find("c4")
	assert.True(t, ok)
	assert.Equal(t, "Ana Costa", v.Name)

	_, ok = c.Find("missing")
	assert.False(t, ok)
}
