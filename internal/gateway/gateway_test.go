package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID     any    `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Prefs  struct {
		Lang string `json:"lang"`
		Mail bool   `json:"mail"`
	} `json:"prefs"`
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "Duplicate email", MessageOf(&Error{Message: "Duplicate email"}, "fallback"))
	assert.Equal(t, "Duplicate email", MessageOf(fmt.Errorf("wrapped: %w", &Error{Message: "Duplicate email"}), "fallback"))
	assert.Equal(t, "fallback", MessageOf(errors.New("boom"), "fallback"))
	assert.Equal(t, "fallback", MessageOf(&Error{Message: "  "}, "fallback"))
}

func TestMerge_NestedAndIsolated(t *testing.T) {
	dst := map[string]any{
		"name":  "a",
		"prefs": map[string]any{"lang": "en", "mail": true},
	}
	out := Merge(dst, map[string]any{"prefs": Payload{"mail": false}})

	assert.Equal(t, map[string]any{"lang": "en", "mail": false}, out["prefs"])
	assert.Equal(t, true, dst["prefs"].(map[string]any)["mail"], "source must not change")
}

func TestMemory_CRUD(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[testRecord](map[string]any{"id": "1", "name": "Ann", "status": "active"})

	created, err := m.Create(ctx, Payload{"name": "Bob", "status": "inactive"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	updated, err := m.Update(ctx, "1", Payload{"prefs": map[string]any{"lang": "fr"}})
	require.NoError(t, err)
	assert.Equal(t, "Ann", updated.Name)
	assert.Equal(t, "fr", updated.Prefs.Lang)

	page, err := m.List(ctx, ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	require.NoError(t, m.Delete(ctx, "1"))
	assert.Equal(t, 1, m.Len())

	err = m.Delete(ctx, "1")
	assert.True(t, IsNotFound(err))
}

func TestMemory_Paging(t *testing.T) {
	var seed []map[string]any
	for i := range 5 {
		seed = append(seed, map[string]any{"id": fmt.Sprint(i), "name": fmt.Sprint("n", i)})
	}
	m := NewMemory[testRecord](seed...)

	page, err := m.List(context.Background(), ListParams{PageSize: 2, Offset: 4})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "n4", page.Items[0].Name)
}

func TestMemory_FailNext(t *testing.T) {
	m := NewMemory[testRecord]()
	m.FailNext(OpCreate, &Error{Message: "Duplicate email"})

	_, err := m.Create(context.Background(), Payload{"name": "x"})
	assert.EqualError(t, err, "gateway: Duplicate email")
	assert.Equal(t, 0, m.Len())

	_, err = m.Create(context.Background(), Payload{"name": "x"})
	assert.NoError(t, err)
	assert.Equal(t, 2, m.Calls(OpCreate))
}

func TestResource_ListAndCreate(t *testing.T) {
	var gotActor, gotQuery string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor = r.Header.Get("X-Actor")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/customers":
			gotQuery = r.URL.RawQuery
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{{"id": 7, "name": "Jane"}},
				"total": 1, "page_size": 50, "offset": 0,
			})
		case r.Method == http.MethodPost && r.URL.Path == "/v1/customers":
			json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{"id": "new", "name": gotBody["name"]})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL+"/", WithActor("staff-1"))
	require.NoError(t, err)
	res := NewResource[testRecord](c, "customers")

	page, err := res.List(context.Background(), ListParams{PageSize: 50})
	require.NoError(t, err)
	assert.Equal(t, "page_size=50", gotQuery)
	require.Len(t, page.Items, 1)
	assert.Equal(t, float64(7), page.Items[0].ID)

	rec, err := res.Create(context.Background(), Payload{"name": "Zed"})
	require.NoError(t, err)
	assert.Equal(t, "new", rec.ID)
	assert.Equal(t, "Zed", gotBody["name"])
	assert.Equal(t, "staff-1", gotActor)
}

func TestResource_ErrorShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"Duplicate email","code":"DUPLICATE"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	_, err = NewResource[testRecord](c, "customers").Create(context.Background(), Payload{})

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, http.StatusConflict, gerr.StatusCode)
	assert.Equal(t, "DUPLICATE", gerr.Code)
	assert.Equal(t, "Duplicate email", MessageOf(err, "x"))
}

func TestResource_DeleteNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	err = NewResource[testRecord](c, "visits").Delete(context.Background(), "gone")
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "Not Found", MessageOf(err, "x"))
}

func TestNewClient_RejectsRelative(t *testing.T) {
	_, err := NewClient("localhost:8080")
	assert.Error(t, err)
}

func TestResource_TransportErrorKeepsCause(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewResource[testRecord](c, "customers").List(ctx, ListParams{PageSize: 10})
	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "TRANSPORT", gerr.Code)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "Unable to reach the server", MessageOf(err, "x"))
}
