package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Gateway over JSON documents. Records are stored as
// documents and decoded into R on the way out, so patches merge the same
// way they do on the server. Failures can be injected per operation.
type Memory[R any] struct {
	mu       sync.Mutex
	docs     []map[string]any
	failures map[string]error
	calls    map[string]int
	hook     func(op string)
	now      func() time.Time
}

// Operation names used by FailNext, Calls and OnCall.
const (
	OpList   = "list"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// NewMemory creates a Memory seeded with raw documents. Documents without an
// "id" get one.
func NewMemory[R any](seed ...map[string]any) *Memory[R] {
	m := &Memory[R]{
		failures: make(map[string]error),
		calls:    make(map[string]int),
		now:      time.Now,
	}
	for _, d := range seed {
		doc := Merge(nil, d)
		if _, ok := doc["id"]; !ok {
			doc["id"] = uuid.NewString()
		}
		m.docs = append(m.docs, doc)
	}
	return m
}

// FailNext makes the next call of op return err.
func (m *Memory[R]) FailNext(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[op] = err
}

// Calls returns how many times op has been invoked.
func (m *Memory[R]) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// OnCall registers a hook run at the start of every call, outside the lock.
// Tests use it to hold a call in flight.
func (m *Memory[R]) OnCall(fn func(op string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook = fn
}

// Len returns the number of stored records.
func (m *Memory[R]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

func (m *Memory[R]) begin(op string) error {
	m.mu.Lock()
	m.calls[op]++
	hook := m.hook
	err := m.failures[op]
	delete(m.failures, op)
	m.mu.Unlock()
	if hook != nil {
		hook(op)
	}
	return err
}

func (m *Memory[R]) List(_ context.Context, params ListParams) (Page[R], error) {
	if err := m.begin(OpList); err != nil {
		return Page[R]{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	size := params.PageSize
	if size <= 0 || size > MaxPageSize {
		size = MaxPageSize
	}
	start := min(max(params.Offset, 0), len(m.docs))
	end := min(start+size, len(m.docs))

	page := Page[R]{Total: len(m.docs), PageSize: size, Offset: start, Items: make([]R, 0, end-start)}
	for _, d := range m.docs[start:end] {
		r, err := decode[R](d)
		if err != nil {
			return Page[R]{}, err
		}
		page.Items = append(page.Items, r)
	}
	return page, nil
}

func (m *Memory[R]) Create(_ context.Context, payload Payload) (R, error) {
	var zero R
	if err := m.begin(OpCreate); err != nil {
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := Merge(nil, payload)
	doc["id"] = uuid.NewString()
	ts := m.now().UTC().Format(time.RFC3339)
	doc["created_at"], doc["updated_at"] = ts, ts
	m.docs = append(m.docs, doc)
	return decode[R](doc)
}

func (m *Memory[R]) Update(_ context.Context, id string, payload Payload) (R, error) {
	var zero R
	if err := m.begin(OpUpdate); err != nil {
		return zero, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return zero, notFound(id)
	}
	doc := Merge(m.docs[i], payload)
	doc["id"] = m.docs[i]["id"]
	doc["updated_at"] = m.now().UTC().Format(time.RFC3339)
	m.docs[i] = doc
	return decode[R](doc)
}

func (m *Memory[R]) Delete(_ context.Context, id string) error {
	if err := m.begin(OpDelete); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return notFound(id)
	}
	m.docs = append(m.docs[:i], m.docs[i+1:]...)
	return nil
}

func (m *Memory[R]) index(id string) int {
	for i, d := range m.docs {
		if fmt.Sprint(d["id"]) == id {
			return i
		}
	}
	return -1
}

func notFound(id string) error {
	return &Error{StatusCode: http.StatusNotFound, Code: "NOT_FOUND", Message: fmt.Sprintf("record %s not found", id)}
}

func decode[R any](doc map[string]any) (R, error) {
	var r R
	b, err := json.Marshal(doc)
	if err != nil {
		return r, fmt.Errorf("encoding document: %w", err)
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return r, fmt.Errorf("decoding document: %w", err)
	}
	return r, nil
}
