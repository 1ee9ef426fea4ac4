// Package listing owns the authoritative in-memory collection of one entity
// type. The collection is only ever replaced wholesale by a load from the
// gateway; there is no client-side patching after a mutation.
package listing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/matthewbaird/opsconsole/internal/gateway"
	"github.com/matthewbaird/opsconsole/internal/record"
)

// StatusAll matches every record in Filter.
const StatusAll = "all"

// maxPages bounds a single load.
const maxPages = 1000

// Viewable is what a view record exposes to the list machinery.
type Viewable interface {
	Key() string
	StatusCode() string
	SearchFields() []string
}

// ErrorInfo describes the last failed load.
type ErrorInfo struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// State is a point-in-time copy of the controller state.
type State[V Viewable] struct {
	Records   []V
	IsLoading bool
	Error     *ErrorInfo
}

// Observer receives load outcomes, e.g. for metrics.
type Observer interface {
	ObserveLoad(entity string, d time.Duration, err error)
}

// Controller loads, holds and derives views over one entity's collection.
type Controller[R any, V Viewable] struct {
	entity    string
	gw        gateway.Lister[R]
	transform func(R) V
	statuses  []string
	pageSize  int
	observer  Observer

	mu      sync.RWMutex
	records []V
	loading int
	err     *ErrorInfo
	loads   int
}

// Option configures a Controller.
type Option func(*config)

type config struct {
	pageSize int
	observer Observer
}

// WithPageSize sets the page size used to walk the collection.
func WithPageSize(n int) Option {
	return func(c *config) { c.pageSize = n }
}

// WithObserver attaches a load observer.
func WithObserver(o Observer) Option {
	return func(c *config) { c.observer = o }
}

// New creates a controller. statuses lists the known status buckets in
// display order.
func New[R any, V Viewable](entity string, gw gateway.Lister[R], transform func(R) V, statuses []string, opts ...Option) *Controller[R, V] {
	cfg := config{pageSize: gateway.MaxPageSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.pageSize <= 0 || cfg.pageSize > gateway.MaxPageSize {
		cfg.pageSize = gateway.MaxPageSize
	}
	return &Controller[R, V]{
		entity:    entity,
		gw:        gw,
		transform: transform,
		statuses:  statuses,
		pageSize:  cfg.pageSize,
		observer:  cfg.observer,
	}
}

// Load fetches the full collection. On success records are replaced and the
// error cleared; on failure the previous records stay and the error is set.
// IsLoading is cleared on every exit path.
func (c *Controller[R, V]) Load(ctx context.Context) (err error) {
	c.mu.Lock()
	c.loading++
	c.loads++
	c.mu.Unlock()

	start := time.Now()
	defer func() {
		c.mu.Lock()
		c.loading--
		c.mu.Unlock()
		if c.observer != nil {
			c.observer.ObserveLoad(c.entity, time.Since(start), err)
		}
	}()

	raw, err := c.fetchAll(ctx)
	if err != nil {
		log.Printf("listing: %s load failed: %v", c.entity, err)
		c.mu.Lock()
		c.err = &ErrorInfo{Message: gateway.MessageOf(err, "Failed to load "+c.entity), At: time.Now()}
		c.mu.Unlock()
		return fmt.Errorf("loading %s: %w", c.entity, err)
	}

	views := make([]V, 0, len(raw))
	for _, r := range raw {
		views = append(views, c.transform(r))
	}

	// Last completed load wins.
	c.mu.Lock()
	c.records = views
	c.err = nil
	c.mu.Unlock()
	return nil
}

// RefreshAfterMutation reloads from the server. It is the only path that
// brings the collection back in line with server state after a mutation.
func (c *Controller[R, V]) RefreshAfterMutation(ctx context.Context) error {
	return c.Load(ctx)
}

func (c *Controller[R, V]) fetchAll(ctx context.Context) ([]R, error) {
	var all []R
	params := gateway.ListParams{PageSize: c.pageSize}
	for range maxPages {
		page, err := c.gw.List(ctx, params)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if len(page.Items) == 0 || page.Total <= 0 || len(all) >= page.Total {
			return all, nil
		}
		params.Offset += len(page.Items)
	}
	return nil, errors.New("collection exceeds page limit")
}

// State returns a copy of the current state.
func (c *Controller[R, V]) State() State[V] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := State[V]{
		Records:   append([]V(nil), c.records...),
		IsLoading: c.loading > 0,
	}
	if c.err != nil {
		e := *c.err
		st.Error = &e
	}
	return st
}

// Records returns a copy of the current collection.
func (c *Controller[R, V]) Records() []V {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]V(nil), c.records...)
}

// Find returns the record with the given key from the current collection.
func (c *Controller[R, V]) Find(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, r := range c.records {
		if r.Key() == key {
			return r, true
		}
	}
	var zero V
	return zero, false
}

// Loads returns how many loads have been started.
func (c *Controller[R, V]) Loads() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loads
}

// ApplyFilter derives the visible subset of the current collection.
func (c *Controller[R, V]) ApplyFilter(search, status string) []V {
	return Filter(c.Records(), search, status)
}

// AggregateCounts counts the current collection per known status.
func (c *Controller[R, V]) AggregateCounts() Counts {
	return Aggregate(c.Records(), c.statuses)
}

// Statuses returns the known status buckets.
func (c *Controller[R, V]) Statuses() []string {
	return append([]string(nil), c.statuses...)
}

// Filter keeps records whose searchable fields contain search (case
// insensitive, any field) and whose status equals status. An empty search
// and StatusAll keep everything.
func Filter[V Viewable](records []V, search, status string) []V {
	needle := strings.ToLower(strings.TrimSpace(search))
	want := record.NormalizeStatus(status)
	if want == StatusAll {
		want = ""
	}
	out := make([]V, 0, len(records))
	for _, r := range records {
		if want != "" && record.NormalizeStatus(r.StatusCode()) != want {
			continue
		}
		if needle != "" && !matches(r, needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matches[V Viewable](r V, needle string) bool {
	for _, f := range r.SearchFields() {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
