package activity

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore implements Store using in-memory slices.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryStore creates a new empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) WriteEntries(_ context.Context, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *MemoryStore) QueryByEntity(_ context.Context, entityType, entityID string, opts QueryOptions) ([]Entry, string, int, error) {
	matched, next, total := s.query(opts, func(e Entry) bool {
		return e.EntityType == entityType && e.EntityID == entityID
	})
	return matched, next, total, nil
}

func (s *MemoryStore) Recent(_ context.Context, entityType string, opts QueryOptions) ([]Entry, string, int, error) {
	matched, next, total := s.query(opts, func(e Entry) bool {
		return entityType == "" || e.EntityType == entityType
	})
	return matched, next, total, nil
}

func (s *MemoryStore) query(opts QueryOptions, keep func(Entry) bool) ([]Entry, string, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cursor, hasCursor := opts.cursor()
	var matched []Entry
	total := 0
	for _, e := range s.entries {
		if !keep(e) {
			continue
		}
		if opts.Since != nil && e.OccurredAt.Before(*opts.Since) {
			continue
		}
		total++
		if hasCursor && !e.OccurredAt.Before(cursor) {
			continue
		}
		matched = append(matched, e)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].OccurredAt.After(matched[j].OccurredAt)
	})

	var next string
	if limit := opts.limit(); len(matched) > limit {
		matched = matched[:limit]
		next = cursorOf(matched[len(matched)-1])
	}
	return matched, next, total
}
