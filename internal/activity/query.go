// Package activity keeps the audit trail of record changes made through the
// console API: one entry per affected record per change.
package activity

import (
	"context"
	"encoding/json"
	"time"
)

// SourceRef points at a record touched by an event.
type SourceRef struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Role       string `json:"role"` // "subject" or "related"
}

// Entry is one activity line, indexed under a single record.
type Entry struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	EntityRole string          `json:"entity_role"`
	Summary    string          `json:"summary"`
	Actor      string          `json:"actor"`
	Source     string          `json:"source"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// QueryOptions controls filtering and pagination. Results are newest first.
type QueryOptions struct {
	Since  *time.Time
	Limit  int    // default 100, max 500
	Cursor string // OccurredAt of the last entry of the previous page
}

// Store reads and writes activity entries.
type Store interface {
	WriteEntries(ctx context.Context, entries []Entry) error
	// QueryByEntity returns the entries of one record.
	QueryByEntity(ctx context.Context, entityType, entityID string, opts QueryOptions) (entries []Entry, nextCursor string, total int, err error)
	// Recent returns the latest entries of a collection, or of every
	// collection when entityType is empty.
	Recent(ctx context.Context, entityType string, opts QueryOptions) (entries []Entry, nextCursor string, total int, err error)
}

func (o QueryOptions) limit() int {
	if o.Limit <= 0 || o.Limit > 500 {
		return 100
	}
	return o.Limit
}

func (o QueryOptions) cursor() (time.Time, bool) {
	if o.Cursor == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, o.Cursor)
	return t, err == nil
}

func cursorOf(e Entry) string { return e.OccurredAt.UTC().Format(time.RFC3339Nano) }
