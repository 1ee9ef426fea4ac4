package activity

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const activityTable = "activity_entries"

var activitySchema = []string{
	`CREATE TABLE IF NOT EXISTS activity_entries (
		event_id    TEXT NOT NULL,
		event_type  TEXT NOT NULL,
		occurred_at TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id   TEXT NOT NULL,
		entity_role TEXT NOT NULL,
		summary     TEXT NOT NULL,
		actor       TEXT NOT NULL,
		source      TEXT NOT NULL,
		payload     TEXT,
		PRIMARY KEY (entity_type, entity_id, occurred_at, event_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_activity_time ON activity_entries (occurred_at DESC)`,
}

var activityColumns = []string{
	"event_id", "event_type", "occurred_at", "entity_type", "entity_id",
	"entity_role", "summary", "actor", "source", "payload",
}

// SQLStore implements Store on the console API's SQLite database.
type SQLStore struct {
	drv *entsql.Driver
}

// NewSQLStore creates a SQLStore on drv.
func NewSQLStore(drv *entsql.Driver) *SQLStore {
	return &SQLStore{drv: drv}
}

// CreateTable creates the activity_entries table if missing.
func (s *SQLStore) CreateTable(ctx context.Context) error {
	for _, stmt := range activitySchema {
		if err := s.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("creating activity table: %w", err)
		}
	}
	return nil
}

// WriteEntries inserts entries in one statement. Entries already stored are
// skipped.
func (s *SQLStore) WriteEntries(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	ins := entsql.Dialect(dialect.SQLite).Insert(activityTable).Columns(activityColumns...)
	for _, e := range entries {
		var payload any
		if len(e.Payload) > 0 {
			payload = string(e.Payload)
		}
		ins.Values(
			e.EventID, e.EventType, e.OccurredAt.UTC().Format(timeLayout), e.EntityType, e.EntityID,
			e.EntityRole, e.Summary, e.Actor, e.Source, payload,
		)
	}
	query, args := ins.OnConflict(entsql.DoNothing()).Query()
	return s.drv.Exec(ctx, query, args, nil)
}

func (s *SQLStore) QueryByEntity(ctx context.Context, entityType, entityID string, opts QueryOptions) ([]Entry, string, int, error) {
	return s.query(ctx, opts, entsql.EQ("entity_type", entityType), entsql.EQ("entity_id", entityID))
}

func (s *SQLStore) Recent(ctx context.Context, entityType string, opts QueryOptions) ([]Entry, string, int, error) {
	var preds []*entsql.Predicate
	if entityType != "" {
		preds = append(preds, entsql.EQ("entity_type", entityType))
	}
	return s.query(ctx, opts, preds...)
}

func (s *SQLStore) query(ctx context.Context, opts QueryOptions, preds ...*entsql.Predicate) ([]Entry, string, int, error) {
	if opts.Since != nil {
		preds = append(preds, entsql.GTE("occurred_at", opts.Since.UTC().Format(timeLayout)))
	}

	total, err := s.count(ctx, preds)
	if err != nil {
		return nil, "", 0, err
	}

	if cursor, ok := opts.cursor(); ok {
		preds = append(preds, entsql.LT("occurred_at", cursor.UTC().Format(timeLayout)))
	}
	limit := opts.limit()
	sel := entsql.Dialect(dialect.SQLite).
		Select(activityColumns...).
		From(entsql.Table(activityTable)).
		OrderBy(entsql.Desc("occurred_at")).
		Limit(limit + 1)
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	query, args := sel.Query()

	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, "", 0, fmt.Errorf("querying activity: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			occurred string
			payload  *string
		)
		if err := rows.Scan(&e.EventID, &e.EventType, &occurred, &e.EntityType, &e.EntityID,
			&e.EntityRole, &e.Summary, &e.Actor, &e.Source, &payload); err != nil {
			return nil, "", 0, err
		}
		if e.OccurredAt, err = time.Parse(timeLayout, occurred); err != nil {
			return nil, "", 0, fmt.Errorf("parsing occurred_at %q: %w", occurred, err)
		}
		if payload != nil {
			e.Payload = []byte(*payload)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, "", 0, err
	}

	var next string
	if len(entries) > limit {
		entries = entries[:limit]
		next = cursorOf(entries[len(entries)-1])
	}
	return entries, next, total, nil
}

func (s *SQLStore) count(ctx context.Context, preds []*entsql.Predicate) (int, error) {
	sel := entsql.Dialect(dialect.SQLite).Select(entsql.Count("*")).From(entsql.Table(activityTable))
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return 0, fmt.Errorf("counting activity: %w", err)
	}
	defer rows.Close()
	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}
