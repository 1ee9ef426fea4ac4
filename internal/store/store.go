// Package store keeps the records served by the console API in SQLite. Each
// record is a JSON document in a single table, addressed by collection and
// id; queries are built with ent's SQL builder.
package store

import (
	"context"
	stdsql "database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/matthewbaird/opsconsole/internal/gateway"
)

var (
	// ErrNotFound is returned for unknown ids.
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicate is returned when a unique email is already taken.
	ErrDuplicate = errors.New("store: duplicate email")
	// ErrIDTaken is returned when a create names an id already in use.
	ErrIDTaken = errors.New("store: id already exists")
)

// Doc is one stored record.
type Doc = map[string]any

const table = "records"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS records (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		collection TEXT NOT NULL,
		id         TEXT NOT NULL,
		email      TEXT NOT NULL DEFAULT '',
		status     TEXT NOT NULL DEFAULT '',
		doc        TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (collection, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_records_collection_email ON records (collection, email)`,
	`CREATE INDEX IF NOT EXISTS idx_records_collection_status ON records (collection, status)`,
}

// Store is a SQLite backed record store.
type Store struct {
	drv *entsql.Driver
	now func() time.Time

	mu     sync.RWMutex
	unique map[string]bool
}

// Open opens the SQLite database at dsn and creates the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := stdsql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	s := New(entsql.OpenDB(dialect.SQLite, db))
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open driver. Call Migrate before use on a fresh database.
func New(drv *entsql.Driver) *Store {
	return &Store{drv: drv, now: time.Now, unique: make(map[string]bool)}
}

// Driver returns the underlying ent driver.
func (s *Store) Driver() *entsql.Driver { return s.drv }

// Close closes the database.
func (s *Store) Close() error { return s.drv.Close() }

// Migrate creates the records table if missing.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if err := s.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("running schema migration: %w", err)
		}
	}
	return nil
}

// UniqueEmail makes email unique (case-insensitively) within collection.
func (s *Store) UniqueEmail(collection string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unique[collection] = true
}

func (s *Store) isUnique(collection string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unique[collection]
}

func builder() *entsql.DialectBuilder { return entsql.Dialect(dialect.SQLite) }

func inCollection(collection string) *entsql.Predicate {
	return entsql.EQ("collection", collection)
}

func byID(collection, id string) *entsql.Predicate {
	return entsql.And(entsql.EQ("collection", collection), entsql.EQ("id", id))
}

// List returns one page of a collection in insertion order and the
// collection size, read in one transaction.
func (s *Store) List(ctx context.Context, collection string, limit, offset int) ([]Doc, int, error) {
	var (
		docs  []Doc
		total int
	)
	err := s.withTx(ctx, func(tx dialect.ExecQuerier) error {
		n, err := count(ctx, tx, collection)
		if err != nil {
			return err
		}
		query, args := builder().
			Select("doc").
			From(entsql.Table(table)).
			Where(inCollection(collection)).
			OrderBy("seq").
			Limit(limit).
			Offset(offset).
			Query()
		page, err := queryDocs(ctx, tx, query, args)
		if err != nil {
			return err
		}
		docs, total = page, n
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("listing %s: %w", collection, err)
	}
	return docs, total, nil
}

// Count returns the size of a collection.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	n, err := count(ctx, s.drv, collection)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", collection, err)
	}
	return n, nil
}

func count(ctx context.Context, q dialect.ExecQuerier, collection string) (int, error) {
	query, args := builder().
		Select(entsql.Count("*")).
		From(entsql.Table(table)).
		Where(inCollection(collection)).
		Query()
	rows := &entsql.Rows{}
	if err := q.Query(ctx, query, args, rows); err != nil {
		return 0, err
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

// Get returns one record.
func (s *Store) Get(ctx context.Context, collection, id string) (Doc, error) {
	return get(ctx, s.drv, collection, id)
}

// Create stores doc as a new record of collection. The id, timestamps and
// created_by/updated_by are assigned here; an id already present in doc is
// kept and must be free.
func (s *Store) Create(ctx context.Context, collection string, doc Doc, actor string) (Doc, error) {
	out := gateway.Merge(nil, doc)
	id := strings.TrimSpace(fmt.Sprint(out["id"]))
	if out["id"] == nil || id == "" {
		id = uuid.NewString()
	}
	ts := s.now().UTC().Format(time.RFC3339)
	out["id"] = id
	out["created_at"], out["updated_at"] = ts, ts
	out["created_by"], out["updated_by"] = actor, actor

	err := s.withTx(ctx, func(tx dialect.ExecQuerier) error {
		switch _, err := get(ctx, tx, collection, id); {
		case err == nil:
			return fmt.Errorf("%w: %s", ErrIDTaken, id)
		case !errors.Is(err, ErrNotFound):
			return err
		}
		if err := s.checkEmail(ctx, tx, collection, id, out); err != nil {
			return err
		}
		raw, err := json.Marshal(out)
		if err != nil {
			return err
		}
		query, args := builder().
			Insert(table).
			Columns("collection", "id", "email", "status", "doc", "created_at", "updated_at").
			Values(collection, id, emailKey(out), stringField(out, "status"), string(raw), ts, ts).
			Query()
		return tx.Exec(ctx, query, args, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", collection, err)
	}
	return out, nil
}

// Update merges patch into the record and returns the record before and
// after the change. Nested objects merge key by key.
func (s *Store) Update(ctx context.Context, collection, id string, patch Doc, actor string) (before, after Doc, err error) {
	err = s.withTx(ctx, func(tx dialect.ExecQuerier) error {
		cur, err := get(ctx, tx, collection, id)
		if err != nil {
			return err
		}
		next := gateway.Merge(cur, patch)
		next["id"] = cur["id"]
		next["created_at"], next["created_by"] = cur["created_at"], cur["created_by"]
		ts := s.now().UTC().Format(time.RFC3339)
		next["updated_at"], next["updated_by"] = ts, actor

		if err := s.checkEmail(ctx, tx, collection, id, next); err != nil {
			return err
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return err
		}
		query, args := builder().
			Update(table).
			Set("doc", string(raw)).
			Set("email", emailKey(next)).
			Set("status", stringField(next, "status")).
			Set("updated_at", ts).
			Where(byID(collection, id)).
			Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			return err
		}
		before, after = cur, next
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("updating %s %s: %w", collection, id, err)
	}
	return before, after, nil
}

// Delete removes a record and returns it as it was.
func (s *Store) Delete(ctx context.Context, collection, id string) (Doc, error) {
	var gone Doc
	err := s.withTx(ctx, func(tx dialect.ExecQuerier) error {
		cur, err := get(ctx, tx, collection, id)
		if err != nil {
			return err
		}
		query, args := builder().Delete(table).Where(byID(collection, id)).Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			return err
		}
		gone = cur
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("deleting %s %s: %w", collection, id, err)
	}
	return gone, nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx dialect.ExecQuerier) error) error {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) checkEmail(ctx context.Context, q dialect.ExecQuerier, collection, id string, doc Doc) error {
	key := emailKey(doc)
	if key == "" || !s.isUnique(collection) {
		return nil
	}
	query, args := builder().
		Select("id").
		From(entsql.Table(table)).
		Where(entsql.And(
			entsql.EQ("collection", collection),
			entsql.EQ("email", key),
			entsql.NEQ("id", id),
		)).
		Limit(1).
		Query()
	rows := &entsql.Rows{}
	if err := q.Query(ctx, query, args, rows); err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return ErrDuplicate
	}
	return rows.Err()
}

func get(ctx context.Context, q dialect.ExecQuerier, collection, id string) (Doc, error) {
	query, args := builder().
		Select("doc").
		From(entsql.Table(table)).
		Where(byID(collection, id)).
		Query()
	docs, err := queryDocs(ctx, q, query, args)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return docs[0], nil
}

func queryDocs(ctx context.Context, q dialect.ExecQuerier, query string, args []any) ([]Doc, error) {
	rows := &entsql.Rows{}
	if err := q.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []Doc
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var d Doc
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, fmt.Errorf("decoding stored document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func stringField(d Doc, key string) string {
	s, _ := d[key].(string)
	return s
}

func emailKey(d Doc) string {
	return strings.ToLower(strings.TrimSpace(stringField(d, "email")))
}
