package event

import (
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/opsconsole/internal/activity"
	"github.com/matthewbaird/opsconsole/internal/record"
)

// Event types.
const (
	TypeRecordCreated = "record_created"
	TypeRecordUpdated = "record_updated"
	TypeStatusChanged = "status_changed"
	TypeRecordDeleted = "record_deleted"
)

// DomainEvent carries the canonical shape of every record change.
type DomainEvent struct {
	ID               string
	EventType        string
	OccurredAt       time.Time
	AffectedEntities []activity.SourceRef
	Summary          string
	Actor            string
	Source           string
	CorrelationID    string
	Payload          json.RawMessage
}

// Change describes one mutation of a stored record. Before is nil for a
// create and After is nil for a delete.
type Change struct {
	Collection    string
	ID            string
	Before        map[string]any
	After         map[string]any
	Actor         string
	Source        string
	CorrelationID string
}

// ChangePayload is the JSON payload of record events.
type ChangePayload struct {
	Collection string   `json:"collection"`
	ID         string   `json:"id"`
	Fields     []string `json:"fields,omitempty"`
	FromStatus string   `json:"from_status,omitempty"`
	ToStatus   string   `json:"to_status,omitempty"`
}

// relations maps reference fields to the collection they point into. A
// change to a visit is also indexed under its customer and category.
var relations = map[string]string{
	"customer_id": "customers",
	"category_id": "categories",
}

func newID() string { return uuid.New().String() }

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// NewRecordCreated builds the event for a created record.
func NewRecordCreated(c Change) DomainEvent {
	return newEvent(c, TypeRecordCreated, c.After,
		fmt.Sprintf("%s %s created", singular(c.Collection), displayName(c.After, c.ID)),
		ChangePayload{Collection: c.Collection, ID: c.ID, ToStatus: statusOf(c.After)})
}

// NewRecordUpdated builds the event for an updated record. A status change
// is reported as TypeStatusChanged.
func NewRecordUpdated(c Change) DomainEvent {
	p := ChangePayload{Collection: c.Collection, ID: c.ID, Fields: changedFields(c.Before, c.After)}
	from, to := statusOf(c.Before), statusOf(c.After)
	if from != to {
		p.FromStatus, p.ToStatus = from, to
		return newEvent(c, TypeStatusChanged, c.After,
			fmt.Sprintf("%s %s status changed from %s to %s", singular(c.Collection), displayName(c.After, c.ID),
				record.StatusLabel(from), record.StatusLabel(to)),
			p)
	}
	return newEvent(c, TypeRecordUpdated, c.After,
		fmt.Sprintf("%s %s updated (%s)", singular(c.Collection), displayName(c.After, c.ID), strings.Join(p.Fields, ", ")),
		p)
}

// NewRecordDeleted builds the event for a deleted record.
func NewRecordDeleted(c Change) DomainEvent {
	return newEvent(c, TypeRecordDeleted, c.Before,
		fmt.Sprintf("%s %s deleted", singular(c.Collection), displayName(c.Before, c.ID)),
		ChangePayload{Collection: c.Collection, ID: c.ID, FromStatus: statusOf(c.Before)})
}

func newEvent(c Change, typ string, doc map[string]any, summary string, payload ChangePayload) DomainEvent {
	refs := []activity.SourceRef{{EntityType: c.Collection, EntityID: c.ID, Role: "subject"}}
	for _, field := range sortedKeys(relations) {
		if id := record.NormalizeID(doc[field]); id != "" {
			refs = append(refs, activity.SourceRef{EntityType: relations[field], EntityID: id, Role: "related"})
		}
	}
	return DomainEvent{
		ID:               newID(),
		EventType:        typ,
		OccurredAt:       time.Now(),
		AffectedEntities: refs,
		Summary:          summary,
		Actor:            c.Actor,
		Source:           c.Source,
		CorrelationID:    c.CorrelationID,
		Payload:          mustJSON(payload),
	}
}

// changedFields lists top-level fields whose value differs, ignoring audit
// bookkeeping.
func changedFields(before, after map[string]any) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range []map[string]any{before, after} {
		for k := range m {
			if seen[k] || isAudit(k) {
				continue
			}
			seen[k] = true
			if string(mustJSON(before[k])) != string(mustJSON(after[k])) {
				out = append(out, k)
			}
		}
	}
	sort.Strings(out)
	return out
}

func isAudit(field string) bool {
	return slices.Contains([]string{"id", "created_at", "updated_at", "created_by", "updated_by"}, field)
}

func statusOf(doc map[string]any) string {
	s, _ := doc["status"].(string)
	return record.NormalizeStatus(s)
}

func displayName(doc map[string]any, id string) string {
	str := func(k string) string { s, _ := doc[k].(string); return s }
	if name := record.JoinName(str("first_name"), str("last_name")); name != "" {
		return name
	}
	for _, k := range []string{"name", "title", "customer_name"} {
		if v := strings.TrimSpace(str(k)); v != "" {
			return v
		}
	}
	return id
}

func singular(collection string) string {
	label := strings.TrimSuffix(collection, "s")
	if strings.HasSuffix(collection, "ies") {
		label = strings.TrimSuffix(collection, "ies") + "y"
	}
	return record.StatusLabel(label)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
