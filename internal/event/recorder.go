// Package event describes record changes made through the console API.
// Handlers publish events to the in-process bus; the activity recorder
// subscribes and fans each event out into activity entries.
package event

import (
	"context"

	"github.com/matthewbaird/opsconsole/internal/activity"
)

// Recorder writes domain events to the activity store.
type Recorder interface {
	Record(ctx context.Context, evt DomainEvent) error
}

// Publisher sends domain events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, evt DomainEvent)
}

// ActivityRecorder implements Recorder by fanning out a DomainEvent into
// one activity entry per affected record. It also serves as a bus handler.
type ActivityRecorder struct {
	store activity.Store
}

// NewActivityRecorder creates a new ActivityRecorder backed by the given store.
func NewActivityRecorder(store activity.Store) *ActivityRecorder {
	return &ActivityRecorder{store: store}
}

// Record fans out a DomainEvent into activity entries and writes them.
func (r *ActivityRecorder) Record(ctx context.Context, evt DomainEvent) error {
	entries := make([]activity.Entry, 0, len(evt.AffectedEntities))
	for _, ref := range evt.AffectedEntities {
		entries = append(entries, activity.Entry{
			EventID:    evt.ID,
			EventType:  evt.EventType,
			OccurredAt: evt.OccurredAt,
			EntityType: ref.EntityType,
			EntityID:   ref.EntityID,
			EntityRole: ref.Role,
			Summary:    evt.Summary,
			Actor:      evt.Actor,
			Source:     evt.Source,
			Payload:    evt.Payload,
		})
	}
	return r.store.WriteEntries(ctx, entries)
}

// HandleEvent lets the recorder subscribe to the event bus.
func (r *ActivityRecorder) HandleEvent(ctx context.Context, evt DomainEvent) error {
	return r.Record(ctx, evt)
}
