package eventbus

import (
	"context"
	"log"
	"strings"

	"github.com/matthewbaird/opsconsole/internal/event"
)

// LogConsumer logs every record event.
type LogConsumer struct{}

func NewLogConsumer() *LogConsumer { return &LogConsumer{} }

func (c *LogConsumer) HandleEvent(_ context.Context, evt event.DomainEvent) error {
	refs := make([]string, len(evt.AffectedEntities))
	for i, ref := range evt.AffectedEntities {
		refs[i] = ref.EntityType + ":" + short(ref.EntityID)
	}
	log.Printf("event: %s by %s via %s: %s [%s]",
		evt.EventType, evt.Actor, evt.Source, evt.Summary, strings.Join(refs, " "))
	return nil
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
