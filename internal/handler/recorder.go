package handler

import (
	"context"

	"github.com/matthewbaird/opsconsole/internal/event"
)

// publish hands a record event to the bus when one is configured.
// Delivery is best-effort; the request has already committed.
func (h *RecordsHandler) publish(ctx context.Context, evt event.DomainEvent) {
	if h.events == nil {
		return
	}
	h.events.Publish(ctx, evt)
}
