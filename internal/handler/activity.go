package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matthewbaird/opsconsole/internal/activity"
)

// ActivityHandler serves the record activity log.
type ActivityHandler struct {
	store activity.Store
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(store activity.Store) *ActivityHandler {
	return &ActivityHandler{store: store}
}

// RegisterRoutes mounts the activity routes on r.
func (h *ActivityHandler) RegisterRoutes(r chi.Router) {
	r.Get("/v1/activity", h.HandleListActivity)
}

// HandleListActivity returns activity newest first. With entity_id it is
// the feed of one record, otherwise the feed of entity_type (or of
// everything when that is empty too).
// GET /v1/activity?entity_type=&entity_id=&since=&limit=&cursor=
func (h *ActivityHandler) HandleListActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entityType, entityID := q.Get("entity_type"), q.Get("entity_id")
	if entityID != "" && entityType == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PARAMS", "entity_type is required with entity_id")
		return
	}

	var opts activity.QueryOptions
	if s := q.Get("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_PARAMS", "since must be RFC 3339")
			return
		}
		opts.Since = &t
	}
	if l := q.Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			opts.Limit = n
		}
	}
	opts.Cursor = q.Get("cursor")

	var (
		entries    []activity.Entry
		nextCursor string
		total      int
		err        error
	)
	if entityID != "" {
		entries, nextCursor, total, err = h.store.QueryByEntity(r.Context(), entityType, entityID, opts)
	} else {
		entries, nextCursor, total, err = h.store.Recent(r.Context(), entityType, opts)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "QUERY_FAILED", err.Error())
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}

	writeJSON(w, http.StatusOK, struct {
		Activities []activity.Entry `json:"activities"`
		NextCursor string           `json:"next_cursor,omitempty"`
		TotalCount int              `json:"total_count"`
	}{entries, nextCursor, total})
}
