package handler

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matthewbaird/opsconsole/internal/entities"
	"github.com/matthewbaird/opsconsole/internal/event"
	"github.com/matthewbaird/opsconsole/internal/gateway"
	"github.com/matthewbaird/opsconsole/internal/record"
	"github.com/matthewbaird/opsconsole/internal/store"
)

// RecordsHandler serves every entity collection under /v1/{entity}.
type RecordsHandler struct {
	store       *store.Store
	collections map[string]entities.Collection
	events      event.Publisher
}

// NewRecordsHandler creates a RecordsHandler for the given collections.
// events may be nil.
func NewRecordsHandler(st *store.Store, collections []entities.Collection, events event.Publisher) *RecordsHandler {
	h := &RecordsHandler{
		store:       st,
		collections: make(map[string]entities.Collection, len(collections)),
		events:      events,
	}
	for _, c := range collections {
		h.collections[c.Name] = c
		if c.UniqueEmail {
			st.UniqueEmail(c.Name)
		}
	}
	return h
}

// RegisterRoutes mounts the collection routes on r.
func (h *RecordsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/v1/{entity}", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *RecordsHandler) collection(w http.ResponseWriter, r *http.Request) (entities.Collection, bool) {
	name := chi.URLParam(r, "entity")
	c, ok := h.collections[name]
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown entity: "+name)
	}
	return c, ok
}

func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	pg := parsePagination(r)
	items, total, err := h.store.List(r.Context(), c.Name, pg.Limit, pg.Offset)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	if items == nil {
		items = []store.Doc{}
	}
	writeJSON(w, http.StatusOK, gateway.Page[store.Doc]{
		Items:    items,
		Total:    total,
		PageSize: pg.Limit,
		Offset:   pg.Offset,
	})
}

func (h *RecordsHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	doc, err := h.store.Get(r.Context(), c.Name, chi.URLParam(r, "id"))
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *RecordsHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	audit, ok := parseAuditContext(w, r)
	if !ok {
		return
	}
	var body store.Doc
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if body == nil {
		body = store.Doc{}
	}
	if _, set := body["status"]; !set {
		body["status"] = c.DefaultStatus
	}
	if msg := validateDoc(c, body, c.Required); msg != "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	doc, err := h.store.Create(r.Context(), c.Name, body, audit.Actor)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	h.publish(r.Context(), event.NewRecordCreated(change(c.Name, audit, nil, doc)))
	writeJSON(w, http.StatusCreated, doc)
}

func (h *RecordsHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")
	audit, ok := parseAuditContext(w, r)
	if !ok {
		return
	}
	var patch store.Doc
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	// Audit fields and the id are server-owned.
	for _, k := range []string{"id", "created_at", "updated_at", "created_by", "updated_by"} {
		delete(patch, k)
	}
	var present []string
	for _, f := range c.Required {
		if _, set := patch[f]; set {
			present = append(present, f)
		}
	}
	if msg := validateDoc(c, patch, present); msg != "" {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", msg)
		return
	}

	if target, set := patch["status"]; set && c.Transitions != nil {
		current, err := h.store.Get(r.Context(), c.Name, id)
		if err != nil {
			storeErrorToHTTP(w, err)
			return
		}
		from, _ := current["status"].(string)
		if err := checkTransition(c, from, target.(string)); err != nil {
			writeError(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
			return
		}
	}

	before, after, err := h.store.Update(r.Context(), c.Name, id, patch, audit.Actor)
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	h.publish(r.Context(), event.NewRecordUpdated(change(c.Name, audit, before, after)))
	writeJSON(w, http.StatusOK, after)
}

func (h *RecordsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := h.collection(w, r)
	if !ok {
		return
	}
	audit, ok := parseAuditContext(w, r)
	if !ok {
		return
	}
	doc, err := h.store.Delete(r.Context(), c.Name, chi.URLParam(r, "id"))
	if err != nil {
		storeErrorToHTTP(w, err)
		return
	}
	h.publish(r.Context(), event.NewRecordDeleted(change(c.Name, audit, doc, nil)))
	w.WriteHeader(http.StatusNoContent)
}

// TransitionError reports a status change the collection does not allow.
type TransitionError struct {
	From, To string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("status cannot change from %q to %q", e.From, e.To)
}

// checkTransition allows any change in collections without a transition
// map. An unknown current status allows nothing.
func checkTransition(c entities.Collection, from, to string) error {
	if c.Transitions == nil {
		return nil
	}
	from, to = record.NormalizeStatus(from), record.NormalizeStatus(to)
	if slices.Contains(c.Transitions[from], to) {
		return nil
	}
	return &TransitionError{From: from, To: to}
}

// validateDoc checks the required fields and normalizes the status in place.
// It returns the first violation as a message.
func validateDoc(c entities.Collection, doc store.Doc, required []string) string {
	for _, f := range required {
		if isBlank(doc[f]) {
			return f + " is required"
		}
	}
	raw, set := doc["status"]
	if !set {
		return ""
	}
	s, ok := raw.(string)
	status := record.NormalizeStatus(s)
	if !ok || !slices.Contains(c.Statuses, status) {
		return fmt.Sprintf("status must be one of %s", strings.Join(c.Statuses, ", "))
	}
	doc["status"] = status
	return ""
}

func isBlank(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}

func change(collection string, audit AuditInfo, before, after store.Doc) event.Change {
	id, _ := after["id"].(string)
	if after == nil {
		id, _ = before["id"].(string)
	}
	return event.Change{
		Collection:    collection,
		ID:            id,
		Before:        before,
		After:         after,
		Actor:         audit.Actor,
		Source:        audit.Source,
		CorrelationID: audit.CorrelationID,
	}
}
