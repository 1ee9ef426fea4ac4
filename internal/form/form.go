// Package form holds the draft state of one open modal: a path-keyed tree of
// field values, per-field error messages, and the synchronous validation
// that decides whether the draft may be submitted.
package form

import "maps"

// Kind tells front ends how to render and edit a field.
type Kind string

const (
	KindText     Kind = "text"
	KindEmail    Kind = "email"
	KindNumber   Kind = "number"
	KindDate     Kind = "date"
	KindSelect   Kind = "select"
	KindBool     Kind = "bool"
	KindTextArea Kind = "textarea"
)

// Field describes one editable field.
type Field struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Kind    Kind     `json:"kind"`
	Options []string `json:"options,omitempty"`
}

// Errors maps field names to messages. Empty means submittable.
type Errors map[string]string

// Schema is the per-entity form definition.
type Schema struct {
	Fields   []Field
	Defaults Draft
	Rules    []Rule
}

// Validate runs every rule. The first failing rule of a field wins.
func (s *Schema) Validate(d Draft) Errors {
	errs := Errors{}
	for _, rule := range s.Rules {
		field, msg := rule(d)
		if msg == "" {
			continue
		}
		if _, seen := errs[field]; !seen {
			errs[field] = msg
		}
	}
	return errs
}

// Session is the local draft of one modal instance. It is discarded with
// the modal and is not safe for concurrent use.
type Session struct {
	schema *Schema
	draft  Draft
	errors Errors
}

// NewSession seeds a draft from the schema defaults overlaid with seed.
func NewSession(schema *Schema, seed Draft) *Session {
	return &Session{schema: schema, draft: Overlay(schema.Defaults, seed), errors: Errors{}}
}

// SetField stores value at the dotted field name and clears that field's error.
func (s *Session) SetField(name string, value any) {
	p := ParsePath(name)
	if len(p) == 0 {
		return
	}
	s.draft = SetPath(s.draft, p, value)
	delete(s.errors, p.String())
}

// Validate re-checks the whole draft and replaces the error map.
func (s *Session) Validate() Errors {
	s.errors = s.schema.Validate(s.draft)
	return s.Errors()
}

// Draft returns the current tree.
func (s *Session) Draft() Draft { return s.draft }

// Errors returns a copy of the current error map.
func (s *Session) Errors() Errors { return maps.Clone(s.errors) }

// Schema returns the form definition.
func (s *Session) Schema() *Schema { return s.schema }
