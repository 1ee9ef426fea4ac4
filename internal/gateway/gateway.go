// Package gateway defines the remote data contract every entity screen loads
// and mutates through, plus an HTTP/JSON implementation against the console
// API and an in-memory implementation for tests and demos.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// MaxPageSize is the largest page the API serves.
const MaxPageSize = 100

// ListParams holds pagination for a list call. Filtering and search are
// client-side and never travel to the server.
type ListParams struct {
	PageSize int
	Offset   int
}

// Page is one page of raw server records.
type Page[R any] struct {
	Items    []R `json:"items"`
	Total    int `json:"total"`
	PageSize int `json:"page_size"`
	Offset   int `json:"offset"`
}

// Payload is a request body keyed by server field names. Nested objects are
// nested Payloads or map[string]any.
type Payload map[string]any

// Lister loads pages of raw records.
type Lister[R any] interface {
	List(ctx context.Context, params ListParams) (Page[R], error)
}

// Gateway is the per-entity remote CRUD contract.
type Gateway[R any] interface {
	Lister[R]
	Create(ctx context.Context, payload Payload) (R, error)
	Update(ctx context.Context, id string, payload Payload) (R, error)
	Delete(ctx context.Context, id string) error
}

// Error is a rejected gateway operation. Message is human-readable and is
// what the console shows to staff.
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"error"`
	// Err is the transport failure behind the error, if any.
	Err error `json:"-"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("gateway: %s (%s)", e.Message, e.Code)
	}
	return "gateway: " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// MessageOf returns the human-readable message carried by err, or fallback
// when err carries none.
func MessageOf(err error, fallback string) string {
	var gerr *Error
	if errors.As(err, &gerr) && strings.TrimSpace(gerr.Message) != "" {
		return gerr.Message
	}
	return fallback
}

// IsNotFound reports whether err is a 404 from the gateway.
func IsNotFound(err error) bool {
	var gerr *Error
	return errors.As(err, &gerr) && gerr.StatusCode == http.StatusNotFound
}

// Merge applies patch onto a deep copy of dst. Nested objects merge key by
// key; every other value replaces.
func Merge(dst, patch map[string]any) map[string]any {
	out := make(map[string]any, len(dst)+len(patch))
	for k, v := range dst {
		out[k] = cloneValue(v)
	}
	for k, v := range patch {
		pm, pok := asMap(v)
		dm, dok := asMap(out[k])
		if pok && dok {
			out[k] = Merge(dm, pm)
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Payload:
		return map[string]any(m), true
	default:
		return nil, false
	}
}

func cloneValue(v any) any {
	if m, ok := asMap(v); ok {
		return Merge(nil, m)
	}
	if s, ok := v.([]any); ok {
		cp := make([]any, len(s))
		for i := range s {
			cp[i] = cloneValue(s[i])
		}
		return cp
	}
	return v
}
