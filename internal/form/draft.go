package form

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a value in a Draft by explicit key segments.
type Path []string

// ParsePath splits a dotted field name ("preferences.notifications.email").
func ParsePath(name string) Path {
	var p Path
	for _, seg := range strings.Split(name, ".") {
		if seg = strings.TrimSpace(seg); seg != "" {
			p = append(p, seg)
		}
	}
	return p
}

func (p Path) String() string { return strings.Join(p, ".") }

// Draft is the editable tree of a record's fields. Drafts are treated as
// immutable values: SetPath returns a new tree and never writes into the
// one it was given.
type Draft map[string]any

// SetPath returns a copy of d with the value at p replaced by v. Only the
// maps along p are copied; every untouched branch is shared with d. A
// non-object value sitting where p needs an object is replaced by one.
func SetPath(d Draft, p Path, v any) Draft {
	if len(p) == 0 {
		return d
	}
	out := make(Draft, len(d)+1)
	for k, x := range d {
		out[k] = x
	}
	if len(p) == 1 {
		out[p[0]] = v
		return out
	}
	child, _ := asDraft(d[p[0]])
	out[p[0]] = SetPath(child, p[1:], v)
	return out
}

// GetPath returns the value at p.
func GetPath(d Draft, p Path) (any, bool) {
	if len(p) == 0 {
		return nil, false
	}
	cur := d
	for i, seg := range p {
		v, ok := cur[seg]
		if !ok {
			return nil, false
		}
		if i == len(p)-1 {
			return v, true
		}
		if cur, ok = asDraft(v); !ok {
			return nil, false
		}
	}
	return nil, false
}

// Get returns the value at a dotted field name.
func (d Draft) Get(name string) (any, bool) {
	return GetPath(d, ParsePath(name))
}

// String returns the value at name formatted for display and comparison.
// Missing and nil values are "".
func (d Draft) String(name string) string {
	v, _ := d.Get(name)
	return formatValue(v)
}

// Clone deep-copies the tree.
func (d Draft) Clone() Draft {
	if d == nil {
		return nil
	}
	out := make(Draft, len(d))
	for k, v := range d {
		if child, ok := asDraft(v); ok {
			out[k] = child.Clone()
			continue
		}
		out[k] = v
	}
	return out
}

// Overlay returns a deep copy of base with top laid over it. Objects present
// in both are overlaid key by key.
func Overlay(base, top Draft) Draft {
	out := base.Clone()
	if out == nil {
		out = Draft{}
	}
	for k, v := range top {
		tv, tok := asDraft(v)
		bv, bok := asDraft(out[k])
		switch {
		case tok && bok:
			out[k] = Overlay(bv, tv)
		case tok:
			out[k] = tv.Clone()
		default:
			out[k] = v
		}
	}
	return out
}

// Map converts the tree to plain nested maps.
func (d Draft) Map() map[string]any {
	out := make(map[string]any, len(d))
	for k, v := range d {
		if child, ok := asDraft(v); ok {
			out[k] = child.Map()
			continue
		}
		out[k] = v
	}
	return out
}

func asDraft(v any) (Draft, bool) {
	switch m := v.(type) {
	case Draft:
		return m, true
	case map[string]any:
		return Draft(m), true
	default:
		return nil, false
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
