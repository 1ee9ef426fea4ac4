// Package permission evaluates whether an actor holds a capability.
//
// Actors are explicit values handed to each screen when it is built.
package permission

import "strings"

// Actions every entity screen gates.
const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// RoleAdmin always passes the screen-entry check.
const RoleAdmin = "admin"

// Capability is a named permission of the form "<entity>.<action>".
type Capability string

// Cap builds the capability for an action on an entity.
func Cap(entity, action string) Capability {
	return Capability(entity + "." + action)
}

// Entity returns the entity part of the capability.
func (c Capability) Entity() string {
	e, _, _ := strings.Cut(string(c), ".")
	return e
}

// Actor is the staff member operating the console.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Role string `json:"role"`
}

// Oracle answers capability checks.
type Oracle interface {
	HasPermission(actor Actor, c Capability) bool
}

// OracleFunc adapts a plain function to the Oracle interface.
type OracleFunc func(actor Actor, c Capability) bool

func (f OracleFunc) HasPermission(actor Actor, c Capability) bool {
	return f(actor, c)
}

// Grants returns an Oracle that allows exactly the listed capabilities to
// every actor. Patterns follow Policy matching rules.
func Grants(patterns ...string) Oracle {
	return OracleFunc(func(_ Actor, c Capability) bool {
		return matchAny(patterns, c)
	})
}

// CanEnter is the screen-level guard: admins always enter, everyone else
// needs the entity's view capability.
func CanEnter(o Oracle, actor Actor, entity string) bool {
	if actor.Role == RoleAdmin {
		return true
	}
	return o.HasPermission(actor, Cap(entity, ActionView))
}

// Role lists the capability patterns of one role and the screen its members
// land on when they open a screen they cannot enter.
type Role struct {
	Capabilities []string `json:"capabilities"`
	Home         string   `json:"home"`
}

// Policy maps role names to their grants.
type Policy struct {
	DefaultHome string          `json:"default_home"`
	Roles       map[string]Role `json:"roles"`
}

// HasPermission implements Oracle. Patterns are exact capabilities,
// "<entity>.*" or "*".
func (p *Policy) HasPermission(actor Actor, c Capability) bool {
	role, ok := p.Roles[actor.Role]
	if !ok {
		return false
	}
	return matchAny(role.Capabilities, c)
}

// Home returns the redirect target for a role.
func (p *Policy) Home(role string) string {
	if r, ok := p.Roles[role]; ok && r.Home != "" {
		return r.Home
	}
	return p.DefaultHome
}

func matchAny(patterns []string, c Capability) bool {
	for _, pat := range patterns {
		if match(pat, c) {
			return true
		}
	}
	return false
}

func match(pattern string, c Capability) bool {
	switch {
	case pattern == "*":
		return true
	case strings.HasSuffix(pattern, ".*"):
		return strings.TrimSuffix(pattern, ".*") == c.Entity()
	default:
		return pattern == string(c)
	}
}
