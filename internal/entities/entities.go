// Package entities defines the console's entity screens: customers,
// visitors, visits, service categories, reports and the staff profile.
// Each definition is data for the generic screen machinery.
package entities

import (
	"strings"

	"github.com/matthewbaird/opsconsole/internal/gateway"
	"github.com/matthewbaird/opsconsole/internal/listing"
	"github.com/matthewbaird/opsconsole/internal/screen"
)

// Names lists every entity collection in navigation order.
var Names = []string{"customers", "visitors", "visits", "categories", "reports", "profile"}

// Collection is what the API enforces for one entity collection.
type Collection struct {
	Name          string
	Statuses      []string
	DefaultStatus string
	// Required lists server fields a create must carry.
	Required []string
	// UniqueEmail rejects a second record with the same email.
	UniqueEmail bool
	// Transitions restricts status changes when set.
	Transitions map[string][]string
}

// Collections returns the server rules of every collection, in Names order.
func Collections() []Collection {
	return []Collection{
		{Name: "customers", Statuses: customerPalette.Codes(), DefaultStatus: "active", Required: []string{"first_name", "last_name", "email"}, UniqueEmail: true},
		{Name: "visitors", Statuses: visitorPalette.Codes(), DefaultStatus: "expected", Required: []string{"first_name", "last_name"}},
		{Name: "visits", Statuses: visitPalette.Codes(), DefaultStatus: "scheduled", Required: []string{"customer_id", "visit_date"}, Transitions: VisitTransitions},
		{Name: "categories", Statuses: categoryPalette.Codes(), DefaultStatus: "active", Required: []string{"name", "code"}},
		{Name: "reports", Statuses: reportPalette.Codes(), DefaultStatus: "draft", Required: []string{"title"}},
		{Name: "profile", Statuses: profilePalette.Codes(), DefaultStatus: "active", Required: []string{"first_name", "last_name", "email"}, UniqueEmail: true},
	}
}

// Remote builds every screen against the console API.
func Remote(c *gateway.Client, deps screen.Deps) []screen.Handle {
	return []screen.Handle{
		remote(c, Customers(), deps),
		remote(c, Visitors(), deps),
		remote(c, Visits(), deps),
		remote(c, Categories(), deps),
		remote(c, Reports(), deps),
		remote(c, Profiles(), deps),
	}
}

func remote[R any, V listing.Viewable](c *gateway.Client, def screen.Definition[R, V], deps screen.Deps) screen.Handle {
	return screen.New(def, gateway.Gateway[R](gateway.NewResource[R](c, def.Name)), deps)
}

// Memory builds every screen over in-process gateways seeded with docs,
// keyed by collection name.
func Memory(docs map[string][]map[string]any, deps screen.Deps) []screen.Handle {
	return []screen.Handle{
		memory(docs, Customers(), deps),
		memory(docs, Visitors(), deps),
		memory(docs, Visits(), deps),
		memory(docs, Categories(), deps),
		memory(docs, Reports(), deps),
		memory(docs, Profiles(), deps),
	}
}

func memory[R any, V listing.Viewable](docs map[string][]map[string]any, def screen.Definition[R, V], deps screen.Deps) screen.Handle {
	return screen.New(def, gateway.Gateway[R](gateway.NewMemory[R](docs[def.Name]...)), deps)
}

// Find returns the screen named name.
func Find(screens []screen.Handle, name string) (screen.Handle, bool) {
	for _, s := range screens {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
