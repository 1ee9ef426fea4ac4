package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testPolicy() *Policy {
	return &Policy{
		DefaultHome: "profile",
		Roles: map[string]Role{
			"admin": {Capabilities: []string{"*"}, Home: "customers"},
			"agent": {Capabilities: []string{"customers.*", "visits.view", "visits.edit"}},
			"front_desk": {
				Capabilities: []string{"visitors.view", "visitors.create"},
				Home:         "visitors",
			},
		},
	}
}

func TestPolicy_HasPermission(t *testing.T) {
	p := testPolicy()
	agent := Actor{ID: "a1", Role: "agent"}

	assert.True(t, p.HasPermission(agent, Cap("customers", ActionDelete)))
	assert.True(t, p.HasPermission(agent, "visits.edit"))
	assert.False(t, p.HasPermission(agent, "visits.delete"))
	assert.False(t, p.HasPermission(agent, "categories.view"))
	assert.True(t, p.HasPermission(Actor{Role: "admin"}, "anything.at_all"))
	assert.False(t, p.HasPermission(Actor{Role: "ghost"}, "customers.view"))
}

func TestPolicy_Home(t *testing.T) {
	p := testPolicy()
	assert.Equal(t, "visitors", p.Home("front_desk"))
	assert.Equal(t, "profile", p.Home("agent"))
	assert.Equal(t, "profile", p.Home("unknown"))
}

func TestCanEnter_AdminOverride(t *testing.T) {
	none := Grants()
	assert.True(t, CanEnter(none, Actor{Role: RoleAdmin}, "reports"))
	assert.False(t, CanEnter(none, Actor{Role: "agent"}, "reports"))
	assert.True(t, CanEnter(Grants("reports.view"), Actor{Role: "agent"}, "reports"))
}

func TestCapability_Entity(t *testing.T) {
	assert.Equal(t, "visits", Cap("visits", ActionEdit).Entity())
	assert.Equal(t, "visits.edit", string(Cap("visits", ActionEdit)))
}
