package mutation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matthewbaird/opsconsole/internal/form"
	"github.com/matthewbaird/opsconsole/internal/gateway"
)

var profileFields = FieldMap{
	"firstName":                       "first_name",
	"email":                           "email",
	"preferences.language":            "preferences.language",
	"preferences.notifications.email": "preferences.notifications.email",
	"address":                         "address",
}

func TestFieldMap_Payload(t *testing.T) {
	d := form.Draft{
		"firstName": "Jane",
		"email":     "jane@example.com",
		"preferences": form.Draft{
			"language":      "en",
			"notifications": map[string]any{"email": false, "sms": true},
		},
		"address": form.Draft{"city": "Lisbon"},
		"local":   "not sent",
	}

	assert.Equal(t, gateway.Payload{
		"first_name": "Jane",
		"email":      "jane@example.com",
		"preferences": map[string]any{
			"language":      "en",
			"notifications": map[string]any{"email": false},
		},
		"address": map[string]any{"city": "Lisbon"},
	}, profileFields.Payload(d))
}

func TestFieldMap_DraftRoundTrip(t *testing.T) {
	doc := map[string]any{
		"id":          "p1",
		"first_name":  "Jane",
		"email":       "jane@example.com",
		"preferences": map[string]any{"language": "pt", "notifications": map[string]any{"email": true}},
	}
	d := profileFields.Draft(doc)

	assert.Equal(t, "Jane", d.String("firstName"))
	assert.Equal(t, "true", d.String("preferences.notifications.email"))
	_, hasID := d.Get("id")
	assert.False(t, hasID)
	_, hasAddress := d.Get("address")
	assert.False(t, hasAddress)

	back := profileFields.Payload(d)
	assert.Equal(t, "pt", form.Draft(back).String("preferences.language"))
}
