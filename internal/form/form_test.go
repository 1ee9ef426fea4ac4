package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func customerSchema() *Schema {
	return &Schema{
		Fields: []Field{
			{Name: "firstName", Label: "First name", Kind: KindText},
			{Name: "email", Label: "Email", Kind: KindEmail},
			{Name: "status", Label: "Status", Kind: KindSelect, Options: []string{"active", "inactive"}},
		},
		Defaults: Draft{"status": "active"},
		Rules: []Rule{
			Required("firstName", "First name"),
			Required("email", "Email"),
			Email("email", "Email"),
			OneOf("status", "Status", "active", "inactive"),
		},
	}
}

func TestSession_InvalidEmail(t *testing.T) {
	s := NewSession(customerSchema(), Draft{"firstName": "Jane", "email": "jane@example.com"})
	s.SetField("email", "not-an-email")

	errs := s.Validate()
	assert.Equal(t, Errors{"email": "Email is invalid"}, errs)
}

func TestSession_RequiredFirstWins(t *testing.T) {
	s := NewSession(customerSchema(), nil)
	errs := s.Validate()
	assert.Equal(t, "Email is required", errs["email"])
	assert.Equal(t, "First name is required", errs["firstName"])
	assert.Equal(t, "active", s.Draft().String("status"), "defaults seed the draft")
}

func TestSession_WhitespaceIsEmpty(t *testing.T) {
	s := NewSession(customerSchema(), Draft{"firstName": "   ", "email": "a@b.co"})
	assert.Equal(t, Errors{"firstName": "First name is required"}, s.Validate())
}

func TestSession_SetFieldClearsOnlyThatError(t *testing.T) {
	s := NewSession(customerSchema(), nil)
	s.Validate()
	s.SetField("email", "x")

	errs := s.Errors()
	assert.NotContains(t, errs, "email", "changing a field clears its error")
	assert.Contains(t, errs, "firstName")

	assert.Equal(t, "Email is invalid", s.Validate()["email"], "full re-check happens on validate")
}

func TestSession_EmptyErrorsWhenValid(t *testing.T) {
	s := NewSession(customerSchema(), Draft{"firstName": "Jane", "email": "jane@example.com"})
	assert.Empty(t, s.Validate())
}

func TestSession_SeedIsCopied(t *testing.T) {
	seed := Draft{"firstName": "Jane", "address": map[string]any{"city": "Lisbon"}}
	s := NewSession(customerSchema(), seed)
	s.SetField("address.city", "Porto")

	assert.Equal(t, "Lisbon", seed.String("address.city"))
	assert.Equal(t, "Porto", s.Draft().String("address.city"))
}

func TestRequiredWhen(t *testing.T) {
	rule := RequiredWhen("dateFrom", "Start date", "period", "custom")

	_, msg := rule(Draft{"period": "month"})
	assert.Empty(t, msg)

	field, msg := rule(Draft{"period": "custom"})
	assert.Equal(t, "dateFrom", field)
	assert.Equal(t, "Start date is required", msg)

	_, msg = rule(Draft{"period": "custom", "dateFrom": "2025-01-01"})
	assert.Empty(t, msg)
}

func TestAfter(t *testing.T) {
	rule := After("followUpDate", "Follow-up date", "visitDate", "Visit date")

	_, msg := rule(Draft{"visitDate": "2025-05-10", "followUpDate": "2025-05-10"})
	assert.Equal(t, "Follow-up date must be after visit date", msg, "same day is not strictly after")

	_, msg = rule(Draft{"visitDate": "2025-05-10", "followUpDate": "2025-05-09"})
	assert.NotEmpty(t, msg)

	_, msg = rule(Draft{"visitDate": "2025-05-10", "followUpDate": "2025-05-11"})
	assert.Empty(t, msg)

	_, msg = rule(Draft{"visitDate": "2025-05-10"})
	assert.Empty(t, msg, "optional follow-up")
}

func TestNotBefore(t *testing.T) {
	rule := NotBefore("dateTo", "End date", "dateFrom", "Start date")

	_, msg := rule(Draft{"dateFrom": "2025-05-10", "dateTo": "2025-05-10"})
	assert.Empty(t, msg, "one-day range")

	_, msg = rule(Draft{"dateFrom": "2025-05-10", "dateTo": "2025-05-09"})
	assert.Equal(t, "End date cannot be before start date", msg)

	_, msg = rule(Draft{"dateTo": "2025-05-09"})
	assert.Empty(t, msg)
}

func TestDateRule(t *testing.T) {
	rule := Date("visitDate", "Visit date")
	_, msg := rule(Draft{"visitDate": "someday"})
	assert.Equal(t, "Visit date is not a valid date", msg)
	_, msg = rule(Draft{"visitDate": "2025-02-01"})
	assert.Empty(t, msg)
}

func TestEmailPattern(t *testing.T) {
	rule := Email("email", "Email")
	for _, ok := range []string{"a@b.co", "first.last@sub.example.org"} {
		_, msg := rule(Draft{"email": ok})
		assert.Empty(t, msg, ok)
	}
	for _, bad := range []string{"not-an-email", "a@b", "@.", "a@.c"} {
		_, msg := rule(Draft{"email": bad})
		assert.Equal(t, "Email is invalid", msg, bad)
	}
}
