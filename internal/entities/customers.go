package entities

import (
	"github.com/matthewbaird/opsconsole/internal/form"
	"github.com/matthewbaird/opsconsole/internal/mutation"
	"github.com/matthewbaird/opsconsole/internal/record"
	"github.com/matthewbaird/opsconsole/internal/screen"
)

// Address is a postal address sub-object.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	Country string `json:"country,omitempty"`
}

func (a Address) String() string {
	return joinNonEmpty(", ", a.Street, a.City, a.Country)
}

// RawCustomer is a customer as the API sends it.
type RawCustomer struct {
	ID             any     `json:"id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Nationality    string  `json:"nationality"`
	PassportNumber string  `json:"passport_number"`
	Status         string  `json:"status"`
	Address        Address `json:"address"`
	Notes          string  `json:"notes"`
	Audit
}

// Customer is the customer view record.
type Customer struct {
	ID             string
	FirstName      string
	LastName       string
	Name           string
	Email          string
	Phone          string
	Nationality    string
	PassportNumber string
	Address        Address
	Notes          string
	Status         string
	Stamp
}

func (c Customer) Key() string        { return c.ID }
func (c Customer) StatusCode() string { return c.Status }
func (c Customer) SearchFields() []string {
	return []string{c.FirstName, c.LastName, c.Name, c.ID, c.Email}
}

var customerPalette = record.Palette{
	{Code: "active", Color: record.ColorGreen},
	{Code: "inactive", Color: record.ColorGray},
	{Code: "suspended", Color: record.ColorRed},
}

// TransformCustomer maps a raw customer to its view record.
func TransformCustomer(r RawCustomer) Customer {
	return Customer{
		ID:             record.NormalizeID(r.ID),
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Name:           record.JoinName(r.FirstName, r.LastName),
		Email:          r.Email,
		Phone:          r.Phone,
		Nationality:    r.Nationality,
		PassportNumber: r.PassportNumber,
		Address:        r.Address,
		Notes:          r.Notes,
		Status:         record.NormalizeStatus(r.Status),
		Stamp:          stamp(r.Audit),
	}
}

var customerFields = mutation.FieldMap{
	"firstName":       "first_name",
	"lastName":        "last_name",
	"email":           "email",
	"phone":           "phone",
	"nationality":     "nationality",
	"passportNumber":  "passport_number",
	"status":          "status",
	"address.street":  "address.street",
	"address.city":    "address.city",
	"address.country": "address.country",
	"notes":           "notes",
}

// Customers is the customer screen definition.
func Customers() screen.Definition[RawCustomer, Customer] {
	return screen.Definition[RawCustomer, Customer]{
		Name:      "customers",
		Label:     "customer",
		Title:     "Customers",
		Palette:   customerPalette,
		Transform: TransformCustomer,
		Form: &form.Schema{
			Fields: []form.Field{
				{Name: "firstName", Label: "First name", Kind: form.KindText},
				{Name: "lastName", Label: "Last name", Kind: form.KindText},
				{Name: "email", Label: "Email", Kind: form.KindEmail},
				{Name: "phone", Label: "Phone", Kind: form.KindText},
				{Name: "nationality", Label: "Nationality", Kind: form.KindText},
				{Name: "passportNumber", Label: "Passport number", Kind: form.KindText},
				{Name: "status", Label: "Status", Kind: form.KindSelect, Options: customerPalette.Codes()},
				{Name: "address.street", Label: "Street", Kind: form.KindText},
				{Name: "address.city", Label: "City", Kind: form.KindText},
				{Name: "address.country", Label: "Country", Kind: form.KindText},
				{Name: "notes", Label: "Notes", Kind: form.KindTextArea},
			},
			Defaults: form.Draft{"status": "active"},
			Rules: []form.Rule{
				form.Required("firstName", "First name"),
				form.Required("lastName", "Last name"),
				form.Required("email", "Email"),
				form.Email("email", "Email"),
				form.OneOf("status", "Status", customerPalette.Codes()...),
			},
		},
		Fields: customerFields,
		Seed: func(c Customer) form.Draft {
			return form.Draft{
				"firstName":      c.FirstName,
				"lastName":       c.LastName,
				"email":          c.Email,
				"phone":          c.Phone,
				"nationality":    c.Nationality,
				"passportNumber": c.PassportNumber,
				"status":         c.Status,
				"address":        form.Draft{"street": c.Address.Street, "city": c.Address.City, "country": c.Address.Country},
				"notes":          c.Notes,
			}
		},
		Subject: func(c Customer) string { return c.Name },
		Columns: []screen.Column{
			{Key: "name", Label: "Name"},
			{Key: "email", Label: "Email"},
			{Key: "phone", Label: "Phone"},
			{Key: "nationality", Label: "Nationality"},
		},
		Cells: func(c Customer) []string {
			return []string{c.Name, c.Email, c.Phone, c.Nationality}
		},
		Details: func(c Customer) []screen.Detail {
			d := []screen.Detail{
				{Label: "Email", Value: c.Email},
				{Label: "Phone", Value: orPlaceholder(c.Phone)},
				{Label: "Nationality", Value: orPlaceholder(c.Nationality)},
				{Label: "Passport number", Value: orPlaceholder(c.PassportNumber)},
				{Label: "Address", Value: orPlaceholder(c.Address.String())},
				{Label: "Notes", Value: orPlaceholder(c.Notes)},
			}
			return append(d, c.Stamp.details()...)
		},
	}
}
