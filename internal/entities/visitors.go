package entities

import (
	"github.com/matthewbaird/opsconsole/internal/form"
	"github.com/matthewbaird/opsconsole/internal/mutation"
	"github.com/matthewbaird/opsconsole/internal/record"
	"github.com/matthewbaird/opsconsole/internal/screen"
)

// RawVisitor is a walk-in or expected visitor as the API sends it.
type RawVisitor struct {
	ID         any    `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Company    string `json:"company"`
	Purpose    string `json:"purpose"`
	Host       string `json:"host"`
	Status     string `json:"status"`
	CheckInAt  string `json:"check_in_at"`
	CheckOutAt string `json:"check_out_at"`
	Audit
}

// Visitor is the visitor view record.
type Visitor struct {
	ID        string
	FirstName string
	LastName  string
	Name      string
	Email     string
	Phone     string
	Company   string
	Purpose   string
	Host      string
	Status    string
	CheckIn   string
	CheckOut  string
	Stamp
}

func (v Visitor) Key() string        { return v.ID }
func (v Visitor) StatusCode() string { return v.Status }
func (v Visitor) SearchFields() []string {
	return []string{v.FirstName, v.LastName, v.Name, v.ID, v.Email, v.Company}
}

var visitorPalette = record.Palette{
	{Code: "expected", Color: record.ColorBlue},
	{Code: "checked_in", Color: record.ColorGreen},
	{Code: "checked_out", Color: record.ColorGray},
}

// TransformVisitor maps a raw visitor to its view record.
func TransformVisitor(r RawVisitor) Visitor {
	return Visitor{
		ID:        record.NormalizeID(r.ID),
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Name:      record.JoinName(r.FirstName, r.LastName),
		Email:     r.Email,
		Phone:     r.Phone,
		Company:   r.Company,
		Purpose:   r.Purpose,
		Host:      r.Host,
		Status:    record.NormalizeStatus(r.Status),
		CheckIn:   record.FormatDate(r.CheckInAt),
		CheckOut:  record.FormatDate(r.CheckOutAt),
		Stamp:     stamp(r.Audit),
	}
}

// Visitors is the visitor screen definition.
func Visitors() screen.Definition[RawVisitor, Visitor] {
	return screen.Definition[RawVisitor, Visitor]{
		Name:      "visitors",
		Label:     "visitor",
		Title:     "Visitors",
		Palette:   visitorPalette,
		Transform: TransformVisitor,
		Form: &form.Schema{
			Fields: []form.Field{
				{Name: "firstName", Label: "First name", Kind: form.KindText},
				{Name: "lastName", Label: "Last name", Kind: form.KindText},
				{Name: "email", Label: "Email", Kind: form.KindEmail},
				{Name: "phone", Label: "Phone", Kind: form.KindText},
				{Name: "company", Label: "Company", Kind: form.KindText},
				{Name: "purpose", Label: "Purpose of visit", Kind: form.KindText},
				{Name: "host", Label: "Host", Kind: form.KindText},
				{Name: "status", Label: "Status", Kind: form.KindSelect, Options: visitorPalette.Codes()},
			},
			Defaults: form.Draft{"status": "expected"},
			Rules: []form.Rule{
				form.Required("firstName", "First name"),
				form.Required("lastName", "Last name"),
				form.Email("email", "Email"),
				form.Required("purpose", "Purpose of visit"),
				form.OneOf("status", "Status", visitorPalette.Codes()...),
			},
		},
		Fields: mutation.FieldMap{
			"firstName": "first_name",
			"lastName":  "last_name",
			"email":     "email",
			"phone":     "phone",
			"company":   "company",
			"purpose":   "purpose",
			"host":      "host",
			"status":    "status",
		},
		Seed: func(v Visitor) form.Draft {
			return form.Draft{
				"firstName": v.FirstName,
				"lastName":  v.LastName,
				"email":     v.Email,
				"phone":     v.Phone,
				"company":   v.Company,
				"purpose":   v.Purpose,
				"host":      v.Host,
				"status":    v.Status,
			}
		},
		Subject: func(v Visitor) string { return v.Name },
		Columns: []screen.Column{
			{Key: "name", Label: "Name"},
			{Key: "company", Label: "Company"},
			{Key: "host", Label: "Host"},
			{Key: "check_in", Label: "Checked in"},
		},
		Cells: func(v Visitor) []string {
			return []string{v.Name, v.Company, v.Host, v.CheckIn}
		},
		Details: func(v Visitor) []screen.Detail {
			d := []screen.Detail{
				{Label: "Email", Value: orPlaceholder(v.Email)},
				{Label: "Phone", Value: orPlaceholder(v.Phone)},
				{Label: "Company", Value: orPlaceholder(v.Company)},
				{Label: "Purpose", Value: orPlaceholder(v.Purpose)},
				{Label: "Host", Value: orPlaceholder(v.Host)},
				{Label: "Checked in", Value: v.CheckIn},
				{Label: "Checked out", Value: v.CheckOut},
			}
			return append(d, v.Stamp.details()...)
		},
	}
}
