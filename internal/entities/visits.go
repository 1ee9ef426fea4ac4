package entities

import (
	"github.com/matthewbaird/opsconsole/internal/form"
	"github.com/matthewbaird/opsconsole/internal/mutation"
	"github.com/matthewbaird/opsconsole/internal/record"
	"github.com/matthewbaird/opsconsole/internal/screen"
)

// RawVisit is a scheduled customer visit as the API sends it.
type RawVisit struct {
	ID           any    `json:"id"`
	CustomerID   any    `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	CategoryID   any    `json:"category_id"`
	CategoryName string `json:"category_name"`
	VisitDate    string `json:"visit_date"`
	FollowUpDate string `json:"follow_up_date"`
	AssignedTo   string `json:"assigned_to"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
	Audit
}

// Visit is the visit view record. VisitDate and FollowUpDate keep the server
// value for editing; the Label fields are for display.
type Visit struct {
	ID                string
	CustomerID        string
	CustomerName      string
	CategoryID        string
	CategoryName      string
	VisitDate         string
	VisitDateLabel    string
	FollowUpDate      string
	FollowUpDateLabel string
	AssignedTo        string
	Status            string
	Notes             string
	Stamp
}

func (v Visit) Key() string        { return v.ID }
func (v Visit) StatusCode() string { return v.Status }
func (v Visit) SearchFields() []string {
	return []string{v.CustomerName, v.ID, v.CustomerID, v.CategoryName, v.AssignedTo}
}

var visitPalette = record.Palette{
	{Code: "scheduled", Color: record.ColorBlue},
	{Code: "completed", Color: record.ColorGreen},
	{Code: "no_show", Color: record.ColorOrange},
	{Code: "cancelled", Color: record.ColorRed},
}

// VisitTransitions are the status changes the API accepts for a visit.
var VisitTransitions = map[string][]string{
	"scheduled": {"scheduled", "completed", "no_show", "cancelled"},
	"completed": {"completed"},
	"no_show":   {"no_show", "scheduled"},
	"cancelled": {"cancelled", "scheduled"},
}

// TransformVisit maps a raw visit to its view record.
func TransformVisit(r RawVisit) Visit {
	return Visit{
		ID:                record.NormalizeID(r.ID),
		CustomerID:        record.NormalizeID(r.CustomerID),
		CustomerName:      r.CustomerName,
		CategoryID:        record.NormalizeID(r.CategoryID),
		CategoryName:      r.CategoryName,
		VisitDate:         r.VisitDate,
		VisitDateLabel:    record.FormatDate(r.VisitDate),
		FollowUpDate:      r.FollowUpDate,
		FollowUpDateLabel: record.FormatDate(r.FollowUpDate),
		AssignedTo:        r.AssignedTo,
		Status:            record.NormalizeStatus(r.Status),
		Notes:             r.Notes,
		Stamp:             stamp(r.Audit),
	}
}

// Visits is the visit screen definition.
func Visits() screen.Definition[RawVisit, Visit] {
	return screen.Definition[RawVisit, Visit]{
		Name:      "visits",
		Label:     "visit",
		Title:     "Visits",
		Palette:   visitPalette,
		Transform: TransformVisit,
		Form: &form.Schema{
			Fields: []form.Field{
				{Name: "customerId", Label: "Customer ID", Kind: form.KindText},
				{Name: "customerName", Label: "Customer name", Kind: form.KindText},
				{Name: "categoryId", Label: "Service category ID", Kind: form.KindText},
				{Name: "visitDate", Label: "Visit date", Kind: form.KindDate},
				{Name: "followUpDate", Label: "Follow-up date", Kind: form.KindDate},
				{Name: "assignedTo", Label: "Assigned to", Kind: form.KindText},
				{Name: "status", Label: "Status", Kind: form.KindSelect, Options: visitPalette.Codes()},
				{Name: "notes", Label: "Notes", Kind: form.KindTextArea},
			},
			Defaults: form.Draft{"status": "scheduled"},
			Rules: []form.Rule{
				form.Required("customerId", "Customer ID"),
				form.Required("visitDate", "Visit date"),
				form.Date("visitDate", "Visit date"),
				form.Date("followUpDate", "Follow-up date"),
				form.After("followUpDate", "Follow-up date", "visitDate", "Visit date"),
				form.OneOf("status", "Status", visitPalette.Codes()...),
			},
		},
		Fields: mutation.FieldMap{
			"customerId":   "customer_id",
			"customerName": "customer_name",
			"categoryId":   "category_id",
			"visitDate":    "visit_date",
			"followUpDate": "follow_up_date",
			"assignedTo":   "assigned_to",
			"status":       "status",
			"notes":        "notes",
		},
		Seed: func(v Visit) form.Draft {
			return form.Draft{
				"customerId":   v.CustomerID,
				"customerName": v.CustomerName,
				"categoryId":   v.CategoryID,
				"visitDate":    v.VisitDate,
				"followUpDate": v.FollowUpDate,
				"assignedTo":   v.AssignedTo,
				"status":       v.Status,
				"notes":        v.Notes,
			}
		},
		Subject: func(v Visit) string {
			return joinNonEmpty(" on ", v.CustomerName, v.VisitDateLabel)
		},
		Columns: []screen.Column{
			{Key: "customer", Label: "Customer"},
			{Key: "category", Label: "Service"},
			{Key: "visit_date", Label: "Visit date"},
			{Key: "follow_up", Label: "Follow-up"},
			{Key: "assigned_to", Label: "Assigned to"},
		},
		Cells: func(v Visit) []string {
			return []string{v.CustomerName, v.CategoryName, v.VisitDateLabel, v.FollowUpDateLabel, v.AssignedTo}
		},
		Details: func(v Visit) []screen.Detail {
			d := []screen.Detail{
				{Label: "Customer", Value: orPlaceholder(v.CustomerName)},
				{Label: "Service", Value: orPlaceholder(v.CategoryName)},
				{Label: "Visit date", Value: v.VisitDateLabel},
				{Label: "Follow-up date", Value: v.FollowUpDateLabel},
				{Label: "Assigned to", Value: orPlaceholder(v.AssignedTo)},
				{Label: "Notes", Value: orPlaceholder(v.Notes)},
			}
			return append(d, v.Stamp.details()...)
		},
	}
}
