package entities

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/matthewbaird/opsconsole/internal/form"
	"github.com/matthewbaird/opsconsole/internal/mutation"
	"github.com/matthewbaird/opsconsole/internal/record"
	"github.com/matthewbaird/opsconsole/internal/screen"
)

// RawCategory is a service category (visa, document, consultation...).
type RawCategory struct {
	ID              any     `json:"id"`
	Name            string  `json:"name"`
	Code            string  `json:"code"`
	Description     string  `json:"description"`
	Price           float64 `json:"price"`
	DurationMinutes int     `json:"duration_minutes"`
	Status          string  `json:"status"`
	Audit
}

// Category is the service category view record.
type Category struct {
	ID              string
	Name            string
	Code            string
	Description     string
	Price           float64
	PriceLabel      string
	DurationMinutes int
	Status          string
	Stamp
}

func (c Category) Key() string        { return c.ID }
func (c Category) StatusCode() string { return c.Status }
func (c Category) SearchFields() []string {
	return []string{c.Name, c.ID, c.Code, c.Description}
}

var categoryPalette = record.Palette{
	{Code: "active", Color: record.ColorGreen},
	{Code: "inactive", Color: record.ColorGray},
}

// TransformCategory maps a raw category to its view record.
func TransformCategory(r RawCategory) Category {
	return Category{
		ID:              record.NormalizeID(r.ID),
		Name:            r.Name,
		Code:            r.Code,
		Description:     r.Description,
		Price:           r.Price,
		PriceLabel:      humanize.FormatFloat("#,###.##", r.Price),
		DurationMinutes: r.DurationMinutes,
		Status:          record.NormalizeStatus(r.Status),
		Stamp:           stamp(r.Audit),
	}
}

// Categories is the service category screen definition.
func Categories() screen.Definition[RawCategory, Category] {
	return screen.Definition[RawCategory, Category]{
		Name:      "categories",
		Label:     "service category",
		Title:     "Service Categories",
		Palette:   categoryPalette,
		Transform: TransformCategory,
		Form: &form.Schema{
			Fields: []form.Field{
				{Name: "name", Label: "Name", Kind: form.KindText},
				{Name: "code", Label: "Code", Kind: form.KindText},
				{Name: "description", Label: "Description", Kind: form.KindTextArea},
				{Name: "price", Label: "Price", Kind: form.KindNumber},
				{Name: "durationMinutes", Label: "Duration (minutes)", Kind: form.KindNumber},
				{Name: "status", Label: "Status", Kind: form.KindSelect, Options: categoryPalette.Codes()},
			},
			Defaults: form.Draft{"status": "active"},
			Rules: []form.Rule{
				form.Required("name", "Name"),
				form.Required("code", "Code"),
				number("price", "Price"),
				number("durationMinutes", "Duration"),
				form.OneOf("status", "Status", categoryPalette.Codes()...),
			},
		},
		Fields: mutation.FieldMap{
			"name":            "name",
			"code":            "code",
			"description":     "description",
			"price":           "price",
			"durationMinutes": "duration_minutes",
			"status":          "status",
		},
		Seed: func(c Category) form.Draft {
			return form.Draft{
				"name":            c.Name,
				"code":            c.Code,
				"description":     c.Description,
				"price":           c.Price,
				"durationMinutes": c.DurationMinutes,
				"status":          c.Status,
			}
		},
		Subject: func(c Category) string { return c.Name },
		Columns: []screen.Column{
			{Key: "name", Label: "Name"},
			{Key: "code", Label: "Code"},
			{Key: "price", Label: "Price"},
			{Key: "duration", Label: "Duration"},
		},
		Cells: func(c Category) []string {
			return []string{c.Name, c.Code, c.PriceLabel, durationLabel(c.DurationMinutes)}
		},
		Details: func(c Category) []screen.Detail {
			d := []screen.Detail{
				{Label: "Code", Value: c.Code},
				{Label: "Description", Value: orPlaceholder(c.Description)},
				{Label: "Price", Value: c.PriceLabel},
				{Label: "Duration", Value: durationLabel(c.DurationMinutes)},
			}
			return append(d, c.Stamp.details()...)
		},
	}
}

func durationLabel(minutes int) string {
	if minutes <= 0 {
		return record.NotSpecified
	}
	return fmt.Sprintf("%d min", minutes)
}

// number accepts empty values and anything that parses as a non-negative number.
func number(name, label string) form.Rule {
	return func(d form.Draft) (string, string) {
		v := d.String(name)
		if v == "" {
			return name, ""
		}
		if f, err := strconv.ParseFloat(v, 64); err != nil || f < 0 {
			return name, label + " must be a positive number"
		}
		return name, ""
	}
}
