package screen

import (
	"github.com/matthewbaird/opsconsole/internal/form"
	"github.com/matthewbaird/opsconsole/internal/listing"
	"github.com/matthewbaird/opsconsole/internal/mutation"
	"github.com/matthewbaird/opsconsole/internal/record"
)

// Column is one list column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Detail is one labeled value in a view modal.
type Detail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Definition is everything entity specific about a screen. The generic
// machinery never looks inside R or V except through these functions.
type Definition[R any, V listing.Viewable] struct {
	Name    string // collection and capability prefix, e.g. "customers"
	Label   string // singular, e.g. "customer"
	Title   string // screen heading, e.g. "Customers"
	Palette record.Palette

	Transform func(R) V
	Form      *form.Schema
	Fields    mutation.FieldMap
	// Seed builds the edit draft from a collection record.
	Seed func(V) form.Draft
	// Subject names a record in confirmations and modal headings.
	Subject func(V) string

	Columns []Column
	// Cells returns one value per column.
	Cells   func(V) []string
	Details func(V) []Detail
}
