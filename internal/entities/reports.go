package entities

import (
	"github.com/matthewbaird/opsconsole/internal/form"
	"github.com/matthewbaird/opsconsole/internal/mutation"
	"github.com/matthewbaird/opsconsole/internal/record"
	"github.com/matthewbaird/opsconsole/internal/screen"
)

// Report periods. PeriodCustom needs an explicit date range.
const (
	PeriodWeek    = "week"
	PeriodMonth   = "month"
	PeriodQuarter = "quarter"
	PeriodCustom  = "custom"
)

var reportPeriods = []string{PeriodWeek, PeriodMonth, PeriodQuarter, PeriodCustom}

var reportTypes = []string{"visits", "customers", "visitors", "categories"}

// RawReport is a staff report as the API sends it.
type RawReport struct {
	ID          any    `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Period      string `json:"period"`
	DateFrom    string `json:"date_from"`
	DateTo      string `json:"date_to"`
	Status      string `json:"status"`
	GeneratedAt string `json:"generated_at"`
	Audit
}

// Report is the report view record.
type Report struct {
	ID          string
	Title       string
	Type        string
	Period      string
	PeriodLabel string
	DateFrom    string
	DateTo      string
	Status      string
	Generated   string
	Stamp
}

func (r Report) Key() string        { return r.ID }
func (r Report) StatusCode() string { return r.Status }
func (r Report) SearchFields() []string {
	return []string{r.Title, r.ID, r.Type}
}

var reportPalette = record.Palette{
	{Code: "draft", Color: record.ColorYellow},
	{Code: "generated", Color: record.ColorGreen},
	{Code: "archived", Color: record.ColorGray},
}

// TransformReport maps a raw report to its view record.
func TransformReport(r RawReport) Report {
	period := record.NormalizeStatus(r.Period)
	label := record.StatusLabel(period)
	if period == PeriodCustom {
		label = record.FormatDate(r.DateFrom) + " - " + record.FormatDate(r.DateTo)
	}
	return Report{
		ID:          record.NormalizeID(r.ID),
		Title:       r.Title,
		Type:        r.Type,
		Period:      period,
		PeriodLabel: label,
		DateFrom:    r.DateFrom,
		DateTo:      r.DateTo,
		Status:      record.NormalizeStatus(r.Status),
		Generated:   record.FormatDate(r.GeneratedAt),
		Stamp:       stamp(r.Audit),
	}
}

// Reports is the report screen definition.
func Reports() screen.Definition[RawReport, Report] {
	return screen.Definition[RawReport, Report]{
		Name:      "reports",
		Label:     "report",
		Title:     "Reports",
		Palette:   reportPalette,
		Transform: TransformReport,
		Form: &form.Schema{
			Fields: []form.Field{
				{Name: "title", Label: "Title", Kind: form.KindText},
				{Name: "type", Label: "Type", Kind: form.KindSelect, Options: reportTypes},
				{Name: "period", Label: "Period", Kind: form.KindSelect, Options: reportPeriods},
				{Name: "dateFrom", Label: "Start date", Kind: form.KindDate},
				{Name: "dateTo", Label: "End date", Kind: form.KindDate},
				{Name: "status", Label: "Status", Kind: form.KindSelect, Options: reportPalette.Codes()},
			},
			Defaults: form.Draft{"type": "visits", "period": PeriodMonth, "status": "draft"},
			Rules: []form.Rule{
				form.Required("title", "Title"),
				form.OneOf("type", "Type", reportTypes...),
				form.OneOf("period", "Period", reportPeriods...),
				form.RequiredWhen("dateFrom", "Start date", "period", PeriodCustom),
				form.RequiredWhen("dateTo", "End date", "period", PeriodCustom),
				form.Date("dateFrom", "Start date"),
				form.Date("dateTo", "End date"),
				form.NotBefore("dateTo", "End date", "dateFrom", "Start date"),
				form.OneOf("status", "Status", reportPalette.Codes()...),
			},
		},
		Fields: mutation.FieldMap{
			"title":    "title",
			"type":     "type",
			"period":   "period",
			"dateFrom": "date_from",
			"dateTo":   "date_to",
			"status":   "status",
		},
		Seed: func(r Report) form.Draft {
			return form.Draft{
				"title":    r.Title,
				"type":     r.Type,
				"period":   r.Period,
				"dateFrom": r.DateFrom,
				"dateTo":   r.DateTo,
				"status":   r.Status,
			}
		},
		Subject: func(r Report) string { return r.Title },
		Columns: []screen.Column{
			{Key: "title", Label: "Title"},
			{Key: "type", Label: "Type"},
			{Key: "period", Label: "Period"},
			{Key: "generated", Label: "Generated"},
		},
		Cells: func(r Report) []string {
			return []string{r.Title, record.StatusLabel(r.Type), r.PeriodLabel, r.Generated}
		},
		Details: func(r Report) []screen.Detail {
			d := []screen.Detail{
				{Label: "Type", Value: record.StatusLabel(r.Type)},
				{Label: "Period", Value: r.PeriodLabel},
				{Label: "Generated", Value: r.Generated},
			}
			return append(d, r.Stamp.details()...)
		},
	}
}
