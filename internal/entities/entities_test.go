package entities

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/opsconsole/internal/form"
	"github.com/matthewbaird/opsconsole/internal/permission"
	"github.com/matthewbaird/opsconsole/internal/record"
	"github.com/matthewbaird/opsconsole/internal/screen"
)

func TestTransformCustomer(t *testing.T) {
	c := TransformCustomer(RawCustomer{
		ID:        float64(42),
		FirstName: "Jane",
		LastName:  " Smith ",
		Status:    "Active",
		Address:   Address{City: "Lisbon", Country: "PT"},
	})

	assert.Equal(t, "42", c.ID)
	assert.Equal(t, "Jane Smith", c.Name)
	assert.Equal(t, "active", c.Status)
	assert.Equal(t, "Lisbon, PT", c.Address.String())
}

func TestTransformVisit_DateLabels(t *testing.T) {
	v := TransformVisit(RawVisit{ID: "vst-1", VisitDate: "2024-03-05", Status: "No Show"})

	assert.Equal(t, "Mar 5, 2024", v.VisitDateLabel)
	assert.Equal(t, record.NotSpecified, v.FollowUpDateLabel)
	assert.Equal(t, "no_show", v.Status)
}

func TestTransformReport_CustomPeriodLabel(t *testing.T) {
	r := TransformReport(RawReport{Period: "custom", DateFrom: "2024-01-01", DateTo: "2024-01-31"})
	assert.Equal(t, "Jan 1, 2024 - Jan 31, 2024", r.PeriodLabel)

	r = TransformReport(RawReport{Period: "month"})
	assert.Equal(t, "Month", r.PeriodLabel)
}

func TestReportRules_CustomPeriodNeedsDates(t *testing.T) {
	schema := Reports().Form

	errs := schema.Validate(form.Draft{"title": "Q1", "type": "visits", "period": PeriodCustom, "status": "draft"})
	assert.Equal(t, "Start date is required", errs["dateFrom"])
	assert.Equal(t, "End date is required", errs["dateTo"])

	errs = schema.Validate(form.Draft{
		"title": "Q1", "type": "visits", "period": PeriodCustom, "status": "draft",
		"dateFrom": "2024-02-01", "dateTo": "2024-01-01",
	})
	assert.Equal(t, "End date cannot be before start date", errs["dateTo"])

	errs = schema.Validate(form.Draft{
		"title": "Jan 1", "type": "visits", "period": PeriodCustom, "status": "draft",
		"dateFrom": "2024-01-01", "dateTo": "2024-01-01",
	})
	assert.Empty(t, errs, "a one-day custom range is valid")
}

func TestVisitRules_FollowUpAfterVisit(t *testing.T) {
	errs := Visits().Form.Validate(form.Draft{
		"customerId":   "cus-1",
		"visitDate":    "2024-03-05",
		"followUpDate": "2024-03-01",
		"status":       "scheduled",
	})
	assert.Equal(t, "Follow-up date must be after visit date", errs["followUpDate"])
	assert.NotContains(t, errs, "customerId")
}

func TestCustomerFields_NestedAddress(t *testing.T) {
	p := customerFields.Payload(form.Draft{
		"firstName": "Jane",
		"address":   form.Draft{"city": "Lisbon"},
	})
	assert.Equal(t, "Jane", p["first_name"])
	assert.Equal(t, map[string]any{"city": "Lisbon"}, p["address"])
}

func TestCollections_MatchNames(t *testing.T) {
	cols := Collections()
	require.Len(t, cols, len(Names))
	for i, c := range cols {
		assert.Equal(t, Names[i], c.Name)
		assert.Contains(t, c.Statuses, c.DefaultStatus)
	}
}

func TestMemory_EnterLoadsSeededDocs(t *testing.T) {
	docs := map[string][]map[string]any{
		"customers": {
			{"id": "cus-1", "first_name": "Jane", "last_name": "Smith", "email": "jane@example.com", "status": "active"},
			{"id": "cus-2", "first_name": "Ana", "last_name": "Costa", "email": "ana@example.com", "status": "inactive"},
		},
	}
	screens := Memory(docs, screen.Deps{Actor: permission.Actor{ID: "u1", Role: permission.RoleAdmin}})
	require.Len(t, screens, len(Names))

	s, ok := Find(screens, "customers")
	require.True(t, ok)
	require.NoError(t, s.Enter(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, 2, snap.Total)
	require.Len(t, snap.Rows, 2)

	_, ok = Find(screens, "invoices")
	assert.False(t, ok)
}
