package entities

import (
	"github.com/matthewbaird/opsconsole/internal/record"
	"github.com/matthewbaird/opsconsole/internal/screen"
)

// Audit is the bookkeeping every server record carries. Display only.
type Audit struct {
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
	CreatedBy string `json:"created_by,omitempty"`
	UpdatedBy string `json:"updated_by,omitempty"`
}

// Stamp is the rendered form of Audit.
type Stamp struct {
	Created   string
	Updated   string
	UpdatedBy string
}

func stamp(a Audit) Stamp {
	s := Stamp{Created: record.FormatDate(a.CreatedAt), Updated: record.Ago(a.UpdatedAt), UpdatedBy: a.UpdatedBy}
	if s.Updated == "" {
		s.Updated = record.NotSpecified
	}
	return s
}

func (s Stamp) details() []screen.Detail {
	d := []screen.Detail{{Label: "Created", Value: s.Created}, {Label: "Updated", Value: s.Updated}}
	if s.UpdatedBy != "" {
		d = append(d, screen.Detail{Label: "Updated by", Value: s.UpdatedBy})
	}
	return d
}

// orPlaceholder keeps empty optional text out of view modals.
func orPlaceholder(s string) string {
	if s == "" {
		return record.NotSpecified
	}
	return s
}
