package record

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusLabel(t *testing.T) {
	cases := map[string]string{
		"no_show":    "No Show",
		"active":     "Active",
		"checked-in": "Checked In",
		"Scheduled":  "Scheduled",
		"":           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, StatusLabel(in), "StatusLabel(%q)", in)
	}
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, "no_show", NormalizeStatus("No Show"))
	assert.Equal(t, "no_show", NormalizeStatus("no-show"))
	assert.Equal(t, "active", NormalizeStatus("  Active "))
	assert.Equal(t, "", NormalizeStatus("   "))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "Mar 14, 2025", FormatDate("2025-03-14"))
	assert.Equal(t, "Mar 14, 2025", FormatDate("2025-03-14T09:30:00Z"))
	assert.Equal(t, NotSpecified, FormatDate(""))
	assert.Equal(t, NotSpecified, FormatDate("not a date"))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, NotSpecified, FormatTime(nil))
	assert.Equal(t, NotSpecified, FormatTime(&time.Time{}))
	ts := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Dec 1, 2024", FormatTime(&ts))
}

func TestAgo(t *testing.T) {
	assert.Equal(t, "", Ago("garbage"))
	past := time.Now().Add(-72 * time.Hour).UTC().Format(time.RFC3339)
	assert.Equal(t, "3 days ago", Ago(past))
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "42", NormalizeID(float64(42)))
	assert.Equal(t, "42", NormalizeID(42))
	assert.Equal(t, "7", NormalizeID(json.Number("7")))
	assert.Equal(t, "abc", NormalizeID(" abc "))
	assert.Equal(t, "", NormalizeID(nil))
	assert.Equal(t, "1.5", NormalizeID(1.5))
}

func TestJoinName(t *testing.T) {
	assert.Equal(t, "Jane Smith", JoinName("Jane", "", " Smith "))
	assert.Equal(t, "", JoinName("", " "))
}

func TestPalette(t *testing.T) {
	p := Palette{
		{Code: "active", Color: ColorGreen},
		{Code: "inactive", Color: ColorGray},
	}
	assert.Equal(t, ColorGreen, p.Color("Active"))
	assert.Equal(t, ColorNeutral, p.Color("archived"))
	assert.Equal(t, ColorNeutral, p.Color(""))
	assert.True(t, p.Known("inactive"))
	assert.False(t, p.Known("suspended"))
	assert.Equal(t, []string{"active", "inactive"}, p.Codes())
}
