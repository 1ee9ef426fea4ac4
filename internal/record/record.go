// Package record holds the pure helpers entity transformers are built from:
// status relabeling and coloring, date formatting and identifier normalization.
// Every function here is total; malformed input degrades to a placeholder.
package record

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/dustin/go-humanize"
	"github.com/iancoleman/strcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NotSpecified is rendered for missing or unparseable dates.
const NotSpecified = "Not specified"

// DateLayout is the display layout for calendar dates.
const DateLayout = "Jan 2, 2006"

var titleCaser = cases.Title(language.English)

// NormalizeStatus folds a status as sent by the server or typed by a user
// into its code form: "No Show", "no-show" and "NO_SHOW" all become "no_show".
func NormalizeStatus(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strcase.ToSnake(strings.ReplaceAll(s, "-", "_"))
}

// StatusLabel turns a status code into its display label ("no_show" -> "No Show").
func StatusLabel(code string) string {
	code = NormalizeStatus(code)
	if code == "" {
		return ""
	}
	return titleCaser.String(strcase.ToDelimited(code, ' '))
}

// ParseTime parses a date-like string in any common layout.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate renders a date-like string with DateLayout, or NotSpecified.
func FormatDate(s string) string {
	t, ok := ParseTime(s)
	if !ok {
		return NotSpecified
	}
	return t.Format(DateLayout)
}

// FormatTime is FormatDate for values already parsed; nil and zero render NotSpecified.
func FormatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NotSpecified
	}
	return t.Format(DateLayout)
}

// Ago renders an audit timestamp relative to now ("3 days ago"). Empty when unparseable.
func Ago(s string) string {
	t, ok := ParseTime(s)
	if !ok {
		return ""
	}
	return humanize.Time(t)
}

// NormalizeID converts an identifier of any JSON shape to its string form.
func NormalizeID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(id)
	case json.Number:
		return id.String()
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	case float64:
		if id == math.Trunc(id) && math.Abs(id) < 1e15 {
			return strconv.FormatInt(int64(id), 10)
		}
		return strconv.FormatFloat(id, 'f', -1, 64)
	case fmt.Stringer:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

// JoinName joins name parts, skipping empty ones.
func JoinName(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
