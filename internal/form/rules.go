package form

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/matthewbaird/opsconsole/internal/record"
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// Rule checks one field of a draft and returns the field name and an error
// message, or an empty message when the draft passes.
type Rule func(d Draft) (field, message string)

// Required fails when the trimmed value is empty.
func Required(name, label string) Rule {
	return func(d Draft) (string, string) {
		if strings.TrimSpace(d.String(name)) == "" {
			return name, label + " is required"
		}
		return name, ""
	}
}

// Email fails when a non-empty value does not look like an address.
func Email(name, label string) Rule {
	return func(d Draft) (string, string) {
		v := strings.TrimSpace(d.String(name))
		if v != "" && !emailPattern.MatchString(v) {
			return name, label + " is invalid"
		}
		return name, ""
	}
}

// RequiredWhen applies Required only while the field cond holds one of values.
func RequiredWhen(name, label, cond string, values ...string) Rule {
	req := Required(name, label)
	return func(d Draft) (string, string) {
		if !slices.Contains(values, d.String(cond)) {
			return name, ""
		}
		return req(d)
	}
}

// After fails when both dates are present and name is not strictly after other.
func After(name, label, other, otherLabel string) Rule {
	return func(d Draft) (string, string) {
		a, okA := record.ParseTime(d.String(name))
		b, okB := record.ParseTime(d.String(other))
		if okA && okB && !a.After(b) {
			return name, fmt.Sprintf("%s must be after %s", label, strings.ToLower(otherLabel))
		}
		return name, ""
	}
}

// NotBefore fails when both dates are present and name is earlier than other.
// The same day passes.
func NotBefore(name, label, other, otherLabel string) Rule {
	return func(d Draft) (string, string) {
		a, okA := record.ParseTime(d.String(name))
		b, okB := record.ParseTime(d.String(other))
		if okA && okB && a.Before(b) {
			return name, fmt.Sprintf("%s cannot be before %s", label, strings.ToLower(otherLabel))
		}
		return name, ""
	}
}

// Date fails when a non-empty value is not a recognizable date.
func Date(name, label string) Rule {
	return func(d Draft) (string, string) {
		v := strings.TrimSpace(d.String(name))
		if _, ok := record.ParseTime(v); v != "" && !ok {
			return name, label + " is not a valid date"
		}
		return name, ""
	}
}

// OneOf fails when a non-empty value is outside options.
func OneOf(name, label string, options ...string) Rule {
	return func(d Draft) (string, string) {
		v := d.String(name)
		if v != "" && !slices.Contains(options, v) {
			return name, label + " must be one of " + strings.Join(options, ", ")
		}
		return name, ""
	}
}
