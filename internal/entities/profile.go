package entities

import (
	"github.com/matthewbaird/opsconsole/internal/form"
	"github.com/matthewbaird/opsconsole/internal/mutation"
	"github.com/matthewbaird/opsconsole/internal/record"
	"github.com/matthewbaird/opsconsole/internal/screen"
)

// Notifications are the channels a staff member is notified through.
type Notifications struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	Push  bool `json:"push"`
}

// Preferences is the nested preferences object of a profile.
type Preferences struct {
	Language      string        `json:"language"`
	Timezone      string        `json:"timezone"`
	Notifications Notifications `json:"notifications"`
}

// RawProfile is a staff profile as the API sends it.
type RawProfile struct {
	ID          any         `json:"id"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	JobTitle    string      `json:"job_title"`
	Status      string      `json:"status"`
	Preferences Preferences `json:"preferences"`
	Audit
}

// Profile is the profile view record.
type Profile struct {
	ID          string
	FirstName   string
	LastName    string
	Name        string
	Email       string
	Phone       string
	JobTitle    string
	Status      string
	Preferences Preferences
	Stamp
}

func (p Profile) Key() string        { return p.ID }
func (p Profile) StatusCode() string { return p.Status }
func (p Profile) SearchFields() []string {
	return []string{p.FirstName, p.LastName, p.Name, p.ID, p.Email}
}

var profilePalette = record.Palette{
	{Code: "active", Color: record.ColorGreen},
	{Code: "inactive", Color: record.ColorGray},
}

// TransformProfile maps a raw profile to its view record.
func TransformProfile(r RawProfile) Profile {
	return Profile{
		ID:          record.NormalizeID(r.ID),
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Name:        record.JoinName(r.FirstName, r.LastName),
		Email:       r.Email,
		Phone:       r.Phone,
		JobTitle:    r.JobTitle,
		Status:      record.NormalizeStatus(r.Status),
		Preferences: r.Preferences,
		Stamp:       stamp(r.Audit),
	}
}

// Profiles is the profile screen definition. The email address appears
// twice in the draft: the contact address at the top level and the
// notification switch under preferences.notifications.
func Profiles() screen.Definition[RawProfile, Profile] {
	return screen.Definition[RawProfile, Profile]{
		Name:      "profile",
		Label:     "profile",
		Title:     "My Profile",
		Palette:   profilePalette,
		Transform: TransformProfile,
		Form: &form.Schema{
			Fields: []form.Field{
				{Name: "firstName", Label: "First name", Kind: form.KindText},
				{Name: "lastName", Label: "Last name", Kind: form.KindText},
				{Name: "email", Label: "Email", Kind: form.KindEmail},
				{Name: "phone", Label: "Phone", Kind: form.KindText},
				{Name: "jobTitle", Label: "Job title", Kind: form.KindText},
				{Name: "preferences.language", Label: "Language", Kind: form.KindSelect, Options: []string{"en", "pt", "fr", "es"}},
				{Name: "preferences.timezone", Label: "Timezone", Kind: form.KindText},
				{Name: "preferences.notifications.email", Label: "Email notifications", Kind: form.KindBool},
				{Name: "preferences.notifications.sms", Label: "SMS notifications", Kind: form.KindBool},
				{Name: "preferences.notifications.push", Label: "Push notifications", Kind: form.KindBool},
			},
			Defaults: form.Draft{
				"status": "active",
				"preferences": form.Draft{
					"language":      "en",
					"timezone":      "UTC",
					"notifications": form.Draft{"email": true, "sms": false, "push": false},
				},
			},
			Rules: []form.Rule{
				form.Required("firstName", "First name"),
				form.Required("lastName", "Last name"),
				form.Required("email", "Email"),
				form.Email("email", "Email"),
			},
		},
		Fields: mutation.FieldMap{
			"firstName":                       "first_name",
			"lastName":                        "last_name",
			"email":                           "email",
			"phone":                           "phone",
			"jobTitle":                        "job_title",
			"status":                          "status",
			"preferences.language":            "preferences.language",
			"preferences.timezone":            "preferences.timezone",
			"preferences.notifications.email": "preferences.notifications.email",
			"preferences.notifications.sms":   "preferences.notifications.sms",
			"preferences.notifications.push":  "preferences.notifications.push",
		},
		Seed: func(p Profile) form.Draft {
			return form.Draft{
				"firstName": p.FirstName,
				"lastName":  p.LastName,
				"email":     p.Email,
				"phone":     p.Phone,
				"jobTitle":  p.JobTitle,
				"status":    p.Status,
				"preferences": form.Draft{
					"language": p.Preferences.Language,
					"timezone": p.Preferences.Timezone,
					"notifications": form.Draft{
						"email": p.Preferences.Notifications.Email,
						"sms":   p.Preferences.Notifications.SMS,
						"push":  p.Preferences.Notifications.Push,
					},
				},
			}
		},
		Subject: func(p Profile) string { return p.Name },
		Columns: []screen.Column{
			{Key: "name", Label: "Name"},
			{Key: "email", Label: "Email"},
			{Key: "job_title", Label: "Job title"},
		},
		Cells: func(p Profile) []string {
			return []string{p.Name, p.Email, p.JobTitle}
		},
		Details: func(p Profile) []screen.Detail {
			n := p.Preferences.Notifications
			d := []screen.Detail{
				{Label: "Email", Value: p.Email},
				{Label: "Phone", Value: orPlaceholder(p.Phone)},
				{Label: "Job title", Value: orPlaceholder(p.JobTitle)},
				{Label: "Language", Value: orPlaceholder(p.Preferences.Language)},
				{Label: "Timezone", Value: orPlaceholder(p.Preferences.Timezone)},
				{Label: "Email notifications", Value: onOff(n.Email)},
				{Label: "SMS notifications", Value: onOff(n.SMS)},
				{Label: "Push notifications", Value: onOff(n.Push)},
			}
			return append(d, p.Stamp.details()...)
		},
	}
}

func onOff(b bool) string {
	if b {
		return "On"
	}
	return "Off"
}
