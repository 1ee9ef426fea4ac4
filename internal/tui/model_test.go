package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/opsconsole/internal/entities"
	"github.com/matthewbaird/opsconsole/internal/notify"
	"github.com/matthewbaird/opsconsole/internal/permission"
	"github.com/matthewbaird/opsconsole/internal/screen"
	"github.com/matthewbaird/opsconsole/internal/seed"
)

func newModel(t *testing.T, oracle permission.Oracle, home string) Model {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return New(ctx, Options{
		Actor:  permission.Actor{ID: "staff-1", Role: "staff"},
		Oracle: oracle,
		Home:   home,
		Screens: func(deps screen.Deps) []screen.Handle {
			return entities.Memory(seed.Documents(), deps)
		},
	})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func key(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = update(t, m, key(k))
	}
	return m, cmd
}

func event(t *testing.T, m Model) tea.Msg {
	t.Helper()
	select {
	case msg := <-m.events:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("no event from screens")
		return nil
	}
}

func entered(t *testing.T, oracle permission.Oracle, home string) Model {
	t.Helper()
	m := newModel(t, oracle, home)
	m, _ = update(t, m, m.enterCmd(m.current())())
	return m
}

func TestModel_EnterRendersList(t *testing.T) {
	m := entered(t, permission.Grants("*"), "customers")

	assert.Equal(t, 4, m.snap.Total)
	assert.Len(t, m.snap.Rows, 4)
	view := m.View()
	assert.Contains(t, view, "Jane Smith")
	assert.Contains(t, view, "Customers")
	assert.Contains(t, view, "Total 4")
}

func TestModel_StatusCycleAndSearch(t *testing.T) {
	m := entered(t, permission.Grants("*"), "customers")

	m, _ = press(t, m, "s")
	assert.Equal(t, "active", m.statusFilter())
	assert.Len(t, m.snap.Rows, 3)

	m, _ = press(t, m, "s", "s", "s")
	assert.Equal(t, "", m.statusFilter(), "cycles back to all")
	assert.Len(t, m.snap.Rows, 4)

	m, _ = press(t, m, "/", "j", "a", "n", "e", "enter")
	assert.False(t, m.searching)
	require.Len(t, m.snap.Rows, 1)
	assert.Equal(t, "cus-1001", m.snap.Rows[0].Key)
}

func TestModel_CreateShowsValidationErrors(t *testing.T) {
	m := entered(t, permission.Grants("*"), "customers")

	m, _ = press(t, m, "n")
	require.NotNil(t, m.snap.Modal)
	assert.Equal(t, "New customer", m.snap.Modal.Title)

	m, cmd := press(t, m, "ctrl+s")
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())

	assert.Equal(t, "First name is required", m.errs["firstName"])
	assert.Contains(t, m.View(), "First name is required")
	require.NotNil(t, m.snap.Modal, "modal stays open")

	m, _ = press(t, m, "esc")
	assert.Nil(t, m.snap.Modal)
}

func TestModel_EditTypesIntoDraft(t *testing.T) {
	m := entered(t, permission.Grants("*"), "customers")

	m, _ = press(t, m, "e")
	require.NotNil(t, m.snap.Modal)
	assert.Equal(t, "Edit Jane Smith", m.snap.Modal.Title)
	assert.Equal(t, "Jane", m.input.Value())

	m, _ = press(t, m, "!", "tab")
	assert.Equal(t, "Jane!", m.snap.Modal.Fields[0].Value)
	assert.Equal(t, "Smith", m.input.Value())
}

func TestModel_DeleteAfterConfirmation(t *testing.T) {
	m := entered(t, permission.Grants("*"), "customers")

	m, cmd := press(t, m, "d")
	require.NotNil(t, cmd)
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	msg := event(t, m)
	require.IsType(t, promptMsg{}, msg)
	m, _ = update(t, m, msg)
	require.NotNil(t, m.prompt)
	assert.Contains(t, m.helpText(), "y confirm")

	m, _ = press(t, m, "y")
	assert.Nil(t, m.prompt)
	m, _ = update(t, m, <-done)
	assert.Equal(t, 3, m.snap.Total)

	msg = event(t, m)
	require.IsType(t, noticeMsg{}, msg)
	m, _ = update(t, m, msg)
	assert.Equal(t, notify.LevelSuccess, m.notice.Level)
}

func TestModel_DeclinedDeleteKeepsRecord(t *testing.T) {
	m := entered(t, permission.Grants("*"), "customers")

	m, cmd := press(t, m, "d")
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	m, _ = update(t, m, event(t, m))
	m, _ = press(t, m, "n")
	m, _ = update(t, m, <-done)
	assert.Equal(t, 4, m.snap.Total)
}

func TestModel_RedirectsWithoutAccess(t *testing.T) {
	m := entered(t, permission.Grants("visits.view"), "visits")
	assert.Equal(t, "visits", m.current().Name())

	m, cmd := press(t, m, "tab")
	require.NotNil(t, cmd)
	assert.Equal(t, "categories", m.current().Name())
	m, _ = update(t, m, cmd())
	assert.Equal(t, screen.ErrNoAccess.Error(), m.lastErr)

	msg := event(t, m)
	require.IsType(t, redirectMsg(""), msg)
	m, _ = update(t, m, msg)
	assert.Equal(t, "visits", m.current().Name())
}
