// Package tui is the terminal front end of the console. It drives the same
// screens as the WebSocket console; gateway work runs as Bubble Tea
// commands and comes back as messages.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/matthewbaird/opsconsole/internal/form"
	"github.com/matthewbaird/opsconsole/internal/modal"
	"github.com/matthewbaird/opsconsole/internal/mutation"
	"github.com/matthewbaird/opsconsole/internal/notify"
	"github.com/matthewbaird/opsconsole/internal/permission"
	"github.com/matthewbaird/opsconsole/internal/screen"
)

// Options configures the screens of the terminal console.
type Options struct {
	Actor    permission.Actor
	Oracle   permission.Oracle
	Home     string
	Metrics  *mutation.Metrics
	PageSize int
	Screens  func(deps screen.Deps) []screen.Handle
}

type opDoneMsg struct {
	entity string
	op     string
	err    error
	errs   form.Errors
}

type noticeMsg notify.Notice

type promptMsg notify.Prompt

type redirectMsg string

// Model is the Bubble Tea model of the terminal console.
type Model struct {
	ctx       context.Context
	screens   []screen.Handle
	active    int
	entered   map[string]bool
	events    chan tea.Msg
	confirmer *notify.PromptConfirmer

	snap      screen.Snapshot
	cursor    int
	statusIdx int

	search    textinput.Model
	searching bool

	field    int
	input    textinput.Model
	errs     form.Errors
	prompt   *notify.Prompt
	notice   *notify.Notice
	lastErr  string
	width    int
	height   int
	quitting bool
}

// New builds the model. ctx bounds every gateway call.
func New(ctx context.Context, opts Options) Model {
	events := make(chan tea.Msg, 16)
	post := func(msg tea.Msg) {
		select {
		case events <- msg:
		case <-ctx.Done():
		}
	}
	confirmer := notify.NewPromptConfirmer(func(p notify.Prompt) { post(promptMsg(p)) })
	deps := screen.Deps{
		Actor:     opts.Actor,
		Oracle:    opts.Oracle,
		Home:      opts.Home,
		Notifier:  notify.NotifierFunc(func(n notify.Notice) { post(noticeMsg(n)) }),
		Confirmer: confirmer,
		Navigator: notify.NavigatorFunc(func(name string) { post(redirectMsg(name)) }),
		Metrics:   opts.Metrics,
		PageSize:  opts.PageSize,
	}

	m := Model{
		ctx:       ctx,
		screens:   opts.Screens(deps),
		entered:   make(map[string]bool),
		events:    events,
		confirmer: confirmer,
	}
	m.search = textinput.New()
	m.search.Placeholder = "Search"
	m.search.CharLimit = 100
	m.search.Width = 30

	m.input = textinput.New()
	m.input.CharLimit = 200
	m.input.Width = 40

	for i, s := range m.screens {
		if s.Name() == opts.Home {
			m.active = i
		}
	}
	if len(m.screens) > 0 {
		m.snap = m.current().Snapshot()
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if len(m.screens) == 0 {
		return tea.Quit
	}
	return tea.Batch(m.enterCmd(m.current()), m.listen())
}

func (m Model) current() screen.Handle { return m.screens[m.active] }

// listen waits for the next notice, prompt or redirect from the screens.
func (m Model) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.events:
			return msg
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m Model) enterCmd(s screen.Handle) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{entity: s.Name(), op: "enter", err: s.Enter(m.ctx)}
	}
}

func (m Model) loadCmd(s screen.Handle) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{entity: s.Name(), op: "load", err: s.Load(m.ctx)}
	}
}

func (m Model) submitCmd(s screen.Handle) tea.Cmd {
	return func() tea.Msg {
		errs, err := s.Submit(m.ctx)
		return opDoneMsg{entity: s.Name(), op: "submit", err: err, errs: errs}
	}
}

func (m Model) deleteCmd(s screen.Handle, key string) tea.Cmd {
	return func() tea.Msg {
		_, err := s.Delete(m.ctx, key)
		return opDoneMsg{entity: s.Name(), op: "delete", err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case opDoneMsg:
		if msg.op == "enter" && !errors.Is(msg.err, screen.ErrNoAccess) {
			m.entered[msg.entity] = true
		}
		if msg.op == "submit" {
			m.errs = msg.errs
		}
		m.lastErr = ""
		if msg.err != nil && !errors.Is(msg.err, screen.ErrInvalid) && isLocal(msg.err) {
			m.lastErr = msg.err.Error()
		}
		m.refresh()
		return m, nil

	case noticeMsg:
		n := notify.Notice(msg)
		m.notice = &n
		m.refresh()
		return m, m.listen()

	case promptMsg:
		p := notify.Prompt(msg)
		m.prompt = &p
		return m, m.listen()

	case redirectMsg:
		cmd := m.switchTo(string(msg))
		return m, tea.Batch(cmd, m.listen())

	case tea.KeyMsg:
		if m.prompt != nil {
			return m.updateConfirm(msg)
		}
		if m.snap.Modal != nil {
			return m.updateModal(msg)
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

// isLocal reports whether err comes from the screen itself rather than the
// gateway; gateway failures already arrive as notices.
func isLocal(err error) bool {
	for _, target := range []error{screen.ErrNoAccess, screen.ErrForbidden, screen.ErrNoForm, screen.ErrNotInCollection, mutation.ErrBusy} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (m *Model) refresh() {
	m.snap = m.current().Snapshot()
	if m.cursor >= len(m.snap.Rows) {
		m.cursor = max(len(m.snap.Rows)-1, 0)
	}
}

func (m *Model) switchTo(name string) tea.Cmd {
	for i, s := range m.screens {
		if s.Name() != name {
			continue
		}
		m.active, m.cursor, m.statusIdx, m.errs = i, 0, 0, nil
		m.search.SetValue(s.Snapshot().Search)
		m.refresh()
		if !m.entered[name] {
			return m.enterCmd(s)
		}
		return nil
	}
	return nil
}

func (m Model) selectedKey() string {
	if m.cursor < len(m.snap.Rows) {
		return m.snap.Rows[m.cursor].Key
	}
	return ""
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.current()
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "tab", "shift+tab":
		next := (m.active + 1) % len(m.screens)
		if msg.String() == "shift+tab" {
			next = (m.active + len(m.screens) - 1) % len(m.screens)
		}
		return m, m.switchTo(m.screens[next].Name())
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.snap.Rows)-1 {
			m.cursor++
		}
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "s":
		m.statusIdx = (m.statusIdx + 1) % (len(m.snap.Statuses) + 1)
		s.SetFilter(m.search.Value(), m.statusFilter())
		m.cursor = 0
		m.refresh()
	case "r":
		return m, m.loadCmd(s)
	case "n":
		m.openModal(func() (modal.Ticket, error) { return s.OpenCreate() })
	case "e", "enter":
		key := m.selectedKey()
		m.openModal(func() (modal.Ticket, error) { return s.OpenEdit(key) })
	case "v":
		key := m.selectedKey()
		m.openModal(func() (modal.Ticket, error) { return s.OpenView(key) })
	case "d":
		if key := m.selectedKey(); key != "" {
			return m, m.deleteCmd(s, key)
		}
	}
	return m, nil
}

func (m Model) statusFilter() string {
	if m.statusIdx == 0 || m.statusIdx > len(m.snap.Statuses) {
		return ""
	}
	return m.snap.Statuses[m.statusIdx-1].Code
}

func (m *Model) openModal(open func() (modal.Ticket, error)) {
	m.errs, m.lastErr, m.field = nil, "", 0
	if _, err := open(); err != nil {
		m.lastErr = err.Error()
	}
	m.refresh()
	m.loadField()
}

// loadField copies the focused field's value into the input.
func (m *Model) loadField() {
	if m.snap.Modal == nil || len(m.snap.Modal.Fields) == 0 {
		m.input.Blur()
		return
	}
	f := m.snap.Modal.Fields[m.field]
	m.input.SetValue(f.Value)
	m.input.Placeholder = f.Label
	m.input.CursorEnd()
	m.input.Focus()
}

// storeField writes the input back into the draft.
func (m *Model) storeField() {
	if m.snap.Modal == nil || len(m.snap.Modal.Fields) == 0 {
		return
	}
	f := m.snap.Modal.Fields[m.field]
	if err := m.current().SetField(f.Name, m.input.Value()); err != nil {
		m.lastErr = err.Error()
	}
	m.refresh()
}

func (m Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.current()
	editable := m.snap.Modal.Kind != modal.Viewing.String() && len(m.snap.Modal.Fields) > 0
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "esc":
		s.Close()
		m.errs = nil
		m.refresh()
		return m, nil
	}
	if !editable {
		if msg.String() == "e" && m.snap.Modal.Subject != nil {
			key := m.snap.Modal.Subject.Key
			m.openModal(func() (modal.Ticket, error) { return s.OpenEdit(key) })
		}
		return m, nil
	}

	switch msg.String() {
	case "tab", "down":
		m.storeField()
		m.field = (m.field + 1) % len(m.snap.Modal.Fields)
		m.loadField()
		return m, nil
	case "shift+tab", "up":
		m.storeField()
		m.field = (m.field + len(m.snap.Modal.Fields) - 1) % len(m.snap.Modal.Fields)
		m.loadField()
		return m, nil
	case "ctrl+s":
		m.storeField()
		if m.snap.Submitting {
			return m, nil
		}
		return m, m.submitCmd(s)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.current().SetFilter(m.search.Value(), m.statusFilter())
	m.cursor = 0
	m.refresh()
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.confirmer.Answer(m.prompt.ID, true)
		m.prompt = nil
	case "n", "N", "esc":
		m.confirmer.Answer(m.prompt.ID, false)
		m.prompt = nil
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}
