// Package tui is the terminal front end of the usage report: one table per
// tool type, paged through the pager controller.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dalemusser/ltiusage/internal/app/client/pagerctl"
	"github.com/dalemusser/ltiusage/internal/app/system/labels"
	"github.com/dalemusser/ltiusage/internal/app/system/pagerwidget"
)

const (
	colCourse = 28
	colName   = 32
	colVis    = 7

	// eventBuffer bounds controller notifications waiting for the UI.
	eventBuffer = 64
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	focusStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	busyStyle     = lipgloss.NewStyle().Faint(true)
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle   = lipgloss.NewStyle().Underline(true)
)

// changedMsg reports that a group's state changed.
type changedMsg struct{ groupID int64 }

// scrollMsg asks the view to bring a group into view.
type scrollMsg struct {
	groupID int64
	offset  int
}

// Model is the bubbletea model for the report.
type Model struct {
	doc    *pagerctl.Document
	ctl    *pagerctl.Controller
	events chan tea.Msg

	keys  keyMap
	help  help.Model
	focus int
	// topOffset is the number of blank lines kept above the focused group.
	topOffset int
	width     int
	height    int
}

// New installs ctl on doc and returns the model showing doc.
func New(doc *pagerctl.Document, ctl *pagerctl.Controller) *Model {
	m := &Model{
		doc:    doc,
		ctl:    ctl,
		events: make(chan tea.Msg, eventBuffer),
		keys:   defaultKeys(),
		help:   help.New(),
	}
	ctl.Changed = func(id int64) { m.post(changedMsg{groupID: id}) }
	ctl.Scroll = func(id int64, offset int) { m.post(scrollMsg{groupID: id, offset: offset}) }
	ctl.Init(doc)
	return m
}

// post never blocks the controller; a dropped notification only delays a
// redraw until the next one.
func (m *Model) post(msg tea.Msg) {
	select {
	case m.events <- msg:
	default:
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg { return <-m.events }
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.waitForEvent()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		return m, m.waitForEvent()

	case scrollMsg:
		m.focusGroup(msg.groupID)
		// Offsets arrive in pixels; a terminal line is roughly 20px.
		m.topOffset = msg.offset / 20
		return m, m.waitForEvent()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ids := m.doc.GroupIDs()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextGroup):
		if len(ids) > 0 {
			m.focus = (m.focus + 1) % len(ids)
		}
	case key.Matches(msg, m.keys.PrevGroup):
		if len(ids) > 0 {
			m.focus = (m.focus - 1 + len(ids)) % len(ids)
		}
	case key.Matches(msg, m.keys.First):
		m.click(pagerwidget.KindFirst)
	case key.Matches(msg, m.keys.Prev):
		m.click(pagerwidget.KindPrev)
	case key.Matches(msg, m.keys.Next):
		m.click(pagerwidget.KindNext)
	case key.Matches(msg, m.keys.Last):
		m.click(pagerwidget.KindLast)
	}
	return m, nil
}

// click presses the focused group's control of the given kind. Missing
// controls (no previous page, say) are ignored.
func (m *Model) click(kind pagerwidget.Kind) {
	id, ok := m.focused()
	if !ok {
		return
	}
	g, _ := m.doc.Group(id)
	c, ok := g.Pager.Find(kind)
	if !ok {
		return
	}
	m.doc.Dispatch(pagerctl.ClickOn(id, c))
}

func (m *Model) focused() (int64, bool) {
	ids := m.doc.GroupIDs()
	if m.focus < 0 || m.focus >= len(ids) {
		return 0, false
	}
	return ids[m.focus], true
}

func (m *Model) focusGroup(id int64) {
	for i, gid := range m.doc.GroupIDs() {
		if gid == id {
			m.focus = i
			return
		}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(labels.English.Heading))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(labels.English.Description))
	b.WriteString("\n")

	ids := m.doc.GroupIDs()
	if len(ids) == 0 {
		b.WriteString("\n" + labels.English.NoneFound + "\n")
	}

	for i, id := range ids {
		g, _ := m.doc.Group(id)
		if i == m.focus {
			b.WriteString(strings.Repeat("\n", m.topOffset))
		}
		b.WriteString("\n")
		b.WriteString(m.renderGroup(g, i == m.focus))
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderGroup(g pagerctl.TableGroup, focused bool) string {
	var b strings.Builder

	title := fmt.Sprintf("%s (%d)", g.Name, g.Total)
	if focused {
		title = focusStyle.Render("▸ " + title)
	} else {
		title = titleStyle.Render("  " + title)
	}
	b.WriteString(title)
	if g.State == pagerctl.Loading {
		b.WriteString(mutedStyle.Render("  loading…"))
	}
	b.WriteString("\n")

	s := labels.English
	header := fmt.Sprintf("  %-*s %-*s %-*s %s", colCourse, s.Course, colName, s.Name, colVis, s.Visible, s.Link)
	if g.CanDelete {
		header += "  " + s.Delete
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	var rows strings.Builder
	if len(g.Rows) == 0 {
		rows.WriteString("  " + s.Empty + "\n")
	}
	for _, r := range g.Rows {
		line := fmt.Sprintf("  %-*s %-*s %-*s %s", colCourse, clip(r.Course, colCourse), colName, clip(r.Name, colName), colVis, s.YesNo(r.Visible), r.Link)
		if r.DeleteLink != "" {
			line += "  [" + strings.ToLower(s.Delete) + "]"
		}
		rows.WriteString(line)
		rows.WriteString("\n")
	}
	if g.Busy {
		b.WriteString(busyStyle.Render(rows.String()))
	} else {
		b.WriteString(rows.String())
	}

	b.WriteString("  ")
	b.WriteString(renderPager(g.Pager))
	b.WriteString("\n")

	if g.State == pagerctl.Error && g.Err != "" {
		b.WriteString(errorStyle.Render("  " + g.Err))
		b.WriteString("\n")
	}
	return b.String()
}

func renderPager(w pagerwidget.Widget) string {
	parts := make([]string, 0, len(w.Controls))
	for _, c := range w.Controls {
		if c.Disabled {
			parts = append(parts, disabledStyle.Render(c.Label))
			continue
		}
		parts = append(parts, c.Label)
	}
	return strings.Join(parts, "  ")
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
