// Package ui is the Bubble Tea host for a reminder session: the
// filtered list, the due-today badge, the active alert overlay, and the
// quick-add form.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hanvo/tickler/internal/alert"
	"github.com/hanvo/tickler/internal/model"
	"github.com/hanvo/tickler/internal/session"
	"github.com/hanvo/tickler/internal/ui/quickadd"
)

// viewState selects the active screen.
type viewState int

const (
	viewList viewState = iota
	viewQuickAdd
)

// sessionEventMsg wraps a session event for the Bubble Tea runtime.
type sessionEventMsg struct {
	event session.Event
}

// categoriesLoadedMsg carries the sector's category labels.
type categoriesLoadedMsg struct {
	categories []model.Category
}

// actionResultMsg reports the outcome of a user-triggered action.
type actionResultMsg struct {
	err error
}

// actionTimeout bounds each remote call triggered from the UI.
const actionTimeout = 15 * time.Second

// Model is the root Bubble Tea model.
type Model struct {
	sess   *session.Session
	sector string

	view     viewState
	filter   model.Filter
	rows     []model.Reminder
	cursor   int
	width    int
	height   int
	ready    bool
	search   textinput.Model
	typing   bool
	quickAdd quickadd.Model
	briefing *alert.Summary
	notice   string
}

// New creates the root model for a started session.
func New(sess *session.Session, sector string) Model {
	search := textinput.New()
	search.Placeholder = "search"
	search.CharLimit = 64

	return Model{
		sess:     sess,
		sector:   sector,
		filter:   model.Filter{Period: model.PeriodAll, Sort: model.SortDueDate},
		search:   search,
		quickAdd: quickadd.New(80, 24),
	}
}

// Init subscribes to session events and loads the category options.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), m.loadCategories(), m.reload())
}

// waitForEvent blocks on the next session event. It re-arms itself
// after every received event.
func (m Model) waitForEvent() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		ev, ok := <-sess.Events()
		if !ok {
			return nil
		}
		return sessionEventMsg{event: ev}
	}
}

func (m Model) loadCategories() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		categories, err := sess.Categories(ctx)
		if err != nil {
			return categoriesLoadedMsg{}
		}
		return categoriesLoadedMsg{categories: categories}
	}
}

// reload schedules a recompute of the visible rows.
func (m Model) reload() tea.Cmd {
	return func() tea.Msg { return refreshRowsMsg{} }
}

type refreshRowsMsg struct{}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.quickAdd.SetSize(msg.Width-4, msg.Height-4)
		if m.view == viewQuickAdd {
			var cmd tea.Cmd
			m.quickAdd, cmd = m.quickAdd.Update(msg)
			return m, cmd
		}
		m.refreshRows()
		return m, nil

	case sessionEventMsg:
		m.applyEvent(msg.event)
		return m, m.waitForEvent()

	case refreshRowsMsg:
		m.refreshRows()
		return m, nil

	case categoriesLoadedMsg:
		m.quickAdd.SetCategories(msg.categories)
		return m, nil

	case actionResultMsg:
		// Failure details arrive via session notices; keep a short
		// local echo for actions that return synchronously.
		if msg.err != nil {
			m.notice = summarize(msg.err)
		}
		m.refreshRows()
		return m, nil

	case quickadd.SubmitMsg:
		m.view = viewList
		return m, m.createReminder(msg.Reminder)

	case quickadd.CancelMsg:
		m.view = viewList
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.view == viewQuickAdd {
		var cmd tea.Cmd
		m.quickAdd, cmd = m.quickAdd.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) applyEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventStoreChanged, session.EventAlertOpened, session.EventAlertClosed:
		m.refreshRows()
	case session.EventBriefing:
		m.briefing = ev.Briefing
	case session.EventNotice:
		m.notice = ev.Notice
	}
}

func (m *Model) refreshRows() {
	m.rows = m.sess.List(m.filter)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.view == viewQuickAdd {
		var cmd tea.Cmd
		m.quickAdd, cmd = m.quickAdd.Update(msg)
		return m, cmd
	}

	if m.typing {
		switch msg.String() {
		case "enter", "esc":
			m.typing = false
			m.search.Blur()
			if msg.String() == "esc" {
				m.search.SetValue("")
				m.filter.Search = ""
				m.refreshRows()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.filter.Search = m.search.Value()
			m.refreshRows()
			return m, cmd
		}
	}

	// Alert resolutions act on the oldest open alert.
	if open := m.sess.OpenAlerts(); len(open) > 0 {
		target := open[0].ID
		switch msg.String() {
		case "1":
			return m, m.resolve(func(ctx context.Context) error {
				return m.sess.Snooze(ctx, target, alert.SnoozeShort)
			})
		case "2":
			return m, m.resolve(func(ctx context.Context) error {
				return m.sess.Snooze(ctx, target, alert.SnoozeLong)
			})
		case "c":
			return m, m.resolve(func(ctx context.Context) error {
				return m.sess.Complete(ctx, target)
			})
		case "d":
			err := m.sess.Dismiss(target)
			return m, func() tea.Msg { return actionResultMsg{err: err} }
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "b":
		if m.briefing != nil {
			m.sess.AcknowledgeBriefing()
			m.briefing = nil
		}
		return m, nil
	case "a":
		m.view = viewQuickAdd
		return m, m.quickAdd.Start()
	case "/":
		m.typing = true
		m.notice = ""
		return m, m.search.Focus()
	case "r":
		return m, m.manualRefresh()
	case "t":
		if m.filter.Period == model.PeriodToday {
			m.filter.Period = model.PeriodAll
		} else {
			m.filter.Period = model.PeriodToday
			m.filter.On = time.Now()
		}
		m.refreshRows()
		return m, nil
	case "o":
		m.filter.Sort = nextSort(m.filter.Sort)
		m.refreshRows()
		return m, nil
	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
		return m, nil
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "x":
		if rem, ok := m.selected(); ok {
			id := rem.ID
			return m, m.resolve(func(ctx context.Context) error {
				return m.sess.Complete(ctx, id)
			})
		}
		return m, nil
	case "X":
		if rem, ok := m.selected(); ok {
			id := rem.ID
			return m, m.resolve(func(ctx context.Context) error {
				return m.sess.Delete(ctx, id)
			})
		}
		return m, nil
	}

	return m, nil
}

func (m Model) selected() (model.Reminder, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return model.Reminder{}, false
	}
	return m.rows[m.cursor], true
}

func (m Model) resolve(op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionResultMsg{err: op(ctx)}
	}
}

func (m Model) manualRefresh() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionResultMsg{err: sess.Refresh(ctx, false)}
	}
}

func (m Model) createReminder(rem model.Reminder) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		return actionResultMsg{err: sess.Create(ctx, rem)}
	}
}

// View renders the active screen.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	if m.view == viewQuickAdd {
		return m.quickAdd.View()
	}

	var b strings.Builder

	header := headerStyle.Render("tickler · " + m.sector)
	if n := m.sess.DueTodayCount(); n > 0 {
		header += " " + badgeStyle.Render(fmt.Sprintf("%d due today", n))
	}
	b.WriteString(header + "\n\n")

	if m.briefing != nil {
		b.WriteString(m.renderBriefing() + "\n\n")
	}
	if open := m.sess.OpenAlerts(); len(open) > 0 {
		b.WriteString(m.renderAlert(open[0], len(open)) + "\n\n")
	}

	b.WriteString(m.renderRows())
	b.WriteString("\n" + m.renderStatusBar())

	return b.String()
}

func (m Model) renderBriefing() string {
	lines := []string{fmt.Sprintf("%d reminder(s) due today", m.briefing.Count)}
	for _, title := range m.briefing.Titles {
		lines = append(lines, "• "+title)
	}
	lines = append(lines, dimmedStyle.Render("press b to acknowledge"))
	return briefingStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderAlert(rem model.Reminder, total int) string {
	due := ""
	if rem.DueAt != nil {
		due = rem.DueAt.Local().Format("15:04")
	}
	lines := []string{
		fmt.Sprintf("Due now: %s (%s)", rem.Title, due),
		dimmedStyle.Render("1 snooze 10m · 2 snooze 1h · c complete · d dismiss"),
	}
	if total > 1 {
		lines = append(lines, dimmedStyle.Render(fmt.Sprintf("+%d more waiting", total-1)))
	}
	return alertBoxStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderRows() string {
	if len(m.rows) == 0 {
		return dimmedStyle.Render("  nothing to show")
	}

	var b strings.Builder
	for i, rem := range m.rows {
		marker := "  "
		if i == m.cursor {
			marker = selectedStyle.Render("> ")
		}

		line := rem.Title
		if rem.Category != "" {
			line += dimmedStyle.Render(" #" + rem.Category)
		}
		if rem.DueAt != nil {
			stamp := rem.DueAt.Local().Format("Jan 02 15:04")
			if !rem.Completed && rem.DueAt.Before(time.Now()) {
				line += " " + overdueStyle.Render(stamp)
			} else {
				line += " " + dimmedStyle.Render(stamp)
			}
		}

		styled := priorityStyle(rem.Priority.Weight()).Render("● ") + line
		if rem.Completed {
			styled = completedStyle.Render("✓ " + rem.Title)
		}

		b.WriteString(marker + styled + "\n")
	}
	return b.String()
}

func (m Model) renderStatusBar() string {
	parts := []string{
		"period:" + string(m.filter.Period),
		"sort:" + string(m.filter.Sort),
	}
	if m.typing {
		parts = append(parts, "search: "+m.search.View())
	} else if m.filter.Search != "" {
		parts = append(parts, "search:"+m.filter.Search)
	}

	bar := statusBarStyle.Render(strings.Join(parts, " · "))
	if m.notice != "" {
		bar += " " + noticeStyle.Render(m.notice)
	}
	return bar + dimmedStyle.Render("  a add · t today · o sort · / search · r refresh · q quit")
}

func nextSort(key model.SortKey) model.SortKey {
	order := []model.SortKey{
		model.SortDueDate, model.SortNewest, model.SortOldest,
		model.SortPriority, model.SortStatus,
	}
	for i, k := range order {
		if k == key {
			return order[(i+1)%len(order)]
		}
	}
	return model.SortDueDate
}

func summarize(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, ':'); i > 0 && i < 40 {
		return msg
	}
	if len(msg) > 60 {
		return msg[:57] + "..."
	}
	return msg
}
