// Package quickadd is the minimal create-reminder form.
package quickadd

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/hanvo/tickler/internal/model"
)

const dueLayout = "2006-01-02 15:04"

// SubmitMsg is dispatched when the user submits the form.
type SubmitMsg struct {
	Reminder model.Reminder
}

// CancelMsg is dispatched when the user aborts the form.
type CancelMsg struct{}

// formBindings holds field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	due         string
	priority    model.Priority
	category    string
	recurrence  model.Recurrence
}

// Model is the Bubble Tea model for the quick-add form.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	categories []model.Category
	width      int
	height     int
}

// New creates a quick-add form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{priority: model.PriorityMedium, recurrence: model.RecurrenceNone},
		width:  width,
		height: height,
	}
}

// SetCategories sets the sector's category options.
func (m *Model) SetCategories(categories []model.Category) {
	m.categories = categories
}

// Start resets the bindings and initializes a fresh form.
func (m *Model) Start() tea.Cmd {
	m.fb.title = ""
	m.fb.description = ""
	m.fb.due = ""
	m.fb.priority = model.PriorityMedium
	m.fb.category = ""
	m.fb.recurrence = model.RecurrenceNone
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().Bold(true).MarginBottom(1)
	content := titleStyle.Render("New Reminder") + "\n" + m.form.View()

	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) handleSubmit() tea.Cmd {
	fb := *m.fb
	return func() tea.Msg {
		rem := model.Reminder{
			Title:       strings.TrimSpace(fb.title),
			Description: strings.TrimSpace(fb.description),
			Priority:    fb.priority,
			Category:    fb.category,
			Recurrence:  fb.recurrence,
		}
		if fb.due != "" {
			due, err := time.ParseInLocation(dueLayout, fb.due, time.Local)
			if err == nil {
				rem.DueAt = &due
			}
		}
		return SubmitMsg{Reminder: rem}
	}
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What should I remind you about?").
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("title is required")
				}
				return nil
			}).
			Value(&m.fb.title),
		huh.NewText().
			Title("Description").
			Lines(3).
			Value(&m.fb.description),
		huh.NewInput().
			Title("Due").
			Placeholder(dueLayout).
			Validate(func(s string) error {
				if s == "" {
					return nil
				}
				if _, err := time.ParseInLocation(dueLayout, s, time.Local); err != nil {
					return fmt.Errorf("use %s", dueLayout)
				}
				return nil
			}).
			Value(&m.fb.due),
		huh.NewSelect[model.Priority]().
			Title("Priority").
			Options(
				huh.NewOption("Low", model.PriorityLow),
				huh.NewOption("Medium", model.PriorityMedium),
				huh.NewOption("High", model.PriorityHigh),
			).
			Value(&m.fb.priority),
		huh.NewSelect[model.Recurrence]().
			Title("Repeats").
			Options(
				huh.NewOption("Never", model.RecurrenceNone),
				huh.NewOption("Daily", model.RecurrenceDaily),
				huh.NewOption("Weekly", model.RecurrenceWeekly),
				huh.NewOption("Monthly", model.RecurrenceMonthly),
				huh.NewOption("Yearly", model.RecurrenceYearly),
			).
			Value(&m.fb.recurrence),
	}

	if len(m.categories) > 0 {
		opts := []huh.Option[string]{huh.NewOption("None", "")}
		for _, c := range m.categories {
			opts = append(opts, huh.NewOption(c.Name, c.Name))
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("Category").
			Options(opts...).
			Value(&m.fb.category))
	}

	return huh.NewForm(huh.NewGroup(fields...)).
		WithWidth(m.width).
		WithHeight(m.height)
}
