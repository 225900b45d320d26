package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidPriority   = errors.New("model: invalid priority")
	ErrInvalidRecurrence = errors.New("model: invalid recurrence")
)

// Priority classifies how urgent a reminder is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Weight returns the numeric sort weight of a priority (low=1 .. high=3).
// Unknown priorities weigh 0 and therefore sort after every known one.
func (p Priority) Weight() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 0
	}
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Recurrence describes how a reminder repeats. The client stores it
// verbatim; expansion into follow-up occurrences is a backend concern.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceYearly  Recurrence = "yearly"
)

func (r Recurrence) IsValid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	default:
		return false
	}
}

// Reminder is a due task scoped to one sector-level owner.
type Reminder struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Priority    Priority   `json:"priority"`
	Category    string     `json:"category,omitempty"`
	Completed   bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Recurrence  Recurrence `json:"recurrence_type"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Validate checks the fields a client is responsible for before any
// state change or remote call is made.
func (r Reminder) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("model: reminder title is required")
	}
	if !r.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, r.Priority)
	}
	if r.Recurrence != "" && !r.Recurrence.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRecurrence, r.Recurrence)
	}
	return nil
}

// DueOn reports whether the reminder's due time falls on the same local
// calendar day as day.
func (r Reminder) DueOn(day time.Time) bool {
	if r.DueAt == nil {
		return false
	}
	y1, m1, d1 := r.DueAt.Local().Date()
	y2, m2, d2 := day.Local().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Category is a per-sector label reminders can reference. The category
// list is owned by the backend; the client only reads it.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
