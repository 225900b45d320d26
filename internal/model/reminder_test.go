package model

import (
	"errors"
	"testing"
	"time"
)

func TestReminderValidateSuccess(t *testing.T) {
	due := time.Date(2026, 9, 1, 13, 0, 0, 0, time.Local)
	rem := Reminder{
		ID:       "rem-1",
		Title:    "renew certificates",
		DueAt:    &due,
		Priority: PriorityHigh,
	}
	if err := rem.Validate(); err != nil {
		t.Fatalf("expected valid reminder, got error: %v", err)
	}
}

func TestReminderValidateMissingTitle(t *testing.T) {
	rem := Reminder{ID: "rem-1", Title: "   ", Priority: PriorityLow}
	if err := rem.Validate(); err == nil {
		t.Fatal("expected error for blank title, got nil")
	}
}

func TestReminderValidateInvalidPriority(t *testing.T) {
	rem := Reminder{ID: "rem-1", Title: "x", Priority: Priority("urgent")}
	err := rem.Validate()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got: %v", err)
	}
}

func TestReminderValidateInvalidRecurrence(t *testing.T) {
	rem := Reminder{ID: "rem-1", Title: "x", Priority: PriorityLow, Recurrence: "fortnightly"}
	err := rem.Validate()
	if !errors.Is(err, ErrInvalidRecurrence) {
		t.Fatalf("expected ErrInvalidRecurrence, got: %v", err)
	}
}

func TestPriorityWeight(t *testing.T) {
	cases := []struct {
		priority Priority
		weight   int
	}{
		{PriorityLow, 1},
		{PriorityMedium, 2},
		{PriorityHigh, 3},
		{Priority("bogus"), 0},
	}
	for _, tc := range cases {
		if got := tc.priority.Weight(); got != tc.weight {
			t.Fatalf("%s: expected weight %d, got %d", tc.priority, tc.weight, got)
		}
	}
}

func TestDueOn(t *testing.T) {
	day := time.Date(2026, 9, 1, 9, 30, 0, 0, time.Local)

	morning := time.Date(2026, 9, 1, 0, 5, 0, 0, time.Local)
	rem := Reminder{DueAt: &morning}
	if !rem.DueOn(day) {
		t.Fatal("expected same-day due time to match")
	}

	tomorrow := time.Date(2026, 9, 2, 0, 5, 0, 0, time.Local)
	rem.DueAt = &tomorrow
	if rem.DueOn(day) {
		t.Fatal("expected next-day due time not to match")
	}

	rem.DueAt = nil
	if rem.DueOn(day) {
		t.Fatal("expected reminder without due time not to match")
	}
}
