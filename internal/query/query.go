// Package query derives view lists and the due-today badge set from a
// reminder snapshot. Every function is pure: identical inputs yield an
// identical ordered result, with stable relative order for equal keys.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/hanvo/tickler/internal/model"
)

// Apply filters reminders against f (all clauses AND-ed) and orders the
// result by f.Sort. The input slice is not modified. now supplies the
// current day when the today period has no explicit date.
func Apply(reminders []model.Reminder, f model.Filter, now time.Time) []model.Reminder {
	out := make([]model.Reminder, 0, len(reminders))
	for _, rem := range reminders {
		if matches(rem, f, now) {
			out = append(out, rem)
		}
	}
	sortBy(out, f.Sort)
	return out
}

// DueToday returns the badge set: reminders that are incomplete and due
// on the current calendar day. It ignores filter state entirely.
func DueToday(reminders []model.Reminder, now time.Time) []model.Reminder {
	var out []model.Reminder
	for _, rem := range reminders {
		if !rem.Completed && rem.DueOn(now) {
			out = append(out, rem)
		}
	}
	return out
}

func matches(rem model.Reminder, f model.Filter, now time.Time) bool {
	switch f.Period {
	case model.PeriodToday:
		day := f.On
		if day.IsZero() {
			day = now
		}
		if !rem.DueOn(day) {
			return false
		}
	case model.PeriodRange:
		if rem.DueAt == nil {
			return false
		}
		due := dateOf(*rem.DueAt)
		if f.Start != nil && due.Before(dateOf(*f.Start)) {
			return false
		}
		if f.End != nil && due.After(dateOf(*f.End)) {
			return false
		}
	}

	if f.Category != nil && rem.Category != *f.Category {
		return false
	}
	if f.Priority != nil && rem.Priority != *f.Priority {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(rem.Title), q) &&
			!strings.Contains(strings.ToLower(rem.Description), q) {
			return false
		}
	}
	return true
}

func sortBy(list []model.Reminder, key model.SortKey) {
	switch key {
	case model.SortDueDate:
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i].DueAt, list[j].DueAt
			// Reminders with no due time sort after every dated one.
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return a.Before(*b)
		})
	case model.SortNewest:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		})
	case model.SortOldest:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		})
	case model.SortPriority:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority.Weight() > list[j].Priority.Weight()
		})
	case model.SortStatus:
		sort.SliceStable(list, func(i, j int) bool {
			return !list[i].Completed && list[j].Completed
		})
	}
}

// dateOf truncates t to its local calendar date.
func dateOf(t time.Time) time.Time {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
