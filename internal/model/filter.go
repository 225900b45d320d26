package model

import "time"

// Period selects the date clause of a filter.
type Period string

const (
	PeriodToday Period = "today"
	PeriodAll   Period = "all"
	PeriodRange Period = "range"
)

// SortKey selects the comparator used to order a filtered list.
type SortKey string

const (
	SortDueDate  SortKey = "due_date"
	SortNewest   SortKey = "newest"
	SortOldest   SortKey = "oldest"
	SortPriority SortKey = "priority"
	SortStatus   SortKey = "status"
)

// Filter is the transient view state the query engine evaluates against
// the reminder set. It is owned by the host and never persisted.
type Filter struct {
	Period Period

	// On is the day matched when Period is PeriodToday.
	On time.Time

	// Start and End bound the range when Period is PeriodRange.
	// A nil bound leaves that side unbounded. Both are inclusive.
	Start *time.Time
	End   *time.Time

	// Category and Priority are exact-match clauses when set.
	Category *string
	Priority *Priority

	// Search is a case-insensitive substring match on title or
	// description.
	Search string

	Sort SortKey
}
