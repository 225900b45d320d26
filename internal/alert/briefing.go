package alert

import (
	"sync"

	"github.com/hanvo/tickler/internal/model"
)

// maxBriefingTitles caps how many reminder titles a summary names.
const maxBriefingTitles = 3

// Summary is the once-per-session agenda briefing content.
type Summary struct {
	Count  int
	Titles []string
}

// Briefing tracks whether the agenda summary has been presented this
// session. The state is owned by the session that injects it and is
// never persisted; a reload may brief again.
type Briefing struct {
	mu    sync.Mutex
	fired bool
	acked bool
}

// Maybe returns the briefing for dueToday if one has not been presented
// yet this session and the set is non-empty. It fires at most once,
// regardless of later changes to the due-today set.
func (b *Briefing) Maybe(dueToday []model.Reminder) (Summary, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.fired || len(dueToday) == 0 {
		return Summary{}, false
	}
	b.fired = true

	s := Summary{Count: len(dueToday)}
	for _, rem := range dueToday {
		if len(s.Titles) == maxBriefingTitles {
			break
		}
		s.Titles = append(s.Titles, rem.Title)
	}
	return s, true
}

// Acknowledge records that the user has seen the briefing.
func (b *Briefing) Acknowledge() {
	b.mu.Lock()
	b.acked = true
	b.mu.Unlock()
}

// Acknowledged reports whether the briefing has been acknowledged.
func (b *Briefing) Acknowledged() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.acked
}
