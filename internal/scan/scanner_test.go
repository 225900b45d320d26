package scan

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hanvo/tickler/internal/model"
	"github.com/hanvo/tickler/internal/store"
	"github.com/hanvo/tickler/tests/testutil"
)

type recordingPresenter struct {
	mu    sync.Mutex
	shown []string
}

func (p *recordingPresenter) Show(rem model.Reminder, at time.Time) {
	p.mu.Lock()
	p.shown = append(p.shown, rem.ID)
	p.mu.Unlock()
}

func (p *recordingPresenter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.shown)
}

func newFixture(t *testing.T) (*store.Reminders, *store.Ledger, *recordingPresenter, *Scanner) {
	t.Helper()
	reminders := store.NewReminders()
	ledger := testutil.NewTestLedger(t)
	presenter := &recordingPresenter{}
	scanner := New(reminders, ledger, presenter, DefaultInterval, zerolog.Nop())
	return reminders, ledger, presenter, scanner
}

func at(scanner *Scanner, now time.Time) {
	scanner.now = func() time.Time { return now }
	scanner.Tick()
}

func TestTickFiresWithinLeadWindow(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.Local)
	due := now.Add(10 * time.Second)

	reminders, ledger, presenter, scanner := newFixture(t)
	reminders.ReplaceAll([]model.Reminder{{ID: "r1", Title: "t", DueAt: &due}})

	at(scanner, now.Add(time.Second))
	if presenter.count() != 1 {
		t.Fatalf("expected one alert inside the lead window, got %d", presenter.count())
	}
	if got := ledger.Get("r1"); got != now.Add(time.Second).UnixMilli() {
		t.Fatalf("expected ledger stamped with scan time, got %d", got)
	}
}

func TestTickBeforeLeadWindowIsSilent(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.Local)
	due := now.Add(10 * time.Minute)

	reminders, _, presenter, scanner := newFixture(t)
	reminders.ReplaceAll([]model.Reminder{{ID: "r1", Title: "t", DueAt: &due}})

	at(scanner, now)
	if presenter.count() != 0 {
		t.Fatalf("expected no alert before the lead window, got %d", presenter.count())
	}
}

func TestQuietWindowSuppressesRepeatAlerts(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.Local)
	due := now.Add(-time.Minute)

	reminders, _, presenter, scanner := newFixture(t)
	reminders.ReplaceAll([]model.Reminder{{ID: "r1", Title: "t", DueAt: &due}})

	at(scanner, now)
	at(scanner, now.Add(30*time.Second))
	at(scanner, now.Add(Quiet-time.Second))
	if presenter.count() != 1 {
		t.Fatalf("expected one alert within the quiet window, got %d", presenter.count())
	}

	at(scanner, now.Add(Quiet+time.Second))
	if presenter.count() != 2 {
		t.Fatalf("expected re-alert after the quiet window, got %d", presenter.count())
	}
}

func TestSnoozedDueTimeStaysSilentUntilItsLeadWindow(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.Local)
	snoozedDue := now.Add(10*time.Minute + 10*time.Second)

	reminders, _, presenter, scanner := newFixture(t)
	reminders.ReplaceAll([]model.Reminder{{ID: "r1", Title: "t", DueAt: &snoozedDue}})

	at(scanner, now.Add(15*time.Second))
	if presenter.count() != 0 {
		t.Fatalf("expected no alert long before the snoozed due time, got %d", presenter.count())
	}

	at(scanner, snoozedDue.Add(-Lead+time.Second))
	if presenter.count() != 1 {
		t.Fatalf("expected alert once the lead window opens, got %d", presenter.count())
	}
}

func TestTickSkipsCompletedUndatedAndOtherDays(t *testing.T) {
	now := time.Date(2026, 9, 1, 23, 0, 0, 0, time.Local)
	past := now.Add(-time.Hour)
	tomorrow := now.Add(2 * time.Hour) // crosses midnight

	reminders, _, presenter, scanner := newFixture(t)
	reminders.ReplaceAll([]model.Reminder{
		{ID: "done", DueAt: &past, Completed: true},
		{ID: "undated"},
		{ID: "tomorrow", DueAt: &tomorrow},
	})

	at(scanner, now)
	if presenter.count() != 0 {
		t.Fatalf("expected no alerts, got %d (%v)", presenter.count(), presenter.shown)
	}
}

func TestTickSeesStoreReplacement(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.Local)
	due := now.Add(-time.Minute)

	reminders, _, presenter, scanner := newFixture(t)
	at(scanner, now)
	if presenter.count() != 0 {
		t.Fatal("expected empty store to produce no alerts")
	}

	// The scanner holds the store by reference, so a wholesale refresh
	// is visible to the next tick without restarting anything.
	reminders.ReplaceAll([]model.Reminder{{ID: "r1", Title: "t", DueAt: &due}})
	at(scanner, now.Add(time.Second))
	if presenter.count() != 1 {
		t.Fatalf("expected alert after store replacement, got %d", presenter.count())
	}
}

func TestStartAndStopAreIdempotent(t *testing.T) {
	_, _, _, scanner := newFixture(t)

	scanner.Start()
	scanner.Start()
	scanner.Stop()
	scanner.Stop()

	// Restart after a stop must work.
	scanner.Start()
	scanner.Stop()
}
