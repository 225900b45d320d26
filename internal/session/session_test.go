package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	gosync "sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hanvo/tickler/internal/alert"
	"github.com/hanvo/tickler/internal/model"
	"github.com/hanvo/tickler/internal/remote"
	"github.com/hanvo/tickler/tests/testutil"
)

var errBackendDown = errors.New("backend down")

// fakeBackend is a map-backed Remote with per-id failure injection.
type fakeBackend struct {
	mu         gosync.Mutex
	records    map[string]model.Reminder
	order      []string
	failIDs    map[string]error
	fetchErr   error
	fetchCalls int
	patchCalls int
}

func newFakeBackend(reminders ...model.Reminder) *fakeBackend {
	b := &fakeBackend{
		records: make(map[string]model.Reminder),
		failIDs: make(map[string]error),
	}
	for _, rem := range reminders {
		b.records[rem.ID] = rem
		b.order = append(b.order, rem.ID)
	}
	return b
}

func (b *fakeBackend) FetchReminders(_ context.Context, _ remote.Scope) ([]model.Reminder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetchCalls++
	if b.fetchErr != nil {
		return nil, b.fetchErr
	}
	out := make([]model.Reminder, 0, len(b.order))
	for _, id := range b.order {
		if rem, ok := b.records[id]; ok {
			out = append(out, rem)
		}
	}
	return out, nil
}

func (b *fakeBackend) CreateReminder(_ context.Context, rem model.Reminder, _ remote.Scope) (*model.Reminder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failIDs[rem.ID]; err != nil {
		return nil, err
	}
	b.records[rem.ID] = rem
	b.order = append(b.order, rem.ID)
	return &rem, nil
}

func (b *fakeBackend) PatchReminder(_ context.Context, id string, patch remote.ReminderPatch, _ remote.Scope) (*model.Reminder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.patchCalls++
	if err := b.failIDs[id]; err != nil {
		return nil, err
	}
	rem, ok := b.records[id]
	if !ok {
		return nil, fmt.Errorf("PATCH /reminders/%s: %w", id, remote.ErrNotFound)
	}
	if patch.DueAt != nil {
		rem.DueAt = patch.DueAt
	}
	if patch.Completed != nil {
		rem.Completed = *patch.Completed
	}
	if patch.CompletedAt != nil {
		rem.CompletedAt = patch.CompletedAt
	}
	b.records[id] = rem
	return &rem, nil
}

func (b *fakeBackend) DeleteReminder(_ context.Context, id string, _ remote.Scope) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.failIDs[id]; err != nil {
		return err
	}
	if _, ok := b.records[id]; !ok {
		return fmt.Errorf("DELETE /reminders/%s: %w", id, remote.ErrNotFound)
	}
	delete(b.records, id)
	return nil
}

func (b *fakeBackend) FetchCategories(_ context.Context, _ remote.Scope) ([]model.Category, error) {
	return []model.Category{{ID: "cat-1", Name: "errands"}}, nil
}

func newSessionFixture(t *testing.T, backend *fakeBackend) *Session {
	t.Helper()

	ledger := testutil.NewTestLedger(t)

	cfg := &model.Config{Sector: "it", Owner: "alice"}
	s := New(cfg, backend, ledger, &alert.Briefing{}, zerolog.Nop())
	s.now = func() time.Time {
		return time.Date(2026, 9, 1, 9, 0, 0, 0, time.Local)
	}
	return s
}

func drainEvents(s *Session) []Event {
	var out []Event
	for {
		select {
		case ev := <-s.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func hasEvent(events []Event, kind EventKind) bool {
	for _, ev := range events {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}

func TestCreateValidatesBeforeRemoteCall(t *testing.T) {
	backend := newFakeBackend()
	s := newSessionFixture(t, backend)

	err := s.Create(context.Background(), model.Reminder{Title: "   "})
	if err == nil {
		t.Fatal("expected validation error for blank title")
	}
	if len(backend.records) != 0 {
		t.Fatal("expected no remote call for invalid reminder")
	}
	if s.reminders.Len() != 0 {
		t.Fatal("expected no local mutation for invalid reminder")
	}
}

func TestCreateFillsDefaults(t *testing.T) {
	backend := newFakeBackend()
	s := newSessionFixture(t, backend)

	if err := s.Create(context.Background(), model.Reminder{Title: "buy milk"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	list := s.reminders.All()
	if len(list) != 1 {
		t.Fatalf("expected one reminder, got %d", len(list))
	}
	rem := list[0]
	if rem.ID == "" {
		t.Fatal("expected generated id")
	}
	if rem.Priority != model.PriorityMedium || rem.Recurrence != model.RecurrenceNone {
		t.Fatalf("expected default priority and recurrence, got %q %q", rem.Priority, rem.Recurrence)
	}
}

func TestRefreshPrunesLedgerAndAlerts(t *testing.T) {
	due := time.Date(2026, 9, 1, 9, 30, 0, 0, time.Local)
	kept := model.Reminder{ID: "kept", Title: "kept", DueAt: &due}
	gone := model.Reminder{ID: "7", Title: "gone", DueAt: &due}

	backend := newFakeBackend(kept, gone)
	s := newSessionFixture(t, backend)

	if err := s.Refresh(context.Background(), true); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	s.presenter.Show(gone, s.now())
	if err := s.ledger.Set("7", s.now().UnixMilli()); err != nil {
		t.Fatalf("seeding ledger: %v", err)
	}

	// The backend drops id 7 before the next refresh.
	backend.mu.Lock()
	delete(backend.records, "7")
	backend.mu.Unlock()

	if err := s.Refresh(context.Background(), true); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if s.presenter.IsOpen("7") {
		t.Fatal("expected ghost alert pruned on refresh")
	}
	if got := s.ledger.Get("7"); got != 0 {
		t.Fatalf("expected ledger entry pruned, got %d", got)
	}
	if _, ok := s.reminders.Get("kept"); !ok {
		t.Fatal("expected surviving reminder kept")
	}
}

func TestRefreshThrottle(t *testing.T) {
	backend := newFakeBackend()
	s := newSessionFixture(t, backend)

	if err := s.Refresh(context.Background(), true); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := s.Refresh(context.Background(), false); err != nil {
		t.Fatalf("throttled refresh: %v", err)
	}
	if backend.fetchCalls != 1 {
		t.Fatalf("expected second refresh throttled, got %d fetches", backend.fetchCalls)
	}

	// Forced refreshes bypass the throttle.
	if err := s.Refresh(context.Background(), true); err != nil {
		t.Fatalf("forced refresh: %v", err)
	}
	if backend.fetchCalls != 2 {
		t.Fatalf("expected forced refresh to fetch, got %d fetches", backend.fetchCalls)
	}
}

func TestRefreshEmitsBriefingOnce(t *testing.T) {
	due := time.Date(2026, 9, 1, 14, 0, 0, 0, time.Local)
	backend := newFakeBackend(model.Reminder{ID: "r1", Title: "standup", DueAt: &due})
	s := newSessionFixture(t, backend)

	if err := s.Refresh(context.Background(), true); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	events := drainEvents(s)
	if !hasEvent(events, EventBriefing) {
		t.Fatal("expected briefing event on first refresh")
	}

	if err := s.Refresh(context.Background(), true); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if hasEvent(drainEvents(s), EventBriefing) {
		t.Fatal("expected briefing to fire once per session")
	}
}

func TestDeleteRollsBackOnTransientFailure(t *testing.T) {
	backend := newFakeBackend(model.Reminder{ID: "r1", Title: "call dentist"})
	s := newSessionFixture(t, backend)
	if err := s.Refresh(context.Background(), true); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	backend.failIDs["r1"] = errBackendDown

	err := s.Delete(context.Background(), "r1")
	if err == nil {
		t.Fatal("expected error from failed remote delete")
	}

	if _, ok := s.reminders.Get("r1"); !ok {
		t.Fatal("expected reminder restored after failed delete")
	}
	if !hasEvent(drainEvents(s), EventNotice) {
		t.Fatal("expected a notice for the failed delete")
	}
}

func TestDeleteTreatsNotFoundAsSuccess(t *testing.T) {
	backend := newFakeBackend(model.Reminder{ID: "r1", Title: "call dentist"})
	s := newSessionFixture(t, backend)
	if err := s.Refresh(context.Background(), true); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	backend.mu.Lock()
	delete(backend.records, "r1")
	backend.mu.Unlock()

	if err := s.Delete(context.Background(), "r1"); err != nil {
		t.Fatalf("expected not-found delete to succeed, got %v", err)
	}
	if _, ok := s.reminders.Get("r1"); ok {
		t.Fatal("expected reminder removed locally")
	}
}

func TestBulkCompleteSettlesPerItem(t *testing.T) {
	backend := newFakeBackend(
		model.Reminder{ID: "ok", Title: "ok"},
		model.Reminder{ID: "flaky", Title: "flaky"},
		model.Reminder{ID: "gone", Title: "gone"},
	)
	s := newSessionFixture(t, backend)
	if err := s.Refresh(context.Background(), true); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	backend.failIDs["flaky"] = errBackendDown
	backend.mu.Lock()
	delete(backend.records, "gone")
	backend.mu.Unlock()

	err := s.BulkComplete(context.Background(), []string{"ok", "flaky", "gone"})

	var bulkErr *BulkError
	if !errors.As(err, &bulkErr) {
		t.Fatalf("expected BulkError, got %v", err)
	}
	sort.Strings(bulkErr.Failed)
	if len(bulkErr.Failed) != 1 || bulkErr.Failed[0] != "flaky" {
		t.Fatalf("expected only the flaky id to fail, got %v", bulkErr.Failed)
	}

	if rem, _ := s.reminders.Get("ok"); !rem.Completed {
		t.Fatal("expected successful item committed")
	}
	if rem, _ := s.reminders.Get("flaky"); rem.Completed {
		t.Fatal("expected failed item untouched")
	}
	if _, ok := s.reminders.Get("gone"); ok {
		t.Fatal("expected remotely deleted item removed locally")
	}
}

func TestBulkDelete(t *testing.T) {
	backend := newFakeBackend(
		model.Reminder{ID: "a", Title: "a"},
		model.Reminder{ID: "b", Title: "b"},
	)
	s := newSessionFixture(t, backend)
	if err := s.Refresh(context.Background(), true); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if err := s.BulkDelete(context.Background(), []string{"a", "b"}); err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	if s.reminders.Len() != 0 {
		t.Fatalf("expected empty set, got %d reminders", s.reminders.Len())
	}
}

func TestStartAndStopAreIdempotent(t *testing.T) {
	backend := newFakeBackend()
	s := newSessionFixture(t, backend)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	s.Stop()
	s.Stop()
}
