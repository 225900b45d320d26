// Package session wires the reminder set, notification ledger, due
// scanner, alert presenter, and backend client into one facade owned by
// the host for the lifetime of a client session.
package session

import (
	"context"
	"fmt"
	"strings"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hanvo/tickler/internal/alert"
	"github.com/hanvo/tickler/internal/model"
	"github.com/hanvo/tickler/internal/query"
	"github.com/hanvo/tickler/internal/remote"
	"github.com/hanvo/tickler/internal/scan"
	"github.com/hanvo/tickler/internal/store"
)

// EventKind classifies session events delivered to the host.
type EventKind int

const (
	// EventStoreChanged signals that the reminder set mutated and the
	// host should re-render its views.
	EventStoreChanged EventKind = iota
	// EventAlertOpened signals a newly displayed due alert.
	EventAlertOpened
	// EventAlertClosed signals an alert resolved or pruned.
	EventAlertClosed
	// EventBriefing carries the once-per-session agenda summary.
	EventBriefing
	// EventNotice carries a user-facing message (failures, deletions).
	EventNotice
)

// Event is a host notification. Only the fields relevant to its kind
// are set.
type Event struct {
	Kind     EventKind
	Reminder *model.Reminder
	Briefing *alert.Summary
	Notice   string
}

// Remote is the backend surface the session consumes.
type Remote interface {
	FetchReminders(ctx context.Context, scope remote.Scope) ([]model.Reminder, error)
	CreateReminder(ctx context.Context, rem model.Reminder, scope remote.Scope) (*model.Reminder, error)
	PatchReminder(ctx context.Context, id string, patch remote.ReminderPatch, scope remote.Scope) (*model.Reminder, error)
	DeleteReminder(ctx context.Context, id string, scope remote.Scope) error
	FetchCategories(ctx context.Context, scope remote.Scope) ([]model.Category, error)
}

// BulkError reports the ids that failed in a bulk action. Items not
// listed were reconciled successfully.
type BulkError struct {
	Failed []string
}

func (e *BulkError) Error() string {
	return fmt.Sprintf("bulk action failed for %d reminder(s): %s",
		len(e.Failed), strings.Join(e.Failed, ", "))
}

// refreshThrottle is the minimum spacing between remote refreshes.
const refreshThrottle = 60 * time.Second

// Session owns one sector-scoped reminder session: the in-memory set,
// its background refresh, the due scan, and alert resolutions.
type Session struct {
	scope     remote.Scope
	client    Remote
	reminders *store.Reminders
	ledger    *store.Ledger
	scanner   *scan.Scanner
	presenter *alert.Presenter
	briefing  *alert.Briefing
	log       zerolog.Logger
	now       func() time.Time

	refreshInterval time.Duration
	events          chan Event

	mu          gosync.Mutex
	running     bool
	stopCh      chan struct{}
	doneCh      chan struct{}
	lastRefresh time.Time
}

// New builds a session from its collaborators. The briefing state is
// injected by the host so session scope stays explicit.
func New(
	cfg *model.Config,
	client Remote,
	ledger *store.Ledger,
	briefing *alert.Briefing,
	log zerolog.Logger,
) *Session {
	scope := remote.Scope{Sector: cfg.Sector, Owner: cfg.Owner}
	scanInterval := time.Duration(cfg.ScanIntervalSec) * time.Second
	refreshInterval := time.Duration(cfg.RefreshIntervalSec) * time.Second
	if refreshInterval < refreshThrottle {
		refreshInterval = refreshThrottle
	}

	s := &Session{
		scope:           scope,
		client:          client,
		reminders:       store.NewReminders(),
		ledger:          ledger,
		briefing:        briefing,
		log:             log,
		now:             time.Now,
		refreshInterval: refreshInterval,
		events:          make(chan Event, 32),
	}

	s.reminders.SetOnChange(func() {
		s.emit(Event{Kind: EventStoreChanged})
	})
	s.presenter = alert.New(
		s.reminders, ledger, client, scope, s.onAlertEvent, log,
	)
	s.scanner = scan.New(s.reminders, ledger, s.presenter, scanInterval, log)

	return s
}

// Start performs the initial refresh, then launches the due scanner and
// the background refresh loop. A failed initial fetch is returned but
// the session still starts with an empty set.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	err := s.Refresh(ctx, true)

	s.scanner.Start()
	go s.refreshLoop()

	return err
}

// Stop halts both timers deterministically. Stopping twice is a no-op.
func (s *Session) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stopCh)
	<-doneCh
	s.scanner.Stop()
}

// Events returns the host notification channel. Sends never block;
// events are dropped if the host falls behind.
func (s *Session) Events() <-chan Event {
	return s.events
}

func (s *Session) refreshLoop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			// Advisory: failures keep the previous in-memory state.
			if err := s.Refresh(context.Background(), false); err != nil {
				s.log.Warn().Err(err).Msg("background refresh failed")
			}
		}
	}
}

// Refresh replaces the reminder set from the backend, then prunes the
// ledger and any open alerts against the surviving ids. Unless forced,
// calls within 60s of the last successful refresh are skipped.
func (s *Session) Refresh(ctx context.Context, force bool) error {
	now := s.now()

	s.mu.Lock()
	if !force && now.Sub(s.lastRefresh) < refreshThrottle {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	list, err := s.client.FetchReminders(ctx, s.scope)
	if err != nil {
		return fmt.Errorf("refreshing reminders: %w", err)
	}

	s.reminders.ReplaceAll(list)

	ids := s.reminders.IDs()
	s.presenter.PruneOpen(ids)
	if _, err := s.ledger.Prune(ids); err != nil {
		s.log.Error().Err(err).Msg("pruning notification ledger")
	}

	if summary, ok := s.briefing.Maybe(query.DueToday(list, now)); ok {
		s.emit(Event{Kind: EventBriefing, Briefing: &summary})
	}

	s.mu.Lock()
	s.lastRefresh = now
	s.mu.Unlock()

	return nil
}

// List returns the filtered, sorted view of the current reminder set.
func (s *Session) List(f model.Filter) []model.Reminder {
	return query.Apply(s.reminders.All(), f, s.now())
}

// DueToday returns the badge set, independent of any filter state.
func (s *Session) DueToday() []model.Reminder {
	return query.DueToday(s.reminders.All(), s.now())
}

// DueTodayCount returns the badge count.
func (s *Session) DueTodayCount() int {
	return len(s.DueToday())
}

// OpenAlerts returns the reminders with a displayed alert.
func (s *Session) OpenAlerts() []model.Reminder {
	return s.presenter.Open()
}

// Create validates and creates a reminder. Validation failures reject
// before any local mutation or remote call.
func (s *Session) Create(ctx context.Context, rem model.Reminder) error {
	if rem.Priority == "" {
		rem.Priority = model.PriorityMedium
	}
	if rem.Recurrence == "" {
		rem.Recurrence = model.RecurrenceNone
	}
	if err := rem.Validate(); err != nil {
		return err
	}
	if rem.ID == "" {
		rem.ID = uuid.New().String()
	}
	rem.CreatedAt = s.now()

	created, err := s.client.CreateReminder(ctx, rem, s.scope)
	if err != nil {
		return fmt.Errorf("creating reminder: %w", err)
	}

	s.reminders.Upsert(*created)
	return nil
}

// Delete removes a reminder optimistically; a transient remote failure
// restores the snapshot. A record already gone remotely counts as
// deleted.
func (s *Session) Delete(ctx context.Context, id string) error {
	snapshot, ok := s.reminders.Get(id)
	if !ok {
		return alert.ErrUnknownReminder
	}

	s.presenter.Close(id)
	s.reminders.Remove(id)

	err := s.client.DeleteReminder(ctx, id, s.scope)
	if err != nil && !remote.IsNotFound(err) {
		s.reminders.Upsert(snapshot)
		s.emit(Event{
			Kind:   EventNotice,
			Notice: fmt.Sprintf("could not delete %q, try again", snapshot.Title),
		})
		return err
	}
	return nil
}

// Snooze pushes a due alert forward by delta.
func (s *Session) Snooze(ctx context.Context, id string, delta time.Duration) error {
	return s.presenter.Snooze(ctx, id, delta)
}

// Complete resolves an alert by marking the reminder done.
func (s *Session) Complete(ctx context.Context, id string) error {
	return s.presenter.Complete(ctx, id)
}

// Dismiss resolves an alert locally, deferring the next one by roughly
// one quiet period.
func (s *Session) Dismiss(id string) error {
	return s.presenter.Dismiss(id)
}

// AcknowledgeBriefing records that the agenda briefing was seen.
func (s *Session) AcknowledgeBriefing() {
	s.briefing.Acknowledge()
}

// Categories fetches the sector's category labels.
func (s *Session) Categories(ctx context.Context) ([]model.Category, error) {
	return s.client.FetchCategories(ctx, s.scope)
}

// BulkComplete completes the given reminders with one remote call per
// id, issued concurrently. Each item settles independently: successes
// commit locally, records gone remotely are removed, and the ids that
// failed are reported together.
func (s *Session) BulkComplete(ctx context.Context, ids []string) error {
	completedAt := s.now()
	done := true

	return s.bulk(ids, func(id string) error {
		updated, err := s.client.PatchReminder(ctx, id, remote.ReminderPatch{
			Completed:   &done,
			CompletedAt: &completedAt,
		}, s.scope)
		if err != nil {
			if remote.IsNotFound(err) {
				s.reminders.Remove(id)
				s.presenter.Close(id)
				return nil
			}
			return err
		}
		s.reminders.Upsert(*updated)
		s.presenter.Close(id)
		return nil
	})
}

// BulkDelete deletes the given reminders, one remote call per id.
func (s *Session) BulkDelete(ctx context.Context, ids []string) error {
	return s.bulk(ids, func(id string) error {
		err := s.client.DeleteReminder(ctx, id, s.scope)
		if err != nil && !remote.IsNotFound(err) {
			return err
		}
		s.reminders.Remove(id)
		s.presenter.Close(id)
		return nil
	})
}

// bulk fans out op over ids and gathers per-item failures.
func (s *Session) bulk(ids []string, op func(id string) error) error {
	var (
		wg     gosync.WaitGroup
		mu     gosync.Mutex
		failed []string
	)

	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := op(id); err != nil {
				s.log.Warn().Err(err).Str("reminder_id", id).Msg("bulk action item failed")
				mu.Lock()
				failed = append(failed, id)
				mu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	if len(failed) > 0 {
		return &BulkError{Failed: failed}
	}
	return nil
}

// onAlertEvent adapts presenter events into session events.
func (s *Session) onAlertEvent(ev alert.Event) {
	rem := ev.Reminder
	switch ev.Kind {
	case alert.EventOpened:
		s.emit(Event{Kind: EventAlertOpened, Reminder: &rem})
	case alert.EventClosed:
		s.emit(Event{Kind: EventAlertClosed, Reminder: &rem})
	case alert.EventGone, alert.EventFailed:
		s.emit(Event{Kind: EventNotice, Reminder: &rem, Notice: ev.Notice})
	}
}

// emit sends an event without blocking; the host catches up via reads.
func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}
