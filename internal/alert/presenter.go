// Package alert owns the lifecycle of due-reminder alerts: at most one
// open alert per reminder, resolved by snooze, complete, or dismiss.
package alert

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hanvo/tickler/internal/model"
	"github.com/hanvo/tickler/internal/remote"
	"github.com/hanvo/tickler/internal/store"
)

// Snooze presets offered by the host.
const (
	SnoozeShort = 10 * time.Minute
	SnoozeLong  = 60 * time.Minute
)

// ErrUnknownReminder is returned when a resolution targets a reminder
// the session no longer tracks.
var ErrUnknownReminder = errors.New("alert: reminder not tracked")

// EventKind classifies presenter events sent to the host.
type EventKind int

const (
	// EventOpened announces a newly displayed alert.
	EventOpened EventKind = iota
	// EventClosed announces a deterministically closed alert.
	EventClosed
	// EventGone announces that the reminder was deleted elsewhere and
	// has been removed locally.
	EventGone
	// EventFailed announces a transient remote failure; the optimistic
	// mutation has been rolled back and the alert stays open.
	EventFailed
)

// Event is a presenter lifecycle notification.
type Event struct {
	Kind     EventKind
	Reminder model.Reminder
	Notice   string
}

// Remote is the subset of the backend client the presenter needs.
type Remote interface {
	PatchReminder(ctx context.Context, id string, patch remote.ReminderPatch, scope remote.Scope) (*model.Reminder, error)
}

// Presenter tracks open alerts and reconciles their resolutions with
// the reminder set, the ledger, and the backend.
type Presenter struct {
	reminders *store.Reminders
	ledger    *store.Ledger
	client    Remote
	scope     remote.Scope
	now       func() time.Time
	emit      func(Event)
	log       zerolog.Logger

	mu   sync.Mutex
	open map[string]model.Reminder
}

// New creates a presenter. emit may be nil.
func New(
	reminders *store.Reminders,
	ledger *store.Ledger,
	client Remote,
	scope remote.Scope,
	emit func(Event),
	log zerolog.Logger,
) *Presenter {
	if emit == nil {
		emit = func(Event) {}
	}
	return &Presenter{
		reminders: reminders,
		ledger:    ledger,
		client:    client,
		scope:     scope,
		now:       time.Now,
		emit:      emit,
		log:       log,
	}
}

// Show opens (or refreshes) the alert for rem. It never blocks; the
// scanner calls it from its tick.
func (p *Presenter) Show(rem model.Reminder, at time.Time) {
	p.mu.Lock()
	if p.open == nil {
		p.open = make(map[string]model.Reminder)
	}
	_, already := p.open[rem.ID]
	p.open[rem.ID] = rem
	p.mu.Unlock()

	if !already {
		p.log.Debug().Str("reminder_id", rem.ID).Time("at", at).Msg("alert opened")
		p.emit(Event{Kind: EventOpened, Reminder: rem})
	}
}

// Open returns the reminders with a currently displayed alert.
func (p *Presenter) Open() []model.Reminder {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Reminder, 0, len(p.open))
	for _, rem := range p.open {
		out = append(out, rem)
	}
	return out
}

// IsOpen reports whether an alert is displayed for id.
func (p *Presenter) IsOpen(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.open[id]
	return ok
}

// Close removes the alert for id. Closing an absent alert is a no-op.
func (p *Presenter) Close(id string) {
	p.mu.Lock()
	rem, ok := p.open[id]
	delete(p.open, id)
	p.mu.Unlock()
	if ok {
		p.emit(Event{Kind: EventClosed, Reminder: rem})
	}
}

// PruneOpen closes any alert whose reminder id is not in existing,
// preventing ghost alerts for records deleted elsewhere.
func (p *Presenter) PruneOpen(existing map[string]struct{}) {
	p.mu.Lock()
	var closed []model.Reminder
	for id, rem := range p.open {
		if _, ok := existing[id]; !ok {
			closed = append(closed, rem)
			delete(p.open, id)
		}
	}
	p.mu.Unlock()
	for _, rem := range closed {
		p.emit(Event{Kind: EventClosed, Reminder: rem})
	}
}

// Snooze pushes the reminder's due time to now+delta, locally and
// remotely. The ledger is untouched so the new due instant can re-alert.
// A concurrent remote deletion removes the reminder locally; any other
// remote failure rolls the due time back and leaves the alert open.
func (p *Presenter) Snooze(ctx context.Context, id string, delta time.Duration) error {
	snapshot, ok := p.reminders.Get(id)
	if !ok {
		return ErrUnknownReminder
	}

	newDue := p.now().Add(delta)
	p.reminders.Patch(id, func(rem *model.Reminder) {
		rem.DueAt = &newDue
	})

	updated, err := p.client.PatchReminder(ctx, id, remote.ReminderPatch{DueAt: &newDue}, p.scope)
	if err != nil {
		return p.settleFailure(id, snapshot, err, "snoozing")
	}

	p.reminders.Upsert(*updated)
	p.Close(id)
	return nil
}

// Complete marks the reminder done, locally and remotely, and closes
// the alert. Remote failure rolls the completion back.
func (p *Presenter) Complete(ctx context.Context, id string) error {
	snapshot, ok := p.reminders.Get(id)
	if !ok {
		return ErrUnknownReminder
	}

	completedAt := p.now()
	done := true
	p.reminders.Patch(id, func(rem *model.Reminder) {
		rem.Completed = true
		rem.CompletedAt = &completedAt
	})

	updated, err := p.client.PatchReminder(ctx, id, remote.ReminderPatch{
		Completed:   &done,
		CompletedAt: &completedAt,
	}, p.scope)
	if err != nil {
		return p.settleFailure(id, snapshot, err, "completing")
	}

	p.reminders.Upsert(*updated)
	p.Close(id)
	return nil
}

// Dismiss advances the ledger entry to the dismissal instant instead of
// clearing it, so the next alert comes one full quiet period later.
// No remote write.
func (p *Presenter) Dismiss(id string) error {
	if err := p.ledger.Set(id, p.now().UnixMilli()); err != nil {
		return fmt.Errorf("dismissing reminder %s: %w", id, err)
	}
	p.Close(id)
	return nil
}

// settleFailure converts a remote error into the local end state: a
// deleted-elsewhere record disappears, anything else is rolled back.
func (p *Presenter) settleFailure(id string, snapshot model.Reminder, err error, action string) error {
	if remote.IsNotFound(err) {
		p.reminders.Remove(id)
		p.Close(id)
		p.emit(Event{
			Kind:     EventGone,
			Reminder: snapshot,
			Notice:   fmt.Sprintf("%q no longer exists", snapshot.Title),
		})
		p.log.Info().Str("reminder_id", id).Msg("reminder deleted elsewhere")
		return fmt.Errorf("%s reminder %s: %w", action, id, err)
	}

	p.reminders.Upsert(snapshot)
	p.emit(Event{
		Kind:     EventFailed,
		Reminder: snapshot,
		Notice:   fmt.Sprintf("could not update %q, try again", snapshot.Title),
	})
	p.log.Warn().Err(err).Str("reminder_id", id).Msg("remote write failed, rolled back")
	return fmt.Errorf("%s reminder %s: %w", action, id, err)
}
