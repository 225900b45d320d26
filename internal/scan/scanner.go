// Package scan implements the recurring due-reminder scan: a fixed
// period sweep of the session's reminder set against the notification
// ledger and the current time.
package scan

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hanvo/tickler/internal/model"
	"github.com/hanvo/tickler/internal/store"
)

const (
	// DefaultInterval is the scan period.
	DefaultInterval = 30 * time.Second

	// Lead is the margin before the exact due instant during which an
	// alert may already fire. It absorbs scan-interval jitter: a
	// reminder due just after a tick would otherwise be missed for up
	// to one full period.
	Lead = 30 * time.Second

	// Quiet is the minimum spacing between repeated alerts for the
	// same reminder. It prevents alert storms while a reminder stays
	// past due across many scans.
	Quiet = 5 * time.Minute
)

// Presenter receives reminders the scanner decides should alert now.
// Show must not block.
type Presenter interface {
	Show(rem model.Reminder, at time.Time)
}

// Scanner sweeps the reminder set on a fixed period. It holds the store
// and ledger by reference, so list replacements are visible to the next
// tick without restarting the timer.
type Scanner struct {
	reminders *store.Reminders
	ledger    *store.Ledger
	presenter Presenter
	interval  time.Duration
	now       func() time.Time
	log       zerolog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a scanner. A non-positive interval falls back to
// DefaultInterval.
func New(
	reminders *store.Reminders,
	ledger *store.Ledger,
	presenter Presenter,
	interval time.Duration,
	log zerolog.Logger,
) *Scanner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scanner{
		reminders: reminders,
		ledger:    ledger,
		presenter: presenter,
		interval:  interval,
		now:       time.Now,
		log:       log,
	}
}

// Start launches the scan loop. Calling Start on a running scanner is a
// no-op. The first sweep happens after one full interval.
func (s *Scanner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.loop(s.stopCh, s.doneCh)
}

// Stop halts the scan loop and waits for the in-flight tick, if any, to
// finish. Stopping a stopped scanner is a no-op.
func (s *Scanner) Stop() {
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
}

func (s *Scanner) loop(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick runs one scan pass: every incomplete reminder due on the current
// day alerts when the lead window has opened and the quiet window since
// its last alert has elapsed. Reminders are evaluated in store order.
func (s *Scanner) Tick() {
	now := s.now()
	nowMs := now.UnixMilli()

	for _, rem := range s.reminders.All() {
		if rem.Completed || rem.DueAt == nil || !rem.DueOn(now) {
			continue
		}
		if now.Before(rem.DueAt.Add(-Lead)) {
			continue
		}
		if nowMs-s.ledger.Get(rem.ID) < Quiet.Milliseconds() {
			continue
		}

		s.presenter.Show(rem, now)
		if err := s.ledger.Set(rem.ID, nowMs); err != nil {
			s.log.Error().Err(err).Str("reminder_id", rem.ID).
				Msg("recording alert in ledger")
		}
	}
}
