package testutil

import (
	"testing"

	"github.com/hanvo/tickler/internal/store"
)

// NewTestLedger creates an in-memory notification ledger with all
// migrations applied. It is closed automatically when the test ends.
func NewTestLedger(t *testing.T) *store.Ledger {
	t.Helper()

	l, err := store.OpenLedger(":memory:")
	if err != nil {
		t.Fatalf("creating test ledger: %v", err)
	}

	t.Cleanup(func() {
		if err := l.Close(); err != nil {
			t.Errorf("closing test ledger: %v", err)
		}
	})

	return l
}
