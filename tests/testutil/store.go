package testutil

import (
	"context"
	"testing"

	"github.com/nhle/comtech-lite/internal/store"
)

// NewTestSlot creates an in-memory SQLiteSlot with all migrations applied.
// It automatically closes the slot when the test completes.
func NewTestSlot(t *testing.T) *store.SQLiteSlot {
	t.Helper()

	s, err := store.NewSQLiteSlot(":memory:")
	if err != nil {
		t.Fatalf("creating test slot: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test slot: %v", err)
		}
	})

	return s
}

// NewTestStore returns a Store persisting into a fresh NewTestSlot.
func NewTestStore(t *testing.T, opts ...store.Option) (*store.Store, *store.SQLiteSlot) {
	t.Helper()

	slot := NewTestSlot(t)
	s, err := store.New(context.Background(), slot, opts...)
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	return s, slot
}
