package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/comtech-lite/internal/model"
	"github.com/nhle/comtech-lite/internal/store"
)

func TestWatcher_DeliversLatestChange(t *testing.T) {
	ctx := context.Background()
	s, err := store.New(ctx, store.NewMemorySlot())
	require.NoError(t, err)

	w := New(s, 0, nil)
	wait := w.Start()
	require.NotNil(t, wait)
	defer w.Stop()

	_, err = s.AddJob(ctx, model.Job{Customer: "Acme"})
	require.NoError(t, err)
	_, err = s.AddJob(ctx, model.Job{Customer: "Beta"})
	require.NoError(t, err)

	msg, ok := wait().(ChangedMsg)
	require.True(t, ok)
	assert.Len(t, msg.State.Jobs, 2, "older snapshot is replaced")
}

func TestWatcher_PollsOtherWriters(t *testing.T) {
	ctx := context.Background()
	slot := store.NewMemorySlot()
	s, err := store.New(ctx, slot)
	require.NoError(t, err)
	other, err := store.New(ctx, slot)
	require.NoError(t, err)

	w := New(s, 10*time.Millisecond, nil)
	wait := w.Start()
	defer w.Stop()

	_, err = other.AddJob(ctx, model.Job{Customer: "From CLI"})
	require.NoError(t, err)

	done := make(chan any, 1)
	go func() { done <- wait() }()

	select {
	case got := <-done:
		msg, ok := got.(ChangedMsg)
		require.True(t, ok)
		require.Len(t, msg.State.Jobs, 1)
		assert.Equal(t, "From CLI", msg.State.Jobs[0].Customer)
	case <-time.After(2 * time.Second):
		t.Fatal("no change delivered")
	}
}

func TestWatcher_StopUnblocksWait(t *testing.T) {
	s, err := store.New(context.Background(), store.NewMemorySlot())
	require.NoError(t, err)

	w := New(s, 0, nil)
	wait := w.Start()
	assert.Nil(t, w.Start(), "second start is a no-op")

	w.Stop()
	w.Stop()
	assert.Nil(t, wait())
}
