// Package sync bridges store change notifications into the Bubble Tea
// event loop and polls the slot for writes made by other processes.
package sync

import (
	"context"
	"log/slog"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/comtech-lite/internal/store"
)

// DefaultInterval is how often the slot is checked for outside writes.
const DefaultInterval = 5 * time.Second

// reloadTimeout bounds a single slot read.
const reloadTimeout = 10 * time.Second

// ChangedMsg is a tea.Msg carrying the state after a change.
type ChangedMsg struct {
	State store.State
}

// ReloadErrorMsg is a tea.Msg sent when polling the slot fails.
type ReloadErrorMsg struct {
	Err error
}

// Watcher forwards store snapshots to the UI. Only the newest pending
// snapshot is kept; the UI always renders from the latest state anyway.
type Watcher struct {
	store    *store.Store
	interval time.Duration
	log      *slog.Logger

	changeCh chan tea.Msg
	stopCh   chan struct{}
	cancel   func()
	mu       gosync.Mutex
	running  bool
	stopped  bool
}

// New creates a Watcher over s. A non-positive interval disables polling.
func New(s *store.Store, interval time.Duration, log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		store:    s,
		interval: interval,
		log:      log,
		changeCh: make(chan tea.Msg, 1),
		stopCh:   make(chan struct{}),
	}
}

// Start subscribes to the store, starts the poll loop and returns the
// command that waits for the first change.
func (w *Watcher) Start() tea.Cmd {
	w.mu.Lock()
	if w.running || w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.cancel = w.store.Subscribe(func(st store.State) {
		w.send(ChangedMsg{State: st})
	})
	w.mu.Unlock()

	if w.interval > 0 {
		go w.poll()
	}
	return w.WaitForChange()
}

// Stop unsubscribes and halts polling. A stopped Watcher is not restarted.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.cancel()
	close(w.stopCh)
	w.running = false
	w.stopped = true
}

// WaitForChange returns a tea.Cmd that blocks until the next message.
// Call it again after handling each ChangedMsg or ReloadErrorMsg.
func (w *Watcher) WaitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-w.changeCh:
			return msg
		case <-w.stopCh:
			return nil
		}
	}
}

func (w *Watcher) poll() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
			_, err := w.store.Reload(ctx)
			cancel()
			if err != nil {
				w.log.Warn("reloading state failed", "error", err)
				w.send(ReloadErrorMsg{Err: err})
			}
		}
	}
}

// send replaces any undelivered message with msg without blocking.
func (w *Watcher) send(msg tea.Msg) {
	for {
		select {
		case w.changeCh <- msg:
			return
		default:
		}
		select {
		case <-w.changeCh:
		default:
		}
	}
}
