package store

import (
	"context"
	"sync"
)

// StorageKey names the slot row holding the serialized state. The JSON
// carries no version of its own; new fields must tolerate absence.
const StorageKey = "comtech-lite-store-v3"

// Slot is a durable single-value store for the serialized state.
type Slot interface {
	// Load returns the saved bytes. ok is false when nothing was saved.
	Load(ctx context.Context) (data []byte, ok bool, err error)
	Save(ctx context.Context, data []byte) error
}

// MemorySlot keeps the state in process memory.
type MemorySlot struct {
	mu   sync.Mutex
	data []byte
	ok   bool
}

// NewMemorySlot returns an empty MemorySlot.
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (m *MemorySlot) Load(context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ok {
		return nil, false, nil
	}
	return append([]byte(nil), m.data...), true, nil
}

func (m *MemorySlot) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.ok = true
	return nil
}
