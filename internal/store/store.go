// Package store holds the job list and price book, applies mutations and
// persists the whole state to a Slot after every change.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nhle/comtech-lite/internal/model"
)

// ErrJobNotFound is returned by lookups that need to report a miss.
// Mutations on an unknown id are silent no-ops instead.
var ErrJobNotFound = errors.New("job not found")

// State is everything the store persists.
type State struct {
	Jobs      []model.Job       `json:"jobs"`
	PriceBook []model.PriceItem `json:"priceBook"`
}

func (s State) clone() State {
	out := State{
		Jobs:      make([]model.Job, len(s.Jobs)),
		PriceBook: slices.Clone(s.PriceBook),
	}
	for i, j := range s.Jobs {
		out.Jobs[i] = j.Clone()
	}
	if out.PriceBook == nil {
		out.PriceBook = []model.PriceItem{}
	}
	return out
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock overrides the clock used for createdAt/updatedAt dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the single authoritative state holder. It is safe for
// concurrent use; subscribers run after the lock is released.
type Store struct {
	mu      sync.Mutex
	slot    Slot
	state   State
	subs    map[int]func(State)
	nextSub int

	now func() time.Time
	log *slog.Logger
}

// New loads the state saved in slot, or starts from the built-in
// defaults when the slot is empty.
func New(ctx context.Context, slot Slot, opts ...Option) (*Store, error) {
	s := &Store{
		slot: slot,
		subs: make(map[int]func(State)),
		now:  time.Now,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, ok, err := slot.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}
	if !ok {
		s.state = defaultState()
		s.log.Debug("no saved state, using defaults")
		return s, nil
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	s.state = st.clone()
	s.log.Debug("state loaded", "jobs", len(st.Jobs), "price_items", len(st.PriceBook))
	return s, nil
}

func defaultState() State {
	return State{
		Jobs: []model.Job{},
		PriceBook: []model.PriceItem{
			{ID: model.NewID(), Name: "SIP Port (single DID)", UnitPrice: decimal.NewFromInt(49), Category: "Telephony – Services"},
			{ID: model.NewID(), Name: "3CX Install", UnitPrice: decimal.NewFromInt(899), Category: "Phone Systems – Services"},
		},
	}
}

// mutate applies fn to a copy of the state. When fn reports a change the
// copy is persisted, committed and broadcast; otherwise nothing happens.
func (s *Store) mutate(ctx context.Context, op string, fn func(st *State) bool) error {
	s.mu.Lock()

	next := s.state.clone()
	if !fn(&next) {
		s.mu.Unlock()
		s.log.Debug("mutation skipped", "op", op)
		return nil
	}

	data, err := json.Marshal(next)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := s.slot.Save(ctx, data); err != nil {
		s.mu.Unlock()
		s.log.Warn("saving state failed", "op", op, "error", err)
		return fmt.Errorf("saving state: %w", err)
	}

	s.state = next
	subs := make([]func(State), 0, len(s.subs))
	for _, id := range sortedKeys(s.subs) {
		subs = append(subs, s.subs[id])
	}
	s.mu.Unlock()

	s.log.Debug("state saved", "op", op, "jobs", len(next.Jobs), "price_items", len(next.PriceBook), "bytes", len(data))
	for _, sub := range subs {
		sub(next.clone())
	}
	return nil
}

// Reload re-reads the slot and adopts its content when it differs from
// the in-memory state, as happens when another process saved. Subscribers
// are notified only on a change. The lock is held across the read so a
// mutation cannot commit between the read and the comparison.
func (s *Store) Reload(ctx context.Context) (bool, error) {
	s.mu.Lock()
	data, ok, err := s.slot.Load(ctx)
	if err != nil {
		s.mu.Unlock()
		return false, fmt.Errorf("loading state: %w", err)
	}
	if !ok {
		s.mu.Unlock()
		return false, nil
	}

	current, err := json.Marshal(s.state)
	if err != nil {
		s.mu.Unlock()
		return false, fmt.Errorf("encoding state: %w", err)
	}
	if bytes.Equal(current, data) {
		s.mu.Unlock()
		return false, nil
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		s.mu.Unlock()
		return false, fmt.Errorf("decoding state: %w", err)
	}
	s.state = st.clone()
	subs := make([]func(State), 0, len(s.subs))
	for _, id := range sortedKeys(s.subs) {
		subs = append(subs, s.subs[id])
	}
	s.mu.Unlock()

	s.log.Info("state reloaded", "jobs", len(st.Jobs), "price_items", len(st.PriceBook))
	for _, sub := range subs {
		sub(st.clone())
	}
	return true, nil
}

func sortedKeys(m map[int]func(State)) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (s *Store) today() string {
	return model.FormatDate(s.now())
}

// Subscribe registers fn to receive a snapshot after every successful
// mutation, in registration order. The returned func unregisters it.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Snapshot returns a copy of the whole state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Jobs returns a copy of the job list, most recent first.
func (s *Store) Jobs() []model.Job {
	return s.Snapshot().Jobs
}

// PriceBook returns a copy of the price book.
func (s *Store) PriceBook() []model.PriceItem {
	return s.Snapshot().PriceBook
}

// Job returns a copy of the job with the given id.
func (s *Store) Job(id string) (model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := jobIndex(s.state.Jobs, id); i >= 0 {
		return s.state.Jobs[i].Clone(), nil
	}
	return model.Job{}, fmt.Errorf("getting job %s: %w", id, ErrJobNotFound)
}

func jobIndex(jobs []model.Job, id string) int {
	return slices.IndexFunc(jobs, func(j model.Job) bool { return j.ID == id })
}

func priceIndex(items []model.PriceItem, id string) int {
	return slices.IndexFunc(items, func(p model.PriceItem) bool { return p.ID == id })
}

// AddJob stores j under a new id at the front of the list and returns
// the stored copy. Status defaults to In Tray and createdAt to today.
// Callers validate with model.ValidateNewJob first.
func (s *Store) AddJob(ctx context.Context, j model.Job) (model.Job, error) {
	j = j.Clone()
	j.ID = model.NewID()
	if j.Status == "" {
		j.Status = model.StageInTray
	}
	if j.CreatedAt == "" {
		j.CreatedAt = s.today()
	}
	if j.UpdatedAt == "" {
		j.UpdatedAt = j.CreatedAt
	}

	err := s.mutate(ctx, "add_job", func(st *State) bool {
		st.Jobs = slices.Insert(st.Jobs, 0, j)
		return true
	})
	if err != nil {
		return model.Job{}, err
	}
	return j.Clone(), nil
}

// UpdateJob merges the set fields of patch into the job. updatedAt is
// refreshed unless the patch sets it. Unknown ids are ignored.
func (s *Store) UpdateJob(ctx context.Context, id string, patch model.JobPatch) error {
	if patch.UpdatedAt == nil {
		patch.UpdatedAt = model.Ptr(s.today())
	}
	return s.mutate(ctx, "update_job", func(st *State) bool {
		i := jobIndex(st.Jobs, id)
		if i < 0 {
			return false
		}
		st.Jobs[i] = patch.Apply(st.Jobs[i])
		return true
	})
}

// RemoveJob deletes the job. Unknown ids are ignored.
func (s *Store) RemoveJob(ctx context.Context, id string) error {
	return s.mutate(ctx, "remove_job", func(st *State) bool {
		i := jobIndex(st.Jobs, id)
		if i < 0 {
			return false
		}
		st.Jobs = slices.Delete(st.Jobs, i, i+1)
		return true
	})
}

// MoveJob sets the job's stage and nothing else. Any stage may follow
// any other. Unknown ids are ignored.
func (s *Store) MoveJob(ctx context.Context, id string, stage model.Stage) error {
	if !stage.IsValid() {
		return fmt.Errorf("moving job %s: invalid stage %q", id, stage)
	}
	return s.mutate(ctx, "move_job", func(st *State) bool {
		i := jobIndex(st.Jobs, id)
		if i < 0 {
			return false
		}
		st.Jobs[i].Status = stage
		return true
	})
}

// ReplaceAll swaps the whole job list, as a CSV import does.
func (s *Store) ReplaceAll(ctx context.Context, jobs []model.Job) error {
	return s.mutate(ctx, "replace_all", func(st *State) bool {
		st.Jobs = make([]model.Job, len(jobs))
		for i, j := range jobs {
			st.Jobs[i] = j.Clone()
		}
		return true
	})
}

// ClearAll empties the job list. The price book is kept.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.mutate(ctx, "clear_all", func(st *State) bool {
		st.Jobs = []model.Job{}
		return true
	})
}

// AddPriceItem stores a new item at the front of the price book.
func (s *Store) AddPriceItem(ctx context.Context, name string, unitPrice decimal.Decimal, category, unitNote string) (model.PriceItem, error) {
	item := model.PriceItem{
		ID:        model.NewID(),
		Name:      name,
		UnitPrice: unitPrice,
		Category:  category,
		UnitNote:  unitNote,
	}
	err := s.mutate(ctx, "add_price_item", func(st *State) bool {
		st.PriceBook = slices.Insert(st.PriceBook, 0, item)
		return true
	})
	if err != nil {
		return model.PriceItem{}, err
	}
	return item, nil
}

// UpdatePriceItem merges patch into the item. Unknown ids are ignored.
func (s *Store) UpdatePriceItem(ctx context.Context, id string, patch model.PriceItemPatch) error {
	return s.mutate(ctx, "update_price_item", func(st *State) bool {
		i := priceIndex(st.PriceBook, id)
		if i < 0 {
			return false
		}
		st.PriceBook[i] = patch.Apply(st.PriceBook[i])
		return true
	})
}

// RemovePriceItem deletes the item. Job lines that were priced from it
// keep their copy of the name and price.
func (s *Store) RemovePriceItem(ctx context.Context, id string) error {
	return s.mutate(ctx, "remove_price_item", func(st *State) bool {
		i := priceIndex(st.PriceBook, id)
		if i < 0 {
			return false
		}
		st.PriceBook = slices.Delete(st.PriceBook, i, i+1)
		return true
	})
}

// ReplacePriceBook swaps the whole price book.
func (s *Store) ReplacePriceBook(ctx context.Context, items []model.PriceItem) error {
	return s.mutate(ctx, "replace_price_book", func(st *State) bool {
		st.PriceBook = slices.Clone(items)
		if st.PriceBook == nil {
			st.PriceBook = []model.PriceItem{}
		}
		return true
	})
}

// SeedPriceBookKNGJuly2025 replaces the price book with the built-in
// KNG July 2025 catalog.
func (s *Store) SeedPriceBookKNGJuly2025(ctx context.Context) error {
	return s.ReplacePriceBook(ctx, KNGJuly2025Catalog())
}
