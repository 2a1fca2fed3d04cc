package passlog

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory pass store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[Kind]storedEntry // runID -> kind -> entry
	seq    int64
	closed bool
}

// storedEntry holds an entry with its insertion sequence for List ordering.
type storedEntry struct {
	entry Entry
	seq   int64
}

// NewMemoryStore creates a new in-memory pass store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[Kind]storedEntry),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, e Entry) error {
	if err := e.validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if m.data[e.RunID] == nil {
		m.data[e.RunID] = make(map[Kind]storedEntry)
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	// Copy the maps to avoid retaining the caller's.
	e.Inputs = maps.Clone(e.Inputs)
	e.Gradients = maps.Clone(e.Gradients)

	m.seq++
	m.data[e.RunID][e.Kind] = storedEntry{entry: e, seq: m.seq}
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, runID string, kind Kind) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Entry{}, ErrStoreClosed
	}

	run, ok := m.data[runID]
	if !ok {
		return Entry{}, ErrNotFound
	}
	stored, ok := run[kind]
	if !ok {
		return Entry{}, ErrNotFound
	}

	// Return a copy so the caller cannot mutate stored maps.
	e := stored.entry
	e.Inputs = maps.Clone(e.Inputs)
	e.Gradients = maps.Clone(e.Gradients)
	return e, nil
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	stored := make([]storedEntry, 0, len(m.data))
	for _, run := range m.data {
		for _, se := range run {
			stored = append(stored, se)
		}
	}

	// Newest first.
	sort.Slice(stored, func(i, j int) bool {
		return stored[i].seq > stored[j].seq
	})

	if limit > 0 && limit < len(stored) {
		stored = stored[:limit]
	}

	entries := make([]Entry, len(stored))
	for i, se := range stored {
		e := se.entry
		e.Inputs = maps.Clone(e.Inputs)
		e.Gradients = maps.Clone(e.Gradients)
		entries[i] = e
	}
	return entries, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.data, runID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.data = nil
	return nil
}

// Len returns the total number of entries across all runs.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, run := range m.data {
		count += len(run)
	}
	return count
}
