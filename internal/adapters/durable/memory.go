// Package durable provides the in-memory reference implementation of the
// persistence collaborator. A real deployment would back this with a
// document store; the session store only depends on the interface.
package durable

import (
	"context"
	"sync"
	"time"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/store"
)

// Retention window for ended meetings.
const Retention = 24 * time.Hour

type MemoryStore struct {
	mu      sync.RWMutex
	records map[domain.MeetingID]store.MeetingRecord
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[domain.MeetingID]store.MeetingRecord),
		now:     time.Now,
	}
}

func (m *MemoryStore) Insert(_ context.Context, rec store.MeetingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return nil
}

func (m *MemoryStore) FetchActive(_ context.Context, id domain.MeetingID) (*store.MeetingRecord, error) {
	m.sweep()
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok || !rec.IsActive {
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (m *MemoryStore) Flush(_ context.Context, rec store.MeetingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return nil
}

// sweep drops ended records past the retention window. Swept lazily on
// reads instead of a background reaper.
func (m *MemoryStore) sweep() {
	cutoff := m.now().Add(-Retention)
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, rec := range m.records {
		if !rec.IsActive && !rec.EndedAt.IsZero() && rec.EndedAt.Before(cutoff) {
			delete(m.records, id)
		}
	}
}
