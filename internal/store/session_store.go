// Package store owns the authoritative in-memory model of active meetings.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/domain"
)

var (
	ErrMeetingNotFound = errors.New("meeting not found")
	ErrMeetingExists   = errors.New("meeting already exists")
)

// SessionStore keeps resident meetings and lazily rehydrates a shell from
// durable storage when a request references an evicted meeting. All
// mutation of a resident Meeting happens under the coordinator's event
// serialization; the store's own lock only guards the resident map.
type SessionStore struct {
	mu       sync.RWMutex
	meetings map[domain.MeetingID]*domain.Meeting
	durable  DurableStore
}

func NewSessionStore(durable DurableStore) *SessionStore {
	return &SessionStore{
		meetings: make(map[domain.MeetingID]*domain.Meeting),
		durable:  durable,
	}
}

// GetOrLoad returns the resident meeting, or rehydrates a fresh shell
// (identity only, empty participant list) from durable storage if the
// durable record is still active. Prior connection state is never carried
// across an eviction boundary.
func (s *SessionStore) GetOrLoad(ctx context.Context, id domain.MeetingID) (*domain.Meeting, error) {
	s.mu.RLock()
	m, ok := s.meetings[id]
	s.mu.RUnlock()
	if ok {
		return m, nil
	}

	rec, err := s.durable.FetchActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrMeetingNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok = s.meetings[id]; ok {
		return m, nil
	}
	m, err = domain.NewMeeting(rec.ID, rec.Host, rec.Title)
	if err != nil {
		return nil, err
	}
	m.CreatedAt = rec.CreatedAt
	s.meetings[id] = m
	log.Info().Str("module", "store").Str("meeting", string(id)).Msg("rehydrated meeting shell")
	return m, nil
}

// Get returns the resident meeting without touching durable storage.
func (s *SessionStore) Get(id domain.MeetingID) (*domain.Meeting, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meetings[id]
	return m, ok
}

// Create inserts a new meeting into memory. The caller is responsible for
// the corresponding durable insert.
func (s *SessionStore) Create(id domain.MeetingID, host domain.Host, title string) (*domain.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.meetings[id]; ok {
		return nil, ErrMeetingExists
	}
	m, err := domain.NewMeeting(id, host, title)
	if err != nil {
		return nil, err
	}
	s.meetings[id] = m
	log.Info().Str("module", "store").Str("meeting", string(id)).Str("host", string(host.UserID)).Msg("meeting created")
	return m, nil
}

// Remove evicts from memory only; durable storage is unaffected.
func (s *SessionStore) Remove(id domain.MeetingID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.meetings, id)
	log.Info().Str("module", "store").Str("meeting", string(id)).Msg("meeting evicted")
}

// Durable exposes the persistence collaborator for flush on meeting end.
func (s *SessionStore) Durable() DurableStore { return s.durable }
