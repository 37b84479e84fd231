package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

// connEntry binds one live transport connection to its identity. Meeting
// and user fields stay empty until the client joins a meeting.
type connEntry struct {
	Conn      core.SignalConnection
	MeetingID domain.MeetingID
	UserID    domain.UserID
	Username  string
	Cancel    context.CancelFunc
}

// Registry tracks live transport connections by connection id. It is the
// only component that maps connection ids to sendable endpoints.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnectionID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ConnectionID]*connEntry)}
}

func (r *Registry) Bind(id domain.ConnectionID, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connEntry{Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("bound connection")
}

// BindMembership records which meeting and user a connection belongs to.
func (r *Registry) BindMembership(id domain.ConnectionID, meetingID domain.MeetingID, userID domain.UserID, username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return false
	}
	e.MeetingID = meetingID
	e.UserID = userID
	e.Username = username
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("meeting", string(meetingID)).Str("user", string(userID)).Msg("bound membership")
	return true
}

// ClearMembership detaches a connection from its meeting without closing it.
func (r *Registry) ClearMembership(id domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[id]; ok {
		e.MeetingID = ""
		e.UserID = ""
		e.Username = ""
	}
}

func (r *Registry) Unbind(id domain.ConnectionID) {
	r.mu.Lock()
	e, ok := r.conns[id]
	delete(r.conns, id)
	r.mu.Unlock()
	if ok && e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("unbound connection")
}

// Lookup returns the membership bound to a connection id.
func (r *Registry) Lookup(id domain.ConnectionID) (meetingID domain.MeetingID, userID domain.UserID, username string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, found := r.conns[id]
	if !found {
		return "", "", "", false
	}
	return e.MeetingID, e.UserID, e.Username, true
}

// Send delivers a frame to a single connection. A missing or backpressured
// target is reported as false; the caller decides whether that matters.
func (r *Registry) Send(id domain.ConnectionID, f core.Frame) bool {
	r.mu.RLock()
	e, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if err := e.Conn.TrySend(f); err != nil {
		log.Warn().Err(err).Str("module", "app.registry").Str("conn", string(id)).Msg("send failed")
		return false
	}
	return true
}

// Broadcast fans a frame out to every connection in a meeting except one.
// Pass an empty except id to reach the whole room.
func (r *Registry) Broadcast(meetingID domain.MeetingID, except domain.ConnectionID, f core.Frame) int {
	r.mu.RLock()
	targets := make([]*connEntry, 0, len(r.conns))
	ids := make([]domain.ConnectionID, 0, len(r.conns))
	for id, e := range r.conns {
		if e.MeetingID == meetingID && id != except {
			targets = append(targets, e)
			ids = append(ids, id)
		}
	}
	r.mu.RUnlock()

	sent := 0
	for i, e := range targets {
		if err := e.Conn.TrySend(f); err != nil {
			log.Warn().Err(err).Str("module", "app.registry").Str("conn", string(ids[i])).Msg("broadcast drop")
			continue
		}
		sent++
	}
	return sent
}

// ConnectionsOf lists the live connection ids bound to a meeting.
func (r *Registry) ConnectionsOf(meetingID domain.MeetingID) []domain.ConnectionID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ConnectionID, 0, len(r.conns))
	for id, e := range r.conns {
		if e.MeetingID == meetingID {
			out = append(out, id)
		}
	}
	return out
}
