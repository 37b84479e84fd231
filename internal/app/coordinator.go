// Package app hosts the signaling coordinator: the state machine that
// tracks meeting membership, brokers offer/answer/ICE relay between
// peers, and keeps the session model consistent across reconnects,
// disconnects and moderation.
package app

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/store"
)

var ErrUnauthorized = errors.New("requester is not the meeting host")

// SignalKind discriminates the three relayed message kinds. The
// coordinator is a dumb relay for these; payloads are never inspected.
type SignalKind string

const (
	SignalOffer     SignalKind = core.EventOffer
	SignalAnswer    SignalKind = core.EventAnswer
	SignalCandidate SignalKind = core.EventICECandidate
)

// Coordinator serializes all session mutations behind one mutex, which is
// what makes the no-interleaving contract of the store and conversation
// logs hold. Durable-store and summarizer I/O stays outside the lock.
type Coordinator struct {
	mu       sync.Mutex
	Store    *store.SessionStore
	Registry *Registry
}

func NewCoordinator(st *store.SessionStore, reg *Registry) *Coordinator {
	return &Coordinator{Store: st, Registry: reg}
}

// Join admits a user into a meeting. A second join with the same
// connection id is a no-op beyond re-sending the roster; a join with a
// new connection id is a reconnect that defuncts the old connection
// first. The joiner receives the live roster and chat history; the rest
// of the room receives a participant-joined announcement.
func (c *Coordinator) Join(ctx context.Context, meetingID domain.MeetingID, userID domain.UserID, username string, connID domain.ConnectionID) error {
	m, err := c.Store.GetOrLoad(ctx, meetingID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !m.IsActive {
		return store.ErrMeetingNotFound
	}

	p := m.Participant(userID)
	announce := true
	switch {
	case p == nil:
		p, err = domain.NewParticipant(userID, username, connID)
		if err != nil {
			return err
		}
		m.AddParticipant(p)
		m.Conversation.AppendActivity(activity(domain.ActivityJoin, userID, username, ""))
	case p.ConnectionID == connID:
		announce = false
	default:
		// Reconnect: peers must tear down links to the old connection
		// before they learn the new one.
		old := p.ConnectionID
		if old != "" {
			c.Registry.Broadcast(meetingID, old, core.MustMarshal(core.PresenceEvent{
				Type:         core.EventParticipantDisconnected,
				UserID:       userID,
				Username:     p.Username,
				ConnectionID: old,
			}))
			c.Registry.Unbind(old)
		}
		p.ConnectionID = connID
		p.Username = username
		log.Info().Str("module", "app.coordinator").Str("meeting", string(meetingID)).Str("user", string(userID)).Str("conn", string(connID)).Msg("participant reconnected")
	}

	c.Registry.BindMembership(connID, meetingID, userID, username)

	peers := m.ConnectedPeers(userID)
	roster := make([]domain.Participant, len(peers))
	for i, peer := range peers {
		roster[i] = *peer
	}
	c.Registry.Send(connID, core.MustMarshal(core.JoinedEvent{
		Type:             core.EventJoined,
		MeetingID:        meetingID,
		SelfConnectionID: connID,
		Participants:     roster,
		Messages:         m.Conversation.Messages,
	}))

	if announce {
		c.Registry.Broadcast(meetingID, connID, core.MustMarshal(core.PresenceEvent{
			Type:         core.EventParticipantJoined,
			UserID:       userID,
			Username:     username,
			ConnectionID: connID,
		}))
	}
	return nil
}

// Leave removes the participant entirely; a later rejoin is a fresh insert.
func (c *Coordinator) Leave(meetingID domain.MeetingID, userID domain.UserID) error {
	m, ok := c.Store.Get(meetingID)
	if !ok {
		return store.ErrMeetingNotFound
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := m.Participant(userID)
	if p == nil {
		return nil
	}
	conn := p.ConnectionID
	m.RemoveParticipant(userID)
	m.Conversation.AppendActivity(activity(domain.ActivityLeave, userID, p.Username, ""))

	if conn != "" {
		c.Registry.ClearMembership(conn)
	}
	c.Registry.Broadcast(meetingID, conn, core.MustMarshal(core.PresenceEvent{
		Type:         core.EventParticipantLeft,
		UserID:       userID,
		Username:     p.Username,
		ConnectionID: conn,
	}))
	log.Info().Str("module", "app.coordinator").Str("meeting", string(meetingID)).Str("user", string(userID)).Msg("participant left")
	return nil
}

// Disconnect handles a transport-level drop with no explicit leave. The
// participant record stays (a network blip should not cost identity); only
// the connection binding is cleared so peers tear down their links. No
// timeout reaps participants who never return.
func (c *Coordinator) Disconnect(connID domain.ConnectionID) {
	meetingID, userID, username, ok := c.Registry.Lookup(connID)
	c.Registry.Unbind(connID)
	if !ok || meetingID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	m, found := c.Store.Get(meetingID)
	if found {
		if p := m.ParticipantByConnection(connID); p != nil {
			p.ConnectionID = ""
		}
	}
	c.Registry.Broadcast(meetingID, connID, core.MustMarshal(core.PresenceEvent{
		Type:         core.EventParticipantDisconnected,
		UserID:       userID,
		Username:     username,
		ConnectionID: connID,
	}))
	log.Info().Str("module", "app.coordinator").Str("meeting", string(meetingID)).Str("conn", string(connID)).Msg("connection dropped")
}

// Relay forwards an offer, answer or ICE candidate verbatim to its target,
// tagged with the sender. A stale target is dropped silently: transport
// disconnect events are the authoritative teardown signal, not delivery
// failure of a signaling message.
func (c *Coordinator) Relay(kind SignalKind, from, to domain.ConnectionID, ev core.SignalEvent) {
	ev.Type = string(kind)
	ev.SenderConnectionID = from
	if !c.Registry.Send(to, core.MustMarshal(ev)) {
		log.Debug().Str("module", "app.coordinator").Str("kind", string(kind)).Str("from", string(from)).Str("to", string(to)).Msg("relay target gone, dropped")
	}
}

// EndMeeting is host-only: it marks the meeting ended, flushes the
// conversation to durable storage, notifies the room and evicts the
// meeting from memory.
func (c *Coordinator) EndMeeting(ctx context.Context, meetingID domain.MeetingID, requester domain.UserID) error {
	m, ok := c.Store.Get(meetingID)
	if !ok {
		return store.ErrMeetingNotFound
	}

	c.mu.Lock()
	if m.Host.UserID != requester {
		c.mu.Unlock()
		return ErrUnauthorized
	}
	if err := m.End(); err != nil {
		c.mu.Unlock()
		return err
	}
	rec := recordOf(m)
	conns := c.Registry.ConnectionsOf(meetingID)
	c.Registry.Broadcast(meetingID, "", core.MustMarshal(core.MeetingEndedEvent{
		Type:      core.EventMeetingEnded,
		MeetingID: meetingID,
	}))
	for _, id := range conns {
		c.Registry.ClearMembership(id)
	}
	c.mu.Unlock()

	if err := c.Store.Durable().Flush(ctx, rec); err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Str("meeting", string(meetingID)).Msg("flush on end failed")
	}
	c.Store.Remove(meetingID)
	log.Info().Str("module", "app.coordinator").Str("meeting", string(meetingID)).Msg("meeting ended")
	return nil
}

// Snapshot returns the read-only conversation bundle for history replay
// and summarization.
func (c *Coordinator) Snapshot(meetingID domain.MeetingID) (domain.Snapshot, error) {
	m, ok := c.Store.Get(meetingID)
	if !ok {
		return domain.Snapshot{}, store.ErrMeetingNotFound
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return m.Snapshot(), nil
}

func recordOf(m *domain.Meeting) store.MeetingRecord {
	return store.MeetingRecord{
		ID:         m.ID,
		Host:       m.Host,
		Title:      m.Title,
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
		EndedAt:    m.EndedAt,
		Messages:   m.Conversation.Messages,
		Transcript: m.Conversation.Transcript,
		Activities: m.Conversation.Activities,
	}
}
