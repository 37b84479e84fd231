package peer

import (
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/domain"
)

// Manager owns every link of one local client, keyed by remote connection
// id. The roster and participant-joined events both funnel through
// EnsureLink, so initiator selection happens in exactly one place.
type Manager struct {
	local   domain.ConnectionID
	out     SignalSender
	factory func() (Session, error)

	mu    sync.Mutex
	links map[domain.ConnectionID]*Link
}

func NewManager(local domain.ConnectionID, out SignalSender, factory func() (Session, error)) *Manager {
	return &Manager{
		local:   local,
		out:     out,
		factory: factory,
		links:   make(map[domain.ConnectionID]*Link),
	}
}

// EnsureLink returns the link for a remote connection, creating it and
// kicking off negotiation when this side is the initiator.
func (m *Manager) EnsureLink(remote domain.ConnectionID) (*Link, error) {
	m.mu.Lock()
	if l, ok := m.links[remote]; ok {
		m.mu.Unlock()
		return l, nil
	}
	sess, err := m.factory()
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	l := NewLink(m.local, remote, sess, m.out)
	m.links[remote] = l
	m.mu.Unlock()

	if err := l.Negotiate(); err != nil {
		m.DropLink(remote)
		return nil, err
	}
	return l, nil
}

// DropLink tears down the link to a remote that disconnected. A reconnect
// shows up as a brand-new remote connection id and gets a fresh link.
func (m *Manager) DropLink(remote domain.ConnectionID) {
	m.mu.Lock()
	l, ok := m.links[remote]
	delete(m.links, remote)
	m.mu.Unlock()
	if ok {
		l.Close()
		log.Debug().Str("module", "peer").Str("remote", string(remote)).Msg("link dropped")
	}
}

// HandleOffer routes a relayed offer, creating the link on demand: the
// non-initiator side usually first hears from a peer via its offer.
func (m *Manager) HandleOffer(from domain.ConnectionID, sdp webrtc.SessionDescription) error {
	l, err := m.EnsureLink(from)
	if err != nil {
		return err
	}
	return l.HandleOffer(sdp)
}

func (m *Manager) HandleAnswer(from domain.ConnectionID, sdp webrtc.SessionDescription) error {
	m.mu.Lock()
	l, ok := m.links[from]
	m.mu.Unlock()
	if !ok {
		// Answer for a link already torn down; the disconnect event won.
		return nil
	}
	return l.HandleAnswer(sdp)
}

func (m *Manager) HandleCandidate(from domain.ConnectionID, cand webrtc.ICECandidateInit) error {
	m.mu.Lock()
	l, ok := m.links[from]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return l.HandleCandidate(cand)
}

// CloseAll tears everything down when the local client leaves the meeting.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	links := make([]*Link, 0, len(m.links))
	for _, l := range m.links {
		links = append(links, l)
	}
	m.links = make(map[domain.ConnectionID]*Link)
	m.mu.Unlock()
	for _, l := range links {
		l.Close()
	}
}
