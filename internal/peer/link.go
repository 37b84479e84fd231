// Package peer implements the client-side peer link lifecycle: one link
// per remote connection, perfect-negotiation glare handling, and queuing
// of ICE candidates that arrive before the remote description.
package peer

import (
	"errors"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

type NegotiationState int

const (
	StateStable NegotiationState = iota
	StateHaveLocalOffer
	StateHaveRemoteOffer
	StateConnected
	StateClosed
)

var (
	ErrLinkClosed      = errors.New("peer link closed")
	ErrUnexpectedState = errors.New("unexpected negotiation state")
)

// Session abstracts the RTCPeerConnection operations the link drives.
// The production implementation wraps pion; tests substitute a fake.
type Session interface {
	CreateOffer() (webrtc.SessionDescription, error)
	CreateAnswer() (webrtc.SessionDescription, error)
	SetLocalDescription(webrtc.SessionDescription) error
	SetRemoteDescription(webrtc.SessionDescription) error
	Rollback() error
	AddICECandidate(webrtc.ICECandidateInit) error
	Close() error
}

// SignalSender pushes signaling messages to a remote peer over the relay.
type SignalSender interface {
	SendOffer(to domain.ConnectionID, sdp webrtc.SessionDescription) error
	SendAnswer(to domain.ConnectionID, sdp webrtc.SessionDescription) error
	SendCandidate(to domain.ConnectionID, cand webrtc.ICECandidateInit) error
}

// Link is the negotiation state machine for one remote connection.
// Exclusively owned by the local client; destroyed when the remote
// disconnects or the local client leaves.
type Link struct {
	local  domain.ConnectionID
	remote domain.ConnectionID
	sess   Session
	out    SignalSender

	mu        sync.Mutex
	state     NegotiationState
	remoteSet bool
	pending   []webrtc.ICECandidateInit
}

func NewLink(local, remote domain.ConnectionID, sess Session, out SignalSender) *Link {
	return &Link{local: local, remote: remote, sess: sess, out: out}
}

func (l *Link) Remote() domain.ConnectionID { return l.remote }

func (l *Link) State() NegotiationState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Initiator reports whether this side sends the first offer. Always
// recomputed from the current connection ids, never cached across a
// reconnect, so both sides agree after the remote id changes.
func (l *Link) Initiator() bool {
	return core.IsInitiator(l.local, l.remote)
}

// Polite is the side that yields on glare: the non-initiator.
func (l *Link) Polite() bool { return !l.Initiator() }

// Negotiate creates and sends an offer if this side is the initiator.
// The non-initiator just waits for the remote offer.
func (l *Link) Negotiate() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateClosed {
		return ErrLinkClosed
	}
	if !core.IsInitiator(l.local, l.remote) {
		return nil
	}
	return l.sendOfferLocked()
}

func (l *Link) sendOfferLocked() error {
	offer, err := l.sess.CreateOffer()
	if err != nil {
		return err
	}
	if err := l.sess.SetLocalDescription(offer); err != nil {
		return err
	}
	l.state = StateHaveLocalOffer
	return l.out.SendOffer(l.remote, offer)
}

// HandleOffer applies a remote offer and replies with an answer. On glare
// (both sides hold a pending local offer) the polite side rolls back and
// accepts; the initiator ignores the incoming offer because its own offer
// wins and the remote will roll back symmetrically.
func (l *Link) HandleOffer(sdp webrtc.SessionDescription) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateClosed {
		return ErrLinkClosed
	}

	if l.state == StateHaveLocalOffer {
		if !l.Polite() {
			log.Debug().Str("module", "peer").Str("remote", string(l.remote)).Msg("glare: ignoring remote offer, ours wins")
			return nil
		}
		if err := l.sess.Rollback(); err != nil {
			return err
		}
		log.Debug().Str("module", "peer").Str("remote", string(l.remote)).Msg("glare: rolled back local offer")
	}

	if err := l.sess.SetRemoteDescription(sdp); err != nil {
		return err
	}
	l.state = StateHaveRemoteOffer
	l.remoteSet = true
	if err := l.flushPendingLocked(); err != nil {
		return err
	}

	answer, err := l.sess.CreateAnswer()
	if err != nil {
		return err
	}
	if err := l.sess.SetLocalDescription(answer); err != nil {
		return err
	}
	l.state = StateConnected
	return l.out.SendAnswer(l.remote, answer)
}

// HandleAnswer completes a negotiation this side initiated.
func (l *Link) HandleAnswer(sdp webrtc.SessionDescription) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateClosed {
		return ErrLinkClosed
	}
	if l.state != StateHaveLocalOffer {
		return ErrUnexpectedState
	}
	if err := l.sess.SetRemoteDescription(sdp); err != nil {
		return err
	}
	l.remoteSet = true
	l.state = StateConnected
	return l.flushPendingLocked()
}

// HandleCandidate applies a remote ICE candidate, buffering it when the
// remote description has not arrived yet. Buffered candidates flush in
// arrival order.
func (l *Link) HandleCandidate(cand webrtc.ICECandidateInit) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateClosed {
		return ErrLinkClosed
	}
	if !l.remoteSet {
		l.pending = append(l.pending, cand)
		return nil
	}
	return l.sess.AddICECandidate(cand)
}

func (l *Link) flushPendingLocked() error {
	for _, cand := range l.pending {
		if err := l.sess.AddICECandidate(cand); err != nil {
			return err
		}
	}
	l.pending = nil
	return nil
}

func (l *Link) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateClosed {
		return
	}
	l.state = StateClosed
	l.pending = nil
	_ = l.sess.Close()
}
