package peer

import (
	"github.com/pion/webrtc/v4"
)

func DefaultWebRTCConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{"stun:stun.l.google.com:19302"},
			},
		},
	}
}

// rtcSession is the pion-backed Session used outside of tests.
type rtcSession struct {
	pc *webrtc.PeerConnection
}

// NewRTCSession builds a peer connection and wires locally gathered ICE
// candidates into the provided callback (which relays them to the remote).
func NewRTCSession(cfg webrtc.Configuration, onCandidate func(webrtc.ICECandidateInit)) (Session, error) {
	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, err
	}
	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		onCandidate(c.ToJSON())
	})
	return &rtcSession{pc: pc}, nil
}

func (s *rtcSession) CreateOffer() (webrtc.SessionDescription, error) {
	return s.pc.CreateOffer(nil)
}

func (s *rtcSession) CreateAnswer() (webrtc.SessionDescription, error) {
	return s.pc.CreateAnswer(nil)
}

func (s *rtcSession) SetLocalDescription(sdp webrtc.SessionDescription) error {
	return s.pc.SetLocalDescription(sdp)
}

func (s *rtcSession) SetRemoteDescription(sdp webrtc.SessionDescription) error {
	return s.pc.SetRemoteDescription(sdp)
}

func (s *rtcSession) Rollback() error {
	return s.pc.SetLocalDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeRollback})
}

func (s *rtcSession) AddICECandidate(cand webrtc.ICECandidateInit) error {
	return s.pc.AddICECandidate(cand)
}

func (s *rtcSession) Close() error {
	return s.pc.Close()
}
