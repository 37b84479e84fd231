package core

import (
	"encoding/json"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/dkeye/Meet/internal/domain"
)

// Server-to-client event types. The set is closed: every frame the server
// emits is one of these, tagged by the "type" field.
const (
	EventJoined                  = "joined"
	EventParticipantJoined       = "participant-joined"
	EventParticipantLeft         = "participant-left"
	EventParticipantDisconnected = "participant-disconnected"
	EventParticipantRemoved      = "participant-removed"
	EventOffer                   = "offer"
	EventAnswer                  = "answer"
	EventICECandidate            = "ice-candidate"
	EventChatMessage             = "chat-message"
	EventPollUpdated             = "poll-updated"
	EventTranscriptUpdate        = "transcript-update"
	EventAudioToggled            = "audio-toggled"
	EventVideoToggled            = "video-toggled"
	EventHandToggled             = "hand-toggled"
	EventScreenShareToggled      = "screen-share-toggled"
	EventForceMute               = "force-mute"
	EventKicked                  = "kicked-from-meeting"
	EventMeetingEnded            = "meeting-ended"
	EventPong                    = "pong"
	EventError                   = "error"
)

// JoinedEvent is the reply to the joining client: the current live roster
// (excluding itself) plus its own connection id.
type JoinedEvent struct {
	Type             string                `json:"type"`
	MeetingID        domain.MeetingID      `json:"meetingId"`
	SelfConnectionID domain.ConnectionID   `json:"selfConnectionId"`
	Participants     []domain.Participant  `json:"participants"`
	Messages         []*domain.ChatMessage `json:"messages"`
}

// PresenceEvent announces a participant joining, leaving, disconnecting
// or being removed.
type PresenceEvent struct {
	Type         string              `json:"type"`
	UserID       domain.UserID       `json:"userId"`
	Username     string              `json:"username"`
	ConnectionID domain.ConnectionID `json:"connectionId"`
}

// SignalEvent relays an offer, answer or ICE candidate to its target,
// tagged with the sender's connection id.
type SignalEvent struct {
	Type               string                     `json:"type"`
	SenderConnectionID domain.ConnectionID        `json:"senderConnectionId"`
	SDP                *webrtc.SessionDescription `json:"sdp,omitempty"`
	Candidate          *webrtc.ICECandidateInit   `json:"candidate,omitempty"`
}

type ChatEvent struct {
	Type    string              `json:"type"`
	Message *domain.ChatMessage `json:"message"`
}

type TranscriptEvent struct {
	Type      string        `json:"type"`
	UserID    domain.UserID `json:"userId"`
	Username  string        `json:"username"`
	Text      string        `json:"text"`
	IsFinal   bool          `json:"isFinal"`
	Timestamp time.Time     `json:"timestamp"`
}

// StateEvent broadcasts a participant flag change (audio, video, hand,
// screen share).
type StateEvent struct {
	Type     string        `json:"type"`
	UserID   domain.UserID `json:"userId"`
	Username string        `json:"username"`
	NewState bool          `json:"newState"`
}

// InstructionEvent is a host-initiated compliance instruction pushed to a
// single target client.
type InstructionEvent struct {
	Type   string        `json:"type"`
	ByUser domain.UserID `json:"byUser"`
}

type MeetingEndedEvent struct {
	Type      string           `json:"type"`
	MeetingID domain.MeetingID `json:"meetingId"`
}

type ErrorEvent struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// MustMarshal converts an event into a Frame. Event structs contain only
// marshalable fields, so a marshal error is a programming bug.
func MustMarshal(v any) Frame {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return Frame(b)
}
