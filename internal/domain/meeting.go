package domain

import (
	"errors"
	"time"
)

const MaxTitleLen = 120

var (
	ErrTitleTooLong = errors.New("title too long")
	ErrMeetingEnded = errors.New("meeting already ended")
)

type MeetingID string

// Host is the identity permitted to issue moderation commands.
// Set at creation, immutable thereafter.
type Host struct {
	UserID   UserID `json:"userId"`
	Username string `json:"username"`
}

// Meeting is one conferencing session. Participants form an ordered set
// unique by UserID; a rejoin replaces, never duplicates.
type Meeting struct {
	ID           MeetingID
	Host         Host
	Title        string
	Participants []*Participant
	Conversation *Conversation
	IsActive     bool
	CreatedAt    time.Time
	EndedAt      time.Time
}

func NewMeeting(id MeetingID, host Host, title string) (*Meeting, error) {
	if len(title) > MaxTitleLen {
		return nil, ErrTitleTooLong
	}
	return &Meeting{
		ID:           id,
		Host:         host,
		Title:        title,
		Conversation: NewConversation(),
		IsActive:     true,
		CreatedAt:    time.Now(),
	}, nil
}

func (m *Meeting) Participant(userID UserID) *Participant {
	for _, p := range m.Participants {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func (m *Meeting) ParticipantByConnection(conn ConnectionID) *Participant {
	if conn == "" {
		return nil
	}
	for _, p := range m.Participants {
		if p.ConnectionID == conn {
			return p
		}
	}
	return nil
}

// AddParticipant appends a new entry. The caller must have checked that
// no entry with this UserID exists; uniqueness is the meeting invariant.
func (m *Meeting) AddParticipant(p *Participant) {
	m.Participants = append(m.Participants, p)
}

func (m *Meeting) RemoveParticipant(userID UserID) bool {
	for i, p := range m.Participants {
		if p.UserID == userID {
			m.Participants = append(m.Participants[:i], m.Participants[i+1:]...)
			return true
		}
	}
	return false
}

// ConnectedPeers lists participants with a live connection, excluding one user.
func (m *Meeting) ConnectedPeers(except UserID) []*Participant {
	out := make([]*Participant, 0, len(m.Participants))
	for _, p := range m.Participants {
		if p.UserID != except && p.Connected() {
			out = append(out, p)
		}
	}
	return out
}

func (m *Meeting) End() error {
	if !m.IsActive {
		return ErrMeetingEnded
	}
	m.IsActive = false
	m.EndedAt = time.Now()
	return nil
}

// Snapshot is a read-only bundle used for chat-history replay and for
// summarization requests. Slices are copied; entries are shared.
type Snapshot struct {
	MeetingID    MeetingID         `json:"meetingId"`
	Title        string            `json:"title"`
	Messages     []*ChatMessage    `json:"messages"`
	Transcript   []TranscriptEntry `json:"transcript"`
	Activities   []ActivityEvent   `json:"activities"`
	Participants []Participant     `json:"participants"`
}

func (m *Meeting) Snapshot() Snapshot {
	s := Snapshot{
		MeetingID:    m.ID,
		Title:        m.Title,
		Messages:     make([]*ChatMessage, len(m.Conversation.Messages)),
		Transcript:   make([]TranscriptEntry, len(m.Conversation.Transcript)),
		Activities:   make([]ActivityEvent, len(m.Conversation.Activities)),
		Participants: make([]Participant, len(m.Participants)),
	}
	copy(s.Messages, m.Conversation.Messages)
	copy(s.Transcript, m.Conversation.Transcript)
	copy(s.Activities, m.Conversation.Activities)
	for i, p := range m.Participants {
		s.Participants[i] = *p
	}
	return s
}
