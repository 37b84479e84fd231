package signal

import (
	"errors"

	"github.com/pion/webrtc/v4"

	"github.com/dkeye/Meet/internal/domain"
)

// Client-to-server payloads. Each carries its own validation so malformed
// frames are rejected before any state is touched.

var (
	errMissingMeeting = errors.New("meetingId required")
	errMissingUser    = errors.New("userId required")
	errMissingTarget  = errors.New("targetConnectionId required")
)

type joinPayload struct {
	Type      string           `json:"type"`
	MeetingID domain.MeetingID `json:"meetingId"`
	UserID    domain.UserID    `json:"userId"`
	Username  string           `json:"username"`
}

func (p joinPayload) validate() error {
	if p.MeetingID == "" {
		return errMissingMeeting
	}
	if p.UserID == "" || len(p.UserID) > domain.MaxUserIDLen {
		return errMissingUser
	}
	if p.Username == "" {
		return domain.ErrUsernameEmpty
	}
	if len(p.Username) > domain.MaxUsernameLen {
		return domain.ErrUsernameTooLong
	}
	return nil
}

type leavePayload struct {
	Type      string           `json:"type"`
	MeetingID domain.MeetingID `json:"meetingId"`
	UserID    domain.UserID    `json:"userId"`
}

func (p leavePayload) validate() error {
	if p.MeetingID == "" {
		return errMissingMeeting
	}
	if p.UserID == "" {
		return errMissingUser
	}
	return nil
}

// relayPayload covers offer, answer and ice-candidate. The SDP or
// candidate is forwarded verbatim; the coordinator never inspects it.
type relayPayload struct {
	Type               string                     `json:"type"`
	TargetConnectionID domain.ConnectionID        `json:"targetConnectionId"`
	SDP                *webrtc.SessionDescription `json:"sdp,omitempty"`
	Candidate          *webrtc.ICECandidateInit   `json:"candidate,omitempty"`
}

func (p relayPayload) validate() error {
	if p.TargetConnectionID == "" {
		return errMissingTarget
	}
	return nil
}

type chatPayload struct {
	Type      string           `json:"type"`
	MeetingID domain.MeetingID `json:"meetingId"`
	UserID    domain.UserID    `json:"userId"`
	Username  string           `json:"username"`
	Text      string           `json:"text"`
}

func (p chatPayload) validate() error {
	if p.MeetingID == "" {
		return errMissingMeeting
	}
	if p.UserID == "" {
		return errMissingUser
	}
	if p.Text == "" {
		return domain.ErrEmptyMessage
	}
	return nil
}

type filePayload struct {
	Type      string                `json:"type"`
	MeetingID domain.MeetingID      `json:"meetingId"`
	UserID    domain.UserID         `json:"userId"`
	Username  string                `json:"username"`
	File      domain.FileAttachment `json:"file"`
}

func (p filePayload) validate() error {
	if p.MeetingID == "" {
		return errMissingMeeting
	}
	if p.UserID == "" {
		return errMissingUser
	}
	if p.File.Name == "" || p.File.URL == "" {
		return domain.ErrEmptyFileShare
	}
	return nil
}

type createPollPayload struct {
	Type      string           `json:"type"`
	MeetingID domain.MeetingID `json:"meetingId"`
	UserID    domain.UserID    `json:"userId"`
	Username  string           `json:"username"`
	Question  string           `json:"question"`
	Options   []string         `json:"options"`
}

func (p createPollPayload) validate() error {
	if p.MeetingID == "" {
		return errMissingMeeting
	}
	if p.UserID == "" {
		return errMissingUser
	}
	if p.Question == "" {
		return domain.ErrEmptyQuestion
	}
	if len(p.Options) < 2 {
		return domain.ErrPollNeedsTwo
	}
	return nil
}

type votePollPayload struct {
	Type        string           `json:"type"`
	MeetingID   domain.MeetingID `json:"meetingId"`
	PollID      domain.MessageID `json:"pollId"`
	UserID      domain.UserID    `json:"userId"`
	OptionIndex int              `json:"optionIndex"`
}

func (p votePollPayload) validate() error {
	if p.MeetingID == "" {
		return errMissingMeeting
	}
	if p.UserID == "" {
		return errMissingUser
	}
	if p.PollID == "" {
		return domain.ErrPollNotFound
	}
	if p.OptionIndex < 0 {
		return domain.ErrOptionRange
	}
	return nil
}

type transcriptPayload struct {
	Type      string           `json:"type"`
	MeetingID domain.MeetingID `json:"meetingId"`
	UserID    domain.UserID    `json:"userId"`
	Username  string           `json:"username"`
	Text      string           `json:"text"`
	IsFinal   bool             `json:"isFinal"`
}

func (p transcriptPayload) validate() error {
	if p.MeetingID == "" {
		return errMissingMeeting
	}
	if p.UserID == "" {
		return errMissingUser
	}
	if p.Text == "" {
		return domain.ErrEmptyMessage
	}
	return nil
}

type togglePayload struct {
	Type      string           `json:"type"`
	MeetingID domain.MeetingID `json:"meetingId"`
	UserID    domain.UserID    `json:"userId"`
	NewState  bool             `json:"newState"`
}

func (p togglePayload) validate() error {
	if p.MeetingID == "" {
		return errMissingMeeting
	}
	if p.UserID == "" {
		return errMissingUser
	}
	return nil
}

type moderationPayload struct {
	Type               string              `json:"type"`
	MeetingID          domain.MeetingID    `json:"meetingId"`
	HostUserID         domain.UserID       `json:"hostUserId"`
	TargetUserID       domain.UserID       `json:"targetUserId"`
	TargetConnectionID domain.ConnectionID `json:"targetConnectionId"`
}

func (p moderationPayload) validate() error {
	if p.MeetingID == "" {
		return errMissingMeeting
	}
	if p.HostUserID == "" || p.TargetUserID == "" {
		return errMissingUser
	}
	return nil
}
