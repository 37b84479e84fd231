// Package domain contains meeting entities and their invariant logic.
// No transport or lifecycle concerns here.
package domain

import "errors"

const (
	MaxUserIDLen   = 36
	MaxUsernameLen = 36
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

type (
	UserID       string
	ConnectionID string
)

// Participant is one user's presence within a meeting. UserID is stable
// across reconnects; ConnectionID tracks the current live transport
// connection and is empty while the user is disconnected.
type Participant struct {
	UserID        UserID       `json:"userId"`
	Username      string       `json:"username"`
	ConnectionID  ConnectionID `json:"connectionId,omitempty"`
	AudioMuted    bool         `json:"isAudioMuted"`
	VideoOff      bool         `json:"isVideoOff"`
	HandRaised    bool         `json:"isHandRaised"`
	ScreenSharing bool         `json:"isScreenSharing"`
}

func NewParticipant(userID UserID, username string, conn ConnectionID) (*Participant, error) {
	if username == "" {
		return nil, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	return &Participant{UserID: userID, Username: username, ConnectionID: conn}, nil
}

// Connected reports whether the participant has a live transport connection.
func (p *Participant) Connected() bool { return p.ConnectionID != "" }
