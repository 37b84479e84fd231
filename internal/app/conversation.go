package app

import (
	"time"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/store"
)

func activity(t domain.ActivityType, userID domain.UserID, username, details string) domain.ActivityEvent {
	return domain.ActivityEvent{
		Type:      t,
		UserID:    userID,
		Username:  username,
		Timestamp: time.Now(),
		Details:   details,
	}
}

// PostMessage appends a text message and echoes the stored entity to the
// whole room, sender included.
func (c *Coordinator) PostMessage(meetingID domain.MeetingID, userID domain.UserID, username, text string) (*domain.ChatMessage, error) {
	msg, err := domain.NewTextMessage(userID, username, text)
	if err != nil {
		return nil, err
	}
	return c.appendAndEcho(meetingID, msg)
}

func (c *Coordinator) ShareFile(meetingID domain.MeetingID, userID domain.UserID, username string, file domain.FileAttachment) (*domain.ChatMessage, error) {
	msg, err := domain.NewFileMessage(userID, username, file)
	if err != nil {
		return nil, err
	}
	return c.appendAndEcho(meetingID, msg)
}

func (c *Coordinator) CreatePoll(meetingID domain.MeetingID, userID domain.UserID, username, question string, options []string) (*domain.ChatMessage, error) {
	msg, err := domain.NewPollMessage(userID, username, question, options)
	if err != nil {
		return nil, err
	}
	return c.appendAndEcho(meetingID, msg)
}

func (c *Coordinator) appendAndEcho(meetingID domain.MeetingID, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	m, ok := c.Store.Get(meetingID)
	if !ok {
		return nil, store.ErrMeetingNotFound
	}
	c.mu.Lock()
	m.Conversation.AppendMessage(msg)
	c.mu.Unlock()
	c.Registry.Broadcast(meetingID, "", core.MustMarshal(core.ChatEvent{
		Type:    core.EventChatMessage,
		Message: msg,
	}))
	return msg, nil
}

// VotePoll applies an exclusive re-vote and broadcasts the updated poll.
func (c *Coordinator) VotePoll(meetingID domain.MeetingID, pollID domain.MessageID, voter domain.UserID, optionIndex int) error {
	m, ok := c.Store.Get(meetingID)
	if !ok {
		return store.ErrMeetingNotFound
	}
	c.mu.Lock()
	msg, err := m.Conversation.VoteOnPoll(pollID, voter, optionIndex)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.Registry.Broadcast(meetingID, "", core.MustMarshal(core.ChatEvent{
		Type:    core.EventPollUpdated,
		Message: msg,
	}))
	return nil
}

// PostTranscript stores final fragments and broadcasts every fragment to
// the room excluding the speaker. Interim fragments are display-only.
func (c *Coordinator) PostTranscript(meetingID domain.MeetingID, userID domain.UserID, username, text string, isFinal bool, senderConn domain.ConnectionID) error {
	m, ok := c.Store.Get(meetingID)
	if !ok {
		return store.ErrMeetingNotFound
	}
	entry := domain.TranscriptEntry{
		UserID:    userID,
		Username:  username,
		Text:      text,
		IsFinal:   isFinal,
		Timestamp: time.Now(),
	}
	c.mu.Lock()
	m.Conversation.AppendTranscript(entry)
	c.mu.Unlock()
	c.Registry.Broadcast(meetingID, senderConn, core.MustMarshal(core.TranscriptEvent{
		Type:      core.EventTranscriptUpdate,
		UserID:    userID,
		Username:  username,
		Text:      text,
		IsFinal:   isFinal,
		Timestamp: entry.Timestamp,
	}))
	return nil
}

// StateFlag selects which participant flag a toggle mutates.
type StateFlag int

const (
	FlagAudio StateFlag = iota
	FlagVideo
	FlagHand
	FlagScreen
)

func (f StateFlag) event() string {
	switch f {
	case FlagAudio:
		return core.EventAudioToggled
	case FlagVideo:
		return core.EventVideoToggled
	case FlagHand:
		return core.EventHandToggled
	default:
		return core.EventScreenShareToggled
	}
}

func (f StateFlag) activityType(newState bool) domain.ActivityType {
	switch f {
	case FlagAudio:
		if newState {
			return domain.ActivityMute
		}
		return domain.ActivityUnmute
	case FlagVideo:
		if newState {
			return domain.ActivityVideoOff
		}
		return domain.ActivityVideoOn
	case FlagHand:
		if newState {
			return domain.ActivityHandRaise
		}
		return domain.ActivityHandLower
	default:
		if newState {
			return domain.ActivityScreenShareStart
		}
		return domain.ActivityScreenShareStop
	}
}

// ToggleState mutates one participant flag, records the activity and
// broadcasts the new state to the room.
func (c *Coordinator) ToggleState(meetingID domain.MeetingID, userID domain.UserID, flag StateFlag, newState bool) error {
	m, ok := c.Store.Get(meetingID)
	if !ok {
		return store.ErrMeetingNotFound
	}
	c.mu.Lock()
	p := m.Participant(userID)
	if p == nil {
		c.mu.Unlock()
		return store.ErrMeetingNotFound
	}
	switch flag {
	case FlagAudio:
		p.AudioMuted = newState
	case FlagVideo:
		p.VideoOff = newState
	case FlagHand:
		p.HandRaised = newState
	case FlagScreen:
		p.ScreenSharing = newState
	}
	m.Conversation.AppendActivity(activity(flag.activityType(newState), userID, p.Username, ""))
	username := p.Username
	c.mu.Unlock()

	c.Registry.Broadcast(meetingID, "", core.MustMarshal(core.StateEvent{
		Type:     flag.event(),
		UserID:   userID,
		Username: username,
		NewState: newState,
	}))
	return nil
}
