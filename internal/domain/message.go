package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type MessageKind string

const (
	MessageText MessageKind = "text"
	MessageFile MessageKind = "file"
	MessagePoll MessageKind = "poll"
)

type MessageID string

var (
	ErrNotAPoll       = errors.New("message is not a poll")
	ErrOptionRange    = errors.New("poll option index out of range")
	ErrPollNeedsTwo   = errors.New("poll needs at least two options")
	ErrEmptyQuestion  = errors.New("poll question empty")
	ErrEmptyMessage   = errors.New("message text empty")
	ErrEmptyFileShare = errors.New("file share needs a name and url")
)

type FileAttachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size int64  `json:"size,omitempty"`
}

type PollOption struct {
	Text   string   `json:"text"`
	Voters []UserID `json:"voters"`
	Votes  int      `json:"votes"`
}

type Poll struct {
	Question string       `json:"question"`
	Options  []PollOption `json:"options"`
}

// ChatMessage is the discriminated union over text, file and poll variants.
// Exactly one of Text, File, Poll is meaningful, selected by Kind.
type ChatMessage struct {
	ID        MessageID       `json:"id"`
	Kind      MessageKind     `json:"kind"`
	UserID    UserID          `json:"userId"`
	Username  string          `json:"username"`
	Text      string          `json:"text,omitempty"`
	File      *FileAttachment `json:"file,omitempty"`
	Poll      *Poll           `json:"poll,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewTextMessage(userID UserID, username, text string) (*ChatMessage, error) {
	if text == "" {
		return nil, ErrEmptyMessage
	}
	return &ChatMessage{
		ID:        MessageID(uuid.NewString()),
		Kind:      MessageText,
		UserID:    userID,
		Username:  username,
		Text:      text,
		Timestamp: time.Now(),
	}, nil
}

func NewFileMessage(userID UserID, username string, file FileAttachment) (*ChatMessage, error) {
	if file.Name == "" || file.URL == "" {
		return nil, ErrEmptyFileShare
	}
	return &ChatMessage{
		ID:        MessageID(uuid.NewString()),
		Kind:      MessageFile,
		UserID:    userID,
		Username:  username,
		File:      &file,
		Timestamp: time.Now(),
	}, nil
}

func NewPollMessage(userID UserID, username, question string, options []string) (*ChatMessage, error) {
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if len(options) < 2 {
		return nil, ErrPollNeedsTwo
	}
	opts := make([]PollOption, len(options))
	for i, text := range options {
		opts[i] = PollOption{Text: text, Voters: []UserID{}}
	}
	return &ChatMessage{
		ID:        MessageID(uuid.NewString()),
		Kind:      MessagePoll,
		UserID:    userID,
		Username:  username,
		Poll:      &Poll{Question: question, Options: opts},
		Timestamp: time.Now(),
	}, nil
}

// Vote records an exclusive vote: the voter is removed from every option
// before being added to the chosen one, so a re-vote is a vote change and
// a repeated vote is a no-op in effect.
func (m *ChatMessage) Vote(voter UserID, optionIndex int) error {
	if m.Kind != MessagePoll || m.Poll == nil {
		return ErrNotAPoll
	}
	if optionIndex < 0 || optionIndex >= len(m.Poll.Options) {
		return ErrOptionRange
	}
	for i := range m.Poll.Options {
		opt := &m.Poll.Options[i]
		for j, v := range opt.Voters {
			if v == voter {
				opt.Voters = append(opt.Voters[:j], opt.Voters[j+1:]...)
				break
			}
		}
	}
	chosen := &m.Poll.Options[optionIndex]
	chosen.Voters = append(chosen.Voters, voter)
	for i := range m.Poll.Options {
		m.Poll.Options[i].Votes = len(m.Poll.Options[i].Voters)
	}
	return nil
}
