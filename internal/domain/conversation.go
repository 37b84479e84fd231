package domain

import "errors"

// Log bounds. Oldest entries are evicted first on overflow.
const (
	MaxMessages   = 500
	MaxTranscript = 1000
	MaxActivities = 500
)

var ErrPollNotFound = errors.New("poll not found")

// Conversation holds the bounded append-only logs of one meeting.
// Not safe for concurrent use; the coordinator serializes access.
type Conversation struct {
	Messages   []*ChatMessage
	Transcript []TranscriptEntry
	Activities []ActivityEvent
}

func NewConversation() *Conversation {
	return &Conversation{}
}

func (c *Conversation) AppendMessage(m *ChatMessage) {
	c.Messages = append(c.Messages, m)
	if len(c.Messages) > MaxMessages {
		c.Messages = c.Messages[len(c.Messages)-MaxMessages:]
	}
}

// AppendTranscript stores the entry only when it is final; interim
// entries are live-display data and are not retained.
func (c *Conversation) AppendTranscript(e TranscriptEntry) {
	if !e.IsFinal {
		return
	}
	c.Transcript = append(c.Transcript, e)
	if len(c.Transcript) > MaxTranscript {
		c.Transcript = c.Transcript[len(c.Transcript)-MaxTranscript:]
	}
}

func (c *Conversation) AppendActivity(e ActivityEvent) {
	c.Activities = append(c.Activities, e)
	if len(c.Activities) > MaxActivities {
		c.Activities = c.Activities[len(c.Activities)-MaxActivities:]
	}
}

// VoteOnPoll applies an exclusive vote to the poll message with the given id.
func (c *Conversation) VoteOnPoll(pollID MessageID, voter UserID, optionIndex int) (*ChatMessage, error) {
	for _, m := range c.Messages {
		if m.ID == pollID {
			if err := m.Vote(voter, optionIndex); err != nil {
				return nil, err
			}
			return m, nil
		}
	}
	return nil, ErrPollNotFound
}
