package store

import (
	"context"
	"time"

	"github.com/dkeye/Meet/internal/domain"
)

// MeetingRecord is the durable shape of one meeting: identity plus the
// flushed conversation logs. Participant connection state is never
// persisted; live connections cannot survive a process boundary.
type MeetingRecord struct {
	ID         domain.MeetingID
	Host       domain.Host
	Title      string
	IsActive   bool
	CreatedAt  time.Time
	EndedAt    time.Time
	Messages   []*domain.ChatMessage
	Transcript []domain.TranscriptEntry
	Activities []domain.ActivityEvent
}

// DurableStore is the external persistence collaborator. Implementations
// own retention (records are deleted a fixed window after the meeting
// ends); the session store only reads active records back.
type DurableStore interface {
	Insert(ctx context.Context, rec MeetingRecord) error
	// FetchActive returns the record for id if it exists and is still
	// active, or nil with no error when there is no such record.
	FetchActive(ctx context.Context, id domain.MeetingID) (*MeetingRecord, error)
	// Flush persists the final conversation state when a meeting ends.
	Flush(ctx context.Context, rec MeetingRecord) error
}
