package domain

import "time"

// TranscriptEntry is one finalized speech fragment. Interim (non-final)
// fragments are broadcast for live display but never stored.
type TranscriptEntry struct {
	UserID    UserID    `json:"userId"`
	Username  string    `json:"username"`
	Text      string    `json:"text"`
	IsFinal   bool      `json:"isFinal"`
	Timestamp time.Time `json:"timestamp"`
}
