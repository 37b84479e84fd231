package domain

import "time"

type ActivityType string

const (
	ActivityJoin             ActivityType = "join"
	ActivityLeave            ActivityType = "leave"
	ActivityMute             ActivityType = "mute"
	ActivityUnmute           ActivityType = "unmute"
	ActivityVideoOn          ActivityType = "video-on"
	ActivityVideoOff         ActivityType = "video-off"
	ActivityHandRaise        ActivityType = "hand-raise"
	ActivityHandLower        ActivityType = "hand-lower"
	ActivityScreenShareStart ActivityType = "screen-share-start"
	ActivityScreenShareStop  ActivityType = "screen-share-stop"
)

// ActivityEvent is one entry of the append-only audit trail.
type ActivityEvent struct {
	Type      ActivityType `json:"type"`
	UserID    UserID       `json:"userId"`
	Username  string       `json:"username"`
	Timestamp time.Time    `json:"timestamp"`
	Details   string       `json:"details,omitempty"`
}
