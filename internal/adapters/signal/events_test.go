package signal

import (
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Meet/internal/domain"
)

func TestJoinPayloadValidate(t *testing.T) {
	t.Parallel()
	valid := joinPayload{MeetingID: "m1", UserID: "u1", Username: "alice"}
	if err := valid.validate(); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	cases := []struct {
		name string
		p    joinPayload
		want error
	}{
		{"missing meeting", joinPayload{UserID: "u1", Username: "alice"}, errMissingMeeting},
		{"missing user", joinPayload{MeetingID: "m1", Username: "alice"}, errMissingUser},
		{"oversized user id", joinPayload{MeetingID: "m1", UserID: domain.UserID(strings.Repeat("x", domain.MaxUserIDLen+1)), Username: "alice"}, errMissingUser},
		{"empty username", joinPayload{MeetingID: "m1", UserID: "u1"}, domain.ErrUsernameEmpty},
		{"oversized username", joinPayload{MeetingID: "m1", UserID: "u1", Username: strings.Repeat("x", domain.MaxUsernameLen+1)}, domain.ErrUsernameTooLong},
	}
	for _, c := range cases {
		if err := c.p.validate(); err != c.want {
			t.Errorf("%s: err = %v, want %v", c.name, err, c.want)
		}
	}
}

func TestRelayPayloadValidate(t *testing.T) {
	t.Parallel()
	if err := (relayPayload{}).validate(); err != errMissingTarget {
		t.Errorf("err = %v, want errMissingTarget", err)
	}
	if err := (relayPayload{TargetConnectionID: "c1"}).validate(); err != nil {
		t.Errorf("valid relay rejected: %v", err)
	}
}

func TestPollPayloadValidate(t *testing.T) {
	t.Parallel()
	base := createPollPayload{MeetingID: "m1", UserID: "u1", Question: "q?", Options: []string{"a", "b"}}
	if err := base.validate(); err != nil {
		t.Fatalf("valid poll rejected: %v", err)
	}

	oneOption := base
	oneOption.Options = []string{"a"}
	if err := oneOption.validate(); err != domain.ErrPollNeedsTwo {
		t.Errorf("single option: err = %v, want ErrPollNeedsTwo", err)
	}

	vote := votePollPayload{MeetingID: "m1", PollID: "p1", UserID: "u1", OptionIndex: -1}
	if err := vote.validate(); err != domain.ErrOptionRange {
		t.Errorf("negative index: err = %v, want ErrOptionRange", err)
	}
}

func TestModerationPayloadValidate(t *testing.T) {
	t.Parallel()
	ok := moderationPayload{MeetingID: "m1", HostUserID: "h1", TargetUserID: "u2"}
	if err := ok.validate(); err != nil {
		t.Fatalf("valid moderation rejected: %v", err)
	}
	noTarget := moderationPayload{MeetingID: "m1", HostUserID: "h1"}
	if err := noTarget.validate(); err != errMissingUser {
		t.Errorf("err = %v, want errMissingUser", err)
	}
}

func TestJoinRateLimiter(t *testing.T) {
	t.Parallel()
	rl := NewJoinRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.Allow("u1") {
			t.Fatalf("attempt %d denied inside the limit", i+1)
		}
	}
	if rl.Allow("u1") {
		t.Error("attempt over the limit allowed")
	}
	// Limits are per user.
	if !rl.Allow("u2") {
		t.Error("unrelated user throttled")
	}
}
