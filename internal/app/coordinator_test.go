package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/store"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	closed bool
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// events decodes every received frame into its generic shape.
func (f *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		if err := json.Unmarshal(fr, &m); err != nil {
			t.Fatalf("bad frame %q: %v", fr, err)
		}
		out = append(out, m)
	}
	return out
}

func (f *fakeConn) countType(t *testing.T, typ string) int {
	t.Helper()
	n := 0
	for _, ev := range f.events(t) {
		if ev["type"] == typ {
			n++
		}
	}
	return n
}

func (f *fakeConn) lastOfType(t *testing.T, typ string) map[string]any {
	t.Helper()
	var found map[string]any
	for _, ev := range f.events(t) {
		if ev["type"] == typ {
			found = ev
		}
	}
	if found == nil {
		t.Fatalf("no %q event received", typ)
	}
	return found
}

type stubDurable struct {
	mu      sync.Mutex
	flushed []store.MeetingRecord
}

func (s *stubDurable) Insert(context.Context, store.MeetingRecord) error { return nil }

func (s *stubDurable) FetchActive(context.Context, domain.MeetingID) (*store.MeetingRecord, error) {
	return nil, nil
}

func (s *stubDurable) Flush(_ context.Context, rec store.MeetingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushed = append(s.flushed, rec)
	return nil
}

func newTestCoordinator(t *testing.T) (*Coordinator, *stubDurable) {
	t.Helper()
	d := &stubDurable{}
	c := NewCoordinator(store.NewSessionStore(d), NewRegistry())
	if _, err := c.Store.Create("m1", domain.Host{UserID: "host", Username: "hanna"}, "standup"); err != nil {
		t.Fatalf("create meeting: %v", err)
	}
	return c, d
}

func join(t *testing.T, c *Coordinator, userID domain.UserID, username string, connID domain.ConnectionID) *fakeConn {
	t.Helper()
	conn := &fakeConn{}
	c.Registry.Bind(connID, conn, nil)
	if err := c.Join(context.Background(), "m1", userID, username, connID); err != nil {
		t.Fatalf("join %s/%s: %v", userID, connID, err)
	}
	return conn
}

func TestJoinRosterAndInitiator(t *testing.T) {
	t.Parallel()
	c, _ := newTestCoordinator(t)

	hostConn := join(t, c, "host", "hanna", "a1")
	bConn := join(t, c, "bob", "bob", "b2")

	// B gets the roster with exactly the host's live connection.
	joined := bConn.lastOfType(t, core.EventJoined)
	if joined["selfConnectionId"] != "b2" {
		t.Errorf("selfConnectionId = %v, want b2", joined["selfConnectionId"])
	}
	roster, ok := joined["participants"].([]any)
	if !ok || len(roster) != 1 {
		t.Fatalf("roster = %v, want one entry", joined["participants"])
	}
	entry := roster[0].(map[string]any)
	if entry["connectionId"] != "a1" {
		t.Errorf("roster connectionId = %v, want a1", entry["connectionId"])
	}

	// Host hears about B.
	pj := hostConn.lastOfType(t, core.EventParticipantJoined)
	if pj["connectionId"] != "b2" || pj["userId"] != "bob" {
		t.Errorf("participant-joined = %v", pj)
	}

	// a1 sorts below b2, so the host side initiates the offer.
	if !core.IsInitiator("a1", "b2") {
		t.Error("a1 should initiate toward b2")
	}
	if core.IsInitiator("b2", "a1") {
		t.Error("b2 must not initiate toward a1")
	}
}

func TestJoinIdempotent(t *testing.T) {
	t.Parallel()
	c, _ := newTestCoordinator(t)

	hostConn := join(t, c, "host", "hanna", "a1")
	join(t, c, "bob", "bob", "b2")

	before := hostConn.countType(t, core.EventParticipantJoined)
	if err := c.Join(context.Background(), "m1", "bob", "bob", "b2"); err != nil {
		t.Fatalf("repeat join: %v", err)
	}

	m, _ := c.Store.Get("m1")
	if len(m.Participants) != 2 {
		t.Fatalf("participants = %d, want 2", len(m.Participants))
	}
	if after := hostConn.countType(t, core.EventParticipantJoined); after != before {
		t.Errorf("idempotent join re-announced: %d -> %d participant-joined events", before, after)
	}
}

func TestJoinReconnectReplacesConnection(t *testing.T) {
	t.Parallel()
	c, _ := newTestCoordinator(t)

	hostConn := join(t, c, "host", "hanna", "a1")
	join(t, c, "bob", "bob", "b2")
	newConn := join(t, c, "bob", "bob", "b3")

	m, _ := c.Store.Get("m1")
	if len(m.Participants) != 2 {
		t.Fatalf("participants = %d, want 2 (no duplicate on reconnect)", len(m.Participants))
	}
	p := m.Participant("bob")
	if p.ConnectionID != "b3" {
		t.Errorf("connection id = %q, want b3", p.ConnectionID)
	}

	// Peers must first tear down the b2 link, then learn b3.
	disc := hostConn.lastOfType(t, core.EventParticipantDisconnected)
	if disc["connectionId"] != "b2" {
		t.Errorf("defunct notice for %v, want b2", disc["connectionId"])
	}
	rejoin := hostConn.lastOfType(t, core.EventParticipantJoined)
	if rejoin["connectionId"] != "b3" {
		t.Errorf("rejoin announced %v, want b3", rejoin["connectionId"])
	}

	// The old connection's registration is released.
	if _, _, _, ok := c.Registry.Lookup("b2"); ok {
		t.Error("stale connection b2 still registered")
	}
	if newConn.countType(t, core.EventJoined) != 1 {
		t.Error("reconnecting client did not get a roster reply")
	}
}

func TestJoinUnknownMeeting(t *testing.T) {
	t.Parallel()
	c, _ := newTestCoordinator(t)
	conn := &fakeConn{}
	c.Registry.Bind("x1", conn, nil)
	err := c.Join(context.Background(), "nope", "bob", "bob", "x1")
	if !errors.Is(err, store.ErrMeetingNotFound) {
		t.Fatalf("join unknown meeting err = %v, want ErrMeetingNotFound", err)
	}
}

func TestLeaveRemovesParticipant(t *testing.T) {
	t.Parallel()
	c, _ := newTestCoordinator(t)

	hostConn := join(t, c, "host", "hanna", "a1")
	join(t, c, "bob", "bob", "b2")

	if err := c.Leave("m1", "bob"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	m, _ := c.Store.Get("m1")
	if m.Participant("bob") != nil {
		t.Fatal("participant still present after leave")
	}
	left := hostConn.lastOfType(t, core.EventParticipantLeft)
	if left["userId"] != "bob" {
		t.Errorf("participant-left = %v", left)
	}

	var acts []domain.ActivityType
	for _, a := range m.Conversation.Activities {
		acts = append(acts, a.Type)
	}
	if acts[len(acts)-1] != domain.ActivityLeave {
		t.Errorf("last activity = %v, want leave", acts[len(acts)-1])
	}
}

func TestDisconnectKeepsParticipantRecord(t *testing.T) {
	t.Parallel()
	c, _ := newTestCoordinator(t)

	hostConn := join(t, c, "host", "hanna", "a1")
	join(t, c, "bob", "bob", "b2")

	c.Disconnect("b2")

	m, _ := c.Store.Get("m1")
	p := m.Participant("bob")
	if p == nil {
		t.Fatal("participant removed on disconnect; a blip must not cost identity")
	}
	if p.Connected() {
		t.Errorf("connection id = %q, want cleared", p.ConnectionID)
	}
	disc := hostConn.lastOfType(t, core.EventParticipantDisconnected)
	if disc["connectionId"] != "b2" {
		t.Errorf("disconnect notice = %v", disc)
	}
}

func TestRelayDeliversAndTagsSender(t *testing.T) {
	t.Parallel()
	c, _ := newTestCoordinator(t)

	hostConn := join(t, c, "host", "hanna", "a1")
	join(t, c, "bob", "bob", "b2")

	c.Relay(SignalOffer, "b2", "a1", core.SignalEvent{})
	offer := hostConn.lastOfType(t, core.EventOffer)
	if offer["senderConnectionId"] != "b2" {
		t.Errorf("senderConnectionId = %v, want b2", offer["senderConnectionId"])
	}
}

func TestRelayStaleTargetDroppedSilently(t *testing.T) {
	t.Parallel()
	c, _ := newTestCoordinator(t)

	bConn := join(t, c, "bob", "bob", "b2")
	before := len(bConn.events(t))

	// Target never existed; nothing reaches the sender either.
	c.Relay(SignalCandidate, "b2", "gone", core.SignalEvent{})
	if after := len(bConn.events(t)); after != before {
		t.Errorf("sender received %d new frames for a dropped relay", after-before)
	}
}

func TestEndMeetingHostOnly(t *testing.T) {
	t.Parallel()
	c, d := newTestCoordinator(t)

	hostConn := join(t, c, "host", "hanna", "a1")
	bConn := join(t, c, "bob", "bob", "b2")

	if err := c.EndMeeting(context.Background(), "m1", "bob"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-host end err = %v, want ErrUnauthorized", err)
	}
	if _, ok := c.Store.Get("m1"); !ok {
		t.Fatal("meeting evicted by unauthorized end")
	}

	if err := c.EndMeeting(context.Background(), "m1", "host"); err != nil {
		t.Fatalf("host end: %v", err)
	}
	if _, ok := c.Store.Get("m1"); ok {
		t.Fatal("meeting still resident after end")
	}
	for _, conn := range []*fakeConn{hostConn, bConn} {
		conn.lastOfType(t, core.EventMeetingEnded)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.flushed) != 1 || d.flushed[0].IsActive {
		t.Fatalf("flushed records = %+v, want one inactive record", d.flushed)
	}
}

func TestChatBroadcastAndSnapshot(t *testing.T) {
	t.Parallel()
	c, _ := newTestCoordinator(t)

	hostConn := join(t, c, "host", "hanna", "a1")
	bConn := join(t, c, "bob", "bob", "b2")

	if _, err := c.PostMessage("m1", "bob", "bob", "hello"); err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	for _, conn := range []*fakeConn{hostConn, bConn} {
		ev := conn.lastOfType(t, core.EventChatMessage)
		msg := ev["message"].(map[string]any)
		if msg["text"] != "hello" {
			t.Errorf("chat echo = %v", msg)
		}
	}

	if err := c.PostTranscript("m1", "bob", "bob", "first line", true, "b2"); err != nil {
		t.Fatalf("PostTranscript: %v", err)
	}
	// Transcript goes to the room excluding the speaker.
	hostConn.lastOfType(t, core.EventTranscriptUpdate)
	if n := bConn.countType(t, core.EventTranscriptUpdate); n != 0 {
		t.Errorf("speaker received %d transcript-update frames, want 0", n)
	}

	snap, err := c.Snapshot("m1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(snap.Messages) != 1 || len(snap.Transcript) != 1 || len(snap.Participants) != 2 {
		t.Errorf("snapshot sizes: messages=%d transcript=%d participants=%d",
			len(snap.Messages), len(snap.Transcript), len(snap.Participants))
	}
}

func TestToggleStateBroadcastsAndLogs(t *testing.T) {
	t.Parallel()
	c, _ := newTestCoordinator(t)

	hostConn := join(t, c, "host", "hanna", "a1")
	join(t, c, "bob", "bob", "b2")

	if err := c.ToggleState("m1", "bob", FlagHand, true); err != nil {
		t.Fatalf("ToggleState: %v", err)
	}
	ev := hostConn.lastOfType(t, core.EventHandToggled)
	if ev["newState"] != true || ev["userId"] != "bob" {
		t.Errorf("hand-toggled = %v", ev)
	}

	m, _ := c.Store.Get("m1")
	if !m.Participant("bob").HandRaised {
		t.Error("flag not mutated")
	}
	last := m.Conversation.Activities[len(m.Conversation.Activities)-1]
	if last.Type != domain.ActivityHandRaise {
		t.Errorf("last activity = %v, want hand-raise", last.Type)
	}
}
