package app

import (
	"errors"
	"testing"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

func TestMuteRequiresHost(t *testing.T) {
	t.Parallel()
	c, _ := newTestCoordinator(t)

	hostConn := join(t, c, "host", "hanna", "a1")
	bConn := join(t, c, "bob", "bob", "b2")

	beforeHost := len(hostConn.events(t))
	beforeB := len(bConn.events(t))

	err := c.MuteParticipant("m1", "bob", "host", "a1")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-host mute err = %v, want ErrUnauthorized", err)
	}

	m, _ := c.Store.Get("m1")
	if m.Participant("host").AudioMuted {
		t.Error("target muted by a non-host command")
	}
	// The denial must not produce any frames at all.
	if len(hostConn.events(t)) != beforeHost || len(bConn.events(t)) != beforeB {
		t.Error("unauthorized mute leaked frames to the room")
	}
}

func TestMuteByHost(t *testing.T) {
	t.Parallel()
	c, _ := newTestCoordinator(t)

	join(t, c, "host", "hanna", "a1")
	bConn := join(t, c, "bob", "bob", "b2")

	if err := c.MuteParticipant("m1", "host", "bob", "b2"); err != nil {
		t.Fatalf("host mute: %v", err)
	}

	m, _ := c.Store.Get("m1")
	if !m.Participant("bob").AudioMuted {
		t.Error("target not muted")
	}
	instr := bConn.lastOfType(t, core.EventForceMute)
	if instr["byUser"] != "host" {
		t.Errorf("force-mute byUser = %v", instr["byUser"])
	}
	state := bConn.lastOfType(t, core.EventAudioToggled)
	if state["userId"] != "bob" || state["newState"] != true {
		t.Errorf("audio-toggled = %v", state)
	}
	last := m.Conversation.Activities[len(m.Conversation.Activities)-1]
	if last.Type != domain.ActivityMute || last.Details != "muted by host" {
		t.Errorf("activity = %+v", last)
	}
}

func TestKickRequiresHost(t *testing.T) {
	t.Parallel()
	c, _ := newTestCoordinator(t)

	join(t, c, "host", "hanna", "a1")
	join(t, c, "bob", "bob", "b2")

	if err := c.KickParticipant("m1", "bob", "host", "a1"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("non-host kick err = %v, want ErrUnauthorized", err)
	}
	m, _ := c.Store.Get("m1")
	if m.Participant("host") == nil {
		t.Fatal("host removed by impostor kick")
	}
	if _, _, _, ok := c.Registry.Lookup("a1"); !ok {
		t.Fatal("host connection severed by impostor kick")
	}
}

func TestKickByHost(t *testing.T) {
	t.Parallel()
	c, _ := newTestCoordinator(t)

	hostConn := join(t, c, "host", "hanna", "a1")
	bConn := join(t, c, "bob", "bob", "b2")

	if err := c.KickParticipant("m1", "host", "bob", "b2"); err != nil {
		t.Fatalf("host kick: %v", err)
	}

	m, _ := c.Store.Get("m1")
	if m.Participant("bob") != nil {
		t.Fatal("kicked participant still in roster")
	}
	bConn.lastOfType(t, core.EventKicked)
	if _, _, _, ok := c.Registry.Lookup("b2"); ok {
		t.Error("kicked connection still registered")
	}
	removed := hostConn.lastOfType(t, core.EventParticipantRemoved)
	if removed["userId"] != "bob" {
		t.Errorf("participant-removed = %v", removed)
	}

	// Kicking someone already gone is a quiet no-op.
	if err := c.KickParticipant("m1", "host", "bob", "b2"); err != nil {
		t.Fatalf("repeat kick: %v", err)
	}
}

func TestKickPrefersLiveConnection(t *testing.T) {
	t.Parallel()
	c, _ := newTestCoordinator(t)

	join(t, c, "host", "hanna", "a1")
	bConn := join(t, c, "bob", "bob", "b2")

	// The host's client may hold a stale connection id after a reconnect;
	// the roster's live binding wins.
	if err := c.KickParticipant("m1", "host", "bob", "stale"); err != nil {
		t.Fatalf("kick: %v", err)
	}
	bConn.lastOfType(t, core.EventKicked)
	if _, _, _, ok := c.Registry.Lookup("b2"); ok {
		t.Error("live connection b2 survived the kick")
	}
}
