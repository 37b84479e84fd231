package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/store"
)

// Moderation commands are host-only and best-effort: the server pushes a
// compliance instruction but cannot force a browser's hardware state. A
// non-host requester gets no response at all; the denial is logged
// server-side and nothing leaks back to the caller.

// MuteParticipant force-mutes a target on the host's behalf.
func (c *Coordinator) MuteParticipant(meetingID domain.MeetingID, requester, target domain.UserID, targetConn domain.ConnectionID) error {
	m, ok := c.Store.Get(meetingID)
	if !ok {
		return store.ErrMeetingNotFound
	}

	c.mu.Lock()
	if m.Host.UserID != requester {
		c.mu.Unlock()
		log.Warn().Str("module", "app.moderation").Str("meeting", string(meetingID)).Str("requester", string(requester)).Msg("mute denied: not host")
		return ErrUnauthorized
	}
	p := m.Participant(target)
	if p == nil {
		c.mu.Unlock()
		return nil
	}
	p.AudioMuted = true
	m.Conversation.AppendActivity(activity(domain.ActivityMute, target, p.Username, "muted by host"))
	username := p.Username
	c.mu.Unlock()

	c.Registry.Send(targetConn, core.MustMarshal(core.InstructionEvent{
		Type:   core.EventForceMute,
		ByUser: requester,
	}))
	c.Registry.Broadcast(meetingID, "", core.MustMarshal(core.StateEvent{
		Type:     core.EventAudioToggled,
		UserID:   target,
		Username: username,
		NewState: true,
	}))
	return nil
}

// KickParticipant removes a target from the meeting. The client is asked
// to self-disconnect, but the transport registration is severed server
// side regardless, so a non-compliant client still loses the room.
func (c *Coordinator) KickParticipant(meetingID domain.MeetingID, requester, target domain.UserID, targetConn domain.ConnectionID) error {
	m, ok := c.Store.Get(meetingID)
	if !ok {
		return store.ErrMeetingNotFound
	}

	c.mu.Lock()
	if m.Host.UserID != requester {
		c.mu.Unlock()
		log.Warn().Str("module", "app.moderation").Str("meeting", string(meetingID)).Str("requester", string(requester)).Msg("kick denied: not host")
		return ErrUnauthorized
	}
	p := m.Participant(target)
	if p == nil {
		c.mu.Unlock()
		return nil
	}
	if p.ConnectionID != "" {
		targetConn = p.ConnectionID
	}
	username := p.Username
	m.RemoveParticipant(target)
	m.Conversation.AppendActivity(activity(domain.ActivityLeave, target, username, "removed by host"))
	c.mu.Unlock()

	c.Registry.Send(targetConn, core.MustMarshal(core.InstructionEvent{
		Type:   core.EventKicked,
		ByUser: requester,
	}))
	c.Registry.Unbind(targetConn)
	c.Registry.Broadcast(meetingID, targetConn, core.MustMarshal(core.PresenceEvent{
		Type:         core.EventParticipantRemoved,
		UserID:       target,
		Username:     username,
		ConnectionID: targetConn,
	}))
	log.Info().Str("module", "app.moderation").Str("meeting", string(meetingID)).Str("target", string(target)).Msg("participant kicked")
	return nil
}
