package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/domain"
)

// Moderation frames from non-hosts get no reply at all. The unauthorized
// branch is deliberate silence, not an omission: answering would leak how
// the host check behaves.

func (ctl *Controller) handleHostMute(connID domain.ConnectionID, data []byte) {
	p, ok := decodeModeration(data)
	if !ok {
		return
	}
	err := ctl.Coord.MuteParticipant(p.MeetingID, p.HostUserID, p.TargetUserID, p.TargetConnectionID)
	if err != nil && !errors.Is(err, app.ErrUnauthorized) {
		log.Debug().Err(err).Str("module", "signal").Str("meeting", string(p.MeetingID)).Msg("host mute dropped")
	}
}

func (ctl *Controller) handleHostKick(connID domain.ConnectionID, data []byte) {
	p, ok := decodeModeration(data)
	if !ok {
		return
	}
	err := ctl.Coord.KickParticipant(p.MeetingID, p.HostUserID, p.TargetUserID, p.TargetConnectionID)
	if err != nil && !errors.Is(err, app.ErrUnauthorized) {
		log.Debug().Err(err).Str("module", "signal").Str("meeting", string(p.MeetingID)).Msg("host kick dropped")
	}
}

func decodeModeration(data []byte) (moderationPayload, bool) {
	var p moderationPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad moderation payload")
		return p, false
	}
	if err := p.validate(); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("moderation payload rejected")
		return p, false
	}
	return p, true
}
