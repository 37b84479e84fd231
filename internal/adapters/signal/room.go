package signal

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/store"
)

func (ctl *Controller) handleJoin(ctx context.Context, connID domain.ConnectionID, c *WsConn, data []byte) {
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if err := p.validate(); err != nil {
		ctl.sendError(c, err.Error())
		return
	}
	if !ctl.Limiter.Allow(p.UserID) {
		log.Warn().Str("module", "signal").Str("user", string(p.UserID)).Msg("join rate limited")
		ctl.sendError(c, "too many join attempts")
		return
	}

	log.Info().Str("module", "signal").Str("conn", string(connID)).Str("meeting", string(p.MeetingID)).Str("user", string(p.UserID)).Msg("join")
	if err := ctl.Coord.Join(ctx, p.MeetingID, p.UserID, p.Username, connID); err != nil {
		if errors.Is(err, store.ErrMeetingNotFound) {
			ctl.sendError(c, "meeting not found")
			return
		}
		log.Error().Err(err).Str("module", "signal").Str("meeting", string(p.MeetingID)).Msg("join failed")
		ctl.sendError(c, "join failed")
	}
}

func (ctl *Controller) handleLeave(connID domain.ConnectionID, c *WsConn, data []byte) {
	var p leavePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad leave payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if err := p.validate(); err != nil {
		ctl.sendError(c, err.Error())
		return
	}

	log.Info().Str("module", "signal").Str("conn", string(connID)).Str("meeting", string(p.MeetingID)).Msg("leave")
	_ = ctl.Coord.Leave(p.MeetingID, p.UserID)
	ctl.sendJSON(c, map[string]any{"type": "left"})
}
