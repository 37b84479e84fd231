package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/domain"
)

func (ctl *Controller) handleChatMessage(connID domain.ConnectionID, c *WsConn, data []byte) {
	var p chatPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad chat payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if err := p.validate(); err != nil {
		ctl.sendError(c, err.Error())
		return
	}
	if _, err := ctl.Coord.PostMessage(p.MeetingID, p.UserID, p.Username, p.Text); err != nil {
		ctl.sendError(c, err.Error())
	}
}

func (ctl *Controller) handleFileShare(connID domain.ConnectionID, c *WsConn, data []byte) {
	var p filePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad file payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if err := p.validate(); err != nil {
		ctl.sendError(c, err.Error())
		return
	}
	if _, err := ctl.Coord.ShareFile(p.MeetingID, p.UserID, p.Username, p.File); err != nil {
		ctl.sendError(c, err.Error())
	}
}

func (ctl *Controller) handleCreatePoll(connID domain.ConnectionID, c *WsConn, data []byte) {
	var p createPollPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad poll payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if err := p.validate(); err != nil {
		ctl.sendError(c, err.Error())
		return
	}
	if _, err := ctl.Coord.CreatePoll(p.MeetingID, p.UserID, p.Username, p.Question, p.Options); err != nil {
		ctl.sendError(c, err.Error())
	}
}

func (ctl *Controller) handleVotePoll(connID domain.ConnectionID, c *WsConn, data []byte) {
	var p votePollPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad vote payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	if err := p.validate(); err != nil {
		ctl.sendError(c, err.Error())
		return
	}
	if err := ctl.Coord.VotePoll(p.MeetingID, p.PollID, p.UserID, p.OptionIndex); err != nil {
		ctl.sendError(c, err.Error())
	}
}
