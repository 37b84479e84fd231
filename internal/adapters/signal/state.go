package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/domain"
)

func (ctl *Controller) handleToggle(connID domain.ConnectionID, data []byte, flag app.StateFlag) {
	var p togglePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad toggle payload")
		return
	}
	if err := p.validate(); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("toggle payload rejected")
		return
	}
	if err := ctl.Coord.ToggleState(p.MeetingID, p.UserID, flag, p.NewState); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("meeting", string(p.MeetingID)).Msg("toggle dropped")
	}
}
