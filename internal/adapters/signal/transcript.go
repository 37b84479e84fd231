package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/domain"
)

func (ctl *Controller) handleTranscript(connID domain.ConnectionID, data []byte) {
	var p transcriptPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad transcript payload")
		return
	}
	if err := p.validate(); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("transcript payload rejected")
		return
	}
	if err := ctl.Coord.PostTranscript(p.MeetingID, p.UserID, p.Username, p.Text, p.IsFinal, connID); err != nil {
		log.Debug().Err(err).Str("module", "signal").Str("meeting", string(p.MeetingID)).Msg("transcript dropped")
	}
}
