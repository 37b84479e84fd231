package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

// handleRelay forwards offer/answer/ice-candidate frames to their target
// connection. Content is never validated; the server is a dumb relay for
// these three kinds.
func (ctl *Controller) handleRelay(connID domain.ConnectionID, kind app.SignalKind, data []byte) {
	var p relayPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("kind", string(kind)).Msg("bad relay payload")
		return
	}
	if err := p.validate(); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("kind", string(kind)).Msg("relay payload rejected")
		return
	}

	ctl.Coord.Relay(kind, connID, p.TargetConnectionID, core.SignalEvent{
		SDP:       p.SDP,
		Candidate: p.Candidate,
	})
}
