package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

func (ctl *Controller) writePump(ctx context.Context, c *WsConn) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Warn().Err(err).Str("module", "signal").Msg("writePump ping failed")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, connID domain.ConnectionID, c *WsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(connID)).Msg("readPump closing")
		ctl.Coord.Disconnect(connID)
		c.Close()
	}()

	// A missed pong past the ping period means the client is gone.
	wait := ctl.pingPeriod + 10*time.Second
	_ = c.conn.SetReadDeadline(time.Now().Add(wait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(connID)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", string(connID)).Msg("readPump read error")
				return
			}
			ctl.dispatch(ctx, connID, c, data)
		}
	}
}

// dispatch decodes the envelope and routes to the per-event handler.
// Malformed or unknown frames are dropped at this boundary; nothing
// partial reaches the coordinator.
func (ctl *Controller) dispatch(ctx context.Context, connID domain.ConnectionID, c *WsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}

	switch env.Type {
	case "join":
		ctl.handleJoin(ctx, connID, c, data)
	case "leave":
		ctl.handleLeave(connID, c, data)
	case "ping":
		ctl.handlePing(c)
	case "offer":
		ctl.handleRelay(connID, app.SignalOffer, data)
	case "answer":
		ctl.handleRelay(connID, app.SignalAnswer, data)
	case "ice-candidate":
		ctl.handleRelay(connID, app.SignalCandidate, data)
	case "chat-message":
		ctl.handleChatMessage(connID, c, data)
	case "file-share":
		ctl.handleFileShare(connID, c, data)
	case "create-poll":
		ctl.handleCreatePoll(connID, c, data)
	case "vote-poll":
		ctl.handleVotePoll(connID, c, data)
	case "transcript":
		ctl.handleTranscript(connID, data)
	case "toggle-audio":
		ctl.handleToggle(connID, data, app.FlagAudio)
	case "toggle-video":
		ctl.handleToggle(connID, data, app.FlagVideo)
	case "raise-hand":
		ctl.handleToggle(connID, data, app.FlagHand)
	case "screen-share":
		ctl.handleToggle(connID, data, app.FlagScreen)
	case "host-mute-participant":
		ctl.handleHostMute(connID, data)
	case "host-kick-participant":
		ctl.handleHostKick(connID, data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (ctl *Controller) sendJSON(c *WsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *Controller) sendError(c *WsConn, msg string) {
	ctl.sendJSON(c, core.ErrorEvent{Type: core.EventError, Error: msg})
}

func (ctl *Controller) handlePing(c *WsConn) {
	ctl.sendJSON(c, struct {
		Type string `json:"type"`
	}{Type: core.EventPong})
}
