// Package signal is the websocket relay transport: one connection per
// browser tab, all real-time event kinds multiplexed over it.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

type Controller struct {
	Coord      *app.Coordinator
	Limiter    *JoinRateLimiter
	readLimit  int64
	pingPeriod time.Duration
}

func NewController(coord *app.Coordinator, readLimit int64, pingPeriod time.Duration) *Controller {
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	return &Controller{
		Coord:      coord,
		Limiter:    NewJoinRateLimiter(10, 10*time.Second),
		readLimit:  readLimit,
		pingPeriod: pingPeriod,
	}
}

// WsConn wraps a websocket with a buffered outbound channel. TrySend never
// blocks; a full channel is backpressure and the frame is dropped.
type WsConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and runs the connection until it drops.
// Each tab gets a fresh connection id; identity (userId) arrives with the
// join event.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")
	connID := domain.ConnectionID(uuid.NewString())
	log.Info().Str("module", "signal").Str("token", token).Str("conn", string(connID)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}

	if ctl.readLimit > 0 {
		ws.SetReadLimit(ctl.readLimit)
	}

	conn := &WsConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	ctl.Coord.Registry.Bind(connID, conn, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, connID, conn)
}
