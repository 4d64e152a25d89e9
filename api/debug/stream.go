package debug

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kasuganosora/enemyai/cache"
	"github.com/kasuganosora/enemyai/game/notify"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// helloMessage is the first frame of every stream. Events published before
// it was sent are not delivered.
const helloMessage = `{"type":"subscribed"}`

var upgrader = websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096}

// WithEvents exposes the agent event channel under GET /events.
func (h *Handler) WithEvents(ps cache.PubSub, channel string) *Handler {
	if channel == "" {
		channel = notify.Channel
	}
	h.events, h.eventChannel = ps, channel
	return h
}

type eventFilter struct {
	agent string
	types map[string]bool
}

func parseFilter(c *gin.Context) eventFilter {
	f := eventFilter{agent: c.Query("agent")}
	if raw := c.Query("types"); raw != "" {
		f.types = make(map[string]bool)
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.types[t] = true
			}
		}
	}
	return f
}

func (f eventFilter) match(env notify.Envelope) bool {
	if f.agent != "" && env.AgentID != f.agent {
		return false
	}
	return f.types == nil || f.types[env.Type]
}

// Events streams agent event envelopes over a websocket.
// GET /events?agent=<id>&types=state_changed,adapted
func (h *Handler) Events(c *gin.Context) {
	if h.events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream disabled"})
		return
	}
	filter := parseFilter(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Debug("event stream upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, unsub, err := h.events.Subscribe(ctx, h.eventChannel)
	if err != nil {
		h.logger.Error("event stream subscribe", zap.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"),
			time.Now().Add(writeWait))
		return
	}
	defer unsub()

	// Client frames are ignored; reading detects the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(payload string) error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(websocket.TextMessage, []byte(payload))
	}
	if err := write(helloMessage); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			env, err := notify.Decode(msg.Payload)
			if err != nil {
				h.logger.Warn("undecodable agent event", zap.Error(err))
				continue
			}
			if !filter.match(env) {
				continue
			}
			if err := write(msg.Payload); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
