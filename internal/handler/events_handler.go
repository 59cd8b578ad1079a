package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/evaluation-backend/internal/apperr"
	"github.com/stemsi/evaluation-backend/internal/config"
	"github.com/stemsi/evaluation-backend/internal/event"
	"github.com/stemsi/evaluation-backend/internal/model"
	"github.com/stemsi/evaluation-backend/internal/response"
	ws "github.com/stemsi/evaluation-backend/internal/websocket"
)

// Subscriber is satisfied by *redis.Client.
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		HandshakeTimeout: 10 * time.Second,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if allowed == "*" || strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// EventsHandler relays change events from Redis Pub/Sub to WebSocket clients.
type EventsHandler struct {
	rdb      Subscriber
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewEventsHandler creates an EventsHandler. rdb may be nil, which disables the feed.
func NewEventsHandler(rdb Subscriber, log zerolog.Logger, allowedOrigins []string) *EventsHandler {
	return &EventsHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "events_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// Stream godoc
// WS /api/events?entity=subject|competency
func (h *EventsHandler) Stream(c *gin.Context) {
	if h.rdb == nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrServiceUnavailable, "Change feed is disabled")
		return
	}

	entity := c.Query("entity")
	if entity != "" && entity != model.EntitySubject && entity != model.EntityCompetency {
		_ = c.Error(apperr.Validation("Entity must be one of: subject, competency", "entity"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	channels := event.Channels(config.EventChannel, entity)
	pubsub := h.rdb.Subscribe(ctx, channels...)
	defer pubsub.Close()

	// Wait for the subscription confirmation before telling the client it is live.
	if _, err := pubsub.Receive(ctx); err != nil {
		h.log.Error().Err(err).Strs("channels", channels).Msg("Subscribe failed")
		_ = ws.WriteError(conn, "change feed unavailable")
		return
	}

	wsLog := h.log.With().Str("remote", c.ClientIP()).Strs("channels", channels).Logger()
	wsLog.Info().Msg("Client attached to change feed")

	if err := ws.WriteTyped(conn, ws.ReadyFrame{Event: ws.EventReady, Channels: channels}); err != nil {
		return
	}

	pongs := make(chan struct{}, 1)
	go h.readLoop(conn, cancel, pongs, wsLog)

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			wsLog.Info().Msg("Client detached from change feed")
			return

		case msg, ok := <-messages:
			if !ok {
				return
			}
			if err := ws.WriteChange(conn, msg.Payload); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				return
			}

		case <-pongs:
			if err := ws.WriteTyped(conn, ws.PongFrame{Event: ws.EventPong}); err != nil {
				return
			}

		case <-ticker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		}
	}
}

// readLoop owns all reads. Writes stay on the Stream goroutine, so replies
// to client pings are handed over through pongs.
func (h *EventsHandler) readLoop(conn *websocket.Conn, cancel context.CancelFunc, pongs chan<- struct{}, log zerolog.Logger) {
	defer cancel()
	ws.KeepAlive(conn)

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}

		if msg.Action == ws.ActionPing {
			select {
			case pongs <- struct{}{}:
			default:
			}
		}
	}
}
