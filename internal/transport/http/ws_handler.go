package http

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
)

const (
	msgActivateQuestion   = "activateQuestion"
	msgRequestLeaderboard = "requestLeaderboard"
	msgError              = "error"
)

type WSHandler struct {
	service  *app.QuizService
	hub      *Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, hub *Hub) *WSHandler {
	return &WSHandler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type activatePayload struct {
	RoundNumber   int `json:"roundNumber"`
	QuestionIndex int `json:"questionIndex"`
}

type leaderboardPayload struct {
	Scope   string `json:"scope"`
	ScopeID string `json:"scopeId"`
	Page    int    `json:"page"`
}

// ServeWS upgrades the request, joins the client to the hub and serves its
// inbound requests until the connection drops.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	c := h.hub.register(conn)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writePump(c)
	}()
	defer func() {
		h.hub.unregister(c)
		<-writerDone
	}()

	h.readPump(r.Context(), c)
}

func (h *WSHandler) readPump(ctx context.Context, c *client) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var inbound inboundMessage
		if err := c.conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("client_id", c.id).Msg("ws read error")
			}
			return
		}
		h.handle(ctx, c, inbound)
	}
}

// handle serves one inbound message. A panic is reported to the sender as an
// internal error and the connection stays open.
func (h *WSHandler) handle(ctx context.Context, c *client, inbound inboundMessage) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Str("client_id", c.id).
				Str("message", inbound.Type).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("ws handler panicked")
			h.reject(c, codeInternal, http.StatusText(http.StatusInternalServerError))
		}
	}()

	switch inbound.Type {
	case msgActivateQuestion:
		var payload activatePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.reject(c, codeValidation, "invalid activateQuestion payload")
			return
		}
		if _, err := h.service.ActivateQuestion(ctx, payload.RoundNumber, payload.QuestionIndex); err != nil {
			h.fail(c, err)
		}
	case msgRequestLeaderboard:
		var payload leaderboardPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			h.reject(c, codeValidation, "invalid requestLeaderboard payload")
			return
		}
		scope, err := domain.ParseScope(payload.Scope)
		if err != nil {
			h.fail(c, err)
			return
		}
		if _, err := h.service.PublishLeaderboard(ctx, scope, payload.ScopeID, payload.Page); err != nil {
			h.fail(c, err)
		}
	default:
		h.reject(c, codeValidation, "unsupported message type")
	}
}

// writePump is the only writer on the connection.
func (h *WSHandler) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("client_id", c.id).Msg("ws write error")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) fail(c *client, err error) {
	if status, _ := classify(err); status == http.StatusInternalServerError {
		log.Error().Err(err).Str("client_id", c.id).Msg("ws request failed")
	}
	h.hub.sendTo(c, domain.Event{Type: msgError, Payload: errorFor(err)})
}

func (h *WSHandler) reject(c *client, code, message string) {
	h.hub.sendTo(c, domain.Event{Type: msgError, Payload: errorPayload{Code: code, Message: message}})
}
