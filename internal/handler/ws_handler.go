package handler

import (
	"github.com/intervu-ai/intervu-server/internal/interview"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WSHandler struct {
	hub *interview.Hub
	log *zap.Logger
}

func NewWSHandler(hub *interview.Hub, log *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, log: log}
}

// Upgrade rejects plain HTTP requests on the events endpoint.
func (h *WSHandler) Upgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// Events streams controller events for one session over a websocket. The
// stream starts with a snapshot-equivalent phase event and ends when the
// session completes or the client disconnects.
func (h *WSHandler) Events() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		defer conn.Close()

		sessionID, err := uuid.Parse(conn.Params("id"))
		if err != nil {
			_ = conn.WriteJSON(fiber.Map{"error": "invalid session id"})
			return
		}

		controller, ok := h.hub.Get(sessionID)
		if !ok {
			_ = conn.WriteJSON(fiber.Map{"error": "no live session; call the state endpoint first"})
			return
		}

		h.log.Debug("event stream opened", zap.String("session_id", sessionID.String()))

		events, unsubscribe := controller.Subscribe()
		defer unsubscribe()

		// Reader goroutine: its only job is noticing the peer going away.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		if err := conn.WriteJSON(controller.Snapshot()); err != nil {
			return
		}

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := conn.WriteJSON(event); err != nil {
					return
				}
				if event.Type == interview.EventSessionCompleted {
					return
				}
			case <-closed:
				return
			case <-controller.Done():
				// Drain whatever was emitted during completion, then stop.
				for {
					select {
					case event, ok := <-events:
						if !ok {
							return
						}
						if err := conn.WriteJSON(event); err != nil {
							return
						}
					default:
						return
					}
				}
			}
		}
	})
}
