package handler

import (
	"ai-reportgen-be/internal/pkg/logger"
	internalWS "ai-reportgen-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// RunStreamHandler upgrades websocket connections that watch a
// conversation's run progress.
type RunStreamHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewRunStreamHandler(hub *internalWS.Hub, log logger.ILogger) *RunStreamHandler {
	return &RunStreamHandler{
		hub:    hub,
		logger: log,
	}
}

func (h *RunStreamHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/runs/:conversationId", h.ServeWs)
}

// ServeWs handles websocket requests from the peer.
func (h *RunStreamHandler) ServeWs(c *fiber.Ctx) error {
	conversationID, err := uuid.Parse(c.Params("conversationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation id"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("RunStreamHandler", "Starting WebSocket session", map[string]interface{}{"conversation_id": conversationID})
			internalWS.ServeWs(h.hub, conn, conversationID)
			h.logger.Info("RunStreamHandler", "WebSocket session ended", map[string]interface{}{"conversation_id": conversationID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}
