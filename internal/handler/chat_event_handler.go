package handler

import (
	"hybrid-rag-be/internal/pkg/logger"
	internalWS "hybrid-rag-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ChatEventHandler upgrades websocket connections onto the event hub so
// clients can watch a session's lifecycle events live.
type ChatEventHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewChatEventHandler(hub *internalWS.Hub, log logger.ILogger) *ChatEventHandler {
	return &ChatEventHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs handles websocket requests from the peer. The session id comes
// from the path; connecting to a session that has no transcript yet is
// allowed, the feed simply stays quiet until the first query.
func (h *ChatEventHandler) ServeWs(c *fiber.Ctx) error {
	sessionId, err := uuid.Parse(c.Params("sessionId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session ID"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("ChatEventHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionId})
			internalWS.ServeWs(h.hub, conn, sessionId.String())
			h.logger.Info("ChatEventHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionId})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the websocket endpoint.
func (h *ChatEventHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/chat/:sessionId", h.ServeWs)
}
