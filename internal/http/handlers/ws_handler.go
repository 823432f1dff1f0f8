package handlers

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ignatzorin/zipzag-catalog/internal/http/middleware"
	"github.com/ignatzorin/zipzag-catalog/internal/http/response"
	"github.com/ignatzorin/zipzag-catalog/internal/logger"
	"github.com/ignatzorin/zipzag-catalog/internal/pkg/apperror"
	"github.com/ignatzorin/zipzag-catalog/internal/ws"
)

// WSHandler отвечает за установку WebSocket соединений ленты активности.
type WSHandler struct {
	hub      *ws.Hub
	tokens   middleware.AccessTokenParser
	upgrader websocket.Upgrader
}

// NewWSHandler создаёт новый хэндлер. Браузер не даёт задать заголовок Authorization
// для WebSocket, поэтому токен передаётся в query.
func NewWSHandler(hub *ws.Hub, tokens middleware.AccessTokenParser, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub:    hub,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// Handle обслуживает GET /api/v1/ws?token=...
func (h *WSHandler) Handle(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}

	adminID, _, err := h.tokens.ParseAccess(rawToken)
	if err != nil || adminID == uuid.Nil {
		response.Error(c, apperror.ErrInvalidToken)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту при ошибке
		logger.Log.WithError(err).WithField("admin_id", adminID).Warn("ws: upgrade не удался")
		return
	}

	client := ws.NewClient(conn, h.hub, adminID)
	if !h.hub.Register(client) {
		_ = conn.Close()
		return
	}

	client.Run(c.Request.Context())
}
