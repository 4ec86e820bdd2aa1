package handler

import (
	"net/http"
	"strings"

	"coworking-reservation-server/internal/websocket"
	"coworking-reservation-server/pkg/jwt"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type WebSocketHandler struct {
	manager   *websocket.Manager
	jwtSecret string
	upgrader  ws.Upgrader
	logger    zerolog.Logger
}

func NewWebSocketHandler(manager *websocket.Manager, jwtSecret string, readBuffer, writeBuffer int, logger zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		manager:   manager,
		jwtSecret: jwtSecret,
		upgrader: ws.Upgrader{
			ReadBufferSize:  readBuffer,
			WriteBufferSize: writeBuffer,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger.With().Str("component", "websocket_handler").Logger(),
	}
}

// HandleConnection upgrades an authenticated request into a push channel for
// reservation confirmations. Browsers cannot set headers on a websocket
// handshake, so the access token may also come as ?token=.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}

	if token == "" {
		http.Error(w, "missing authorization token", http.StatusUnauthorized)
		return
	}

	claims, err := jwt.ValidateAccessToken(token, h.jwtSecret)
	if err != nil {
		h.logger.Debug().Err(err).Msg("token validation failed")
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("user_id", claims.UserID).Msg("upgrade failed")
		return
	}

	client := websocket.NewClient(uuid.New().String(), claims.UserID, conn, h.manager)
	h.manager.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
