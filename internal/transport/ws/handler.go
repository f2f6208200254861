package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"werewolf/internal/app"
)

// Handler handles WebSocket connections
type Handler struct {
	hub      *app.GameHub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new WebSocket handler. Unless anyOrigin is set, the
// upgrader only accepts same-origin requests.
func NewHandler(hub *app.GameHub, logger *slog.Logger, anyOrigin bool) *Handler {
	h := &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
	}
	if anyOrigin {
		h.upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}
	return h
}

// ServeHTTP handles WebSocket upgrade requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Get room code from query params
	roomCode := r.URL.Query().Get("roomCode")
	if roomCode == "" {
		http.Error(w, "roomCode is required", http.StatusBadRequest)
		return
	}

	// Get the game session
	session, err := h.hub.GetSession(roomCode)
	if err != nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}

	// Known seats reconnect, everyone else gets a fresh player ID
	playerID := r.URL.Query().Get("playerId")
	isReconnect := playerID != "" && session.IsMember(playerID)
	if !isReconnect {
		playerID = uuid.New().String()
	}

	// Check if can join (for new players)
	if !isReconnect && !session.CanJoin() {
		http.Error(w, "Cannot join this game", http.StatusForbidden)
		return
	}

	// Upgrade connection to WebSocket
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	// Create client
	client := NewClient(conn, session, playerID, h.logger)

	// Register client with session
	session.RegisterClient(playerID, client)

	h.logger.Info("websocket connected",
		"roomCode", session.GetRoomCode(),
		"playerID", playerID,
		"isReconnect", isReconnect,
	)

	// Handle reconnection
	if isReconnect {
		if err := session.ReconnectPlayer(playerID); err != nil {
			h.logger.Debug("reconnect failed", "playerID", playerID, "error", err)
		} else {
			// Send current game state and open prompts
			client.sendConnected()
		}
	}

	// Start the client
	client.Run()
}

