package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"werewolf/internal/app"
	"werewolf/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client represents a WebSocket client connection
type Client struct {
	conn     *websocket.Conn
	session  *app.GameSession
	playerID string
	send     chan []byte
	done     chan struct{}
	logger   *slog.Logger
	mu       sync.Mutex
	closed   bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, session *app.GameSession, playerID string, logger *slog.Logger) *Client {
	return &Client{
		conn:     conn,
		session:  session,
		playerID: playerID,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// GetPlayerID returns the player ID for this client
func (c *Client) GetPlayerID() string {
	return c.playerID
}

// Send implements app.ClientConnection interface. Session values are wrapped
// in the matching server message.
func (c *Client) Send(message interface{}) error {
	switch m := message.(type) {
	case *domain.GameEvent:
		message = NewServerMessage(MsgEvent, m)
	case *app.Prompt:
		message = NewServerMessage(MsgPrompt, m)
	case *app.Notice:
		message = NewServerMessage(MsgNotice, m)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer full, message dropped
		c.logger.Warn("send buffer full, message dropped", "playerID", c.playerID)
		return nil
	}
}

// Close implements app.ClientConnection interface
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.session.UnregisterClient(c.playerID)
		c.session.DisconnectPlayer(c.playerID)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(ctx, message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(ctx context.Context, data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	switch msg.Type {
	case MsgJoinLobby:
		c.handleJoinLobby(msg.Payload)
	case MsgStartGame:
		c.handleStartGame(msg.Payload)
	case MsgAnswerPrompt:
		c.handleAnswerPrompt(msg.Payload)
	case MsgSay:
		c.handleSay(ctx, msg.Payload)
	case MsgPing:
		c.sendPong()
	default:
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
	}
}

// handleJoinLobby handles a join_lobby message
func (c *Client) handleJoinLobby(raw json.RawMessage) {
	var payload JoinLobbyPayload
	if err := decode(raw, &payload); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}
	if payload.Nickname == "" {
		c.sendError(ErrCodeInvalidMessage, "Nickname is required")
		return
	}

	if _, err := c.session.AddPlayer(c.playerID, payload.Nickname); err != nil {
		c.sendDomainError(err)
		return
	}

	c.sendConnected()
}

// handleStartGame handles a start_game message
func (c *Client) handleStartGame(raw json.RawMessage) {
	var payload StartGamePayload
	if err := decode(raw, &payload); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid payload")
		return
	}
	deck := make([]domain.Role, 0, len(payload.Roles))
	for _, r := range payload.Roles {
		deck = append(deck, domain.Role(r))
	}

	if err := c.session.StartGame(c.playerID, deck); err != nil {
		c.sendDomainError(err)
	}
}

// handleAnswerPrompt handles an answer_prompt message
func (c *Client) handleAnswerPrompt(raw json.RawMessage) {
	var payload AnswerPromptPayload
	if err := decode(raw, &payload); err != nil || payload.PromptID == "" {
		c.sendError(ErrCodeInvalidMessage, "Prompt ID is required")
		return
	}

	if err := c.session.Answer(c.playerID, payload.PromptID, payload.Selected); err != nil {
		c.sendDomainError(err)
	}
}

// handleSay handles a say message
func (c *Client) handleSay(ctx context.Context, raw json.RawMessage) {
	var payload SayPayload
	if err := decode(raw, &payload); err != nil || payload.Text == "" {
		c.sendError(ErrCodeInvalidMessage, "Text is required")
		return
	}

	if err := c.session.Say(ctx, c.playerID, payload.Text); err != nil {
		c.sendDomainError(err)
	}
}

// sendConnected sends the connected message to the client, followed by any
// prompt still waiting for this player
func (c *Client) sendConnected() {
	payload := &ConnectedPayload{
		PlayerID:  c.playerID,
		GameID:    c.session.GetRoomCode(),
		GameState: c.session.GetGameState(c.playerID),
	}

	c.Send(NewServerMessage(MsgConnected, payload))
	for _, p := range c.session.PendingPrompts(c.playerID) {
		c.Send(&p)
	}
}

// sendDomainError maps a session error onto an error message
func (c *Client) sendDomainError(err error) {
	code, message := errorCode(err)
	if code == ErrCodeInternalError {
		c.logger.Warn("request failed", "playerID", c.playerID, "error", err)
	}
	c.sendError(code, message)
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	payload := &ErrorPayload{
		Code:    code,
		Message: message,
	}

	c.Send(NewServerMessage(MsgError, payload))
}

// sendPong sends a pong message in response to ping
func (c *Client) sendPong() {
	c.Send(NewServerMessage(MsgPong, nil))
}

// decode unmarshals an optional payload
func decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// errorCode maps domain errors to client error codes and messages
func errorCode(err error) (string, string) {
	switch {
	case errors.Is(err, domain.ErrGameFull):
		return ErrCodeGameFull, "Game is full"
	case errors.Is(err, domain.ErrGameAlreadyStarted):
		return ErrCodeInvalidAction, "Game has already started"
	case errors.Is(err, domain.ErrEmptyNickname):
		return ErrCodeInvalidMessage, "Nickname is required"
	case errors.Is(err, domain.ErrNotHost):
		return ErrCodeNotHost, "Only the host can start the game"
	case errors.Is(err, domain.ErrNotEnoughPlayers):
		return ErrCodeInvalidAction, "Not enough players to start"
	case errors.Is(err, domain.ErrRosterMismatch), errors.Is(err, domain.ErrUnknownRole):
		return ErrCodeInvalidDeck, err.Error()
	case errors.Is(err, domain.ErrPromptNotFound):
		return ErrCodePromptExpired, "That prompt is no longer open"
	case errors.Is(err, domain.ErrNoRelay):
		return ErrCodeNoRelay, "You have nobody to talk to right now"
	case errors.Is(err, domain.ErrInvalidPhase):
		return ErrCodeInvalidAction, "Not allowed right now"
	case errors.Is(err, domain.ErrGameNotFound):
		return ErrCodeGameNotFound, "Game not found"
	default:
		return ErrCodeInternalError, err.Error()
	}
}
