package ws

import (
	"encoding/json"
	"time"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgJoinLobby    MessageType = "join_lobby"
	MsgStartGame    MessageType = "start_game"
	MsgAnswerPrompt MessageType = "answer_prompt"
	MsgSay          MessageType = "say"
	MsgPing         MessageType = "ping"
)

// Server → Client message types
const (
	MsgConnected MessageType = "connected"
	MsgError     MessageType = "error"
	MsgPrompt    MessageType = "prompt"
	MsgNotice    MessageType = "notice"
	MsgEvent     MessageType = "event"
	MsgPong      MessageType = "pong"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// Client message payloads

// JoinLobbyPayload is the payload for join_lobby message
type JoinLobbyPayload struct {
	Nickname string `json:"nickname"`
}

// StartGamePayload optionally overrides the default deck
type StartGamePayload struct {
	Roles []string `json:"roles,omitempty"`
}

// AnswerPromptPayload is the payload for answer_prompt message
type AnswerPromptPayload struct {
	PromptID string   `json:"promptId"`
	Selected []string `json:"selected"`
}

// SayPayload is the payload for say message
type SayPayload struct {
	Text string `json:"text"`
}

// Server message payloads

// ConnectedPayload is the payload for connected message
type ConnectedPayload struct {
	PlayerID  string                 `json:"playerId"`
	GameID    string                 `json:"gameId"`
	GameState map[string]interface{} `json:"gameState"`
}

// ErrorPayload is the payload for error message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeInvalidMessage = "INVALID_MESSAGE"
	ErrCodeGameNotFound   = "GAME_NOT_FOUND"
	ErrCodeGameFull       = "GAME_FULL"
	ErrCodeInvalidAction  = "INVALID_ACTION"
	ErrCodeNotHost        = "NOT_HOST"
	ErrCodeInvalidDeck    = "INVALID_DECK"
	ErrCodePromptExpired  = "PROMPT_EXPIRED"
	ErrCodeNoRelay        = "NO_RELAY"
	ErrCodeInternalError  = "INTERNAL_ERROR"
)
