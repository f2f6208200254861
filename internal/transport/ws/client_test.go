package ws

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"werewolf/internal/app"
	"werewolf/internal/domain"
)

type received struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type testConn struct {
	t       *testing.T
	conn    *websocket.Conn
	pending []received
}

func dial(t *testing.T, srv *httptest.Server, query string) *testConn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &testConn{t: t, conn: conn}
}

func (c *testConn) send(msgType MessageType, payload interface{}) {
	c.t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		c.t.Fatalf("marshal payload: %v", err)
	}
	if err := c.conn.WriteJSON(ClientMessage{Type: msgType, Payload: raw}); err != nil {
		c.t.Fatalf("write: %v", err)
	}
}

// next returns the oldest message of the given type. Other messages stay
// buffered. The write pump may batch several messages into one frame.
func (c *testConn) next(want MessageType) received {
	c.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		for i, m := range c.pending {
			if m.Type == want {
				c.pending = append(c.pending[:i], c.pending[i+1:]...)
				return m
			}
		}
		c.conn.SetReadDeadline(deadline)
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.t.Fatalf("waiting for %s: %v", want, err)
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		for {
			var m received
			if err := dec.Decode(&m); err != nil {
				if !errors.Is(err, io.EOF) {
					c.t.Fatalf("decode frame: %v", err)
				}
				break
			}
			c.pending = append(c.pending, m)
		}
	}
}

func newTestRoom(t *testing.T) (*httptest.Server, *app.GameSession) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := app.NewGameHub(app.HubConfig{
		Session: app.SessionConfig{Lobby: domain.LobbySettings{MinPlayers: 2, MaxPlayers: 4}},
	}, logger)
	t.Cleanup(hub.Close)
	session, err := hub.CreateGame()
	if err != nil {
		t.Fatalf("CreateGame() error = %v", err)
	}
	srv := httptest.NewServer(NewHandler(hub, logger, true))
	t.Cleanup(srv.Close)
	return srv, session
}

func TestJoinLobby(t *testing.T) {
	srv, session := newTestRoom(t)
	c := dial(t, srv, "roomCode="+session.GetRoomCode())

	c.send(MsgJoinLobby, JoinLobbyPayload{Nickname: "Ann"})
	m := c.next(MsgConnected)

	var payload ConnectedPayload
	if err := json.Unmarshal(m.Payload, &payload); err != nil {
		t.Fatalf("decode connected: %v", err)
	}
	if payload.PlayerID == "" || payload.GameID != session.GetRoomCode() {
		t.Fatalf("connected = %+v", payload)
	}
	if !session.IsMember(payload.PlayerID) {
		t.Fatal("joined player has no seat")
	}
	c.next(MsgEvent)
}

func TestClientErrors(t *testing.T) {
	srv, session := newTestRoom(t)
	c := dial(t, srv, "roomCode="+session.GetRoomCode())

	tests := []struct {
		name    string
		msgType MessageType
		payload interface{}
		code    string
	}{
		{"unknown type", MessageType("dance"), nil, ErrCodeInvalidMessage},
		{"blank nickname", MsgJoinLobby, JoinLobbyPayload{}, ErrCodeInvalidMessage},
		{"stale prompt", MsgAnswerPrompt, AnswerPromptPayload{PromptID: "p1"}, ErrCodePromptExpired},
		{"chat before the match", MsgSay, SayPayload{Text: "hi"}, ErrCodeInvalidAction},
		{"start without a seat", MsgStartGame, StartGamePayload{}, ErrCodeNotHost},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.send(tt.msgType, tt.payload)
			var payload ErrorPayload
			if err := json.Unmarshal(c.next(MsgError).Payload, &payload); err != nil {
				t.Fatalf("decode error: %v", err)
			}
			if payload.Code != tt.code {
				t.Fatalf("code = %s, want %s", payload.Code, tt.code)
			}
		})
	}
}

func TestPingPong(t *testing.T) {
	srv, session := newTestRoom(t)
	c := dial(t, srv, "roomCode="+session.GetRoomCode())
	c.send(MsgPing, nil)
	c.next(MsgPong)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{domain.ErrGameFull, ErrCodeGameFull},
		{fmt.Errorf("deal: %w", domain.ErrRosterMismatch), ErrCodeInvalidDeck},
		{domain.ErrNoRelay, ErrCodeNoRelay},
		{errors.New("boom"), ErrCodeInternalError},
	}
	for _, tt := range tests {
		if code, _ := errorCode(tt.err); code != tt.code {
			t.Errorf("errorCode(%v) = %s, want %s", tt.err, code, tt.code)
		}
	}
}
