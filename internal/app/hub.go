package app

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"werewolf/internal/domain"
)

const (
	// DefaultRoomCodeLength is the default length for room codes
	DefaultRoomCodeLength = 6

	// StaleGameTimeout is how long before an inactive game is cleaned up
	StaleGameTimeout = 2 * time.Hour
)

// RoomCodeChars are characters used for room codes (no ambiguous chars)
const RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// HubConfig holds the settings every new room inherits
type HubConfig struct {
	RoomCodeLength int
	Session        SessionConfig
}

// GameHub manages all active game sessions
type GameHub struct {
	sessions       map[string]*GameSession
	mu             sync.RWMutex
	roomCodeLength int
	sessionConfig  SessionConfig
	finished       int
	logger         *slog.Logger
	done           chan struct{}
}

// NewGameHub creates a new game hub
func NewGameHub(cfg HubConfig, logger *slog.Logger) *GameHub {
	length := cfg.RoomCodeLength
	if length <= 0 {
		length = DefaultRoomCodeLength
	}
	hub := &GameHub{
		sessions:       make(map[string]*GameSession),
		roomCodeLength: length,
		sessionConfig:  cfg.Session,
		logger:         logger,
		done:           make(chan struct{}),
	}

	// Start cleanup goroutine
	go hub.cleanupLoop()

	return hub
}

// CreateGame opens a new room and returns its session
func (h *GameHub) CreateGame() (*GameSession, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Generate unique room code
	var roomCode string
	for attempts := 0; attempts < 10; attempts++ {
		roomCode = h.generateRoomCode()
		if _, exists := h.sessions[roomCode]; !exists {
			break
		}
	}

	// Check if we found a unique code
	if _, exists := h.sessions[roomCode]; exists {
		return nil, fmt.Errorf("failed to generate unique room code")
	}

	session := NewGameSession(roomCode, h.sessionConfig, h.logger)
	h.sessions[roomCode] = session

	h.logger.Info("room created", "roomCode", roomCode)

	return session, nil
}

// GetSession returns a game session by room code
func (h *GameHub) GetSession(roomCode string) (*GameSession, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	session, ok := h.sessions[strings.ToUpper(roomCode)]
	if !ok {
		return nil, domain.ErrGameNotFound
	}

	return session, nil
}

// DeleteSession removes a game session
func (h *GameHub) DeleteSession(roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if session, ok := h.sessions[roomCode]; ok {
		if session.Result() != nil {
			h.finished++
		}
		session.Close()
		delete(h.sessions, roomCode)
		h.logger.Info("room deleted", "roomCode", roomCode)
	}
}

// GetSessionCount returns the number of active sessions
func (h *GameHub) GetSessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// GetTotalPlayerCount returns the total number of players across all sessions
func (h *GameHub) GetTotalPlayerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, session := range h.sessions {
		total += session.GetPlayerCount()
	}
	return total
}

// GetFinishedCount returns how many matches ended since the hub started
func (h *GameHub) GetFinishedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := h.finished
	for _, session := range h.sessions {
		if session.Result() != nil {
			total++
		}
	}
	return total
}

// Close shuts down the hub and all sessions
func (h *GameHub) Close() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, session := range h.sessions {
		session.Close()
	}
	h.sessions = make(map[string]*GameSession)
}

// generateRoomCode generates a random room code
func (h *GameHub) generateRoomCode() string {
	b := make([]byte, h.roomCodeLength)
	if _, err := rand.Read(b); err != nil {
		h.logger.Error("room code entropy failed", "error", err)
	}

	code := make([]byte, h.roomCodeLength)
	for i := range code {
		code[i] = RoomCodeChars[int(b[i])%len(RoomCodeChars)]
	}

	return string(code)
}

// cleanupLoop periodically cleans up stale games
func (h *GameHub) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.cleanupStaleGames()
		}
	}
}

// cleanupStaleGames removes games that have been inactive for too long
func (h *GameHub) cleanupStaleGames() {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := time.Now()
	stale := make([]string, 0)

	for roomCode, session := range h.sessions {
		// Empty rooms and finished matches nobody is watching
		idle := session.GetPlayerCount() == 0 || (session.Result() != nil && session.GetClientCount() == 0)
		if idle && now.Sub(session.GetCreatedAt()) > StaleGameTimeout {
			stale = append(stale, roomCode)
		}
	}

	for _, roomCode := range stale {
		if session, ok := h.sessions[roomCode]; ok {
			if session.Result() != nil {
				h.finished++
			}
			session.Close()
			delete(h.sessions, roomCode)
			h.logger.Info("stale game cleaned up", "roomCode", roomCode)
		}
	}
}

