package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"

	"werewolf/internal/domain"
	"werewolf/internal/storage/sqlite"
)

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CreateRoomResponse is the response for room creation
type CreateRoomResponse struct {
	RoomCode   string `json:"roomCode"`
	InviteLink string `json:"inviteLink"`
}

// GetRoomResponse is the response for getting room info
type GetRoomResponse struct {
	RoomCode    string `json:"roomCode"`
	PlayerCount int    `json:"playerCount"`
	Phase       string `json:"phase"`
	CanJoin     bool   `json:"canJoin"`
}

// RoomExistsResponse is the response for checking if room exists
type RoomExistsResponse struct {
	Exists bool `json:"exists"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse is the response for stats endpoint
type StatsResponse struct {
	ActiveGames   int `json:"activeGames"`
	TotalPlayers  int `json:"totalPlayers"`
	FinishedGames int `json:"finishedGames"`
}

// ResultResponse is the response for a finished match
type ResultResponse struct {
	RoomCode   string               `json:"roomCode"`
	Reason     domain.VictoryReason `json:"reason"`
	Side       domain.Side          `json:"side,omitempty"`
	Winners    []string             `json:"winners"`
	Rounds     int                  `json:"rounds"`
	FinishedAt time.Time            `json:"finishedAt"`
}

// handleCreateRoom handles POST /api/rooms
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	session, err := s.hub.CreateGame()
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "CREATION_FAILED", "Failed to create room")
		return
	}

	link := inviteLink(r, session.GetRoomCode())

	s.sendSuccess(w, &CreateRoomResponse{
		RoomCode:   session.GetRoomCode(),
		InviteLink: link,
	})
}

// handleGetRoom handles GET /api/rooms/{roomCode}
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	roomCode := r.PathValue("roomCode")
	if roomCode == "" {
		s.sendError(w, http.StatusBadRequest, "MISSING_ROOM_CODE", "Room code is required")
		return
	}

	session, err := s.hub.GetSession(roomCode)
	if err != nil {
		if errors.Is(err, domain.ErrGameNotFound) {
			s.sendError(w, http.StatusNotFound, "ROOM_NOT_FOUND", "Room not found")
		} else {
			s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		}
		return
	}

	s.sendSuccess(w, &GetRoomResponse{
		RoomCode:    session.GetRoomCode(),
		PlayerCount: session.GetPlayerCount(),
		Phase:       string(session.GetPhase()),
		CanJoin:     session.CanJoin(),
	})
}

// handleRoomQR handles GET /api/rooms/{roomCode}/qr and renders the invite
// link as a PNG
func (s *Server) handleRoomQR(w http.ResponseWriter, r *http.Request) {
	session, err := s.hub.GetSession(r.PathValue("roomCode"))
	if err != nil {
		s.sendError(w, http.StatusNotFound, "ROOM_NOT_FOUND", "Room not found")
		return
	}

	png, err := qrcode.Encode(inviteLink(r, session.GetRoomCode()), qrcode.Medium, 256)
	if err != nil {
		s.logger.Error("failed to render invite code", "error", err)
		s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// handleRoomExists handles GET /api/rooms/{roomCode}/exists
func (s *Server) handleRoomExists(w http.ResponseWriter, r *http.Request) {
	roomCode := r.PathValue("roomCode")
	if roomCode == "" {
		s.sendError(w, http.StatusBadRequest, "MISSING_ROOM_CODE", "Room code is required")
		return
	}

	_, err := s.hub.GetSession(roomCode)
	exists := err == nil

	s.sendSuccess(w, &RoomExistsResponse{
		Exists: exists,
	})
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendSuccess(w, &HealthResponse{
		Status: "ok",
	})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := &StatsResponse{
		ActiveGames:   s.hub.GetSessionCount(),
		TotalPlayers:  s.hub.GetTotalPlayerCount(),
		FinishedGames: s.hub.GetFinishedCount(),
	}
	if s.results != nil {
		if n, err := s.results.CountResults(r.Context()); err == nil {
			stats.FinishedGames = n
		} else {
			s.logger.Warn("failed to count results", "error", err)
		}
	}
	s.sendSuccess(w, stats)
}

// handleGetResult handles GET /api/results/{roomCode}
func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		s.sendError(w, http.StatusNotFound, "STORAGE_DISABLED", "Match history is not stored")
		return
	}
	roomCode := r.PathValue("roomCode")
	res, err := s.results.Result(r.Context(), strings.ToUpper(roomCode))
	if err != nil {
		if errors.Is(err, sqlite.ErrNotFound) {
			s.sendError(w, http.StatusNotFound, "RESULT_NOT_FOUND", "No finished match for this room")
		} else {
			s.logger.Error("failed to load result", "roomCode", roomCode, "error", err)
			s.sendError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		}
		return
	}

	s.sendSuccess(w, &ResultResponse{
		RoomCode:   res.GameID,
		Reason:     res.Reason,
		Side:       res.Side,
		Winners:    res.Winners,
		Rounds:     res.Rounds,
		FinishedAt: res.FinishedAt,
	})
}

// inviteLink builds the websocket join link for a room
func inviteLink(r *http.Request, roomCode string) string {
	scheme := "ws"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "wss"
	}
	return scheme + "://" + r.Host + "/ws?roomCode=" + roomCode
}

// sendSuccess sends a successful JSON response
func (s *Server) sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(&Response{
		Success: true,
		Data:    data,
	})
}

// sendError sends an error JSON response
func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(&Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}

