package domain

import (
	"sort"
	"strings"
	"time"
)

// ConnectionStatus represents a player's connection state
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "CONNECTED"
	StatusDisconnected ConnectionStatus = "DISCONNECTED"
)

// LobbySettings holds configurable lobby parameters
type LobbySettings struct {
	MinPlayers int `json:"minPlayers"`
	MaxPlayers int `json:"maxPlayers"`
}

// DefaultLobbySettings returns the default lobby settings
func DefaultLobbySettings() LobbySettings {
	return LobbySettings{
		MinPlayers: 5,
		MaxPlayers: 24,
	}
}

// LobbyMember is someone seated in a room before and during a match.
type LobbyMember struct {
	ID       string           `json:"id"`
	Nickname string           `json:"nickname"`
	Status   ConnectionStatus `json:"status"`
	JoinedAt time.Time        `json:"joinedAt"`
}

// Lobby is the room that players gather in before a match starts.
type Lobby struct {
	ID        string                  `json:"id"`
	HostID    string                  `json:"hostId"`
	Members   map[string]*LobbyMember `json:"members"`
	Started   bool                    `json:"started"`
	Settings  LobbySettings           `json:"settings"`
	CreatedAt time.Time               `json:"createdAt"`
}

// NewLobby creates a new lobby with the given ID
func NewLobby(id string, settings LobbySettings) *Lobby {
	return &Lobby{
		ID:        id,
		Members:   make(map[string]*LobbyMember),
		Settings:  settings,
		CreatedAt: time.Now(),
	}
}

// AddMember adds a player to the lobby
func (l *Lobby) AddMember(playerID, nickname string) (*LobbyMember, error) {
	if l.Started {
		return nil, ErrGameAlreadyStarted
	}

	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, ErrEmptyNickname
	}

	if existing, ok := l.Members[playerID]; ok {
		existing.Nickname = nickname
		existing.Status = StatusConnected
		return existing, nil
	}

	if len(l.Members) >= l.Settings.MaxPlayers {
		return nil, ErrGameFull
	}

	member := &LobbyMember{
		ID:       playerID,
		Nickname: nickname,
		Status:   StatusConnected,
		JoinedAt: time.Now(),
	}
	l.Members[playerID] = member

	// First player becomes the host
	if l.HostID == "" {
		l.HostID = playerID
	}

	return member, nil
}

// RemoveMember removes a player from the lobby
func (l *Lobby) RemoveMember(playerID string) error {
	if _, ok := l.Members[playerID]; !ok {
		return ErrPlayerNotFound
	}
	if l.Started {
		return ErrGameAlreadyStarted
	}

	delete(l.Members, playerID)

	// If host left, the earliest remaining member takes over
	if l.HostID == playerID {
		l.HostID = ""
		if ordered := l.Ordered(); len(ordered) > 0 {
			l.HostID = ordered[0].ID
		}
	}

	return nil
}

// SetStatus marks a member connected or disconnected
func (l *Lobby) SetStatus(playerID string, status ConnectionStatus) error {
	member, ok := l.Members[playerID]
	if !ok {
		return ErrPlayerNotFound
	}
	member.Status = status
	return nil
}

// Ordered returns members in join order, which is also seat order.
func (l *Lobby) Ordered() []*LobbyMember {
	out := make([]*LobbyMember, 0, len(l.Members))
	for _, m := range l.Members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].JoinedAt.Equal(out[j].JoinedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out
}

// IsHost checks if the given player is the host
func (l *Lobby) IsHost(playerID string) bool {
	return l.HostID == playerID
}

// CanStart checks if the match can be started
func (l *Lobby) CanStart() bool {
	return !l.Started && len(l.Members) >= l.Settings.MinPlayers
}

// GetLobbyState returns the current lobby state for broadcasting
func (l *Lobby) GetLobbyState() *LobbyUpdatePayload {
	members := make([]LobbyMember, 0, len(l.Members))
	for _, m := range l.Ordered() {
		members = append(members, *m)
	}
	return &LobbyUpdatePayload{
		Players:  members,
		HostID:   l.HostID,
		CanStart: l.CanStart(),
	}
}
