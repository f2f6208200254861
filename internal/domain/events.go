package domain

import "time"

// EventType represents the type of game event
type EventType string

const (
	EventPlayerJoined      EventType = "PLAYER_JOINED"
	EventPlayerLeft        EventType = "PLAYER_LEFT"
	EventPlayerReconnected EventType = "PLAYER_RECONNECTED"
	EventGameStarted       EventType = "GAME_STARTED"
	EventRoleAssigned      EventType = "ROLE_ASSIGNED"
	EventRoundStarted      EventType = "ROUND_STARTED"
	EventPhaseChanged      EventType = "PHASE_CHANGED"
	EventPlayerDied        EventType = "PLAYER_DIED"
	EventPlayerRevived     EventType = "PLAYER_REVIVED"
	EventRoleRevealed      EventType = "ROLE_REVEALED"
	EventElectionResult    EventType = "ELECTION_RESULT"
	EventSheriffChanged    EventType = "SHERIFF_CHANGED"
	EventGameEnded         EventType = "GAME_ENDED"
)

// GameEvent represents an event that occurred in the game
type GameEvent struct {
	Type      EventType   `json:"type"`
	GameID    string      `json:"gameId"`
	PlayerID  string      `json:"playerId,omitempty"` // If event is player-specific
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new game event
func NewEvent(eventType EventType, gameID string, payload interface{}) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		GameID:    gameID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewPlayerEvent creates a new player-specific game event
func NewPlayerEvent(eventType EventType, gameID, playerID string, payload interface{}) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		GameID:    gameID,
		PlayerID:  playerID,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// DeathCause names what killed a player.
type DeathCause string

const (
	CauseWolves     DeathCause = "WOLVES"
	CauseBigBadWolf DeathCause = "BIG_BAD_WOLF"
	CauseWhiteWolf  DeathCause = "WHITE_WOLF"
	CauseWitch      DeathCause = "WITCH"
	CauseJailer     DeathCause = "JAILER"
	CauseBodyguard  DeathCause = "BODYGUARD"
	CauseRedLady    DeathCause = "RED_LADY"
	CauseLynch      DeathCause = "LYNCH"
	CauseHunter     DeathCause = "HUNTER"
	CauseAvenger    DeathCause = "AVENGER"
	CauseJunior     DeathCause = "JUNIOR_WEREWOLF"
	CauseVeteran    DeathCause = "WAR_VETERAN"
	CauseKnight     DeathCause = "KNIGHT"
	CauseHeartbreak DeathCause = "HEARTBREAK"
	CauseAFK        DeathCause = "AFK"
)

// ByWolves reports whether the cause is a wolf attack.
func (c DeathCause) ByWolves() bool {
	return c == CauseWolves || c == CauseBigBadWolf || c == CauseWhiteWolf
}

// Payload types for different events

// LobbyUpdatePayload is sent when lobby state changes
type LobbyUpdatePayload struct {
	Players  []LobbyMember `json:"players"`
	HostID   string        `json:"hostId"`
	CanStart bool          `json:"canStart"`
}

// RoleAssignedPayload is sent to each player with their role
type RoleAssignedPayload struct {
	Role Role `json:"role"`
}

// RoundStartedPayload is sent when a night begins
type RoundStartedPayload struct {
	Round   int          `json:"round"`
	Players []PlayerInfo `json:"players"`
}

// PhaseChangedPayload is sent on every phase transition
type PhaseChangedPayload struct {
	Round int   `json:"round"`
	Phase Phase `json:"phase"`
}

// PlayerDiedPayload is sent once per death
type PlayerDiedPayload struct {
	PlayerID string     `json:"playerId"`
	Role     Role       `json:"role"`
	Cause    DeathCause `json:"cause"`
}

// PlayerRevivedPayload is sent when a queued resurrection materialises
type PlayerRevivedPayload struct {
	PlayerID string `json:"playerId"`
}

// RoleRevealedPayload is sent when a role becomes public knowledge
type RoleRevealedPayload struct {
	PlayerID string `json:"playerId"`
	Role     Role   `json:"role"`
}

// ElectionResultPayload carries the lynch target, empty when nobody is lynched
type ElectionResultPayload struct {
	TargetID string         `json:"targetId,omitempty"`
	Counts   map[string]int `json:"counts,omitempty"`
	Second   bool           `json:"second"`
}

// SheriffChangedPayload is sent when the badge moves
type SheriffChangedPayload struct {
	PlayerID string `json:"playerId"`
}

// GameEndedPayload is sent when a win condition fires
type GameEndedPayload struct {
	Reason  VictoryReason   `json:"reason"`
	Side    Side            `json:"side,omitempty"`
	Winners []string        `json:"winners"`
	Roles   map[string]Role `json:"roles"`
}
