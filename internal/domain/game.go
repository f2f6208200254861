package domain

import (
	"fmt"
	"time"
)

// Game is the round/turn context of one match.
type Game struct {
	ID         string       `json:"id"`
	Players    []*Player    `json:"players"` // seat order
	Round      int          `json:"round"`
	Phase      Phase        `json:"phase"`
	LoveChains []*LoveChain `json:"loveChains"`

	// Resurrections requested during the night, applied at dawn.
	Resurrections []string `json:"resurrections"`
	JailedID      string   `json:"jailedId,omitempty"`

	SecondElection   bool `json:"secondElection"`
	WolfHasDied      bool `json:"wolfHasDied"`
	VillageDepowered bool `json:"villageDepowered"`

	Stolen    *Victory  `json:"stolen,omitempty"`
	Victory   *Victory  `json:"victory,omitempty"`
	CreatedAt time.Time `json:"createdAt"`

	byID map[string]*Player
}

// NewGame creates a game from an already dealt roster.
func NewGame(id string, players []*Player) (*Game, error) {
	g := &Game{
		ID:        id,
		Players:   players,
		Phase:     PhaseLobby,
		CreatedAt: time.Now(),
		byID:      make(map[string]*Player, len(players)),
	}
	for _, p := range players {
		if !p.Role.IsKnown() {
			return nil, fmt.Errorf("player %s: %w: %q", p.ID, ErrUnknownRole, p.Role)
		}
		if _, dup := g.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate player id %s", p.ID)
		}
		g.byID[p.ID] = p
	}
	return g, nil
}

// Lookup returns a player by ID or nil.
func (g *Game) Lookup(playerID string) *Player {
	return g.byID[playerID]
}

// TransitionTo moves the game to the target phase.
func (g *Game) TransitionTo(target Phase) error {
	if g.Phase == target {
		return nil
	}
	if !g.Phase.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, g.Phase, target)
	}
	g.Phase = target
	return nil
}

// Alive returns the living players in seat order.
func (g *Game) Alive() []*Player {
	alive := make([]*Player, 0, len(g.Players))
	for _, p := range g.Players {
		if p.IsAlive() {
			alive = append(alive, p)
		}
	}
	return alive
}

// Dead returns the dead players in seat order.
func (g *Game) Dead() []*Player {
	dead := make([]*Player, 0)
	for _, p := range g.Players {
		if p.IsDead() {
			dead = append(dead, p)
		}
	}
	return dead
}

// AliveExcept returns the living players other than the excluded ids.
func (g *Game) AliveExcept(ids ...string) []*Player {
	skip := make(map[string]bool, len(ids))
	for _, id := range ids {
		skip[id] = true
	}
	out := make([]*Player, 0, len(g.Players))
	for _, p := range g.Players {
		if p.IsAlive() && !skip[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// AliveWithRole returns living players currently holding the role.
func (g *Game) AliveWithRole(r Role) []*Player {
	out := make([]*Player, 0)
	for _, p := range g.Players {
		if p.IsAlive() && p.Role == r {
			out = append(out, p)
		}
	}
	return out
}

// Pack returns the living players who hunt with the wolves.
func (g *Game) Pack() []*Player {
	out := make([]*Player, 0)
	for _, p := range g.Players {
		if p.IsAlive() && p.InPack() {
			out = append(out, p)
		}
	}
	return out
}

// WithSide returns players of a side, dead or alive.
func (g *Game) WithSide(s Side) []*Player {
	out := make([]*Player, 0)
	for _, p := range g.Players {
		if p.Side() == s {
			out = append(out, p)
		}
	}
	return out
}

// Neighbors returns the living players seated on either side of id, skipping
// the dead.
func (g *Game) Neighbors(id string) []*Player {
	alive := g.Alive()
	idx := -1
	for i, p := range alive {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 || len(alive) < 2 {
		return nil
	}
	left := alive[(idx-1+len(alive))%len(alive)]
	right := alive[(idx+1)%len(alive)]
	if left == right {
		return []*Player{left}
	}
	return []*Player{left, right}
}

// Jailed returns tonight's prisoner, if any is alive.
func (g *Game) Jailed() *Player {
	p := g.byID[g.JailedID]
	if p == nil || p.IsDead() {
		return nil
	}
	return p
}

// QueueResurrection schedules a dead player to come back at dawn.
func (g *Game) QueueResurrection(id string) {
	for _, q := range g.Resurrections {
		if q == id {
			return
		}
	}
	g.Resurrections = append(g.Resurrections, id)
}

// DrainResurrections returns and clears the pending resurrections.
func (g *Game) DrainResurrections() []*Player {
	out := make([]*Player, 0, len(g.Resurrections))
	for _, id := range g.Resurrections {
		if p := g.byID[id]; p != nil && p.IsDead() {
			out = append(out, p)
		}
	}
	g.Resurrections = nil
	return out
}

// IsOver reports whether a win condition has fired.
func (g *Game) IsOver() bool {
	return g.Victory != nil
}

// GetPlayerInfoList returns a list of all players as PlayerInfo
func (g *Game) GetPlayerInfoList() []PlayerInfo {
	players := make([]PlayerInfo, 0, len(g.Players))
	for _, p := range g.Players {
		players = append(players, p.ToInfo())
	}
	return players
}
