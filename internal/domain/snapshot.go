package domain

import (
	"encoding/json"
	"fmt"
)

// Snapshot is a point-in-time public view of a match, safe to hand to other
// goroutines.
type Snapshot struct {
	GameID  string       `json:"gameId"`
	Round   int          `json:"round"`
	Phase   Phase        `json:"phase"`
	Players []PlayerInfo `json:"players"`
	Victory *Victory     `json:"victory,omitempty"`
}

// Snapshot copies the public state of the game.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		GameID:  g.ID,
		Round:   g.Round,
		Phase:   g.Phase,
		Players: g.GetPlayerInfoList(),
	}
	if g.Victory != nil {
		v := *g.Victory
		v.Winners = append([]string(nil), g.Victory.Winners...)
		s.Victory = &v
	}
	return s
}

// MarshalState serialises the full authoritative state, hidden roles included.
func (g *Game) MarshalState() ([]byte, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("marshal game %s: %w", g.ID, err)
	}
	return data, nil
}

// UnmarshalState restores a game written by MarshalState.
func UnmarshalState(data []byte) (*Game, error) {
	var g Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("unmarshal game: %w", err)
	}
	g.byID = make(map[string]*Player, len(g.Players))
	for _, p := range g.Players {
		if p.Spent == nil {
			p.Spent = make(map[Power]bool)
		}
		if p.OwnLovers == nil {
			p.OwnLovers = make(map[string]struct{})
		}
		if p.RevealedRoles == nil {
			p.RevealedRoles = make(map[string]Role)
		}
		g.byID[p.ID] = p
	}
	return &g, nil
}
