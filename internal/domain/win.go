package domain

// VictoryReason explains which condition ended the match.
type VictoryReason string

const (
	VictoryStolen       VictoryReason = "STOLEN"        // Jester or Head Hunter lynch
	VictoryEnchanted    VictoryReason = "ENCHANTED"     // Flutist enchanted everyone else
	VictoryInfected     VictoryReason = "INFECTED"      // Superspreader infected everyone else
	VictoryLovers       VictoryReason = "LOVERS"        // one love chain is all that is left
	VictoryLastWolf     VictoryReason = "LAST_WOLF"     // White Wolf stands alone
	VictoryNoWolves     VictoryReason = "NO_WOLVES"     // village cleared the wolves
	VictoryOverrun      VictoryReason = "OVERRUN"       // wolves are not outnumbered
	VictoryLastStanding VictoryReason = "LAST_STANDING" // single survivor by default
	VictoryNobody       VictoryReason = "NOBODY"        // everyone is dead
)

// Victory is the result of a finished match. Side is empty for lovers and
// for a match nobody won.
type Victory struct {
	Reason  VictoryReason `json:"reason"`
	Side    Side          `json:"side,omitempty"`
	Winners []string      `json:"winners"`
}

// Steal ends the match for a solo role regardless of the board.
func (g *Game) Steal(side Side, winnerID string) {
	if g.Stolen != nil {
		return
	}
	g.Stolen = &Victory{Reason: VictoryStolen, Side: side, Winners: []string{winnerID}}
}

// Settle latches a victory. The first result sticks, except that a stolen win
// replaces anything that is not itself stolen.
func (g *Game) Settle(v *Victory) {
	if v == nil {
		return
	}
	if g.Victory == nil || (v.Reason == VictoryStolen && g.Victory.Reason != VictoryStolen) {
		g.Victory = v
	}
}

// EvaluateWin reports whether any side's objective holds now, honoring the
// precedence: stolen, Flutist, Superspreader, lovers, White Wolf, villagers,
// wolves, last survivor. It returns nil while the match goes on.
func EvaluateWin(g *Game) *Victory {
	if g.Stolen != nil {
		return g.Stolen
	}

	alive := g.Alive()
	if len(alive) == 0 {
		return &Victory{Reason: VictoryNobody, Winners: []string{}}
	}

	if v := soloSweep(alive, SideFlutist, VictoryEnchanted, func(p *Player) bool { return p.Enchanted }); v != nil {
		return v
	}
	if v := soloSweep(alive, SideSuperspreader, VictoryInfected, func(p *Player) bool { return p.Infected }); v != nil {
		return v
	}

	if len(alive) >= 2 {
		if chain := g.ChainOf(alive[0].ID); chain != nil && containsAll(chain, alive) {
			return &Victory{Reason: VictoryLovers, Winners: chain.IDs()}
		}
	}

	if len(alive) == 1 && alive[0].Side() == SideWhiteWolf {
		return &Victory{Reason: VictoryLastWolf, Side: SideWhiteWolf, Winners: []string{alive[0].ID}}
	}

	wolfAligned, wolves := 0, 0
	for _, p := range alive {
		side := p.Side()
		if side.WolfAligned() {
			wolfAligned++
		}
		if side == SideWolves {
			wolves++
		}
	}

	if wolfAligned == 0 {
		return &Victory{Reason: VictoryNoWolves, Side: SideVillagers, Winners: idsOf(g.WithSide(SideVillagers))}
	}

	// Overrun: wolves win once they are not outnumbered.
	if wolves > 0 && wolfAligned >= len(alive)-wolfAligned {
		return &Victory{Reason: VictoryOverrun, Side: SideWolves, Winners: idsOf(g.WithSide(SideWolves))}
	}

	if len(alive) == 1 {
		return &Victory{Reason: VictoryLastStanding, Side: alive[0].Side(), Winners: []string{alive[0].ID}}
	}
	return nil
}

func soloSweep(alive []*Player, side Side, reason VictoryReason, marked func(*Player) bool) *Victory {
	for _, p := range alive {
		if p.Side() != side {
			continue
		}
		all := true
		for _, other := range alive {
			if other.ID != p.ID && !marked(other) {
				all = false
				break
			}
		}
		if all {
			return &Victory{Reason: reason, Side: side, Winners: []string{p.ID}}
		}
	}
	return nil
}

func containsAll(chain *LoveChain, players []*Player) bool {
	for _, p := range players {
		if !chain.Has(p.ID) {
			return false
		}
	}
	return true
}

func idsOf(players []*Player) []string {
	ids := make([]string, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
	}
	return ids
}
