package domain

import "sort"

// LoveChain is a closed set of bonded players. Members die together.
type LoveChain struct {
	Members map[string]struct{} `json:"members"`
}

// Has reports whether id belongs to the chain.
func (c *LoveChain) Has(id string) bool {
	_, ok := c.Members[id]
	return ok
}

// IDs returns the member ids in a stable order.
func (c *LoveChain) IDs() []string {
	ids := make([]string, 0, len(c.Members))
	for id := range c.Members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ChainOf returns the chain a player belongs to, or nil.
func (g *Game) ChainOf(id string) *LoveChain {
	for _, c := range g.LoveChains {
		if c.Has(id) {
			return c
		}
	}
	return nil
}

// Bond links two players. If either already belongs to a chain the chains are
// merged, so a player never sits in two chains.
func (g *Game) Bond(a, b *Player) error {
	if a == nil || b == nil {
		return ErrPlayerNotFound
	}
	if a.ID == b.ID {
		return ErrInvalidTarget
	}

	a.OwnLovers[b.ID] = struct{}{}
	b.OwnLovers[a.ID] = struct{}{}

	ca, cb := g.ChainOf(a.ID), g.ChainOf(b.ID)
	switch {
	case ca == nil && cb == nil:
		g.LoveChains = append(g.LoveChains, &LoveChain{Members: map[string]struct{}{a.ID: {}, b.ID: {}}})
	case ca != nil && cb == nil:
		ca.Members[b.ID] = struct{}{}
	case ca == nil && cb != nil:
		cb.Members[a.ID] = struct{}{}
	case ca != cb:
		for id := range cb.Members {
			ca.Members[id] = struct{}{}
		}
		g.removeChain(cb)
	}
	return nil
}

func (g *Game) removeChain(target *LoveChain) {
	kept := g.LoveChains[:0]
	for _, c := range g.LoveChains {
		if c != target {
			kept = append(kept, c)
		}
	}
	g.LoveChains = kept
}
