package app

import (
	"fmt"
	"math/rand"

	"werewolf/internal/domain"
)

// Wolf cards in the order they are added as the table grows.
var wolfCards = []domain.Role{
	domain.RoleWerewolf,
	domain.RoleWerewolf,
	domain.RoleBigBadWolf,
	domain.RoleWolfSeer,
	domain.RoleWhiteWolf,
	domain.RoleWolfShaman,
	domain.RoleCursedWolfFather,
}

// Special cards for the rest of the table, most important first.
var specialCards = []domain.Role{
	domain.RoleSeer,
	domain.RoleDoctor,
	domain.RoleHunter,
	domain.RoleWitch,
	domain.RoleAmor,
	domain.RoleBodyguard,
	domain.RoleJester,
	domain.RoleFox,
	domain.RoleMedium,
	domain.RoleSheriff,
	domain.RoleKnight,
	domain.RoleElder,
	domain.RoleCursed,
	domain.RoleRedLady,
	domain.RoleFlutist,
	domain.RoleJailer,
	domain.RoleAuraSeer,
	domain.RoleLawyer,
}

// BuildDeck returns the default composition for n players: one wolf per four
// seats, about half of the village with a special card, Villagers otherwise.
func BuildDeck(n int) []domain.Role {
	if n <= 0 {
		return nil
	}
	wolves := max(1, n/4)
	wolves = min(wolves, len(wolfCards))

	deck := make([]domain.Role, 0, n)
	deck = append(deck, wolfCards[:wolves]...)

	village := n - wolves
	specials := min((village+1)/2, len(specialCards))
	deck = append(deck, specialCards[:specials]...)
	for len(deck) < n {
		deck = append(deck, domain.RoleVillager)
	}
	return deck
}

// ValidateDeck checks a host-provided composition against the table.
func ValidateDeck(roles []domain.Role, seats int) error {
	if len(roles) != seats {
		return fmt.Errorf("%d roles for %d players: %w", len(roles), seats, domain.ErrRosterMismatch)
	}
	hasWolf := false
	for _, r := range roles {
		if !r.IsKnown() {
			return fmt.Errorf("%w: %q", domain.ErrUnknownRole, r)
		}
		if domain.SideOf(r, false) == domain.SideWolves {
			hasWolf = true
		}
	}
	if !hasWolf {
		return fmt.Errorf("deck has no wolf: %w", domain.ErrRosterMismatch)
	}
	return nil
}

// Deal shuffles the deck and seats one role per lobby member, in join order.
func Deal(members []*domain.LobbyMember, deck []domain.Role, rng *rand.Rand) ([]*domain.Player, error) {
	if err := ValidateDeck(deck, len(members)); err != nil {
		return nil, err
	}
	shuffled := append([]domain.Role(nil), deck...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	players := make([]*domain.Player, 0, len(members))
	for i, m := range members {
		players = append(players, domain.NewPlayer(m.ID, m.Nickname, shuffled[i]))
	}
	return players, nil
}
