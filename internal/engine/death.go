package engine

import (
	"context"

	"werewolf/internal/domain"
	"werewolf/internal/narrate"
)

// kill is the single entry point for every death. It is a no-op for the dead,
// stops at a spare life, and otherwise runs the cascade in a fixed order
// before re-evaluating the win conditions. It reports whether victim died.
func (e *Engine) kill(ctx context.Context, victim *domain.Player, cause domain.DeathCause) bool {
	if victim == nil || victim.IsDead() {
		return false
	}
	g := e.game

	var died bool
	if victim.Role == domain.RoleElder && !cause.ByWolves() {
		died = victim.Slay()
	} else {
		died = victim.TakeHit()
	}
	if !died {
		e.notify(ctx, []*domain.Player{victim}, e.narrator.ShieldHeld(victim.Nickname))
		e.logger.Debug("hit absorbed", "player", victim.ID, "cause", cause, "lives", victim.Lives)
		return false
	}

	if victim.InPack() {
		g.WolfHasDied = true
	}
	e.publish(domain.NewEvent(domain.EventPlayerDied, g.ID, &domain.PlayerDiedPayload{
		PlayerID: victim.ID,
		Role:     victim.Role,
		Cause:    cause,
	}))
	e.notifyAll(ctx, e.narrator.Died(victim.Nickname, victim.Role, cause))
	e.logger.Info("player died", "player", victim.ID, "role", victim.Role, "cause", cause, "round", g.Round)
	e.relays.Died(victim.ID)

	if victim.IsSheriff {
		e.passBadge(ctx, victim)
	}
	e.reveal(ctx, victim)

	e.onDeath(ctx, victim, cause)

	if chain := g.ChainOf(victim.ID); chain != nil {
		for _, id := range chain.IDs() {
			e.kill(ctx, g.Lookup(id), domain.CauseHeartbreak)
		}
	}

	e.settle()
	return true
}

// onDeath runs the role reactions: Loudmouth, Avenger, Hunter, Junior
// Werewolf, War Veteran, Knight, Elder, Head Hunter, Jester, Wild Child.
func (e *Engine) onDeath(ctx context.Context, victim *domain.Player, cause domain.DeathCause) {
	g := e.game

	switch victim.Role {
	case domain.RoleLoudmouth:
		if t := g.Lookup(victim.LoudmouthTarget); t != nil {
			e.reveal(ctx, t)
		}
	case domain.RoleAvenger:
		e.kill(ctx, g.Lookup(victim.AvengerTarget), domain.CauseAvenger)
	case domain.RoleHunter:
		text := e.narrator.Ask(narrate.AskShoot)
		if t := e.choosePlayer(ctx, victim, ActionShoot, text, killable(victim, g.Alive())); t != nil {
			e.kill(ctx, t, domain.CauseHunter)
		}
	case domain.RoleJuniorWerewolf:
		e.kill(ctx, g.Lookup(victim.JuniorTarget), domain.CauseJunior)
	case domain.RoleWarVeteran:
		if alive := g.Alive(); len(alive) > 0 {
			e.kill(ctx, alive[e.rng.Intn(len(alive))], domain.CauseVeteran)
		}
	case domain.RoleKnight:
		if cause.ByWolves() {
			if pack := g.Pack(); len(pack) > 0 {
				e.kill(ctx, pack[e.rng.Intn(len(pack))], domain.CauseKnight)
			}
		}
	case domain.RoleElder:
		if !cause.ByWolves() && !g.VillageDepowered {
			g.VillageDepowered = true
			e.notifyAll(ctx, e.narrator.Depowered())
		}
	}

	for _, hh := range g.AliveWithRole(domain.RoleHeadHunter) {
		if hh.HeadHunterTarget != victim.ID {
			continue
		}
		if cause == domain.CauseLynch {
			g.Steal(domain.SideHeadHunter, hh.ID)
			continue
		}
		hh.HeadHunterTarget = ""
		hh.SetRole(domain.RoleVillager)
		e.notify(ctx, []*domain.Player{hh}, e.narrator.NewRole(hh.Role))
	}

	if victim.Role == domain.RoleJester && cause == domain.CauseLynch {
		g.Steal(domain.SideJester, victim.ID)
	}

	for _, child := range g.AliveWithRole(domain.RoleWildChild) {
		if child.RoleModel == victim.ID {
			child.SetRole(domain.RoleWerewolf)
			e.notify(ctx, []*domain.Player{child}, e.narrator.NewRole(child.Role))
		}
	}
}

// passBadge lets the dying sheriff name a successor, or draws one at random.
func (e *Engine) passBadge(ctx context.Context, holder *domain.Player) {
	g := e.game
	holder.IsSheriff = false
	alive := g.Alive()
	if len(alive) == 0 {
		return
	}
	next := e.choosePlayer(ctx, holder, ActionSuccessor, e.narrator.Ask(narrate.AskSuccessor), alive)
	if next == nil {
		next = alive[e.rng.Intn(len(alive))]
	}
	next.IsSheriff = true
	e.publish(domain.NewEvent(domain.EventSheriffChanged, g.ID, &domain.SheriffChangedPayload{PlayerID: next.ID}))
	e.notifyAll(ctx, e.narrator.SheriffPassed(next.Nickname))
	e.logger.Debug("badge passed", "from", holder.ID, "to", next.ID)
}
