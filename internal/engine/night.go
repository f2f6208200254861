package engine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"werewolf/internal/domain"
	"werewolf/internal/narrate"
)

// NightOutcome is what the night resolver hands to dawn.
type NightOutcome struct {
	Kills         []Kill
	Resurrections []string
}

// resolveNight runs the night steps in order and returns the final kill list.
// Prompts inside a step run concurrently; their effects are committed in
// role order once every actor answered or timed out.
func (e *Engine) resolveNight(ctx context.Context) (*NightOutcome, error) {
	ctx, span := e.startSpan(ctx, "night")
	defer span.End()

	g := e.game
	if g.Round == 1 {
		if err := e.firstNight(ctx); err != nil {
			return nil, err
		}
	}
	if e.jailer() == nil {
		g.JailedID = ""
	}
	e.openNightRelays()

	kills := &KillList{}
	steps := []func(context.Context, *KillList) error{
		e.nightGuards,
		e.nightInsight,
		e.nightPack,
		e.nightExtraKills,
		e.nightShield,
	}
	for _, run := range steps {
		if err := run(ctx, kills); err != nil {
			return nil, err
		}
	}

	e.convertCursed(ctx, kills)
	e.absorb(ctx, kills)

	if err := e.nightWitch(ctx, kills); err != nil {
		return nil, err
	}
	e.redLadyFate(kills)

	if err := e.nightInfectors(ctx); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("night.kills", kills.Len()))
	e.logger.Debug("night resolved", "round", g.Round, "kills", kills.Len(), "resurrections", len(g.Resurrections))
	return &NightOutcome{
		Kills:         kills.Entries(),
		Resurrections: append([]string(nil), g.Resurrections...),
	}, nil
}

// canAct reports whether p may use a night or day ability right now.
func (e *Engine) canAct(p *domain.Player) bool {
	if p.IsDead() || p.ID == e.game.JailedID {
		return false
	}
	if e.game.VillageDepowered && p.Side() == domain.SideVillagers {
		return false
	}
	return true
}

// actors returns the living holders of r who may act.
func (e *Engine) actors(r domain.Role) []*domain.Player {
	var out []*domain.Player
	for _, p := range e.game.AliveWithRole(r) {
		if e.canAct(p) {
			out = append(out, p)
		}
	}
	return out
}

func (e *Engine) jailer() *domain.Player {
	if e.game.VillageDepowered {
		return nil
	}
	if js := e.game.AliveWithRole(domain.RoleJailer); len(js) > 0 {
		return js[0]
	}
	return nil
}

// killable drops the actor's own lovers from a kill ability's candidates.
func killable(actor *domain.Player, candidates []*domain.Player) []*domain.Player {
	out := make([]*domain.Player, 0, len(candidates))
	for _, p := range candidates {
		if !actor.Loves(p.ID) {
			out = append(out, p)
		}
	}
	return out
}

func filter(players []*domain.Player, keep func(*domain.Player) bool) []*domain.Player {
	out := make([]*domain.Player, 0, len(players))
	for _, p := range players {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (e *Engine) openNightRelays() {
	g := e.game
	e.relays.Open(relayWolves, g.Pack())
	if prisoner, j := g.Jailed(), e.jailer(); prisoner != nil && j != nil {
		e.relays.Open(relayJail, []*domain.Player{j, prisoner}, j, prisoner)
	}
	if mediums := e.actors(domain.RoleMedium); len(mediums) > 0 {
		m := mediums[0]
		e.relays.Open(relayMedium, append([]*domain.Player{m}, g.Dead()...), m)
	}
}

// firstNight handles the setup roles that only act before the first kill.
func (e *Engine) firstNight(ctx context.Context) error {
	g := e.game
	var steps []step

	for _, amor := range e.actors(domain.RoleAmor) {
		steps = append(steps, func(ctx context.Context) func() {
			picked := e.choosePlayers(ctx, amor, ActionAmor, e.narrator.Ask(narrate.AskLovers), g.Alive(), 2)
			if len(picked) != 2 {
				return nil
			}
			return func() {
				if !amor.Spend(domain.PowerMatchmaking) {
					return
				}
				a, b := picked[0], picked[1]
				if err := g.Bond(a, b); err != nil {
					e.logger.Warn("bond failed", "error", err)
					return
				}
				e.notify(ctx, []*domain.Player{a}, e.narrator.InLove(b.Nickname))
				e.notify(ctx, []*domain.Player{b}, e.narrator.InLove(a.Nickname))
			}
		})
	}

	for _, thief := range e.actors(domain.RoleThief) {
		steps = append(steps, func(ctx context.Context) func() {
			victim := e.choosePlayer(ctx, thief, ActionThief, e.narrator.Ask(narrate.AskSteal), g.AliveExcept(thief.ID))
			if victim == nil {
				return nil
			}
			return func() {
				if thief.Role != domain.RoleThief || !thief.Spend(domain.PowerSteal) {
					return
				}
				stolen := victim.Role
				thief.Inherit(victim)
				victim.SetRole(domain.RoleVillager)
				if stolen == domain.RoleHeadHunter {
					thief.HeadHunterTarget, victim.HeadHunterTarget = victim.HeadHunterTarget, ""
				}
				e.notify(ctx, []*domain.Player{thief}, e.narrator.NewRole(thief.Role))
				e.notify(ctx, []*domain.Player{victim}, e.narrator.NewRole(victim.Role))
			}
		})
	}

	for _, tm := range e.actors(domain.RoleTroublemaker) {
		steps = append(steps, func(ctx context.Context) func() {
			picked := e.choosePlayers(ctx, tm, ActionTroublemaker, e.narrator.Ask(narrate.AskSwap), g.AliveExcept(tm.ID), 2)
			if len(picked) != 2 {
				return nil
			}
			return func() {
				if !tm.Spend(domain.PowerSwap) {
					return
				}
				a, b := picked[0], picked[1]
				domain.ExchangeRoles(a, b)
				e.notify(ctx, []*domain.Player{a}, e.narrator.NewRole(a.Role))
				e.notify(ctx, []*domain.Player{b}, e.narrator.NewRole(b.Role))
			}
		})
	}

	for _, hound := range e.actors(domain.RoleWolfhound) {
		steps = append(steps, func(ctx context.Context) func() {
			picked := e.ask(ctx, hound, ChoiceRequest{
				Kind: ActionWolfhound,
				Text: e.narrator.Ask(narrate.AskSide),
				Options: []Option{
					{ID: string(domain.RoleVillager), Label: "Villager"},
					{ID: string(domain.RoleWerewolf), Label: "Werewolf"},
				},
				Max: 1,
			})
			role := domain.RoleVillager
			if len(picked) == 1 {
				role = domain.Role(picked[0])
			}
			return func() {
				if hound.Role != domain.RoleWolfhound || !hound.Spend(domain.PowerHoundChoice) {
					return
				}
				hound.SetRole(role)
				e.notify(ctx, []*domain.Player{hound}, e.narrator.NewRole(role))
			}
		})
	}

	for _, child := range e.actors(domain.RoleWildChild) {
		steps = append(steps, func(ctx context.Context) func() {
			model := e.choosePlayer(ctx, child, ActionWildChild, e.narrator.Ask(narrate.AskRoleModel), g.AliveExcept(child.ID))
			if model == nil {
				return nil
			}
			return func() {
				if child.Spend(domain.PowerRoleModel) {
					child.RoleModel = model.ID
				}
			}
		})
	}

	return e.fanOut(ctx, steps)
}

// nightGuards covers protections, the jailer's execution and night marks.
func (e *Engine) nightGuards(ctx context.Context, kills *KillList) error {
	g := e.game
	var steps []step

	if prisoner, j := g.Jailed(), e.jailer(); prisoner != nil && j != nil {
		prisoner.Protect(domain.ProtectionJailer, j.ID)
		if !j.HasSpent(domain.PowerExecute) {
			steps = append(steps, func(ctx context.Context) func() {
				if !e.confirm(ctx, j, ActionJailerKill, e.narrator.Ask(narrate.AskExecute, prisoner.Nickname), 0) {
					return nil
				}
				return func() {
					if j.Spend(domain.PowerExecute) {
						kills.Add(prisoner, domain.CauseJailer, j.ID)
					}
				}
			})
		}
	}

	guard := func(actor *domain.Player, source domain.ProtectionSource, candidates []*domain.Player) step {
		return func(ctx context.Context) func() {
			t := e.choosePlayer(ctx, actor, ActionProtect, e.narrator.Ask(narrate.AskProtect), candidates)
			if t == nil {
				return nil
			}
			return func() {
				t.Protect(source, actor.ID)
				if source == domain.ProtectionHealer {
					actor.HealerLastTarget = t.ID
				}
			}
		}
	}
	for _, bg := range e.actors(domain.RoleBodyguard) {
		steps = append(steps, guard(bg, domain.ProtectionBodyguard, g.AliveExcept(bg.ID)))
	}
	for _, doc := range e.actors(domain.RoleDoctor) {
		steps = append(steps, guard(doc, domain.ProtectionDoctor, g.Alive()))
	}
	for _, healer := range e.actors(domain.RoleHealer) {
		steps = append(steps, guard(healer, domain.ProtectionHealer, g.AliveExcept(healer.HealerLastTarget)))
	}

	for _, av := range e.actors(domain.RoleAvenger) {
		steps = append(steps, func(ctx context.Context) func() {
			t := e.choosePlayer(ctx, av, ActionMark, e.narrator.Ask(narrate.AskDragDown), killable(av, g.AliveExcept(av.ID)))
			if t == nil {
				return nil
			}
			return func() { av.AvengerTarget = t.ID }
		})
	}
	for _, lm := range e.actors(domain.RoleLoudmouth) {
		steps = append(steps, func(ctx context.Context) func() {
			t := e.choosePlayer(ctx, lm, ActionMark, e.narrator.Ask(narrate.AskLoudmouth), g.AliveExcept(lm.ID))
			if t == nil {
				return nil
			}
			return func() { lm.LoudmouthTarget = t.ID }
		})
	}
	for _, rl := range e.actors(domain.RoleRedLady) {
		steps = append(steps, func(ctx context.Context) func() {
			t := e.choosePlayer(ctx, rl, ActionVisit, e.narrator.Ask(narrate.AskVisit), g.AliveExcept(rl.ID))
			if t == nil {
				return nil
			}
			return func() { rl.Visiting = t.ID }
		})
	}

	return e.fanOut(ctx, steps)
}

// nightInsight runs the investigators and queues resurrections.
func (e *Engine) nightInsight(ctx context.Context, _ *KillList) error {
	g := e.game
	var steps []step

	inspect := func(actor *domain.Player, text string, candidates []*domain.Player, commit func(t *domain.Player)) step {
		return func(ctx context.Context) func() {
			t := e.choosePlayer(ctx, actor, ActionInspect, text, candidates)
			if t == nil {
				return nil
			}
			return func() { commit(t) }
		}
	}

	for _, seer := range e.actors(domain.RoleSeer) {
		steps = append(steps, inspect(seer, e.narrator.Ask(narrate.AskSeeRole), g.AliveExcept(seer.ID), func(t *domain.Player) {
			seer.Learn(t.ID, t.Role)
			e.notify(ctx, []*domain.Player{seer}, e.narrator.RoleOf(t.Nickname, t.Role))
		}))
	}
	for _, as := range e.actors(domain.RoleAuraSeer) {
		steps = append(steps, inspect(as, e.narrator.Ask(narrate.AskReadAura), g.AliveExcept(as.ID), func(t *domain.Player) {
			e.notify(ctx, []*domain.Player{as}, e.narrator.AuraOf(t.Nickname, t.Aura()))
		}))
	}
	for _, sh := range e.actors(domain.RoleSheriff) {
		steps = append(steps, inspect(sh, e.narrator.Ask(narrate.AskWatch), g.AliveExcept(sh.ID), func(t *domain.Player) {
			e.notify(ctx, []*domain.Player{sh}, e.narrator.Suspicion(t.Nickname, t.Side().WolfAligned()))
		}))
	}
	for _, fox := range e.actors(domain.RoleFox) {
		if fox.HasSpent(domain.PowerFoxSense) {
			continue
		}
		steps = append(steps, inspect(fox, e.narrator.Ask(narrate.AskSniff), g.Alive(), func(t *domain.Player) {
			group := append([]*domain.Player{t}, g.Neighbors(t.ID)...)
			names := make([]string, 0, len(group))
			found := false
			for _, p := range group {
				names = append(names, p.Nickname)
				found = found || p.Side().WolfAligned()
			}
			if !found {
				fox.Spend(domain.PowerFoxSense)
			}
			e.notify(ctx, []*domain.Player{fox}, e.narrator.FoxSense(names, found))
		}))
	}
	for _, ws := range e.actors(domain.RoleWolfSeer) {
		notPack := filter(g.AliveExcept(ws.ID), func(p *domain.Player) bool { return !p.InPack() })
		steps = append(steps, inspect(ws, e.narrator.Ask(narrate.AskRevealToPack), notPack, func(t *domain.Player) {
			pack := g.Pack()
			for _, w := range pack {
				w.Learn(t.ID, t.Role)
			}
			e.notify(ctx, pack, e.narrator.RoleOf(t.Nickname, t.Role))
		}))
	}
	for _, sorc := range e.actors(domain.RoleSorcerer) {
		steps = append(steps, inspect(sorc, e.narrator.Ask(narrate.AskSeeRole), g.AliveExcept(sorc.ID), func(t *domain.Player) {
			sorc.Learn(t.ID, t.Role)
			e.notify(ctx, []*domain.Player{sorc}, e.narrator.RoleOf(t.Nickname, t.Role))
		}))
	}

	revive := func(actor *domain.Player, pw domain.Power, candidates []*domain.Player) {
		if actor.HasSpent(pw) || len(candidates) == 0 {
			return
		}
		steps = append(steps, func(ctx context.Context) func() {
			t := e.choosePlayer(ctx, actor, ActionRevive, e.narrator.Ask(narrate.AskRevive), candidates)
			if t == nil {
				return nil
			}
			return func() {
				if actor.Spend(pw) {
					g.QueueResurrection(t.ID)
				}
			}
		})
	}
	dead := g.Dead()
	for _, m := range e.actors(domain.RoleMedium) {
		revive(m, domain.PowerSeance, filter(dead, func(p *domain.Player) bool { return p.Side() == domain.SideVillagers }))
	}
	for _, r := range e.actors(domain.RoleRitualist) {
		revive(r, domain.PowerRitual, dead)
	}
	for _, n := range e.actors(domain.RoleWolfNecromancer) {
		revive(n, domain.PowerNecromancy, filter(dead, func(p *domain.Player) bool { return p.Side() == domain.SideWolves }))
	}

	return e.fanOut(ctx, steps)
}

// nightPack collects the wolves' votes and settles on at most one victim.
func (e *Engine) nightPack(ctx context.Context, kills *KillList) error {
	g := e.game
	wolves := filter(g.Pack(), e.canAct)
	if len(wolves) == 0 {
		return nil
	}
	prey := filter(g.Alive(), func(p *domain.Player) bool { return !p.InPack() })

	var ballots []domain.Ballot
	var steps []step
	for _, w := range wolves {
		candidates := killable(w, prey)
		steps = append(steps, func(ctx context.Context) func() {
			t := e.choosePlayer(ctx, w, ActionWolfVote, e.narrator.Ask(narrate.AskVictim), candidates)
			if t == nil {
				return nil
			}
			return func() {
				ballots = append(ballots, domain.Ballot{VoterID: w.ID, TargetID: t.ID, Weight: 1})
			}
		})
	}
	for _, jr := range e.actors(domain.RoleJuniorWerewolf) {
		steps = append(steps, func(ctx context.Context) func() {
			t := e.choosePlayer(ctx, jr, ActionMark, e.narrator.Ask(narrate.AskDragDown), killable(jr, prey))
			if t == nil {
				return nil
			}
			return func() { jr.JuniorTarget = t.ID }
		})
	}
	if err := e.fanOut(ctx, steps); err != nil {
		return err
	}

	result := domain.Tally(ballots, e.rng)
	victim := g.Lookup(result.WinnerID)
	if victim == nil {
		e.notify(ctx, wolves, e.narrator.PackChoice(""))
		return nil
	}
	e.notify(ctx, g.Pack(), e.narrator.PackChoice(victim.Nickname))

	for _, cwf := range e.actors(domain.RoleCursedWolfFather) {
		if cwf.HasSpent(domain.PowerCurse) {
			continue
		}
		if !e.confirm(ctx, cwf, ActionCurse, e.narrator.Ask(narrate.AskCurse, victim.Nickname), 0) {
			continue
		}
		if cwf.Spend(domain.PowerCurse) {
			victim.Cursed = true
			e.notify(ctx, []*domain.Player{victim}, e.narrator.Cursed())
			e.logger.Debug("victim cursed", "player", victim.ID)
			return nil
		}
	}

	kills.Add(victim, domain.CauseWolves, "")
	return nil
}

// nightExtraKills lets the Big Bad Wolf and White Wolf strike while the pack
// is still whole.
func (e *Engine) nightExtraKills(ctx context.Context, kills *KillList) error {
	g := e.game
	if g.WolfHasDied {
		return nil
	}
	var steps []step

	for _, bbw := range e.actors(domain.RoleBigBadWolf) {
		candidates := killable(bbw, filter(g.Alive(), func(p *domain.Player) bool {
			return !p.InPack() && !kills.Has(p.ID)
		}))
		steps = append(steps, func(ctx context.Context) func() {
			t := e.choosePlayer(ctx, bbw, ActionExtraKill, e.narrator.Ask(narrate.AskSecondVictim), candidates)
			if t == nil {
				return nil
			}
			return func() { kills.Add(t, domain.CauseBigBadWolf, bbw.ID) }
		})
	}

	if g.Round%2 == 0 {
		for _, ww := range e.actors(domain.RoleWhiteWolf) {
			candidates := killable(ww, filter(g.AliveExcept(ww.ID), func(p *domain.Player) bool { return p.InPack() }))
			steps = append(steps, func(ctx context.Context) func() {
				t := e.choosePlayer(ctx, ww, ActionExtraKill, e.narrator.Ask(narrate.AskDevour), candidates)
				if t == nil {
					return nil
				}
				return func() { kills.Add(t, domain.CauseWhiteWolf, ww.ID) }
			})
		}
	}

	return e.fanOut(ctx, steps)
}

// nightShield lets the Wolf Shaman give a teammate a second life.
func (e *Engine) nightShield(ctx context.Context, _ *KillList) error {
	g := e.game
	var steps []step
	for _, shaman := range e.actors(domain.RoleWolfShaman) {
		if shaman.HasSpent(domain.PowerSpiritShield) {
			continue
		}
		mates := filter(g.AliveExcept(shaman.ID), func(p *domain.Player) bool { return p.InPack() })
		steps = append(steps, func(ctx context.Context) func() {
			t := e.choosePlayer(ctx, shaman, ActionShield, e.narrator.Ask(narrate.AskShield), mates)
			if t == nil {
				return nil
			}
			return func() {
				if t.Lives == 1 && shaman.Spend(domain.PowerSpiritShield) {
					t.Shield()
				}
			}
		})
	}
	return e.fanOut(ctx, steps)
}

// convertCursed turns bitten Cursed players into werewolves.
func (e *Engine) convertCursed(ctx context.Context, kills *KillList) {
	for _, k := range kills.Entries() {
		if k.Target.Role != domain.RoleCursed || !k.Cause.ByWolves() {
			continue
		}
		kills.Remove(k.Target.ID)
		k.Target.SetRole(domain.RoleWerewolf)
		e.notify(ctx, []*domain.Player{k.Target}, e.narrator.Converted())
		e.logger.Debug("cursed converted", "player", k.Target.ID)
	}
}

// absorb removes protected players from the list and credits bodyguards.
func (e *Engine) absorb(ctx context.Context, kills *KillList) {
	g := e.game
	for _, k := range kills.Entries() {
		t := k.Target
		if k.Cause == domain.CauseJailer {
			continue
		}
		if t.Role == domain.RoleRedLady && t.Visiting != "" {
			kills.Remove(t.ID)
			continue
		}
		if !t.IsProtected() {
			continue
		}
		kills.Remove(t.ID)
		protector := g.Lookup(t.ProtectorID)
		if protector == nil {
			continue
		}
		if t.Protection == domain.ProtectionBodyguard {
			protector.BodyguardIntercepts++
			if protector.BodyguardIntercepts >= 2 {
				kills.Add(protector, domain.CauseBodyguard, "")
				continue
			}
		}
		e.notify(ctx, []*domain.Player{protector}, e.narrator.ShieldHeld(t.Nickname))
	}
}

// nightWitch offers the heal and poison, then waits a random delay whenever
// a Witch was dealt so her activity cannot be timed.
func (e *Engine) nightWitch(ctx context.Context, kills *KillList) error {
	g := e.game
	var steps []step
	for _, w := range e.actors(domain.RoleWitch) {
		dying := kills.Targets()
		canHeal := !w.HasSpent(domain.PowerWitchHeal) && len(dying) > 0
		canPoison := !w.HasSpent(domain.PowerWitchPoison)
		if !canHeal && !canPoison {
			continue
		}
		steps = append(steps, func(ctx context.Context) func() {
			var healed, poisoned *domain.Player
			if canHeal {
				healed = e.choosePlayer(ctx, w, ActionWitchHeal, e.narrator.Ask(narrate.AskHeal), dying)
			}
			if canPoison {
				candidates := killable(w, filter(g.AliveExcept(w.ID), func(p *domain.Player) bool {
					return healed == nil || p.ID != healed.ID
				}))
				poisoned = e.choosePlayer(ctx, w, ActionWitchPoison, e.narrator.Ask(narrate.AskPoison), candidates)
			}
			return func() {
				if healed != nil && kills.Has(healed.ID) && w.Spend(domain.PowerWitchHeal) {
					kills.Remove(healed.ID)
				}
				if poisoned != nil && w.Spend(domain.PowerWitchPoison) {
					kills.Add(poisoned, domain.CauseWitch, w.ID)
				}
			}
		})
	}
	if err := e.fanOut(ctx, steps); err != nil {
		return err
	}

	if e.witchDealt() {
		sleep(ctx, e.witchDelay())
	}
	return ctx.Err()
}

func (e *Engine) witchDealt() bool {
	for _, p := range e.game.Players {
		for _, r := range p.InitialRoles {
			if r == domain.RoleWitch {
				return true
			}
		}
	}
	return false
}

func (e *Engine) witchDelay() time.Duration {
	lo, hi := e.opts.WitchDelayMin, e.opts.WitchDelayMax
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(e.rng.Int63n(int64(hi-lo)))
}

// redLadyFate kills a Red Lady who spent the night with a wolf or with
// someone who is about to die.
func (e *Engine) redLadyFate(kills *KillList) {
	g := e.game
	for _, rl := range g.AliveWithRole(domain.RoleRedLady) {
		host := g.Lookup(rl.Visiting)
		if host == nil {
			continue
		}
		if host.Side().WolfAligned() || kills.Has(host.ID) {
			kills.Add(rl, domain.CauseRedLady, host.ID)
		}
	}
}

// nightInfectors advance the Flutist and Superspreader. They never kill.
func (e *Engine) nightInfectors(ctx context.Context) error {
	g := e.game
	var steps []step
	for _, fl := range e.actors(domain.RoleFlutist) {
		candidates := filter(g.AliveExcept(fl.ID), func(p *domain.Player) bool { return !p.Enchanted })
		steps = append(steps, func(ctx context.Context) func() {
			picked := e.choosePlayers(ctx, fl, ActionEnchant, e.narrator.Ask(narrate.AskEnchant), candidates, 2)
			return func() {
				for _, p := range picked {
					p.Enchanted = true
				}
				e.notify(ctx, picked, e.narrator.Enchanted())
			}
		})
	}
	for _, ss := range e.actors(domain.RoleSuperspreader) {
		candidates := filter(g.AliveExcept(ss.ID), func(p *domain.Player) bool { return !p.Infected })
		steps = append(steps, func(ctx context.Context) func() {
			t := e.choosePlayer(ctx, ss, ActionInfect, e.narrator.Ask(narrate.AskInfect), candidates)
			if t == nil {
				return nil
			}
			return func() { t.Infected = true }
		})
	}
	return e.fanOut(ctx, steps)
}
