package engine

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"werewolf/internal/domain"
	"werewolf/internal/narrate"
)

// runDay plays the election, an optional second election called by the
// Judge, the AFK check and the jailer's pick for the coming night.
func (e *Engine) runDay(ctx context.Context) error {
	ctx, span := e.startSpan(ctx, "day")
	defer span.End()

	g := e.game
	lynched, err := e.election(ctx, false)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.String("day.lynched", lynched))
	if g.IsOver() {
		return nil
	}

	if g.SecondElection {
		g.SecondElection = false
		e.notifyAll(ctx, e.narrator.SecondElection())
		if _, err := e.election(ctx, true); err != nil {
			return err
		}
		if g.IsOver() {
			return nil
		}
	}

	e.checkAFK(ctx)
	if g.IsOver() {
		return nil
	}
	e.pickPrisoner(ctx)
	return ctx.Err()
}

// dayActors returns the living, free holders of r.
func (e *Engine) dayActors(r domain.Role) []*domain.Player {
	return filter(e.game.AliveWithRole(r), func(p *domain.Player) bool { return p.ID != e.game.JailedID })
}

// election runs one nomination, vote and resolution cycle and returns the id
// of the lynched player, if any.
func (e *Engine) election(ctx context.Context, second bool) (string, error) {
	g := e.game
	if err := e.setPhase(domain.PhaseNomination); err != nil {
		return "", err
	}

	nominees, objected, err := e.nominate(ctx, second)
	if err != nil {
		return "", err
	}
	if objected {
		e.notifyAll(ctx, e.narrator.Objection())
		return "", e.resolve(ctx, nil, nil, second)
	}

	var target *domain.Player
	var counts map[string]int
	switch len(nominees) {
	case 0:
	case 1:
		target = nominees[0]
	default:
		if err := e.setPhase(domain.PhaseVoting); err != nil {
			return "", err
		}
		result, err := e.vote(ctx, nominees)
		if err != nil {
			return "", err
		}
		counts = result.Counts
		target = g.Lookup(result.WinnerID)
	}

	if err := e.resolve(ctx, target, counts, second); err != nil {
		return "", err
	}
	if target == nil || target.IsAlive() {
		return "", nil
	}
	return target.ID, nil
}

// nominate collects nominations from every living, free player. The Lawyer
// may object and the Judge may call a second election; neither is offered
// during a second election.
func (e *Engine) nominate(ctx context.Context, second bool) ([]*domain.Player, bool, error) {
	g := e.game
	timeout := e.opts.NominationTimeout

	type nomination struct {
		by      *domain.Player
		targets []string
	}
	var (
		noms     []nomination
		objected bool
		steps    []step
	)

	for _, p := range filter(g.Alive(), func(p *domain.Player) bool { return p.ID != g.JailedID }) {
		options := playerOptions(g.AliveExcept(p.ID))
		steps = append(steps, func(ctx context.Context) func() {
			picked := e.ask(ctx, p, ChoiceRequest{
				Kind:    ActionNominate,
				Text:    e.narrator.Ask(narrate.AskAccuse),
				Options: options,
				Max:     e.opts.MaxNominations,
				Timeout: timeout,
			})
			if len(picked) == 0 {
				return nil
			}
			return func() { noms = append(noms, nomination{by: p, targets: picked}) }
		})
	}

	if !second {
		for _, lawyer := range e.dayActors(domain.RoleLawyer) {
			if lawyer.HasSpent(domain.PowerObjection) {
				continue
			}
			steps = append(steps, func(ctx context.Context) func() {
				if !e.confirm(ctx, lawyer, ActionObjection, e.narrator.Ask(narrate.AskObject), timeout) {
					return nil
				}
				return func() {
					if lawyer.Spend(domain.PowerObjection) {
						objected = true
					}
				}
			})
		}
		for _, judge := range e.dayActors(domain.RoleJudge) {
			if judge.HasSpent(domain.PowerSecretPhrase) {
				continue
			}
			steps = append(steps, func(ctx context.Context) func() {
				if !e.confirm(ctx, judge, ActionSecretPhrase, e.narrator.Ask(narrate.AskSecretPhrase), timeout) {
					return nil
				}
				return func() {
					if judge.Spend(domain.PowerSecretPhrase) {
						g.SecondElection = true
					}
				}
			})
		}
	}

	if err := e.fanOut(ctx, steps); err != nil {
		return nil, false, err
	}
	if objected {
		return nil, true, nil
	}

	for _, n := range noms {
		if n.by.Role == domain.RoleParagon {
			paragon := noms[:0]
			for _, m := range noms {
				if m.by.Role == domain.RoleParagon {
					paragon = append(paragon, m)
				}
			}
			noms = paragon
			break
		}
	}

	seen := make(map[string]bool)
	var nominees []*domain.Player
	for _, n := range noms {
		for _, id := range n.targets {
			if t := g.Lookup(id); t != nil && t.IsAlive() && !seen[id] {
				seen[id] = true
				nominees = append(nominees, t)
			}
		}
	}
	e.logger.Debug("nominations closed", "nominators", len(noms), "nominees", len(nominees), "second", second)
	return nominees, false, nil
}

// vote asks every living player to back one nominee.
func (e *Engine) vote(ctx context.Context, nominees []*domain.Player) (domain.VoteResult, error) {
	g := e.game
	options := playerOptions(nominees)

	var ballots []domain.Ballot
	var steps []step
	for _, voter := range g.Alive() {
		steps = append(steps, func(ctx context.Context) func() {
			picked := e.ask(ctx, voter, ChoiceRequest{
				Kind:    ActionVote,
				Text:    e.narrator.Ask(narrate.AskLynch),
				Options: options,
				Max:     1,
				Timeout: e.opts.VotingTimeout,
			})
			if len(picked) != 1 {
				return nil
			}
			return func() {
				ballots = append(ballots, domain.Ballot{VoterID: voter.ID, TargetID: picked[0], Weight: domain.VoteWeight(voter)})
			}
		})
	}
	if err := e.fanOut(ctx, steps); err != nil {
		return domain.VoteResult{}, err
	}
	return domain.Tally(ballots, e.rng), nil
}

// resolve announces the result and lynches the target, honoring the Flower
// Child's veto and offering the Maid the dead player's role.
func (e *Engine) resolve(ctx context.Context, target *domain.Player, counts map[string]int, second bool) error {
	g := e.game
	if err := e.setPhase(domain.PhaseResolution); err != nil {
		return err
	}

	if target != nil {
		e.notifyAll(ctx, e.narrator.Elected(target.Nickname, counts[target.ID]))
		for _, fc := range e.dayActors(domain.RoleFlowerChild) {
			if fc.HasSpent(domain.PowerPetalVeto) {
				continue
			}
			if e.confirm(ctx, fc, ActionPetalVeto, e.narrator.Ask(narrate.AskSpare, target.Nickname), 0) && fc.Spend(domain.PowerPetalVeto) {
				e.notifyAll(ctx, e.narrator.Vetoed(target.Nickname))
				target = nil
				break
			}
		}
	}

	payload := &domain.ElectionResultPayload{Counts: counts, Second: second}
	if target != nil {
		payload.TargetID = target.ID
	}
	e.publish(domain.NewEvent(domain.EventElectionResult, g.ID, payload))

	if target == nil {
		e.notifyAll(ctx, e.narrator.NoLynch())
		return nil
	}

	if !e.kill(ctx, target, domain.CauseLynch) || g.IsOver() {
		return nil
	}

	for _, maid := range e.dayActors(domain.RoleMaid) {
		if maid.HasSpent(domain.PowerMaidSwap) {
			continue
		}
		if e.confirm(ctx, maid, ActionMaidSwap, e.narrator.Ask(narrate.AskTakeRole, target.Nickname), 0) && maid.Spend(domain.PowerMaidSwap) {
			maid.Inherit(target)
			e.notify(ctx, []*domain.Player{maid}, e.narrator.NewRole(maid.Role))
			e.settle()
			break
		}
	}
	return nil
}

// checkAFK gives a strike to every living player who was prompted but never
// answered since the last check, and removes repeat offenders.
func (e *Engine) checkAFK(ctx context.Context) {
	g := e.game
	defer func() {
		for _, p := range g.Players {
			p.Asked = false
			p.Responded = false
		}
	}()
	if e.opts.AFKStrikes <= 0 {
		return
	}
	for _, p := range g.Alive() {
		if !p.Asked || p.Responded {
			continue
		}
		p.AFKStrikes++
		e.notifyAll(ctx, e.narrator.AFK(p.Nickname, p.AFKStrikes))
		if p.AFKStrikes >= e.opts.AFKStrikes {
			e.kill(ctx, p, domain.CauseAFK)
		}
	}
}

// pickPrisoner lets the Jailer lock someone up for the coming night.
func (e *Engine) pickPrisoner(ctx context.Context) {
	g := e.game
	g.JailedID = ""
	j := e.jailer()
	if j == nil {
		return
	}
	prisoner := e.choosePlayer(ctx, j, ActionJail, e.narrator.Ask(narrate.AskPrisoner), g.AliveExcept(j.ID))
	if prisoner == nil {
		return
	}
	g.JailedID = prisoner.ID
	e.notify(ctx, []*domain.Player{prisoner}, e.narrator.Jailed())
}
