package engine

import (
	"context"
	"errors"
	"time"

	"werewolf/internal/domain"
	"werewolf/internal/narrate"
)

// ActionKind tells the presentation layer what a prompt is for.
type ActionKind string

const (
	ActionAmor         ActionKind = "amor"
	ActionThief        ActionKind = "thief"
	ActionTroublemaker ActionKind = "troublemaker"
	ActionWolfhound    ActionKind = "wolfhound"
	ActionWildChild    ActionKind = "wild_child"
	ActionJailerKill   ActionKind = "jailer_execute"
	ActionProtect      ActionKind = "protect"
	ActionMark         ActionKind = "mark"
	ActionVisit        ActionKind = "visit"
	ActionInspect      ActionKind = "inspect"
	ActionRevive       ActionKind = "revive"
	ActionWolfVote     ActionKind = "wolf_vote"
	ActionCurse        ActionKind = "curse"
	ActionExtraKill    ActionKind = "extra_kill"
	ActionShield       ActionKind = "spirit_shield"
	ActionWitchHeal    ActionKind = "witch_heal"
	ActionWitchPoison  ActionKind = "witch_poison"
	ActionEnchant      ActionKind = "enchant"
	ActionInfect       ActionKind = "infect"
	ActionNominate     ActionKind = "nominate"
	ActionObjection    ActionKind = "objection"
	ActionSecretPhrase ActionKind = "secret_phrase"
	ActionVote         ActionKind = "vote"
	ActionPetalVeto    ActionKind = "petal_veto"
	ActionMaidSwap     ActionKind = "maid_swap"
	ActionShoot        ActionKind = "shoot"
	ActionSuccessor    ActionKind = "successor"
	ActionJail         ActionKind = "jail"
)

// Option is one selectable answer.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ChoiceRequest asks a player to pick up to Max options.
type ChoiceRequest struct {
	Kind     ActionKind    `json:"kind"`
	Text     string        `json:"text"`
	Options  []Option      `json:"options"`
	Max      int           `json:"max"`
	Deadline time.Time     `json:"deadline"`
	Timeout  time.Duration `json:"-"`
}

// Prompter presents options to a player and waits for 0..Max selections.
// Implementations return the selected option ids, or an error when the
// context ends first.
type Prompter interface {
	Prompt(ctx context.Context, playerID string, req ChoiceRequest) ([]string, error)
}

// Notifier delivers narration. A nil audience means everyone. Failures are
// logged by the engine and never block the game.
type Notifier interface {
	Notify(ctx context.Context, audience []string, message string) error
}

// EventSink receives the public event stream.
type EventSink interface {
	Publish(event *domain.GameEvent)
}

// Observer is told when a phase completes. It runs on the engine goroutine,
// so it may read the game freely but must not keep references to it.
type Observer interface {
	PhaseCompleted(ctx context.Context, g *domain.Game)
}

// ErrTimeout is what prompters should return when nobody answered.
var ErrTimeout = errors.New("prompt timed out")

const (
	optionYes = "yes"
	optionNo  = "no"
)

func (e *Engine) yesNo() []Option {
	return []Option{
		{ID: optionYes, Label: e.narrator.Ask(narrate.AnswerYes)},
		{ID: optionNo, Label: e.narrator.Ask(narrate.AnswerNo)},
	}
}

func playerOptions(players []*domain.Player) []Option {
	opts := make([]Option, 0, len(players))
	for _, p := range players {
		opts = append(opts, Option{ID: p.ID, Label: p.Nickname})
	}
	return opts
}

// ask prompts one player and validates the answer. Timeouts and delivery
// failures resolve to no selection. An invalid answer is re-asked once while
// time remains.
func (e *Engine) ask(ctx context.Context, actor *domain.Player, req ChoiceRequest) []string {
	if len(req.Options) == 0 || req.Max <= 0 {
		return nil
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = e.opts.PromptTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req.Deadline, _ = ctx.Deadline()

	valid := make(map[string]bool, len(req.Options))
	for _, o := range req.Options {
		valid[o.ID] = true
	}

	e.markAsked(actor)
	for attempt := 0; attempt < 2; attempt++ {
		picked, err := e.prompter.Prompt(ctx, actor.ID, req)
		if err != nil {
			if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) && ctx.Err() == nil {
				e.logger.Warn("prompt failed", "player", actor.ID, "kind", req.Kind, "error", err)
			}
			return nil
		}
		e.markResponded(actor)

		out, ok := sanitize(picked, valid, req.Max)
		if ok {
			return out
		}
		e.logger.Debug("invalid selection", "player", actor.ID, "kind", req.Kind, "picked", picked)
		if ctx.Err() != nil {
			return nil
		}
	}
	return nil
}

// sanitize drops duplicates and rejects unknown ids or too many picks.
func sanitize(picked []string, valid map[string]bool, max int) ([]string, bool) {
	seen := make(map[string]bool, len(picked))
	out := make([]string, 0, len(picked))
	for _, id := range picked {
		if !valid[id] {
			return nil, false
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(out) > max {
		return nil, false
	}
	return out, true
}

// choosePlayers asks for up to max players among candidates.
func (e *Engine) choosePlayers(ctx context.Context, actor *domain.Player, kind ActionKind, text string, candidates []*domain.Player, max int) []*domain.Player {
	ids := e.ask(ctx, actor, ChoiceRequest{Kind: kind, Text: text, Options: playerOptions(candidates), Max: max})
	out := make([]*domain.Player, 0, len(ids))
	for _, id := range ids {
		if p := e.game.Lookup(id); p != nil {
			out = append(out, p)
		}
	}
	return out
}

// choosePlayer asks for exactly one player, or nil.
func (e *Engine) choosePlayer(ctx context.Context, actor *domain.Player, kind ActionKind, text string, candidates []*domain.Player) *domain.Player {
	picked := e.choosePlayers(ctx, actor, kind, text, candidates, 1)
	if len(picked) == 0 {
		return nil
	}
	return picked[0]
}

// confirm asks a yes/no question. Silence is no.
func (e *Engine) confirm(ctx context.Context, actor *domain.Player, kind ActionKind, text string, timeout time.Duration) bool {
	picked := e.ask(ctx, actor, ChoiceRequest{Kind: kind, Text: text, Options: e.yesNo(), Max: 1, Timeout: timeout})
	return len(picked) == 1 && picked[0] == optionYes
}

func (e *Engine) markAsked(p *domain.Player) {
	e.mu.Lock()
	p.Asked = true
	e.mu.Unlock()
}

func (e *Engine) markResponded(p *domain.Player) {
	e.mu.Lock()
	p.Responded = true
	e.mu.Unlock()
}

// notify delivers narration to the given players and swallows failures.
func (e *Engine) notify(ctx context.Context, audience []*domain.Player, message string) {
	if len(audience) == 0 {
		return
	}
	ids := make([]string, 0, len(audience))
	for _, p := range audience {
		ids = append(ids, p.ID)
	}
	e.deliver(ctx, ids, message)
}

// notifyAll narrates to every seat, dead players included.
func (e *Engine) notifyAll(ctx context.Context, message string) {
	e.deliver(ctx, nil, message)
}

func (e *Engine) deliver(ctx context.Context, ids []string, message string) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, ids, message); err != nil {
		e.logger.Warn("notify failed", "audience", ids, "error", err)
	}
}

func (e *Engine) publish(event *domain.GameEvent) {
	if e.events != nil {
		e.events.Publish(event)
	}
}
