// Package engine runs the round loop of a match: night resolution, the day
// election, the death pipeline and win evaluation.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"werewolf/internal/domain"
	"werewolf/internal/narrate"
)

// Options holds the timing and rule knobs of a match.
type Options struct {
	PromptTimeout     time.Duration
	NominationTimeout time.Duration
	VotingTimeout     time.Duration
	MaxNominations    int
	AFKStrikes        int // 0 disables the AFK check
	WitchDelayMin     time.Duration
	WitchDelayMax     time.Duration
	Language          string
}

// DefaultOptions returns the default match options
func DefaultOptions() Options {
	return Options{
		PromptTimeout:     60 * time.Second,
		NominationTimeout: 90 * time.Second,
		VotingTimeout:     60 * time.Second,
		MaxNominations:    10,
		AFKStrikes:        3,
		WitchDelayMin:     2 * time.Second,
		WitchDelayMax:     8 * time.Second,
		Language:          "en",
	}
}

// Deps are the collaborators the engine talks to.
type Deps struct {
	Prompter Prompter
	Notifier Notifier
	Events   EventSink
	Observer Observer
	Logger   *slog.Logger
	Rand     *rand.Rand
}

// Engine owns one match. Only the goroutine running Run mutates the game.
type Engine struct {
	game     *domain.Game
	prompter Prompter
	notifier Notifier
	events   EventSink
	observer Observer
	logger   *slog.Logger
	rng      *rand.Rand
	opts     Options
	relays   *Relays
	narrator *narrate.Narrator
	tracer   trace.Tracer

	mu sync.Mutex // guards Player.Asked and Player.Responded during concurrent prompts
}

// New creates an engine for a dealt game.
func New(game *domain.Game, deps Deps, opts Options) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.MaxNominations <= 0 {
		opts.MaxNominations = 10
	}
	if opts.PromptTimeout <= 0 {
		opts.PromptTimeout = DefaultOptions().PromptTimeout
	}
	logger = logger.With("game", game.ID)
	return &Engine{
		game:     game,
		prompter: deps.Prompter,
		notifier: deps.Notifier,
		events:   deps.Events,
		observer: deps.Observer,
		logger:   logger,
		rng:      rng,
		opts:     opts,
		relays:   newRelays(deps.Notifier, logger),
		narrator: narrate.New(opts.Language),
		tracer:   otel.Tracer("werewolf/internal/engine"),
	}
}

// Game returns the match state. Only safe to read from the Run goroutine or
// after Run returns.
func (e *Engine) Game() *domain.Game {
	return e.game
}

// Relays returns the private lines of the current phase.
func (e *Engine) Relays() *Relays {
	return e.relays
}

// Run plays the match until a win condition fires or ctx ends.
func (e *Engine) Run(ctx context.Context) (*domain.Victory, error) {
	g := e.game
	if g.Phase != domain.PhaseLobby {
		return nil, fmt.Errorf("run game %s: %w", g.ID, domain.ErrInvalidPhase)
	}
	defer e.relays.CloseAll()

	e.start(ctx)

	for !g.IsOver() {
		g.Round++
		if err := e.setPhase(domain.PhaseNight); err != nil {
			return nil, err
		}
		e.publish(domain.NewEvent(domain.EventRoundStarted, g.ID, &domain.RoundStartedPayload{
			Round:   g.Round,
			Players: g.GetPlayerInfoList(),
		}))
		e.notifyAll(ctx, e.narrator.NightFalls(g.Round))

		outcome, err := e.resolveNight(ctx)
		if err != nil {
			return nil, err
		}
		e.dawn(ctx, outcome)
		e.phaseCompleted(ctx)
		if g.IsOver() {
			break
		}

		if err := e.runDay(ctx); err != nil {
			return nil, err
		}
		e.phaseCompleted(ctx)
	}

	return e.finish(ctx), nil
}

// start deals out the knowledge every player has before night 1.
func (e *Engine) start(ctx context.Context) {
	g := e.game
	for _, p := range g.Players {
		e.publish(domain.NewPlayerEvent(domain.EventRoleAssigned, g.ID, p.ID, &domain.RoleAssignedPayload{Role: p.Role}))
	}

	for _, hh := range g.AliveWithRole(domain.RoleHeadHunter) {
		var targets []*domain.Player
		for _, p := range g.AliveExcept(hh.ID) {
			if p.Side() == domain.SideVillagers {
				targets = append(targets, p)
			}
		}
		if len(targets) == 0 {
			hh.SetRole(domain.RoleVillager)
			continue
		}
		target := targets[e.rng.Intn(len(targets))]
		hh.HeadHunterTarget = target.ID
		e.notify(ctx, []*domain.Player{hh}, e.narrator.HuntTarget(target.Nickname))
	}

	for _, p := range g.AliveWithRole(domain.RolePureSoul) {
		e.reveal(ctx, p)
	}

	siblings := append(g.AliveWithRole(domain.RoleSister), g.AliveWithRole(domain.RoleBrother)...)
	for _, a := range siblings {
		for _, b := range siblings {
			if a.ID != b.ID && a.Role == b.Role {
				a.Learn(b.ID, b.Role)
				e.notify(ctx, []*domain.Player{a}, e.narrator.RoleOf(b.Nickname, b.Role))
			}
		}
	}

	e.logger.Info("match started", "players", len(g.Players))
}

// dawn applies the night's deaths, then the queued resurrections.
func (e *Engine) dawn(ctx context.Context, outcome *NightOutcome) {
	g := e.game
	e.relays.CloseAll()

	// Cascades (lovers, hunters, avengers) count as night deaths too
	before := len(g.Alive())
	for _, k := range outcome.Kills {
		e.kill(ctx, k.Target, k.Cause)
	}
	deaths := before - len(g.Alive())

	for _, p := range g.DrainResurrections() {
		p.Revive()
		e.publish(domain.NewEvent(domain.EventPlayerRevived, g.ID, &domain.PlayerRevivedPayload{PlayerID: p.ID}))
		e.notifyAll(ctx, e.narrator.Revived(p.Nickname))
	}

	for _, p := range g.Players {
		p.ClearNight()
	}

	e.notifyAll(ctx, e.narrator.Dawn(g.Round, deaths))
	e.settle()
}

// finish announces the result and closes the match.
func (e *Engine) finish(ctx context.Context) *domain.Victory {
	g := e.game
	if err := e.setPhase(domain.PhaseEnded); err != nil {
		e.logger.Error("failed to end match", "error", err)
		g.Phase = domain.PhaseEnded
	}

	v := g.Victory
	roles := make(map[string]domain.Role, len(g.Players))
	for _, p := range g.Players {
		roles[p.ID] = p.Role
	}
	names := make([]string, 0, len(v.Winners))
	for _, id := range v.Winners {
		if p := g.Lookup(id); p != nil {
			names = append(names, p.Nickname)
		}
	}

	e.publish(domain.NewEvent(domain.EventGameEnded, g.ID, &domain.GameEndedPayload{
		Reason:  v.Reason,
		Side:    v.Side,
		Winners: v.Winners,
		Roles:   roles,
	}))
	e.notifyAll(ctx, e.narrator.Victory(v, names))
	e.logger.Info("match ended", "reason", v.Reason, "side", v.Side, "winners", len(v.Winners), "rounds", g.Round)
	e.phaseCompleted(ctx)
	return v
}

// settle re-runs the win evaluator and latches any result.
func (e *Engine) settle() {
	e.game.Settle(domain.EvaluateWin(e.game))
}

func (e *Engine) setPhase(p domain.Phase) error {
	if err := e.game.TransitionTo(p); err != nil {
		return err
	}
	e.publish(domain.NewEvent(domain.EventPhaseChanged, e.game.ID, &domain.PhaseChangedPayload{
		Round: e.game.Round,
		Phase: p,
	}))
	return nil
}

func (e *Engine) phaseCompleted(ctx context.Context) {
	if e.observer != nil {
		e.observer.PhaseCompleted(ctx, e.game)
	}
}

func (e *Engine) reveal(ctx context.Context, p *domain.Player) {
	if p.RoleRevealed {
		return
	}
	p.RoleRevealed = true
	e.publish(domain.NewEvent(domain.EventRoleRevealed, e.game.ID, &domain.RoleRevealedPayload{PlayerID: p.ID, Role: p.Role}))
	e.notifyAll(ctx, e.narrator.RoleOf(p.Nickname, p.Role))
}

// step is one role's private decision. It runs concurrently with its
// siblings and returns a commit that the resolver applies in order.
type step func(ctx context.Context) func()

// fanOut runs steps concurrently, then applies their commits sequentially in
// the order the steps were given. Steps only read game state; commits write it.
func (e *Engine) fanOut(ctx context.Context, steps []step) error {
	commits := make([]func(), len(steps))
	var grp errgroup.Group
	for i, s := range steps {
		grp.Go(func() error {
			commits[i] = s(ctx)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, c := range commits {
		if c != nil {
			c()
		}
	}
	return nil
}

func (e *Engine) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("game.id", e.game.ID),
		attribute.Int("game.round", e.game.Round),
	))
}

// sleep waits for d unless ctx ends first.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
