package engine

import (
	"context"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"werewolf/internal/domain"
)

type promptKey struct {
	player string
	kind   ActionKind
}

// scriptedPrompter answers prompts from a per-player, per-kind queue. A nil
// entry answers with an empty selection. Unscripted prompts time out.
type scriptedPrompter struct {
	mu      sync.Mutex
	script  map[promptKey][][]string
	asked   []promptKey
	fail    map[string]error
	lastReq map[promptKey]ChoiceRequest
}

func newScript() *scriptedPrompter {
	return &scriptedPrompter{
		script:  make(map[promptKey][][]string),
		fail:    make(map[string]error),
		lastReq: make(map[promptKey]ChoiceRequest),
	}
}

func (s *scriptedPrompter) on(player string, kind ActionKind, answers ...[]string) *scriptedPrompter {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := promptKey{player, kind}
	s.script[key] = append(s.script[key], answers...)
	return s
}

func (s *scriptedPrompter) Prompt(_ context.Context, playerID string, req ChoiceRequest) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := promptKey{playerID, req.Kind}
	s.asked = append(s.asked, key)
	s.lastReq[key] = req
	if err := s.fail[playerID]; err != nil {
		return nil, err
	}
	queue := s.script[key]
	if len(queue) == 0 {
		return nil, ErrTimeout
	}
	s.script[key] = queue[1:]
	return queue[0], nil
}

func (s *scriptedPrompter) wasAsked(player string, kind ActionKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range s.asked {
		if k.player == player && k.kind == kind {
			return true
		}
	}
	return false
}

type note struct {
	audience []string
	message  string
}

type recorder struct {
	mu     sync.Mutex
	notes  []note
	events []*domain.GameEvent
}

func (r *recorder) Notify(_ context.Context, audience []string, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note{audience: append([]string(nil), audience...), message: message})
	return nil
}

func (r *recorder) Publish(event *domain.GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) eventsOf(t domain.EventType) []*domain.GameEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.GameEvent
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recorder) notesTo(id string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.notes {
		for _, a := range n.audience {
			if a == id {
				out = append(out, n.message)
				break
			}
		}
	}
	return out
}

func testOptions() Options {
	return Options{
		PromptTimeout:     time.Second,
		NominationTimeout: time.Second,
		VotingTimeout:     time.Second,
		MaxNominations:    10,
		Language:          "en",
	}
}

// seat builds players named after their ids, e.g. seat("w1", RoleWerewolf).
type seat struct {
	id   string
	role domain.Role
}

func newTestEngine(t *testing.T, seats []seat, prompter Prompter) (*Engine, *recorder) {
	t.Helper()
	players := make([]*domain.Player, 0, len(seats))
	for _, s := range seats {
		players = append(players, domain.NewPlayer(s.id, s.id, s.role))
	}
	g, err := domain.NewGame("g1", players)
	if err != nil {
		t.Fatalf("NewGame() error = %v", err)
	}
	rec := &recorder{}
	e := New(g, Deps{
		Prompter: prompter,
		Notifier: rec,
		Events:   rec,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Rand:     rand.New(rand.NewSource(42)),
	}, testOptions())
	return e, rec
}

// atNight puts the game into a night after the first one, so first-night
// setup roles stay quiet.
func atNight(t *testing.T, e *Engine, round int) {
	t.Helper()
	e.game.Round = round
	if err := e.game.TransitionTo(domain.PhaseNight); err != nil {
		t.Fatalf("TransitionTo(night) error = %v", err)
	}
}

func at(e *Engine, id string) *domain.Player {
	return e.game.Lookup(id)
}

func one(id string) []string {
	return []string{id}
}

var yes = []string{optionYes}

func killedIDs(kills []Kill) []string {
	ids := make([]string, 0, len(kills))
	for _, k := range kills {
		ids = append(ids, k.Target.ID)
	}
	return ids
}
