package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"werewolf/internal/domain"
)

func newTestRelays() (*Relays, *recorder) {
	rec := &recorder{}
	return newRelays(rec, slog.New(slog.NewTextHandler(io.Discard, nil))), rec
}

func TestRelaySayReachesOtherMembers(t *testing.T) {
	r, rec := newTestRelays()
	w1 := domain.NewPlayer("w1", "Ann", domain.RoleWerewolf)
	w2 := domain.NewPlayer("w2", "Bob", domain.RoleWerewolf)
	w3 := domain.NewPlayer("w3", "Cid", domain.RoleWerewolf)
	r.Open(relayWolves, []*domain.Player{w1, w2, w3})

	if err := r.Say(context.Background(), "w1", "Seer is v2"); err != nil {
		t.Fatalf("Say() error = %v", err)
	}
	if len(rec.notesTo("w1")) != 0 {
		t.Fatal("speaker heard their own line")
	}
	for _, id := range []string{"w2", "w3"} {
		notes := rec.notesTo(id)
		if len(notes) != 1 || notes[0] != "[wolves] Ann: Seer is v2" {
			t.Fatalf("%s notes = %v", id, notes)
		}
	}
}

func TestRelaySayWithoutRelay(t *testing.T) {
	r, _ := newTestRelays()
	if err := r.Say(context.Background(), "v1", "hello"); !errors.Is(err, domain.ErrNoRelay) {
		t.Fatalf("Say() error = %v, want %v", err, domain.ErrNoRelay)
	}
}

func TestRelayClosesWhenMembersDie(t *testing.T) {
	tests := []struct {
		name     string
		relay    string
		anchored bool
		dies     string
		wantOpen bool
	}{
		{"pack loses one of three", relayWolves, false, "a", true},
		{"jail loses the jailer", relayJail, true, "a", false},
		{"medium line loses a ghost", relayMedium, false, "c", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRelays()
			a := domain.NewPlayer("a", "a", domain.RoleJailer)
			b := domain.NewPlayer("b", "b", domain.RoleVillager)
			c := domain.NewPlayer("c", "c", domain.RoleVillager)
			var anchors []*domain.Player
			if tt.anchored {
				anchors = []*domain.Player{a}
			}
			r.Open(tt.relay, []*domain.Player{a, b, c}, anchors...)

			r.Died(tt.dies)

			if got := r.IsOpen(tt.relay); got != tt.wantOpen {
				t.Fatalf("open = %v, want %v", got, tt.wantOpen)
			}
		})
	}
}

func TestRelayNeedsTwoMembers(t *testing.T) {
	r, _ := newTestRelays()
	if r.Open(relayWolves, []*domain.Player{domain.NewPlayer("w1", "w1", domain.RoleWerewolf)}) {
		t.Fatal("Open() with one member = true, want false")
	}
	a := domain.NewPlayer("a", "a", domain.RoleWerewolf)
	b := domain.NewPlayer("b", "b", domain.RoleWerewolf)
	r.Open(relayWolves, []*domain.Player{a, b})
	r.Died("b")
	if r.IsOpen(relayWolves) {
		t.Fatal("relay with a single member left open")
	}
}

func TestDawnClosesNightRelays(t *testing.T) {
	e, _ := newTestEngine(t, []seat{
		{"w1", domain.RoleWerewolf},
		{"w2", domain.RoleWerewolf},
		{"v1", domain.RoleVillager},
		{"v2", domain.RoleVillager},
		{"v3", domain.RoleVillager},
	}, newScript())
	atNight(t, e, 2)

	out, err := e.resolveNight(context.Background())
	if err != nil {
		t.Fatalf("resolveNight() error = %v", err)
	}
	if !e.Relays().IsOpen(relayWolves) {
		t.Fatal("wolf relay not open at night")
	}
	e.dawn(context.Background(), out)
	if e.Relays().IsOpen(relayWolves) {
		t.Fatal("wolf relay open after dawn")
	}
}
