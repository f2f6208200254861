package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestNewGameValidatesRoster(t *testing.T) {
	if _, err := NewGame("g", []*Player{NewPlayer("a", "A", Role("NECROMANCER"))}); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("NewGame() error = %v, want %v", err, ErrUnknownRole)
	}
	if _, err := NewGame("g", []*Player{NewPlayer("a", "A", RoleVillager), NewPlayer("a", "B", RoleSeer)}); err == nil {
		t.Fatal("NewGame() with duplicate ids should fail")
	}
}

func TestPhaseTransitions(t *testing.T) {
	g := table(t, seat("w1", RoleWerewolf), seat("v1", RoleVillager))
	steps := []Phase{PhaseNight, PhaseNomination, PhaseVoting, PhaseResolution, PhaseNomination, PhaseResolution, PhaseNight, PhaseEnded}
	for _, p := range steps {
		if err := g.TransitionTo(p); err != nil {
			t.Fatalf("TransitionTo(%s) error = %v", p, err)
		}
	}
	if err := g.TransitionTo(PhaseNight); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("TransitionTo(night) after end error = %v, want %v", err, ErrInvalidTransition)
	}
}

func TestNeighborsSkipTheDead(t *testing.T) {
	g := table(t, seat("a", RoleVillager), seat("+b", RoleVillager), seat("c", RoleVillager), seat("d", RoleVillager))
	got := make([]string, 0, 2)
	for _, p := range g.Neighbors("a") {
		got = append(got, p.ID)
	}
	if want := []string{"d", "c"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Neighbors(a) = %v, want %v", got, want)
	}
}

func TestResurrectionQueue(t *testing.T) {
	g := table(t, seat("a", RoleVillager), seat("+b", RoleVillager))
	g.QueueResurrection("b")
	g.QueueResurrection("b")
	g.QueueResurrection("a")

	revived := g.DrainResurrections()
	if len(revived) != 1 || revived[0].ID != "b" {
		t.Fatalf("drained = %v, want only b", revived)
	}
	if len(g.Resurrections) != 0 {
		t.Fatal("queue not cleared")
	}
}

func TestStateSurvivesSerialisation(t *testing.T) {
	g := table(t, seat("w1", RoleWerewolf), seat("v1", RoleVillager), seat("v2", RoleVillager))
	if err := g.Bond(g.Lookup("v1"), g.Lookup("v2")); err != nil {
		t.Fatalf("Bond() error = %v", err)
	}
	g.Lookup("w1").Spend(PowerCurse)
	g.Round = 2

	data, err := g.MarshalState()
	if err != nil {
		t.Fatalf("MarshalState() error = %v", err)
	}
	restored, err := UnmarshalState(data)
	if err != nil {
		t.Fatalf("UnmarshalState() error = %v", err)
	}
	if restored.Round != 2 || restored.Lookup("v2") == nil {
		t.Fatal("restored game lost its roster")
	}
	if !restored.Lookup("w1").HasSpent(PowerCurse) {
		t.Fatal("spent power lost")
	}
	if c := restored.ChainOf("v1"); c == nil || !c.Has("v2") {
		t.Fatal("love chain lost")
	}
}

func TestLobby(t *testing.T) {
	l := NewLobby("ROOM", LobbySettings{MinPlayers: 2, MaxPlayers: 3})
	if _, err := l.AddMember("a", "  "); !errors.Is(err, ErrEmptyNickname) {
		t.Fatalf("AddMember(blank) error = %v, want %v", err, ErrEmptyNickname)
	}
	for _, id := range []string{"a", "b", "c"} {
		if _, err := l.AddMember(id, id); err != nil {
			t.Fatalf("AddMember(%s) error = %v", id, err)
		}
	}
	if _, err := l.AddMember("d", "d"); !errors.Is(err, ErrGameFull) {
		t.Fatalf("AddMember(d) error = %v, want %v", err, ErrGameFull)
	}
	if !l.IsHost("a") || !l.CanStart() {
		t.Fatal("first member should host a startable lobby")
	}
	if err := l.RemoveMember("a"); err != nil {
		t.Fatalf("RemoveMember(a) error = %v", err)
	}
	if l.HostID == "a" || l.HostID == "" {
		t.Fatalf("host = %q after the host left", l.HostID)
	}

	l.Started = true
	if _, err := l.AddMember("e", "e"); !errors.Is(err, ErrGameAlreadyStarted) {
		t.Fatalf("AddMember after start error = %v, want %v", err, ErrGameAlreadyStarted)
	}
}
