package engine

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"werewolf/internal/domain"
)

func TestCursedBittenByWolvesJoinsThePack(t *testing.T) {
	script := newScript().on("w1", ActionWolfVote, one("c"))
	e, rec := newTestEngine(t, []seat{
		{"w1", domain.RoleWerewolf},
		{"c", domain.RoleCursed},
		{"v1", domain.RoleVillager},
		{"v2", domain.RoleVillager},
		{"v3", domain.RoleVillager},
	}, script)
	atNight(t, e, 2)

	out, err := e.resolveNight(context.Background())
	if err != nil {
		t.Fatalf("resolveNight() error = %v", err)
	}
	if len(out.Kills) != 0 {
		t.Fatalf("kills = %v, want none", killedIDs(out.Kills))
	}
	c := at(e, "c")
	if c.Role != domain.RoleWerewolf || !c.IsAlive() || !c.InPack() {
		t.Fatalf("cursed = role %s alive %v pack %v, want living werewolf", c.Role, c.IsAlive(), c.InPack())
	}
	if len(rec.notesTo("c")) == 0 {
		t.Fatal("converted player was not told")
	}
}

func TestBodyguardFallsOnSecondIntercept(t *testing.T) {
	script := newScript().
		on("bg", ActionProtect, one("v1"), one("v1")).
		on("w1", ActionWolfVote, one("v1"), one("v1"))
	e, _ := newTestEngine(t, []seat{
		{"w1", domain.RoleWerewolf},
		{"bg", domain.RoleBodyguard},
		{"v1", domain.RoleVillager},
		{"v2", domain.RoleVillager},
		{"v3", domain.RoleVillager},
	}, script)
	atNight(t, e, 2)

	out, err := e.resolveNight(context.Background())
	if err != nil {
		t.Fatalf("resolveNight() error = %v", err)
	}
	if len(out.Kills) != 0 {
		t.Fatalf("night 2 kills = %v, want none", killedIDs(out.Kills))
	}
	if got := at(e, "bg").BodyguardIntercepts; got != 1 {
		t.Fatalf("intercepts = %d, want 1", got)
	}

	for _, p := range e.game.Players {
		p.ClearNight()
	}
	e.game.Round = 3
	out, err = e.resolveNight(context.Background())
	if err != nil {
		t.Fatalf("resolveNight() error = %v", err)
	}
	want := []string{"bg"}
	if got := killedIDs(out.Kills); !reflect.DeepEqual(got, want) {
		t.Fatalf("night 3 kills = %v, want %v", got, want)
	}
	if out.Kills[0].Cause != domain.CauseBodyguard {
		t.Fatalf("cause = %s, want %s", out.Kills[0].Cause, domain.CauseBodyguard)
	}
}

func TestDoctorAndHealerProtection(t *testing.T) {
	tests := []struct {
		name      string
		protector seat
		lastHeal  string
		wantKills []string
	}{
		{"doctor saves", seat{"d", domain.RoleDoctor}, "", []string{}},
		{"healer saves", seat{"d", domain.RoleHealer}, "", []string{}},
		{"healer cannot repeat", seat{"d", domain.RoleHealer}, "v1", []string{"v1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := newScript().
				on("d", ActionProtect, one("v1")).
				on("w1", ActionWolfVote, one("v1"))
			e, _ := newTestEngine(t, []seat{
				{"w1", domain.RoleWerewolf},
				tt.protector,
				{"v1", domain.RoleVillager},
				{"v2", domain.RoleVillager},
				{"v3", domain.RoleVillager},
			}, script)
			at(e, "d").HealerLastTarget = tt.lastHeal
			atNight(t, e, 2)

			out, err := e.resolveNight(context.Background())
			if err != nil {
				t.Fatalf("resolveNight() error = %v", err)
			}
			if got := killedIDs(out.Kills); !reflect.DeepEqual(got, tt.wantKills) {
				t.Fatalf("kills = %v, want %v", got, tt.wantKills)
			}
		})
	}
}

func TestJailerExecutionIgnoresProtection(t *testing.T) {
	script := newScript().
		on("j", ActionJailerKill, yes).
		on("w1", ActionWolfVote, one("v1"))
	e, _ := newTestEngine(t, []seat{
		{"w1", domain.RoleWerewolf},
		{"j", domain.RoleJailer},
		{"p", domain.RoleVillager},
		{"v1", domain.RoleVillager},
		{"v2", domain.RoleVillager},
	}, script)
	e.game.JailedID = "p"
	atNight(t, e, 2)

	out, err := e.resolveNight(context.Background())
	if err != nil {
		t.Fatalf("resolveNight() error = %v", err)
	}
	want := []string{"p", "v1"}
	if got := killedIDs(out.Kills); !reflect.DeepEqual(got, want) {
		t.Fatalf("kills = %v, want %v", got, want)
	}
	if out.Kills[0].Cause != domain.CauseJailer {
		t.Fatalf("prisoner cause = %s, want %s", out.Kills[0].Cause, domain.CauseJailer)
	}
	if !at(e, "j").HasSpent(domain.PowerExecute) {
		t.Fatal("execution was not spent")
	}
	if !e.Relays().IsOpen(relayJail) {
		t.Fatal("jail relay is not open during the night")
	}
}

func TestPrisonerIsProtectedAndCannotAct(t *testing.T) {
	script := newScript().
		on("w1", ActionWolfVote, one("s")).
		on("s", ActionInspect, one("w1"))
	e, _ := newTestEngine(t, []seat{
		{"w1", domain.RoleWerewolf},
		{"j", domain.RoleJailer},
		{"s", domain.RoleSeer},
		{"v1", domain.RoleVillager},
		{"v2", domain.RoleVillager},
	}, script)
	e.game.JailedID = "s"
	atNight(t, e, 2)

	out, err := e.resolveNight(context.Background())
	if err != nil {
		t.Fatalf("resolveNight() error = %v", err)
	}
	if len(out.Kills) != 0 {
		t.Fatalf("kills = %v, want none", killedIDs(out.Kills))
	}
	if script.wasAsked("s", ActionInspect) {
		t.Fatal("prisoner was asked to inspect")
	}
}

func TestWitchHealsAndPoisons(t *testing.T) {
	script := newScript().
		on("w1", ActionWolfVote, one("v1")).
		on("wi", ActionWitchHeal, one("v1")).
		on("wi", ActionWitchPoison, one("v2"))
	e, _ := newTestEngine(t, []seat{
		{"w1", domain.RoleWerewolf},
		{"wi", domain.RoleWitch},
		{"v1", domain.RoleVillager},
		{"v2", domain.RoleVillager},
		{"v3", domain.RoleVillager},
	}, script)
	atNight(t, e, 2)

	out, err := e.resolveNight(context.Background())
	if err != nil {
		t.Fatalf("resolveNight() error = %v", err)
	}
	want := []string{"v2"}
	if got := killedIDs(out.Kills); !reflect.DeepEqual(got, want) {
		t.Fatalf("kills = %v, want %v", got, want)
	}
	if out.Kills[0].Cause != domain.CauseWitch {
		t.Fatalf("cause = %s, want %s", out.Kills[0].Cause, domain.CauseWitch)
	}
	wi := at(e, "wi")
	if !wi.HasSpent(domain.PowerWitchHeal) || !wi.HasSpent(domain.PowerWitchPoison) {
		t.Fatal("witch potions were not spent")
	}
}

func TestIndecisiveWolvesKillNobody(t *testing.T) {
	e, rec := newTestEngine(t, []seat{
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
	if len(out.Kills) != 0 {
		t.Fatalf("kills = %v, want none", killedIDs(out.Kills))
	}
	notes := rec.notesTo("w1")
	if len(notes) == 0 || !strings.Contains(notes[len(notes)-1], "could not decide") {
		t.Fatalf("pack notes = %v, want indecision notice", notes)
	}
}

func TestWolvesCannotTargetOwnLover(t *testing.T) {
	script := newScript().on("w1", ActionWolfVote, one("v1"), one("v1"))
	e, _ := newTestEngine(t, []seat{
		{"w1", domain.RoleWerewolf},
		{"v1", domain.RoleVillager},
		{"v2", domain.RoleVillager},
		{"v3", domain.RoleVillager},
	}, script)
	if err := e.game.Bond(at(e, "w1"), at(e, "v1")); err != nil {
		t.Fatalf("Bond() error = %v", err)
	}
	atNight(t, e, 2)

	out, err := e.resolveNight(context.Background())
	if err != nil {
		t.Fatalf("resolveNight() error = %v", err)
	}
	if len(out.Kills) != 0 {
		t.Fatalf("kills = %v, want none", killedIDs(out.Kills))
	}
	for _, o := range script.lastReq[promptKey{"w1", ActionWolfVote}].Options {
		if o.ID == "v1" {
			t.Fatal("lover offered as a victim")
		}
	}
}

func TestCursedWolfFatherCursesInsteadOfKilling(t *testing.T) {
	script := newScript().
		on("cwf", ActionWolfVote, one("v1")).
		on("cwf", ActionCurse, yes)
	e, _ := newTestEngine(t, []seat{
		{"cwf", domain.RoleCursedWolfFather},
		{"v1", domain.RoleSeer},
		{"v2", domain.RoleVillager},
		{"v3", domain.RoleVillager},
	}, script)
	atNight(t, e, 2)

	out, err := e.resolveNight(context.Background())
	if err != nil {
		t.Fatalf("resolveNight() error = %v", err)
	}
	if len(out.Kills) != 0 {
		t.Fatalf("kills = %v, want none", killedIDs(out.Kills))
	}
	v1 := at(e, "v1")
	if !v1.Cursed || v1.Side() != domain.SideWolves || v1.Role != domain.RoleSeer {
		t.Fatalf("cursed victim = cursed %v side %s role %s", v1.Cursed, v1.Side(), v1.Role)
	}
}

func TestExtraKillsWhilePackIsWhole(t *testing.T) {
	tests := []struct {
		name        string
		round       int
		wolfHasDied bool
		seats       []seat
		script      *scriptedPrompter
		want        []string
	}{
		{
			name:  "big bad wolf",
			round: 3,
			seats: []seat{{"x", domain.RoleBigBadWolf}, {"w1", domain.RoleWerewolf}, {"v1", domain.RoleVillager}, {"v2", domain.RoleVillager}, {"v3", domain.RoleVillager}},
			script: newScript().
				on("x", ActionWolfVote, one("v1")).
				on("w1", ActionWolfVote, one("v1")).
				on("x", ActionExtraKill, one("v2")),
			want: []string{"v1", "v2"},
		},
		{
			name:        "big bad wolf after a wolf died",
			round:       3,
			wolfHasDied: true,
			seats:       []seat{{"x", domain.RoleBigBadWolf}, {"w1", domain.RoleWerewolf}, {"v1", domain.RoleVillager}, {"v2", domain.RoleVillager}, {"v3", domain.RoleVillager}},
			script: newScript().
				on("x", ActionWolfVote, one("v1")).
				on("w1", ActionWolfVote, one("v1")).
				on("x", ActionExtraKill, one("v2")),
			want: []string{"v1"},
		},
		{
			name:  "white wolf on an even night",
			round: 2,
			seats: []seat{{"x", domain.RoleWhiteWolf}, {"w1", domain.RoleWerewolf}, {"v1", domain.RoleVillager}, {"v2", domain.RoleVillager}, {"v3", domain.RoleVillager}},
			script: newScript().
				on("x", ActionWolfVote, one("v1")).
				on("w1", ActionWolfVote, one("v1")).
				on("x", ActionExtraKill, one("w1")),
			want: []string{"v1", "w1"},
		},
		{
			name:  "white wolf rests on odd nights",
			round: 3,
			seats: []seat{{"x", domain.RoleWhiteWolf}, {"w1", domain.RoleWerewolf}, {"v1", domain.RoleVillager}, {"v2", domain.RoleVillager}, {"v3", domain.RoleVillager}},
			script: newScript().
				on("x", ActionWolfVote, one("v1")).
				on("w1", ActionWolfVote, one("v1")).
				on("x", ActionExtraKill, one("w1")),
			want: []string{"v1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine(t, tt.seats, tt.script)
			e.game.WolfHasDied = tt.wolfHasDied
			atNight(t, e, tt.round)

			out, err := e.resolveNight(context.Background())
			if err != nil {
				t.Fatalf("resolveNight() error = %v", err)
			}
			if got := killedIDs(out.Kills); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("kills = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRedLady(t *testing.T) {
	tests := []struct {
		name  string
		visit string
		want  []string
	}{
		{"away from home survives", "v1", []string{}},
		{"visiting a wolf is fatal", "w1", []string{"rl"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := newScript().
				on("rl", ActionVisit, one(tt.visit)).
				on("w1", ActionWolfVote, one("rl"))
			e, _ := newTestEngine(t, []seat{
				{"w1", domain.RoleWerewolf},
				{"rl", domain.RoleRedLady},
				{"v1", domain.RoleVillager},
				{"v2", domain.RoleVillager},
				{"v3", domain.RoleVillager},
			}, script)
			atNight(t, e, 2)

			out, err := e.resolveNight(context.Background())
			if err != nil {
				t.Fatalf("resolveNight() error = %v", err)
			}
			if got := killedIDs(out.Kills); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("kills = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWolfShamanShieldBluntsAKill(t *testing.T) {
	script := newScript().on("sh", ActionShield, one("w1"))
	e, _ := newTestEngine(t, []seat{
		{"sh", domain.RoleWolfShaman},
		{"w1", domain.RoleWerewolf},
		{"v1", domain.RoleVillager},
		{"v2", domain.RoleVillager},
		{"v3", domain.RoleVillager},
	}, script)
	atNight(t, e, 2)

	if _, err := e.resolveNight(context.Background()); err != nil {
		t.Fatalf("resolveNight() error = %v", err)
	}
	w1 := at(e, "w1")
	if w1.Lives != 2 {
		t.Fatalf("lives = %d, want 2", w1.Lives)
	}
	if e.kill(context.Background(), w1, domain.CauseWitch) {
		t.Fatal("shielded wolf died on the first hit")
	}
	if !w1.IsAlive() || w1.Lives != 1 {
		t.Fatalf("after hit: alive %v lives %d, want alive with 1", w1.IsAlive(), w1.Lives)
	}
}

func TestInvestigators(t *testing.T) {
	script := newScript().
		on("s", ActionInspect, one("w1")).
		on("as", ActionInspect, one("v1")).
		on("sh", ActionInspect, one("w1"))
	e, rec := newTestEngine(t, []seat{
		{"w1", domain.RoleWerewolf},
		{"s", domain.RoleSeer},
		{"as", domain.RoleAuraSeer},
		{"sh", domain.RoleSheriff},
		{"v1", domain.RoleVillager},
	}, script)
	atNight(t, e, 2)

	if _, err := e.resolveNight(context.Background()); err != nil {
		t.Fatalf("resolveNight() error = %v", err)
	}
	if got := at(e, "s").RevealedRoles["w1"]; got != domain.RoleWerewolf {
		t.Fatalf("seer learned %s, want %s", got, domain.RoleWerewolf)
	}
	checks := map[string]string{
		"s":  "w1 is the Werewolf.",
		"as": "v1's aura is good.",
		"sh": "w1 is suspicious.",
	}
	for id, want := range checks {
		found := false
		for _, n := range rec.notesTo(id) {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("%s notes = %v, want %q", id, rec.notesTo(id), want)
		}
	}
}

func TestFoxLosesSenseOnCleanReading(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		wantSpent bool
	}{
		{"clean trio", "v2", true},
		{"wolf next door", "v4", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := newScript().on("fox", ActionInspect, one(tt.target))
			e, _ := newTestEngine(t, []seat{
				{"w1", domain.RoleWerewolf},
				{"fox", domain.RoleFox},
				{"v1", domain.RoleVillager},
				{"v2", domain.RoleVillager},
				{"v3", domain.RoleVillager},
				{"v4", domain.RoleVillager},
			}, script)
			atNight(t, e, 2)

			if _, err := e.resolveNight(context.Background()); err != nil {
				t.Fatalf("resolveNight() error = %v", err)
			}
			if got := at(e, "fox").HasSpent(domain.PowerFoxSense); got != tt.wantSpent {
				t.Fatalf("spent = %v, want %v", got, tt.wantSpent)
			}
		})
	}
}

func TestMediumResurrectionAppliesAtDawn(t *testing.T) {
	script := newScript().on("m", ActionRevive, one("v1"))
	e, rec := newTestEngine(t, []seat{
		{"w1", domain.RoleWerewolf},
		{"m", domain.RoleMedium},
		{"v1", domain.RoleVillager},
		{"v2", domain.RoleVillager},
		{"v3", domain.RoleVillager},
	}, script)
	at(e, "v1").Lives = 0
	atNight(t, e, 2)

	out, err := e.resolveNight(context.Background())
	if err != nil {
		t.Fatalf("resolveNight() error = %v", err)
	}
	if want := []string{"v1"}; !reflect.DeepEqual(out.Resurrections, want) {
		t.Fatalf("resurrections = %v, want %v", out.Resurrections, want)
	}
	if at(e, "v1").IsAlive() {
		t.Fatal("resurrection applied before dawn")
	}

	e.dawn(context.Background(), out)
	if !at(e, "v1").IsAlive() {
		t.Fatal("v1 was not revived at dawn")
	}
	if got := len(rec.eventsOf(domain.EventPlayerRevived)); got != 1 {
		t.Fatalf("revived events = %d, want 1", got)
	}
	if !at(e, "m").HasSpent(domain.PowerSeance) {
		t.Fatal("seance was not spent")
	}
}

func TestInfectorsNeverKill(t *testing.T) {
	script := newScript().
		on("fl", ActionEnchant, []string{"v1", "v2"}).
		on("ss", ActionInfect, one("v1"))
	e, _ := newTestEngine(t, []seat{
		{"w1", domain.RoleWerewolf},
		{"fl", domain.RoleFlutist},
		{"ss", domain.RoleSuperspreader},
		{"v1", domain.RoleVillager},
		{"v2", domain.RoleVillager},
	}, script)
	atNight(t, e, 2)

	out, err := e.resolveNight(context.Background())
	if err != nil {
		t.Fatalf("resolveNight() error = %v", err)
	}
	if len(out.Kills) != 0 {
		t.Fatalf("kills = %v, want none", killedIDs(out.Kills))
	}
	if !at(e, "v1").Enchanted || !at(e, "v2").Enchanted || !at(e, "v1").Infected {
		t.Fatal("infector progress was not recorded")
	}
}

func TestFirstNightSetup(t *testing.T) {
	script := newScript().
		on("amor", ActionAmor, []string{"a", "b"}).
		on("thief", ActionThief, one("s")).
		on("hound", ActionWolfhound, one(string(domain.RoleWerewolf)))
	e, rec := newTestEngine(t, []seat{
		{"w1", domain.RoleWerewolf},
		{"amor", domain.RoleAmor},
		{"thief", domain.RoleThief},
		{"hound", domain.RoleWolfhound},
		{"s", domain.RoleSeer},
		{"a", domain.RoleVillager},
		{"b", domain.RoleVillager},
	}, script)
	atNight(t, e, 1)

	if _, err := e.resolveNight(context.Background()); err != nil {
		t.Fatalf("resolveNight() error = %v", err)
	}

	chain := e.game.ChainOf("a")
	if chain == nil || !chain.Has("b") {
		t.Fatal("a and b are not bonded")
	}
	if len(rec.notesTo("a")) == 0 || len(rec.notesTo("b")) == 0 {
		t.Fatal("lovers were not told")
	}
	if got := at(e, "thief").Role; got != domain.RoleSeer {
		t.Fatalf("thief role = %s, want %s", got, domain.RoleSeer)
	}
	if got := at(e, "s").Role; got != domain.RoleVillager {
		t.Fatalf("robbed role = %s, want %s", got, domain.RoleVillager)
	}
	if got := at(e, "hound").Role; got != domain.RoleWerewolf {
		t.Fatalf("wolfhound role = %s, want %s", got, domain.RoleWerewolf)
	}
	if !e.Relays().IsOpen(relayWolves) {
		t.Fatal("wolf relay should include the wolfhound")
	}
}

func TestWolfhoundDefaultsToVillager(t *testing.T) {
	e, _ := newTestEngine(t, []seat{
		{"w1", domain.RoleWerewolf},
		{"hound", domain.RoleWolfhound},
		{"v1", domain.RoleVillager},
		{"v2", domain.RoleVillager},
	}, newScript())
	atNight(t, e, 1)

	if _, err := e.resolveNight(context.Background()); err != nil {
		t.Fatalf("resolveNight() error = %v", err)
	}
	if got := at(e, "hound").Role; got != domain.RoleVillager {
		t.Fatalf("wolfhound role = %s, want %s", got, domain.RoleVillager)
	}
}

func TestDepoweredVillageLosesNightAbilities(t *testing.T) {
	script := newScript().
		on("d", ActionProtect, one("v1")).
		on("w1", ActionWolfVote, one("v1"))
	e, _ := newTestEngine(t, []seat{
		{"w1", domain.RoleWerewolf},
		{"d", domain.RoleDoctor},
		{"v1", domain.RoleVillager},
		{"v2", domain.RoleVillager},
	}, script)
	e.game.VillageDepowered = true
	atNight(t, e, 2)

	out, err := e.resolveNight(context.Background())
	if err != nil {
		t.Fatalf("resolveNight() error = %v", err)
	}
	if want := []string{"v1"}; !reflect.DeepEqual(killedIDs(out.Kills), want) {
		t.Fatalf("kills = %v, want %v", killedIDs(out.Kills), want)
	}
	if script.wasAsked("d", ActionProtect) {
		t.Fatal("depowered doctor was asked to protect")
	}
}

func TestSwappedElderLifeFollowsTheRole(t *testing.T) {
	tests := []struct {
		name   string
		actor  domain.Role
		kind   ActionKind
		answer []string
		heir   string
	}{
		{"thief", domain.RoleThief, ActionThief, one("el"), "x"},
		{"troublemaker", domain.RoleTroublemaker, ActionTroublemaker, []string{"el", "v1"}, "v1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			script := newScript().on("x", tt.kind, tt.answer)
			e, _ := newTestEngine(t, []seat{
				{"w1", domain.RoleWerewolf},
				{"el", domain.RoleElder},
				{"v1", domain.RoleVillager},
				{"v2", domain.RoleVillager},
				{"x", tt.actor},
			}, script)
			ctx := context.Background()

			if err := e.firstNight(ctx); err != nil {
				t.Fatalf("firstNight() error = %v", err)
			}
			former, heir := at(e, "el"), at(e, tt.heir)
			if heir.Role != domain.RoleElder || heir.Lives != 2 {
				t.Fatalf("heir role = %s lives = %d, want %s with 2", heir.Role, heir.Lives, domain.RoleElder)
			}
			if former.Lives != 1 {
				t.Fatalf("former elder lives = %d, want 1", former.Lives)
			}
			if !e.kill(ctx, former, domain.CauseWolves) {
				t.Fatal("former elder survived a wolf bite")
			}
			if e.kill(ctx, heir, domain.CauseWolves) || heir.IsDead() {
				t.Fatal("new elder lost the spare life")
			}
		})
	}
}
