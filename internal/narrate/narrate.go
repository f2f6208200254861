// Package narrate renders the game master's lines for a player's language.
package narrate

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"werewolf/internal/domain"
)

// Narrator formats narration with locale-aware number formatting.
type Narrator struct {
	p *message.Printer
}

// New returns a narrator for a BCP 47 language tag. Unknown tags fall back
// to English.
func New(lang string) *Narrator {
	tag, err := language.Parse(strings.TrimSpace(lang))
	if err != nil {
		tag = language.English
	}
	return &Narrator{p: message.NewPrinter(tag)}
}

// Label turns an enum value such as BIG_BAD_WOLF into "Big Bad Wolf".
func Label(s string) string {
	words := strings.Split(strings.ToLower(s), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// NightFalls opens a night.
func (n *Narrator) NightFalls(round int) string {
	return n.p.Sprintf("Night %d falls. Everyone goes to sleep.", round)
}

// Dawn opens a day and says how many players died overnight.
func (n *Narrator) Dawn(round, deaths int) string {
	if deaths == 0 {
		return n.p.Sprintf("Day %d breaks and nobody died tonight.", round)
	}
	return n.p.Sprintf("Day %d breaks. %d player(s) did not wake up.", round, deaths)
}

// Died announces a death with its cause and the revealed role.
func (n *Narrator) Died(name string, role domain.Role, cause domain.DeathCause) string {
	return n.p.Sprintf("%s died (%s). They were the %s.", name, Label(string(cause)), Label(string(role)))
}

// ShieldHeld tells a player that a spare life absorbed an attack.
func (n *Narrator) ShieldHeld(name string) string {
	return n.p.Sprintf("%s was attacked but survived.", name)
}

// Revived announces a resurrection at dawn.
func (n *Narrator) Revived(name string) string {
	return n.p.Sprintf("%s has returned from the dead!", name)
}

// RoleOf reveals a player's role.
func (n *Narrator) RoleOf(name string, role domain.Role) string {
	return n.p.Sprintf("%s is the %s.", name, Label(string(role)))
}

// AuraOf reports an aura reading.
func (n *Narrator) AuraOf(name string, aura domain.Aura) string {
	return n.p.Sprintf("%s's aura is %s.", name, strings.ToLower(string(aura)))
}

// Suspicion reports what the sheriff saw.
func (n *Narrator) Suspicion(name string, suspicious bool) string {
	if suspicious {
		return n.p.Sprintf("%s is suspicious.", name)
	}
	return n.p.Sprintf("%s is not suspicious.", name)
}

// FoxSense reports the fox's reading of a player and their neighbours.
func (n *Narrator) FoxSense(names []string, found bool) string {
	if found {
		return n.p.Sprintf("There is a wolf among %s.", strings.Join(names, ", "))
	}
	return n.p.Sprintf("No wolf among %s. You lost your sense.", strings.Join(names, ", "))
}

// PackChoice tells the wolves who they attack, if anyone.
func (n *Narrator) PackChoice(name string) string {
	if name == "" {
		return n.p.Sprintf("The wolves could not decide on a victim.")
	}
	return n.p.Sprintf("The wolves chose to attack %s.", name)
}

// Converted tells a cursed player they joined the pack.
func (n *Narrator) Converted() string {
	return n.p.Sprintf("The wolves bit you. You are now a Werewolf.")
}

// Cursed tells a player the Cursed Wolf Father turned them.
func (n *Narrator) Cursed() string {
	return n.p.Sprintf("You were cursed by the wolves. You now hunt with them.")
}

// InLove tells a lover who they are bonded to.
func (n *Narrator) InLove(name string) string {
	return n.p.Sprintf("You fell in love with %s. If they die, you die.", name)
}

// Enchanted tells a player the Flutist got them.
func (n *Narrator) Enchanted() string {
	return n.p.Sprintf("You hear a flute. You have been enchanted.")
}

// Jailed tells the prisoner they are locked up.
func (n *Narrator) Jailed() string {
	return n.p.Sprintf("You have been thrown in jail for the night.")
}

// NewRole tells a player their role changed.
func (n *Narrator) NewRole(role domain.Role) string {
	return n.p.Sprintf("Your role is now %s.", Label(string(role)))
}

// Objection announces the lawyer's objection.
func (n *Narrator) Objection() string {
	return n.p.Sprintf("Objection! The lawyer cancelled today's election.")
}

// SecondElection announces the judge's extra election.
func (n *Narrator) SecondElection() string {
	return n.p.Sprintf("The judge demands another election. It cannot be debated.")
}

// NoLynch announces a day without a lynch.
func (n *Narrator) NoLynch() string {
	return n.p.Sprintf("The village could not agree. Nobody is lynched today.")
}

// Elected announces the election winner and their votes.
func (n *Narrator) Elected(name string, votes int) string {
	return n.p.Sprintf("The village elected %s with %d vote(s).", name, votes)
}

// Vetoed announces the Flower Child's veto.
func (n *Narrator) Vetoed(name string) string {
	return n.p.Sprintf("The Flower Child spared %s from the rope.", name)
}

// SheriffPassed announces the new badge holder.
func (n *Narrator) SheriffPassed(name string) string {
	return n.p.Sprintf("%s is the new sheriff.", name)
}

// Depowered announces that the village lost its night abilities.
func (n *Narrator) Depowered() string {
	return n.p.Sprintf("The Elder was killed by the village. Villagers lose their powers.")
}

// HuntTarget tells the Head Hunter who they need lynched.
func (n *Narrator) HuntTarget(name string) string {
	return n.p.Sprintf("Your target is %s. Get them lynched.", name)
}

// AFK announces an idle strike.
func (n *Narrator) AFK(name string, strikes int) string {
	return n.p.Sprintf("%s was idle and has %d strike(s).", name, strikes)
}

// Victory announces the winners.
func (n *Narrator) Victory(v *domain.Victory, names []string) string {
	switch v.Reason {
	case domain.VictoryNobody:
		return n.p.Sprintf("Everyone is dead. Nobody wins.")
	case domain.VictoryLovers:
		return n.p.Sprintf("Love conquers all: %s win.", strings.Join(names, ", "))
	}
	return n.p.Sprintf("The %s win: %s.", Label(string(v.Side)), strings.Join(names, ", "))
}
