package engine

import "werewolf/internal/domain"

// Kill is one pending death.
type Kill struct {
	Target   *domain.Player
	Cause    domain.DeathCause
	KillerID string
}

// KillList collects the night's pending deaths in insertion order. A player
// appears at most once; the first cause recorded wins.
type KillList struct {
	entries []Kill
}

// Add appends a kill unless the target is already listed or dead.
func (k *KillList) Add(target *domain.Player, cause domain.DeathCause, killerID string) bool {
	if target == nil || target.IsDead() || k.Has(target.ID) {
		return false
	}
	k.entries = append(k.entries, Kill{Target: target, Cause: cause, KillerID: killerID})
	return true
}

// Remove drops the entry for id.
func (k *KillList) Remove(id string) (Kill, bool) {
	for i, e := range k.entries {
		if e.Target.ID == id {
			k.entries = append(k.entries[:i], k.entries[i+1:]...)
			return e, true
		}
	}
	return Kill{}, false
}

// Has reports whether id is listed.
func (k *KillList) Has(id string) bool {
	for _, e := range k.entries {
		if e.Target.ID == id {
			return true
		}
	}
	return false
}

// Entries returns a copy of the list.
func (k *KillList) Entries() []Kill {
	return append([]Kill(nil), k.entries...)
}

// Targets returns the listed players in order.
func (k *KillList) Targets() []*domain.Player {
	out := make([]*domain.Player, 0, len(k.entries))
	for _, e := range k.entries {
		out = append(out, e.Target)
	}
	return out
}

// Len returns the number of pending deaths.
func (k *KillList) Len() int {
	return len(k.entries)
}
