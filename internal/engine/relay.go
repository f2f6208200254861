package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"werewolf/internal/domain"
)

const (
	relayWolves = "wolves"
	relayJail   = "jail"
	relayMedium = "medium"
)

// relay is a private line between players that only exists while its
// anchors are alive and its phase is running.
type relay struct {
	name    string
	members map[string]string // id -> nickname
	anchors map[string]bool   // members whose death closes the line
}

// Relays holds the private lines open for the current phase. Hosts call Say
// from their own goroutines, so access is locked.
type Relays struct {
	mu       sync.Mutex
	open     map[string]*relay
	notifier Notifier
	logger   *slog.Logger
}

func newRelays(notifier Notifier, logger *slog.Logger) *Relays {
	return &Relays{
		open:     make(map[string]*relay),
		notifier: notifier,
		logger:   logger,
	}
}

// Open starts a relay. Anchors must also be members. A relay with fewer
// than two members is not opened.
func (r *Relays) Open(name string, members []*domain.Player, anchors ...*domain.Player) bool {
	if len(members) < 2 {
		return false
	}
	rl := &relay{
		name:    name,
		members: make(map[string]string, len(members)),
		anchors: make(map[string]bool, len(anchors)),
	}
	for _, m := range members {
		rl.members[m.ID] = m.Nickname
	}
	for _, a := range anchors {
		rl.anchors[a.ID] = true
	}

	r.mu.Lock()
	r.open[name] = rl
	r.mu.Unlock()
	r.logger.Debug("relay opened", "relay", name, "members", len(members))
	return true
}

// Close tears down a relay by name.
func (r *Relays) Close(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.open[name]; ok {
		delete(r.open, name)
		r.logger.Debug("relay closed", "relay", name)
	}
}

// CloseAll tears down every relay.
func (r *Relays) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name := range r.open {
		delete(r.open, name)
	}
}

// Died drops a dead player from every relay. Relays anchored on them, or
// left with fewer than two members, close.
func (r *Relays) Died(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, rl := range r.open {
		if _, ok := rl.members[id]; !ok {
			continue
		}
		if rl.anchors[id] {
			delete(r.open, name)
			continue
		}
		delete(rl.members, id)
		if len(rl.members) < 2 {
			delete(r.open, name)
		}
	}
}

// IsOpen reports whether the named relay is open.
func (r *Relays) IsOpen(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.open[name]
	return ok
}

// Say forwards a line from a member to the rest of every relay they sit in.
func (r *Relays) Say(ctx context.Context, fromID, text string) error {
	type delivery struct {
		ids     []string
		message string
	}

	r.mu.Lock()
	var out []delivery
	names := make([]string, 0, len(r.open))
	for name := range r.open {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rl := r.open[name]
		nickname, ok := rl.members[fromID]
		if !ok {
			continue
		}
		ids := make([]string, 0, len(rl.members)-1)
		for id := range rl.members {
			if id != fromID {
				ids = append(ids, id)
			}
		}
		sort.Strings(ids)
		out = append(out, delivery{ids: ids, message: fmt.Sprintf("[%s] %s: %s", name, nickname, text)})
	}
	r.mu.Unlock()

	if len(out) == 0 {
		return domain.ErrNoRelay
	}
	if r.notifier == nil {
		return nil
	}
	for _, d := range out {
		if err := r.notifier.Notify(ctx, d.ids, d.message); err != nil {
			r.logger.Warn("relay delivery failed", "from", fromID, "error", err)
		}
	}
	return nil
}
