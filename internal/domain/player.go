package domain

import "sort"

// Power is a once-per-game ability. Spent powers never come back.
type Power string

const (
	PowerWitchHeal    Power = "WITCH_HEAL"
	PowerWitchPoison  Power = "WITCH_POISON"
	PowerRitual       Power = "RITUAL"
	PowerSeance       Power = "SEANCE"
	PowerNecromancy   Power = "NECROMANCY"
	PowerSpiritShield Power = "SPIRIT_SHIELD"
	PowerCurse        Power = "CURSE"
	PowerExecute      Power = "EXECUTE"
	PowerObjection    Power = "OBJECTION"
	PowerSecretPhrase Power = "SECRET_PHRASE"
	PowerPetalVeto    Power = "PETAL_VETO"
	PowerMaidSwap     Power = "MAID_SWAP"
	PowerMatchmaking  Power = "MATCHMAKING"
	PowerSteal        Power = "STEAL"
	PowerSwap         Power = "SWAP"
	PowerFoxSense     Power = "FOX_SENSE"
	PowerHoundChoice  Power = "HOUND_CHOICE"
	PowerRoleModel    Power = "ROLE_MODEL"
)

// ProtectionSource credits the protector of a player for the current night.
type ProtectionSource string

const (
	ProtectionNone      ProtectionSource = ""
	ProtectionDoctor    ProtectionSource = "DOCTOR"
	ProtectionHealer    ProtectionSource = "HEALER"
	ProtectionBodyguard ProtectionSource = "BODYGUARD"
	ProtectionJailer    ProtectionSource = "JAILER"
)

// Player is one seat at the table.
type Player struct {
	ID           string `json:"id"`
	Nickname     string `json:"nickname"`
	Role         Role   `json:"role"`
	InitialRoles []Role `json:"initialRoles"`
	Lives        int    `json:"lives"`
	ElderLife    bool   `json:"elderLife"` // unspent spare life that travels with the Elder role
	Cursed       bool   `json:"cursed"`
	IsSheriff    bool   `json:"isSheriff"`
	RoleRevealed bool   `json:"roleRevealed"`

	Protection  ProtectionSource `json:"protection,omitempty"`
	ProtectorID string           `json:"protectorId,omitempty"`

	Spent map[Power]bool `json:"spent"`

	HealerLastTarget    string `json:"healerLastTarget,omitempty"`
	BodyguardIntercepts int    `json:"bodyguardIntercepts"`
	AvengerTarget       string `json:"avengerTarget,omitempty"`
	JuniorTarget        string `json:"juniorTarget,omitempty"`
	LoudmouthTarget     string `json:"loudmouthTarget,omitempty"`
	RoleModel           string `json:"roleModel,omitempty"`
	HeadHunterTarget    string `json:"headHunterTarget,omitempty"`
	Visiting            string `json:"visiting,omitempty"`

	Enchanted bool `json:"enchanted"`
	Infected  bool `json:"infected"`

	OwnLovers     map[string]struct{} `json:"ownLovers"`
	RevealedRoles map[string]Role     `json:"revealedRoles"`

	AFKStrikes int  `json:"afkStrikes"`
	Asked      bool `json:"-"`
	Responded  bool `json:"-"`
}

// NewPlayer creates a living player holding the given role.
func NewPlayer(id, nickname string, role Role) *Player {
	lives := 1
	if role == RoleElder {
		lives = 2
	}
	return &Player{
		ID:            id,
		Nickname:      nickname,
		Role:          role,
		InitialRoles:  []Role{role},
		Lives:         lives,
		ElderLife:     role == RoleElder,
		IsSheriff:     role == RoleSheriff,
		Spent:         make(map[Power]bool),
		OwnLovers:     make(map[string]struct{}),
		RevealedRoles: make(map[string]Role),
	}
}

// Side is derived on every call so role swaps never leave it stale.
func (p *Player) Side() Side {
	return SideOf(p.Role, p.Cursed)
}

// Aura is what an aura reading reports for this player.
func (p *Player) Aura() Aura {
	return AuraOf(p.Role, p.Cursed)
}

// IsAlive reports whether the player still has a life left.
func (p *Player) IsAlive() bool {
	return p.Lives >= 1
}

// IsDead is the inverse of IsAlive.
func (p *Player) IsDead() bool {
	return p.Lives < 1
}

// InPack reports whether the player hunts with the wolves.
func (p *Player) InPack() bool {
	return p.Role.InPack() || p.Cursed
}

// TakeHit removes one life and reports whether the player died. Only the
// death pipeline calls this.
func (p *Player) TakeHit() bool {
	if p.IsDead() {
		return false
	}
	p.Lives--
	if p.Lives < 2 {
		p.ElderLife = false
	}
	return p.IsDead()
}

// Slay removes every remaining life and reports whether the player died.
// Only the death pipeline calls this.
func (p *Player) Slay() bool {
	if p.IsDead() {
		return false
	}
	p.Lives = 0
	p.ElderLife = false
	return true
}

// Shield grants a living single-life player a second life.
func (p *Player) Shield() bool {
	if p.IsDead() || p.Lives > 1 {
		return false
	}
	p.Lives = 2
	return true
}

// Revive brings a dead player back with a single life.
func (p *Player) Revive() {
	if p.IsAlive() {
		return
	}
	p.Lives = 1
}

// SetRole changes the player's role and records it in the history. A seat
// that gives up the Elder role also gives up its unspent spare life.
func (p *Player) SetRole(r Role) {
	if p.Role == r {
		return
	}
	p.assume(r, false)
}

// Inherit takes over the role of from. An unspent Elder life moves with it.
func (p *Player) Inherit(from *Player) {
	role, spare := from.Role, from.ElderLife
	from.dropElderLife()
	p.assume(role, spare)
}

// ExchangeRoles swaps the roles of a and b, spare Elder lives included.
func ExchangeRoles(a, b *Player) {
	ra, la := a.Role, a.ElderLife
	rb, lb := b.Role, b.ElderLife
	a.assume(rb, lb)
	b.assume(ra, la)
}

func (p *Player) assume(r Role, spare bool) {
	p.dropElderLife()
	if p.Role != r {
		p.Role = r
		p.InitialRoles = append(p.InitialRoles, r)
	}
	if spare && r == RoleElder && p.IsAlive() {
		p.ElderLife = true
		p.Lives++
	}
}

func (p *Player) dropElderLife() {
	if !p.ElderLife {
		return
	}
	p.ElderLife = false
	if p.Lives > 1 {
		p.Lives--
	}
}

// HasSpent reports whether a once-per-game power is gone.
func (p *Player) HasSpent(pw Power) bool {
	return p.Spent[pw]
}

// Spend consumes a once-per-game power. It returns false if it was already spent.
func (p *Player) Spend(pw Power) bool {
	if p.Spent[pw] {
		return false
	}
	p.Spent[pw] = true
	return true
}

// Protect records a protector unless someone else got there first.
func (p *Player) Protect(source ProtectionSource, protectorID string) bool {
	if p.Protection != ProtectionNone {
		return false
	}
	p.Protection = source
	p.ProtectorID = protectorID
	return true
}

// IsProtected reports whether the player is protected tonight.
func (p *Player) IsProtected() bool {
	return p.Protection != ProtectionNone
}

// ClearNight resets state that only lasts for one night.
func (p *Player) ClearNight() {
	p.Protection = ProtectionNone
	p.ProtectorID = ""
	p.Visiting = ""
}

// Loves reports whether the player is directly bonded to id.
func (p *Player) Loves(id string) bool {
	_, ok := p.OwnLovers[id]
	return ok
}

// LoverIDs returns bonded player ids in a stable order.
func (p *Player) LoverIDs() []string {
	ids := make([]string, 0, len(p.OwnLovers))
	for id := range p.OwnLovers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Learn records private knowledge of another player's role.
func (p *Player) Learn(id string, r Role) {
	p.RevealedRoles[id] = r
}

// PlayerInfo is a safe view of player data (hides role unless revealed)
type PlayerInfo struct {
	ID        string `json:"id"`
	Nickname  string `json:"nickname"`
	Alive     bool   `json:"alive"`
	IsSheriff bool   `json:"isSheriff"`
	Role      Role   `json:"role,omitempty"`
}

// ToInfo converts a Player to PlayerInfo
func (p *Player) ToInfo() PlayerInfo {
	info := PlayerInfo{
		ID:        p.ID,
		Nickname:  p.Nickname,
		Alive:     p.IsAlive(),
		IsSheriff: p.IsSheriff,
	}
	if p.RoleRevealed {
		info.Role = p.Role
	}
	return info
}
