package domain

// Role names a capability set held by a player. Roles can change mid-game
// (Thief, Maid, Troublemaker, Wild Child, Cursed), so never cache a derived side.
type Role string

// Wolf pack
const (
	RoleWerewolf         Role = "WEREWOLF"
	RoleBigBadWolf       Role = "BIG_BAD_WOLF"
	RoleCursedWolfFather Role = "CURSED_WOLF_FATHER"
	RoleWolfSeer         Role = "WOLF_SEER"
	RoleWolfShaman       Role = "WOLF_SHAMAN"
	RoleWolfNecromancer  Role = "WOLF_NECROMANCER"
	RoleJuniorWerewolf   Role = "JUNIOR_WEREWOLF"
	RoleWhiteWolf        Role = "WHITE_WOLF"
	RoleSorcerer         Role = "SORCERER"
	RoleWolfhound        Role = "WOLFHOUND"
)

// Solo
const (
	RoleJester        Role = "JESTER"
	RoleHeadHunter    Role = "HEAD_HUNTER"
	RoleFlutist       Role = "FLUTIST"
	RoleSuperspreader Role = "SUPERSPREADER"
)

// Village
const (
	RoleVillager     Role = "VILLAGER"
	RolePureSoul     Role = "PURE_SOUL"
	RoleSeer         Role = "SEER"
	RoleAuraSeer     Role = "AURA_SEER"
	RoleSheriff      Role = "SHERIFF"
	RoleFox          Role = "FOX"
	RoleDoctor       Role = "DOCTOR"
	RoleHealer       Role = "HEALER"
	RoleBodyguard    Role = "BODYGUARD"
	RoleJailer       Role = "JAILER"
	RoleMedium       Role = "MEDIUM"
	RoleWitch        Role = "WITCH"
	RoleHunter       Role = "HUNTER"
	RoleAmor         Role = "AMOR"
	RoleKnight       Role = "KNIGHT"
	RoleSister       Role = "SISTER"
	RoleBrother      Role = "BROTHER"
	RoleJudge        Role = "JUDGE"
	RoleLawyer       Role = "LAWYER"
	RoleWarVeteran   Role = "WAR_VETERAN"
	RoleWildChild    Role = "WILD_CHILD"
	RoleFlowerChild  Role = "FLOWER_CHILD"
	RoleAvenger      Role = "AVENGER"
	RoleRedLady      Role = "RED_LADY"
	RoleRitualist    Role = "RITUALIST"
	RoleTroublemaker Role = "TROUBLEMAKER"
	RoleThief        Role = "THIEF"
	RoleMaid         Role = "MAID"
	RoleParagon      Role = "PARAGON"
	RoleLoudmouth    Role = "LOUDMOUTH"
	RoleCursed       Role = "CURSED"
	RoleElder        Role = "ELDER"
)

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// Side is the team a player scores with.
type Side string

const (
	SideVillagers     Side = "VILLAGERS"
	SideWolves        Side = "WOLVES"
	SideWhiteWolf     Side = "WHITE_WOLF"
	SideFlutist       Side = "FLUTIST"
	SideSuperspreader Side = "SUPERSPREADER"
	SideJester        Side = "JESTER"
	SideHeadHunter    Side = "HEAD_HUNTER"
)

// String returns the string representation of the side
func (s Side) String() string {
	return string(s)
}

// Aura is what aura-reading abilities see.
type Aura string

const (
	AuraGood    Aura = "GOOD"
	AuraEvil    Aura = "EVIL"
	AuraUnknown Aura = "UNKNOWN"
)

// Timing describes when a role's ability is used.
type Timing int

const (
	TimingNone Timing = iota
	TimingFirstNight
	TimingNightly
	TimingOnDeath
	TimingDay
	TimingPassive
)

// Ability is the static description of a role.
type Ability struct {
	Side        Side
	Pack        bool // votes with the wolves at night
	Timing      Timing
	Targets     int // how many players the ability selects, 0 when not targeted
	OncePerGame bool
	UnknownAura bool
}

var catalog = map[Role]Ability{
	RoleWerewolf:         {Side: SideWolves, Pack: true, Timing: TimingNightly, Targets: 1},
	RoleBigBadWolf:       {Side: SideWolves, Pack: true, Timing: TimingNightly, Targets: 1},
	RoleCursedWolfFather: {Side: SideWolves, Pack: true, Timing: TimingNightly, Targets: 1, OncePerGame: true},
	RoleWolfSeer:         {Side: SideWolves, Pack: true, Timing: TimingNightly, Targets: 1},
	RoleWolfShaman:       {Side: SideWolves, Pack: true, Timing: TimingNightly, Targets: 1, OncePerGame: true},
	RoleWolfNecromancer:  {Side: SideWolves, Pack: true, Timing: TimingNightly, Targets: 1, OncePerGame: true},
	RoleJuniorWerewolf:   {Side: SideWolves, Pack: true, Timing: TimingNightly, Targets: 1},
	RoleWhiteWolf:        {Side: SideWhiteWolf, Pack: true, Timing: TimingNightly, Targets: 1, UnknownAura: true},
	RoleSorcerer:         {Side: SideWolves, Timing: TimingNightly, Targets: 1, UnknownAura: true},
	RoleWolfhound:        {Side: SideVillagers, Timing: TimingFirstNight, UnknownAura: true},

	RoleJester:        {Side: SideJester, Timing: TimingPassive, UnknownAura: true},
	RoleHeadHunter:    {Side: SideHeadHunter, Timing: TimingPassive, UnknownAura: true},
	RoleFlutist:       {Side: SideFlutist, Timing: TimingNightly, Targets: 2, UnknownAura: true},
	RoleSuperspreader: {Side: SideSuperspreader, Timing: TimingNightly, Targets: 1, UnknownAura: true},

	RoleVillager:     {Side: SideVillagers},
	RolePureSoul:     {Side: SideVillagers, Timing: TimingPassive},
	RoleSeer:         {Side: SideVillagers, Timing: TimingNightly, Targets: 1},
	RoleAuraSeer:     {Side: SideVillagers, Timing: TimingNightly, Targets: 1},
	RoleSheriff:      {Side: SideVillagers, Timing: TimingNightly, Targets: 1},
	RoleFox:          {Side: SideVillagers, Timing: TimingNightly, Targets: 1},
	RoleDoctor:       {Side: SideVillagers, Timing: TimingNightly, Targets: 1},
	RoleHealer:       {Side: SideVillagers, Timing: TimingNightly, Targets: 1},
	RoleBodyguard:    {Side: SideVillagers, Timing: TimingNightly, Targets: 1},
	RoleJailer:       {Side: SideVillagers, Timing: TimingDay, Targets: 1, UnknownAura: true},
	RoleMedium:       {Side: SideVillagers, Timing: TimingNightly, Targets: 1, OncePerGame: true},
	RoleWitch:        {Side: SideVillagers, Timing: TimingNightly, Targets: 1, UnknownAura: true},
	RoleHunter:       {Side: SideVillagers, Timing: TimingOnDeath, Targets: 1, UnknownAura: true},
	RoleAmor:         {Side: SideVillagers, Timing: TimingFirstNight, Targets: 2, OncePerGame: true},
	RoleKnight:       {Side: SideVillagers, Timing: TimingOnDeath, UnknownAura: true},
	RoleSister:       {Side: SideVillagers, Timing: TimingFirstNight},
	RoleBrother:      {Side: SideVillagers, Timing: TimingFirstNight},
	RoleJudge:        {Side: SideVillagers, Timing: TimingDay, OncePerGame: true},
	RoleLawyer:       {Side: SideVillagers, Timing: TimingDay, OncePerGame: true},
	RoleWarVeteran:   {Side: SideVillagers, Timing: TimingOnDeath, UnknownAura: true},
	RoleWildChild:    {Side: SideVillagers, Timing: TimingFirstNight, Targets: 1},
	RoleFlowerChild:  {Side: SideVillagers, Timing: TimingDay, OncePerGame: true},
	RoleAvenger:      {Side: SideVillagers, Timing: TimingNightly, Targets: 1, UnknownAura: true},
	RoleRedLady:      {Side: SideVillagers, Timing: TimingNightly, Targets: 1},
	RoleRitualist:    {Side: SideVillagers, Timing: TimingNightly, Targets: 1, OncePerGame: true},
	RoleTroublemaker: {Side: SideVillagers, Timing: TimingFirstNight, Targets: 2, OncePerGame: true},
	RoleThief:        {Side: SideVillagers, Timing: TimingFirstNight, Targets: 1, OncePerGame: true},
	RoleMaid:         {Side: SideVillagers, Timing: TimingDay, OncePerGame: true},
	RoleParagon:      {Side: SideVillagers, Timing: TimingDay},
	RoleLoudmouth:    {Side: SideVillagers, Timing: TimingNightly, Targets: 1},
	RoleCursed:       {Side: SideVillagers, Timing: TimingPassive, UnknownAura: true},
	RoleElder:        {Side: SideVillagers, Timing: TimingPassive},
}

// AllRoles lists every role in catalog order.
var AllRoles = []Role{
	RoleWerewolf, RoleBigBadWolf, RoleCursedWolfFather, RoleWolfSeer, RoleWolfShaman,
	RoleWolfNecromancer, RoleJuniorWerewolf, RoleWhiteWolf, RoleSorcerer, RoleWolfhound,
	RoleJester, RoleHeadHunter, RoleFlutist, RoleSuperspreader,
	RoleVillager, RolePureSoul, RoleSeer, RoleAuraSeer, RoleSheriff, RoleFox, RoleDoctor,
	RoleHealer, RoleBodyguard, RoleJailer, RoleMedium, RoleWitch, RoleHunter, RoleAmor,
	RoleKnight, RoleSister, RoleBrother, RoleJudge, RoleLawyer, RoleWarVeteran,
	RoleWildChild, RoleFlowerChild, RoleAvenger, RoleRedLady, RoleRitualist,
	RoleTroublemaker, RoleThief, RoleMaid, RoleParagon, RoleLoudmouth, RoleCursed, RoleElder,
}

// AbilityOf returns the catalog entry for a role.
func AbilityOf(r Role) (Ability, bool) {
	a, ok := catalog[r]
	return a, ok
}

// IsKnown reports whether r is a catalog role.
func (r Role) IsKnown() bool {
	_, ok := catalog[r]
	return ok
}

// InPack reports whether the role votes with the wolf pack at night.
func (r Role) InPack() bool {
	return catalog[r].Pack
}

// IsSolo reports whether the role wins independently of team headcount.
func (r Role) IsSolo() bool {
	switch catalog[r].Side {
	case SideJester, SideHeadHunter, SideFlutist, SideSuperspreader:
		return true
	}
	return false
}

// SideOf derives a side from a role and the cursed flag. A cursed player
// plays for the wolves while keeping their role.
func SideOf(r Role, cursed bool) Side {
	if cursed {
		return SideWolves
	}
	a, ok := catalog[r]
	if !ok {
		return SideVillagers
	}
	return a.Side
}

// WolfAligned reports whether a side counts against the village.
func (s Side) WolfAligned() bool {
	return s == SideWolves || s == SideWhiteWolf
}

// AuraOf is what an Aura Seer learns about a player.
func AuraOf(r Role, cursed bool) Aura {
	if catalog[r].UnknownAura {
		return AuraUnknown
	}
	if SideOf(r, cursed).WolfAligned() {
		return AuraEvil
	}
	return AuraGood
}
