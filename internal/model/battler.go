package model

import (
	"maps"
	"slices"

	"github.com/udisondev/jabs/internal/data"
)

// BattlerID identifies a combatant on the field.
type BattlerID uint32

// Kind distinguishes battlers built from actor records and enemy records.
type Kind int8

const (
	KindActor Kind = iota
	KindEnemy
)

// String returns human-readable battler kind.
func (k Kind) String() string {
	if k == KindActor {
		return "actor"
	}
	return "enemy"
}

// Team groups battlers that fight on the same side.
type Team int8

const (
	TeamNeutral Team = iota
	TeamAlly
	TeamEnemy
)

func (t Team) String() string {
	switch t {
	case TeamAlly:
		return "ally"
	case TeamEnemy:
		return "enemy"
	}
	return "neutral"
}

// IsHostileTo reports whether members of t and other fight each other.
func (t Team) IsHostileTo(other Team) bool {
	return t != TeamNeutral && other != TeamNeutral && t != other
}

// MaxTP is the ceiling of the TP gauge.
const MaxTP = 100

// StateEntry tracks an ordinary (non-passive) state on a battler.
type StateEntry struct {
	StateID   data.StateID
	Remaining int32 // ticks left, -1 = no auto-removal
}

// Battler is a combatant: identity, numeric stats, skills, states,
// equipment and the caches other systems read and write.
//
// Not safe for concurrent use: a battler is owned by the battle tick and
// mutated only by the system responsible for each cache.
type Battler struct {
	id       BattlerID
	name     string
	kind     Kind
	team     Team
	recordID int32
	classID  data.ClassID
	level    int32

	params data.Params
	hp     int32
	mp     int32
	tp     int32

	skills    []data.SkillID
	states    []StateEntry
	passives  PassiveSet
	party     *Party
	equipment data.Equipment

	buffs   map[string]Modifier
	growths map[string][]Modifier

	proficiencies map[data.SkillID]int32
	unlocked      map[string]struct{}

	position Point
	home     Point
	facing   Point

	lastSkill data.SkillID

	traits       AITraits
	inanimate    bool
	cannotIdle   bool
	sightRange   float64
	prepareTicks int32
	elementRates map[data.ElementID]float64
}

// NewBattler creates a battler at full HP/MP.
func NewBattler(id BattlerID, name string, kind Kind, team Team, recordID, level int32, params data.Params) *Battler {
	return &Battler{
		id:            id,
		name:          name,
		kind:          kind,
		team:          team,
		recordID:      recordID,
		level:         max(level, 1),
		params:        params,
		hp:            max(params.MaxHP, 1),
		mp:            max(params.MaxMP, 0),
		buffs:         make(map[string]Modifier),
		growths:       make(map[string][]Modifier),
		proficiencies: make(map[data.SkillID]int32),
		unlocked:      make(map[string]struct{}),
		facing:        Point{X: 0, Y: 1},
	}
}

func (b *Battler) ID() BattlerID   { return b.id }
func (b *Battler) Name() string    { return b.name }
func (b *Battler) Kind() Kind      { return b.kind }
func (b *Battler) IsActor() bool   { return b.kind == KindActor }
func (b *Battler) IsEnemy() bool   { return b.kind == KindEnemy }
func (b *Battler) Team() Team      { return b.team }
func (b *Battler) RecordID() int32 { return b.recordID }

// ActorID returns the actor record id. Meaningful only for actors.
func (b *Battler) ActorID() data.ActorID { return data.ActorID(b.recordID) }

// EnemyID returns the enemy record id. Meaningful only for enemies.
func (b *Battler) EnemyID() data.EnemyID { return data.EnemyID(b.recordID) }

func (b *Battler) ClassID() data.ClassID      { return b.classID }
func (b *Battler) SetClassID(id data.ClassID) { b.classID = id }
func (b *Battler) Level() int32               { return b.level }
func (b *Battler) SetLevel(level int32)       { b.level = max(level, 1) }
func (b *Battler) Params() data.Params        { return b.params }

// SetParams replaces the parameter block and clamps HP/MP to the new maximums.
func (b *Battler) SetParams(p data.Params) {
	b.params = p
	b.SetHP(b.hp)
	b.SetMP(b.mp)
}

func (b *Battler) MaxHP() int32 { return max(b.params.MaxHP, 1) }
func (b *Battler) MaxMP() int32 { return max(b.params.MaxMP, 0) }
func (b *Battler) HP() int32    { return b.hp }
func (b *Battler) MP() int32    { return b.mp }
func (b *Battler) TP() int32    { return b.tp }

// SetHP sets current HP clamped to 0..MaxHP.
func (b *Battler) SetHP(hp int32) {
	b.hp = min(max(hp, 0), b.MaxHP())
}

// SetMP sets current MP clamped to 0..MaxMP.
func (b *Battler) SetMP(mp int32) {
	b.mp = min(max(mp, 0), b.MaxMP())
}

// SetTP sets current TP clamped to 0..MaxTP.
func (b *Battler) SetTP(tp int32) {
	b.tp = min(max(tp, 0), MaxTP)
}

// HPRate returns current HP as a fraction of max HP.
func (b *Battler) HPRate() float64 {
	return float64(b.hp) / float64(b.MaxHP())
}

func (b *Battler) IsDead() bool  { return b.hp <= 0 }
func (b *Battler) IsAlive() bool { return b.hp > 0 }

// Skills returns a copy of the known skill ids.
func (b *Battler) Skills() []data.SkillID {
	return slices.Clone(b.skills)
}

// HasSkill reports whether the skill is known.
func (b *Battler) HasSkill(id data.SkillID) bool {
	return slices.Contains(b.skills, id)
}

// LearnSkill adds a skill. Returns false if already known.
func (b *Battler) LearnSkill(id data.SkillID) bool {
	if b.HasSkill(id) {
		return false
	}
	b.skills = append(b.skills, id)
	return true
}

// ForgetSkill removes a skill. Returns false if it was not known.
func (b *Battler) ForgetSkill(id data.SkillID) bool {
	i := slices.Index(b.skills, id)
	if i < 0 {
		return false
	}
	b.skills = slices.Delete(b.skills, i, i+1)
	return true
}

// AddState applies an ordinary state for the given number of ticks.
// A state currently granted passively cannot be added through this path.
// Re-adding a present state refreshes its duration.
// Returns true if the state was added or refreshed.
func (b *Battler) AddState(id data.StateID, ticks int32) bool {
	if b.isPassive(id) {
		return false
	}
	for i := range b.states {
		if b.states[i].StateID == id {
			b.states[i].Remaining = ticks
			return true
		}
	}
	b.states = append(b.states, StateEntry{StateID: id, Remaining: ticks})
	return true
}

// RemoveState removes an ordinary state.
// Rejected while a passive source grants the same id.
func (b *Battler) RemoveState(id data.StateID) bool {
	if b.isPassive(id) {
		return false
	}
	for i := range b.states {
		if b.states[i].StateID == id {
			b.states = slices.Delete(b.states, i, i+1)
			return true
		}
	}
	return false
}

// TickStates decrements timed states and drops the expired ones.
// Returns the ids of expired states.
func (b *Battler) TickStates() []data.StateID {
	var expired []data.StateID
	n := 0
	for _, st := range b.states {
		if st.Remaining > 0 {
			st.Remaining--
			if st.Remaining == 0 {
				expired = append(expired, st.StateID)
				continue
			}
		}
		b.states[n] = st
		n++
	}
	b.states = b.states[:n]
	return expired
}

// StateEntries returns a copy of ordinary states with their timers.
func (b *Battler) StateEntries() []StateEntry {
	return slices.Clone(b.states)
}

// StateRemaining returns ticks left for an ordinary state.
func (b *Battler) StateRemaining(id data.StateID) (int32, bool) {
	for _, st := range b.states {
		if st.StateID == id {
			return st.Remaining, true
		}
	}
	return 0, false
}

// OrdinaryStateIDs returns ids of non-passive states.
func (b *Battler) OrdinaryStateIDs() []data.StateID {
	out := make([]data.StateID, len(b.states))
	for i, st := range b.states {
		out[i] = st.StateID
	}
	return out
}

// AllStateIDs returns ordinary states, own passives and party passives.
// This is the list every other system sees as "active states".
func (b *Battler) AllStateIDs() []data.StateID {
	out := b.OrdinaryStateIDs()
	out = append(out, b.passives.IDs()...)
	if b.party != nil && b.IsActor() {
		out = append(out, b.party.Passives().IDs()...)
	}
	return out
}

// HasState reports whether id is active through any path.
func (b *Battler) HasState(id data.StateID) bool {
	return slices.Contains(b.AllStateIDs(), id)
}

func (b *Battler) isPassive(id data.StateID) bool {
	if b.passives.Contains(id) {
		return true
	}
	return b.party != nil && b.IsActor() && b.party.Passives().Contains(id)
}

// Passives returns the battler's own resolved passive set.
func (b *Battler) Passives() PassiveSet { return b.passives }

// SetPassives replaces the passive set. Called by the resolver only.
func (b *Battler) SetPassives(s PassiveSet) { b.passives = s }

// Party returns the party the battler belongs to, or nil.
func (b *Battler) Party() *Party { return b.party }

// Equipment returns a copy of the current loadout.
func (b *Battler) Equipment() data.Equipment {
	eq := b.equipment
	eq.Armors = slices.Clone(b.equipment.Armors)
	return eq
}

// SetEquipment replaces the whole loadout.
func (b *Battler) SetEquipment(eq data.Equipment) {
	eq.Armors = slices.Clone(eq.Armors)
	b.equipment = eq
}

// Buff returns the temporary modifier for an attribute key.
func (b *Battler) Buff(key string) (Modifier, bool) {
	m, ok := b.buffs[key]
	return m, ok
}

// SetBuff replaces the temporary modifier for an attribute key.
// A zero modifier removes the entry.
func (b *Battler) SetBuff(key string, m Modifier) {
	if m.IsZero() {
		delete(b.buffs, key)
		return
	}
	b.buffs[key] = m
}

// ClearBuffs drops all temporary modifiers.
func (b *Battler) ClearBuffs() { clear(b.buffs) }

// Buffs returns a copy of the buff cache.
func (b *Battler) Buffs() map[string]Modifier { return maps.Clone(b.buffs) }

// Growths returns the permanent modifiers for an attribute key.
func (b *Battler) Growths(key string) []Modifier {
	return slices.Clone(b.growths[key])
}

// AddGrowth appends a permanent modifier. Growths accumulate.
func (b *Battler) AddGrowth(key string, m Modifier) {
	b.growths[key] = append(b.growths[key], m)
}

// AllGrowths returns a deep copy of the growth cache.
func (b *Battler) AllGrowths() map[string][]Modifier {
	out := make(map[string][]Modifier, len(b.growths))
	for k, v := range b.growths {
		out[k] = slices.Clone(v)
	}
	return out
}

// RestoreModifiers replaces both caches, used when loading a snapshot.
func (b *Battler) RestoreModifiers(buffs map[string]Modifier, growths map[string][]Modifier) {
	b.buffs = maps.Clone(buffs)
	if b.buffs == nil {
		b.buffs = make(map[string]Modifier)
	}
	b.growths = make(map[string][]Modifier, len(growths))
	for k, v := range growths {
		b.growths[k] = slices.Clone(v)
	}
}

// Proficiency returns the proficiency entry for a skill.
func (b *Battler) Proficiency(id data.SkillID) (int32, bool) {
	v, ok := b.proficiencies[id]
	return v, ok
}

// SetProficiency writes a proficiency entry, clamped at zero.
func (b *Battler) SetProficiency(id data.SkillID, v int32) {
	b.proficiencies[id] = max(v, 0)
}

// Proficiencies returns a copy of all proficiency entries.
func (b *Battler) Proficiencies() map[data.SkillID]int32 {
	return maps.Clone(b.proficiencies)
}

// IsUnlocked reports whether a conditional key has been unlocked.
func (b *Battler) IsUnlocked(key string) bool {
	_, ok := b.unlocked[key]
	return ok
}

// MarkUnlocked records a conditional key. Returns false if already unlocked.
func (b *Battler) MarkUnlocked(key string) bool {
	if b.IsUnlocked(key) {
		return false
	}
	b.unlocked[key] = struct{}{}
	return true
}

// UnlockedKeys returns unlocked conditional keys in sorted order.
func (b *Battler) UnlockedKeys() []string {
	return slices.Sorted(maps.Keys(b.unlocked))
}

func (b *Battler) Position() Point         { return b.position }
func (b *Battler) SetPosition(p Point)     { b.position = p }
func (b *Battler) Home() Point             { return b.home }
func (b *Battler) SetHome(p Point)         { b.home = p }
func (b *Battler) Facing() Point           { return b.facing }
func (b *Battler) SetFacing(dir Point)     { b.facing = dir }
func (b *Battler) LastSkill() data.SkillID { return b.lastSkill }

// SetLastSkill records the last executed skill (combo source).
func (b *Battler) SetLastSkill(id data.SkillID) { b.lastSkill = id }

func (b *Battler) Traits() AITraits        { return b.traits }
func (b *Battler) SetTraits(t AITraits)    { b.traits = t }
func (b *Battler) Inanimate() bool         { return b.inanimate }
func (b *Battler) SetInanimate(v bool)     { b.inanimate = v }
func (b *Battler) CannotIdle() bool        { return b.cannotIdle }
func (b *Battler) SetCannotIdle(v bool)    { b.cannotIdle = v }
func (b *Battler) SightRange() float64     { return b.sightRange }
func (b *Battler) SetSightRange(r float64) { b.sightRange = r }
func (b *Battler) PrepareTicks() int32     { return b.prepareTicks }
func (b *Battler) SetPrepareTicks(n int32) { b.prepareTicks = n }

// SetElementRates sets the incoming damage multiplier per element.
func (b *Battler) SetElementRates(rates map[data.ElementID]float64) {
	b.elementRates = maps.Clone(rates)
}

// ElementRate returns the incoming damage multiplier for an element (default 1).
func (b *Battler) ElementRate(el data.ElementID) float64 {
	if r, ok := b.elementRates[el]; ok {
		return r
	}
	return 1
}
