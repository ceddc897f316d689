package data

import "fmt"

// Params is the base parameter block shared by classes, enemies and equipment.
type Params struct {
	MaxHP int32 `yaml:"mhp"`
	MaxMP int32 `yaml:"mmp"`
	Atk   int32 `yaml:"atk"`
	Def   int32 `yaml:"def"`
	Mat   int32 `yaml:"mat"`
	Mdf   int32 `yaml:"mdf"`
	Agi   int32 `yaml:"agi"`
	Luk   int32 `yaml:"luk"`
}

// Add returns the element-wise sum of two parameter blocks.
func (p Params) Add(o Params) Params {
	return Params{
		MaxHP: p.MaxHP + o.MaxHP,
		MaxMP: p.MaxMP + o.MaxMP,
		Atk:   p.Atk + o.Atk,
		Def:   p.Def + o.Def,
		Mat:   p.Mat + o.Mat,
		Mdf:   p.Mdf + o.Mdf,
		Agi:   p.Agi + o.Agi,
		Luk:   p.Luk + o.Luk,
	}
}

// Scale returns the parameter block multiplied by n.
func (p Params) Scale(n int32) Params {
	return Params{
		MaxHP: p.MaxHP * n,
		MaxMP: p.MaxMP * n,
		Atk:   p.Atk * n,
		Def:   p.Def * n,
		Mat:   p.Mat * n,
		Mdf:   p.Mdf * n,
		Agi:   p.Agi * n,
		Luk:   p.Luk * n,
	}
}

// Actor is a party member template.
type Actor struct {
	Tags         `yaml:",inline"`
	ID           ActorID   `yaml:"id"`
	Name         string    `yaml:"name"`
	ClassID      ClassID   `yaml:"class"`
	Level        int32     `yaml:"level"`
	Equipment    Equipment `yaml:"equipment"`
	Skills       []SkillID `yaml:"skills"`
	AllyMode     string    `yaml:"ally_mode"`
	PrepareTicks int32     `yaml:"prepare_ticks"`
	SightRange   float64   `yaml:"sight_range"`
}

func (a *Actor) SourceName() string { return fmt.Sprintf("actor:%d", a.ID) }

// Equipment is the initial loadout of an actor.
type Equipment struct {
	MainHand WeaponID  `yaml:"main_hand"`
	OffHand  WeaponID  `yaml:"off_hand"`
	Armors   []ArmorID `yaml:"armors"`
}

// Class holds base parameters and their per-level growth.
type Class struct {
	Tags           `yaml:",inline"`
	ID             ClassID   `yaml:"id"`
	Name           string    `yaml:"name"`
	Params         Params    `yaml:"params"`
	ParamsPerLevel Params    `yaml:"params_per_level"`
	Skills         []SkillID `yaml:"skills"`
}

func (c *Class) SourceName() string { return fmt.Sprintf("class:%d", c.ID) }

// ParamsAt returns class parameters at the given level.
func (c *Class) ParamsAt(level int32) Params {
	if level < 1 {
		level = 1
	}
	return c.Params.Add(c.ParamsPerLevel.Scale(level - 1))
}

// Scope determines who a skill may target.
type Scope string

const (
	ScopeNone       Scope = "none"
	ScopeEnemy      Scope = "enemy"
	ScopeAllEnemies Scope = "all-enemies"
	ScopeAlly       Scope = "ally"
	ScopeAllAllies  Scope = "all-allies"
	ScopeSelf       Scope = "self"
	ScopeDeadAlly   Scope = "dead-ally"
)

// DamageType is what a skill's damage block does to the target.
type DamageType string

const (
	DamageNone      DamageType = "none"
	DamageHP        DamageType = "hp-damage"
	DamageMP        DamageType = "mp-damage"
	DamageHPRecover DamageType = "hp-recover"
	DamageMPRecover DamageType = "mp-recover"
)

// DamageKind selects the attacker/defender parameters used by the formula.
type DamageKind string

const (
	DamagePhysical DamageKind = "physical"
	DamageMagical  DamageKind = "magical"
	DamageCertain  DamageKind = "certain"
)

// Damage is the damage block of a skill.
type Damage struct {
	Type     DamageType `yaml:"type"`
	Kind     DamageKind `yaml:"kind"`
	Element  ElementID  `yaml:"element"`
	Power    int32      `yaml:"power"`
	Critical bool       `yaml:"critical"`
}

// StateChance is a state added or removed by a skill with a percent rate.
type StateChance struct {
	StateID StateID `yaml:"state"`
	Rate    float64 `yaml:"rate"`
}

// Skill is an action template. Items used in combat are skills with Item set.
type Skill struct {
	Tags          `yaml:",inline"`
	ID            SkillID       `yaml:"id"`
	Name          string        `yaml:"name"`
	MPCost        int32         `yaml:"mp_cost"`
	TPCost        int32         `yaml:"tp_cost"`
	Scope         Scope         `yaml:"scope"`
	Damage        Damage        `yaml:"damage"`
	HitRate       float64       `yaml:"hit_rate"`
	AddStates     []StateChance `yaml:"add_states"`
	RemoveStates  []StateChance `yaml:"remove_states"`
	Proximity     float64       `yaml:"proximity"`
	CastTicks     int32         `yaml:"cast_ticks"`
	CooldownTicks int32         `yaml:"cooldown_ticks"`
	ComboNext     SkillID       `yaml:"combo_next"`
	BasicAttack   bool          `yaml:"basic_attack"`
	Item          bool          `yaml:"item"`
}

func (s *Skill) SourceName() string { return fmt.Sprintf("skill:%d", s.ID) }

// TargetsAlly reports whether the skill is aimed at the user's own side.
func (s *Skill) TargetsAlly() bool {
	switch s.Scope {
	case ScopeAlly, ScopeAllAllies, ScopeSelf, ScopeDeadAlly:
		return true
	}
	return false
}

// TargetsMultiple reports whether the skill hits every member of a side.
func (s *Skill) TargetsMultiple() bool {
	return s.Scope == ScopeAllAllies || s.Scope == ScopeAllEnemies
}

// IsHeal reports whether the skill restores HP to a living ally.
func (s *Skill) IsHeal() bool {
	return s.Damage.Type == DamageHPRecover &&
		(s.Scope == ScopeAlly || s.Scope == ScopeAllAllies || s.Scope == ScopeSelf)
}

// IsDamaging reports whether the skill deals HP or MP damage.
func (s *Skill) IsDamaging() bool {
	return s.Damage.Type == DamageHP || s.Damage.Type == DamageMP
}

// Weapon carries the basic attack skill used when it is equipped.
type Weapon struct {
	Tags        `yaml:",inline"`
	ID          WeaponID `yaml:"id"`
	Name        string   `yaml:"name"`
	BasicAttack SkillID  `yaml:"basic_attack"`
	Params      Params   `yaml:"params"`
}

func (w *Weapon) SourceName() string { return fmt.Sprintf("weapon:%d", w.ID) }

// Armor is a non-weapon equipment piece.
type Armor struct {
	Tags   `yaml:",inline"`
	ID     ArmorID `yaml:"id"`
	Name   string  `yaml:"name"`
	Params Params  `yaml:"params"`
}

func (a *Armor) SourceName() string { return fmt.Sprintf("armor:%d", a.ID) }

// Item is an inventory item. Items owned by the party may grant passives.
type Item struct {
	Tags `yaml:",inline"`
	ID   ItemID `yaml:"id"`
	Name string `yaml:"name"`
}

func (i *Item) SourceName() string { return fmt.Sprintf("item:%d", i.ID) }

// State is a status effect template.
type State struct {
	Tags          `yaml:",inline"`
	ID            StateID `yaml:"id"`
	Name          string  `yaml:"name"`
	DurationTicks int32   `yaml:"duration_ticks"`
	Negative      bool    `yaml:"negative"`
	CannotAct     bool    `yaml:"cannot_act"`
	CannotMove    bool    `yaml:"cannot_move"`
	SealSkills    bool    `yaml:"seal_skills"`
}

func (s *State) SourceName() string { return fmt.Sprintf("state:%d", s.ID) }

// Enemy is an AI-controlled foe template.
type Enemy struct {
	Tags         `yaml:",inline"`
	ID           EnemyID               `yaml:"id"`
	Name         string                `yaml:"name"`
	Level        int32                 `yaml:"level"`
	Params       Params                `yaml:"params"`
	Skills       []SkillID             `yaml:"skills"`
	BasicAttack  SkillID               `yaml:"basic_attack"`
	Traits       []string              `yaml:"ai"`
	SightRange   float64               `yaml:"sight_range"`
	PrepareTicks int32                 `yaml:"prepare_ticks"`
	CannotIdle   bool                  `yaml:"cannot_idle"`
	Inanimate    bool                  `yaml:"inanimate"`
	ElementRates map[ElementID]float64 `yaml:"element_rates"`
}

func (e *Enemy) SourceName() string { return fmt.Sprintf("enemy:%d", e.ID) }

// Requirement is one (skill, threshold) pair of a proficiency conditional.
type Requirement struct {
	SkillID   SkillID `yaml:"skill"`
	Threshold int32   `yaml:"threshold"`
}

// RewardDef is an authored reward: a kind name plus string parameters.
type RewardDef struct {
	Kind   string            `yaml:"kind"`
	Params map[string]string `yaml:"params"`
}

// Conditional is a proficiency unlock rule.
type Conditional struct {
	Key          string        `yaml:"key"`
	Requirements []Requirement `yaml:"requirements"`
	Actors       []ActorID     `yaml:"actors"`
	Rewards      []RewardDef   `yaml:"rewards"`
}

// EligibleActor reports whether the actor may unlock the conditional.
// An empty actor list means every actor is eligible.
func (c *Conditional) EligibleActor(id ActorID) bool {
	if len(c.Actors) == 0 {
		return true
	}
	for _, a := range c.Actors {
		if a == id {
			return true
		}
	}
	return false
}
