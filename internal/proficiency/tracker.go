// Package proficiency tracks per-skill growth counters and unlocks
// conditionals once their thresholds are met.
package proficiency

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
	"github.com/udisondev/jabs/internal/stat"
)

// GainSource yields the per-cast gain of a battler:
// base amount + Σ flat proficiency-gain bonuses. *stat.Aggregator satisfies it.
type GainSource interface {
	ProficiencyGain(b *model.Battler) float64
}

// ActionOutcome is a resolved skill use as seen by the tracker.
type ActionOutcome struct {
	Caster *model.Battler
	Target *model.Battler
	Skill  *data.Skill
	Hit    bool
}

type conditional struct {
	def     *data.Conditional
	rewards []Reward
}

// Tracker owns proficiency growth and conditional unlocks.
type Tracker struct {
	tables       *data.Tables
	gain         GainSource
	target       RewardTarget
	conditionals []conditional
}

// NewTracker compiles the conditionals of t. An unknown or malformed reward
// is a configuration error.
func NewTracker(t *data.Tables, gain GainSource) (*Tracker, error) {
	tr := &Tracker{tables: t, gain: gain}
	for _, def := range t.Conditionals() {
		c := conditional{def: def}
		for i, rd := range def.Rewards {
			r, err := CreateReward(rd.Kind, rd.Params)
			if err != nil {
				return nil, fmt.Errorf("conditional %s reward %d: %w", def.Key, i, err)
			}
			c.rewards = append(c.rewards, r)
		}
		tr.conditionals = append(tr.conditionals, c)
	}
	return tr, nil
}

// SetRewardTarget sets where unlocked rewards are applied.
func (t *Tracker) SetRewardTarget(target RewardTarget) {
	t.target = target
}

// Proficiency returns b's proficiency for a skill (0 when absent).
func (t *Tracker) Proficiency(b *model.Battler, skill data.SkillID) int32 {
	v, _ := b.Proficiency(skill)
	return v
}

// Register creates a zero entry. A second registration is a warning and a no-op.
func (t *Tracker) Register(b *model.Battler, skill data.SkillID) bool {
	if _, ok := b.Proficiency(skill); ok {
		slog.Warn("proficiency entry already registered",
			"battler", b.ID(),
			"skill", skill)
		return false
	}
	b.SetProficiency(skill, 0)
	return true
}

// Increase adds amount to b's entry for skill, creating it at zero first,
// then evaluates conditionals. Non-positive amounts are ignored.
func (t *Tracker) Increase(b *model.Battler, skill data.SkillID, amount int32) {
	if amount <= 0 {
		return
	}
	cur, _ := b.Proficiency(skill)
	if cur > math.MaxInt32-amount {
		cur = math.MaxInt32 - amount
	}
	b.SetProficiency(skill, cur+amount)

	slog.Debug("proficiency increased",
		"battler", b.ID(),
		"skill", skill,
		"amount", amount,
		"value", cur+amount)

	t.Evaluate(b)
}

// IncreaseFromAction applies the combat gates and increases the caster's
// proficiency by its per-cast gain. Returns whether an increase happened.
//
// Gates: a skill (not an item), hit, target without giving-block,
// caster without gaining-block.
func (t *Tracker) IncreaseFromAction(o ActionOutcome) bool {
	if o.Caster == nil || o.Skill == nil {
		return false
	}
	if o.Skill.Item || !o.Hit {
		return false
	}
	if o.Target != nil && t.blocks(o.Target, data.Source.BlocksProficiencyGiving) {
		return false
	}
	if t.blocks(o.Caster, data.Source.BlocksProficiencyGaining) {
		return false
	}

	amount := int32(1)
	if t.gain != nil {
		amount = int32(math.Round(t.gain.ProficiencyGain(o.Caster)))
	}
	if amount <= 0 {
		return false
	}
	t.Increase(o.Caster, o.Skill.ID, amount)
	return true
}

// Decrease lowers b's entry, clamped at zero. Unlocks stay unlocked.
func (t *Tracker) Decrease(b *model.Battler, skill data.SkillID, amount int32) {
	if amount <= 0 {
		return
	}
	cur, _ := b.Proficiency(skill)
	b.SetProficiency(skill, cur-amount)
}

// Evaluate unlocks every still-locked conditional whose requirements all hold.
// Only actors are eligible.
func (t *Tracker) Evaluate(b *model.Battler) {
	if !b.IsActor() {
		return
	}
	for _, c := range t.conditionals {
		if b.IsUnlocked(c.def.Key) || !c.def.EligibleActor(b.ActorID()) {
			continue
		}
		if !requirementsMet(b, c.def.Requirements) {
			continue
		}
		t.unlock(b, c)
	}
}

// Unlock force-unlocks a conditional by key. Re-unlocking is a warning.
func (t *Tracker) Unlock(b *model.Battler, key string) bool {
	for _, c := range t.conditionals {
		if c.def.Key == key {
			return t.unlock(b, c)
		}
	}
	slog.Warn("unlock of unknown conditional", "battler", b.ID(), "key", key)
	return false
}

func (t *Tracker) unlock(b *model.Battler, c conditional) bool {
	if !b.MarkUnlocked(c.def.Key) {
		slog.Warn("conditional already unlocked",
			"battler", b.ID(),
			"key", c.def.Key)
		return false
	}
	slog.Info("proficiency conditional unlocked",
		"battler", b.ID(),
		"key", c.def.Key)

	for _, r := range c.rewards {
		t.apply(b, c.def.Key, r)
	}
	return true
}

// apply runs one reward; a panic is logged and the remaining rewards still run.
func (t *Tracker) apply(b *model.Battler, key string, r Reward) {
	if t.target == nil {
		slog.Warn("reward skipped: no target",
			"battler", b.ID(),
			"key", key,
			"reward", r.Kind())
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("reward panicked",
				"battler", b.ID(),
				"key", key,
				"reward", r.Kind(),
				"panic", rec)
		}
	}()
	r.Apply(t.target, b)
}

func requirementsMet(b *model.Battler, reqs []data.Requirement) bool {
	for _, req := range reqs {
		v, _ := b.Proficiency(req.SkillID)
		if v < req.Threshold {
			return false
		}
	}
	return true
}

func (t *Tracker) blocks(b *model.Battler, flag func(data.Source) bool) bool {
	for _, src := range stat.Sources(t.tables, b) {
		if flag(src) {
			return true
		}
	}
	return false
}
