package ai

import (
	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
)

// Main-hand share when an ally holds two weapons with basic attacks.
const mainHandChance = 0.7

// ComboChance returns the per-mode chance to follow up a combo.
func ComboChance(mode model.AllyMode) float64 {
	switch mode {
	case model.ModeBasicAttack:
		return 0.3
	case model.ModeVariety:
		return 0.2
	case model.ModeFullForce:
		return 0.5
	case model.ModeSupport:
		return 0.1
	default:
		return 0
	}
}

// AllyAI is the skill-choice strategy of one AI-controlled party member.
type AllyAI struct {
	Mode   model.AllyMode
	Memory *BattleMemory

	p *planner
}

// NewAllyAI creates a strategy. A nil memory starts empty.
func NewAllyAI(mode model.AllyMode, memory *BattleMemory, cfg Config, deps Deps) *AllyAI {
	if memory == nil {
		memory = NewBattleMemory()
	}
	return &AllyAI{
		Mode:   mode,
		Memory: memory,
		p:      &planner{cfg: cfg, deps: deps},
	}
}

// DecideAction picks a skill for user against target from available.
// A combo follow-up, when rolled, wins over every mode.
func (a *AllyAI) DecideAction(user, target *model.Battler, available []data.SkillID) Decision {
	if id, ok := a.p.comboFollowUp(user); ok {
		if chance := ComboChance(a.Mode); chance > 0 && a.p.deps.Rand.Float64() < chance {
			d := a.p.decisionFor(user, target, id)
			d.Combo = true
			logDecision("ally-combo", user, d)
			return d
		}
	}

	var d Decision
	switch a.Mode {
	case model.ModeDoNothing:
		d = a.doNothing()
	case model.ModeBasicAttack:
		d = a.basicAttack(user, target)
	case model.ModeVariety:
		d = a.variety(user, target, available)
	case model.ModeFullForce:
		d = a.fullForce(user, target, available)
	case model.ModeSupport:
		d = a.support(user, available)
	}
	logDecision("ally-"+a.Mode.String(), user, d)
	return d
}

func (a *AllyAI) doNothing() Decision {
	return Decision{Wait: a.p.cfg.DoNothingWait}
}

// basicAttack picks main- or off-hand basic attack, 70/30 when both exist.
func (a *AllyAI) basicAttack(user, target *model.Battler) Decision {
	main, off := basicAttacks(a.p.deps.Senses.Tables(), user)
	var id data.SkillID
	switch {
	case main != 0 && off != 0:
		id = off
		if a.p.deps.Rand.Float64() < mainHandChance {
			id = main
		}
	case main != 0:
		id = main
	case off != 0:
		id = off
	default:
		return Decision{}
	}
	return a.p.decisionFor(user, target, id)
}

// basicAttacks returns the basic attack skills of the equipped weapons.
func basicAttacks(t *data.Tables, user *model.Battler) (main, off data.SkillID) {
	eq := user.Equipment()
	if w, ok := t.Weapon(eq.MainHand); ok {
		main = w.BasicAttack
	}
	if w, ok := t.Weapon(eq.OffHand); ok {
		off = w.BasicAttack
	}
	return main, off
}

// variety mixes remembered-effective skills with random picks and may
// switch to support when an ally is hurt.
func (a *AllyAI) variety(user, target *model.Battler, available []data.SkillID) Decision {
	if a.anyAllyHurt(user) && a.p.coinFlip() {
		if d, ok := a.p.support(user, available); ok {
			return d
		}
	}
	if len(available) == 0 {
		return Decision{}
	}

	effective := a.effective(target, available)
	var id data.SkillID
	switch len(effective) {
	case 0:
		id = a.p.pick(available)
	case 1:
		id = effective[0]
		if a.p.coinFlip() {
			id = a.p.pick(available)
		}
	default:
		id = a.p.pick(effective)
	}
	return a.p.decisionFor(user, target, id)
}

// fullForce uses the strongest skill unless memory says otherwise.
func (a *AllyAI) fullForce(user, target *model.Battler, available []data.SkillID) Decision {
	strongest := a.p.strongest(user, target, available)
	effective := a.effective(target, available)

	var id data.SkillID
	switch len(effective) {
	case 0:
		id = strongest
	case 1:
		id = effective[0]
		if id != strongest && strongest != 0 && a.p.coinFlip() {
			id = strongest
		}
	default:
		id = a.p.pick(effective)
	}
	if id == 0 {
		return Decision{}
	}
	return a.p.decisionFor(user, target, id)
}

// support cleanses, heals or buffs; otherwise behaves like DoNothing.
func (a *AllyAI) support(user *model.Battler, available []data.SkillID) Decision {
	if d, ok := a.p.support(user, available); ok {
		return d
	}
	return a.doNothing()
}

func (a *AllyAI) anyAllyHurt(user *model.Battler) bool {
	for _, ally := range a.p.nearbyAllies(user) {
		if ally.HPRate() < HealThreshold {
			return true
		}
	}
	return false
}

func (a *AllyAI) effective(target *model.Battler, available []data.SkillID) []data.SkillID {
	if target == nil || !target.IsEnemy() {
		return nil
	}
	return a.Memory.EffectiveAmong(target.EnemyID(), available)
}

// Remember records the outcome of an action against an enemy.
// Effectiveness is the element rate in percent; a miss scores zero.
func (a *AllyAI) Remember(skill data.SkillID, o TargetOutcome) {
	if o.Target == nil || !o.Target.IsEnemy() {
		return
	}
	eff := 0.0
	if o.Hit {
		eff = o.ElementRate * 100
	}
	a.Memory.Apply(MemoryRecord{
		EnemyID:       o.Target.EnemyID(),
		SkillID:       skill,
		Effectiveness: eff,
	})
}
