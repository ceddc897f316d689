package battle

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/udisondev/jabs/internal/ai"
	"github.com/udisondev/jabs/internal/combat"
	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
	"github.com/udisondev/jabs/internal/proficiency"
)

var (
	ErrUnknownSkill  = errors.New("unknown skill")
	ErrCannotExecute = errors.New("skill cannot be executed now")
	ErrOutOfRange    = errors.New("target out of range")
)

// TP charged to a battler that loses its whole max HP in one hit.
const tpChargeFullHP = 50

// CanExecute reports whether user may use skill now: alive, not restricted
// by a state and able to pay the costs. Sealed skills leave basic attacks
// available.
func (c *Context) CanExecute(user *model.Battler, skill *data.Skill) bool {
	if skill == nil || user.IsDead() {
		return false
	}
	for _, id := range user.AllStateIDs() {
		st, ok := c.tables.State(id)
		if !ok {
			continue
		}
		if st.CannotAct || (st.SealSkills && !skill.BasicAttack) {
			return false
		}
	}
	return user.MP() >= skill.MPCost && user.TP() >= skill.TPCost
}

// Execute pays the costs of skill and applies it to the targets its scope
// selects around target. Returns one outcome per affected battler.
func (c *Context) Execute(user *model.Battler, skill *data.Skill, target *model.Battler) []ai.TargetOutcome {
	if c.closed || !c.CanExecute(user, skill) {
		return nil
	}
	user.SetMP(user.MP() - skill.MPCost)
	user.SetTP(user.TP() - skill.TPCost)

	targets := c.targetsOf(user, skill, target)
	outcomes := make([]ai.TargetOutcome, 0, len(targets))
	gained := false
	for _, t := range targets {
		res := c.damage.Resolve(skill, user, t)
		if res.Hit {
			c.apply(skill, t, res)
		}
		c.disturb(user, t)
		// прокачка не чаще одного раза за каст
		if !gained {
			gained = c.tracker.IncreaseFromAction(proficiency.ActionOutcome{
				Caster: user,
				Target: t,
				Skill:  skill,
				Hit:    res.Hit,
			})
		}
		outcomes = append(outcomes, ai.TargetOutcome{Target: t, Hit: res.Hit, ElementRate: res.ElementRate})

		if ai.IsDebugEnabled() {
			slog.Debug("skill applied",
				"user", user.ID(),
				"skill", skill.ID,
				"target", t.ID(),
				"hit", res.Hit,
				"critical", res.Critical,
				"damage", res.Damage)
		}
	}

	c.events.Dispatch(&Event{Type: EventActionExecuted, Battler: user, SkillID: skill.ID})
	return outcomes
}

// UseSkill executes a skill for the player-controlled side: the skill must be
// known (or be the user's weapon basic attack) and the aim within reach.
func (c *Context) UseSkill(userID model.BattlerID, skillID data.SkillID, targetID model.BattlerID) ([]ai.TargetOutcome, error) {
	if c.closed {
		return nil, ErrClosed
	}
	user, ok := c.Battler(userID)
	if !ok {
		return nil, fmt.Errorf("use skill: user %d: %w", userID, ErrUnknownBattler)
	}
	skill, ok := c.tables.Skill(skillID)
	if !ok || !(user.HasSkill(skillID) || c.isBasicAttackOf(user, skillID)) {
		return nil, fmt.Errorf("use skill %d: %w", skillID, ErrUnknownSkill)
	}
	if !c.CanExecute(user, skill) {
		return nil, fmt.Errorf("use skill %d: %w", skillID, ErrCannotExecute)
	}

	var target *model.Battler
	if targetID != 0 {
		if target, ok = c.Battler(targetID); !ok {
			return nil, fmt.Errorf("use skill %d: target %d: %w", skillID, targetID, ErrUnknownBattler)
		}
		if target.ID() != user.ID() && skill.Proximity > 0 && !c.field.IsInRange(user, target, skill.Proximity) {
			return nil, fmt.Errorf("use skill %d on %d: %w", skillID, targetID, ErrOutOfRange)
		}
	}

	outcomes := c.Execute(user, skill, target)
	if target != nil && target.ID() != user.ID() {
		c.field.FaceToward(user, target.Position())
	}
	user.SetLastSkill(skillID)
	return outcomes, nil
}

func (c *Context) isBasicAttackOf(b *model.Battler, id data.SkillID) bool {
	eq := b.Equipment()
	for _, wid := range []data.WeaponID{eq.MainHand, eq.OffHand} {
		if w, ok := c.tables.Weapon(wid); ok && w.BasicAttack == id {
			return true
		}
	}
	if b.IsEnemy() {
		if e, ok := c.tables.Enemy(b.EnemyID()); ok && e.BasicAttack == id {
			return true
		}
	}
	return false
}

// targetsOf expands the skill scope around the aimed battler.
func (c *Context) targetsOf(user *model.Battler, skill *data.Skill, target *model.Battler) []*model.Battler {
	switch skill.Scope {
	case data.ScopeNone:
		return nil
	case data.ScopeSelf:
		return []*model.Battler{user}
	case data.ScopeAllAllies:
		return c.AlliesOf(user)
	case data.ScopeAllEnemies:
		return c.HostilesOf(user)
	case data.ScopeDeadAlly:
		if target != nil && target.IsDead() && target.Team() == user.Team() {
			return []*model.Battler{target}
		}
		return nil
	}
	if target == nil || target.IsDead() {
		return nil
	}
	return []*model.Battler{target}
}

// apply writes a hit to t: HP/MP change, state removal then addition, TP
// charge and the defeat event.
func (c *Context) apply(skill *data.Skill, t *model.Battler, res combat.Result) {
	wasAlive := t.IsAlive()

	switch skill.Damage.Type {
	case data.DamageHP:
		t.SetHP(t.HP() - res.Damage)
		c.chargeTP(t, res.Damage)
	case data.DamageMP:
		t.SetMP(t.MP() - res.Damage)
	case data.DamageHPRecover:
		t.SetHP(t.HP() + res.Damage)
	case data.DamageMPRecover:
		t.SetMP(t.MP() + res.Damage)
	}

	for _, sc := range skill.RemoveStates {
		if c.roll(sc.Rate) {
			c.RemoveState(t, sc.StateID)
		}
	}
	if t.IsAlive() {
		for _, sc := range skill.AddStates {
			if c.roll(sc.Rate) {
				c.AddState(t, sc.StateID)
			}
		}
	}

	if wasAlive && t.IsDead() {
		slog.Info("battler defeated",
			"battle", c.id,
			"battler", t.ID(),
			"name", t.Name(),
			"skill", skill.ID)
		c.events.Dispatch(&Event{Type: EventDefeated, Battler: t, SkillID: skill.ID})
	}
}

// disturb alerts an idle AI battler to the position of a hostile that
// acted on it, hit or miss.
func (c *Context) disturb(user, t *model.Battler) {
	if t.IsDead() || !user.Team().IsHostileTo(t.Team()) {
		return
	}
	c.ai.Alert(t.ID(), user.Position(), c.alertTicks)
}

// chargeTP grants TP proportional to the share of max HP lost, capped by
// the aggregated max-tp.
func (c *Context) chargeTP(b *model.Battler, damage int32) {
	if damage <= 0 || b.IsDead() {
		return
	}
	gain := int32(tpChargeFullHP * float64(damage) / float64(b.MaxHP()))
	b.SetTP(min(b.TP()+gain, int32(c.agg.MaxTP(b))))
}

// roll succeeds with rate percent probability.
func (c *Context) roll(rate float64) bool {
	return c.rnd.Float64()*100 < rate
}
