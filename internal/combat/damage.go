// Package combat resolves skill damage: the deterministic projection used
// by AI heuristics and the rolled result applied by the battle.
package combat

import (
	"math"

	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
)

// Rand is the randomness used for hit, crit and variance rolls.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
}

// CritSource resolves critical factors for a battler. *stat.Aggregator satisfies it.
type CritSource interface {
	CritMultiplier(b *model.Battler) float64
	CritReduction(b *model.Battler) float64
}

// Config holds the roll parameters.
type Config struct {
	CritChance float64 // 0..1, for skills with Critical set
	Variance   float64 // ±fraction applied to rolled damage
}

// DefaultConfig returns stock roll parameters.
func DefaultConfig() Config {
	return Config{CritChance: 0.05, Variance: 0.2}
}

// Result is the outcome of one skill application on one target.
type Result struct {
	Damage      int32 // HP/MP delta magnitude (damage or recovery)
	Hit         bool
	Critical    bool
	ElementRate float64
}

// Resolver computes damage.
type Resolver struct {
	cfg  Config
	crit CritSource
	rnd  Rand
}

// NewResolver creates a resolver.
func NewResolver(cfg Config, crit CritSource, rnd Rand) *Resolver {
	return &Resolver{cfg: cfg, crit: crit, rnd: rnd}
}

// ProjectedDamage is the expected magnitude of skill from attacker on
// defender: no variance, no crit, never negative.
//
//	physical: power + atk*4 - def*2
//	magical:  power + mat*4 - mdf*2
//	recovery: power + mat*2
//	certain:  power
func ProjectedDamage(skill *data.Skill, attacker, defender *model.Battler) float64 {
	d := skill.Damage
	if d.Type == data.DamageNone {
		return 0
	}

	a := attacker.Params()
	t := defender.Params()
	power := float64(d.Power)

	var v float64
	switch {
	case d.Kind == data.DamageCertain:
		v = power
	case d.Type == data.DamageHPRecover || d.Type == data.DamageMPRecover:
		v = power + float64(a.Mat)*2
	case d.Kind == data.DamageMagical:
		v = power + float64(a.Mat)*4 - float64(t.Mdf)*2
	default:
		v = power + float64(a.Atk)*4 - float64(t.Def)*2
	}

	if skill.IsDamaging() {
		v *= ElementRate(d.Element, defender)
	}
	return math.Max(v, 0)
}

// ElementRate returns the defender's multiplier for an element; element 0 is neutral.
func ElementRate(el data.ElementID, defender *model.Battler) float64 {
	if el == 0 {
		return 1
	}
	return defender.ElementRate(el)
}

// ProjectedDamage is the method form used through the AI collaborator interface.
func (r *Resolver) ProjectedDamage(skill *data.Skill, attacker, defender *model.Battler) float64 {
	return ProjectedDamage(skill, attacker, defender)
}

// Resolve rolls hit, variance and crit for skill from attacker on defender.
func (r *Resolver) Resolve(skill *data.Skill, attacker, defender *model.Battler) Result {
	res := Result{ElementRate: 1}
	if skill.IsDamaging() {
		res.ElementRate = ElementRate(skill.Damage.Element, defender)
	}

	if r.rnd.Float64()*100 >= skill.HitRate {
		return res
	}
	res.Hit = true

	if skill.Damage.Type == data.DamageNone {
		return res
	}

	dmg := ProjectedDamage(skill, attacker, defender)
	if r.cfg.Variance > 0 {
		dmg *= 1 + (r.rnd.Float64()*2-1)*r.cfg.Variance
	}

	if skill.IsDamaging() && skill.Damage.Critical && r.rnd.Float64() < r.cfg.CritChance {
		res.Critical = true
		dmg = ApplyCritical(dmg, r.crit.CritMultiplier(attacker), r.crit.CritReduction(defender))
	}

	res.Damage = int32(math.Max(math.Round(dmg), 0))
	return res
}

// ApplyCritical adds the critical bonus to damage:
//
//	damage + damage * multiplier * clamp(1 - reduction, 0, 1)
//
// A reduction at or above 1 nullifies the bonus; base damage still applies.
func ApplyCritical(damage, multiplier, reduction float64) float64 {
	rate := min(max(1-reduction, 0), 1)
	return damage + damage*multiplier*rate
}
