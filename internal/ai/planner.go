package ai

import (
	"log/slog"
	"math"
	"slices"

	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
)

// HealThreshold is the HP rate below which an ally counts as hurt.
const HealThreshold = 0.6

// Decision is a chosen action. A zero SkillID means no action;
// Wait > 0 asks the loop to hold for that many ticks before deciding again.
type Decision struct {
	SkillID  data.SkillID
	TargetID model.BattlerID
	Combo    bool
	Wait     int32
}

// IsNone reports whether the decision carries no action.
func (d Decision) IsNone() bool { return d.SkillID == 0 }

// planner holds the selection heuristics shared by enemies and allies.
type planner struct {
	cfg  Config
	deps Deps
}

func (p *planner) skill(id data.SkillID) (*data.Skill, bool) {
	if id == 0 {
		return nil, false
	}
	return p.deps.Senses.Tables().Skill(id)
}

// available returns known skills that resolve and that user can execute now.
func (p *planner) available(user *model.Battler) []data.SkillID {
	var out []data.SkillID
	for _, id := range user.Skills() {
		sk, ok := p.skill(id)
		if !ok {
			continue
		}
		if p.deps.Executor.CanExecute(user, sk) {
			out = append(out, id)
		}
	}
	return out
}

// comboFollowUp returns the combo skill exposed by user's last action.
func (p *planner) comboFollowUp(user *model.Battler) (data.SkillID, bool) {
	last, ok := p.skill(user.LastSkill())
	if !ok || last.ComboNext == 0 {
		return 0, false
	}
	if _, ok := p.skill(last.ComboNext); !ok {
		return 0, false
	}
	return last.ComboNext, true
}

// nearbyAllies returns living allies within support range, user first.
func (p *planner) nearbyAllies(user *model.Battler) []*model.Battler {
	out := []*model.Battler{user}
	for _, a := range p.deps.Senses.AlliesOf(user) {
		if a.ID() == user.ID() || a.IsDead() {
			continue
		}
		if d, ok := p.deps.Spatial.DistanceTo(user, a); ok && d <= p.cfg.SupportRange {
			out = append(out, a)
		}
	}
	return out
}

// decisionFor aims skill: self for self-scope, the most hurt nearby ally for
// other ally scopes, target otherwise.
func (p *planner) decisionFor(user, target *model.Battler, id data.SkillID) Decision {
	d := Decision{SkillID: id}
	if target != nil {
		d.TargetID = target.ID()
	}
	sk, ok := p.skill(id)
	if !ok || !sk.TargetsAlly() {
		return d
	}
	if sk.Scope == data.ScopeSelf {
		d.TargetID = user.ID()
		return d
	}
	best := user
	for _, a := range p.nearbyAllies(user) {
		if a.HPRate() < best.HPRate() {
			best = a
		}
	}
	d.TargetID = best.ID()
	return d
}

func (p *planner) pick(ids []data.SkillID) data.SkillID {
	if len(ids) == 0 {
		return 0
	}
	return ids[p.deps.Rand.IntN(len(ids))]
}

func (p *planner) coinFlip() bool {
	return p.deps.Rand.IntN(2) == 0
}

// strongest returns the skill with the highest projected damage on target.
// Ties keep the first in available order.
func (p *planner) strongest(user, target *model.Battler, available []data.SkillID) data.SkillID {
	var best data.SkillID
	bestDmg := -1.0
	for _, id := range available {
		sk, ok := p.skill(id)
		if !ok || !sk.IsDamaging() {
			continue
		}
		dmg := p.deps.Senses.ProjectedDamage(sk, user, target)
		if dmg > bestDmg {
			best, bestDmg = id, dmg
		}
	}
	return best
}

// finishing returns the cheapest-damage skill that still defeats target,
// or 0 if none does.
func (p *planner) finishing(user, target *model.Battler, available []data.SkillID) data.SkillID {
	var best data.SkillID
	bestDmg := math.Inf(1)
	for _, id := range available {
		sk, ok := p.skill(id)
		if !ok || !sk.IsDamaging() || sk.Damage.Type != data.DamageHP {
			continue
		}
		dmg := p.deps.Senses.ProjectedDamage(sk, user, target)
		if dmg >= float64(target.HP()) && dmg < bestDmg {
			best, bestDmg = id, dmg
		}
	}
	return best
}

// offensive filters available down to skills aimed at the other side.
func (p *planner) offensive(available []data.SkillID) []data.SkillID {
	var out []data.SkillID
	for _, id := range available {
		if sk, ok := p.skill(id); ok && !sk.TargetsAlly() && sk.Scope != data.ScopeNone {
			out = append(out, id)
		}
	}
	return out
}

// support tries cleanse, heal, then buff. ok is false when none applies.
func (p *planner) support(user *model.Battler, available []data.SkillID) (Decision, bool) {
	allies := p.nearbyAllies(user)
	if d, ok := p.cleanse(user, allies, available); ok {
		return d, true
	}
	if d, ok := p.heal(user, allies, available); ok {
		return d, true
	}
	return p.buff(user, allies, available)
}

// canAim reports whether skill can be aimed at ally by user.
func canAim(sk *data.Skill, user, ally *model.Battler) bool {
	switch sk.Scope {
	case data.ScopeSelf:
		return ally.ID() == user.ID()
	case data.ScopeAlly, data.ScopeAllAllies:
		return true
	}
	return false
}

// cleanse finds an ally with a negative state that some skill removes,
// preferring the highest removal rate.
func (p *planner) cleanse(user *model.Battler, allies []*model.Battler, available []data.SkillID) (Decision, bool) {
	tables := p.deps.Senses.Tables()
	for _, ally := range allies {
		for _, sid := range ally.OrdinaryStateIDs() {
			st, ok := tables.State(sid)
			if !ok || !st.Negative {
				continue
			}
			var best data.SkillID
			bestRate := 0.0
			for _, id := range available {
				sk, ok := p.skill(id)
				if !ok || !canAim(sk, user, ally) {
					continue
				}
				for _, rm := range sk.RemoveStates {
					if rm.StateID == sid && rm.Rate > bestRate {
						best, bestRate = id, rm.Rate
					}
				}
			}
			if best != 0 {
				return Decision{SkillID: best, TargetID: ally.ID()}, true
			}
		}
	}
	return Decision{}, false
}

// heal picks a heal when allies are below HealThreshold. With two or more
// hurt allies a multi-target heal is preferred.
func (p *planner) heal(user *model.Battler, allies []*model.Battler, available []data.SkillID) (Decision, bool) {
	var hurt []*model.Battler
	for _, a := range allies {
		if a.HPRate() < HealThreshold {
			hurt = append(hurt, a)
		}
	}
	if len(hurt) == 0 {
		return Decision{}, false
	}

	neediest := hurt[0]
	for _, a := range hurt[1:] {
		if a.HPRate() < neediest.HPRate() {
			neediest = a
		}
	}

	var single, multi []*data.Skill
	for _, id := range available {
		sk, ok := p.skill(id)
		if !ok || !sk.IsHeal() {
			continue
		}
		if sk.TargetsMultiple() {
			multi = append(multi, sk)
		} else {
			single = append(single, sk)
		}
	}

	if len(hurt) >= 2 && len(multi) > 0 {
		if sk := p.closestToFull(user, neediest, multi); sk != nil {
			return Decision{SkillID: sk.ID, TargetID: neediest.ID()}, true
		}
	}

	viable := slices.Concat(single, multi)
	if sk := p.closestToFull(user, neediest, viable); sk != nil {
		return Decision{SkillID: sk.ID, TargetID: neediest.ID()}, true
	}
	return Decision{}, false
}

// closestToFull returns the heal whose projected amount lands nearest to
// ally's missing HP without exceeding it; if all exceed, the smallest overheal.
func (p *planner) closestToFull(user, ally *model.Battler, heals []*data.Skill) *data.Skill {
	missing := float64(ally.MaxHP() - ally.HP())
	var under, over *data.Skill
	bestUnder, bestOver := -1.0, math.Inf(1)
	for _, sk := range heals {
		if !canAim(sk, user, ally) {
			continue
		}
		amount := p.deps.Senses.ProjectedDamage(sk, user, ally)
		if amount <= missing {
			if amount > bestUnder {
				under, bestUnder = sk, amount
			}
		} else if amount < bestOver {
			over, bestOver = sk, amount
		}
	}
	if under != nil {
		return under
	}
	return over
}

// buff returns the first buff skill with an ally that lacks, or is about to
// lose, one of the states it grants.
func (p *planner) buff(user *model.Battler, allies []*model.Battler, available []data.SkillID) (Decision, bool) {
	tables := p.deps.Senses.Tables()
	for _, id := range available {
		sk, ok := p.skill(id)
		if !ok || !sk.TargetsAlly() || len(sk.AddStates) == 0 {
			continue
		}
		for _, ally := range allies {
			if !canAim(sk, user, ally) {
				continue
			}
			for _, add := range sk.AddStates {
				if st, ok := tables.State(add.StateID); ok && st.Negative {
					continue
				}
				if p.needsBuff(ally, add.StateID) {
					return Decision{SkillID: id, TargetID: ally.ID()}, true
				}
			}
		}
	}
	return Decision{}, false
}

func (p *planner) needsBuff(ally *model.Battler, state data.StateID) bool {
	if !ally.HasState(state) {
		return true
	}
	left, ok := ally.StateRemaining(state)
	if !ok || left < 0 {
		// passive or untimed
		return false
	}
	return left <= p.cfg.BuffRefreshTicks
}

func logDecision(kind string, user *model.Battler, d Decision) {
	if !IsDebugEnabled() {
		return
	}
	slog.Debug("AI decision",
		"kind", kind,
		"battler", user.ID(),
		"skill", d.SkillID,
		"target", d.TargetID,
		"combo", d.Combo,
		"wait", d.Wait)
}
