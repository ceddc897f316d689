package ai

import (
	"context"

	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
)

// decideEnemy runs the trait-driven selection of an enemy.
func (m *Manager) decideEnemy(ctx context.Context, br *Brain, target *model.Battler) Decision {
	b := br.battler
	traits := b.Traits()

	if traits.Has(model.TraitFollower) && br.leader != 0 {
		if br.preDecided == nil {
			return Decision{}
		}
		d := *br.preDecided
		br.preDecided = nil
		logDecision("enemy-follower", b, d)
		return d
	}

	if id, ok := m.p.comboFollowUp(b); ok && m.deps.Rand.Float64() < m.cfg.EnemyComboChance {
		d := m.p.decisionFor(b, target, id)
		d.Combo = true
		logDecision("enemy-combo", b, d)
		return d
	}

	d := m.enemyChoice(b, target, m.p.available(b))
	if traits.Has(model.TraitLeader) {
		m.leadFollowers(ctx, br, target)
	}
	logDecision("enemy", b, d)
	return d
}

// enemyChoice branches on AI traits. Healers and defensive enemies try
// support first; smart and executor enemies rank attacks; the rest pick at
// random. Basic enemies that are not reckless may swap for a basic attack.
func (m *Manager) enemyChoice(b, target *model.Battler, available []data.SkillID) Decision {
	traits := b.Traits()

	var d Decision
	if traits.Has(model.TraitHealer) || traits.Has(model.TraitDefensive) {
		if sd, ok := m.p.support(b, available); ok {
			d = sd
		}
	}

	if d.IsNone() {
		offensive := m.p.offensive(available)
		var id data.SkillID
		if traits.Has(model.TraitExecutor) {
			id = m.p.finishing(b, target, offensive)
		}
		if id == 0 && (traits.Has(model.TraitSmart) || traits.Has(model.TraitExecutor)) {
			id = m.p.strongest(b, target, offensive)
		}
		if id == 0 {
			id = m.p.pick(offensive)
		}
		if id != 0 {
			d = m.p.decisionFor(b, target, id)
		}
	}

	if traits.Has(model.TraitBasic) && !traits.Has(model.TraitReckless) && m.p.coinFlip() {
		if basic := m.enemyBasicAttack(b); basic != 0 {
			d = m.p.decisionFor(b, target, basic)
		}
	}
	return d
}

func (m *Manager) enemyBasicAttack(b *model.Battler) data.SkillID {
	e, ok := m.deps.Senses.Tables().Enemy(b.EnemyID())
	if !ok {
		return 0
	}
	return e.BasicAttack
}

// leadFollowers binds unclaimed followers near the leader and pre-decides
// an action for each follower still waiting.
func (m *Manager) leadFollowers(ctx context.Context, leader *Brain, target *model.Battler) {
	lb := leader.battler
	for _, id := range m.order {
		f := m.brains[id]
		if f == leader || f.leader != 0 {
			continue
		}
		fb := f.battler
		if fb.IsDead() || !fb.Traits().Has(model.TraitFollower) || fb.Team() != lb.Team() {
			continue
		}
		if d, ok := m.deps.Spatial.DistanceTo(lb, fb); !ok || d > m.cfg.FollowerScanRange {
			continue
		}
		f.leader = lb.ID()
		leader.followers = append(leader.followers, fb.ID())
	}

	for _, fid := range leader.followers {
		f, ok := m.brains[fid]
		if !ok || f.preDecided != nil {
			continue
		}
		fb := f.battler
		id := m.p.pick(m.p.offensive(m.p.available(fb)))
		if id == 0 {
			continue
		}
		d := m.p.decisionFor(fb, target, id)
		f.preDecided = &d
		if f.Phase() == PhaseIdle {
			f.target = target.ID()
			f.fire(ctx, eventEngage)
		}
	}
}
