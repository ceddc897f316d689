package main

import (
	"errors"
	"log/slog"
	"math"

	"github.com/udisondev/jabs/internal/battle"
	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
)

// Ticks the autopilot waits after a successful action.
const actionWait = 45

// autopilot plays the player: walks to the nearest hostile and uses the
// strongest affordable offensive skill, falling back to the weapon's
// basic attack.
type autopilot struct {
	c    *battle.Context
	wait int32
}

func newAutopilot(c *battle.Context) *autopilot {
	return &autopilot{c: c}
}

// Step runs one tick of player input.
func (a *autopilot) Step() {
	p := a.c.Player()
	if p == nil || p.IsDead() || a.c.IsClosed() || a.c.IsPaused() {
		return
	}
	if a.wait > 0 {
		a.wait--
		return
	}

	target := a.nearestHostile(p)
	if target == nil {
		return
	}
	skill := a.chooseSkill(p)
	if skill == nil {
		return
	}

	_, err := a.c.UseSkill(p.ID(), skill.ID, target.ID())
	switch {
	case err == nil:
		a.wait = actionWait
	case errors.Is(err, battle.ErrOutOfRange):
		a.c.Field().PathToward(p, target.Position())
	case errors.Is(err, battle.ErrCannotExecute):
		// оглушён или не хватает ресурсов: ждём
	default:
		slog.Warn("autopilot action failed", "skill", skill.ID, "target", target.ID(), "err", err)
		a.wait = actionWait
	}
}

func (a *autopilot) nearestHostile(p *model.Battler) *model.Battler {
	var (
		best     *model.Battler
		bestDist = math.MaxFloat64
	)
	for _, h := range a.c.HostilesOf(p) {
		// ловушки не атакуем, пока есть живые враги
		d := p.Position().DistanceTo(h.Position())
		if h.Inanimate() {
			d += 1000
		}
		if d < bestDist {
			best, bestDist = h, d
		}
	}
	return best
}

// chooseSkill picks the highest-power single-enemy skill the player can use
// now, or the main-hand basic attack.
func (a *autopilot) chooseSkill(p *model.Battler) *data.Skill {
	tables := a.c.Tables()
	var best *data.Skill
	for _, id := range p.Skills() {
		sk, ok := tables.Skill(id)
		if !ok || !sk.IsDamaging() || sk.TargetsAlly() || sk.TargetsMultiple() || !a.c.CanExecute(p, sk) {
			continue
		}
		if best == nil || sk.Damage.Power > best.Damage.Power {
			best = sk
		}
	}
	if best != nil {
		return best
	}

	w, ok := tables.Weapon(p.Equipment().MainHand)
	if !ok {
		return nil
	}
	sk, ok := tables.Skill(w.BasicAttack)
	if !ok {
		return nil
	}
	return sk
}
