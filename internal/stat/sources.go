package stat

import (
	"log/slog"

	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
)

// Sources returns the ordered attribute sources of b:
// actor, class, equips, skills, states for actors;
// enemy, skills, states for enemies.
// States include passives. Ids that do not resolve are skipped.
func Sources(t *data.Tables, b *model.Battler) []data.Source {
	return collect(t, b, b.AllStateIDs())
}

// PossessionSources is Sources restricted to ordinary states.
// Passive resolution reads it so passives never feed themselves.
func PossessionSources(t *data.Tables, b *model.Battler) []data.Source {
	return collect(t, b, b.OrdinaryStateIDs())
}

func collect(t *data.Tables, b *model.Battler, states []data.StateID) []data.Source {
	out := make([]data.Source, 0, 8+len(states))

	if b.IsActor() {
		if r, ok := t.Actor(b.ActorID()); ok {
			out = append(out, r)
		} else {
			missing("actor", b.RecordID(), b)
		}
		if r, ok := t.Class(b.ClassID()); ok {
			out = append(out, r)
		} else if b.ClassID() != 0 {
			missing("class", int32(b.ClassID()), b)
		}
		eq := b.Equipment()
		for _, id := range []data.WeaponID{eq.MainHand, eq.OffHand} {
			if id == 0 {
				continue
			}
			if r, ok := t.Weapon(id); ok {
				out = append(out, r)
			} else {
				missing("weapon", int32(id), b)
			}
		}
		for _, id := range eq.Armors {
			if r, ok := t.Armor(id); ok {
				out = append(out, r)
			} else {
				missing("armor", int32(id), b)
			}
		}
	} else {
		if r, ok := t.Enemy(b.EnemyID()); ok {
			out = append(out, r)
		} else {
			missing("enemy", b.RecordID(), b)
		}
	}

	for _, id := range b.Skills() {
		if r, ok := t.Skill(id); ok {
			out = append(out, r)
		} else {
			missing("skill", int32(id), b)
		}
	}
	for _, id := range states {
		if r, ok := t.State(id); ok {
			out = append(out, r)
		} else {
			missing("state", int32(id), b)
		}
	}
	return out
}

func missing(kind string, id int32, b *model.Battler) {
	slog.Debug("attribute source skipped: missing record",
		"kind", kind,
		"id", id,
		"battler", b.ID())
}
