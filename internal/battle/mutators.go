package battle

import (
	"fmt"
	"log/slog"
	"maps"

	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
)

// Equip replaces an actor's loadout. Every non-zero id must resolve.
func (c *Context) Equip(b *model.Battler, eq data.Equipment) error {
	if !b.IsActor() {
		return fmt.Errorf("equip battler %d: %w", b.ID(), ErrNotActor)
	}
	for _, id := range []data.WeaponID{eq.MainHand, eq.OffHand} {
		if _, ok := c.tables.Weapon(id); id != 0 && !ok {
			return fmt.Errorf("equip weapon %d: %w", id, data.ErrUnknownRecord)
		}
	}
	for _, id := range eq.Armors {
		if _, ok := c.tables.Armor(id); !ok {
			return fmt.Errorf("equip armor %d: %w", id, data.ErrUnknownRecord)
		}
	}

	b.SetEquipment(eq)
	c.events.Dispatch(&Event{Type: EventEquipmentChanged, Battler: b})
	return nil
}

// ChangeClass switches an actor to another class.
func (c *Context) ChangeClass(b *model.Battler, id data.ClassID) error {
	if !b.IsActor() {
		return fmt.Errorf("change class of %d: %w", b.ID(), ErrNotActor)
	}
	if _, ok := c.tables.Class(id); !ok {
		return fmt.Errorf("change class to %d: %w", id, data.ErrUnknownRecord)
	}
	if b.ClassID() == id {
		return nil
	}
	b.SetClassID(id)
	c.events.Dispatch(&Event{Type: EventClassChanged, Battler: b})
	return nil
}

// LearnSkill teaches b a skill. Unknown skills are skipped.
func (c *Context) LearnSkill(b *model.Battler, id data.SkillID) {
	if _, ok := c.tables.Skill(id); !ok {
		slog.Warn("learn skipped: unknown skill", "battler", b.ID(), "skill", id)
		return
	}
	if b.LearnSkill(id) {
		c.events.Dispatch(&Event{Type: EventSkillLearned, Battler: b, SkillID: id})
	}
}

// ForgetSkill removes a skill from b. Returns false if it was not known.
func (c *Context) ForgetSkill(b *model.Battler, id data.SkillID) bool {
	if !b.ForgetSkill(id) {
		return false
	}
	c.events.Dispatch(&Event{Type: EventSkillForgotten, Battler: b, SkillID: id})
	return true
}

// AddState applies a state for its authored duration. Returns false when
// the state is unknown or currently granted as a passive.
func (c *Context) AddState(b *model.Battler, id data.StateID) bool {
	st, ok := c.tables.State(id)
	if !ok {
		slog.Warn("add state skipped: unknown state", "battler", b.ID(), "state", id)
		return false
	}
	ticks := st.DurationTicks
	if ticks <= 0 {
		ticks = -1
	}
	if !b.AddState(id, ticks) {
		slog.Debug("add state rejected: granted passively", "battler", b.ID(), "state", id)
		return false
	}
	c.events.Dispatch(&Event{Type: EventStateAdded, Battler: b, StateID: id})
	return true
}

// RemoveState removes an ordinary state. Passively granted states stay.
func (c *Context) RemoveState(b *model.Battler, id data.StateID) bool {
	if !b.RemoveState(id) {
		return false
	}
	c.events.Dispatch(&Event{Type: EventStateRemoved, Battler: b, StateID: id})
	return true
}

// GainItem changes the party's owned quantity of an inventory record.
// A negative quantity drops items.
func (c *Context) GainItem(kind data.ItemKind, id int32, quantity int32) {
	if c.party == nil {
		slog.Warn("gain item skipped: no party", "kind", kind, "id", id)
		return
	}
	if quantity == 0 {
		return
	}
	key := model.InventoryKey{Kind: kind, ID: id}
	q := c.party.Gain(key, quantity)
	slog.Debug("party inventory changed",
		"kind", kind,
		"id", id,
		"delta", quantity,
		"quantity", q)
	c.events.Dispatch(&Event{Type: EventInventoryChanged, Item: key})
}

// SetFlag writes a named game flag.
func (c *Context) SetFlag(name string, value bool) {
	if c.flags[name] == value {
		return
	}
	c.flags[name] = value
	c.events.Dispatch(&Event{Type: EventFlagChanged, Flag: name})
}

// Flag returns a game flag; unset flags are false.
func (c *Context) Flag(name string) bool { return c.flags[name] }

// Flags returns a copy of all written flags.
func (c *Context) Flags() map[string]bool { return maps.Clone(c.flags) }

// AddGrowth grants b a permanent attribute modifier.
func (c *Context) AddGrowth(b *model.Battler, key string, m model.Modifier) {
	if !c.agg.Known(key) {
		slog.Warn("growth skipped: unknown attribute", "battler", b.ID(), "attribute", key)
		return
	}
	b.AddGrowth(key, m)
	c.events.Dispatch(&Event{Type: EventModifierChanged, Battler: b})
}

// SetBuff replaces b's temporary modifier for an attribute.
// A zero modifier clears it.
func (c *Context) SetBuff(b *model.Battler, key string, m model.Modifier) {
	if !c.agg.Known(key) {
		slog.Warn("buff skipped: unknown attribute", "battler", b.ID(), "attribute", key)
		return
	}
	b.SetBuff(key, m)
	c.events.Dispatch(&Event{Type: EventModifierChanged, Battler: b})
}
