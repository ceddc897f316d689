package battle

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
)

var ErrPlayerSpawned = errors.New("player already spawned")

// SpawnActor creates a battler from an actor record and places it at pos.
// With player set it becomes the player and leads a new party; otherwise it
// joins the party as an AI-controlled ally.
func (c *Context) SpawnActor(id data.ActorID, pos model.Point, player bool) (*model.Battler, error) {
	return c.spawnActor(id, pos, player, 0)
}

// spawnActor uses bid as the battler id when non-zero.
func (c *Context) spawnActor(id data.ActorID, pos model.Point, player bool, bid model.BattlerID) (*model.Battler, error) {
	if c.closed {
		return nil, ErrClosed
	}
	rec, ok := c.tables.Actor(id)
	if !ok {
		return nil, fmt.Errorf("spawn actor %d: %w", id, data.ErrUnknownRecord)
	}
	switch {
	case player && c.player != nil:
		return nil, fmt.Errorf("spawn actor %d: %w", id, ErrPlayerSpawned)
	case !player && c.party == nil:
		return nil, fmt.Errorf("spawn actor %d: %w", id, ErrNoParty)
	case !player && c.party.MemberCount() >= model.MaxPartyMembers:
		return nil, fmt.Errorf("spawn actor %d: %w", id, model.ErrPartyFull)
	}

	mode, err := model.ParseAllyMode(rec.AllyMode)
	if err != nil {
		slog.Warn("actor ally mode ignored", "actor", id, "error", err)
		mode = model.ModeVariety
	}

	var params data.Params
	cls, hasClass := c.tables.Class(rec.ClassID)
	if hasClass {
		params = cls.ParamsAt(rec.Level)
	}
	b := model.NewBattler(c.nextID(model.KindActor, bid), rec.Name, model.KindActor, model.TeamAlly, int32(rec.ID), rec.Level, params)
	b.SetClassID(rec.ClassID)
	b.SetEquipment(rec.Equipment)
	if hasClass {
		for _, sk := range cls.Skills {
			b.LearnSkill(sk)
		}
	}
	for _, sk := range rec.Skills {
		b.LearnSkill(sk)
	}
	b.SetSightRange(rec.SightRange)
	b.SetPrepareTicks(rec.PrepareTicks)
	b.SetPosition(pos)
	b.SetHome(pos)

	if err := c.field.Place(b); err != nil {
		return nil, fmt.Errorf("spawn actor %d: %w", id, err)
	}

	var cb model.Combatant
	if player {
		c.party = model.NewParty(b)
		c.player = b
		c.passives.RefreshParty(c.party)
		cb = model.NewPlayerControlled(b)
	} else {
		if err := c.party.AddMember(b); err != nil {
			c.field.Remove(b.ID())
			return nil, fmt.Errorf("spawn actor %d: %w", id, err)
		}
		cb = model.NewAIControlled(b, mode)
	}
	if err := c.add(cb); err != nil {
		return nil, fmt.Errorf("spawn actor %d: %w", id, err)
	}
	return b, nil
}

// SpawnEnemy creates a battler from an enemy record at pos. The spawn
// point becomes its home.
func (c *Context) SpawnEnemy(id data.EnemyID, pos model.Point) (*model.Battler, error) {
	return c.spawnEnemy(id, pos, 0)
}

func (c *Context) spawnEnemy(id data.EnemyID, pos model.Point, bid model.BattlerID) (*model.Battler, error) {
	if c.closed {
		return nil, ErrClosed
	}
	rec, ok := c.tables.Enemy(id)
	if !ok {
		return nil, fmt.Errorf("spawn enemy %d: %w", id, data.ErrUnknownRecord)
	}

	b := model.NewBattler(c.nextID(model.KindEnemy, bid), rec.Name, model.KindEnemy, model.TeamEnemy, int32(rec.ID), rec.Level, rec.Params)
	for _, sk := range rec.Skills {
		b.LearnSkill(sk)
	}
	traits, unknown := model.ParseAITraits(rec.Traits)
	if len(unknown) > 0 {
		slog.Warn("unknown enemy AI traits ignored", "enemy", id, "traits", unknown)
	}
	b.SetTraits(traits)
	b.SetSightRange(rec.SightRange)
	b.SetPrepareTicks(rec.PrepareTicks)
	b.SetCannotIdle(rec.CannotIdle)
	b.SetInanimate(rec.Inanimate)
	b.SetElementRates(rec.ElementRates)
	b.SetPosition(pos)
	b.SetHome(pos)

	if err := c.field.Place(b); err != nil {
		return nil, fmt.Errorf("spawn enemy %d: %w", id, err)
	}
	if err := c.add(model.NewAIControlled(b, model.ModeDoNothing)); err != nil {
		return nil, fmt.Errorf("spawn enemy %d: %w", id, err)
	}
	return b, nil
}

// nextID returns bid when set (restored battlers keep their ids) or a
// fresh id otherwise.
func (c *Context) nextID(kind model.Kind, bid model.BattlerID) model.BattlerID {
	if bid == 0 {
		return c.ids.Next(kind)
	}
	c.ids.Observe(bid)
	return bid
}

// add registers a placed combatant, resolves its caches and fills HP/MP.
func (c *Context) add(cb model.Combatant) error {
	b := cb.Battler()
	if !cb.PlayerControlled() {
		if err := c.ai.Register(cb); err != nil {
			c.field.Remove(b.ID())
			if p := b.Party(); p != nil {
				p.RemoveMember(b.ID())
			}
			return err
		}
	}
	c.combatants[b.ID()] = cb
	c.order = append(c.order, b.ID())

	c.events.Dispatch(&Event{Type: EventSpawned, Battler: b})
	b.SetHP(b.MaxHP())
	b.SetMP(b.MaxMP())

	slog.Debug("battler spawned",
		"battle", c.id,
		"battler", b.ID(),
		"name", b.Name(),
		"kind", b.Kind(),
		"position", b.Position())
	return nil
}

// Despawn removes a battler from the battle. The player cannot leave.
func (c *Context) Despawn(id model.BattlerID) error {
	cb, ok := c.combatants[id]
	if !ok {
		return fmt.Errorf("despawn %d: %w", id, ErrUnknownBattler)
	}
	if cb.PlayerControlled() {
		return fmt.Errorf("despawn %d: player cannot leave the battle", id)
	}
	b := cb.Battler()

	c.ai.Unregister(id)
	c.field.Remove(id)
	if c.party != nil {
		c.party.RemoveMember(id)
	}
	delete(c.combatants, id)
	c.order = slices.DeleteFunc(c.order, func(x model.BattlerID) bool { return x == id })

	c.events.Dispatch(&Event{Type: EventDespawned, Battler: b})
	return nil
}
