package battle

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/udisondev/jabs/internal/ai"
	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
	"github.com/udisondev/jabs/internal/snapshot"
)

var ErrNotEmpty = errors.New("battle already has battlers")

// Snapshot captures the battle: flags, party inventory and every battler
// in spawn order.
func (c *Context) Snapshot() *snapshot.Document {
	doc := &snapshot.Document{
		Version:  snapshot.Version,
		BattleID: c.id.String(),
		Tick:     c.ticks,
		SavedAt:  time.Now().UTC(),
		Flags:    c.Flags(),
	}
	if c.party != nil {
		for _, e := range c.party.Inventory() {
			doc.Inventory = append(doc.Inventory, snapshot.Item{Kind: e.Key.Kind, ID: e.Key.ID, Quantity: e.Quantity})
		}
	}
	for _, id := range c.order {
		cb := c.combatants[id]
		mem, _ := c.Memory(id)
		s := snapshot.Capture(cb.Battler(), mem)
		s.Player = cb.PlayerControlled()
		doc.Battlers = append(doc.Battlers, s)
	}
	return doc
}

// Restore rebuilds a saved battle into an empty one. Battlers keep their
// ids; caches and parameters are recomputed from the restored state.
func (c *Context) Restore(doc *snapshot.Document) error {
	if c.closed {
		return ErrClosed
	}
	if len(c.combatants) > 0 {
		return ErrNotEmpty
	}

	// игрок первым: без него нет партии
	saved := slices.Clone(doc.Battlers)
	slices.SortStableFunc(saved, func(a, b snapshot.Battler) int {
		return cmp.Compare(boolRank(!a.Player), boolRank(!b.Player))
	})

	restored := make([]*model.Battler, 0, len(saved))
	for _, s := range saved {
		b, err := c.spawnSaved(s)
		if err != nil {
			return fmt.Errorf("restoring battle %s: %w", doc.BattleID, err)
		}
		if err := snapshot.Restore(b, s); err != nil {
			return fmt.Errorf("restoring battle %s: %w", doc.BattleID, err)
		}
		c.Refresh(b)

		if len(s.Memory) > 0 {
			if br, ok := c.ai.Brain(b.ID()); ok && br.Ally() != nil {
				br.Ally().Memory = ai.NewBattleMemory(s.Memory...)
			}
		}
		restored = append(restored, b)
	}

	// party passives from the inventory raise maximums too
	for _, it := range doc.Inventory {
		c.GainItem(it.Kind, it.ID, it.Quantity)
	}
	for name, v := range doc.Flags {
		c.SetFlag(name, v)
	}

	// params are final only now
	for i, b := range restored {
		b.SetHP(saved[i].HP)
		b.SetMP(saved[i].MP)
		b.SetTP(min(saved[i].TP, int32(c.agg.MaxTP(b))))
	}
	c.ticks = doc.Tick

	slog.Info("battle restored",
		"battle", c.id,
		"from", doc.BattleID,
		"battlers", len(saved),
		"tick", doc.Tick)
	return nil
}

func (c *Context) spawnSaved(s snapshot.Battler) (*model.Battler, error) {
	pos := model.Point(s.Position)
	if s.Kind == model.KindEnemy {
		return c.spawnEnemy(data.EnemyID(s.RecordID), pos, s.ID)
	}
	return c.spawnActor(data.ActorID(s.RecordID), pos, s.Player, s.ID)
}

func boolRank(v bool) int {
	if v {
		return 1
	}
	return 0
}
