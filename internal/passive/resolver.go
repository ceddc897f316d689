// Package passive recomputes the passive state sets of battlers and parties
// from their current possessions.
//
// A set is always rebuilt from scratch and replaced wholesale: there is no
// incremental add/remove path, so a unique id granted by two sources
// survives the loss of either one.
package passive

import (
	"log/slog"

	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
	"github.com/udisondev/jabs/internal/stat"
)

// Resolver rebuilds passive sets.
type Resolver struct {
	tables *data.Tables
}

// NewResolver creates a resolver over the content tables.
func NewResolver(t *data.Tables) *Resolver {
	return &Resolver{tables: t}
}

// occurrence is one declaring source with its owned quantity.
type occurrence struct {
	src      data.Source
	quantity int32
}

// Refresh recomputes b's own passive set.
// Actors: actor, class, equips, skills, non-passive states.
// Enemies: enemy, skills, non-passive states.
func (r *Resolver) Refresh(b *model.Battler) model.PassiveSet {
	srcs := stat.PossessionSources(r.tables, b)
	occ := make([]occurrence, len(srcs))
	for i, s := range srcs {
		occ[i] = occurrence{src: s, quantity: 1}
	}

	set := resolve(occ)
	b.SetPassives(set)
	slog.Debug("passive set refreshed",
		"battler", b.ID(),
		"unique", len(set.Unique()),
		"stackable", len(set.Stackable()))
	return set
}

// RefreshParty recomputes the party-wide set from owned inventory.
// A stackable id is added once per owned unit.
func (r *Resolver) RefreshParty(p *model.Party) model.PassiveSet {
	inv := p.Inventory()
	occ := make([]occurrence, 0, len(inv))
	for _, e := range inv {
		src, ok := r.tables.InventorySource(e.Key.Kind, e.Key.ID)
		if !ok {
			slog.Debug("party passive source skipped: missing record",
				"kind", e.Key.Kind,
				"id", e.Key.ID)
			continue
		}
		occ = append(occ, occurrence{src: src, quantity: e.Quantity})
	}

	set := resolve(occ)
	p.SetPassives(set)
	return set
}

// PassiveIDs returns b's currently active passive ids: own, then party.
func (r *Resolver) PassiveIDs(b *model.Battler) []data.StateID {
	ids := b.Passives().IDs()
	if p := b.Party(); p != nil && b.IsActor() {
		ids = append(ids, p.Passives().IDs()...)
	}
	return ids
}

// resolve builds the unique set first, then expands stackables excluding
// any id already unique. Len = |unique| + Σ stackable counts.
func resolve(occ []occurrence) model.PassiveSet {
	var unique []data.StateID
	seen := make(map[data.StateID]struct{})
	for _, o := range occ {
		for _, id := range o.src.UniquePassiveIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}

	var stackable []data.StateID
	for _, o := range occ {
		for _, id := range o.src.StackablePassiveIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			for range o.quantity {
				stackable = append(stackable, id)
			}
		}
	}

	return model.NewPassiveSet(unique, stackable)
}
