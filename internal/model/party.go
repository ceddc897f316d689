package model

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/udisondev/jabs/internal/data"
)

// MaxPartyMembers is the maximum party size (leader + 3 followers).
const MaxPartyMembers = 4

// ErrPartyFull is returned by AddMember when the party has no free slot.
var ErrPartyFull = errors.New("party is full")

// InventoryKey identifies an owned stack: item, weapon or armor record.
type InventoryKey struct {
	Kind data.ItemKind
	ID   int32
}

// InventoryEntry is one owned stack.
type InventoryEntry struct {
	Key      InventoryKey
	Quantity int32
}

// Party is the player's group: members, shared inventory and the
// party-wide passive set derived from that inventory.
// Leader is always the first member.
type Party struct {
	members   []*Battler
	inventory map[InventoryKey]int32
	passives  PassiveSet
}

// NewParty creates a party led by leader.
func NewParty(leader *Battler) *Party {
	p := &Party{
		members:   make([]*Battler, 0, MaxPartyMembers),
		inventory: make(map[InventoryKey]int32),
	}
	p.members = append(p.members, leader)
	leader.party = p
	return p
}

// Leader returns the party leader (the player battler).
func (p *Party) Leader() *Battler {
	return p.members[0]
}

// Members returns a copy of the member list, leader first.
func (p *Party) Members() []*Battler {
	return slices.Clone(p.members)
}

// MemberCount returns the number of members.
func (p *Party) MemberCount() int {
	return len(p.members)
}

// IsMember reports whether the battler belongs to the party.
func (p *Party) IsMember(id BattlerID) bool {
	return p.indexOf(id) >= 0
}

// AddMember adds an actor battler to the party.
func (p *Party) AddMember(b *Battler) error {
	if p.IsMember(b.ID()) {
		return fmt.Errorf("battler %d already in party", b.ID())
	}
	if len(p.members) >= MaxPartyMembers {
		return ErrPartyFull
	}
	p.members = append(p.members, b)
	b.party = p
	return nil
}

// RemoveMember removes a non-leader member. Returns false if not found or leader.
func (p *Party) RemoveMember(id BattlerID) bool {
	i := p.indexOf(id)
	if i <= 0 {
		return false
	}
	p.members[i].party = nil
	p.members = slices.Delete(p.members, i, i+1)
	return true
}

func (p *Party) indexOf(id BattlerID) int {
	return slices.IndexFunc(p.members, func(m *Battler) bool { return m.ID() == id })
}

// Quantity returns how many units of a record the party owns.
func (p *Party) Quantity(key InventoryKey) int32 {
	return p.inventory[key]
}

// Gain changes the owned quantity by delta, clamped at zero.
// Returns the new quantity.
func (p *Party) Gain(key InventoryKey, delta int32) int32 {
	q := max(p.inventory[key]+delta, 0)
	if q == 0 {
		delete(p.inventory, key)
	} else {
		p.inventory[key] = q
	}
	return q
}

// Inventory returns owned stacks ordered by kind then id.
func (p *Party) Inventory() []InventoryEntry {
	out := make([]InventoryEntry, 0, len(p.inventory))
	for k, q := range p.inventory {
		out = append(out, InventoryEntry{Key: k, Quantity: q})
	}
	slices.SortFunc(out, func(a, b InventoryEntry) int {
		if c := cmp.Compare(a.Key.Kind, b.Key.Kind); c != 0 {
			return c
		}
		return cmp.Compare(a.Key.ID, b.Key.ID)
	})
	return out
}

// Passives returns the party-wide passive set.
func (p *Party) Passives() PassiveSet { return p.passives }

// SetPassives replaces the party-wide passive set. Called by the resolver only.
func (p *Party) SetPassives(s PassiveSet) { p.passives = s }
