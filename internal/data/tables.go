package data

import "errors"

// ErrUnknownRecord is returned when a record id does not resolve.
var ErrUnknownRecord = errors.New("unknown record")

// Tables is the read-only content database.
// Loaded once at startup; never mutated at runtime.
type Tables struct {
	actors       map[ActorID]*Actor
	classes      map[ClassID]*Class
	skills       map[SkillID]*Skill
	weapons      map[WeaponID]*Weapon
	armors       map[ArmorID]*Armor
	items        map[ItemID]*Item
	states       map[StateID]*State
	enemies      map[EnemyID]*Enemy
	conditionals []*Conditional
}

// NewTables creates empty tables. Used by tests and the loader.
func NewTables() *Tables {
	return &Tables{
		actors:  make(map[ActorID]*Actor),
		classes: make(map[ClassID]*Class),
		skills:  make(map[SkillID]*Skill),
		weapons: make(map[WeaponID]*Weapon),
		armors:  make(map[ArmorID]*Armor),
		items:   make(map[ItemID]*Item),
		states:  make(map[StateID]*State),
		enemies: make(map[EnemyID]*Enemy),
	}
}

func (t *Tables) Actor(id ActorID) (*Actor, bool) {
	a, ok := t.actors[id]
	return a, ok
}

func (t *Tables) Class(id ClassID) (*Class, bool) {
	c, ok := t.classes[id]
	return c, ok
}

func (t *Tables) Skill(id SkillID) (*Skill, bool) {
	s, ok := t.skills[id]
	return s, ok
}

func (t *Tables) Weapon(id WeaponID) (*Weapon, bool) {
	w, ok := t.weapons[id]
	return w, ok
}

func (t *Tables) Armor(id ArmorID) (*Armor, bool) {
	a, ok := t.armors[id]
	return a, ok
}

func (t *Tables) Item(id ItemID) (*Item, bool) {
	i, ok := t.items[id]
	return i, ok
}

func (t *Tables) State(id StateID) (*State, bool) {
	s, ok := t.states[id]
	return s, ok
}

func (t *Tables) Enemy(id EnemyID) (*Enemy, bool) {
	e, ok := t.enemies[id]
	return e, ok
}

// Conditionals returns all proficiency conditionals in authored order.
func (t *Tables) Conditionals() []*Conditional {
	return t.conditionals
}

// InventorySource resolves an inventory entry to its record.
// Returns false for missing references.
func (t *Tables) InventorySource(kind ItemKind, id int32) (Source, bool) {
	switch kind {
	case KindItem:
		if r, ok := t.items[ItemID(id)]; ok {
			return r, true
		}
	case KindWeapon:
		if r, ok := t.weapons[WeaponID(id)]; ok {
			return r, true
		}
	case KindArmor:
		if r, ok := t.armors[ArmorID(id)]; ok {
			return r, true
		}
	}
	return nil, false
}

// PutActor registers an actor record, replacing any record with the same id.
func (t *Tables) PutActor(r *Actor) { t.actors[r.ID] = r }

func (t *Tables) PutClass(r *Class)   { t.classes[r.ID] = r }
func (t *Tables) PutSkill(r *Skill)   { t.skills[r.ID] = r }
func (t *Tables) PutWeapon(r *Weapon) { t.weapons[r.ID] = r }
func (t *Tables) PutArmor(r *Armor)   { t.armors[r.ID] = r }
func (t *Tables) PutItem(r *Item)     { t.items[r.ID] = r }
func (t *Tables) PutState(r *State)   { t.states[r.ID] = r }
func (t *Tables) PutEnemy(r *Enemy)   { t.enemies[r.ID] = r }

// AddConditional appends a proficiency conditional.
func (t *Tables) AddConditional(c *Conditional) { t.conditionals = append(t.conditionals, c) }
