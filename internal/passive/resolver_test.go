package passive

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
)

func newActor() *model.Battler {
	b := model.NewBattler(1, "Aldric", model.KindActor, model.TeamAlly, 1, 1, data.Params{MaxHP: 100})
	b.SetClassID(1)
	return b
}

func baseTables() *data.Tables {
	t := data.NewTables()
	t.PutActor(&data.Actor{ID: 1, ClassID: 1})
	t.PutClass(&data.Class{ID: 1})
	return t
}

func TestRefresh_UniqueWinsOverStackable(t *testing.T) {
	tables := baseTables()
	tables.PutWeapon(&data.Weapon{ID: 1, Tags: data.Tags{UniquePassives: []data.StateID{10}}})
	tables.PutWeapon(&data.Weapon{ID: 2, Tags: data.Tags{StackablePassives: []data.StateID{10}}})

	b := newActor()
	b.SetEquipment(data.Equipment{MainHand: 1, OffHand: 2})

	set := NewResolver(tables).Refresh(b)

	assert.Equal(t, 1, set.Count(10))
	assert.Equal(t, []data.StateID{10}, b.Passives().IDs())
}

func TestRefresh_UniqueDeduplicatedAcrossSources(t *testing.T) {
	tables := baseTables()
	tables.PutArmor(&data.Armor{ID: 1, Tags: data.Tags{UniquePassives: []data.StateID{15}}})
	tables.PutSkill(&data.Skill{ID: 12, Tags: data.Tags{UniquePassives: []data.StateID{15}}})

	b := newActor()
	b.SetEquipment(data.Equipment{Armors: []data.ArmorID{1}})
	b.LearnSkill(12)
	r := NewResolver(tables)

	assert.Equal(t, 1, r.Refresh(b).Count(15))

	// losing one of two unique sources leaves the id in place
	b.SetEquipment(data.Equipment{})
	assert.Equal(t, 1, r.Refresh(b).Count(15))

	b.ForgetSkill(12)
	assert.Equal(t, 0, r.Refresh(b).Count(15))
	assert.False(t, b.HasState(15))
}

func TestRefresh_StackablePerSource(t *testing.T) {
	tables := baseTables()
	tables.PutWeapon(&data.Weapon{ID: 1, Tags: data.Tags{StackablePassives: []data.StateID{16}}})
	tables.PutClass(&data.Class{ID: 1, Tags: data.Tags{StackablePassives: []data.StateID{16}}})
	tables.PutSkill(&data.Skill{ID: 3, Tags: data.Tags{StackablePassives: []data.StateID{16, 17}}})

	b := newActor()
	b.SetEquipment(data.Equipment{MainHand: 1})
	b.LearnSkill(3)

	set := NewResolver(tables).Refresh(b)

	assert.Equal(t, 3, set.Count(16))
	assert.Equal(t, 1, set.Count(17))
	assert.Equal(t, len(set.Unique())+len(set.Stackable()), set.Len())
}

func TestRefresh_OrdinaryStatesAreSources(t *testing.T) {
	tables := baseTables()
	tables.PutState(&data.State{ID: 14, Tags: data.Tags{UniquePassives: []data.StateID{20}}})
	tables.PutState(&data.State{ID: 20, Tags: data.Tags{UniquePassives: []data.StateID{21}}})

	b := newActor()
	b.AddState(14, 60)
	r := NewResolver(tables)

	r.Refresh(b)
	assert.True(t, b.HasState(20))
	assert.False(t, b.HasState(21), "passive states do not feed passive resolution")

	b.RemoveState(14)
	r.Refresh(b)
	assert.False(t, b.HasState(20))
}

func TestRefresh_EnemySources(t *testing.T) {
	tables := data.NewTables()
	tables.PutEnemy(&data.Enemy{ID: 2, Tags: data.Tags{UniquePassives: []data.StateID{15}}})

	e := model.NewBattler(9, "Wolf", model.KindEnemy, model.TeamEnemy, 2, 1, data.Params{MaxHP: 10})
	NewResolver(tables).Refresh(e)

	assert.Equal(t, []data.StateID{15}, e.AllStateIDs())
}

func TestRefresh_MissingReferencesSkipped(t *testing.T) {
	b := newActor()
	b.SetEquipment(data.Equipment{MainHand: 42})
	b.LearnSkill(404)

	set := NewResolver(data.NewTables()).Refresh(b)
	assert.Equal(t, 0, set.Len())
}

func TestRefreshParty_QuantityExpansion(t *testing.T) {
	tables := baseTables()
	tables.PutItem(&data.Item{ID: 2, Tags: data.Tags{StackablePassives: []data.StateID{10}}})
	tables.PutItem(&data.Item{ID: 3, Tags: data.Tags{UniquePassives: []data.StateID{11}}})

	leader := newActor()
	party := model.NewParty(leader)
	party.Gain(model.InventoryKey{Kind: data.KindItem, ID: 2}, 3)
	party.Gain(model.InventoryKey{Kind: data.KindItem, ID: 3}, 5)
	party.Gain(model.InventoryKey{Kind: data.KindItem, ID: 404}, 1)
	r := NewResolver(tables)

	set := r.RefreshParty(party)
	assert.Equal(t, 3, set.Count(10))
	assert.Equal(t, 1, set.Count(11), "unique ignores quantity")

	party.Gain(model.InventoryKey{Kind: data.KindItem, ID: 2}, -2)
	assert.Equal(t, 1, r.RefreshParty(party).Count(10))

	r.Refresh(leader)
	assert.ElementsMatch(t, []data.StateID{11, 10}, r.PassiveIDs(leader))
}
