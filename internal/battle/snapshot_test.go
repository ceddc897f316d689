package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/jabs/internal/ai"
	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
	"github.com/udisondev/jabs/internal/snapshot"
	"github.com/udisondev/jabs/internal/stat"
	"github.com/udisondev/jabs/internal/testutil"
	"github.com/udisondev/jabs/internal/world"
)

func TestSnapshot_RestoreRoundTrip(t *testing.T) {
	src, _ := newBattle(t)
	p := spawnPlayer(t, src, 1)
	sera, err := src.SpawnActor(2, model.NewPoint(6.5, 5.5), false)
	require.NoError(t, err)
	slime, err := src.SpawnEnemy(1, model.NewPoint(9.5, 9.5))
	require.NoError(t, err)

	src.AddGrowth(p, "max-hp", model.Modifier{Flat: 100})
	src.Proficiency().Increase(p, 13, 3)
	require.True(t, src.AddState(p, 11))
	src.GainItem(data.KindItem, 2, 3)
	src.SetFlag("bridge-open", true)
	p.SetHP(300)
	slime.SetHP(40)
	mem, ok := src.Memory(sera.ID())
	require.True(t, ok)
	mem.Apply(ai.MemoryRecord{EnemyID: 1, SkillID: 3, Effectiveness: 150})

	raw, err := snapshot.Encode(src.Snapshot())
	require.NoError(t, err)
	doc, err := snapshot.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, src.ID().String(), doc.BattleID)
	require.Len(t, doc.Battlers, 3)

	dst, _ := newBattle(t)
	require.NoError(t, dst.Restore(doc))

	rp, ok := dst.Battler(p.ID())
	require.True(t, ok)
	assert.Same(t, rp, dst.Player())
	assert.Equal(t, p.MaxHP(), rp.MaxHP())
	assert.Equal(t, int32(300), rp.HP())
	assert.Equal(t, p.Skills(), rp.Skills())
	assert.Equal(t, src.Proficiency().Proficiency(p, 13), dst.Proficiency().Proficiency(rp, 13))
	assert.True(t, rp.HasState(11))
	assert.True(t, rp.HasState(10), "clover passive is rebuilt from the inventory")
	assert.Equal(t, 3, dst.Party().Passives().Count(10))
	assert.True(t, dst.Flag("bridge-open"))

	rs, ok := dst.Battler(slime.ID())
	require.True(t, ok)
	assert.Equal(t, int32(40), rs.HP())
	assert.Equal(t, slime.Home(), rs.Home())

	rmem, ok := dst.Memory(sera.ID())
	require.True(t, ok)
	rec, ok := rmem.Lookup(1, 3)
	require.True(t, ok)
	assert.True(t, rec.WasEffective())

	next, err := dst.SpawnEnemy(1, model.NewPoint(12.5, 12.5))
	require.NoError(t, err)
	assert.Greater(t, next.ID(), slime.ID(), "new ids continue after restored ones")
}

func TestSnapshot_RestoreKeepsPartyPassiveMaximums(t *testing.T) {
	src, tables := newBattle(t)
	clover, ok := tables.State(10)
	require.True(t, ok)
	clover.Bonuses = map[string][]float64{stat.KeyMaxHP: {100}}

	p := spawnPlayer(t, src, 1)
	base := p.MaxHP()
	src.GainItem(data.KindItem, 2, 1)
	require.Equal(t, base+100, p.MaxHP())
	p.SetHP(p.MaxHP())

	raw, err := snapshot.Encode(src.Snapshot())
	require.NoError(t, err)
	doc, err := snapshot.Decode(raw)
	require.NoError(t, err)

	dst, err := New(tables, world.NewField(20, 20), DefaultConfig(), &testutil.ScriptedRand{})
	require.NoError(t, err)
	t.Cleanup(dst.Close)
	require.NoError(t, dst.Restore(doc))

	rp, ok := dst.Battler(p.ID())
	require.True(t, ok)
	assert.Equal(t, base+100, rp.MaxHP())
	assert.Equal(t, rp.MaxHP(), rp.HP(), "full HP survives the round trip")
}

func TestRestore_RequiresEmptyBattle(t *testing.T) {
	c, _ := newBattle(t)
	spawnPlayer(t, c, 1)

	err := c.Restore(c.Snapshot())
	assert.ErrorIs(t, err, ErrNotEmpty)
}
