package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/jabs/internal/data"
)

// newTestBattler -- хелпер для создания тестового актёра.
func newTestBattler(t *testing.T, id BattlerID) *Battler {
	t.Helper()
	return NewBattler(id, "Tester", KindActor, TeamAlly, int32(id), 5, data.Params{MaxHP: 200, MaxMP: 50, Atk: 20})
}

func TestNewBattler(t *testing.T) {
	b := newTestBattler(t, 1)

	assert.Equal(t, int32(200), b.HP())
	assert.Equal(t, int32(50), b.MP())
	assert.Equal(t, int32(0), b.TP())
	assert.True(t, b.IsActor())
	assert.True(t, b.IsAlive())
	assert.InDelta(t, 1.0, b.HPRate(), 1e-9)
}

func TestBattler_ResourceClamping(t *testing.T) {
	b := newTestBattler(t, 1)

	b.SetHP(-10)
	assert.Equal(t, int32(0), b.HP())
	assert.True(t, b.IsDead())

	b.SetHP(999)
	assert.Equal(t, int32(200), b.HP())

	b.SetTP(250)
	assert.Equal(t, int32(MaxTP), b.TP())

	b.SetParams(data.Params{MaxHP: 100, MaxMP: 10})
	assert.Equal(t, int32(100), b.HP(), "HP clamps to new max")
	assert.Equal(t, int32(10), b.MP())
}

func TestBattler_Skills(t *testing.T) {
	b := newTestBattler(t, 1)

	assert.True(t, b.LearnSkill(3))
	assert.False(t, b.LearnSkill(3), "second learn is a no-op")
	assert.True(t, b.HasSkill(3))

	assert.True(t, b.ForgetSkill(3))
	assert.False(t, b.ForgetSkill(3))
	assert.Empty(t, b.Skills())
}

func TestBattler_StateDurations(t *testing.T) {
	b := newTestBattler(t, 1)

	require.True(t, b.AddState(11, 2))
	require.True(t, b.AddState(13, -1))

	assert.Empty(t, b.TickStates())
	expired := b.TickStates()
	assert.Equal(t, []data.StateID{11}, expired)
	assert.False(t, b.HasState(11))
	assert.True(t, b.HasState(13), "untimed state stays")

	require.True(t, b.AddState(13, 5), "re-adding refreshes")
	left, ok := b.StateRemaining(13)
	require.True(t, ok)
	assert.Equal(t, int32(5), left)
}

func TestBattler_PassiveStatesBypassOrdinaryPath(t *testing.T) {
	b := newTestBattler(t, 1)
	b.SetPassives(NewPassiveSet([]data.StateID{15}, []data.StateID{16, 16}))

	assert.False(t, b.AddState(15, 60), "passive id cannot be added normally")
	assert.False(t, b.RemoveState(15), "passive id cannot be removed normally")
	assert.False(t, b.RemoveState(16))
	assert.True(t, b.HasState(15))

	assert.Empty(t, b.OrdinaryStateIDs())
	assert.Equal(t, []data.StateID{15, 16, 16}, b.AllStateIDs())

	b.SetPassives(PassiveSet{})
	assert.False(t, b.HasState(15), "passive disappears once recomputed away")
	assert.True(t, b.AddState(15, 60))
}

func TestBattler_PartyPassivesVisibleToMembers(t *testing.T) {
	leader := newTestBattler(t, 1)
	p := NewParty(leader)
	p.SetPassives(NewPassiveSet(nil, []data.StateID{10, 10}))

	assert.Equal(t, []data.StateID{10, 10}, leader.AllStateIDs())
	assert.False(t, leader.RemoveState(10))
}

func TestBattler_ModifierCaches(t *testing.T) {
	b := newTestBattler(t, 1)

	b.SetBuff("crit-multiplier", Modifier{Flat: 10})
	b.SetBuff("crit-multiplier", Modifier{Flat: 20})
	m, ok := b.Buff("crit-multiplier")
	require.True(t, ok)
	assert.Equal(t, 20.0, m.Flat, "buff replaces")

	b.SetBuff("crit-multiplier", Modifier{})
	_, ok = b.Buff("crit-multiplier")
	assert.False(t, ok, "zero buff removes entry")

	b.AddGrowth("max-tp", Modifier{Flat: 5})
	b.AddGrowth("max-tp", Modifier{Flat: 5})
	assert.Len(t, b.Growths("max-tp"), 2, "growths accumulate")
}

func TestBattler_ProficiencyAndUnlocks(t *testing.T) {
	b := newTestBattler(t, 1)

	_, ok := b.Proficiency(3)
	assert.False(t, ok)

	b.SetProficiency(3, -4)
	v, ok := b.Proficiency(3)
	require.True(t, ok)
	assert.Equal(t, int32(0), v)

	assert.True(t, b.MarkUnlocked("b"))
	assert.True(t, b.MarkUnlocked("a"))
	assert.False(t, b.MarkUnlocked("a"))
	assert.Equal(t, []string{"a", "b"}, b.UnlockedKeys())
}

func TestBattler_ElementRate(t *testing.T) {
	b := newTestBattler(t, 1)
	b.SetElementRates(map[data.ElementID]float64{2: 1.5})

	assert.Equal(t, 1.5, b.ElementRate(2))
	assert.Equal(t, 1.0, b.ElementRate(3))
}

func TestTeam_IsHostileTo(t *testing.T) {
	assert.True(t, TeamAlly.IsHostileTo(TeamEnemy))
	assert.False(t, TeamAlly.IsHostileTo(TeamAlly))
	assert.False(t, TeamNeutral.IsHostileTo(TeamEnemy))
}
