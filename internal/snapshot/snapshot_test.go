package snapshot

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/jabs/internal/ai"
	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
)

func newActor() *model.Battler {
	b := model.NewBattler(0x10000001, "Aldric", model.KindActor, model.TeamAlly, 1, 5, data.Params{MaxHP: 500, MaxMP: 50})
	b.SetClassID(1)
	b.LearnSkill(1)
	b.LearnSkill(13)
	b.SetEquipment(data.Equipment{MainHand: 1, Armors: []data.ArmorID{1}})
	b.SetHP(b.MaxHP())
	b.SetMP(b.MaxMP())
	return b
}

func TestCaptureRestore(t *testing.T) {
	src := newActor()
	src.SetHP(123)
	src.SetTP(7)
	src.AddState(11, 30)
	src.SetBuff("atk", model.Modifier{Rate: 20})
	src.AddGrowth("max-hp", model.Modifier{Flat: 100})
	src.SetProficiency(13, 4)
	src.MarkUnlocked("blade-dancer")
	src.SetPosition(model.NewPoint(3.5, 4.5))
	src.SetLastSkill(13)
	mem := ai.NewBattleMemory(ai.MemoryRecord{EnemyID: 2, SkillID: 13, Effectiveness: 120})

	s := Capture(src, mem)
	assert.Equal(t, []State{{ID: 11, Remaining: 30}}, s.States)
	assert.Equal(t, mem.Records(), s.Memory)

	dst := newActor()
	dst.LearnSkill(99)
	require.NoError(t, Restore(dst, s))

	assert.Equal(t, src.Skills(), dst.Skills())
	assert.Equal(t, int32(123), dst.HP())
	assert.Equal(t, int32(7), dst.TP())
	rem, ok := dst.StateRemaining(11)
	require.True(t, ok)
	assert.Equal(t, int32(30), rem)
	assert.Equal(t, src.Buffs(), dst.Buffs())
	assert.Equal(t, src.AllGrowths(), dst.AllGrowths())
	v, _ := dst.Proficiency(13)
	assert.Equal(t, int32(4), v)
	assert.True(t, dst.IsUnlocked("blade-dancer"))
	assert.Equal(t, model.NewPoint(3.5, 4.5), dst.Position())
	assert.Equal(t, data.SkillID(13), dst.LastSkill())
}

func TestRestore_RecordMismatch(t *testing.T) {
	s := Capture(newActor(), nil)
	other := model.NewBattler(0x20000001, "Slime", model.KindEnemy, model.TeamEnemy, 1, 1, data.Params{MaxHP: 120})

	assert.ErrorIs(t, Restore(other, s), ErrRecordMismatch)
}

func TestEncodeDecode(t *testing.T) {
	doc := &Document{
		BattleID:  "b-1",
		Tick:      42,
		SavedAt:   time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
		Flags:     map[string]bool{"gate": true},
		Inventory: []Item{{Kind: data.KindItem, ID: 2, Quantity: 3}},
		Battlers:  []Battler{Capture(newActor(), nil)},
	}

	raw, err := Encode(doc)
	require.NoError(t, err)
	assert.Equal(t, Version, doc.Version)

	got, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, doc.BattleID, got.BattleID)
	assert.Equal(t, doc.Tick, got.Tick)
	assert.True(t, doc.SavedAt.Equal(got.SavedAt))
	assert.Equal(t, doc.Flags, got.Flags)
	assert.Equal(t, doc.Inventory, got.Inventory)
	require.Len(t, got.Battlers, 1)
	assert.Equal(t, doc.Battlers[0].Skills, got.Battlers[0].Skills)

	digest, err := Digest(raw)
	require.NoError(t, err)
	assert.Len(t, digest, 64)
}

func TestDecode_Tampered(t *testing.T) {
	raw, err := Encode(&Document{BattleID: "b-1", Tick: 42})
	require.NoError(t, err)

	tampered := bytes.Replace(raw, []byte(`"tick":42`), []byte(`"tick":43`), 1)
	require.NotEqual(t, raw, tampered)

	_, err = Decode(tampered)
	assert.ErrorIs(t, err, ErrDigestMismatch)
}

func TestDecode_Version(t *testing.T) {
	payload := []byte(`{"version":99,"battle_id":"b-1","tick":0,"saved_at":"2026-10-01T12:00:00Z","battlers":null}`)
	raw, err := json.Marshal(envelope{Digest: sum256Hex(payload), Document: payload})
	require.NoError(t, err)

	_, err = Decode(raw)
	assert.ErrorIs(t, err, ErrVersion)
}
