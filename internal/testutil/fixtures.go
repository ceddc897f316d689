package testutil

import (
	"testing"

	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
)

// Tables loads the embedded default content or fails the test.
func Tables(tb testing.TB) *data.Tables {
	tb.Helper()
	t, err := data.LoadDefault()
	if err != nil {
		tb.Fatalf("loading default content: %v", err)
	}
	return t
}

// NewActor builds a full-health ally battler outside any battle.
func NewActor(id model.BattlerID, recordID int32, params data.Params) *model.Battler {
	b := model.NewBattler(id, "actor", model.KindActor, model.TeamAlly, recordID, 1, params)
	b.SetHP(b.MaxHP())
	b.SetMP(b.MaxMP())
	return b
}

// NewEnemy builds a full-health enemy battler outside any battle.
func NewEnemy(id model.BattlerID, recordID int32, params data.Params) *model.Battler {
	b := model.NewBattler(id, "enemy", model.KindEnemy, model.TeamEnemy, recordID, 1, params)
	b.SetHP(b.MaxHP())
	b.SetMP(b.MaxMP())
	return b
}
