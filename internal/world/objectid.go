package world

import (
	"sync/atomic"

	"github.com/udisondev/jabs/internal/model"
)

// ID ranges (convention):
//
//	0x00000000 - 0x0FFFFFFF: reserved (0 = no battler)
//	0x10000000 - 0x1FFFFFFF: party members
//	0x20000000 - 0x2FFFFFFF: enemies
const (
	actorIDBase = 0x10000000
	enemyIDBase = 0x20000000
)

// IDGenerator hands out unique battler ids for one encounter.
type IDGenerator struct {
	nextActorID atomic.Uint32
	nextEnemyID atomic.Uint32
}

// NewIDGenerator creates a generator starting at the range bases.
func NewIDGenerator() *IDGenerator {
	gen := &IDGenerator{}
	gen.nextActorID.Store(actorIDBase)
	gen.nextEnemyID.Store(enemyIDBase)
	return gen
}

// Next returns the next id for a battler of the given kind.
func (g *IDGenerator) Next(kind model.Kind) model.BattlerID {
	if kind == model.KindEnemy {
		return model.BattlerID(g.nextEnemyID.Add(1))
	}
	return model.BattlerID(g.nextActorID.Add(1))
}

// Observe moves the generator past id so restored battlers never collide
// with new ones.
func (g *IDGenerator) Observe(id model.BattlerID) {
	counter := &g.nextActorID
	if uint32(id) >= enemyIDBase {
		counter = &g.nextEnemyID
	}
	for {
		cur := counter.Load()
		if uint32(id) <= cur || counter.CompareAndSwap(cur, uint32(id)) {
			return
		}
	}
}
