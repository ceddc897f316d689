package ai

import (
	"slices"

	"github.com/udisondev/jabs/internal/data"
)

// EffectiveThreshold is the effectiveness at or above which a remembered
// skill counts as effective. Effectiveness is the element rate in percent.
const EffectiveThreshold = 100

// MemoryRecord is the last observed outcome of a skill against an enemy type.
type MemoryRecord struct {
	EnemyID       data.EnemyID `json:"enemy_id"`
	SkillID       data.SkillID `json:"skill_id"`
	Effectiveness float64      `json:"effectiveness"`
}

// WasEffective reports whether the record marks the skill as effective.
func (r MemoryRecord) WasEffective() bool {
	return r.Effectiveness >= EffectiveThreshold
}

// BattleMemory is an ally's record of what worked against which enemy type.
// One entry per (enemy, skill) pair; a new observation replaces the old one.
type BattleMemory struct {
	records []MemoryRecord
}

// NewBattleMemory creates a memory, optionally seeded (snapshot restore).
func NewBattleMemory(records ...MemoryRecord) *BattleMemory {
	m := &BattleMemory{}
	for _, r := range records {
		m.Apply(r)
	}
	return m
}

// Apply inserts rec or replaces the existing record for the same pair.
func (m *BattleMemory) Apply(rec MemoryRecord) {
	for i := range m.records {
		if m.records[i].EnemyID == rec.EnemyID && m.records[i].SkillID == rec.SkillID {
			m.records[i] = rec
			return
		}
	}
	m.records = append(m.records, rec)
}

// Lookup returns the record for a pair.
func (m *BattleMemory) Lookup(enemy data.EnemyID, skill data.SkillID) (MemoryRecord, bool) {
	for _, r := range m.records {
		if r.EnemyID == enemy && r.SkillID == skill {
			return r, true
		}
	}
	return MemoryRecord{}, false
}

// EffectiveAmong returns the skills from available remembered as effective
// against enemy, in available order.
func (m *BattleMemory) EffectiveAmong(enemy data.EnemyID, available []data.SkillID) []data.SkillID {
	var out []data.SkillID
	for _, id := range available {
		if r, ok := m.Lookup(enemy, id); ok && r.WasEffective() {
			out = append(out, id)
		}
	}
	return out
}

// Records returns a copy of all records in insertion order.
func (m *BattleMemory) Records() []MemoryRecord {
	return slices.Clone(m.records)
}

// Len returns the number of distinct (enemy, skill) pairs.
func (m *BattleMemory) Len() int {
	return len(m.records)
}
