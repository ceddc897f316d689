package ai

import (
	"github.com/udisondev/jabs/internal/data"
	"github.com/udisondev/jabs/internal/model"
)

// Rand is the randomness source of AI rolls.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// Spatial answers movement and distance queries. The AI picks directions;
// pathing and collision belong to the implementation.
type Spatial interface {
	// DistanceTo returns the tile distance between a and b.
	// ok is false when no valid distance exists (different field, removed).
	DistanceTo(a, b *model.Battler) (dist float64, ok bool)
	// PathToward moves b one step toward p.
	PathToward(b *model.Battler, p model.Point)
	// MoveAway moves b one step away from p.
	MoveAway(b *model.Battler, p model.Point)
	// IsInRange reports whether target is within proximity tiles of b.
	IsInRange(b, target *model.Battler, proximity float64) bool
	// FaceToward turns b toward p.
	FaceToward(b *model.Battler, p model.Point)
}

// Host reports encounter-wide conditions that suspend the whole AI loop.
type Host interface {
	IsPaused() bool
	IsMessageActive() bool
	IsEventRunning() bool
}

// Senses is the AI's read access to the battle.
type Senses interface {
	Tables() *data.Tables
	Battler(id model.BattlerID) (*model.Battler, bool)
	// Player returns the player battler, or nil.
	Player() *model.Battler
	// AlliesOf returns living battlers on b's team, b included.
	AlliesOf(b *model.Battler) []*model.Battler
	// HostilesOf returns living battlers hostile to b.
	HostilesOf(b *model.Battler) []*model.Battler
	ProjectedDamage(skill *data.Skill, attacker, defender *model.Battler) float64
}

// TargetOutcome is the effect of an executed action on one target.
type TargetOutcome struct {
	Target      *model.Battler
	Hit         bool
	ElementRate float64
}

// ActionExecutor applies actions to the battle.
type ActionExecutor interface {
	// CanExecute reports whether user can pay for and is allowed to use skill now.
	CanExecute(user *model.Battler, skill *data.Skill) bool
	// Execute pays costs and applies skill aimed at target.
	Execute(user *model.Battler, skill *data.Skill, target *model.Battler) []TargetOutcome
}

// Deps bundles the collaborators of the AI loop.
type Deps struct {
	Senses   Senses
	Spatial  Spatial
	Executor ActionExecutor
	Host     Host
	Rand     Rand
}
