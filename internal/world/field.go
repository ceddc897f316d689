package world

import (
	"errors"
	"fmt"
	"math"

	"github.com/udisondev/jabs/internal/model"
)

var (
	ErrOutOfBounds = errors.New("position outside the field")
	ErrBlocked     = errors.New("tile is blocked")
)

// Field is a rectangular tile map with the battlers standing on it.
// Movement is greedy: each call takes one step to the neighbouring tile
// that best serves the goal, around walls and other battlers.
//
// Not safe for concurrent use: owned by the battle tick.
type Field struct {
	width, height int32
	blocked       map[Tile]struct{}
	battlers      map[model.BattlerID]*model.Battler
}

// NewField creates an empty width×height field.
func NewField(width, height int32) *Field {
	return &Field{
		width:    max(width, 1),
		height:   max(height, 1),
		blocked:  make(map[Tile]struct{}),
		battlers: make(map[model.BattlerID]*model.Battler),
	}
}

// Size returns the field dimensions in tiles.
func (f *Field) Size() (width, height int32) { return f.width, f.height }

// Block marks tiles as impassable.
func (f *Field) Block(tiles ...Tile) {
	for _, t := range tiles {
		f.blocked[t] = struct{}{}
	}
}

// InBounds reports whether t lies on the field.
func (f *Field) InBounds(t Tile) bool {
	return t.X >= 0 && t.X < f.width && t.Y >= 0 && t.Y < f.height
}

// IsBlocked reports whether t is a wall or off the field.
func (f *Field) IsBlocked(t Tile) bool {
	if !f.InBounds(t) {
		return true
	}
	_, ok := f.blocked[t]
	return ok
}

// Place puts b on the field at its current position.
func (f *Field) Place(b *model.Battler) error {
	t := TileOf(b.Position())
	if !f.InBounds(t) {
		return fmt.Errorf("place battler %d at %+v: %w", b.ID(), b.Position(), ErrOutOfBounds)
	}
	if f.IsBlocked(t) {
		return fmt.Errorf("place battler %d at %+v: %w", b.ID(), b.Position(), ErrBlocked)
	}
	f.battlers[b.ID()] = b
	return nil
}

// Remove takes b off the field.
func (f *Field) Remove(id model.BattlerID) {
	delete(f.battlers, id)
}

// Contains reports whether the battler stands on the field.
func (f *Field) Contains(id model.BattlerID) bool {
	_, ok := f.battlers[id]
	return ok
}

// Count returns number of battlers on the field.
func (f *Field) Count() int { return len(f.battlers) }

// DistanceTo returns the distance in tiles. ok is false when either
// battler is not on this field.
func (f *Field) DistanceTo(a, b *model.Battler) (float64, bool) {
	if !f.Contains(a.ID()) || !f.Contains(b.ID()) {
		return 0, false
	}
	return a.Position().DistanceTo(b.Position()), true
}

// IsInRange reports whether target is within proximity tiles of b.
func (f *Field) IsInRange(b, target *model.Battler, proximity float64) bool {
	d, ok := f.DistanceTo(b, target)
	return ok && d <= proximity
}

// PathToward moves b one step closer to p.
func (f *Field) PathToward(b *model.Battler, p model.Point) {
	f.step(b, func(candidate model.Point) float64 {
		return -candidate.DistanceTo(p)
	}, p)
}

// MoveAway moves b one step further from p.
func (f *Field) MoveAway(b *model.Battler, p model.Point) {
	f.step(b, func(candidate model.Point) float64 {
		return candidate.DistanceTo(p)
	}, p)
}

// FaceToward turns b toward p. Facing is a unit vector.
func (f *Field) FaceToward(b *model.Battler, p model.Point) {
	from := b.Position()
	dx, dy := p.X-from.X, p.Y-from.Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		return
	}
	b.SetFacing(model.NewPoint(dx/d, dy/d))
}

// step moves b to the free neighbouring tile with the highest score,
// only when that beats staying put.
func (f *Field) step(b *model.Battler, score func(model.Point) float64, goal model.Point) {
	if !f.Contains(b.ID()) {
		return
	}
	from := b.Position()
	cur := TileOf(from)

	// goal within one step: land on it directly
	if gt := TileOf(goal); from.DistanceTo(goal) <= 1 && score(goal) > score(from) && f.walkable(b, gt) {
		f.moveTo(b, goal)
		return
	}

	best, bestScore := from, score(from)
	for _, d := range neighbours {
		t := Tile{X: cur.X + d.X, Y: cur.Y + d.Y}
		if !f.walkable(b, t) {
			continue
		}
		c := t.Center()
		if s := score(c); s > bestScore {
			best, bestScore = c, s
		}
	}
	if best != from {
		f.moveTo(b, best)
	}
}

func (f *Field) moveTo(b *model.Battler, p model.Point) {
	f.FaceToward(b, p)
	b.SetPosition(p)
}

// walkable reports whether b may enter t: on the field, no wall and no
// other living battler standing there.
func (f *Field) walkable(b *model.Battler, t Tile) bool {
	if f.IsBlocked(t) {
		return false
	}
	if TileOf(b.Position()) == t {
		return true
	}
	for _, o := range f.battlers {
		if o.ID() != b.ID() && o.IsAlive() && TileOf(o.Position()) == t {
			return false
		}
	}
	return true
}
