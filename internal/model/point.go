package model

import "math"

// Point is a position on the field measured in tiles.
// Value type, passed by value.
type Point struct {
	X float64
	Y float64
}

// NewPoint creates a Point.
func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

// DistanceTo returns the euclidean distance in tiles.
func (p Point) DistanceTo(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// Away returns the point one step further from other along the line other→p.
// Returns p itself when both points coincide.
func (p Point) Away(other Point) Point {
	dx, dy := p.X-other.X, p.Y-other.Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		return p
	}
	return Point{X: p.X + dx/d, Y: p.Y + dy/d}
}

// Offset returns p shifted by (dx, dy).
func (p Point) Offset(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}
