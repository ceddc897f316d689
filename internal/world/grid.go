package world

import (
	"math"

	"github.com/udisondev/jabs/internal/model"
)

// Tile is an integer cell of the field grid.
type Tile struct {
	X, Y int32
}

// TileOf returns the tile containing p.
// Formula: floor(coord), so (0.9, -0.1) lies in tile (0, -1).
func TileOf(p model.Point) Tile {
	return Tile{X: int32(math.Floor(p.X)), Y: int32(math.Floor(p.Y))}
}

// Center returns the center point of the tile.
func (t Tile) Center() model.Point {
	return model.NewPoint(float64(t.X)+0.5, float64(t.Y)+0.5)
}

// neighbours are the eight step directions, orthogonal first.
var neighbours = [8]Tile{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}
