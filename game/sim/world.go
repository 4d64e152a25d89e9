// Package sim is a headless host for agents: flat obstacle geometry, a grid
// mover, a scripted opponent and a fixed-rate room loop.
package sim

import (
	"math"

	"github.com/kasuganosora/enemyai/game/ai"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/planar"
)

// World is the static level: a rectangular floor on the XZ plane with
// rectangular obstacles that block both sight and movement. Obstacles are
// treated as infinitely tall.
type World struct {
	Bounds    orb.Bound
	Obstacles []orb.Bound
	CellSize  float64
}

// NewWorld builds a width x depth floor anchored at the origin.
func NewWorld(width, depth, cellSize float64, obstacles ...orb.Bound) *World {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &World{
		Bounds:    orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{width, depth}},
		Obstacles: obstacles,
		CellSize:  cellSize,
	}
}

// Rect is a convenience constructor for obstacle footprints.
func Rect(minX, minZ, maxX, maxZ float64) orb.Bound {
	return orb.Bound{Min: orb.Point{minX, minZ}, Max: orb.Point{maxX, maxZ}}
}

func ground(v ai.Vec3) orb.Point { return orb.Point{v.X, v.Z} }

// IsBlocked implements perception.OcclusionQuery by clipping the sight
// segment against every obstacle.
func (w *World) IsBlocked(origin, direction ai.Vec3, maxDistance float64) bool {
	if maxDistance <= 0 {
		return false
	}
	end := origin.Add(direction.Normalize().Scale(maxDistance))
	seg := orb.LineString{ground(origin), ground(end)}
	segBound := seg.Bound()
	for _, ob := range w.Obstacles {
		if !ob.Intersects(segBound) {
			continue
		}
		if len(clip.LineString(ob, seg)) > 0 {
			return true
		}
	}
	return false
}

// Inside reports whether p lies on the floor and outside every obstacle.
func (w *World) Inside(p ai.Vec3) bool {
	gp := ground(p)
	if !w.Bounds.Contains(gp) {
		return false
	}
	for _, ob := range w.Obstacles {
		if ob.Contains(gp) {
			return false
		}
	}
	return true
}

// Columns and Rows give the grid size.
func (w *World) Columns() int {
	return int(math.Ceil((w.Bounds.Max[0] - w.Bounds.Min[0]) / w.CellSize))
}
func (w *World) Rows() int { return int(math.Ceil((w.Bounds.Max[1] - w.Bounds.Min[1]) / w.CellSize)) }

func (w *World) cellBound(c ai.Cell) orb.Bound {
	x0 := w.Bounds.Min[0] + float64(c.X)*w.CellSize
	z0 := w.Bounds.Min[1] + float64(c.Y)*w.CellSize
	return orb.Bound{Min: orb.Point{x0, z0}, Max: orb.Point{x0 + w.CellSize, z0 + w.CellSize}}
}

// Passable implements ai.Grid: a cell is open when it is on the floor and its
// interior touches no obstacle.
func (w *World) Passable(c ai.Cell) bool {
	if c.X < 0 || c.Y < 0 || c.X >= w.Columns() || c.Y >= w.Rows() {
		return false
	}
	cb := w.cellBound(c).Pad(-1e-6)
	for _, ob := range w.Obstacles {
		if ob.Intersects(cb) {
			return false
		}
	}
	return true
}

// CellOf maps a position to its grid cell.
func (w *World) CellOf(p ai.Vec3) ai.Cell {
	return ai.Cell{
		X: int(math.Floor((p.X - w.Bounds.Min[0]) / w.CellSize)),
		Y: int(math.Floor((p.Z - w.Bounds.Min[1]) / w.CellSize)),
	}
}

// Center returns the ground-level centre of a cell.
func (w *World) Center(c ai.Cell) ai.Vec3 {
	return ai.Vec3{
		X: w.Bounds.Min[0] + (float64(c.X)+0.5)*w.CellSize,
		Z: w.Bounds.Min[1] + (float64(c.Y)+0.5)*w.CellSize,
	}
}

// Nearest returns the closest passable cell centre to p, searching outward
// ring by ring. ok is false when the grid has no open cell.
func (w *World) Nearest(p ai.Vec3) (ai.Vec3, bool) {
	start := w.CellOf(p)
	limit := max(w.Columns(), w.Rows())
	for r := 0; r <= limit; r++ {
		best, found := ai.Vec3{}, false
		bestD := math.Inf(1)
		for dx := -r; dx <= r; dx++ {
			for dy := -r; dy <= r; dy++ {
				if max(abs(dx), abs(dy)) != r {
					continue
				}
				c := ai.Cell{X: start.X + dx, Y: start.Y + dy}
				if !w.Passable(c) {
					continue
				}
				center := w.Center(c)
				if d := planar.Distance(ground(p), ground(center)); d < bestD {
					best, bestD, found = center, d, true
				}
			}
		}
		if found {
			return best, true
		}
	}
	return ai.Vec3{}, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// GroundDistance is the planar distance between two positions.
func GroundDistance(a, b ai.Vec3) float64 { return planar.Distance(ground(a), ground(b)) }
