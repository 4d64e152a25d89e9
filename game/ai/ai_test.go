package ai

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type wallGrid struct {
	w, h    int
	blocked map[Cell]bool
}

func (g wallGrid) Passable(c Cell) bool {
	if c.X < 0 || c.Y < 0 || c.X >= g.w || c.Y >= g.h {
		return false
	}
	return !g.blocked[c]
}

func TestAngleDeg(t *testing.T) {
	fwd := Vec3{Z: 1}
	assert.InDelta(t, 0, AngleDeg(fwd, Vec3{Z: 5}), 1e-9)
	assert.InDelta(t, 90, AngleDeg(fwd, Vec3{X: 1}), 1e-9)
	assert.InDelta(t, 180, AngleDeg(fwd, Vec3{Z: -2}), 1e-9)
	assert.InDelta(t, 45, AngleDeg(fwd, Vec3{X: 1, Z: 1}), 1e-9)
	assert.Equal(t, 0.0, AngleDeg(Vec3{}, fwd))
}

func TestPoseValid(t *testing.T) {
	assert.True(t, Pose{Forward: Vec3{Z: 1}}.Valid())
	assert.False(t, Pose{}.Valid(), "zero forward")
	assert.False(t, Pose{Position: Vec3{X: math.NaN()}, Forward: Vec3{Z: 1}}.Valid())
	assert.False(t, Pose{Position: Vec3{Y: math.Inf(1)}, Forward: Vec3{Z: 1}}.Valid())
}

func TestNormalizeZero(t *testing.T) {
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())
	assert.InDelta(t, 1, Vec3{X: 3, Z: 4}.Normalize().Len(), 1e-9)
}

func TestAStar_Straight(t *testing.T) {
	g := wallGrid{w: 5, h: 5}
	path := AStar(g, Cell{0, 0}, Cell{3, 0})
	require.Len(t, path, 3)
	assert.Equal(t, Cell{3, 0}, path[len(path)-1])
}

func TestAStar_AroundWall(t *testing.T) {
	g := wallGrid{w: 5, h: 5, blocked: map[Cell]bool{
		{2, 0}: true, {2, 1}: true, {2, 2}: true, {2, 3}: true,
	}}
	path := AStar(g, Cell{0, 0}, Cell{4, 0})
	require.NotNil(t, path)
	// Must detour through row 4.
	assert.Len(t, path, 12)
	for _, c := range path {
		assert.False(t, g.blocked[c], "path crosses wall at %v", c)
	}
}

func TestAStar_NoPath(t *testing.T) {
	g := wallGrid{w: 3, h: 3, blocked: map[Cell]bool{{1, 0}: true, {1, 1}: true, {1, 2}: true}}
	assert.Nil(t, AStar(g, Cell{0, 0}, Cell{2, 2}))
}

func TestAStar_SameCell(t *testing.T) {
	path := AStar(wallGrid{w: 2, h: 2}, Cell{1, 1}, Cell{1, 1})
	assert.NotNil(t, path)
	assert.Empty(t, path)
}
