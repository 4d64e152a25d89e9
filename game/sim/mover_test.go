package sim

import (
	"testing"

	"github.com/kasuganosora/enemyai/game/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoverStraightLine(t *testing.T) {
	m := NewGridMover(NewWorld(10, 10, 1), ai.Vec3{X: 0.5, Z: 0.5})
	m.SetDestination(ai.Vec3{X: 5.5, Z: 0.5}, 2)

	assert.False(t, m.HasPendingPath())
	assert.InDelta(t, 5, m.RemainingDistance(), 1e-9)

	m.Advance(1)
	assert.InDelta(t, 3, m.RemainingDistance(), 1e-9)
	assert.InDelta(t, 2.5, m.Pose().Position.X, 1e-9)
	assert.Equal(t, ai.Vec3{X: 1}, m.Pose().Forward)

	m.Advance(10)
	assert.InDelta(t, 0, m.RemainingDistance(), 1e-9)
	assert.Equal(t, ai.Vec3{X: 5.5, Z: 0.5}, m.Pose().Position)
}

func TestMoverRoutesAroundWall(t *testing.T) {
	// Wall with a gap at the top rows.
	w := NewWorld(10, 10, 1, Rect(4, 0, 5, 8))
	m := NewGridMover(w, ai.Vec3{X: 1.5, Z: 0.5})
	m.SetDestination(ai.Vec3{X: 7.5, Z: 0.5}, 1)

	require.Greater(t, m.RemainingDistance(), 6.0)
	for i := 0; i < 100; i++ {
		m.Advance(0.5)
		assert.True(t, w.Inside(m.Pose().Position), "walked into the wall at %v", m.Pose().Position)
	}
	assert.Equal(t, ai.Vec3{X: 7.5, Z: 0.5}, m.Pose().Position)
}

func TestMoverSnapsBlockedGoal(t *testing.T) {
	w := NewWorld(10, 10, 1, Rect(4, 0, 6, 10))
	m := NewGridMover(w, ai.Vec3{X: 1.5, Z: 1.5})
	m.SetDestination(ai.Vec3{X: 4.2, Z: 1.5}, 1)

	m.Advance(100)
	assert.True(t, w.Inside(m.Pose().Position))
	assert.InDelta(t, 3.5, m.Pose().Position.X, 1e-9)
}

func TestMoverUnreachable(t *testing.T) {
	// Sealed room on the right.
	w := NewWorld(10, 10, 1, Rect(4, 0, 5, 10))
	m := NewGridMover(w, ai.Vec3{X: 1.5, Z: 1.5})
	m.SetDestination(ai.Vec3{X: 8.5, Z: 1.5}, 1)
	assert.Zero(t, m.RemainingDistance())

	m.Advance(5)
	assert.Equal(t, ai.Vec3{X: 1.5, Z: 1.5}, m.Pose().Position)
}

func TestMoverStopAndFace(t *testing.T) {
	m := NewGridMover(NewWorld(10, 10, 1), ai.Vec3{X: 0.5, Z: 0.5})
	m.SetDestination(ai.Vec3{X: 5.5, Z: 0.5}, 2)
	m.Stop()
	assert.Zero(t, m.RemainingDistance())

	m.FaceTowards(ai.Vec3{X: 0.5, Z: -3})
	assert.Equal(t, ai.Vec3{Z: -1}, m.Pose().Forward)

	// Facing your own position keeps the old heading.
	m.FaceTowards(ai.Vec3{X: 0.5, Z: 0.5})
	assert.Equal(t, ai.Vec3{Z: -1}, m.Pose().Forward)
}
