package sim

import (
	"github.com/kasuganosora/enemyai/game/ai"
)

// GridMover walks a body across a World along A* paths. It implements
// agent.Mover and agent.Facer. Paths are planned synchronously, so
// HasPendingPath is always false.
type GridMover struct {
	world   *World
	pos     ai.Vec3
	forward ai.Vec3
	path    []ai.Vec3
	speed   float64
}

func NewGridMover(w *World, spawn ai.Vec3) *GridMover {
	return &GridMover{world: w, pos: spawn, forward: ai.Vec3{Z: 1}}
}

// SetDestination plans a path to p. Unreachable destinations are snapped to
// the nearest open cell; if nothing is reachable the mover stays idle.
func (m *GridMover) SetDestination(p ai.Vec3, speed float64) {
	m.speed = speed
	if !p.Finite() {
		m.path = nil
		return
	}
	goal := p
	if !m.world.Inside(goal) {
		snapped, ok := m.world.Nearest(goal)
		if !ok {
			m.path = nil
			return
		}
		goal = snapped
	}
	from, to := m.world.CellOf(m.pos), m.world.CellOf(goal)
	if from == to {
		m.path = []ai.Vec3{goal}
		return
	}
	cells := ai.AStar(m.world, from, to)
	if cells == nil {
		m.path = nil
		return
	}
	path := make([]ai.Vec3, 0, len(cells))
	for _, c := range cells[:len(cells)-1] {
		path = append(path, m.world.Center(c))
	}
	m.path = append(path, goal)
}

func (m *GridMover) Stop() { m.path = nil }

func (m *GridMover) HasPendingPath() bool { return false }

// RemainingDistance is the length of the rest of the current path.
func (m *GridMover) RemainingDistance() float64 {
	d, from := 0.0, m.pos
	for _, p := range m.path {
		d += GroundDistance(from, p)
		from = p
	}
	return d
}

// FaceTowards turns the body on the spot.
func (m *GridMover) FaceTowards(p ai.Vec3) {
	if dir := p.Sub(m.pos).Flat().Normalize(); dir != (ai.Vec3{}) {
		m.forward = dir
	}
}

// Advance moves the body along its path for dt seconds.
func (m *GridMover) Advance(dt float64) {
	budget := m.speed * dt
	for budget > 0 && len(m.path) > 0 {
		next := m.path[0]
		step := next.Sub(m.pos).Flat()
		d := step.Len()
		if d > 1e-9 {
			m.forward = step.Scale(1 / d)
		}
		if d <= budget {
			m.pos = ai.Vec3{X: next.X, Y: m.pos.Y, Z: next.Z}
			m.path = m.path[1:]
			budget -= d
			continue
		}
		m.pos = m.pos.Add(m.forward.Scale(budget))
		budget = 0
	}
}

func (m *GridMover) Pose() ai.Pose { return ai.Pose{Position: m.pos, Forward: m.forward} }

// Teleport places the body at p and drops its path.
func (m *GridMover) Teleport(p ai.Vec3) {
	m.pos = p
	m.path = nil
}
