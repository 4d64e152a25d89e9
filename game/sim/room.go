package sim

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kasuganosora/enemyai/game/agent"
	"github.com/kasuganosora/enemyai/game/ai"
	"github.com/kasuganosora/enemyai/game/dna"
	"github.com/kasuganosora/enemyai/game/perception"
	"go.uber.org/zap"
)

const DefaultTick = 50 * time.Millisecond // 20 TPS

// Body pairs a machine with the mover that carries it.
type Body struct {
	Machine *agent.Machine
	Mover   *GridMover
}

// OpponentView is the client-visible opponent state.
type OpponentView struct {
	Position ai.Vec3 `json:"position"`
	Health   float64 `json:"health"`
	Loud     bool    `json:"loud"`
	Deaths   int     `json:"deaths"`
}

// Room owns the world, its agents and the opponent, and advances them on a
// single logical clock.
type Room struct {
	world     *World
	opponent  *ScriptedOpponent
	bodies    map[string]*Body
	order     []string
	tick      time.Duration
	now       time.Duration
	occlusion perception.OcclusionQuery
	mu        sync.RWMutex
	stopCh    chan struct{}
	logger    *zap.Logger
}

// RoomOption tunes a Room.
type RoomOption func(*Room)

// WithOcclusionTimeout bounds every sight test; timed out tests count as blocked.
func WithOcclusionTimeout(d time.Duration) RoomOption {
	return func(r *Room) { r.occlusion = perception.WithTimeout(r.world, d) }
}

// NewRoom creates a Room but does not start the loop.
func NewRoom(w *World, opp *ScriptedOpponent, tick time.Duration, logger *zap.Logger, opts ...RoomOption) *Room {
	if tick <= 0 {
		tick = DefaultTick
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Room{
		world:     w,
		opponent:  opp,
		bodies:    make(map[string]*Body),
		tick:      tick,
		occlusion: w,
		stopCh:    make(chan struct{}),
		logger:    logger,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Spawn adds an agent at spawn. The room supplies the mover, occlusion and
// combat collaborators; the rest of deps is passed through.
func (r *Room) Spawn(id string, cfg agent.Config, deps agent.Deps, spawn ai.Vec3) (*Body, error) {
	if !r.world.Inside(spawn) {
		return nil, fmt.Errorf("sim: spawn %v is blocked or off the floor", spawn)
	}
	mover := NewGridMover(r.world, spawn)
	deps.Mover = mover
	deps.Occlusion = r.occlusion
	deps.Combat = agent.CombatFunc(r.resolveAttack)
	m := agent.New(id, cfg, deps, r.logger)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.bodies[m.ID()]; dup {
		return nil, fmt.Errorf("sim: duplicate agent id %q", m.ID())
	}
	b := &Body{Machine: m, Mover: mover}
	r.bodies[m.ID()] = b
	r.order = append(r.order, m.ID())
	sort.Strings(r.order)
	return b, nil
}

// resolveAttack runs inside Step with the room lock held.
func (r *Room) resolveAttack(req agent.AttackRequest) {
	if r.opponent == nil {
		return
	}
	b, ok := r.bodies[req.AgentID]
	if !ok {
		return
	}
	// Swings reach a little past the agent's own attack range.
	reach := GroundDistance(b.Mover.Pose().Position, req.Target) + 0.5
	if r.opponent.TakeHit(req, reach) {
		r.logger.Debug("opponent hit", zap.String("agent", req.AgentID), zap.Float64("health", r.opponent.Health()))
	}
}

// Run starts the fixed-rate loop. Call in a goroutine.
func (r *Room) Run() {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.Step(r.tick)
		case <-r.stopCh:
			return
		}
	}
}

// Stop signals the loop to exit.
func (r *Room) Stop() {
	select {
	case <-r.stopCh:
	default:
		close(r.stopCh)
	}
}

// Step advances everything by dt: the opponent moves, every agent ticks in id
// order against the same opponent snapshot, bodies move, then the opponent
// swings.
func (r *Room) Step(dt time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.now += dt
	var target *perception.Target
	if r.opponent != nil {
		r.opponent.Step(r.now, dt)
		t := r.opponent.Target(r.now)
		target = &t
	}

	for _, id := range r.order {
		b := r.bodies[id]
		var view *perception.Target
		if target != nil {
			cp := *target
			view = &cp
		}
		b.Machine.Tick(r.now, dt, b.Mover.Pose(), view)
		b.Mover.Advance(dt.Seconds())
	}

	if r.opponent == nil || len(r.order) == 0 {
		return
	}
	positions := make([]ai.Vec3, len(r.order))
	for i, id := range r.order {
		positions[i] = r.bodies[id].Mover.Pose().Position
	}
	hit := r.opponent.Swing(r.now, positions)
	if hit < 0 {
		return
	}
	for i, id := range r.order {
		b := r.bodies[id]
		b.Machine.Opponent().ReportAttack()
		if i == hit {
			b.Machine.TakeDamage(r.now, r.opponent.Damage())
		}
	}
}

// Now is the room's logical clock.
func (r *Room) Now() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.now
}

// Snapshots returns every agent's state in id order.
func (r *Room) Snapshots() []agent.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]agent.Snapshot, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.bodies[id].Machine.Snapshot())
	}
	return out
}

// Snapshot returns one agent's state.
func (r *Room) Snapshot(id string) (agent.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bodies[id]
	if !ok {
		return agent.Snapshot{}, false
	}
	return b.Machine.Snapshot(), true
}

// Pose returns one agent's current pose.
func (r *Room) Pose(id string) (ai.Pose, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bodies[id]
	if !ok {
		return ai.Pose{}, false
	}
	return b.Mover.Pose(), true
}

// Profiles returns the current genes keyed by agent id.
func (r *Room) Profiles() map[string]dna.Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]dna.Profile, len(r.order))
	for _, id := range r.order {
		out[id] = r.bodies[id].Machine.Profile()
	}
	return out
}

// Opponent returns the opponent's visible state.
func (r *Room) Opponent() (OpponentView, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.opponent == nil {
		return OpponentView{}, false
	}
	return OpponentView{
		Position: r.opponent.Position(),
		Health:   r.opponent.Health(),
		Loud:     r.opponent.Sprinting(r.now),
		Deaths:   r.opponent.Deaths(),
	}, true
}

// ResetOpponentProfiles clears every agent's opponent accumulators. This is
// the host's round-start policy; agents never reset themselves.
func (r *Room) ResetOpponentProfiles() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order {
		r.bodies[id].Machine.Opponent().Reset()
	}
	r.logger.Info("opponent profiles reset", zap.Int("agents", len(r.order)))
}

func (r *Room) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
