// Package agent is the per-agent behavior core: each tick it runs perception,
// updates awareness, picks one of a fixed set of states and emits movement and
// combat intents to its collaborators.
package agent

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/enemyai/game/ai"
	"github.com/kasuganosora/enemyai/game/dna"
	"github.com/kasuganosora/enemyai/game/opponent"
	"github.com/kasuganosora/enemyai/game/perception"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Config holds the tuning of one agent.
type Config struct {
	Perception perception.Config
	Awareness  perception.AwarenessConfig
	Profile    dna.Profile
	Waypoints  []ai.Vec3

	MaxHealth        float64
	AttackRange      float64
	AttackDamage     float64
	LowHealth        float64
	RetreatThreshold float64 // distance from the threat at which retreat ends
	RetreatDistance  float64 // how far each retreat step aims
	SearchRadius     float64
	HealRate         float64 // hit points per second while healing

	PatrolSpeed      float64
	ChaseSpeedFactor float64
	RetreatSpeed     float64
	StoppingDistance float64
	ArrivalEpsilon   float64

	HitCooldown        time.Duration
	SearchDuration     time.Duration
	AttackCooldownSlow time.Duration // at aggression 0
	AttackCooldownFast time.Duration // at aggression 1

	// DodgeEnabled lets the DodgeChance gene void accepted hits.
	DodgeEnabled bool
}

func DefaultConfig() Config {
	return Config{
		Perception:         perception.DefaultConfig(),
		Awareness:          perception.DefaultAwarenessConfig(),
		Profile:            dna.Default(),
		MaxHealth:          100,
		AttackRange:        2,
		AttackDamage:       10,
		LowHealth:          30,
		RetreatThreshold:   15,
		RetreatDistance:    5,
		SearchRadius:       3,
		HealRate:           10,
		PatrolSpeed:        2,
		ChaseSpeedFactor:   1.5,
		RetreatSpeed:       3,
		ArrivalEpsilon:     0.05,
		HitCooldown:        2 * time.Second,
		SearchDuration:     5 * time.Second,
		AttackCooldownSlow: 2 * time.Second,
		AttackCooldownFast: 500 * time.Millisecond,
	}
}

// Deps are the collaborators of a Machine. Any of them may be nil.
type Deps struct {
	Mover     Mover
	Combat    Combat
	Health    Health
	Presenter Presenter
	Occlusion perception.OcclusionQuery
	Adapter   dna.Adapter
	Rand      *rand.Rand
}

// Intent summarises what the machine asked of its collaborators this tick.
type Intent struct {
	State       State
	Destination ai.Vec3
	Speed       float64
	Moving      bool
	Halted      bool
	Attacked    bool
}

// Machine is the agent state machine. It is owned by a single goroutine; the
// only shared input is the read-only target pose handed to Tick.
type Machine struct {
	id     string
	cfg    Config
	state  State
	genes  dna.Profile
	logger *zap.Logger

	unit      perception.Unit
	awareness *perception.Tracker
	opp       *opponent.Tracker

	mover     Mover
	facer     Facer
	combat    Combat
	health    Health
	presenter Presenter
	adapter   dna.Adapter
	rng       *rand.Rand

	moverMissing  bool
	combatMissing rate.Sometimes

	now          time.Duration
	self         ai.Pose
	sample       perception.Sample
	lastKnown    ai.Vec3
	hasLastKnown bool
	intent       Intent

	patrolIndex int
	searchTimer time.Duration
	lastAttack  time.Duration
	hasAttacked bool
	lastHit     time.Duration
	hasHit      bool
	adaptations int
}

// New builds a Machine in Patrolling. An empty id gets a random UUID.
func New(id string, cfg Config, deps Deps, logger *zap.Logger) *Machine {
	if id == "" {
		id = uuid.NewString()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("agent", id))

	m := &Machine{
		id:            id,
		cfg:           cfg,
		state:         Patrolling,
		genes:         cfg.Profile,
		logger:        logger,
		unit:          perception.Unit{Config: cfg.Perception, Occlusion: deps.Occlusion},
		awareness:     perception.NewTracker(cfg.Awareness),
		opp:           opponent.NewTracker(logger),
		mover:         deps.Mover,
		combat:        deps.Combat,
		health:        deps.Health,
		presenter:     deps.Presenter,
		adapter:       deps.Adapter,
		rng:           deps.Rand,
		combatMissing: rate.Sometimes{First: 1},
		patrolIndex:   -1,
	}
	m.genes.Clamp()

	if m.mover == nil {
		m.moverMissing = true
		m.mover = frozenMover{}
		logger.Warn("agent has no mover; it will stay in place")
	}
	if f, ok := m.mover.(Facer); ok {
		m.facer = f
	}
	if m.health == nil {
		m.health = NewPool(cfg.MaxHealth)
	}
	if m.presenter == nil {
		m.presenter = nopPresenter{}
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if m.adapter == nil {
		m.adapter = dna.NewEngine(m.rng, logger)
	}

	m.nextWaypoint()
	return m
}

// Tick advances the agent by one simulation step. now is the logical clock of
// this tick and dt the time since the previous one. target may be nil when
// the tracked entity does not exist.
func (m *Machine) Tick(now, dt time.Duration, self ai.Pose, target *perception.Target) Intent {
	if dt < 0 {
		dt = 0
	}
	m.now = now
	m.self = self
	m.intent = Intent{}

	m.sample = m.unit.Sense(self, target)
	if m.sample.Located() {
		m.lastKnown = m.sample.TargetLastKnownPosition
		m.hasLastKnown = true
	}
	if level, changed := m.awareness.Update(m.sample.Visible, dt); changed {
		m.logger.Debug("awareness changed", zap.Stringer("level", level))
		m.presenter.Notify(EventAwarenessChanged{Header: m.header(), Level: level, Color: level.Color()})
	}
	if target != nil {
		m.opp.ReportPosition(target.Pose.Position)
	}

	if next, ok := m.exit(target); ok {
		m.transition(next)
	}
	m.act(dt, target)

	m.intent.State = m.state
	return m.intent
}

// exit picks the transition, if any, out of the current state.
func (m *Machine) exit(target *perception.Target) (State, bool) {
	s := m.sample
	switch m.state {
	case Patrolling:
		if s.Visible && s.Distance < m.genes.ChaseRange {
			return Chasing, true
		}
	case Chasing:
		if s.HasTarget && s.Distance < m.cfg.AttackRange {
			return Attacking, true
		}
		if !s.Visible {
			return Searching, true
		}
	case Attacking:
		if m.health.CurrentHealth() < m.cfg.LowHealth {
			return Retreating, true
		}
		if !s.HasTarget || s.Distance > m.cfg.AttackRange {
			return Chasing, true
		}
	case Retreating:
		threat, ok := m.threat(target)
		if !ok || ai.Distance(m.self.Position, threat) > m.cfg.RetreatThreshold {
			return Healing, true
		}
	case Healing:
		if m.health.CurrentHealth() >= m.health.MaxHealth() {
			return Searching, true
		}
	case Searching:
		if s.Visible {
			return Chasing, true
		}
		if m.searchTimer > m.cfg.SearchDuration {
			return Patrolling, true
		}
	}
	return m.state, false
}

// act runs the per-tick action of the current state.
func (m *Machine) act(dt time.Duration, target *perception.Target) {
	switch m.state {
	case Patrolling:
		if m.arrived() {
			m.nextWaypoint()
		}
	case Chasing:
		dest := m.lastKnown
		if target != nil && m.sample.HasTarget {
			dest = target.Pose.Position
		}
		m.moveTo(dest, m.cfg.PatrolSpeed*m.cfg.ChaseSpeedFactor)
	case Attacking:
		m.halt()
		if target != nil {
			if m.facer != nil {
				m.facer.FaceTowards(target.Pose.Position)
			}
			m.tryAttack(target.Pose.Position)
		}
	case Retreating:
		m.retreatStep(target)
	case Healing:
		m.halt()
		m.health.Heal(m.cfg.HealRate * dt.Seconds())
	case Searching:
		m.searchTimer += dt
		if m.arrived() {
			m.moveTo(m.searchPoint(), m.cfg.PatrolSpeed)
		}
	}
}

// transition switches state along a defined edge and runs its entry action.
func (m *Machine) transition(to State) bool {
	from := m.state
	if from == to {
		return false
	}
	if !to.Valid() || !canTransition(from, to) {
		m.violation(from, to)
		return false
	}

	m.state = to
	m.logger.Debug("state changed", zap.Stringer("from", from), zap.Stringer("to", to))
	m.presenter.Notify(EventStateChanged{Header: m.header(), From: from, To: to})

	switch to {
	case Patrolling:
		m.searchTimer = 0
		m.nextWaypoint()
	case Chasing:
		m.searchTimer = 0
	case Searching:
		m.searchTimer = 0
		if from == Healing {
			m.adapt()
		}
		if m.hasLastKnown {
			m.moveTo(m.lastKnown, m.cfg.PatrolSpeed)
		}
	case Healing:
		m.halt()
	}
	return true
}

// violation handles an undefined transition request: fatal in debug builds,
// otherwise logged and the current state is kept.
func (m *Machine) violation(from, to State) {
	if debugAsserts {
		panic("agent: undefined transition " + from.String() + " -> " + to.String())
	}
	m.logger.Error("undefined state transition ignored",
		zap.Stringer("from", from), zap.Stringer("to", to))
}

func (m *Machine) adapt() {
	before := m.genes
	snap := m.opp.Snapshot()
	m.adapter.Adapt(&m.genes, snap)
	m.genes.Clamp()
	m.adaptations++
	m.presenter.Notify(EventAdapted{Header: m.header(), Before: before, After: m.genes, Opponent: snap})
}

// threat returns where the agent is running from.
func (m *Machine) threat(target *perception.Target) (ai.Vec3, bool) {
	if target != nil && target.Pose.Position.Finite() {
		return target.Pose.Position, true
	}
	return m.lastKnown, m.hasLastKnown
}

func (m *Machine) retreatStep(target *perception.Target) {
	threat, ok := m.threat(target)
	if !ok {
		m.halt()
		return
	}
	away := m.self.Position.Sub(threat).Flat().Normalize()
	if away == (ai.Vec3{}) {
		away = m.self.Forward.Flat().Normalize().Scale(-1)
	}
	m.moveTo(m.self.Position.Add(away.Scale(m.cfg.RetreatDistance)), m.cfg.RetreatSpeed)
}

func (m *Machine) searchPoint() ai.Vec3 {
	angle := m.rng.Float64() * 2 * math.Pi
	r := math.Sqrt(m.rng.Float64()) * m.cfg.SearchRadius
	return m.lastKnown.Add(ai.Vec3{X: math.Cos(angle) * r, Z: math.Sin(angle) * r})
}

func (m *Machine) nextWaypoint() {
	if len(m.cfg.Waypoints) == 0 {
		m.halt()
		return
	}
	m.patrolIndex = (m.patrolIndex + 1) % len(m.cfg.Waypoints)
	m.moveTo(m.cfg.Waypoints[m.patrolIndex], m.cfg.PatrolSpeed)
}

func (m *Machine) arrived() bool {
	return !m.mover.HasPendingPath() &&
		m.mover.RemainingDistance() <= m.cfg.StoppingDistance+m.cfg.ArrivalEpsilon
}

func (m *Machine) moveTo(p ai.Vec3, speed float64) {
	m.intent.Destination, m.intent.Speed = p, speed
	m.intent.Moving, m.intent.Halted = true, false
	m.mover.SetDestination(p, speed)
}

func (m *Machine) halt() {
	m.intent.Moving, m.intent.Halted = false, true
	m.mover.Stop()
}

func (m *Machine) tryAttack(at ai.Vec3) bool {
	cooldown := m.genes.AttackCooldown(m.cfg.AttackCooldownSlow, m.cfg.AttackCooldownFast)
	if m.hasAttacked && m.now-m.lastAttack < cooldown {
		return false
	}
	if m.combat == nil {
		m.combatMissing.Do(func() {
			m.logger.Warn("agent has no combat resolver; attacks are dropped")
		})
		return false
	}
	m.hasAttacked, m.lastAttack = true, m.now
	req := AttackRequest{AgentID: m.id, Target: at, Damage: m.cfg.AttackDamage, At: m.now}
	m.combat.RequestAttack(req)
	m.intent.Attacked = true
	m.presenter.Notify(EventAttack{Header: m.header(), Request: req})
	return true
}

// TakeDamage applies an incoming hit at logical time now. Hits inside the hit
// cooldown of the previous accepted hit are dropped. It reports whether the
// hit landed.
func (m *Machine) TakeDamage(now time.Duration, amount float64) bool {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return false
	}
	if m.hasHit && now-m.lastHit < m.cfg.HitCooldown {
		return false
	}
	m.hasHit, m.lastHit = true, now
	m.now = now

	if m.cfg.DodgeEnabled && m.rng.Float64() < m.genes.DodgeChance {
		m.presenter.Notify(EventDodged{Header: m.header(), Amount: amount})
		return false
	}

	m.health.ApplyDamage(amount)
	hp := m.health.CurrentHealth()
	m.logger.Debug("agent hit", zap.Float64("amount", amount), zap.Float64("health", hp))
	m.presenter.Notify(EventDamaged{Header: m.header(), Amount: amount, Health: hp})

	if hp < m.cfg.LowHealth && !m.state.recovering() {
		if m.transition(Retreating) {
			m.retreatStep(nil)
		}
	}
	return true
}

func (m *Machine) header() Header { return Header{AgentID: m.id, At: m.now} }

func (m *Machine) ID() string { return m.id }

func (m *Machine) State() State { return m.state }

func (m *Machine) Awareness() perception.Level { return m.awareness.Level() }

// Profile returns a copy of the current genes.
func (m *Machine) Profile() dna.Profile { return m.genes }

// SetProfile replaces the genes, e.g. with a stored template. Values are clamped.
func (m *Machine) SetProfile(p dna.Profile) {
	p.Clamp()
	m.genes = p
}

// Opponent exposes the opponent tracker for attack reports and resets.
func (m *Machine) Opponent() *opponent.Tracker { return m.opp }

func (m *Machine) Health() Health { return m.health }

// LastKnownTarget returns the remembered target position.
func (m *Machine) LastKnownTarget() (ai.Vec3, bool) { return m.lastKnown, m.hasLastKnown }

// Adaptations counts completed heal cycles that triggered adaptation.
func (m *Machine) Adaptations() int { return m.adaptations }

// MoverMissing reports whether the agent was built without a mover.
func (m *Machine) MoverMissing() bool { return m.moverMissing }

// Snapshot is a read-only view for inspectors.
type Snapshot struct {
	ID          string            `json:"id"`
	State       State             `json:"state"`
	Awareness   perception.Level  `json:"awareness"`
	Health      float64           `json:"health"`
	MaxHealth   float64           `json:"max_health"`
	Profile     dna.Profile       `json:"profile"`
	Opponent    opponent.Snapshot `json:"opponent"`
	LastKnown   *ai.Vec3          `json:"last_known,omitempty"`
	Adaptations int               `json:"adaptations"`
}

func (m *Machine) Snapshot() Snapshot {
	s := Snapshot{
		ID:          m.id,
		State:       m.state,
		Awareness:   m.awareness.Level(),
		Health:      m.health.CurrentHealth(),
		MaxHealth:   m.health.MaxHealth(),
		Profile:     m.genes,
		Opponent:    m.opp.Snapshot(),
		Adaptations: m.adaptations,
	}
	if m.hasLastKnown {
		lk := m.lastKnown
		s.LastKnown = &lk
	}
	return s
}
