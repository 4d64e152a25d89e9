package sim

import (
	"time"

	"github.com/kasuganosora/enemyai/game/agent"
	"github.com/kasuganosora/enemyai/game/ai"
	"github.com/kasuganosora/enemyai/game/perception"
)

// OpponentConfig scripts the stand-in player.
type OpponentConfig struct {
	MaxHealth      float64
	Speed          float64
	Reach          float64
	Damage         float64
	AttackCooldown time.Duration
	SprintEvery    time.Duration // sprint duty cycle period; zero never sprints
	SprintFor      time.Duration
	BlockEvery     time.Duration // block duty cycle period; zero never blocks
	BlockFor       time.Duration
	Route          []ai.Vec3
}

// ScriptedOpponent walks a route loop, sprints and blocks on duty cycles and
// swings at the nearest agent in reach.
type ScriptedOpponent struct {
	cfg         OpponentConfig
	mover       *GridMover
	health      *agent.Pool
	spawn       ai.Vec3
	leg         int
	lastAttack  time.Duration
	hasAttacked bool
	deaths      int
}

func NewScriptedOpponent(w *World, spawn ai.Vec3, cfg OpponentConfig) *ScriptedOpponent {
	o := &ScriptedOpponent{
		cfg:    cfg,
		mover:  NewGridMover(w, spawn),
		health: agent.NewPool(cfg.MaxHealth),
		spawn:  spawn,
		leg:    -1,
	}
	o.nextLeg()
	return o
}

func (o *ScriptedOpponent) nextLeg() {
	if len(o.cfg.Route) == 0 {
		return
	}
	o.leg = (o.leg + 1) % len(o.cfg.Route)
	o.mover.SetDestination(o.cfg.Route[o.leg], o.cfg.Speed)
}

func inDuty(now, every, active time.Duration) bool {
	return every > 0 && now%every < active
}

// Sprinting reports whether the opponent is loud at now.
func (o *ScriptedOpponent) Sprinting(now time.Duration) bool {
	return inDuty(now, o.cfg.SprintEvery, o.cfg.SprintFor)
}

// Step advances the opponent's walk by dt.
func (o *ScriptedOpponent) Step(now, dt time.Duration) {
	o.health.Blocking = inDuty(now, o.cfg.BlockEvery, o.cfg.BlockFor)
	if o.mover.RemainingDistance() < 1e-6 {
		o.nextLeg()
	}
	speed := o.cfg.Speed
	if o.Sprinting(now) {
		speed *= 2
	}
	o.mover.speed = speed
	o.mover.Advance(dt.Seconds())
}

// Target is the read-only view agents perceive this tick.
func (o *ScriptedOpponent) Target(now time.Duration) perception.Target {
	return perception.Target{Pose: o.mover.Pose(), Loud: o.Sprinting(now)}
}

// Swing picks the nearest position within reach once the attack cooldown has
// elapsed. It returns the index into positions, or -1.
func (o *ScriptedOpponent) Swing(now time.Duration, positions []ai.Vec3) int {
	if o.hasAttacked && now-o.lastAttack < o.cfg.AttackCooldown {
		return -1
	}
	me := o.mover.Pose().Position
	best, bestD := -1, o.cfg.Reach
	for i, p := range positions {
		if d := GroundDistance(me, p); d <= bestD {
			best, bestD = i, d
		}
	}
	if best >= 0 {
		o.hasAttacked, o.lastAttack = true, now
		o.mover.FaceTowards(positions[best])
	}
	return best
}

// TakeHit resolves an agent attack aimed at target. Attacks that land out of
// reach of the opponent's current position miss.
func (o *ScriptedOpponent) TakeHit(req agent.AttackRequest, reach float64) bool {
	if GroundDistance(o.mover.Pose().Position, req.Target) > reach {
		return false
	}
	o.health.ApplyDamage(req.Damage)
	if o.health.Dead() {
		o.deaths++
		o.health.Heal(o.health.MaxHealth())
		o.mover.Teleport(o.spawn)
		o.leg = -1
		o.nextLeg()
	}
	return true
}

func (o *ScriptedOpponent) Position() ai.Vec3 { return o.mover.Pose().Position }

func (o *ScriptedOpponent) Health() float64 { return o.health.CurrentHealth() }

func (o *ScriptedOpponent) Deaths() int { return o.deaths }

func (o *ScriptedOpponent) Damage() float64 { return o.cfg.Damage }
