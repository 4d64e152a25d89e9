package dna

import (
	"math/rand"
	"time"

	"github.com/kasuganosora/enemyai/game/opponent"
	"go.uber.org/zap"
)

// Adapter nudges a profile toward a counter-tactic for the observed opponent.
type Adapter interface {
	Adapt(p *Profile, o opponent.Snapshot)
}

// Engine is the stock Adapter.
//
// A camping attacker (many hits, little movement) makes the agent more
// aggressive and evasive; a roaming opponent extends its chase range. The
// profile is then mutated.
type Engine struct {
	Rand           Rand
	AggressionStep float64
	DodgeStep      float64
	ChaseRangeStep float64

	logger *zap.Logger
}

// Rule thresholds.
const (
	campingMinAttacks  = 3
	campingMaxDistance = 5.0
	roamingMinDistance = 5.0
)

// NewEngine returns an Engine with the stock steps. A nil rng seeds one from the clock.
func NewEngine(rng Rand, logger *zap.Logger) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		Rand:           rng,
		AggressionStep: 0.1,
		DodgeStep:      0.1,
		ChaseRangeStep: 2.0,
		logger:         logger,
	}
}

func (e *Engine) Adapt(p *Profile, o opponent.Snapshot) {
	before := *p
	switch {
	case o.AttackCount >= campingMinAttacks && o.MoveDistance < campingMaxDistance:
		p.Aggression += e.AggressionStep
		p.DodgeChance += e.DodgeStep
	case o.MoveDistance > roamingMinDistance:
		p.ChaseRange += e.ChaseRangeStep
	}
	p.Mutate(e.Rand)

	e.logger.Info("profile adapted",
		zap.Stringer("style", o.Style),
		zap.Int("attacks", o.AttackCount),
		zap.Float64("distance", o.MoveDistance),
		zap.Any("before", before),
		zap.Any("after", *p))
}
