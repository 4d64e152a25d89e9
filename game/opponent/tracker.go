// Package opponent profiles how the tracked player fights.
package opponent

import (
	"github.com/kasuganosora/enemyai/game/ai"
	"go.uber.org/zap"
)

// Style is a coarse play-style label.
type Style int

const (
	Balanced Style = iota
	Aggressive
	Stealthy
)

func (s Style) String() string {
	switch s {
	case Aggressive:
		return "aggressive"
	case Stealthy:
		return "stealthy"
	default:
		return "balanced"
	}
}

func (s Style) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Classification thresholds.
const (
	aggressiveMinAttacks  = 1
	aggressiveMaxDistance = 2.0
	stealthyMinDistance   = 5.0
)

// Classify labels an opponent from its accumulated counters.
func Classify(moveDistance float64, attackCount int) Style {
	switch {
	case attackCount >= aggressiveMinAttacks && moveDistance < aggressiveMaxDistance:
		return Aggressive
	case moveDistance > stealthyMinDistance && attackCount < aggressiveMinAttacks:
		return Stealthy
	default:
		return Balanced
	}
}

// Snapshot is a read-only copy of the tracker state.
type Snapshot struct {
	MoveDistance float64 `json:"move_distance"`
	AttackCount  int     `json:"attack_count"`
	Style        Style   `json:"style"`
}

// Tracker accumulates opponent movement and attacks. Counters only grow until
// Reset; nothing in this module calls Reset, so the label settles on whatever
// pattern dominated early play unless the host resets it (e.g. per round).
type Tracker struct {
	moveDistance float64
	attackCount  int
	style        Style
	last         ai.Vec3
	hasLast      bool

	// OnStyleChange, when set, is called whenever the label flips.
	OnStyleChange func(from, to Style)
	logger        *zap.Logger
}

func NewTracker(logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{logger: logger}
}

// ReportPosition records the opponent's position for this tick. The first
// report only seeds the reference point.
func (t *Tracker) ReportPosition(p ai.Vec3) {
	if !p.Finite() {
		return
	}
	if t.hasLast {
		t.moveDistance += ai.Distance(t.last, p)
	}
	t.last = p
	t.hasLast = true
	t.reclassify()
}

// ReportAttack records one qualifying opponent attack.
func (t *Tracker) ReportAttack() {
	t.attackCount++
	t.reclassify()
}

// Reset clears the counters. Calling convention is up to the host.
func (t *Tracker) Reset() {
	t.moveDistance = 0
	t.attackCount = 0
	t.hasLast = false
	t.reclassify()
}

func (t *Tracker) reclassify() {
	next := Classify(t.moveDistance, t.attackCount)
	if next == t.style {
		return
	}
	prev := t.style
	t.style = next
	t.logger.Debug("opponent play style changed",
		zap.Stringer("from", prev),
		zap.Stringer("to", next),
		zap.Int("attacks", t.attackCount),
		zap.Float64("distance", t.moveDistance))
	if t.OnStyleChange != nil {
		t.OnStyleChange(prev, next)
	}
}

func (t *Tracker) Style() Style { return t.style }

func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{MoveDistance: t.moveDistance, AttackCount: t.attackCount, Style: t.style}
}
