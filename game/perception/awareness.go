package perception

import (
	"errors"
	"fmt"
	"time"
)

// Level is the coarse alertness of an agent toward its target.
type Level int

const (
	Unaware Level = iota
	Suspicious
	Alerted
	Engaged
)

func (l Level) String() string {
	switch l {
	case Unaware:
		return "unaware"
	case Suspicious:
		return "suspicious"
	case Alerted:
		return "alerted"
	case Engaged:
		return "engaged"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

// Color is the indicator colour presentation layers use for the level.
func (l Level) Color() string {
	switch l {
	case Unaware:
		return "#ffffff"
	case Suspicious:
		return "#ffff00"
	case Alerted:
		return "#ff8000"
	case Engaged:
		return "#ff0000"
	default:
		return "#808080"
	}
}

var ErrInvalidAwareness = errors.New("perception: invalid awareness config")

// AwarenessConfig holds the sighting thresholds.
type AwarenessConfig struct {
	SuspiciousAfter time.Duration // continuous sighting needed for Alerted
	AlertedAfter    time.Duration // continuous sighting needed for Engaged
	LoseSightDelay  time.Duration // unseen time after which awareness resets
}

func DefaultAwarenessConfig() AwarenessConfig {
	return AwarenessConfig{
		SuspiciousAfter: 1500 * time.Millisecond,
		AlertedAfter:    3 * time.Second,
		LoseSightDelay:  2 * time.Second,
	}
}

func (c AwarenessConfig) Validate() error {
	if c.SuspiciousAfter <= 0 || c.AlertedAfter <= c.SuspiciousAfter {
		return fmt.Errorf("%w: thresholds must be strictly increasing (%s, %s)",
			ErrInvalidAwareness, c.SuspiciousAfter, c.AlertedAfter)
	}
	if c.LoseSightDelay <= 0 {
		return fmt.Errorf("%w: lose_sight_delay must be positive", ErrInvalidAwareness)
	}
	return nil
}

// Tracker accumulates sighting time and derives the awareness Level.
// The level is only ever changed by Update.
type Tracker struct {
	cfg        AwarenessConfig
	level      Level
	timeSeen   time.Duration
	timeUnseen time.Duration
}

func NewTracker(cfg AwarenessConfig) *Tracker {
	return &Tracker{cfg: cfg}
}

// Update advances the tracker by dt and reports the resulting level and
// whether it changed on this call.
//
// While the target stays unseen the level is held until timeUnseen has
// passed LoseSightDelay; only then does it drop to Unaware.
func (t *Tracker) Update(visible bool, dt time.Duration) (Level, bool) {
	if dt < 0 {
		dt = 0
	}
	prev := t.level

	if visible {
		t.timeSeen += dt
		t.timeUnseen = 0
		switch {
		case t.timeSeen >= t.cfg.AlertedAfter:
			t.level = Engaged
		case t.timeSeen >= t.cfg.SuspiciousAfter:
			t.level = Alerted
		default:
			t.level = Suspicious
		}
	} else {
		t.timeUnseen += dt
		if t.timeUnseen > t.cfg.LoseSightDelay {
			t.level = Unaware
			t.timeSeen = 0
		}
	}
	return t.level, t.level != prev
}

func (t *Tracker) Level() Level { return t.level }

func (t *Tracker) TimeSeen() time.Duration { return t.timeSeen }

func (t *Tracker) TimeUnseen() time.Duration { return t.timeUnseen }
