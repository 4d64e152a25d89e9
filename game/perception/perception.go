// Package perception turns raw agent/target geometry into the per-tick
// sighting signal and the coarse awareness level derived from it.
package perception

import (
	"github.com/kasuganosora/enemyai/game/ai"
)

// Channel is a set of enabled perception channels.
type Channel uint8

const (
	ChannelVision Channel = 1 << iota
	ChannelHearing

	ChannelAll = ChannelVision | ChannelHearing
)

// Has reports whether every channel in other is enabled.
func (c Channel) Has(other Channel) bool { return c&other == other }

// Add enables other.
func (c Channel) Add(other Channel) Channel { return c | other }

// Config describes one agent's senses.
type Config struct {
	ViewRadius    float64
	ViewAngleDeg  float64 // full cone width
	HearingRadius float64
	EyeHeight     float64 // ray origin offset above the agent's position
	Channels      Channel
}

// DefaultConfig mirrors the stock enemy: 12m/120° vision and 6m hearing.
func DefaultConfig() Config {
	return Config{
		ViewRadius:    12,
		ViewAngleDeg:  120,
		HearingRadius: 6,
		Channels:      ChannelAll,
	}
}

// Target is what an agent is trying to perceive.
type Target struct {
	Pose ai.Pose
	Loud bool // sprinting or otherwise audible
}

// Sample is the result of one perception pass. It lives for a single tick.
type Sample struct {
	HasTarget bool
	Visible   bool
	Audible   bool
	Distance  float64
	// TargetLastKnownPosition is the target position when it was visible or
	// audible this tick; zero otherwise.
	TargetLastKnownPosition ai.Vec3
}

// Located reports whether this tick produced a usable target position.
func (s Sample) Located() bool { return s.Visible || s.Audible }

// Sense evaluates vision and hearing of target from self. A nil target or an
// unusable pose yields an empty sample. A nil occlusion query counts as blocked.
func Sense(self ai.Pose, target *Target, cfg Config, occl OcclusionQuery) Sample {
	if target == nil || !self.Valid() || !target.Pose.Position.Finite() {
		return Sample{}
	}

	toTarget := target.Pose.Position.Sub(self.Position)
	dist := toTarget.Len()
	s := Sample{HasTarget: true, Distance: dist}

	if cfg.Channels.Has(ChannelVision) {
		s.Visible = canSee(self, toTarget, dist, cfg, occl)
	}
	if cfg.Channels.Has(ChannelHearing) {
		s.Audible = target.Loud && dist <= cfg.HearingRadius
	}
	if s.Located() {
		s.TargetLastKnownPosition = target.Pose.Position
	}
	return s
}

// canSee runs the cheap angle and range checks before the occlusion query.
func canSee(self ai.Pose, toTarget ai.Vec3, dist float64, cfg Config, occl OcclusionQuery) bool {
	if ai.AngleDeg(self.Forward, toTarget) >= cfg.ViewAngleDeg/2 {
		return false
	}
	if dist > cfg.ViewRadius {
		return false
	}
	if occl == nil {
		return false
	}
	origin := self.Position.Add(ai.Vec3{Y: cfg.EyeHeight})
	return !occl.IsBlocked(origin, toTarget.Normalize(), dist)
}

// Unit binds a Config and an occlusion query so callers only pass poses.
type Unit struct {
	Config    Config
	Occlusion OcclusionQuery
}

// Sense evaluates target from self using the unit's configuration.
func (u *Unit) Sense(self ai.Pose, target *Target) Sample {
	return Sense(self, target, u.Config, u.Occlusion)
}
