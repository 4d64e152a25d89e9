package sim

import (
	"github.com/kasuganosora/enemyai/config"
	"github.com/kasuganosora/enemyai/game/agent"
	"github.com/kasuganosora/enemyai/game/ai"
	"github.com/kasuganosora/enemyai/game/dna"
	"github.com/kasuganosora/enemyai/game/perception"
	"github.com/paulmach/orb"
)

func points(ps []config.Point) []ai.Vec3 {
	out := make([]ai.Vec3, len(ps))
	for i, p := range ps {
		out[i] = ai.Vec3{X: p.X, Z: p.Z}
	}
	return out
}

// WorldFromConfig builds the level described by the sim section.
func WorldFromConfig(c config.SimConfig) *World {
	obstacles := make([]orb.Bound, len(c.Obstacles))
	for i, r := range c.Obstacles {
		obstacles[i] = Rect(r.MinX, r.MinZ, r.MaxX, r.MaxZ)
	}
	return NewWorld(c.Width, c.Depth, c.CellSize, obstacles...)
}

// AgentConfig maps the agent, perception, awareness and genes sections onto
// an agent.Config.
func AgentConfig(c *config.Config) agent.Config {
	var ch perception.Channel
	if c.Perception.Vision {
		ch = ch.Add(perception.ChannelVision)
	}
	if c.Perception.Hearing {
		ch = ch.Add(perception.ChannelHearing)
	}
	a := c.Agent
	return agent.Config{
		Perception: perception.Config{
			ViewRadius:    c.Perception.ViewRadius,
			ViewAngleDeg:  c.Perception.ViewAngleDeg,
			HearingRadius: c.Perception.HearingRadius,
			EyeHeight:     c.Perception.EyeHeight,
			Channels:      ch,
		},
		Awareness: perception.AwarenessConfig{
			SuspiciousAfter: c.Awareness.SuspiciousAfter,
			AlertedAfter:    c.Awareness.AlertedAfter,
			LoseSightDelay:  c.Awareness.LoseSightDelay,
		},
		Profile: dna.Profile{
			Aggression:  c.Genes.Aggression,
			DodgeChance: c.Genes.DodgeChance,
			ChaseRange:  c.Genes.ChaseRange,
		},
		Waypoints:          points(c.Sim.Patrol),
		MaxHealth:          a.MaxHealth,
		AttackRange:        a.AttackRange,
		AttackDamage:       a.AttackDamage,
		LowHealth:          a.LowHealth,
		RetreatThreshold:   a.RetreatThreshold,
		RetreatDistance:    a.RetreatDistance,
		SearchRadius:       a.SearchRadius,
		HealRate:           a.HealRate,
		PatrolSpeed:        a.PatrolSpeed,
		ChaseSpeedFactor:   a.ChaseSpeedFactor,
		RetreatSpeed:       a.RetreatSpeed,
		StoppingDistance:   a.StoppingDistance,
		ArrivalEpsilon:     a.ArrivalEpsilon,
		HitCooldown:        a.HitCooldown,
		SearchDuration:     a.SearchDuration,
		AttackCooldownSlow: a.AttackCooldownSlow,
		AttackCooldownFast: a.AttackCooldownFast,
		DodgeEnabled:       a.DodgeEnabled,
	}
}

// OpponentFromConfig maps the sim.opponent section.
func OpponentFromConfig(c config.OpponentConfig) OpponentConfig {
	return OpponentConfig{
		MaxHealth:      c.MaxHealth,
		Speed:          c.Speed,
		Reach:          c.Reach,
		Damage:         c.Damage,
		AttackCooldown: c.AttackCooldown,
		SprintEvery:    c.SprintEvery,
		SprintFor:      c.SprintFor,
		BlockEvery:     c.BlockEvery,
		BlockFor:       c.BlockFor,
		Route:          points(c.Route),
	}
}

// Spawns returns the configured spawn points, or count points spread along
// the floor's south edge when none are configured.
func Spawns(w *World, c config.SimConfig, count int) []ai.Vec3 {
	if len(c.Spawns) > 0 {
		return points(c.Spawns)
	}
	out := make([]ai.Vec3, 0, count)
	width := w.Bounds.Max[0] - w.Bounds.Min[0]
	for i := 0; i < count; i++ {
		p := ai.Vec3{X: w.Bounds.Min[0] + width*float64(i+1)/float64(count+1), Z: w.Bounds.Min[1] + w.CellSize/2}
		if snapped, ok := w.Nearest(p); ok {
			p = snapped
		}
		out = append(out, p)
	}
	return out
}
