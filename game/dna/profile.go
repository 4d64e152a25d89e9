// Package dna holds the tunable combat genes of an agent and the rule that
// evolves them against an observed opponent.
package dna

import (
	"math"
	"time"
)

// Gene ranges.
const (
	MinAggression  = 0.0
	MaxAggression  = 1.0
	MinDodgeChance = 0.0
	MaxDodgeChance = 1.0
	MinChaseRange  = 2.0
	MaxChaseRange  = 15.0
)

// Mutation bounds, symmetric around zero.
const (
	aggressionJitter = 0.2
	dodgeJitter      = 0.2
	chaseRangeJitter = 1.0
)

// Rand is the randomness source used for mutation; *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Profile is one agent's gene set.
type Profile struct {
	Aggression  float64 `json:"aggression"`
	DodgeChance float64 `json:"dodge_chance"`
	ChaseRange  float64 `json:"chase_range"`
}

// Default is the starting gene set for a fresh agent.
func Default() Profile {
	return Profile{Aggression: 0.5, DodgeChance: 0.5, ChaseRange: 5}
}

// Mutate perturbs each gene independently and clamps the result. Repeated
// calls keep drifting but never leave the valid ranges.
func (p *Profile) Mutate(rng Rand) {
	p.Aggression += jitter(rng, aggressionJitter)
	p.DodgeChance += jitter(rng, dodgeJitter)
	p.ChaseRange += jitter(rng, chaseRangeJitter)
	p.Clamp()
}

// jitter returns a uniform value in [-bound, bound).
func jitter(rng Rand, bound float64) float64 {
	return (rng.Float64()*2 - 1) * bound
}

// Crossover replaces each gene with the mean of p and partner.
func (p *Profile) Crossover(partner Profile) {
	*p = Blend(*p, partner)
}

// Blend returns the gene-wise mean of a and b. It is symmetric in its inputs.
func Blend(a, b Profile) Profile {
	out := Profile{
		Aggression:  (a.Aggression + b.Aggression) / 2,
		DodgeChance: (a.DodgeChance + b.DodgeChance) / 2,
		ChaseRange:  (a.ChaseRange + b.ChaseRange) / 2,
	}
	out.Clamp()
	return out
}

// Clamp forces every gene into its range. NaN and -Inf go to the lower bound,
// +Inf to the upper bound.
func (p *Profile) Clamp() {
	p.Aggression = clamp(p.Aggression, MinAggression, MaxAggression)
	p.DodgeChance = clamp(p.DodgeChance, MinDodgeChance, MaxDodgeChance)
	p.ChaseRange = clamp(p.ChaseRange, MinChaseRange, MaxChaseRange)
}

// Valid reports whether every gene is finite and in range.
func (p Profile) Valid() bool {
	c := p
	c.Clamp()
	return c == p
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v) || v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

// AttackCooldown interpolates from slow (aggression 0) to fast (aggression 1).
func (p Profile) AttackCooldown(slow, fast time.Duration) time.Duration {
	a := clamp(p.Aggression, MinAggression, MaxAggression)
	return slow + time.Duration(float64(fast-slow)*a)
}
