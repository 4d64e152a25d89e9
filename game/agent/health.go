package agent

import (
	"math"
	"sync"
)

// Pool is the default Health implementation: a clamped hit-point counter.
type Pool struct {
	mu      sync.Mutex
	current float64
	max     float64
	// Blocking scales incoming damage down to BlockFactor while set.
	Blocking    bool
	BlockFactor float64
}

// NewPool returns a full pool. Non-positive max falls back to 100.
func NewPool(max float64) *Pool {
	if max <= 0 || math.IsNaN(max) {
		max = 100
	}
	return &Pool{current: max, max: max, BlockFactor: 0.25}
}

func (p *Pool) CurrentHealth() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Pool) MaxHealth() float64 { return p.max }

// Heal adds amount, capped at max.
func (p *Pool) Heal(amount float64) {
	if amount <= 0 || math.IsNaN(amount) {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = math.Min(p.current+amount, p.max)
}

// ApplyDamage subtracts amount, floored at 0.
func (p *Pool) ApplyDamage(amount float64) {
	if amount <= 0 || math.IsNaN(amount) {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Blocking {
		amount *= p.BlockFactor
	}
	p.current = math.Max(p.current-amount, 0)
}

// Dead reports whether the pool is empty.
func (p *Pool) Dead() bool { return p.CurrentHealth() <= 0 }
