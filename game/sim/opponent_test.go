package sim

import (
	"testing"
	"time"

	"github.com/kasuganosora/enemyai/game/agent"
	"github.com/kasuganosora/enemyai/game/ai"
	"github.com/stretchr/testify/assert"
)

func TestDutyCycles(t *testing.T) {
	o := NewScriptedOpponent(NewWorld(10, 10, 1), ai.Vec3{X: 1, Z: 1}, OpponentConfig{
		SprintEvery: 6 * time.Second,
		SprintFor:   2 * time.Second,
	})
	assert.True(t, o.Sprinting(0))
	assert.True(t, o.Sprinting(1900*time.Millisecond))
	assert.False(t, o.Sprinting(2*time.Second))
	assert.True(t, o.Sprinting(6*time.Second))
	assert.True(t, o.Target(time.Second).Loud)
	assert.False(t, o.Target(3*time.Second).Loud)

	quiet := NewScriptedOpponent(NewWorld(10, 10, 1), ai.Vec3{X: 1, Z: 1}, OpponentConfig{})
	assert.False(t, quiet.Sprinting(0))
}

func TestOpponentWalksRoute(t *testing.T) {
	route := []ai.Vec3{{X: 8.5, Z: 1.5}, {X: 1.5, Z: 1.5}}
	o := NewScriptedOpponent(NewWorld(10, 10, 1), ai.Vec3{X: 1.5, Z: 1.5}, OpponentConfig{Speed: 1, Route: route})

	var reachedFar bool
	for now := time.Duration(0); now < 20*time.Second; now += 100 * time.Millisecond {
		o.Step(now, 100*time.Millisecond)
		if GroundDistance(o.Position(), route[0]) < 1e-6 {
			reachedFar = true
		}
	}
	assert.True(t, reachedFar)
}

func TestSwingCooldownAndReach(t *testing.T) {
	o := NewScriptedOpponent(NewWorld(10, 10, 1), ai.Vec3{X: 5, Z: 5}, OpponentConfig{
		Reach:          1.5,
		AttackCooldown: time.Second,
	})
	positions := []ai.Vec3{{X: 5, Z: 8}, {X: 5, Z: 6}, {X: 6, Z: 5.5}}

	// Nearest in reach wins: index 1 is 1m away, index 2 about 1.12m.
	assert.Equal(t, 1, o.Swing(0, positions))
	assert.Equal(t, -1, o.Swing(500*time.Millisecond, positions))
	assert.Equal(t, 1, o.Swing(time.Second, positions))
	assert.Equal(t, -1, o.Swing(5*time.Second, []ai.Vec3{{X: 9, Z: 9}}))
}

func TestTakeHitRespawns(t *testing.T) {
	spawn := ai.Vec3{X: 2, Z: 2}
	o := NewScriptedOpponent(NewWorld(10, 10, 1), spawn, OpponentConfig{MaxHealth: 20})

	assert.False(t, o.TakeHit(agent.AttackRequest{Target: ai.Vec3{X: 9, Z: 9}, Damage: 5}, 1))
	assert.InDelta(t, 20, o.Health(), 1e-9)

	assert.True(t, o.TakeHit(agent.AttackRequest{Target: spawn, Damage: 5}, 1))
	assert.InDelta(t, 15, o.Health(), 1e-9)

	assert.True(t, o.TakeHit(agent.AttackRequest{Target: spawn, Damage: 50}, 1))
	assert.Equal(t, 1, o.Deaths())
	assert.InDelta(t, 20, o.Health(), 1e-9)
	assert.Equal(t, spawn, o.Position())
}

func TestBlockingReducesDamage(t *testing.T) {
	spawn := ai.Vec3{X: 2, Z: 2}
	o := NewScriptedOpponent(NewWorld(10, 10, 1), spawn, OpponentConfig{
		MaxHealth:  100,
		BlockEvery: 10 * time.Second,
		BlockFor:   time.Second,
	})
	o.Step(0, 0)
	o.TakeHit(agent.AttackRequest{Target: spawn, Damage: 20}, 1)
	assert.InDelta(t, 95, o.Health(), 1e-9)

	o.Step(5*time.Second, 0)
	o.TakeHit(agent.AttackRequest{Target: spawn, Damage: 20}, 1)
	assert.InDelta(t, 75, o.Health(), 1e-9)
}
