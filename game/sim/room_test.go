package sim

import (
	"testing"
	"time"

	"github.com/kasuganosora/enemyai/config"
	"github.com/kasuganosora/enemyai/game/agent"
	"github.com/kasuganosora/enemyai/game/ai"
	"github.com/kasuganosora/enemyai/game/perception"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRoom(t *testing.T, w *World, oppAt ai.Vec3, opp OpponentConfig) *Room {
	t.Helper()
	if opp.MaxHealth == 0 {
		opp.MaxHealth = 100
	}
	return NewRoom(w, NewScriptedOpponent(w, oppAt, opp), DefaultTick, zap.NewNop())
}

func TestRoomAgentChasesAndHits(t *testing.T) {
	w := NewWorld(30, 30, 1)
	r := newRoom(t, w, ai.Vec3{X: 5, Z: 9}, OpponentConfig{})
	_, err := r.Spawn("a1", agent.DefaultConfig(), agent.Deps{}, ai.Vec3{X: 5, Z: 5})
	require.NoError(t, err)

	r.Step(DefaultTick)
	s, ok := r.Snapshot("a1")
	require.True(t, ok)
	assert.Equal(t, agent.Chasing, s.State)

	for i := 0; i < 60; i++ {
		r.Step(DefaultTick)
	}
	s, _ = r.Snapshot("a1")
	assert.Equal(t, agent.Attacking, s.State)
	opp, ok := r.Opponent()
	require.True(t, ok)
	assert.Less(t, opp.Health, 100.0)

	pose, ok := r.Pose("a1")
	require.True(t, ok)
	assert.Less(t, GroundDistance(pose.Position, opp.Position), 2.0)
}

func TestRoomWallHidesOpponent(t *testing.T) {
	w := NewWorld(30, 30, 1, Rect(0, 7, 30, 7.5))
	r := newRoom(t, w, ai.Vec3{X: 5, Z: 9}, OpponentConfig{})
	_, err := r.Spawn("a1", agent.DefaultConfig(), agent.Deps{}, ai.Vec3{X: 5, Z: 5})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		r.Step(DefaultTick)
	}
	s, _ := r.Snapshot("a1")
	assert.Equal(t, agent.Patrolling, s.State)
}

func TestRoomOpponentSwingsAndReports(t *testing.T) {
	w := NewWorld(30, 30, 1)
	r := newRoom(t, w, ai.Vec3{X: 5, Z: 6}, OpponentConfig{Reach: 1.5, Damage: 15, AttackCooldown: time.Second})
	_, err := r.Spawn("a1", agent.DefaultConfig(), agent.Deps{}, ai.Vec3{X: 5, Z: 5})
	require.NoError(t, err)
	_, err = r.Spawn("a2", agent.DefaultConfig(), agent.Deps{}, ai.Vec3{X: 20, Z: 20})
	require.NoError(t, err)

	r.Step(DefaultTick)
	snaps := r.Snapshots()
	require.Len(t, snaps, 2)
	assert.InDelta(t, 85, snaps[0].Health, 1e-9)
	assert.Equal(t, 1, snaps[0].Opponent.AttackCount)
	assert.InDelta(t, 100, snaps[1].Health, 1e-9)
	assert.Equal(t, 1, snaps[1].Opponent.AttackCount)

	r.ResetOpponentProfiles()
	for _, s := range r.Snapshots() {
		assert.Zero(t, s.Opponent.AttackCount)
	}
}

func TestRoomSpawnErrors(t *testing.T) {
	w := NewWorld(10, 10, 1, Rect(4, 4, 6, 6))
	r := NewRoom(w, nil, 0, nil)

	_, err := r.Spawn("x", agent.DefaultConfig(), agent.Deps{}, ai.Vec3{X: 5, Z: 5})
	assert.Error(t, err)
	_, err = r.Spawn("x", agent.DefaultConfig(), agent.Deps{}, ai.Vec3{X: 1, Z: 1})
	require.NoError(t, err)
	_, err = r.Spawn("x", agent.DefaultConfig(), agent.Deps{}, ai.Vec3{X: 2, Z: 1})
	assert.Error(t, err)
	assert.Equal(t, 1, r.Len())

	// No opponent: ticking is still safe.
	assert.NotPanics(t, func() { r.Step(DefaultTick) })
	_, ok := r.Opponent()
	assert.False(t, ok)
}

func TestRoomSnapshotsSorted(t *testing.T) {
	w := NewWorld(10, 10, 1)
	r := NewRoom(w, nil, DefaultTick, zap.NewNop())
	for _, id := range []string{"b", "c", "a"} {
		_, err := r.Spawn(id, agent.DefaultConfig(), agent.Deps{}, ai.Vec3{X: 1, Z: 1})
		require.NoError(t, err)
	}
	var ids []string
	for _, s := range r.Snapshots() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
	assert.Len(t, r.Profiles(), 3)
	_, ok := r.Snapshot("zzz")
	assert.False(t, ok)
}

func TestRoomRunStop(t *testing.T) {
	w := NewWorld(10, 10, 1)
	r := NewRoom(w, nil, time.Millisecond, zap.NewNop(), WithOcclusionTimeout(10*time.Millisecond))
	done := make(chan struct{})
	go func() {
		r.Run()
		close(done)
	}()
	require.Eventually(t, func() bool { return r.Now() > 0 }, time.Second, time.Millisecond)
	r.Stop()
	r.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("room loop did not stop")
	}
}

func TestSetupFromConfig(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Sim.Obstacles = []config.Rect{{MinX: 10, MinZ: 0, MaxX: 12, MaxZ: 30}}
	cfg.Sim.Patrol = []config.Point{{X: 3, Z: 3}, {X: 3, Z: 20}}

	w := WorldFromConfig(cfg.Sim)
	require.Len(t, w.Obstacles, 1)
	assert.False(t, w.Inside(ai.Vec3{X: 11, Z: 5}))

	ac := AgentConfig(cfg)
	assert.Equal(t, cfg.Agent.HitCooldown, ac.HitCooldown)
	assert.InDelta(t, 5, ac.Profile.ChaseRange, 1e-9)
	assert.Equal(t, []ai.Vec3{{X: 3, Z: 3}, {X: 3, Z: 20}}, ac.Waypoints)
	assert.True(t, ac.Perception.Channels.Has(perception.ChannelAll))
	assert.Equal(t, cfg.Awareness.LoseSightDelay, ac.Awareness.LoseSightDelay)

	spawns := Spawns(w, cfg.Sim, 3)
	require.Len(t, spawns, 3)
	for _, p := range spawns {
		assert.True(t, w.Inside(p))
	}

	oc := OpponentFromConfig(cfg.Sim.Opponent)
	assert.InDelta(t, cfg.Sim.Opponent.Reach, oc.Reach, 1e-9)
}
