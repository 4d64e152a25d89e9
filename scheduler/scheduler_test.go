package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAddTicker_Fires(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var count int32
	require.True(t, s.AddTicker("profile_snapshot", 20*time.Millisecond, func() {
		atomic.AddInt32(&count, 1)
	}))

	time.Sleep(120 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&count), int32(3))
}

func TestAddTicker_DisabledInterval(t *testing.T) {
	s := New(nil)
	defer s.Stop()

	assert.False(t, s.AddTicker("opponent_reset", 0, func() {}))
	assert.False(t, s.AddTicker("opponent_reset", -time.Second, func() {}))
	assert.Empty(t, s.Tasks())
}

func TestAddTicker_Replaces(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var count1, count2 int32
	s.AddTicker("task", 20*time.Millisecond, func() { atomic.AddInt32(&count1, 1) })
	time.Sleep(30 * time.Millisecond)
	s.AddTicker("task", 20*time.Millisecond, func() { atomic.AddInt32(&count2, 1) })
	time.Sleep(80 * time.Millisecond)

	snap1 := atomic.LoadInt32(&count1)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, snap1, atomic.LoadInt32(&count1), "replaced task must stop")
	assert.Positive(t, atomic.LoadInt32(&count2))
	assert.Len(t, s.Tasks(), 1)
}

func TestAddDelay_FiresOnce(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var count int32
	s.AddDelay("once", 30*time.Millisecond, func() { atomic.AddInt32(&count, 1) })

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&count))
}

func TestAddDelay_ReplacesPending(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var count int32
	s.AddDelay("d", 500*time.Millisecond, func() { atomic.AddInt32(&count, 1) })
	s.AddDelay("d", 30*time.Millisecond, func() { atomic.AddInt32(&count, 10) })
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(10), atomic.LoadInt32(&count))
}

func TestRemove(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	var ticks, delayed int32
	s.AddTicker("task", 20*time.Millisecond, func() { atomic.AddInt32(&ticks, 1) })
	s.AddDelay("d", 100*time.Millisecond, func() { atomic.AddInt32(&delayed, 1) })
	time.Sleep(50 * time.Millisecond)
	s.Remove("task")
	s.Remove("d")
	s.Remove("nope")
	snap := atomic.LoadInt32(&ticks)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, snap, atomic.LoadInt32(&ticks))
	assert.Zero(t, atomic.LoadInt32(&delayed))
	assert.Empty(t, s.Tasks())
}

func TestStop(t *testing.T) {
	s := New(zap.NewNop())

	var c1, c2 int32
	s.AddTicker("a", 20*time.Millisecond, func() { atomic.AddInt32(&c1, 1) })
	s.AddTicker("b", 20*time.Millisecond, func() { atomic.AddInt32(&c2, 1) })
	time.Sleep(50 * time.Millisecond)
	s.Stop()
	s.Stop()
	time.Sleep(30 * time.Millisecond)
	snap1, snap2 := atomic.LoadInt32(&c1), atomic.LoadInt32(&c2)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, snap1, atomic.LoadInt32(&c1))
	assert.Equal(t, snap2, atomic.LoadInt32(&c2))

	assert.False(t, s.AddTicker("late", 10*time.Millisecond, func() {}))
}

func TestTasks_CountsRunsAndPanics(t *testing.T) {
	s := New(zap.NewNop())
	defer s.Stop()

	s.AddTicker("ok", 20*time.Millisecond, func() {})
	s.AddTicker("boom", 20*time.Millisecond, func() { panic("oops") })
	time.Sleep(110 * time.Millisecond)

	tasks := s.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "boom", tasks[0].Name)
	assert.Zero(t, tasks[0].Runs)
	assert.GreaterOrEqual(t, tasks[0].Panics, int64(2), "a panicking task keeps its schedule")
	assert.Equal(t, "ok", tasks[1].Name)
	assert.Equal(t, 20*time.Millisecond, tasks[1].Interval)
	assert.GreaterOrEqual(t, tasks[1].Runs, int64(2))
}
