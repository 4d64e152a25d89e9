package perception

import (
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kasuganosora/enemyai/game/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// facingNorth is an agent at the origin looking down +Z.
var facingNorth = ai.Pose{Forward: ai.Vec3{Z: 1}}

func targetAt(x, z float64, loud bool) *Target {
	return &Target{Pose: ai.Pose{Position: ai.Vec3{X: x, Z: z}, Forward: ai.Vec3{Z: -1}}, Loud: loud}
}

func TestSense_VisibleInsideCone(t *testing.T) {
	s := Sense(facingNorth, targetAt(1, 5, false), DefaultConfig(), OpenSky)
	assert.True(t, s.HasTarget)
	assert.True(t, s.Visible)
	assert.False(t, s.Audible)
	assert.InDelta(t, math.Hypot(1, 5), s.Distance, 1e-9)
	assert.Equal(t, ai.Vec3{X: 1, Z: 5}, s.TargetLastKnownPosition)
}

func TestSense_AngleIsStrict(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ViewAngleDeg = 180
	// Exactly 90° off-axis sits on the cone edge and must not be visible.
	s := Sense(facingNorth, targetAt(3, 0, false), cfg, OpenSky)
	assert.False(t, s.Visible)

	s = Sense(facingNorth, targetAt(3, 0.1, false), cfg, OpenSky)
	assert.True(t, s.Visible)
}

func TestSense_RangeIsInclusive(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, Sense(facingNorth, targetAt(0, 12, false), cfg, OpenSky).Visible)
	assert.False(t, Sense(facingNorth, targetAt(0, 12.01, false), cfg, OpenSky).Visible)
}

func TestSense_BehindIsNotVisible(t *testing.T) {
	assert.False(t, Sense(facingNorth, targetAt(0, -3, false), DefaultConfig(), OpenSky).Visible)
}

func TestSense_OcclusionShortCircuits(t *testing.T) {
	var calls int
	blocked := OcclusionFunc(func(origin, dir ai.Vec3, max float64) bool {
		calls++
		return true
	})

	// Out of cone: occlusion never consulted.
	s := Sense(facingNorth, targetAt(0, -3, false), DefaultConfig(), blocked)
	assert.False(t, s.Visible)
	assert.Equal(t, 0, calls)

	// Out of range: occlusion never consulted.
	s = Sense(facingNorth, targetAt(0, 30, false), DefaultConfig(), blocked)
	assert.False(t, s.Visible)
	assert.Equal(t, 0, calls)

	// In cone and range: occlusion decides.
	s = Sense(facingNorth, targetAt(0, 5, false), DefaultConfig(), blocked)
	assert.False(t, s.Visible)
	assert.Equal(t, 1, calls)
}

func TestSense_OcclusionRayArguments(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EyeHeight = 1
	var gotOrigin, gotDir ai.Vec3
	var gotMax float64
	q := OcclusionFunc(func(origin, dir ai.Vec3, max float64) bool {
		gotOrigin, gotDir, gotMax = origin, dir, max
		return false
	})
	Sense(facingNorth, targetAt(0, 4, false), cfg, q)
	assert.Equal(t, ai.Vec3{Y: 1}, gotOrigin)
	assert.InDelta(t, 1, gotDir.Len(), 1e-9)
	assert.InDelta(t, 4, gotMax, 1e-9)
}

func TestSense_NilOcclusionIsBlocked(t *testing.T) {
	assert.False(t, Sense(facingNorth, targetAt(0, 5, false), DefaultConfig(), nil).Visible)
}

func TestSense_Hearing(t *testing.T) {
	cfg := DefaultConfig()
	// Behind the agent but loud and close: heard, not seen.
	s := Sense(facingNorth, targetAt(0, -4, true), cfg, OpenSky)
	assert.False(t, s.Visible)
	assert.True(t, s.Audible)
	assert.True(t, s.Located())
	assert.Equal(t, ai.Vec3{Z: -4}, s.TargetLastKnownPosition)

	// Quiet target is never heard.
	assert.False(t, Sense(facingNorth, targetAt(0, -4, false), cfg, OpenSky).Audible)
	// Loud but out of hearing range.
	assert.False(t, Sense(facingNorth, targetAt(0, -7, true), cfg, OpenSky).Audible)
	// Hearing ignores occlusion.
	wall := OcclusionFunc(func(ai.Vec3, ai.Vec3, float64) bool { return true })
	assert.True(t, Sense(facingNorth, targetAt(0, 4, true), cfg, wall).Audible)
}

func TestSense_ChannelsGateResults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Channels = ChannelVision
	s := Sense(facingNorth, targetAt(0, 3, true), cfg, OpenSky)
	assert.True(t, s.Visible)
	assert.False(t, s.Audible, "hearing disabled")

	cfg.Channels = ChannelHearing
	s = Sense(facingNorth, targetAt(0, 3, true), cfg, OpenSky)
	assert.False(t, s.Visible, "vision disabled")
	assert.True(t, s.Audible)

	assert.True(t, ChannelVision.Add(ChannelHearing).Has(ChannelAll))
	assert.False(t, ChannelVision.Has(ChannelHearing))
}

func TestSense_MissingOrInvalidTarget(t *testing.T) {
	assert.Equal(t, Sample{}, Sense(facingNorth, nil, DefaultConfig(), OpenSky))

	bad := targetAt(math.NaN(), 1, true)
	assert.Equal(t, Sample{}, Sense(facingNorth, bad, DefaultConfig(), OpenSky))

	noForward := ai.Pose{}
	assert.Equal(t, Sample{}, Sense(noForward, targetAt(0, 1, true), DefaultConfig(), OpenSky))
}

func TestUnit_Sense(t *testing.T) {
	u := &Unit{Config: DefaultConfig(), Occlusion: OpenSky}
	assert.True(t, u.Sense(facingNorth, targetAt(0, 2, false)).Visible)
}

func TestWithTimeout_SlowQueryIsBlocked(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	slow := OcclusionFunc(func(ai.Vec3, ai.Vec3, float64) bool {
		<-release
		return false
	})
	q := WithTimeout(slow, 10*time.Millisecond)
	start := time.Now()
	assert.True(t, q.IsBlocked(ai.Vec3{}, ai.Vec3{Z: 1}, 5))
	assert.Less(t, time.Since(start), time.Second)
}

func TestWithTimeout_FastQueryPassesThrough(t *testing.T) {
	var calls int32
	fast := OcclusionFunc(func(ai.Vec3, ai.Vec3, float64) bool {
		atomic.AddInt32(&calls, 1)
		return false
	})
	q := WithTimeout(fast, time.Second)
	assert.False(t, q.IsBlocked(ai.Vec3{}, ai.Vec3{Z: 1}, 5))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestWithTimeout_PanicIsBlocked(t *testing.T) {
	q := WithTimeout(OcclusionFunc(func(ai.Vec3, ai.Vec3, float64) bool { panic("boom") }), time.Second)
	assert.True(t, q.IsBlocked(ai.Vec3{}, ai.Vec3{Z: 1}, 5))
}

func TestWithTimeout_Passthrough(t *testing.T) {
	require.Nil(t, WithTimeout(nil, time.Second))
	_, wrapped := WithTimeout(OpenSky, 0).(*timeoutQuery)
	assert.False(t, wrapped)
}
