package perception

import (
	"time"

	"github.com/kasuganosora/enemyai/game/ai"
)

// OcclusionQuery reports whether any obstruction-tagged surface intersects the
// ray from origin along direction, up to maxDistance.
type OcclusionQuery interface {
	IsBlocked(origin, direction ai.Vec3, maxDistance float64) bool
}

// OcclusionFunc adapts a plain function to OcclusionQuery.
type OcclusionFunc func(origin, direction ai.Vec3, maxDistance float64) bool

func (f OcclusionFunc) IsBlocked(origin, direction ai.Vec3, maxDistance float64) bool {
	return f(origin, direction, maxDistance)
}

// OpenSky never reports an obstruction.
var OpenSky OcclusionQuery = OcclusionFunc(func(ai.Vec3, ai.Vec3, float64) bool { return false })

type timeoutQuery struct {
	q       OcclusionQuery
	timeout time.Duration
}

// WithTimeout bounds q by a caller-imposed deadline. A query that has not
// answered in time, or that panics, reports blocked. A late answer is discarded.
func WithTimeout(q OcclusionQuery, timeout time.Duration) OcclusionQuery {
	if q == nil || timeout <= 0 {
		return q
	}
	return &timeoutQuery{q: q, timeout: timeout}
}

func (t *timeoutQuery) IsBlocked(origin, direction ai.Vec3, maxDistance float64) bool {
	done := make(chan bool, 1)
	go func() {
		blocked := true
		defer func() {
			recover()
			done <- blocked
		}()
		blocked = t.q.IsBlocked(origin, direction, maxDistance)
	}()

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()
	select {
	case blocked := <-done:
		return blocked
	case <-timer.C:
		return true
	}
}
