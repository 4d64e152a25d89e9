package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterIdle = 10 * time.Minute
	sweepEvery  = 1024 // requests between idle sweeps
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterSet hands out one token bucket per client IP and forgets clients
// idle for longer than limiterIdle.
type limiterSet struct {
	mu       sync.Mutex
	clients  map[string]*clientLimiter
	r        rate.Limit
	b        int
	requests int
	now      func() time.Time
}

func newLimiterSet(r rate.Limit, b int) *limiterSet {
	return &limiterSet{clients: make(map[string]*clientLimiter), r: r, b: b, now: time.Now}
}

func (s *limiterSet) allow(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()

	s.requests++
	if s.requests%sweepEvery == 0 {
		for k, cl := range s.clients {
			if now.Sub(cl.lastSeen) > limiterIdle {
				delete(s.clients, k)
			}
		}
	}

	cl, ok := s.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(s.r, s.b)}
		s.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

func (s *limiterSet) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// RateLimit provides per-IP token-bucket rate limiting.
// r = requests per second, b = burst size.
func RateLimit(r rate.Limit, b int) gin.HandlerFunc {
	set := newLimiterSet(r, b)
	return func(c *gin.Context) {
		if !set.allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
