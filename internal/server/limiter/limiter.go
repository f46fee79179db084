package limiter

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/calcmesh-go/pkg/cmap"
)

// Default janitor timings.
const (
	DefaultPruneInterval = time.Minute
	DefaultIdleTimeout   = 3 * time.Minute
)

// Set holds a token bucket per key. A nil Set allows everything.
type Set struct {
	limit   rate.Limit
	burst   int
	buckets *cmap.Map[*bucket]
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// New creates a Set allowing perSec events per second per key with a
// burst of perSec. It returns nil when perSec <= 0.
func New(perSec int) *Set {
	if perSec <= 0 {
		return nil
	}
	return &Set{
		limit:   rate.Limit(perSec),
		burst:   perSec,
		buckets: cmap.New[*bucket](),
		now:     time.Now,
	}
}

// Allow reports whether an event for key may happen now.
func (s *Set) Allow(key string) bool {
	if s == nil {
		return true
	}
	b, _ := s.buckets.GetOrCompute(key, func() *bucket {
		return &bucket{limiter: rate.NewLimiter(s.limit, s.burst)}
	})
	now := s.now()
	b.lastSeen.Store(now.UnixNano())
	return b.limiter.AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return s.buckets.Count()
}

// Prune drops buckets not used within idle and returns how many were
// removed. A dropped key starts again with a full bucket.
func (s *Set) Prune(idle time.Duration) int {
	if s == nil {
		return 0
	}
	cutoff := s.now().Add(-idle).UnixNano()
	return s.buckets.DeleteFunc(func(_ string, b *bucket) bool {
		return b.lastSeen.Load() < cutoff
	})
}

// RunJanitor prunes idle buckets every interval until ctx is done.
func (s *Set) RunJanitor(ctx context.Context, interval, idle time.Duration) {
	if s == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Prune(idle)
		}
	}
}
