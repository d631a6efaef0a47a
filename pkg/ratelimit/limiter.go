package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// defaultTTL is how long an idle key keeps its limiter before it is pruned.
const defaultTTL = 10 * time.Minute

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LimiterStore keeps one token bucket per key and drops buckets that have
// been idle longer than the TTL, so the map cannot grow without bound.
type LimiterStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	r       rate.Limit
	burst   int
	ttl     time.Duration
}

func NewLimiterStore(r rate.Limit, burst int) *LimiterStore {
	return &LimiterStore{
		entries: make(map[string]*entry),
		r:       r,
		burst:   burst,
		ttl:     defaultTTL,
	}
}

func (s *LimiterStore) GetLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.pruneLocked(now)

	if e, exists := s.entries[key]; exists {
		e.lastSeen = now
		return e.limiter
	}

	e := &entry{
		limiter:  rate.NewLimiter(s.r, s.burst),
		lastSeen: now,
	}
	s.entries[key] = e
	return e.limiter
}

// Len reports the number of live limiters, pruning idle ones first.
func (s *LimiterStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(time.Now())
	return len(s.entries)
}

func (s *LimiterStore) pruneLocked(now time.Time) {
	for key, e := range s.entries {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.entries, key)
		}
	}
}
