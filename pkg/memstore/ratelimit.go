package memstore

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// bucket is a token bucket shared by every client of the store.
type bucket struct {
	mu         sync.Mutex
	tokens     float64
	capacity   float64
	rate       float64 // tokens per second
	lastUpdate time.Time
	now        func() time.Time
}

// newBucket returns a full bucket. A burst of zero or less means one
// second's worth of tokens, and never less than one.
func newBucket(rate float64, burst int) *bucket {
	capacity := float64(burst)
	if capacity <= 0 {
		capacity = math.Max(1, math.Ceil(rate))
	}
	return &bucket{tokens: capacity, capacity: capacity, rate: rate, lastUpdate: time.Now(), now: time.Now}
}

// take consumes a token if one is available. When none is, it returns the
// time until the next one.
func (b *bucket) take() (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.tokens = math.Min(b.capacity, b.tokens+now.Sub(b.lastUpdate).Seconds()*b.rate)
	b.lastUpdate = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	return false, time.Duration((1 - b.tokens) / b.rate * float64(time.Second))
}

// limitRequests answers 429 once the bucket is empty. Health and metrics
// are never limited.
func (s *Store) limitRequests(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		ok, wait := s.limiter.take()
		if !ok {
			retry := int64(math.Ceil(wait.Seconds()))
			w.Header().Set("Retry-After", strconv.FormatInt(retry, 10))
			writeProblem(w, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests. Please slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
