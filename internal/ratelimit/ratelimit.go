// Package ratelimit provides a keyed token-bucket limiter for inbound
// requests. Each client key gets its own bucket; idle buckets are evicted.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// KeyedRateLimiter manages per-key rate limiting.
type KeyedRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// Option configures a KeyedRateLimiter.
type Option func(*KeyedRateLimiter)

// WithIdleTTL sets how long a key may go unused before its bucket is dropped.
func WithIdleTTL(d time.Duration) Option {
	return func(k *KeyedRateLimiter) { k.idleTTL = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(k *KeyedRateLimiter) { k.now = now }
}

// New creates a keyed limiter allowing rps requests per second per key with
// the given burst. A background sweep evicts idle keys until Stop is called.
func New(rps float64, burst int, opts ...Option) *KeyedRateLimiter {
	krl := &KeyedRateLimiter{
		entries: make(map[string]*entry),
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(krl)
	}

	go krl.sweepLoop()

	return krl
}

// PerMinute is New with the rate expressed in requests per minute.
func PerMinute(rpm, burst int, opts ...Option) *KeyedRateLimiter {
	return New(float64(rpm)/60, burst, opts...)
}

// Allow reports whether a request for key may proceed now. When it may not,
// retryAfter is how long until a token is available.
func (krl *KeyedRateLimiter) Allow(key string) (ok bool, retryAfter time.Duration) {
	now := krl.now()
	r := krl.limiter(key, now).ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return false, d
	}
	return true, 0
}

// Len returns the number of tracked keys.
func (krl *KeyedRateLimiter) Len() int {
	krl.mu.Lock()
	defer krl.mu.Unlock()
	return len(krl.entries)
}

func (krl *KeyedRateLimiter) limiter(key string, now time.Time) *rate.Limiter {
	krl.mu.Lock()
	defer krl.mu.Unlock()

	e, ok := krl.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(krl.limit, krl.burst)}
		krl.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// Sweep drops every key idle for longer than the TTL.
func (krl *KeyedRateLimiter) Sweep() {
	cutoff := krl.now().Add(-krl.idleTTL)

	krl.mu.Lock()
	defer krl.mu.Unlock()
	for key, e := range krl.entries {
		if e.lastSeen.Before(cutoff) {
			delete(krl.entries, key)
		}
	}
}

// Stop shuts down the sweep goroutine.
func (krl *KeyedRateLimiter) Stop() {
	krl.stopOnce.Do(func() {
		close(krl.done)
	})
}

func (krl *KeyedRateLimiter) sweepLoop() {
	ticker := time.NewTicker(krl.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			krl.Sweep()
		case <-krl.done:
			return
		}
	}
}
