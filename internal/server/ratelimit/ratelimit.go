// Package ratelimit provides rate limiting functionality using token bucket algorithm.
// Buckets are kept per client and endpoint class.
package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket represents a token bucket rate limiter.
// It allows a certain number of requests (tokens) per time window,
// with tokens refilling at a steady rate.
type TokenBucket struct {
	capacity   int
	refillRate float64 // tokens per second
	tokens     float64
	lastRefill time.Time
	mu         sync.Mutex
}

func newTokenBucket(capacity int, refillRate float64, now time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		refillRate: refillRate,
		tokens:     float64(capacity),
		lastRefill: now,
	}
}

// refill adds the tokens earned since the last refill; the caller holds the lock.
func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill)
	if elapsed > 0 {
		tb.tokens = min(float64(tb.capacity), tb.tokens+elapsed.Seconds()*tb.refillRate)
		tb.lastRefill = now
	}
}

// take consumes a token if one is available and reports the state after the attempt.
func (tb *TokenBucket) take(now time.Time) (allowed bool, remaining int, resetTime time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(now)
	if tb.tokens >= 1.0 {
		tb.tokens -= 1.0
		allowed = true
	}

	remaining = int(tb.tokens)
	resetTime = now
	if tb.tokens < float64(tb.capacity) && tb.refillRate > 0 {
		secondsUntilFull := (float64(tb.capacity) - tb.tokens) / tb.refillRate
		resetTime = now.Add(time.Duration(secondsUntilFull * float64(time.Second)))
	}
	return allowed, remaining, resetTime
}

// retryAfter returns how long until one token is available; the caller holds no lock.
func (tb *TokenBucket) retryAfter() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if tb.tokens >= 1.0 || tb.refillRate <= 0 {
		return 0
	}
	return time.Duration((1.0 - tb.tokens) / tb.refillRate * float64(time.Second))
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Class      string
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// Limiter manages rate limiting for multiple clients using token buckets.
type Limiter struct {
	mu         sync.Mutex
	buckets    map[string]*TokenBucket
	lastAccess map[string]time.Time
	config     *Config
	now        func() time.Time

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    600,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}

	limiter := &Limiter{
		buckets:    make(map[string]*TokenBucket),
		lastAccess: make(map[string]time.Time),
		config:     config,
		now:        time.Now,
	}

	if config.Enabled && config.CleanupInterval > 0 {
		limiter.cleanupTicker = time.NewTicker(config.CleanupInterval)
		limiter.cleanupStop = make(chan struct{})
		go limiter.cleanup()
	}

	return limiter
}

// SetClock replaces the time source. Intended for tests.
func (l *Limiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// Allow checks if a request from the given client is allowed for the specified endpoint.
func (l *Limiter) Allow(clientID string, endpoint string, method string) (bool, Info) {
	if !l.config.Enabled || l.config.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.config.Blacklist[clientID] {
		return false, Info{Allowed: false}
	}

	cfg := MatchEndpoint(endpoint, method, l.config.EndpointConfigs)
	if cfg == nil {
		cfg = &EndpointConfig{
			Class:  ClassDefault,
			Limit:  l.config.DefaultLimit,
			Window: l.config.DefaultWindow,
		}
	}
	if cfg.Limit <= 0 || cfg.Window <= 0 {
		return true, Info{Allowed: true, Class: cfg.Class}
	}

	bucket, now := l.bucket(clientID+":"+cfg.Class, cfg)
	allowed, remaining, resetTime := bucket.take(now)

	info := Info{
		Allowed:   allowed,
		Class:     cfg.Class,
		Limit:     cfg.Limit,
		Remaining: remaining,
		ResetTime: resetTime,
	}
	if !allowed {
		info.RetryAfter = bucket.retryAfter()
	}
	return allowed, info
}

// bucket gets or creates the bucket for key and records the access.
func (l *Limiter) bucket(key string, cfg *EndpointConfig) (*TokenBucket, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.lastAccess[key] = now
	if b, ok := l.buckets[key]; ok {
		return b, now
	}

	capacity := cfg.Burst
	if capacity <= 0 {
		capacity = cfg.Limit
	}
	b := newTokenBucket(capacity, float64(cfg.Limit)/cfg.Window.Seconds(), now)
	l.buckets[key] = b
	return b, now
}

func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanupBuckets(time.Hour)
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupBuckets removes buckets idle for longer than maxIdle.
func (l *Limiter) cleanupBuckets(maxIdle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-maxIdle)
	for key, last := range l.lastAccess {
		if last.Before(cutoff) {
			delete(l.buckets, key)
			delete(l.lastAccess, key)
		}
	}
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		if l.cleanupTicker != nil {
			l.cleanupTicker.Stop()
		}
		if l.cleanupStop != nil {
			close(l.cleanupStop)
		}
	})
}
