package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Locker serializes work on a key across processes using SetIfNotExists.
// Locks expire after their TTL, so a crashed holder never blocks forever.
// Each grant carries its own token and release only removes a lock that
// still holds that token.
type Locker struct {
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewLocker creates a Locker. A nil cache yields a Locker that always grants.
func NewLocker(c Cache, ttl time.Duration, logger zerolog.Logger) *Locker {
	if c == nil {
		c = Nop{}
	}
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	return &Locker{cache: c, ttl: ttl, logger: logger}
}

// TryLock attempts to take key. It reports false when another holder owns it.
// A cache error grants the lock: coordination is best effort.
func (l *Locker) TryLock(ctx context.Context, key string) (unlock func(), ok bool) {
	token := uuid.NewString()
	acquired, err := l.cache.SetIfNotExists(ctx, key, token, l.ttl)
	if err != nil {
		l.logger.Warn().Err(err).Str("key", key).Msg("lock unavailable, continuing without it")
		return func() {}, true
	}
	if !acquired {
		return func() {}, false
	}
	return func() {
		// a detached context so cancellation of the request still releases the lock
		released, err := l.cache.DeleteIfValue(context.WithoutCancel(ctx), key, token)
		if err != nil {
			l.logger.Warn().Err(err).Str("key", key).Msg("failed to release lock")
			return
		}
		if !released {
			l.logger.Warn().Str("key", key).Dur("ttl", l.ttl).Msg("lock expired before release")
		}
	}, true
}
