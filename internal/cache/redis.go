package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Options configure the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Redis is a Cache backed by a Redis server. When the server cannot be reached
// at startup it bypasses every call.
type Redis struct {
	client *redis.Client
	logger zerolog.Logger
	ttl    time.Duration

	warnedUnavailable atomic.Bool
}

var _ Cache = (*Redis)(nil)

// deleteIfValueScript removes KEYS[1] only while it holds ARGV[1].
var deleteIfValueScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedis connects to Redis and pings it with a short timeout.
func NewRedis(ctx context.Context, opts Options, logger zerolog.Logger) *Redis {
	logger = logger.With().Str("component", "cache").Logger()
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", opts.Addr).Msg("redis unavailable, bypassing cache")
		_ = client.Close()
		return &Redis{logger: logger, ttl: opts.TTL}
	}

	logger.Info().Str("addr", opts.Addr).Msg("redis cache connected")
	return &Redis{client: client, logger: logger, ttl: opts.TTL}
}

// Available reports whether calls reach a live server.
func (r *Redis) Available() bool {
	return !r.isUnavailable()
}

func (r *Redis) isUnavailable() bool {
	return r == nil || r.client == nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.Warn().Err(err).Msg("redis call failed, results will not be cached")
	}
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	if r.isUnavailable() {
		return errors.New("redis unavailable")
	}
	return r.client.Ping(ctx).Err()
}

func (r *Redis) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if r.isUnavailable() {
		return false, nil
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		r.warnUnavailableOnce(err)
		return false, err
	}
	if len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.isUnavailable() {
		return nil
	}
	if ttl <= 0 {
		ttl = r.ttl
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, b, ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if r.isUnavailable() {
		return nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return err
	}
	return nil
}

func (r *Redis) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.isUnavailable() {
		return nil
	}
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}

	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if err := r.client.Del(ctx, k).Err(); err != nil {
			r.logger.Warn().Err(err).Str("key", k).Str("pattern", pattern).Msg("redis delete failed")
		}
	}
	return iter.Err()
}

func (r *Redis) SetIfNotExists(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if r.isUnavailable() {
		return true, nil
	}
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		r.warnUnavailableOnce(err)
		return false, err
	}
	return ok, nil
}

func (r *Redis) DeleteIfValue(ctx context.Context, key, value string) (bool, error) {
	if r.isUnavailable() {
		return true, nil
	}
	n, err := deleteIfValueScript.Run(ctx, r.client, []string{key}, value).Int()
	if err != nil {
		r.warnUnavailableOnce(err)
		return false, err
	}
	return n == 1, nil
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	if r.isUnavailable() {
		return nil
	}
	return r.client.Close()
}
