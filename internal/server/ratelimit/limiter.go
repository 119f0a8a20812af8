// Package ratelimit throttles handshake starts per username and per client
// IP with fixed-window redis counters.
package ratelimit

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/pakegate/internal/common"
	"github.com/dmitrijs2005/pakegate/internal/logging"
)

// Scopes keep registration and login budgets apart.
const (
	ScopeRegister = "register"
	ScopeLogin    = "login"
)

// Limiter is consulted by the flows before a handshake starts.
type Limiter interface {
	// Allow records an attempt and returns common.ErrRateLimited once the
	// budget for the username or the IP is spent.
	Allow(ctx context.Context, scope, username, ip string) error

	// Penalize charges an extra attempt to username, e.g. after a failed
	// login confirmation.
	Penalize(ctx context.Context, scope, username string)
}

type Config struct {
	MaxAttempts int
	Window      time.Duration
}

// RedisLimiter fails open: when redis is unreachable the attempt is
// allowed and a warning is logged.
type RedisLimiter struct {
	redis  redis.UniversalClient
	config Config
	log    logging.Logger
}

func NewRedisLimiter(client redis.UniversalClient, cfg Config, log logging.Logger) *RedisLimiter {
	return &RedisLimiter{redis: client, config: cfg, log: log.With("module", "ratelimit")}
}

func (l *RedisLimiter) Allow(ctx context.Context, scope, username, ip string) error {
	if l.config.MaxAttempts <= 0 {
		return nil
	}

	keys := []string{userKey(scope, username)}
	if ip != "" {
		keys = append(keys, ipKey(scope, ip))
	}

	for _, key := range keys {
		count, err := l.incrementWithTTL(ctx, key)
		if err != nil {
			l.log.Warn(ctx, "rate limiter unavailable, allowing", "scope", scope, "error", err)
			return nil
		}
		if count > int64(l.config.MaxAttempts) {
			return common.ErrRateLimited
		}
	}
	return nil
}

func (l *RedisLimiter) Penalize(ctx context.Context, scope, username string) {
	if l.config.MaxAttempts <= 0 {
		return
	}
	if _, err := l.incrementWithTTL(ctx, userKey(scope, username)); err != nil {
		l.log.Warn(ctx, "rate limiter unavailable, penalty dropped", "scope", scope, "error", err)
	}
}

// incrementWithTTL sets the expiry on the first hit only, which gives
// fixed-window semantics.
func (l *RedisLimiter) incrementWithTTL(ctx context.Context, key string) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return 0, err
		}
	}
	return count, nil
}

func userKey(scope, username string) string {
	return "pakegate:rl:" + scope + ":u:" + hex.EncodeToString([]byte(username))
}

func ipKey(scope, ip string) string {
	return "pakegate:rl:" + scope + ":ip:" + ip
}

// Nop never limits. Used when no redis address is configured.
type Nop struct{}

func (Nop) Allow(context.Context, string, string, string) error { return nil }
func (Nop) Penalize(context.Context, string, string)            {}
