package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Unlock releases a lock obtained from a Locker
type Unlock func(ctx context.Context) error

// Locker grants a named lock to at most one holder at a time
type Locker interface {
	// TryLock never blocks; ok is false when someone else holds key
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock Unlock, ok bool, err error)
}

// releaseScript deletes the key only while it still holds the caller's token,
// so an expired lock taken over by another runner is left alone
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock is a single-instance Redis lock shared by every replica
type RedisLock struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisLock creates a RedisLock storing keys under prefix
func NewRedisLock(client redis.UniversalClient, prefix string) *RedisLock {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "loan-ledger:lock"
	}
	return &RedisLock{client: client, prefix: prefix}
}

// TryLock implements Locker with SET NX PX and a random token
func (l *RedisLock) TryLock(ctx context.Context, key string, ttl time.Duration) (Unlock, bool, error) {
	fullKey := l.prefix + ":" + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire redis lock %s: %w", fullKey, err)
	}
	if !ok {
		return nil, false, nil
	}

	unlock := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil {
			return fmt.Errorf("failed to release redis lock %s: %w", fullKey, err)
		}
		return nil
	}
	return unlock, true, nil
}

// LocalLock is a process-local Locker used when no Redis is configured
type LocalLock struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

// NewLocalLock creates a LocalLock
func NewLocalLock() *LocalLock {
	return &LocalLock{held: make(map[string]time.Time), now: time.Now}
}

// TryLock implements Locker; a lock past its ttl may be taken again
func (l *LocalLock) TryLock(_ context.Context, key string, ttl time.Duration) (Unlock, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expiresAt, ok := l.held[key]; ok && now.Before(expiresAt) {
		return nil, false, nil
	}
	expiresAt := now.Add(ttl)
	l.held[key] = expiresAt

	unlock := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[key].Equal(expiresAt) {
			delete(l.held, key)
		}
		return nil
	}
	return unlock, true, nil
}
