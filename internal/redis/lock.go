package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/appointment-booking/internal/session"
)

const (
	defaultLockWait  = 2 * time.Second
	lockRetryInitial = 20 * time.Millisecond
	lockRetryMax     = 200 * time.Millisecond
)

type redisSessionLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	prefix string
}

// NewRedisSessionLocker creates a locker that uses a per session Redis key, so
// several api-server replicas behind a sticky balancer never interleave calls
// against one session. A held lock is retried for up to wait before the call
// fails with session.ErrSessionBusy; wait <= 0 uses a 2s default.
func NewRedisSessionLocker(client *redis.Client, ttl, wait time.Duration) session.Locker {
	if wait <= 0 {
		wait = defaultLockWait
	}
	return &redisSessionLocker{
		client: client,
		ttl:    ttl,
		wait:   wait,
		prefix: "lock:session:",
	}
}

func (l *redisSessionLocker) WithSessionLock(ctx context.Context, sessionID uuid.UUID, fn func(ctx context.Context) error) error {
	key := l.prefix + sessionID.String()
	token := uuid.NewString()

	err := acquire(ctx, l.wait, func(ctx context.Context) (bool, error) {
		return l.client.SetNX(ctx, key, token, l.ttl).Result()
	})
	if err != nil {
		return err
	}

	defer func() {
		_ = l.release(context.WithoutCancel(ctx), key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

// acquire calls try until it reports the lock as taken, backing off between
// attempts. It gives up with session.ErrSessionBusy once wait has elapsed.
func acquire(ctx context.Context, wait time.Duration, try func(ctx context.Context) (bool, error)) error {
	deadline := time.Now().Add(wait)
	backoff := lockRetryInitial

	for {
		ok, err := try(ctx)
		if err != nil {
			return fmt.Errorf("acquire session lock: %w", err)
		}
		if ok {
			return nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return session.ErrSessionBusy
		}

		timer := time.NewTimer(min(backoff, remaining))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		backoff = min(backoff*2, lockRetryMax)
	}
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisSessionLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release session lock: %w", err)
	}
	return nil
}
