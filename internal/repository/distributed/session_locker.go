package distributed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ai-recommendation-be/pkg/rag/session"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "session_lock:"

// releaseScript deletes the lock only if we still own it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript extends the lease only if we still own it.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// SessionLocker serializes work on a session across replicas with a
// SET NX PX lease. The holder renews the lease every ttl/3 until it unlocks;
// the lease expires on its own if the holder dies.
type SessionLocker struct {
	client        *redis.Client
	ttl           time.Duration
	pollInterval  time.Duration
	renewInterval time.Duration
}

var _ session.Locker = (*SessionLocker)(nil)

func NewSessionLocker(client *redis.Client, ttl time.Duration) *SessionLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &SessionLocker{
		client:        client,
		ttl:           ttl,
		pollInterval:  25 * time.Millisecond,
		renewInterval: ttl / 3,
	}
}

// Lock blocks until the lease is acquired or ctx is done.
func (l *SessionLocker) Lock(ctx context.Context, sessionId string) (func(), error) {
	key := lockKeyPrefix + sessionId
	token := uuid.NewString()

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("redis setnx session lock: %w", err)
		}
		if ok {
			return l.hold(context.WithoutCancel(ctx), key, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s", session.ErrLockTimeout, sessionId)
		case <-ticker.C:
		}
	}
}

// hold keeps the lease alive and returns the unlock func. ctx must outlive the
// request since release has to run even after the caller gave up.
func (l *SessionLocker) hold(ctx context.Context, key, token string) func() {
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(l.renewInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				renewCtx, cancel := context.WithTimeout(ctx, l.renewInterval)
				owned, err := renewScript.Run(renewCtx, l.client, []string{key}, token, l.ttl.Milliseconds()).Int()
				cancel()
				if err == nil && owned == 0 {
					// lease lost; nothing left to renew
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done

			releaseCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
		})
	}
}
