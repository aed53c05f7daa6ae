// Package runlock serializes pipeline runs per pull request. Without it, a
// marker label removed and re-added quickly starts overlapping runs against
// the same review thread.
package runlock

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const DefaultTTL = 2 * time.Hour

// ErrHeld is returned when another run currently owns the lock.
type ErrHeld struct {
	Key string
}

func (e *ErrHeld) Error() string {
	return "run lock already held: " + e.Key
}

// Locker acquires per-pull-request locks backed by redis SET NX with a TTL, so
// a crashed worker cannot wedge a pull request forever.
type Locker struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewLocker(client redis.UniversalClient, ttl time.Duration) *Locker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Locker{client: client, ttl: ttl}
}

func key(owner, repo string, number int) string {
	return fmt.Sprintf("benchbot:runlock:%s/%s#%d", owner, repo, number)
}

// Acquire takes the lock for the given pull request. The token identifies the
// owning run and must be passed back to Release.
func (l *Locker) Acquire(ctx context.Context, owner, repo string, number int, token string) error {
	k := key(owner, repo, number)

	ok, err := l.client.SetNX(ctx, k, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire run lock %s: %w", k, err)
	}

	if !ok {
		return &ErrHeld{Key: k}
	}

	return nil
}

// releaseScript deletes the lock only if the token still matches, so an
// expired lock re-acquired by a newer run is never released by the old one.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func (l *Locker) Release(ctx context.Context, owner, repo string, number int, token string) error {
	k := key(owner, repo, number)

	if err := releaseScript.Run(ctx, l.client, []string{k}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release run lock %s: %w", k, err)
	}

	return nil
}
