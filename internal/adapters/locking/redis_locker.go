package locking

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/finrecon/payment_recon_app/internal/core/ports/gateways"
)

// RedisRunLocker holds the single-active-run lease in Redis so the invariant
// holds across multiple engine instances. The lease expires after ttl even if
// the holder dies mid-run.
type RedisRunLocker struct {
	locker *redislock.Client
	key    string
	ttl    time.Duration
}

var _ gateways.RunLocker = (*RedisRunLocker)(nil)

// NewRedisRunLocker creates a distributed run locker. The ttl should exceed
// the longest expected run duration.
func NewRedisRunLocker(client *redis.Client, key string, ttl time.Duration) *RedisRunLocker {
	return &RedisRunLocker{
		locker: redislock.New(client),
		key:    key,
		ttl:    ttl,
	}
}

// TryAcquire obtains the lease or reports it held. It never waits.
func (l *RedisRunLocker) TryAcquire(ctx context.Context) (func(), bool, error) {
	lock, err := l.locker.Obtain(ctx, l.key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	release := func() {
		// Release outlives the run context so the lease is freed even when
		// the run was aborted by a deadline.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = lock.Release(releaseCtx)
	}
	return release, true, nil
}
