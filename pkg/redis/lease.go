package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLeaseHeld is returned when another holder owns the lease
var ErrLeaseHeld = errors.New("lease held by another instance")

// 소유자 토큰이 일치할 때만 삭제
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker hands out short-lived exclusive leases keyed by name.
type Locker struct {
	client redis.Cmdable
	prefix string
}

// NewLocker 생성자. client는 *redis.Client 또는 ClusterClient
func NewLocker(client redis.Cmdable, prefix string) *Locker {
	return &Locker{client: client, prefix: prefix}
}

// Lease is a held lock; call Release when done.
type Lease struct {
	locker *Locker
	key    string
	token  string
}

// Acquire takes the lease for name for at most ttl. It returns ErrLeaseHeld
// when someone else holds it.
func (l *Locker) Acquire(ctx context.Context, name string, ttl time.Duration) (*Lease, error) {
	key := l.prefix + name
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lease %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLeaseHeld
	}
	return &Lease{locker: l, key: key, token: token}, nil
}

// Release drops the lease if it is still ours
func (ls *Lease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, ls.locker.client, []string{ls.key}, ls.token).Err(); err != nil {
		return fmt.Errorf("release lease %s: %w", ls.key, err)
	}
	return nil
}

// TryLock is Acquire for callers that only need a release func.
// ok is false when the lease is held elsewhere.
func (l *Locker) TryLock(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, bool, error) {
	lease, err := l.Acquire(ctx, name, ttl)
	if errors.Is(err, ErrLeaseHeld) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return lease.Release, true, nil
}
