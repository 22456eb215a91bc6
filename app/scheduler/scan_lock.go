package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MonitorLock prevents two scheduler instances from scanning the same
// monitor at once.
type MonitorLock interface {
	Acquire(ctx context.Context, monitorID uint) (bool, error)
	Release(ctx context.Context, monitorID uint)
}

// redisMonitorLock implements MonitorLock with SET NX EX. The TTL bounds
// how long a crashed scan can block its monitor.
type redisMonitorLock struct {
	rc        *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewRedisMonitorLock(rc *redis.Client, keyPrefix string, ttl time.Duration) MonitorLock {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &redisMonitorLock{rc: rc, keyPrefix: keyPrefix, ttl: ttl}
}

func (l *redisMonitorLock) key(monitorID uint) string {
	return fmt.Sprintf("%sscanlock:%d", l.keyPrefix, monitorID)
}

func (l *redisMonitorLock) Acquire(ctx context.Context, monitorID uint) (bool, error) {
	return l.rc.SetNX(ctx, l.key(monitorID), "1", l.ttl).Result()
}

func (l *redisMonitorLock) Release(ctx context.Context, monitorID uint) {
	_ = l.rc.Del(ctx, l.key(monitorID)).Err()
}

// noopMonitorLock is used when Redis is disabled; single-instance
// deployments only need the in-process dedup the scheduler already does.
type noopMonitorLock struct{}

func NewNoopMonitorLock() MonitorLock { return noopMonitorLock{} }

func (noopMonitorLock) Acquire(ctx context.Context, monitorID uint) (bool, error) { return true, nil }
func (noopMonitorLock) Release(ctx context.Context, monitorID uint)               {}
