package runlock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aipulse/pkg/logger"

	"github.com/go-redis/redis/v8"
)

const (
	defaultLockKey = "ingest:run-lock"
	// Long enough to survive the slowest single day (21 paced queries plus
	// retries); runs extend the lock between dates.
	defaultTTL = 5 * time.Minute

	acquireTimeout = 5 * time.Second
)

// RunLock serializes ingestion runs across processes with a Redis lock.
// The holder extends the TTL between dates instead of running a renewal
// goroutine; a crashed holder simply lets the TTL expire.
type RunLock struct {
	client    *redis.Client
	lockKey   string
	lockValue string
	ttl       time.Duration

	mu     sync.Mutex
	isHeld bool
}

// New creates a run lock. A nil client disables locking (single-instance mode).
func New(client *redis.Client) *RunLock {
	return &RunLock{
		client:    client,
		lockKey:   defaultLockKey,
		lockValue: fmt.Sprintf("%s-%d", defaultLockKey, time.Now().UnixNano()),
		ttl:       defaultTTL,
	}
}

// TryLock attempts to acquire the lock without blocking on contention
func (l *RunLock) TryLock(ctx context.Context) (bool, error) {
	if l.client == nil {
		logger.Warn("redis client is nil, skipping run lock (running in single-instance mode)")
		l.setHeld(true)
		return true, nil
	}

	acquireCtx, cancel := context.WithTimeout(ctx, acquireTimeout)
	defer cancel()

	acquired, err := l.client.SetNX(acquireCtx, l.lockKey, l.lockValue, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !acquired {
		logger.DebugCtx(ctx, "run lock already held by another run")
		return false, nil
	}

	l.setHeld(true)
	logger.DebugCtx(ctx, "run lock acquired")
	return true, nil
}

// Extend pushes the TTL forward. Callers invoke this between dates so a
// multi-day backfill keeps the lock for its whole duration.
func (l *RunLock) Extend(ctx context.Context) error {
	if l.client == nil || !l.IsHeld() {
		return nil
	}

	// Only extend our own lock
	luaScript := `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("expire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`

	result, err := l.client.Eval(ctx, luaScript, []string{l.lockKey}, l.lockValue, int(l.ttl.Seconds())).Result()
	if err != nil {
		return fmt.Errorf("failed to extend run lock: %w", err)
	}
	if result.(int64) == 0 {
		l.setHeld(false)
		return fmt.Errorf("run lock lost while extending")
	}
	return nil
}

// Unlock releases the lock if this instance still owns it
func (l *RunLock) Unlock(ctx context.Context) error {
	if !l.IsHeld() {
		return nil
	}
	if l.client == nil {
		l.setHeld(false)
		return nil
	}

	// Only delete our own lock
	luaScript := `
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`

	result, err := l.client.Eval(ctx, luaScript, []string{l.lockKey}, l.lockValue).Result()
	if err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}

	l.setHeld(false)

	if result.(int64) != 1 {
		logger.WarnCtx(ctx, "run lock was already released or taken over")
	}
	return nil
}

// IsHeld checks whether this instance holds the lock
func (l *RunLock) IsHeld() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.isHeld
}

func (l *RunLock) setHeld(held bool) {
	l.mu.Lock()
	l.isHeld = held
	l.mu.Unlock()
}
