// Package sendlock provides best-effort mutual exclusion around the
// cooldown-check-then-insert window of letter submission.
//
// Two concurrent submissions from the same sender to the same recipient can
// both read "no recent letter" before either inserts. The store offers no
// cross-document transaction, so a short-lived lock keyed on the
// (sender, recipient) pair narrows that race. The lock is advisory: if no
// backend is available the caller proceeds unlocked, and the race remains a
// documented best-effort gap.
package sendlock

import (
	"context"
	"database/sql"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lock is a single-use lock instance. Instances must not be shared across
// goroutines; concurrent submissions each create their own.
type Lock interface {
	// Acquire tries to acquire the lock. Returns true if successful.
	Acquire(ctx context.Context) (bool, error)
	// Release releases the lock if we still own it.
	Release(ctx context.Context) error
}

// Factory creates a Lock for a given key. A nil Factory disables locking.
type Factory func(key string) Lock

// NewFactory builds a lock factory using the best available backend.
// If redisClient is non-nil, uses Redis (preferred for cross-host locking).
// Otherwise, if db is non-nil, falls back to PostgreSQL advisory locks.
// With neither, returns nil and submission proceeds unlocked.
func NewFactory(redisClient *redis.Client, db *sql.DB, ttl time.Duration) Factory {
	switch {
	case redisClient != nil:
		return func(key string) Lock { return NewRedisLock(redisClient, key, ttl) }
	case db != nil:
		return func(key string) Lock { return NewPGAdvisoryLock(db, key) }
	default:
		return nil
	}
}

// PGAdvisoryLock implements Lock using PostgreSQL advisory locks. Uses
// pg_try_advisory_lock / pg_advisory_unlock, which are session-scoped: the
// lock is released automatically if the connection drops, giving crash
// safety similar to a Redis TTL.
type PGAdvisoryLock struct {
	db     *sql.DB
	lockID int64
}

// NewPGAdvisoryLock creates a PG advisory lock with a deterministic lock ID
// derived from the given key string.
func NewPGAdvisoryLock(db *sql.DB, key string) *PGAdvisoryLock {
	h := fnv.New64a()
	h.Write([]byte(key))
	return &PGAdvisoryLock{
		db:     db,
		lockID: int64(h.Sum64()),
	}
}

// Acquire tries to acquire the advisory lock. Returns true if successful.
// Uses pg_try_advisory_lock which returns immediately (non-blocking).
func (l *PGAdvisoryLock) Acquire(ctx context.Context) (bool, error) {
	var acquired bool
	err := l.db.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", l.lockID).Scan(&acquired)
	if err != nil {
		return false, err
	}
	return acquired, nil
}

// Release releases the advisory lock.
func (l *PGAdvisoryLock) Release(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", l.lockID)
	return err
}
