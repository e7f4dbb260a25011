// Package distlock provides single-flight locks shared across server
// instances. The importer uses them so two concurrent imports of the same
// template name for one organization cannot race each other.
package distlock

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DistLock is the interface for distributed locking.
// Implementations must be safe for use from a single goroutine;
// concurrent use across goroutines requires separate lock instances.
type DistLock interface {
	// Acquire tries to acquire the lock. Returns true if successful.
	Acquire(ctx context.Context) (bool, error)
	// Release releases the lock if we still own it.
	Release(ctx context.Context) error
}

// Factory builds a fresh lock for a key. A nil Factory means locking is off.
type Factory func(key string) DistLock

// NewFactory returns a Redis-backed Factory, or nil without a client.
// Without Redis, callers serialize writes with LockTx instead: a lock held
// across the whole import would pin a pooled connection for the duration of
// the remote call.
func NewFactory(redisClient *redis.Client, ttl time.Duration) Factory {
	if redisClient == nil {
		return nil
	}
	return func(key string) DistLock { return NewRedisLock(redisClient, key, ttl) }
}

// ImportKey is the lock key guarding imports of one template name.
func ImportKey(orgID, name string) string {
	return fmt.Sprintf("template-import:%s:%s", orgID, name)
}

// =============================================================================
// PostgreSQL Advisory Lock (transaction scoped)
// =============================================================================

// KeyID maps a lock key onto the int64 id PostgreSQL advisory locks take.
func KeyID(key string) int64 {
	h := fnv.New64a()
	h.Write([]byte(key))
	return int64(h.Sum64())
}

// LockTx takes a transaction-scoped advisory lock on key, blocking until
// it is free. PostgreSQL releases it at commit or rollback, so the lock
// never outlives the transaction's connection.
func LockTx(ctx context.Context, tx *sql.Tx, key string) error {
	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", KeyID(key)); err != nil {
		return fmt.Errorf("advisory lock %s: %w", key, err)
	}
	return nil
}
