// Package cache provides the optional TTL read-through cache for computed
// analytics results. The cache is advisory: a miss is always resolvable by
// recomputation, and entries expire purely by TTL, never by events.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Store holds serialized analytics results keyed by
// (userID, analysisKind, paramSpec).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Key builds the canonical cache key.
func Key(userID int64, kind, paramSpec string) string {
	return fmt.Sprintf("analytics:%d:%s:%s", userID, kind, paramSpec)
}
