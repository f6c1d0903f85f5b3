// Package analytics derives learning signals from the append-only review
// log: velocity, struggle, interference, prerequisite gaps, fatigue,
// circadian effects, comparative difficulty and session health. Every
// operation is a pure read: the engine holds no state between calls beyond
// an optional TTL result cache, and identical input windows always produce
// identical output.
package analytics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/example/flashlytics/internal/cache"
	"github.com/example/flashlytics/internal/config"
	"github.com/example/flashlytics/internal/logger"
)

// Deps wires an Engine. Reviews, Sessions and Cards are required; Cache, Log
// and Now default to a no-op cache, a no-op logger and the wall clock.
type Deps struct {
	Reviews    ReviewStore
	Sessions   SessionStore
	Cards      CardStore
	Thresholds config.Thresholds
	Cache      cache.Store
	Log        *logger.Logger
	Now        func() time.Time
}

// Engine computes analytics on demand. Safe for arbitrary concurrent use:
// operations share nothing but the read-only stores and the cache.
type Engine struct {
	reviews  ReviewStore
	sessions SessionStore
	cards    CardStore
	cfg      config.Thresholds
	cache    cache.Store
	log      *logger.Logger
	now      func() time.Time
}

// New creates an engine from its dependencies.
func New(deps Deps) *Engine {
	e := &Engine{
		reviews:  deps.Reviews,
		sessions: deps.Sessions,
		cards:    deps.Cards,
		cfg:      deps.Thresholds,
		cache:    deps.Cache,
		log:      deps.Log,
		now:      deps.Now,
	}
	if e.log == nil {
		e.log = logger.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// clampInt coerces a bounded numeric parameter: non-positive input falls back
// to the default, input above max is pulled down to max. Lenient by contract;
// out-of-range input is never a validation error.
func clampInt(v, def, max int) int {
	if v <= 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

// clampThreshold coerces a [0,1] parameter the same way.
func clampThreshold(v, def float64) float64 {
	if v < 0 {
		return def
	}
	if v > 1 {
		return 1
	}
	return v
}

// cached runs compute through the TTL read-through cache when one is
// configured. Cache failures only ever cost a recomputation.
func cached[T any](ctx context.Context, e *Engine, userID int64, kind, paramSpec string, compute func() (T, error)) (T, error) {
	if e.cache == nil {
		return compute()
	}

	key := cache.Key(userID, kind, paramSpec)
	if raw, ok := e.cache.Get(ctx, key); ok {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return v, nil
		}
		e.log.Warn("discarding undecodable cache entry", "key", key)
	}

	v, err := compute()
	if err != nil {
		return v, err
	}
	if raw, err := json.Marshal(v); err == nil {
		e.cache.Set(ctx, key, raw, e.cfg.CacheTTL())
	}
	return v, nil
}
