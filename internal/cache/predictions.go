// Package cache implements the read-through prediction cache that fronts
// the synchronous scoring path. Entries are derived data: their absence
// only forces recomputation, so every operation here is best-effort and
// cache backend failures are never surfaced to callers.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// PredictionTTL is how long a cached verdict stays valid.
const PredictionTTL = 3600 * time.Second

// Entry is a cached verdict for one advertisement.
type Entry struct {
	IsViolation bool    `json:"is_violation"`
	Probability float64 `json:"probability"`
}

// PredictionCache stores scoring verdicts in Redis keyed by advertisement id.
type PredictionCache struct {
	client *redis.Client
	logger *slog.Logger
}

// NewPredictionCache creates a cache over the given Redis client.
// If logger is nil, a default logger will be used.
func NewPredictionCache(client *redis.Client, logger *slog.Logger) *PredictionCache {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PredictionCache{
		client: client,
		logger: logger.With(slog.String("component", "prediction_cache")),
	}
}

// Key returns the cache key for an advertisement.
func Key(itemID int64) string {
	return fmt.Sprintf("prediction:%d", itemID)
}

// Get returns the cached verdict for the advertisement, or nil on a miss.
// Transport failures and corrupt entries are treated as misses and logged;
// the caller degrades to recomputation either way.
func (c *PredictionCache) Get(ctx context.Context, itemID int64) *Entry {
	data, err := c.client.Get(ctx, Key(itemID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache read failed, falling back to recompute",
				"item_id", itemID,
				"error", err)
		}
		return nil
	}

	var entry Entry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		c.logger.Warn("corrupt cache entry, falling back to recompute",
			"item_id", itemID,
			"error", err)
		return nil
	}

	return &entry
}

// Set stores the verdict with the standard TTL. Fire-and-forget: a failed
// write is logged and otherwise ignored.
func (c *PredictionCache) Set(ctx context.Context, itemID int64, isViolation bool, probability float64) {
	data, err := json.Marshal(Entry{IsViolation: isViolation, Probability: probability})
	if err != nil {
		c.logger.Warn("failed to encode cache entry",
			"item_id", itemID,
			"error", err)
		return
	}

	if err := c.client.Set(ctx, Key(itemID), data, PredictionTTL).Err(); err != nil {
		c.logger.Warn("cache write failed",
			"item_id", itemID,
			"error", err)
	}
}

// Invalidate removes the cached verdict. Called exactly once per
// advertisement, on closure, so a verdict is never served for an
// advertisement that no longer exists. Best-effort like Set.
func (c *PredictionCache) Invalidate(ctx context.Context, itemID int64) {
	if err := c.client.Del(ctx, Key(itemID)).Err(); err != nil {
		c.logger.Warn("cache invalidation failed",
			"item_id", itemID,
			"error", err)
	}
}
