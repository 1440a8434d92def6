package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const snapshotCacheKey = "pricegate:prices:snapshot"

// SnapshotCache stores the latest feed snapshot between refreshes.
type SnapshotCache interface {
	Get(ctx context.Context) (*Snapshot, error)
	Set(ctx context.Context, snap *Snapshot) error
}

var errCacheMiss = errors.New("snapshot cache miss")

type RedisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSnapshotCache(client *redis.Client, ttl time.Duration) *RedisSnapshotCache {
	return &RedisSnapshotCache{client: client, ttl: ttl}
}

var _ SnapshotCache = (*RedisSnapshotCache)(nil)

type cachedSnapshot struct {
	Snapshot
	FetchedAt time.Time `json:"fetched_at"`
}

func (c *RedisSnapshotCache) Get(ctx context.Context) (*Snapshot, error) {
	raw, err := c.client.Get(ctx, snapshotCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errCacheMiss
		}
		return nil, fmt.Errorf("redis error reading snapshot: %w", err)
	}

	var cached cachedSnapshot
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, fmt.Errorf("failed to decode cached snapshot: %w", err)
	}
	snap := cached.Snapshot
	snap.FetchedAt = cached.FetchedAt
	return &snap, nil
}

func (c *RedisSnapshotCache) Set(ctx context.Context, snap *Snapshot) error {
	raw, err := json.Marshal(cachedSnapshot{Snapshot: *snap, FetchedAt: snap.FetchedAt})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, snapshotCacheKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis error writing snapshot: %w", err)
	}
	return nil
}

// Feed serves the latest prices: a fresh cached snapshot when one exists,
// otherwise a direct bounded-retry fetch. The background refresher keeps
// the cache warm so the hot path rarely touches the upstream.
type Feed struct {
	client *Client
	cache  SnapshotCache
	maxAge time.Duration
	logger *zap.Logger
}

func NewFeed(client *Client, cache SnapshotCache, maxAge time.Duration, logger *zap.Logger) *Feed {
	return &Feed{
		client: client,
		cache:  cache,
		maxAge: maxAge,
		logger: logger.Named("PriceFeed"),
	}
}

func (f *Feed) Latest(ctx context.Context) (*Snapshot, error) {
	if f.cache != nil {
		snap, err := f.cache.Get(ctx)
		if err == nil && time.Since(snap.FetchedAt) <= f.maxAge {
			return snap, nil
		}
		if err != nil && !errors.Is(err, errCacheMiss) {
			f.logger.Warn("Snapshot cache read failed", zap.Error(err))
		}
	}

	snap, err := f.client.FetchPrices(ctx)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if cacheErr := f.cache.Set(ctx, snap); cacheErr != nil {
			f.logger.Warn("Snapshot cache write failed", zap.Error(cacheErr))
		}
	}
	return snap, nil
}

// Refresh is the worker entry point: fetch and cache unconditionally.
func (f *Feed) Refresh(ctx context.Context) error {
	snap, err := f.client.FetchPrices(ctx)
	if err != nil {
		return err
	}
	if f.cache == nil {
		return nil
	}
	if err := f.cache.Set(ctx, snap); err != nil {
		return err
	}
	f.logger.Debug("Price snapshot refreshed", zap.Int("items", len(snap.Data)), zap.String("status", snap.Status))
	return nil
}
