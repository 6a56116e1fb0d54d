package filestore

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/AtlasData/atlas-insight-go/utils"
)

// CachedStore fronts another store with a Redis read-through cache. Writes
// go to the inner store and drop the cached entry, so reads after an update
// or delete never see retired content. Cache failures fail open: a Redis
// outage degrades to direct fetches, never to errors.
type CachedStore struct {
	inner  WritableStore
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *utils.Logger
}

// NewCachedStore wraps a store with a Redis cache
func NewCachedStore(inner WritableStore, client *redis.Client, ttl time.Duration, logger *utils.Logger) *CachedStore {
	if logger == nil {
		logger = utils.GetLogger()
	}
	return &CachedStore{
		inner:  inner,
		client: client,
		ttl:    ttl,
		prefix: "filecache:",
		logger: logger,
	}
}

// Fetch returns the cached text when present, otherwise reads through and
// populates the cache
func (c *CachedStore) Fetch(ctx context.Context, ref string) (string, error) {
	key := c.prefix + ref

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		return cached, nil
	}
	if err != redis.Nil {
		c.logger.Warn("file cache read failed",
			utils.Component("filestore"),
			utils.String("ref", ref),
			utils.String("reason", err.Error()))
	}

	content, err := c.inner.Fetch(ctx, ref)
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, key, content, c.ttl).Err(); err != nil {
		c.logger.Warn("file cache write failed",
			utils.Component("filestore"),
			utils.String("ref", ref),
			utils.String("reason", err.Error()))
	}
	return content, nil
}

// Put writes through to the inner store and drops the cached entry
func (c *CachedStore) Put(ctx context.Context, ref string, content string) error {
	if err := c.inner.Put(ctx, ref, content); err != nil {
		return err
	}
	c.Invalidate(ctx, ref)
	return nil
}

// Delete removes the file from the inner store and drops the cached entry
func (c *CachedStore) Delete(ctx context.Context, ref string) error {
	if err := c.inner.Delete(ctx, ref); err != nil {
		return err
	}
	c.Invalidate(ctx, ref)
	return nil
}

// Invalidate drops a cached entry, e.g. after a re-upload
func (c *CachedStore) Invalidate(ctx context.Context, ref string) {
	if err := c.client.Del(ctx, c.prefix+ref).Err(); err != nil {
		c.logger.Warn("file cache invalidation failed",
			utils.Component("filestore"),
			utils.String("ref", ref),
			utils.String("reason", err.Error()))
	}
}
