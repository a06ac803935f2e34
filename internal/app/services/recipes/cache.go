package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/pantrylab/recipehub/internal/app/metrics"
	"github.com/pantrylab/recipehub/pkg/logger"
)

const directoryCacheKey = "recipehub:ingredient-directory"

// CachedDirectory caches directory snapshots in Redis for a short TTL. Cache
// failures fall through to the wrapped directory so Redis never blocks
// recipe requests.
type CachedDirectory struct {
	next   Directory
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewCachedDirectory decorates next with a Redis snapshot cache.
func NewCachedDirectory(next Directory, client *redis.Client, ttl time.Duration, log *logger.Logger) *CachedDirectory {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if log == nil {
		log = logger.NewDefault("recipes-directory-cache")
	}
	return &CachedDirectory{
		next:   next,
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func (d *CachedDirectory) Lookup(ctx context.Context) (map[int64]DirectoryEntry, error) {
	payload, err := d.client.Get(ctx, directoryCacheKey).Result()
	if err == nil {
		var entries map[int64]DirectoryEntry
		if jsonErr := json.Unmarshal([]byte(payload), &entries); jsonErr == nil {
			metrics.RecordDirectoryLookup("cache", true)
			return entries, nil
		} else {
			d.log.WithError(jsonErr).Warn("discarding malformed directory cache entry")
		}
	} else if !errors.Is(err, redis.Nil) {
		d.log.WithError(err).Warn("directory cache read failed")
	}

	entries, err := d.next.Lookup(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(entries); err == nil {
		if err := d.client.Set(ctx, directoryCacheKey, data, d.ttl).Err(); err != nil {
			d.log.WithError(err).Warn("directory cache write failed")
		}
	}
	return entries, nil
}
