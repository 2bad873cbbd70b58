package catalog

import (
	"context"
	"strconv"
	"time"

	"github.com/coocood/freecache"
	json "github.com/goccy/go-json"

	"github.com/robalobadob/spordle/internal/song"
)

// CacheMetrics receives hit/miss counts from Cached.
type CacheMetrics interface {
	IncCacheHits()
	IncCacheMisses()
}

// Cached is a read-through cache in front of another Catalog. Only Get is
// cached; writes through Update and Delete drop the cached entry.
type Cached struct {
	Catalog
	cache   *freecache.Cache
	ttl     int
	metrics CacheMetrics
}

// NewCached wraps inner with a freecache of sizeMB megabytes (minimum 1)
// holding entries for ttl.
func NewCached(inner Catalog, sizeMB int, ttl time.Duration, metrics CacheMetrics) *Cached {
	if sizeMB < 1 {
		sizeMB = 1
	}
	return &Cached{
		Catalog: inner,
		cache:   freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:     max(int(ttl.Seconds()), 1),
		metrics: metrics,
	}
}

func cacheKey(id int64) []byte {
	return []byte("song:" + strconv.FormatInt(id, 10))
}

func (c *Cached) Get(ctx context.Context, id int64) (song.Song, error) {
	if b, err := c.cache.Get(cacheKey(id)); err == nil {
		var s song.Song
		if err := json.Unmarshal(b, &s); err == nil {
			c.metrics.IncCacheHits()
			return s, nil
		}
	}
	c.metrics.IncCacheMisses()

	s, err := c.Catalog.Get(ctx, id)
	if err != nil {
		return song.Song{}, err
	}
	if b, err := json.Marshal(s); err == nil {
		_ = c.cache.Set(cacheKey(id), b, c.ttl)
	}
	return s, nil
}

func (c *Cached) Update(ctx context.Context, s song.Song) (song.Song, error) {
	c.cache.Del(cacheKey(s.ID))
	out, err := c.Catalog.Update(ctx, s)
	c.cache.Del(cacheKey(s.ID))
	return out, err
}

func (c *Cached) Delete(ctx context.Context, id int64) error {
	err := c.Catalog.Delete(ctx, id)
	c.cache.Del(cacheKey(id))
	return err
}

// Len reports the number of cached entries.
func (c *Cached) Len() int64 { return c.cache.EntryCount() }
