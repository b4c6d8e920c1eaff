// Package sourcecache keeps indexed sources in memory so repeated loads of
// the same content reuse one storage buffer and index table.
package sourcecache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	gocache "github.com/patrickmn/go-cache"
	"github.com/spf13/afero"

	"github.com/zjrosen/runestream/internal/charstream"
	"github.com/zjrosen/runestream/internal/log"
)

const (
	// DefaultExpiration is how long an unused source stays cached when the
	// configured TTL is not positive.
	DefaultExpiration = 10 * time.Minute

	// DefaultCleanupInterval is how often expired sources are evicted.
	DefaultCleanupInterval = 30 * time.Minute
)

// Stats counts cache lookups.
type Stats struct {
	Hits   int64
	Misses int64
}

// Cache is a read-through cache of charstream Sources keyed by content hash
// and encoding. Entries are immutable, so callers each get their own cursor
// over a shared Source.
type Cache struct {
	fs       afero.Fs
	encoding string
	ttl      time.Duration
	skip     bool
	cache    *gocache.Cache
	hits     atomic.Int64
	misses   atomic.Int64
}

// Config configures a Cache.
type Config struct {
	Encoding        string
	TTL             time.Duration
	CleanupInterval time.Duration
	// Disabled makes every Load build a fresh Source.
	Disabled bool
}

// New creates a cache reading files from fs.
func New(fs afero.Fs, cfg Config) *Cache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultExpiration
	}
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = DefaultCleanupInterval
	}
	return &Cache{
		fs:       fs,
		encoding: cfg.Encoding,
		ttl:      ttl,
		skip:     cfg.Disabled,
		cache:    gocache.New(ttl, cleanup),
	}
}

// Load reads path and returns a new stream over its contents, reusing a
// cached Source when the bytes are unchanged. The returned stream is named
// after path.
func (c *Cache) Load(ctx context.Context, path string) (*charstream.CharStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		log.ErrorErr(log.CatCache, "Read failed", err, "path", path)
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	key := c.key(data)
	if !c.skip {
		if value, found := c.cache.Get(key); found {
			if src, ok := value.(*charstream.Source); ok {
				c.hits.Add(1)
				log.Debug(log.CatCache, "cache hit", "key", key, "path", path)
				return src.WithName(path).NewStream(), nil
			}
			log.Error(log.CatCache, "wrong type assertion when getting value", "key", key)
		}
	}
	c.misses.Add(1)

	cs, err := charstream.FromBuffer(data, c.encoding, charstream.WithSourceName(path))
	if err != nil {
		return nil, err
	}
	if !c.skip {
		c.cache.Set(key, cs.Source(), c.ttl)
	}
	return cs, nil
}

// Invalidate drops every cached Source.
func (c *Cache) Invalidate() {
	c.cache.Flush()
}

// Len returns the number of cached Sources, including expired ones not yet
// cleaned up.
func (c *Cache) Len() int {
	return c.cache.ItemCount()
}

// Stats returns hit and miss counts since creation.
func (c *Cache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
}

func (c *Cache) key(data []byte) string {
	return fmt.Sprintf("%s:%016x", c.encoding, xxhash.Sum64(data))
}
