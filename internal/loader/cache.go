package loader

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/KaramelBytes/survivorlens/internal/manifest"
)

// Source loads a dataset. *Loader implements it.
type Source interface {
	Load(ctx context.Context, source string) (*manifest.Dataset, error)
}

// Cache memoizes loads by source identity. It is owned by whoever creates it;
// nothing is shared between caches. Failed loads are not cached.
type Cache struct {
	mu      sync.Mutex
	src     Source
	entries map[string]*manifest.Dataset
	logger  *slog.Logger
}

// NewCache wraps src with an empty cache.
func NewCache(src Source, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		src:     src,
		entries: make(map[string]*manifest.Dataset),
		logger:  logger.With(slog.String("component", "cache")),
	}
}

// Get returns the cached dataset for source, loading it on first use.
// Concurrent callers for the same source wait for a single load.
func (c *Cache) Get(ctx context.Context, source string) (*manifest.Dataset, error) {
	key := CacheKey(source)
	c.mu.Lock()
	defer c.mu.Unlock()
	if ds, ok := c.entries[key]; ok {
		c.logger.Debug("cache hit", slog.String("source", key), slog.String("load_id", ds.ID()))
		return ds, nil
	}
	c.logger.Debug("cache miss", slog.String("source", key))
	ds, err := c.src.Load(ctx, strings.TrimSpace(source))
	if err != nil {
		return nil, err
	}
	c.entries[key] = ds
	return ds, nil
}

// Invalidate drops the entry for source and reports whether one existed.
func (c *Cache) Invalidate(source string) bool {
	key := CacheKey(source)
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	return ok
}

// Reset drops every entry.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*manifest.Dataset)
}

// Len reports how many sources are cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CacheKey normalizes a source into its cache identity: URLs as given,
// local paths cleaned and made absolute.
func CacheKey(source string) string {
	s := strings.TrimSpace(source)
	if s == "" || isURL(s) {
		return s
	}
	if abs, err := filepath.Abs(s); err == nil {
		return abs
	}
	return filepath.Clean(s)
}
