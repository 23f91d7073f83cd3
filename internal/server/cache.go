package server

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/pumpfun-gateway/internal/token"
)

// TokenCache provides thread-safe TTL caching of token metadata.
// It serves the dashboard's metadata reads only: quote and trade paths
// always refetch reserves, a cached snapshot never authorizes a trade.
type TokenCache struct {
	entries map[string]cacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
	logger  *zap.Logger

	// Statistics (accessed atomically)
	hits   uint64
	misses uint64
}

type cacheEntry struct {
	info     *token.Info
	storedAt time.Time
}

// NewTokenCache creates a token metadata cache with the given TTL.
func NewTokenCache(ttl time.Duration, logger *zap.Logger) *TokenCache {
	return &TokenCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		logger:  logger.Named("token_cache"),
	}
}

// Get returns a cached token info if present and fresh.
func (c *TokenCache) Get(mint string) (*token.Info, bool) {
	c.mu.RLock()
	entry, exists := c.entries[mint]
	c.mu.RUnlock()

	if !exists || time.Since(entry.storedAt) > c.ttl {
		atomic.AddUint64(&c.misses, 1)
		return nil, false
	}
	atomic.AddUint64(&c.hits, 1)
	return entry.info, true
}

// Set stores token info in the cache.
func (c *TokenCache) Set(mint string, info *token.Info) {
	c.mu.Lock()
	c.entries[mint] = cacheEntry{info: info, storedAt: time.Now()}
	c.mu.Unlock()
}

// Purge removes all expired entries.
func (c *TokenCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for mint, entry := range c.entries {
		if time.Since(entry.storedAt) > c.ttl {
			delete(c.entries, mint)
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug("purged expired cache entries", zap.Int("removed", removed))
	}
	return removed
}

// Stats returns hit/miss counters.
func (c *TokenCache) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}
