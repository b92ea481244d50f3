// Package cachemem is an in-process TTL cache for verification records,
// keyed by document content hash.
package cachemem

import (
	"context"
	"sync"
	"time"

	"github.com/srusht-ship-it/Automated-Document-Verif/internal/domain"
	"github.com/srusht-ship-it/Automated-Document-Verif/internal/usecase"
)

type Cache struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	record    domain.VerificationRecord
	expiresAt time.Time
	hasExpiry bool
}

func New() *Cache {
	return &Cache{
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *Cache) Get(ctx context.Context, key string) (*domain.VerificationRecord, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if entry.hasExpiry && c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	record := entry.record
	return &record, true, nil
}

func (c *Cache) Put(ctx context.Context, key string, record domain.VerificationRecord, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := cacheEntry{record: record}
	if ttl > 0 {
		entry.hasExpiry = true
		entry.expiresAt = c.now().Add(ttl)
	}
	c.entries[key] = entry
	return nil
}

var _ usecase.ResultCache = (*Cache)(nil)
