package main

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// listCache keeps the public list responses. Every write to a collection
// drops that collection's entry; a nil listCache caches nothing.
type listCache struct {
	c *cache.Cache

	// gen counts invalidations per key. A fetch that started before an
	// invalidation must not store its result.
	mu  sync.Mutex
	gen map[string]uint64
}

func newListCache(ttl time.Duration) *listCache {
	if ttl <= 0 {
		return nil
	}
	return &listCache{c: cache.New(ttl, 2*ttl), gen: map[string]uint64{}}
}

func cachedList[T any](lc *listCache, key string, fetch func() ([]T, error)) ([]T, error) {
	var gen uint64
	if lc != nil {
		if data, found := lc.c.Get(key); found {
			if items, ok := data.([]T); ok {
				return items, nil
			}
		}
		gen = lc.generation(key)
	}

	items, err := fetch()
	if err != nil {
		return nil, err
	}

	if lc != nil {
		lc.store(key, gen, items)
	}
	return items, nil
}

func (lc *listCache) generation(key string) uint64 {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.gen[key]
}

func (lc *listCache) store(key string, gen uint64, items any) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if lc.gen[key] == gen {
		lc.c.Set(key, items, cache.DefaultExpiration)
	}
}

func (lc *listCache) invalidate(key string) {
	if lc == nil {
		return
	}
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.gen[key]++
	lc.c.Delete(key)
}
