package session

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheStore keeps sessions in process memory.
type CacheStore struct {
	cache *cache.Cache
}

var _ Store = (*CacheStore)(nil)

func NewCacheStore(defaultTTL time.Duration) *CacheStore {
	return &CacheStore{cache: cache.New(defaultTTL, 10*time.Minute)}
}

func (c *CacheStore) Save(_ context.Context, key string, s *Session, ttl time.Duration) error {
	cp := *s
	c.cache.Set(key, &cp, ttl)
	return nil
}

func (c *CacheStore) Get(_ context.Context, key string) (*Session, error) {
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v.(*Session)
	return &cp, nil
}

func (c *CacheStore) Delete(_ context.Context, key string) error {
	c.cache.Delete(key)
	return nil
}
