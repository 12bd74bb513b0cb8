package repository

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/dskvich/trigger-telegram-bot/pkg/domain"
)

type TriggerStore interface {
	Get(ctx context.Context, key string) (*domain.TriggerConfig, error)
	Upsert(ctx context.Context, trigger domain.TriggerConfig) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]domain.TriggerConfig, error)
}

type cacheEntry struct {
	trigger   domain.TriggerConfig
	expiresAt time.Time
}

// cachedTriggerRepository is a read-through LRU in front of a TriggerStore.
// Only hits are cached; writes go to the store first and then drop the cached key.
type cachedTriggerRepository struct {
	store TriggerStore
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewCachedTriggerRepository(store TriggerStore, size int, ttl time.Duration) (*cachedTriggerRepository, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("creating trigger cache: %w", err)
	}

	return &cachedTriggerRepository{
		store: store,
		cache: cache,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

func (c *cachedTriggerRepository) Get(ctx context.Context, key string) (*domain.TriggerConfig, error) {
	if v, ok := c.cache.Get(key); ok {
		entry := v.(cacheEntry)
		if c.ttl <= 0 || c.now().Before(entry.expiresAt) {
			trigger := entry.trigger
			return &trigger, nil
		}
		c.cache.Remove(key)
	}

	trigger, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, cacheEntry{trigger: *trigger, expiresAt: c.now().Add(c.ttl)})
	return trigger, nil
}

func (c *cachedTriggerRepository) Upsert(ctx context.Context, trigger domain.TriggerConfig) error {
	if err := c.store.Upsert(ctx, trigger); err != nil {
		return err
	}
	c.cache.Remove(trigger.Key)
	return nil
}

func (c *cachedTriggerRepository) Delete(ctx context.Context, key string) error {
	if err := c.store.Delete(ctx, key); err != nil {
		return err
	}
	c.cache.Remove(key)
	return nil
}

func (c *cachedTriggerRepository) List(ctx context.Context) ([]domain.TriggerConfig, error) {
	return c.store.List(ctx)
}
