package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache is the LOW_CACHE read cache for catalog lookups. Entries expire
// by TTL only; admin writes do not invalidate them (accepted staleness).
// A nil *Cache is valid and misses on every lookup.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(addr, password string, db int, ttl time.Duration) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Cache{rdb: rdb, ttl: ttl}, nil
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

// Get returns the cached bytes for key, with ok=false on miss or error.
// Errors are swallowed: a broken cache degrades to direct reads.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (c *Cache) Put(ctx context.Context, key string, val []byte) {
	if c == nil {
		return
	}
	_ = c.rdb.Set(ctx, key, val, c.ttl).Err()
}

// Deterministic keys shared by all catalog read paths.

func KeyLinksMenu() string         { return "links_menu" }
func KeyCategory(id string) string { return "category:" + id }
func KeyProduct(id string) string  { return "product:" + id }
func KeyProductsByPrice() string   { return "products_by_price" }
func KeyCategoryProducts(id string) string {
	return "products_in_category_by_price:" + id
}
