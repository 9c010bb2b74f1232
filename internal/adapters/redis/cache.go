// Package redisad caches menu read models (business, categories, items,
// translations) as JSON blobs keyed per slug.
package redisad

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nullsam/qr-menu/internal/adapters/observability"
)

type Cache struct{ c *redis.Client }

func New(addr, pass string, db int) *Cache {
	return &Cache{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("redis", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	observability.ObserveCache("redis", "hit")
	return true, json.Unmarshal(v, dst)
}

func (r *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, _ := json.Marshal(v)
	observability.ObserveCache("redis", "set")
	return r.c.Set(ctx, key, b, time.Duration(ttlSec)*time.Second).Err()
}

func (r *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("redis", "del")
	return r.c.Del(ctx, key).Err()
}

// Key builders keep the cache namespace in one place.

func BusinessKey(slug string) string           { return fmt.Sprintf("business:%s", slug) }
func CategoriesKey(slug string) string         { return fmt.Sprintf("categories:%s", slug) }
func ItemsKey(slug string) string              { return fmt.Sprintf("items:%s", slug) }
func TranslationsKey(slug, lang string) string { return fmt.Sprintf("i18n:%s:%s", slug, lang) }
