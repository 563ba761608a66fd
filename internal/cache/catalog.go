// Package cache keeps category aggregates in redis in front of the catalog
// service.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"example.com/storefront/internal/logx"
	"example.com/storefront/internal/service"
)

type Config struct {
	URL          string        `split_words:"true"`
	ReadTimeout  int           `split_words:"true" default:"3"`
	WriteTimeout int           `split_words:"true" default:"3"`
	DialTimeout  int           `split_words:"true" default:"5"`
	TTL          time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"30s"`
}

// Enabled reports whether a redis URL was configured.
func (c *Config) Enabled() bool { return c.URL != "" }

func (c *Config) New() (*redis.Client, error) {
	opts, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, err
	}

	opts.ReadTimeout = time.Duration(c.ReadTimeout) * time.Second
	opts.WriteTimeout = time.Duration(c.WriteTimeout) * time.Second
	opts.DialTimeout = time.Duration(c.DialTimeout) * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

const keyPrefix = "catalog:"

// CatalogCache wraps a CatalogService. Category reads are served from redis
// when present; any catalog write that can move category aggregates drops
// every cached entry. Redis failures fall through to the wrapped service.
type CatalogCache struct {
	service.CatalogService
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewCatalogCache(next service.CatalogService, rdb redis.UniversalClient, ttl time.Duration) *CatalogCache {
	return &CatalogCache{CatalogService: next, rdb: rdb, ttl: ttl}
}

func (c *CatalogCache) ListCategories(ctx context.Context, ordering string) ([]service.CategoryView, error) {
	key := keyPrefix + "categories:" + ordering
	var views []service.CategoryView
	if c.get(ctx, key, &views) {
		return views, nil
	}
	views, err := c.CatalogService.ListCategories(ctx, ordering)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, views)
	return views, nil
}

func (c *CatalogCache) GetCategory(ctx context.Context, id uint) (service.CategoryView, error) {
	key := keyPrefix + "category:" + strconv.FormatUint(uint64(id), 10)
	var view service.CategoryView
	if c.get(ctx, key, &view) {
		return view, nil
	}
	view, err := c.CatalogService.GetCategory(ctx, id)
	if err != nil {
		return service.CategoryView{}, err
	}
	c.set(ctx, key, view)
	return view, nil
}

func (c *CatalogCache) CreateCategory(ctx context.Context, in service.CategoryInput) (service.CategoryView, error) {
	v, err := c.CatalogService.CreateCategory(ctx, in)
	if err == nil {
		c.invalidate(ctx)
	}
	return v, err
}

func (c *CatalogCache) CreateProduct(ctx context.Context, in service.ProductInput) (service.ProductView, error) {
	v, err := c.CatalogService.CreateProduct(ctx, in)
	if err == nil {
		c.invalidate(ctx)
	}
	return v, err
}

func (c *CatalogCache) UpdateProduct(ctx context.Context, id uint, in service.ProductPatch) (service.ProductView, error) {
	v, err := c.CatalogService.UpdateProduct(ctx, id, in)
	if err == nil {
		c.invalidate(ctx)
	}
	return v, err
}

// Invalidate drops all cached catalog entries. Used after bulk writes such as
// the demo seed.
func (c *CatalogCache) Invalidate(ctx context.Context) { c.invalidate(ctx) }

func (c *CatalogCache) get(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("catalog cache entry corrupt")
		return false
	}
	return true
}

func (c *CatalogCache) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("catalog cache encode failed")
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logx.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
}

func (c *CatalogCache) invalidate(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logx.Warn().Err(err).Msg("catalog cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		logx.Warn().Err(err).Int("keys", len(keys)).Msg("catalog cache invalidate failed")
	}
}
