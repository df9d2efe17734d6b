package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/productview/internal/domain"
)

const keyPrefix = "productview:vm:"

// ViewCache memoizes assembled view models in Redis. Entries are keyed by
// SKU plus a fingerprint of the product and its sibling set, so any change in
// catalog data produces a new key instead of a stale hit.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewViewCache creates a Redis-backed view model cache.
func NewViewCache(client *redis.Client, ttl time.Duration) *ViewCache {
	return &ViewCache{client: client, ttl: ttl}
}

// Key returns the cache key for assembling p with siblings.
func Key(p domain.Product, siblings []domain.Product) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	if err := enc.Encode(p); err != nil {
		return "", fmt.Errorf("fingerprint product: %w", err)
	}
	if err := enc.Encode(siblings); err != nil {
		return "", fmt.Errorf("fingerprint siblings: %w", err)
	}
	return keyPrefix + p.SKU + ":" + hex.EncodeToString(h.Sum(nil)[:12]), nil
}

// Get returns the cached view model for key. A miss returns (nil, nil).
func (c *ViewCache) Get(ctx context.Context, key string) (*domain.ViewModel, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get view model: %w", err)
	}

	var vm domain.ViewModel
	if err := json.Unmarshal(data, &vm); err != nil {
		return nil, fmt.Errorf("unmarshal view model: %w", err)
	}
	return &vm, nil
}

// Set stores vm under key with the configured TTL.
func (c *ViewCache) Set(ctx context.Context, key string, vm *domain.ViewModel) error {
	data, err := json.Marshal(vm)
	if err != nil {
		return fmt.Errorf("marshal view model: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set view model: %w", err)
	}
	return nil
}

// Ping checks connectivity for readiness probes.
func (c *ViewCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
