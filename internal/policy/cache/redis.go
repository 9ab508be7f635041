// Package cache fronts a policy store with Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"gdprkv/internal/policy/models"
)

const keyPrefix = "gdprkv:policy:"

// Lookup resolves a purpose to its policy.
type Lookup interface {
	FindByPurpose(ctx context.Context, purpose string) (*models.Policy, error)
}

// CachedLookup reads through Redis. Cache failures fall through to the
// backing lookup; misses in the backing store are not cached.
type CachedLookup struct {
	backing Lookup
	client  redis.UniversalClient
	ttl     time.Duration
	logger  *slog.Logger
}

func NewCachedLookup(backing Lookup, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CachedLookup {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedLookup{
		backing: backing,
		client:  client,
		ttl:     ttl,
		logger:  logger,
	}
}

func (c *CachedLookup) FindByPurpose(ctx context.Context, purpose string) (*models.Policy, error) {
	key := keyPrefix + purpose

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p models.Policy
		if jsonErr := json.Unmarshal(raw, &p); jsonErr == nil {
			return &p, nil
		}
		c.logger.WarnContext(ctx, "discarding corrupt cached policy", "purpose", purpose)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "policy cache read failed", "purpose", purpose, "error", err)
	}

	p, err := c.backing.FindByPurpose(ctx, purpose)
	if err != nil {
		return nil, err
	}

	if payload, jsonErr := json.Marshal(p); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			c.logger.WarnContext(ctx, "policy cache write failed", "purpose", purpose, "error", setErr)
		}
	}
	return p, nil
}

// Invalidate drops a cached policy after it changes.
func (c *CachedLookup) Invalidate(ctx context.Context, purpose string) error {
	return c.client.Del(ctx, keyPrefix+purpose).Err()
}
