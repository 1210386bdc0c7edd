package shortener

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DefaultClicksTTL bounds how long an idle click counter lives in the cache.
const DefaultClicksTTL = 30 * 24 * time.Hour

// Clicks keeps the fast click counter in the cache. The durable counter on
// Link is owned by the store; the two are compared only for display.
type Clicks struct {
	cache  Cache
	keys   Keys
	ttl    time.Duration
	logger *zap.Logger
}

// NewClicks creates a click accountant. A zero ttl means DefaultClicksTTL.
func NewClicks(cache Cache, keys Keys, ttl time.Duration, logger *zap.Logger) *Clicks {
	if ttl <= 0 {
		ttl = DefaultClicksTTL
	}

	return &Clicks{
		cache:  cache,
		keys:   keys,
		ttl:    ttl,
		logger: logger,
	}
}

// Increment bumps the counter for code and returns the new value. The expiry
// is set only when the counter was just created.
func (c *Clicks) Increment(ctx context.Context, code Code) (int64, error) {
	key := c.keys.Clicks(code)

	count, err := c.cache.Increment(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("increment %s: %w", key, err)
	}

	if count == 1 {
		if err := c.cache.Expire(ctx, key, c.ttl); err != nil {
			c.logger.Warn("failed to set click counter expiry",
				zap.String("code", string(code)),
				zap.Error(err),
			)
		}
	}

	return count, nil
}

// Get returns the cached counter for code, or 0 when there is none.
func (c *Clicks) Get(ctx context.Context, code Code) (int64, error) {
	raw, err := c.cache.GetString(ctx, c.keys.Clicks(code))
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return 0, nil
		}

		return 0, err
	}

	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse click counter for %s: %w", code, err)
	}

	return count, nil
}

// Reconciled returns the larger of the durable and cached counters.
// The result is never written back.
func (c *Clicks) Reconciled(ctx context.Context, link *Link) (int64, error) {
	cached, err := c.Get(ctx, link.Code)
	if err != nil {
		return 0, err
	}

	return max(link.Clicks, cached), nil
}
