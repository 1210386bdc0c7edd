package shortener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Source tells where a resolution was answered from.
type Source string

const (
	SourceCache Source = "cache"
	SourceStore Source = "store"
)

// Resolution is the outcome of a successful lookup.
type Resolution struct {
	URL    string
	Source Source
}

// Resolver answers redirect lookups cache-first, falling back to the store.
type Resolver struct {
	store  Store
	cache  Cache
	clicks *Clicks
	keys   Keys
	urlTTL time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewResolver creates a resolver. A zero urlTTL means DefaultURLTTL.
func NewResolver(store Store, cache Cache, clicks *Clicks, keys Keys, urlTTL time.Duration, logger *zap.Logger) *Resolver {
	if urlTTL <= 0 {
		urlTTL = DefaultURLTTL
	}

	return &Resolver{
		store:  store,
		cache:  cache,
		clicks: clicks,
		keys:   keys,
		urlTTL: urlTTL,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the time source used for expiry checks.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now

	return r
}

// Resolve returns the original URL for raw and counts the click.
//
// A cached mapping is trusted as is: expiry is only checked on the store
// path, so an expired link may keep resolving until its cache entry lapses.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*Resolution, error) {
	code, err := ParseCode(raw)
	if err != nil {
		return nil, ErrNotFound
	}

	if url, ok := r.fromCache(ctx, code); ok {
		r.countClick(ctx, code)

		return &Resolution{URL: url, Source: SourceCache}, nil
	}

	link, err := r.store.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("load link %s: %w", code, err)
	}

	if link.IsExpired(r.now()) {
		return nil, fmt.Errorf("%w: %s", ErrGone, code)
	}

	if err := r.cache.SetString(ctx, r.keys.URL(code), link.OriginalURL, r.urlTTL); err != nil {
		r.logger.Warn("failed to backfill cache",
			zap.String("code", string(code)),
			zap.Error(err),
		)
	}

	r.countClick(ctx, code)

	return &Resolution{URL: link.OriginalURL, Source: SourceStore}, nil
}

func (r *Resolver) fromCache(ctx context.Context, code Code) (string, bool) {
	url, err := r.cache.GetString(ctx, r.keys.URL(code))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			r.logger.Warn("cache read failed, falling back to store",
				zap.String("code", string(code)),
				zap.Error(err),
			)
		}

		return "", false
	}

	return url, url != ""
}

func (r *Resolver) countClick(ctx context.Context, code Code) {
	if _, err := r.clicks.Increment(ctx, code); err != nil {
		r.logger.Warn("failed to count click",
			zap.String("code", string(code)),
			zap.Error(err),
		)
	}
}
