package shortener

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultRecentCount = 10
	MaxRecentCount     = 50

	recentConcurrency = 8
)

// LinkView is a link as presented to API clients.
type LinkView struct {
	Link
	ShortURL   string
	ClickCount int64 // reconciled
}

// LinkStats describes the usage of a single link.
type LinkStats struct {
	Code               Code
	OriginalURL        string
	ClickCount         int64
	DatabaseClickCount int64
	RealtimeClickCount int64
	CreatedAt          time.Time
	ExpiresAt          *time.Time
	IsExpired          bool
	DaysActive         int
}

// Catalog serves read and delete operations over existing links.
type Catalog struct {
	store   Store
	cache   Cache
	clicks  *Clicks
	keys    Keys
	baseURL string
	now     func() time.Time
	logger  *zap.Logger
}

// NewCatalog creates a link catalog.
func NewCatalog(store Store, cache Cache, clicks *Clicks, keys Keys, baseURL string, logger *zap.Logger) *Catalog {
	return &Catalog{
		store:   store,
		cache:   cache,
		clicks:  clicks,
		keys:    keys,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		now:     time.Now,
		logger:  logger,
	}
}

// WithClock replaces the time source used for expiry and age.
func (c *Catalog) WithClock(now func() time.Time) *Catalog {
	c.now = now

	return c
}

// Lookup returns the view of the link with the given code.
func (c *Catalog) Lookup(ctx context.Context, raw string) (*LinkView, error) {
	link, err := c.load(ctx, raw)
	if err != nil {
		return nil, err
	}

	return c.view(ctx, link), nil
}

// Recent returns up to count links, newest first. count is capped at
// MaxRecentCount and a count below one means DefaultRecentCount.
func (c *Catalog) Recent(ctx context.Context, count int) ([]*LinkView, error) {
	switch {
	case count < 1:
		count = DefaultRecentCount
	case count > MaxRecentCount:
		count = MaxRecentCount
	}

	links, err := c.store.GetRecent(ctx, count)
	if err != nil {
		return nil, fmt.Errorf("load recent links: %w", err)
	}

	views := make([]*LinkView, len(links))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(recentConcurrency)

	for i, link := range links {
		g.Go(func() error {
			views[i] = c.view(gctx, link)

			return nil
		})
	}

	return views, g.Wait()
}

// Stats reports durable, cached and reconciled click counts for a link.
func (c *Catalog) Stats(ctx context.Context, raw string) (*LinkStats, error) {
	link, err := c.load(ctx, raw)
	if err != nil {
		return nil, err
	}

	realtime, err := c.clicks.Get(ctx, link.Code)
	if err != nil {
		c.logger.Warn("failed to read click counter",
			zap.String("code", string(link.Code)),
			zap.Error(err),
		)
	}

	now := c.now()

	return &LinkStats{
		Code:               link.Code,
		OriginalURL:        link.OriginalURL,
		ClickCount:         max(link.Clicks, realtime),
		DatabaseClickCount: link.Clicks,
		RealtimeClickCount: realtime,
		CreatedAt:          link.CreatedAt,
		ExpiresAt:          link.ExpiresAt,
		IsExpired:          link.IsExpired(now),
		DaysActive:         int(now.Sub(link.CreatedAt).Hours() / 24),
	}, nil
}

// Delete removes the link from the store. Cached entries are left for Evict.
func (c *Catalog) Delete(ctx context.Context, raw string) (Code, error) {
	code, err := ParseCode(raw)
	if err != nil {
		return "", ErrNotFound
	}

	if err := c.store.Delete(ctx, code); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", err
		}

		return "", fmt.Errorf("delete link %s: %w", code, err)
	}

	c.logger.Info("link deleted", zap.String("code", string(code)))

	return code, nil
}

// Evict drops the cached mapping and click counter of code.
func (c *Catalog) Evict(ctx context.Context, code Code) error {
	if err := c.cache.Delete(ctx, c.keys.URL(code), c.keys.Clicks(code)); err != nil {
		return fmt.Errorf("evict %s: %w", code, err)
	}

	return nil
}

func (c *Catalog) load(ctx context.Context, raw string) (*Link, error) {
	code, err := ParseCode(raw)
	if err != nil {
		return nil, ErrNotFound
	}

	link, err := c.store.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("load link %s: %w", code, err)
	}

	return link, nil
}

// view falls back to the durable count when the cache cannot be read.
func (c *Catalog) view(ctx context.Context, link *Link) *LinkView {
	clicks, err := c.clicks.Reconciled(ctx, link)
	if err != nil {
		c.logger.Warn("failed to read click counter",
			zap.String("code", string(link.Code)),
			zap.Error(err),
		)

		clicks = link.Clicks
	}

	return &LinkView{
		Link:       *link,
		ShortURL:   c.baseURL + "/" + string(link.Code),
		ClickCount: clicks,
	}
}
