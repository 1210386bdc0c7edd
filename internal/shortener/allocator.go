package shortener

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultURLTTL is how long a code to URL mapping stays cached.
const DefaultURLTTL = 24 * time.Hour

// CreateLinkInput is the request to allocate a new short link.
type CreateLinkInput struct {
	OriginalURL string
	CustomCode  string
	ExpiresAt   *time.Time
}

// Allocation is a persisted link together with its public short URL.
type Allocation struct {
	Link     *Link
	ShortURL string
}

// AllocatorConfig holds the tunables of an Allocator. Zero values fall back to defaults.
type AllocatorConfig struct {
	BaseURL    string
	CodeLength int
	URLTTL     time.Duration
	Keys       Keys
}

// Allocator creates links and primes the cache with their mapping.
type Allocator struct {
	store     Store
	cache     Cache
	generator *Generator
	config    AllocatorConfig
	now       func() time.Time
	logger    *zap.Logger
}

// NewAllocator creates a link allocator.
func NewAllocator(store Store, cache Cache, generator *Generator, config AllocatorConfig, logger *zap.Logger) *Allocator {
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")

	if config.CodeLength == 0 {
		config.CodeLength = DefaultCodeLength
	}

	if config.URLTTL <= 0 {
		config.URLTTL = DefaultURLTTL
	}

	return &Allocator{
		store:     store,
		cache:     cache,
		generator: generator,
		config:    config,
		now:       time.Now,
		logger:    logger,
	}
}

// WithClock replaces the time source used for CreatedAt.
func (a *Allocator) WithClock(now func() time.Time) *Allocator {
	a.now = now

	return a
}

// CreateLink validates the input, persists a new link and then primes the cache.
// The store write happens strictly before the cache write; a failed cache write
// is logged and does not fail the allocation.
func (a *Allocator) CreateLink(ctx context.Context, input CreateLinkInput) (*Allocation, error) {
	if err := ValidateURL(input.OriginalURL); err != nil {
		return nil, err
	}

	code, err := a.pickCode(ctx, input.CustomCode)
	if err != nil {
		return nil, err
	}

	now := a.now().UTC()

	link, err := NewLink(input.OriginalURL, code, now, input.ExpiresAt)
	if err != nil {
		return nil, err
	}

	if err := a.store.Add(ctx, link); err != nil {
		return nil, fmt.Errorf("persist link %s: %w", code, err)
	}

	a.prime(ctx, link, now)

	a.logger.Info("link created",
		zap.String("code", string(code)),
		zap.Bool("custom", input.CustomCode != ""),
	)

	return &Allocation{
		Link:     link,
		ShortURL: a.ShortURL(code),
	}, nil
}

// prime caches the mapping for at most the time the link has left. Links that
// are already expired are not cached, so resolution reaches the expiry check.
func (a *Allocator) prime(ctx context.Context, link *Link, now time.Time) {
	ttl := a.config.URLTTL
	if link.ExpiresAt != nil {
		ttl = min(ttl, link.ExpiresAt.Sub(now))
	}

	if ttl <= 0 {
		return
	}

	if err := a.cache.SetString(ctx, a.config.Keys.URL(link.Code), link.OriginalURL, ttl); err != nil {
		a.logger.Warn("failed to prime cache",
			zap.String("code", string(link.Code)),
			zap.Error(err),
		)
	}
}

// ShortURL joins the configured base URL and code.
func (a *Allocator) ShortURL(code Code) string {
	return a.config.BaseURL + "/" + string(code)
}

func (a *Allocator) pickCode(ctx context.Context, custom string) (Code, error) {
	if custom == "" {
		return a.generator.Generate(ctx, a.config.CodeLength)
	}

	code, err := ParseCode(custom)
	if err != nil {
		return "", err
	}

	exists, err := a.store.ExistsByCode(ctx, code)
	if err != nil {
		return "", fmt.Errorf("check code %q: %w", code, err)
	}

	if exists {
		return "", fmt.Errorf("%w: %s", ErrCodeConflict, code)
	}

	return code, nil
}
