package shortener

import (
	"context"
	"time"
)

// Store is the durable link storage. It is the authority on code uniqueness.
type Store interface {
	// Add persists a link. The write is durable once Add returns nil.
	// A code collision must be reported as ErrCodeConflict.
	Add(ctx context.Context, link *Link) error
	ExistsByCode(ctx context.Context, code Code) (bool, error)
	// GetByCode returns ErrNotFound when no link has the code.
	GetByCode(ctx context.Context, code Code) (*Link, error)
	// GetRecent returns up to count links, newest first.
	GetRecent(ctx context.Context, count int) ([]*Link, error)
	// Delete returns ErrNotFound when no link has the code.
	Delete(ctx context.Context, code Code) error
}

// Cache is a remote key-value cache with TTLs and atomic counters.
type Cache interface {
	// GetString returns ErrCacheMiss when the key is absent.
	GetString(ctx context.Context, key string) (string, error)
	SetString(ctx context.Context, key, value string, ttl time.Duration) error
	// Increment atomically adds one to an integer key, creating it at zero.
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Keys builds cache keys. The zero value yields "url:{code}" and "clicks:{code}".
type Keys struct {
	Prefix string
}

func (k Keys) URL(code Code) string {
	return k.Prefix + "url:" + string(code)
}

func (k Keys) Clicks(code Code) string {
	return k.Prefix + "clicks:" + string(code)
}
