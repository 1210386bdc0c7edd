package shortener

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxURLLength bounds the original URL stored with a link.
const MaxURLLength = 2000

// Link represents a shortened URL entity.
// Everything except Clicks is fixed at construction.
type Link struct {
	ID          uuid.UUID
	OriginalURL string
	Code        Code
	CreatedAt   time.Time
	ExpiresAt   *time.Time
	Clicks      int64 // durable counter, never bumped by the resolution path
}

// NewLink builds a link with a fresh ID and a zero click counter.
func NewLink(originalURL string, code Code, createdAt time.Time, expiresAt *time.Time) (*Link, error) {
	if err := ValidateURL(originalURL); err != nil {
		return nil, err
	}

	return &Link{
		ID:          uuid.New(),
		OriginalURL: originalURL,
		Code:        code,
		CreatedAt:   createdAt,
		ExpiresAt:   expiresAt,
	}, nil
}

// IsExpired reports whether the link has an expiry strictly before now.
func (l *Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// ValidateURL checks that raw is a non-blank absolute URL with a host.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: original url is required", ErrInvalidInput)
	}

	if len(raw) > MaxURLLength {
		return fmt.Errorf("%w: original url exceeds %d characters", ErrInvalidInput, MaxURLLength)
	}

	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: original url is not an absolute url", ErrInvalidInput)
	}

	return nil
}
