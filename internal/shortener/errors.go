package shortener

import "errors"

var (
	// ErrInvalidInput is returned for a malformed original URL.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCode is returned when a code is empty or its length is out of range.
	ErrInvalidCode = errors.New("invalid short code")
	// ErrCodeConflict is returned when the code is already taken, including
	// when a concurrent allocation wins the store's unique index.
	ErrCodeConflict = errors.New("short code already in use")
	ErrNotFound     = errors.New("short code not found")
	// ErrGone is returned for a link that exists but has expired.
	ErrGone = errors.New("link expired")
	// ErrCacheMiss is returned by Cache implementations when a key is absent.
	ErrCacheMiss = errors.New("cache miss")
	// ErrCodeSpaceExhausted is returned when generation escalates past MaxCodeLength.
	ErrCodeSpaceExhausted = errors.New("no free short code available")
)
