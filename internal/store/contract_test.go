package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/serroba/shortlink/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURL = "https://example.com/some/long/path"

func newLink(t *testing.T, code string, createdAt time.Time) *shortener.Link {
	t.Helper()

	link, err := shortener.NewLink(testURL, shortener.Code(code), createdAt, nil)
	require.NoError(t, err)

	return link
}

// runStoreContract checks the behavior every shortener.Store must share.
// newStore must return an empty store.
func runStoreContract(t *testing.T, newStore func(t *testing.T) shortener.Store) {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("add and get by code", func(t *testing.T) {
		s := newStore(t)
		exp := base.Add(time.Hour)
		link := newLink(t, "get001", base)
		link.ExpiresAt = &exp

		require.NoError(t, s.Add(ctx, link))

		got, err := s.GetByCode(ctx, "get001")
		require.NoError(t, err)
		assert.Equal(t, link.ID, got.ID)
		assert.Equal(t, link.OriginalURL, got.OriginalURL)
		assert.Equal(t, link.Code, got.Code)
		assert.True(t, link.CreatedAt.Equal(got.CreatedAt))
		require.NotNil(t, got.ExpiresAt)
		assert.True(t, exp.Equal(*got.ExpiresAt))
		assert.Zero(t, got.Clicks)
	})

	t.Run("get non-existent returns ErrNotFound", func(t *testing.T) {
		s := newStore(t)

		got, err := s.GetByCode(ctx, "missing")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("exists by code", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(ctx, newLink(t, "exist1", base)))

		exists, err := s.ExistsByCode(ctx, "exist1")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = s.ExistsByCode(ctx, "exist2")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate code returns ErrCodeConflict and keeps the first", func(t *testing.T) {
		s := newStore(t)
		first := newLink(t, "dup001", base)
		second, err := shortener.NewLink("https://other.example.com", "dup001", base, nil)
		require.NoError(t, err)

		require.NoError(t, s.Add(ctx, first))

		err = s.Add(ctx, second)
		assert.ErrorIs(t, err, shortener.ErrCodeConflict)

		got, err := s.GetByCode(ctx, "dup001")
		require.NoError(t, err)
		assert.Equal(t, testURL, got.OriginalURL)
	})

	t.Run("concurrent adds of one code have a single winner", func(t *testing.T) {
		s := newStore(t)

		const workers = 8

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			winners   int
			conflicts int
		)

		for range workers {
			wg.Add(1)

			go func() {
				defer wg.Done()

				link, err := shortener.NewLink(testURL, "race01", base, nil)
				if err != nil {
					return
				}

				err = s.Add(ctx, link)

				mu.Lock()
				defer mu.Unlock()

				switch {
				case err == nil:
					winners++
				case errors.Is(err, shortener.ErrCodeConflict):
					conflicts++
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, 1, winners)
		assert.Equal(t, workers-1, conflicts)
	})

	t.Run("get recent returns newest first", func(t *testing.T) {
		s := newStore(t)

		for i, code := range []string{"rec001", "rec002", "rec003"} {
			require.NoError(t, s.Add(ctx, newLink(t, code, base.Add(time.Duration(i)*time.Minute))))
		}

		links, err := s.GetRecent(ctx, 2)

		require.NoError(t, err)
		require.Len(t, links, 2)
		assert.Equal(t, shortener.Code("rec003"), links[0].Code)
		assert.Equal(t, shortener.Code("rec002"), links[1].Code)
	})

	t.Run("delete removes the link", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Add(ctx, newLink(t, "del001", base)))

		require.NoError(t, s.Delete(ctx, "del001"))

		_, err := s.GetByCode(ctx, "del001")
		assert.ErrorIs(t, err, shortener.ErrNotFound)

		assert.ErrorIs(t, s.Delete(ctx, "del001"), shortener.ErrNotFound)
	})
}

// runCacheContract checks the behavior every shortener.Cache must share.
// newCache must return an empty cache.
func runCacheContract(t *testing.T, newCache func(t *testing.T) shortener.Cache) {
	ctx := context.Background()

	t.Run("get missing key returns ErrCacheMiss", func(t *testing.T) {
		c := newCache(t)

		_, err := c.GetString(ctx, "url:missing")

		assert.ErrorIs(t, err, shortener.ErrCacheMiss)
	})

	t.Run("set and get", func(t *testing.T) {
		c := newCache(t)

		require.NoError(t, c.SetString(ctx, "url:abc123", testURL, time.Hour))

		got, err := c.GetString(ctx, "url:abc123")
		require.NoError(t, err)
		assert.Equal(t, testURL, got)
	})

	t.Run("increment creates and counts", func(t *testing.T) {
		c := newCache(t)

		n, err := c.Increment(ctx, "clicks:abc123")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = c.Increment(ctx, "clicks:abc123")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		raw, err := c.GetString(ctx, "clicks:abc123")
		require.NoError(t, err)
		assert.Equal(t, "2", raw)
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		c := newCache(t)

		const workers = 50

		var wg sync.WaitGroup

		for range workers {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := c.Increment(ctx, "clicks:busy01")
				assert.NoError(t, err)
			}()
		}

		wg.Wait()

		raw, err := c.GetString(ctx, "clicks:busy01")
		require.NoError(t, err)
		assert.Equal(t, "50", raw)
	})

	t.Run("delete removes keys", func(t *testing.T) {
		c := newCache(t)
		require.NoError(t, c.SetString(ctx, "url:gone01", testURL, time.Hour))
		_, err := c.Increment(ctx, "clicks:gone01")
		require.NoError(t, err)

		require.NoError(t, c.Delete(ctx, "url:gone01", "clicks:gone01", "url:never"))

		_, err = c.GetString(ctx, "url:gone01")
		assert.ErrorIs(t, err, shortener.ErrCacheMiss)

		_, err = c.GetString(ctx, "clicks:gone01")
		assert.ErrorIs(t, err, shortener.ErrCacheMiss)
	})
}
