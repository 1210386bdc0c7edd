package shortener_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/serroba/shortlink/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedDraw returns the given candidates in order and then repeats the last one.
func scriptedDraw(candidates ...string) (shortener.Draw, *[]int) {
	var (
		mu      sync.Mutex
		lengths []int
		next    int
	)

	return func(length int) string {
		mu.Lock()
		defer mu.Unlock()

		lengths = append(lengths, length)
		c := candidates[min(next, len(candidates)-1)]
		next++

		return c
	}, &lengths
}

func TestGenerate(t *testing.T) {
	t.Run("returns a code of the default length from the alphabet", func(t *testing.T) {
		gen := shortener.NewGenerator(newMockStore(), shortener.SeededDraw(1), zap.NewNop())

		code, err := gen.Generate(context.Background(), 0)

		require.NoError(t, err)
		assert.Len(t, code.String(), shortener.DefaultCodeLength)

		for _, r := range code.String() {
			assert.True(t, strings.ContainsRune(shortener.Alphabet, r), "unexpected %q", r)
		}
	})

	t.Run("same seed gives the same codes", func(t *testing.T) {
		a := shortener.NewGenerator(newMockStore(), shortener.SeededDraw(42), zap.NewNop())
		b := shortener.NewGenerator(newMockStore(), shortener.SeededDraw(42), zap.NewNop())

		for range 10 {
			ca, err := a.Generate(context.Background(), 6)
			require.NoError(t, err)

			cb, err := b.Generate(context.Background(), 6)
			require.NoError(t, err)

			assert.Equal(t, ca, cb)
		}
	})

	t.Run("retries past taken codes", func(t *testing.T) {
		s := newMockStore()
		s.taken["AAAAAA"] = true
		s.taken["BBBBBB"] = true

		draw, _ := scriptedDraw("AAAAAA", "BBBBBB", "CCCCCC")
		gen := shortener.NewGenerator(s, draw, zap.NewNop())

		code, err := gen.Generate(context.Background(), 6)

		require.NoError(t, err)
		assert.Equal(t, shortener.Code("CCCCCC"), code)
		assert.Equal(t, 3, s.existsCalls)
	})

	t.Run("escalates length after five collisions", func(t *testing.T) {
		s := newMockStore()
		s.taken["AAAAAA"] = true

		draw, lengths := scriptedDraw("AAAAAA", "AAAAAA", "AAAAAA", "AAAAAA", "AAAAAA", "BBBBBBB")
		gen := shortener.NewGenerator(s, draw, zap.NewNop())

		code, err := gen.Generate(context.Background(), 6)

		require.NoError(t, err)
		assert.Equal(t, shortener.Code("BBBBBBB"), code)
		assert.Equal(t, []int{6, 6, 6, 6, 6, 7}, *lengths)
	})

	t.Run("gives up past the maximum length", func(t *testing.T) {
		s := newMockStore()
		s.taken["AAAAAAAAAA"] = true

		draw, lengths := scriptedDraw("AAAAAAAAAA")
		gen := shortener.NewGenerator(s, draw, zap.NewNop())

		_, err := gen.Generate(context.Background(), shortener.MaxCodeLength)

		assert.ErrorIs(t, err, shortener.ErrCodeSpaceExhausted)
		assert.Len(t, *lengths, shortener.AttemptsPerLength)
	})

	t.Run("surfaces existence check failures", func(t *testing.T) {
		s := newMockStore()
		s.existsErr = errMock

		gen := shortener.NewGenerator(s, shortener.SeededDraw(1), zap.NewNop())

		_, err := gen.Generate(context.Background(), 6)

		assert.ErrorIs(t, err, errMock)
	})

	t.Run("stops when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		s := newMockStore()
		gen := shortener.NewGenerator(s, shortener.SeededDraw(1), zap.NewNop())

		_, err := gen.Generate(ctx, 6)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, s.existsCalls)
	})
}

func TestNanoidDraw(t *testing.T) {
	draw, err := shortener.NanoidDraw()
	require.NoError(t, err)

	t.Run("draws from the alphabet at every valid length", func(t *testing.T) {
		for n := shortener.MinCodeLength; n <= shortener.MaxCodeLength; n++ {
			s := draw(n)

			assert.Len(t, s, n)

			for _, r := range s {
				assert.True(t, strings.ContainsRune(shortener.Alphabet, r), "unexpected %q", r)
			}
		}
	})

	t.Run("returns empty for unsupported lengths", func(t *testing.T) {
		assert.Empty(t, draw(shortener.MaxCodeLength+1))
	})
}
