package shortener

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/jaevor/go-nanoid"
)

// Draw returns a random string of the given length drawn uniformly from Alphabet.
type Draw func(length int) string

// NanoidDraw draws from a cryptographically secure source, with one nanoid
// generator per valid code length. Lengths outside [MinCodeLength,
// MaxCodeLength] yield an empty string, which ParseCode rejects.
func NanoidDraw() (Draw, error) {
	generators := make(map[int]func() string, MaxCodeLength-MinCodeLength+1)

	for n := MinCodeLength; n <= MaxCodeLength; n++ {
		gen, err := nanoid.CustomASCII(Alphabet, n)
		if err != nil {
			return nil, fmt.Errorf("nanoid generator for length %d: %w", n, err)
		}

		generators[n] = gen
	}

	return func(length int) string {
		if gen, ok := generators[length]; ok {
			return gen()
		}

		return ""
	}, nil
}

// SeededDraw draws from a deterministic PCG source, for reproducible tests.
func SeededDraw(seed uint64) Draw {
	var mu sync.Mutex

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	return func(length int) string {
		mu.Lock()
		defer mu.Unlock()

		b := make([]byte, length)
		for i := range b {
			b[i] = Alphabet[rng.IntN(len(Alphabet))]
		}

		return string(b)
	}
}
