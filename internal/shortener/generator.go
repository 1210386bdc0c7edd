package shortener

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// AttemptsPerLength is how many candidates are tried before the code grows by one.
const AttemptsPerLength = 5

// CodeChecker reports whether a code is already taken.
type CodeChecker interface {
	ExistsByCode(ctx context.Context, code Code) (bool, error)
}

// Generator mints random codes that were unused at check time. The check is
// advisory: two generators can pick the same code and the store's unique
// index decides which persist wins.
type Generator struct {
	checker CodeChecker
	draw    Draw
	logger  *zap.Logger
}

// NewGenerator creates a generator drawing candidates from draw.
func NewGenerator(checker CodeChecker, draw Draw, logger *zap.Logger) *Generator {
	return &Generator{
		checker: checker,
		draw:    draw,
		logger:  logger,
	}
}

// Generate returns an unused code of at least the requested length. A length
// of zero means DefaultCodeLength.
func (g *Generator) Generate(ctx context.Context, length int) (Code, error) {
	if length == 0 {
		length = DefaultCodeLength
	}

	for ; length <= MaxCodeLength; length++ {
		for attempt := 1; attempt <= AttemptsPerLength; attempt++ {
			if err := ctx.Err(); err != nil {
				return "", err
			}

			code, err := ParseCode(g.draw(length))
			if err != nil {
				return "", err
			}

			exists, err := g.checker.ExistsByCode(ctx, code)
			if err != nil {
				return "", fmt.Errorf("check code %q: %w", code, err)
			}

			if !exists {
				return code, nil
			}

			g.logger.Debug("generated code already taken",
				zap.String("code", string(code)),
				zap.Int("attempt", attempt),
			)
		}

		g.logger.Warn("code length exhausted, growing", zap.Int("length", length))
	}

	return "", fmt.Errorf("%w: collisions up to length %d", ErrCodeSpaceExhausted, MaxCodeLength)
}
