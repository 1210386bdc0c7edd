package events

import (
	"context"

	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// Evictor drops cached state for a code.
type Evictor interface {
	Evict(ctx context.Context, code shortener.Code) error
}

// NewEvictionHandler clears the cache entries of deleted links. Events with a
// malformed code are logged and skipped; eviction failures are returned so
// the message is redelivered.
func NewEvictionHandler(evictor Evictor, logger *zap.Logger) messaging.Handler[LinkDeletedEvent] {
	return func(ctx context.Context, event *LinkDeletedEvent) error {
		code, err := shortener.ParseCode(event.Code)
		if err != nil {
			logger.Warn("skipping deletion event", zap.String("code", event.Code), zap.Error(err))

			return nil
		}

		if err := evictor.Evict(ctx, code); err != nil {
			return err
		}

		logger.Info("evicted deleted link", zap.String("code", event.Code))

		return nil
	}
}
