package middleware

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// RequestObserver records served requests.
type RequestObserver interface {
	ObserveRequest(method string, status int, elapsed time.Duration)
}

// RequestLogger logs each request once it has been served. It reads the
// metadata attached by RequestMetaMiddleware, so it must run after it.
func RequestLogger(logger *zap.Logger, observer RequestObserver) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		next(ctx)

		elapsed := time.Since(start)
		status := ctx.Status()
		meta := RequestMetaFromContext(ctx.Context())

		observer.ObserveRequest(ctx.Method(), status, elapsed)

		fields := []zap.Field{
			zap.String("method", ctx.Method()),
			zap.String("path", ctx.URL().Path),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
			zap.String("request_id", meta.RequestID),
			zap.String("client_ip", meta.ClientIP),
			zap.String("user_agent", meta.UserAgent),
		}

		if status >= 500 {
			logger.Warn("request failed", fields...)

			return
		}

		logger.Info("request served", fields...)
	}
}
