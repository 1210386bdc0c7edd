package health

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const checkTimeout = 2 * time.Second

// Checker pings a dependency.
type Checker interface {
	Ping(ctx context.Context) error
}

// RedisChecker adapts redis.Client to Checker.
type RedisChecker struct {
	client *redis.Client
}

func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Handler reports the state of the cache and the database.
type Handler struct {
	redis    Checker
	database Checker
	logger   *zap.Logger
}

func NewHandler(redis, database Checker, logger *zap.Logger) *Handler {
	return &Handler{redis: redis, database: database, logger: logger}
}

// Response is the response for the health check endpoint.
type Response struct {
	Body struct {
		Status   string `doc:"ok, or degraded when a dependency is down" json:"status"`
		Redis    string `json:"redis"`
		Database string `json:"database"`
	}
}

// Check pings every dependency. The service keeps serving with a degraded
// cache, so the endpoint always answers 200.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = "ok"
	resp.Body.Redis = h.probe(ctx, "redis", h.redis, &resp.Body.Status)
	resp.Body.Database = h.probe(ctx, "database", h.database, &resp.Body.Status)

	return resp, nil
}

func (h *Handler) probe(ctx context.Context, name string, checker Checker, status *string) string {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := checker.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
		*status = "degraded"

		return "unhealthy"
	}

	return "healthy"
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Get(api, "/health", h.Check)
}
