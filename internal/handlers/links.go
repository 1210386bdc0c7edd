package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/events"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/metrics"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// LinkHandler serves link management and redirects.
type LinkHandler struct {
	allocator     *shortener.Allocator
	resolver      *shortener.Resolver
	catalog       *shortener.Catalog
	publishDelete messaging.Publish[events.LinkDeletedEvent]
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(
	allocator *shortener.Allocator,
	resolver *shortener.Resolver,
	catalog *shortener.Catalog,
	publishDelete messaging.Publish[events.LinkDeletedEvent],
	m *metrics.Metrics,
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		allocator:     allocator,
		resolver:      resolver,
		catalog:       catalog,
		publishDelete: publishDelete,
		metrics:       m,
		logger:        logger,
	}
}

func (h *LinkHandler) CreateLink(ctx context.Context, req *CreateLinkRequest) (*CreateLinkResponse, error) {
	allocation, err := h.allocator.CreateLink(ctx, shortener.CreateLinkInput{
		OriginalURL: req.Body.URL,
		CustomCode:  req.Body.CustomCode,
		ExpiresAt:   req.Body.ExpiresAt,
	})
	h.metrics.ObserveAllocation(err)

	if err != nil {
		return nil, h.toHTTPError(ctx, "create link", err)
	}

	resp := &CreateLinkResponse{
		Location: allocation.ShortURL,
		Body: toLinkBody(&shortener.LinkView{
			Link:     *allocation.Link,
			ShortURL: allocation.ShortURL,
		}),
	}

	return resp, nil
}

func (h *LinkHandler) GetLink(ctx context.Context, req *CodeRequest) (*LinkResponse, error) {
	view, err := h.catalog.Lookup(ctx, req.Code)
	if err != nil {
		return nil, h.toHTTPError(ctx, "get link", err)
	}

	return &LinkResponse{Body: toLinkBody(view)}, nil
}

func (h *LinkHandler) RecentLinks(ctx context.Context, req *RecentLinksRequest) (*RecentLinksResponse, error) {
	views, err := h.catalog.Recent(ctx, req.Count)
	if err != nil {
		return nil, h.toHTTPError(ctx, "list links", err)
	}

	resp := &RecentLinksResponse{Body: make([]LinkBody, 0, len(views))}
	for _, view := range views {
		resp.Body = append(resp.Body, toLinkBody(view))
	}

	return resp, nil
}

// DeleteLink removes the link and announces it so cached entries get evicted.
// A failed announcement is logged; the link is already gone from the store.
func (h *LinkHandler) DeleteLink(ctx context.Context, req *CodeRequest) (*struct{}, error) {
	code, err := h.catalog.Delete(ctx, req.Code)
	if err != nil {
		return nil, h.toHTTPError(ctx, "delete link", err)
	}

	event := &events.LinkDeletedEvent{
		Code:      string(code),
		DeletedAt: time.Now().UTC(),
		ClientIP:  middleware.RequestMetaFromContext(ctx).ClientIP,
	}

	if err := h.publishDelete(ctx, event); err != nil {
		h.logger.Error("failed to publish deletion event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	return nil, nil
}

func (h *LinkHandler) Stats(ctx context.Context, req *CodeRequest) (*StatsResponse, error) {
	stats, err := h.catalog.Stats(ctx, req.Code)
	if err != nil {
		return nil, h.toHTTPError(ctx, "get stats", err)
	}

	resp := &StatsResponse{}
	resp.Body.ShortCode = string(stats.Code)
	resp.Body.OriginalURL = stats.OriginalURL
	resp.Body.ClickCount = stats.ClickCount
	resp.Body.DatabaseClickCount = stats.DatabaseClickCount
	resp.Body.RealtimeClickCount = stats.RealtimeClickCount
	resp.Body.CreatedAt = stats.CreatedAt
	resp.Body.ExpiresAt = stats.ExpiresAt
	resp.Body.IsExpired = stats.IsExpired
	resp.Body.DaysActive = stats.DaysActive

	return resp, nil
}

func (h *LinkHandler) Redirect(ctx context.Context, req *CodeRequest) (*RedirectResponse, error) {
	res, err := h.resolver.Resolve(ctx, req.Code)
	h.metrics.ObserveResolution(res, err)

	if err != nil {
		return nil, h.toHTTPError(ctx, "resolve", err)
	}

	return &RedirectResponse{
		Status:   http.StatusFound,
		Location: res.URL,
	}, nil
}

// toHTTPError maps domain errors to API errors. Anything unrecognized is
// logged and reported as a 500 without details.
func (h *LinkHandler) toHTTPError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, shortener.ErrInvalidInput), errors.Is(err, shortener.ErrInvalidCode):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, shortener.ErrCodeConflict):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, shortener.ErrNotFound):
		return huma.Error404NotFound("short link not found")
	case errors.Is(err, shortener.ErrGone):
		return huma.Error410Gone("short link has expired")
	}

	h.logger.Error(op+" failed",
		zap.String("request_id", middleware.RequestMetaFromContext(ctx).RequestID),
		zap.Error(err),
	)

	return huma.Error500InternalServerError(op + " failed")
}

func toLinkBody(view *shortener.LinkView) LinkBody {
	return LinkBody{
		ID:          view.ID.String(),
		OriginalURL: view.OriginalURL,
		ShortCode:   string(view.Code),
		ShortURL:    view.ShortURL,
		CreatedAt:   view.CreatedAt,
		ExpiresAt:   view.ExpiresAt,
		ClickCount:  view.ClickCount,
	}
}
