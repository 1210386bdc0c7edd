package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers the link API and the redirect route.
func RegisterRoutes(api huma.API, h *LinkHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-link",
		Method:        http.MethodPost,
		Path:          "/api/links",
		Summary:       "Create short link",
		Description:   "Creates a short link with a generated or custom code.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusCreated,
	}, h.CreateLink)

	huma.Register(api, huma.Operation{
		OperationID: "list-links",
		Method:      http.MethodGet,
		Path:        "/api/links",
		Summary:     "List recent links",
		Tags:        []string{"Links"},
	}, h.RecentLinks)

	huma.Register(api, huma.Operation{
		OperationID: "get-link",
		Method:      http.MethodGet,
		Path:        "/api/links/{code}",
		Summary:     "Get link",
		Tags:        []string{"Links"},
	}, h.GetLink)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-link",
		Method:        http.MethodDelete,
		Path:          "/api/links/{code}",
		Summary:       "Delete link",
		Description:   "Deletes the link. Cached redirects are evicted asynchronously.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusNoContent,
	}, h.DeleteLink)

	huma.Register(api, huma.Operation{
		OperationID: "get-stats",
		Method:      http.MethodGet,
		Path:        "/api/stats/{code}",
		Summary:     "Get link statistics",
		Tags:        []string{"Stats"},
	}, h.Stats)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL associated with the short code.",
		Tags:        []string{"Redirect"},
	}, h.Redirect)
}
