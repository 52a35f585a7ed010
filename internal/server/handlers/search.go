package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kraenzle-ritter/resources/internal/server/response"
	"github.com/kraenzle-ritter/resources/pkg/search"
)

// reserved query parameters of the search endpoint; every other parameter
// is passed to the client as a filter
var reserved = map[string]bool{"q": true, "limit": true, "locale": true}

// HandleSearch handles GET /api/v1/search/{provider}?q=&limit=&locale=.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.BadRequest(w, "Missing query", "the q parameter is required")
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		response.BadRequest(w, "Invalid limit parameter", err.Error())
		return
	}

	opts := search.Options{
		Limit:  limit,
		Locale: r.URL.Query().Get("locale"),
	}
	for key, values := range r.URL.Query() {
		if reserved[key] || len(values) == 0 {
			continue
		}
		if opts.Filters == nil {
			opts.Filters = make(map[string]string)
		}
		opts.Filters[key] = values[0]
	}

	result := h.client.Search(r.Context(), chi.URLParam(r, "provider"), query, opts)
	if result.IsFailed() {
		response.ErrorFromType(w, result.Err())
		return
	}
	hits := result.Value()
	if hits == nil {
		hits = []search.Result{}
	}
	response.OK(w, map[string]any{
		"results": hits,
		"count":   len(hits),
	})
}
