package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kraenzle-ritter/resources/internal/server/response"
	"github.com/kraenzle-ritter/resources/pkg/errors"
)

// HandleListProviders handles GET /api/v1/providers. With
// ?searchable=true only providers with a search client are listed.
func (h *Handlers) HandleListProviders(w http.ResponseWriter, r *http.Request) {
	searchable, err := queryBool(r, "searchable")
	if err != nil {
		response.BadRequest(w, "Invalid searchable parameter", err.Error())
		return
	}

	list := h.client.Registry().All()
	if searchable {
		list = h.client.Searchable()
	}
	response.OK(w, map[string]any{
		"providers": list,
		"count":     len(list),
	})
}

// HandleGetProvider handles GET /api/v1/providers/{key}.
func (h *Handlers) HandleGetProvider(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	p, ok := h.client.Registry().Get(key)
	if !ok {
		response.ErrorFromType(w, errors.NewNotFoundError("provider", key))
		return
	}
	response.OK(w, p)
}
