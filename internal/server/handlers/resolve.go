package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kraenzle-ritter/resources/internal/server/response"
)

// Resolution is the payload of a resolve.
type Resolution struct {
	Provider string `json:"provider"`
	ID       string `json:"id"`
	Status   string `json:"status"`
	Wikidata string `json:"wikidata,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// HandleResolve handles GET /api/v1/resolve/{provider}/{id}. An id that
// resolves to nothing is a 200 with status "empty"; a failed upstream call
// is an error.
func (h *Handlers) HandleResolve(w http.ResponseWriter, r *http.Request) {
	provider, id := chi.URLParam(r, "provider"), chi.URLParam(r, "id")

	result := h.client.Resolve(r.Context(), provider, id)
	if result.IsFailed() {
		response.ErrorFromType(w, result.Err())
		return
	}
	response.OK(w, Resolution{
		Provider: provider,
		ID:       id,
		Status:   result.Status().String(),
		Wikidata: result.Value(),
		Reason:   result.Reason(),
	})
}
