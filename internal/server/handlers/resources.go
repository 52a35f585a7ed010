package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kraenzle-ritter/resources/internal/server/response"
	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/resource"
	"github.com/kraenzle-ritter/resources/pkg/sync"
)

// maxBodySize bounds request bodies.
const maxBodySize = 1 << 20

// HandleListResources handles GET /api/v1/subjects/{type}/{id}/resources.
func (h *Handlers) HandleListResources(w http.ResponseWriter, r *http.Request) {
	s, ok := subject(w, r)
	if !ok {
		return
	}
	list, err := h.client.Resources(r.Context(), s)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	if list == nil {
		list = []resource.Resource{}
	}
	response.OK(w, map[string]any{
		"subject":   s,
		"resources": list,
		"count":     len(list),
	})
}

// HandleSaveResource handles POST /api/v1/subjects/{type}/{id}/resources
// with a triple as body, e.g. a chosen search hit.
func (h *Handlers) HandleSaveResource(w http.ResponseWriter, r *http.Request) {
	s, ok := subject(w, r)
	if !ok {
		return
	}

	var t resource.Triple
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&t); err != nil {
		response.BadRequest(w, "Invalid request body", err.Error())
		return
	}
	if t.Provider == "" || t.ProviderID == "" {
		response.BadRequest(w, "provider and provider_id are required", "")
		return
	}

	saved, err := h.client.Save(r.Context(), s, t)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.Created(w, saved)
}

// HandleSync handles POST /api/v1/subjects/{type}/{id}/sync/{provider}
// with optional ?exclude=a,b and ?dry_run=true. The sync itself never
// fails; a failed upstream call is reported with status "failed".
func (h *Handlers) HandleSync(w http.ResponseWriter, r *http.Request) {
	s, ok := subject(w, r)
	if !ok {
		return
	}
	dryRun, err := queryBool(r, "dry_run")
	if err != nil {
		response.BadRequest(w, "Invalid dry_run parameter", err.Error())
		return
	}

	result := h.client.Sync(r.Context(), s, chi.URLParam(r, "provider"),
		sync.WithExclude(queryList(r, "exclude")...),
		sync.WithDryRun(dryRun),
	)
	response.OK(w, result.Report())
}

// HandleDeleteResource handles DELETE /api/v1/resources/{rid}.
func (h *Handlers) HandleDeleteResource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "rid")
	deleted, err := h.client.Delete(r.Context(), id)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	if !deleted {
		response.ErrorFromType(w, errors.NewNotFoundError("resource", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
