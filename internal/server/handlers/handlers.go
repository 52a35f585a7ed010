// Package handlers provides HTTP request handlers for the resources API.
package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kraenzle-ritter/resources"
	"github.com/kraenzle-ritter/resources/internal/server/response"
	"github.com/kraenzle-ritter/resources/pkg/resource"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	client    resources.Client
	version   string
	startTime time.Time
}

// New creates a new Handlers instance.
func New(client resources.Client, version string) *Handlers {
	return &Handlers{
		client:    client,
		version:   version,
		startTime: time.Now(),
	}
}

// subject reads the {type} and {id} path parameters. It writes a 400 and
// returns false when either is blank.
func subject(w http.ResponseWriter, r *http.Request) (resource.Subject, bool) {
	s := resource.NewSubject(chi.URLParam(r, "type"), chi.URLParam(r, "id"))
	if err := s.Validate(); err != nil {
		response.BadRequest(w, err.Error(), "")
		return s, false
	}
	return s, true
}

// queryList splits a comma separated query parameter, also accepting it
// repeated.
func queryList(r *http.Request, key string) []string {
	var out []string
	for _, v := range r.URL.Query()[key] {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// queryBool parses a boolean query parameter; absent means false.
func queryBool(r *http.Request, key string) (bool, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}

// queryInt parses an integer query parameter; absent means 0.
func queryInt(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
