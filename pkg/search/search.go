// Package search defines the contract of the per-provider search clients
// used to discover a first identifier for a subject before any sync.
package search

import (
	"context"
	"encoding/json"
	"html"
	"regexp"
	"strings"

	"github.com/kraenzle-ritter/resources/pkg/constants"
	"github.com/kraenzle-ritter/resources/pkg/lookup"
	"github.com/kraenzle-ritter/resources/pkg/resource"
)

// Client searches one provider.
type Client interface {
	// Provider returns the registry key the client searches.
	Provider() string

	// Search runs a free-text query. No hits is Empty; an upstream failure
	// is Failed.
	Search(ctx context.Context, query string, opts Options) lookup.Result[[]Result]
}

// Options narrows a search.
type Options struct {
	Limit   int               `json:"limit,omitempty" yaml:"limit,omitempty"`
	Locale  string            `json:"locale,omitempty" yaml:"locale,omitempty"`
	Filters map[string]string `json:"filters,omitempty" yaml:"filters,omitempty"`
}

// Normalize clamps the limit to [1, constants.MaxLimit], defaulting to
// constants.DefaultLimit, and fills an empty locale with fallback.
func (o Options) Normalize(fallbackLocale string) Options {
	switch {
	case o.Limit <= 0:
		o.Limit = constants.DefaultLimit
	case o.Limit > constants.MaxLimit:
		o.Limit = constants.MaxLimit
	}
	o.Locale = strings.ToLower(strings.TrimSpace(o.Locale))
	if o.Locale == "" {
		o.Locale = fallbackLocale
	}
	return o
}

// Filter returns a filter value or fallback.
func (o Options) Filter(key, fallback string) string {
	if v, ok := o.Filters[key]; ok && v != "" {
		return v
	}
	return fallback
}

// Result is one normalized search hit.
type Result struct {
	Provider    string          `json:"provider" yaml:"provider"`
	ID          string          `json:"id" yaml:"id"`
	Label       string          `json:"label" yaml:"label"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	URL         string          `json:"url" yaml:"url"`
	FullJSON    json.RawMessage `json:"full_json,omitempty" yaml:"-"`
}

// Triple returns the hit as a triple ready to be saved for a subject.
func (r Result) Triple() resource.Triple {
	return resource.Triple{Provider: r.Provider, ProviderID: r.ID, URL: r.URL, FullJSON: r.FullJSON}
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes markup from snippets and unescapes entities.
func StripHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(s, "")))
}

// Results wraps hits in a Result, Empty when there are none.
func Results(hits []Result) lookup.Result[[]Result] {
	if len(hits) == 0 {
		return lookup.Empty[[]Result]("no hits")
	}
	return lookup.OK(hits)
}
