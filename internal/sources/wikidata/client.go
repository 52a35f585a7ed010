// Package wikidata searches Wikidata items by label.
package wikidata

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/kraenzle-ritter/resources/internal/metrics"
	"github.com/kraenzle-ritter/resources/internal/sources/registry"
	"github.com/kraenzle-ritter/resources/internal/transport"
	"github.com/kraenzle-ritter/resources/pkg/constants"
	"github.com/kraenzle-ritter/resources/pkg/lookup"
	"github.com/kraenzle-ritter/resources/pkg/providers"
	"github.com/kraenzle-ritter/resources/pkg/search"
)

// Name is the factory name; it matches the Wikidata family.
const Name = "wikidata"

func init() {
	registry.Register(Name, func(p providers.Provider, deps registry.Deps) (search.Client, error) {
		return New(p, deps.Pool.Client(transport.SystemWikidata), deps.Endpoint(Name, constants.WikidataAPI), deps.Locale, deps.Metrics), nil
	})
}

// Response structures for wbsearchentities.
type searchResponse struct {
	Search []json.RawMessage `json:"search"`
}

type entity struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	ConceptURI  string `json:"concepturi"`
}

// Client searches Wikidata.
type Client struct {
	provider providers.Provider
	client   transport.Getter
	endpoint string
	locale   string
	metrics  *metrics.Metrics
}

// New creates a Wikidata search client.
func New(p providers.Provider, client transport.Getter, endpoint, locale string, m *metrics.Metrics) *Client {
	return &Client{provider: p, client: client, endpoint: endpoint, locale: locale, metrics: m}
}

// Provider implements search.Client.
func (c *Client) Provider() string { return c.provider.Key }

// Query returns the wbsearchentities URL for query.
func (c *Client) Query(query string, opts search.Options) string {
	params := url.Values{}
	params.Set("action", "wbsearchentities")
	params.Set("search", strings.TrimSpace(query))
	params.Set("format", "json")
	params.Set("language", opts.Locale)
	params.Set("uselang", opts.Locale)
	params.Set("type", opts.Filter("type", "item"))
	params.Set("limit", strconv.Itoa(opts.Limit))
	return c.endpoint + "?" + params.Encode()
}

// Search implements search.Client.
func (c *Client) Search(ctx context.Context, query string, opts search.Options) lookup.Result[[]search.Result] {
	opts = opts.Normalize(c.locale)

	res := transport.Fetch[searchResponse](ctx, c.client, c.Query(query, opts))
	result := lookup.Map(res, func(resp searchResponse) []search.Result {
		hits := make([]search.Result, 0, len(resp.Search))
		for _, raw := range resp.Search {
			var e entity
			if err := json.Unmarshal(raw, &e); err != nil || e.ID == "" {
				continue
			}
			link := e.ConceptURI
			if c.provider.HasTemplate() {
				link = c.provider.URL(e.ID, opts.Locale)
			}
			hits = append(hits, search.Result{
				Provider:    c.provider.Key,
				ID:          e.ID,
				Label:       e.Label,
				Description: e.Description,
				URL:         link,
				FullJSON:    raw,
			})
		}
		return hits
	})
	if result.IsOK() {
		result = search.Results(result.Value())
	}
	c.metrics.IncSearch(c.provider.Key, result.Status().String())
	return result
}
