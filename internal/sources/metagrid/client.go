// Package metagrid searches Metagrid concordances by name.
package metagrid

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/kraenzle-ritter/resources/internal/metrics"
	"github.com/kraenzle-ritter/resources/internal/sources/registry"
	"github.com/kraenzle-ritter/resources/internal/transport"
	"github.com/kraenzle-ritter/resources/pkg/constants"
	"github.com/kraenzle-ritter/resources/pkg/lookup"
	"github.com/kraenzle-ritter/resources/pkg/metagrid"
	"github.com/kraenzle-ritter/resources/pkg/providers"
	"github.com/kraenzle-ritter/resources/pkg/search"
)

// Name is the factory name; it matches the Metagrid family.
const Name = "metagrid"

func init() {
	registry.Register(Name, func(p providers.Provider, deps registry.Deps) (search.Client, error) {
		return New(p, deps.Pool.Client(transport.SystemMetagrid), deps.Endpoint(Name, constants.MetagridAPI), deps.Metrics), nil
	})
}

// Client searches Metagrid. Every hit is one concordance; its URL is the
// concordance endpoint the sync engine later reads.
type Client struct {
	provider providers.Provider
	client   transport.Getter
	endpoint string
	metrics  *metrics.Metrics
}

// New creates a Metagrid search client.
func New(p providers.Provider, client transport.Getter, endpoint string, m *metrics.Metrics) *Client {
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return &Client{provider: p, client: client, endpoint: endpoint, metrics: m}
}

// Provider implements search.Client.
func (c *Client) Provider() string { return c.provider.Key }

// Query returns the grouped search URL.
func (c *Client) Query(query string, opts search.Options) string {
	params := url.Values{}
	params.Set("query", strings.TrimSpace(query))
	params.Set("group", "1")
	params.Set("take", strconv.Itoa(opts.Limit))
	return c.endpoint + "search?" + params.Encode()
}

// Search implements search.Client.
func (c *Client) Search(ctx context.Context, query string, opts search.Options) lookup.Result[[]search.Result] {
	opts = opts.Normalize("")

	res := transport.Fetch[metagrid.Response](ctx, c.client, c.Query(query, opts))
	result := lookup.Map(res, c.hits)
	if result.IsOK() {
		result = search.Results(result.Value())
	}
	c.metrics.IncSearch(c.provider.Key, result.Status().String())
	return result
}

func (c *Client) hits(resp metagrid.Response) []search.Result {
	hits := make([]search.Result, 0, len(resp.Concordances))
	for _, conc := range resp.Concordances {
		id := conc.ConcordanceID()
		if id == "" || len(conc.Resources) == 0 {
			continue
		}
		hits = append(hits, search.Result{
			Provider:    c.provider.Key,
			ID:          id,
			Label:       label(conc.Resources),
			Description: describe(conc.Resources),
			URL:         metagrid.ConcordanceURL(id),
		})
	}
	return hits
}

func label(records []metagrid.Record) string {
	for _, r := range records {
		if l := r.Label(); l != "" {
			return l
		}
	}
	return ""
}

// describe lists the lifespan of the first record that has one and the
// contributing providers.
func describe(records []metagrid.Record) string {
	var lifespan string
	slugs := make([]string, 0, len(records))
	for _, r := range records {
		if lifespan == "" {
			lifespan = r.Lifespan()
		}
		if r.Provider.Slug != "" {
			slugs = append(slugs, r.Provider.Slug)
		}
	}
	sources := strings.Join(slugs, ", ")
	switch {
	case lifespan != "" && sources != "":
		return lifespan + " (" + sources + ")"
	case lifespan != "":
		return lifespan
	default:
		return sources
	}
}
