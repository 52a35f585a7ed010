// Package wikipedia searches article titles of one Wikipedia language
// edition.
package wikipedia

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

// Name is the factory name; it matches the Wikipedia family.
const Name = "wikipedia"

func init() {
	registry.Register(Name, func(p providers.Provider, deps registry.Deps) (search.Client, error) {
		return New(p, deps.Pool.Client(transport.SystemWikipedia), deps.Endpoint(Name, constants.WikipediaAPI), deps.Metrics), nil
	})
}

type page struct {
	Title   string `json:"title"`
	PageID  int64  `json:"pageid"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Query struct {
		SearchInfo struct {
			TotalHits int `json:"totalhits"`
		} `json:"searchinfo"`
		Search []json.RawMessage `json:"search"`
	} `json:"query"`
}

// Client searches one Wikipedia edition. The edition is the provider's
// locale, never the caller's.
type Client struct {
	provider providers.Provider
	client   transport.Getter
	endpoint string
	metrics  *metrics.Metrics
}

// New creates a Wikipedia search client. endpoint may contain {LOCALE}.
func New(p providers.Provider, client transport.Getter, endpoint string, m *metrics.Metrics) *Client {
	endpoint = strings.ReplaceAll(endpoint, providers.PlaceholderLocale, p.ResolveLocale(constants.DefaultLocale))
	return &Client{provider: p, client: client, endpoint: endpoint, metrics: m}
}

// Provider implements search.Client.
func (c *Client) Provider() string { return c.provider.Key }

// Query returns the title-search URL for query.
func (c *Client) Query(query string, opts search.Options) string {
	title := strings.Trim(strings.ReplaceAll(strings.TrimSpace(query), " ", "_"), "_")

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("list", "search")
	params.Set("srsearch", "intitle:"+title)
	params.Set("srnamespace", "0")
	params.Set("srlimit", strconv.Itoa(opts.Limit))
	return c.endpoint + "?" + params.Encode()
}

// Search implements search.Client.
func (c *Client) Search(ctx context.Context, query string, opts search.Options) lookup.Result[[]search.Result] {
	opts = opts.Normalize(c.provider.Locale)

	res := transport.Fetch[searchResponse](ctx, c.client, c.Query(query, opts))
	result := lookup.Map(res, c.hits)
	if result.IsOK() {
		result = search.Results(result.Value())
	}
	c.metrics.IncSearch(c.provider.Key, result.Status().String())
	return result
}

func (c *Client) hits(resp searchResponse) []search.Result {
	if resp.Query.SearchInfo.TotalHits == 0 {
		return nil
	}
	hits := make([]search.Result, 0, len(resp.Query.Search))
	for _, raw := range resp.Query.Search {
		var p page
		if err := json.Unmarshal(raw, &p); err != nil || p.PageID == 0 {
			continue
		}
		id := strconv.FormatInt(p.PageID, 10)
		hits = append(hits, search.Result{
			Provider:    c.provider.Key,
			ID:          id,
			Label:       p.Title,
			Description: search.StripHTML(p.Snippet),
			URL:         c.provider.URL(id, c.provider.Locale),
			FullJSON:    raw,
		})
	}
	return hits
}
