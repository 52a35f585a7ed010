// Package gnd searches the GND through the lobid API.
package gnd

import (
	"context"
	"encoding/json"
	"maps"
	"net/url"
	"slices"
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

// Name is the factory name; it matches the GND family.
const Name = "gnd"

// DefaultType is the entity type searched when no "type" filter is given.
const DefaultType = "Person"

func init() {
	registry.Register(Name, func(p providers.Provider, deps registry.Deps) (search.Client, error) {
		return New(p, deps.Pool.Client(transport.SystemGND), deps.Endpoint(Name, constants.LobidGND), deps.Locale, deps.Metrics), nil
	})
}

type label struct {
	Label string `json:"label"`
}

// member is one entity of a lobid search response.
type member struct {
	ID                     string   `json:"id"`
	GNDIdentifier          string   `json:"gndIdentifier"`
	PreferredName          string   `json:"preferredName"`
	BiographicalInfo       []string `json:"biographicalOrHistoricalInformation"`
	DateOfBirth            []string `json:"dateOfBirth"`
	DateOfDeath            []string `json:"dateOfDeath"`
	ProfessionOrOccupation []label  `json:"professionOrOccupation"`
}

// Client searches lobid GND.
type Client struct {
	provider providers.Provider
	client   transport.Getter
	endpoint string
	locale   string
	metrics  *metrics.Metrics
}

// New creates a GND search client.
func New(p providers.Provider, client transport.Getter, endpoint, locale string, m *metrics.Metrics) *Client {
	return &Client{provider: p, client: client, endpoint: endpoint, locale: locale, metrics: m}
}

// Provider implements search.Client.
func (c *Client) Provider() string { return c.provider.Key }

var reserved = strings.NewReplacer("[", " ", "]", " ", "!", " ", "(", " ", ")", " ", ":", " ")

// Query returns the lobid search URL. Lucene syntax characters are blanked
// out of the query; filters are joined with AND, "type" defaulting to
// Person.
func (c *Client) Query(query string, opts search.Options) string {
	filters := map[string]string{"type": DefaultType}
	maps.Copy(filters, opts.Filters)

	parts := make([]string, 0, len(filters))
	for _, key := range slices.Sorted(maps.Keys(filters)) {
		if filters[key] != "" {
			parts = append(parts, key+":"+filters[key])
		}
	}

	params := url.Values{}
	params.Set("q", strings.TrimSpace(reserved.Replace(query)))
	if len(parts) > 0 {
		params.Set("filter", strings.Join(parts, " AND "))
	}
	params.Set("size", strconv.Itoa(opts.Limit))
	params.Set("format", "json")
	return c.endpoint + "?" + params.Encode()
}

// Search implements search.Client.
func (c *Client) Search(ctx context.Context, query string, opts search.Options) lookup.Result[[]search.Result] {
	opts = opts.Normalize(c.locale)

	res := transport.Fetch[json.RawMessage](ctx, c.client, c.Query(query, opts))
	result := lookup.Map(res, func(raw json.RawMessage) []search.Result { return c.hits(raw) })
	if result.IsOK() {
		result = search.Results(result.Value())
	}
	c.metrics.IncSearch(c.provider.Key, result.Status().String())
	return result
}

func (c *Client) hits(raw json.RawMessage) []search.Result {
	var resp struct {
		TotalItems int               `json:"totalItems"`
		Member     []json.RawMessage `json:"member"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil || resp.TotalItems == 0 {
		return nil
	}

	hits := make([]search.Result, 0, len(resp.Member))
	for _, item := range resp.Member {
		var m member
		if err := json.Unmarshal(item, &m); err != nil || m.GNDIdentifier == "" {
			continue
		}
		link := m.ID
		if c.provider.HasTemplate() {
			link = c.provider.URL(m.GNDIdentifier, c.locale)
		}
		hits = append(hits, search.Result{
			Provider:    c.provider.Key,
			ID:          m.GNDIdentifier,
			Label:       m.PreferredName,
			Description: m.describe(),
			URL:         link,
			FullJSON:    item,
		})
	}
	return hits
}

func (m member) describe() string {
	var parts []string
	if len(m.DateOfBirth) > 0 || len(m.DateOfDeath) > 0 {
		parts = append(parts, first(m.DateOfBirth)+"–"+first(m.DateOfDeath))
	}
	for _, p := range m.ProfessionOrOccupation {
		if p.Label != "" {
			parts = append(parts, p.Label)
		}
	}
	if len(parts) == 0 {
		return first(m.BiographicalInfo)
	}
	return strings.Join(parts, ", ")
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
