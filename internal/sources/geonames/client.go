// Package geonames searches place names in the Geonames gazetteer.
package geonames

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kraenzle-ritter/resources/internal/metrics"
	"github.com/kraenzle-ritter/resources/internal/sources/registry"
	"github.com/kraenzle-ritter/resources/internal/transport"
	"github.com/kraenzle-ritter/resources/pkg/constants"
	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/logging"
	"github.com/kraenzle-ritter/resources/pkg/lookup"
	"github.com/kraenzle-ritter/resources/pkg/providers"
	"github.com/kraenzle-ritter/resources/pkg/search"
)

// Name is the factory name; it matches the provider key.
const Name = "geonames"

func init() {
	registry.Register(Name, func(p providers.Provider, deps registry.Deps) (search.Client, error) {
		settings := deps.Geonames
		if strings.TrimSpace(settings.Username) == "" {
			return nil, errors.NewConfigError(Name, "geonames.username is required", nil)
		}
		client := deps.Pool.Client(transport.SystemGeonames,
			transport.WithDecorators(transport.QueryParam("username", settings.Username)))
		return New(p, client, deps.Endpoint(Name, constants.GeonamesAPI), settings, deps.Metrics), nil
	})
}

type place struct {
	GeonameID   int64  `json:"geonameId"`
	Name        string `json:"name"`
	CountryName string `json:"countryName"`
	AdminName1  string `json:"adminName1"`
	FCodeName   string `json:"fcodeName"`
}

type searchResponse struct {
	Status *struct {
		Message string `json:"message"`
		Value   int    `json:"value"`
	} `json:"status,omitempty"`
	TotalResultsCount int               `json:"totalResultsCount"`
	Geonames          []json.RawMessage `json:"geonames"`
}

// Client searches Geonames. The transport adds the account name to every
// request.
type Client struct {
	provider providers.Provider
	client   transport.Getter
	endpoint string
	settings registry.GeonamesSettings
	metrics  *metrics.Metrics
}

// New creates a Geonames search client. endpoint is the service base; the
// searchJSON path is appended.
func New(p providers.Provider, client transport.Getter, endpoint string, settings registry.GeonamesSettings, m *metrics.Metrics) *Client {
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	return &Client{provider: p, client: client, endpoint: endpoint, settings: settings, metrics: m}
}

// Provider implements search.Client.
func (c *Client) Provider() string { return c.provider.Key }

// Query returns the searchJSON URL. The continentCode and countryBias
// filters override the configured defaults.
func (c *Client) Query(query string, opts search.Options) string {
	params := url.Values{}
	params.Set("q", strings.TrimSpace(query))
	params.Set("maxRows", strconv.Itoa(opts.Limit))
	params.Set("style", "FULL")
	params.Set("type", "JSON")
	params.Set("isNameRequired", "true")
	if v := opts.Filter("continentCode", c.settings.ContinentCode); v != "" {
		params.Set("continentCode", v)
	}
	if v := opts.Filter("countryBias", c.settings.CountryBias); v != "" {
		params.Set("countryBias", v)
	}
	return c.endpoint + "searchJSON?" + params.Encode()
}

// Search implements search.Client. Geonames reports account problems with
// HTTP 200 and a status object; those are failures, and an exhausted
// credit limit is reported as rate limiting.
func (c *Client) Search(ctx context.Context, query string, opts search.Options) lookup.Result[[]search.Result] {
	opts = opts.Normalize("")

	res := transport.Fetch[searchResponse](ctx, c.client, c.Query(query, opts))
	var result lookup.Result[[]search.Result]
	if resp, ok := res.Get(); ok && resp.Status != nil && resp.Status.Value > 0 {
		result = lookup.Failed[[]search.Result](c.statusError(ctx, resp.Status.Value, resp.Status.Message))
	} else {
		result = lookup.Map(res, c.hits)
		if result.IsOK() {
			result = search.Results(result.Value())
		}
	}
	c.metrics.IncSearch(c.provider.Key, result.Status().String())
	return result
}

func (c *Client) statusError(ctx context.Context, code int, message string) error {
	if strings.Contains(message, "limit") {
		logging.FromContext(ctx).Warn().
			Str("username", c.settings.Username).
			Str("message", message).
			Msg("Geonames API: rate limit exceeded")
		return errors.NewAPIError(Name, http.StatusTooManyRequests, message)
	}
	err := errors.NewAPIError(Name, 0, message)
	err.Endpoint = "searchJSON"
	err.Err = fmt.Errorf("geonames status %d", code)
	return err
}

func (c *Client) hits(resp searchResponse) []search.Result {
	hits := make([]search.Result, 0, len(resp.Geonames))
	for _, raw := range resp.Geonames {
		var p place
		if err := json.Unmarshal(raw, &p); err != nil || p.GeonameID == 0 {
			continue
		}
		id := strconv.FormatInt(p.GeonameID, 10)
		hits = append(hits, search.Result{
			Provider:    c.provider.Key,
			ID:          id,
			Label:       p.Name,
			Description: describe(p),
			URL:         c.provider.URL(id, ""),
			FullJSON:    raw,
		})
	}
	return hits
}

func describe(p place) string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.FCodeName, p.AdminName1, p.CountryName} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
