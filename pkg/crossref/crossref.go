// Package crossref projects a Wikidata entity's claims onto the identifier
// spaces of the registered providers.
//
// For an entity id the Fetcher always yields the Wikidata self-triple first
// (with the raw entity as full_json), followed by one triple per provider
// whose Wikidata property appears among the entity's claims.
//
// Multi-valued claims are not disambiguated: the first claim of a property
// wins. This is the defined behavior; callers that need every value must
// read full_json themselves.
package crossref

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"

	"github.com/kraenzle-ritter/resources/internal/transport"
	"github.com/kraenzle-ritter/resources/pkg/constants"
	"github.com/kraenzle-ritter/resources/pkg/logging"
	"github.com/kraenzle-ritter/resources/pkg/lookup"
	"github.com/kraenzle-ritter/resources/pkg/providers"
	"github.com/kraenzle-ritter/resources/pkg/resource"
)

// WikidataProvider is the provider key of the self-triple.
const WikidataProvider = "wikidata"

// Fetcher retrieves cross-references for Wikidata entities.
type Fetcher struct {
	registry  *providers.Registry
	client    transport.Getter
	sparql    transport.Getter
	apiURL    string
	sparqlURL string
	pageURL   string
	locale    string

	mu         sync.Mutex
	formatters map[string]string
	discovered bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLocale sets the language of labels and descriptions and the locale
// substituted into URL templates.
func WithLocale(locale string) Option {
	return func(f *Fetcher) {
		if locale != "" {
			f.locale = locale
		}
	}
}

// WithAPIEndpoint overrides the Wikidata action API endpoint.
func WithAPIEndpoint(endpoint string) Option {
	return func(f *Fetcher) {
		f.apiURL = endpoint
	}
}

// WithFormatterDiscovery enables formatter URL discovery through the given
// SPARQL client for providers without a URL template.
func WithFormatterDiscovery(sparql transport.Getter, endpoint string) Option {
	return func(f *Fetcher) {
		f.sparql = sparql
		if endpoint != "" {
			f.sparqlURL = endpoint
		}
	}
}

// New creates a Fetcher reading entities through client.
func New(registry *providers.Registry, client transport.Getter, opts ...Option) *Fetcher {
	f := &Fetcher{
		registry:  registry,
		client:    client,
		apiURL:    constants.WikidataAPI,
		sparqlURL: constants.WikidataSPARQL,
		pageURL:   constants.WikidataPage,
		locale:    constants.DefaultLocale,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type entitiesResponse struct {
	Entities map[string]json.RawMessage `json:"entities"`
}

type entity struct {
	ID      string             `json:"id"`
	Missing *string            `json:"missing,omitempty"`
	Claims  map[string][]claim `json:"claims"`
}

type claim struct {
	Mainsnak struct {
		Datavalue struct {
			Value json.RawMessage `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}

// EntityURL returns the wbgetentities request for id.
func (f *Fetcher) EntityURL(id string) string {
	params := url.Values{}
	params.Set("action", "wbgetentities")
	params.Set("ids", id)
	params.Set("props", "labels|descriptions|claims")
	params.Set("languages", f.locale)
	params.Set("format", "json")
	return f.apiURL + "?" + params.Encode()
}

// Fetch returns the cross-reference triples for a Wikidata id.
// A successful fetch always contains at least the self-triple; Failed is
// returned only when the entity could not be retrieved.
func (f *Fetcher) Fetch(ctx context.Context, wikidataID string) lookup.Result[[]resource.Triple] {
	wikidataID = strings.TrimSpace(wikidataID)
	if wikidataID == "" {
		return lookup.Empty[[]resource.Triple]("empty wikidata id")
	}

	res := transport.Fetch[entitiesResponse](ctx, f.client, f.EntityURL(wikidataID))
	resp, ok := res.Get()
	if !ok {
		return lookup.Failed[[]resource.Triple](res.Err())
	}

	raw := resp.Entities[wikidataID]
	triples := []resource.Triple{{
		Provider:   WikidataProvider,
		ProviderID: wikidataID,
		URL:        f.pageURL + wikidataID,
		FullJSON:   raw,
	}}

	logger := logging.FromContext(ctx)
	if len(raw) == 0 {
		logger.Debug().Str("wikidata_id", wikidataID).Msg("Entity not in response")
		return lookup.OK(triples)
	}

	var ent entity
	if err := json.Unmarshal(raw, &ent); err != nil {
		logger.Warn().Err(err).Str("wikidata_id", wikidataID).Msg("Entity claims undecodable")
		return lookup.OK(triples)
	}
	if ent.Missing != nil {
		logger.Debug().Str("wikidata_id", wikidataID).Msg("Entity does not exist")
		return lookup.OK(triples)
	}

	for _, p := range f.registry.WithProperty() {
		claims := ent.Claims[p.WikidataProperty]
		if len(claims) == 0 {
			continue
		}

		value, ok := ClaimValue(claims[0].Mainsnak.Datavalue.Value)
		if !ok {
			logger.Debug().Str("provider", p.Key).Str("property", p.WikidataProperty).Msg("Skipping claim with unsupported value")
			continue
		}

		link := f.link(ctx, p, value)
		if link == "" {
			logger.Debug().Str("provider", p.Key).Str("property", p.WikidataProperty).Msg("No URL template for provider")
			continue
		}

		triples = append(triples, resource.Triple{
			Provider:   p.Key,
			ProviderID: value,
			URL:        link,
		})
	}

	return lookup.OK(triples)
}

// ClaimValue extracts an identifier from a claim's datavalue. Strings are
// used directly and entity references yield their id; anything else is
// unsupported.
func ClaimValue(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		return s, s != ""
	}

	var ref struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &ref); err == nil && ref.ID != "" {
		return ref.ID, true
	}
	return "", false
}

func (f *Fetcher) link(ctx context.Context, p providers.Provider, value string) string {
	if p.HasTemplate() {
		return p.URL(value, f.locale)
	}
	formatter := f.formatter(ctx, p.WikidataProperty)
	if formatter == "" {
		return ""
	}
	return strings.ReplaceAll(formatter, "$1", value)
}
