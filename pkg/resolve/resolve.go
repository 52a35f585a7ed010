// Package resolve converts a (provider, identifier) pair into a canonical
// Wikidata entity id.
//
// Resolution depends on the provider's family:
//
//   - wikidata: the identifier is returned unchanged
//   - gnd: a SPARQL query selects the entity whose P227 claim equals the id;
//     exactly one binding is required, zero or several resolve to Empty
//   - wikipedia: the language edition's API is asked for the page's
//     pageprops.wikibase_item
//   - every other family resolves to Empty
//
// Transport, status and decoding failures resolve to Failed. Nothing is
// ever guessed: an ambiguous answer is Empty, not the first candidate.
package resolve

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/kraenzle-ritter/resources/internal/metrics"
	"github.com/kraenzle-ritter/resources/internal/transport"
	"github.com/kraenzle-ritter/resources/pkg/constants"
	"github.com/kraenzle-ritter/resources/pkg/logging"
	"github.com/kraenzle-ritter/resources/pkg/lookup"
	"github.com/kraenzle-ritter/resources/pkg/providers"
)

// Resolver resolves seed identifiers to Wikidata ids.
type Resolver interface {
	Resolve(ctx context.Context, provider, id string) lookup.Result[string]
}

var entityPattern = regexp.MustCompile(`/entity/(Q\d+)$`)

// Service is the network-backed Resolver.
type Service struct {
	registry     *providers.Registry
	sparql       transport.Getter
	wikipedia    transport.Getter
	sparqlURL    string
	wikipediaURL string
	metrics      *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithSPARQLEndpoint overrides the Wikidata query service endpoint.
func WithSPARQLEndpoint(endpoint string) Option {
	return func(s *Service) {
		s.sparqlURL = endpoint
	}
}

// WithWikipediaAPI overrides the Wikipedia API URL template; {LOCALE} is
// replaced with the provider's language edition.
func WithWikipediaAPI(pattern string) Option {
	return func(s *Service) {
		s.wikipediaURL = pattern
	}
}

// WithMetrics records resolution outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New creates a resolver. sparql and wikipedia perform the HTTP calls for
// the GND and Wikipedia families.
func New(registry *providers.Registry, sparql, wikipedia transport.Getter, opts ...Option) *Service {
	s := &Service{
		registry:     registry,
		sparql:       sparql,
		wikipedia:    wikipedia,
		sparqlURL:    constants.WikidataSPARQL,
		wikipediaURL: constants.WikipediaAPI,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve implements Resolver.
func (s *Service) Resolve(ctx context.Context, provider, id string) lookup.Result[string] {
	p, ok := s.registry.Get(provider)
	if !ok {
		return lookup.Emptyf[string]("unknown provider %q", provider)
	}

	ctx = logging.WithProvider(ctx, p.Key)
	result := s.resolve(ctx, p, strings.TrimSpace(id))
	s.metrics.IncResolve(p.Family.String(), result.Status().String())

	logger := logging.FromContext(ctx)
	switch {
	case result.IsOK():
		logger.Debug().Str("id", id).Str("wikidata_id", result.Value()).Msg("Resolved identifier")
	case result.IsFailed():
		logger.Warn().Err(result.Err()).Str("id", id).Msg("Resolution failed")
	default:
		logger.Debug().Str("id", id).Str("reason", result.Reason()).Msg("Nothing to resolve")
	}
	return result
}

func (s *Service) resolve(ctx context.Context, p providers.Provider, id string) lookup.Result[string] {
	if id == "" {
		return lookup.Empty[string]("empty identifier")
	}

	switch p.Family {
	case providers.FamilyWikidata:
		return lookup.OK(id)
	case providers.FamilyGND:
		return s.fromGND(ctx, id)
	case providers.FamilyWikipedia:
		return s.fromWikipedia(ctx, p.Locale, id)
	default:
		return lookup.Emptyf[string]("no path to wikidata for %s providers", p.Family)
	}
}

type sparqlResponse struct {
	Results struct {
		Bindings []struct {
			Item struct {
				Type  string `json:"type"`
				Value string `json:"value"`
			} `json:"item"`
		} `json:"bindings"`
	} `json:"results"`
}

// GNDQuery returns the SPARQL query selecting entities by GND id.
func GNDQuery(gndID string) string {
	return fmt.Sprintf(`SELECT ?item WHERE { ?item wdt:P227 "%s" }`, EscapeLiteral(gndID))
}

// EscapeLiteral escapes s for use inside a double-quoted SPARQL string.
func EscapeLiteral(s string) string {
	return strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	).Replace(s)
}

func (s *Service) fromGND(ctx context.Context, gndID string) lookup.Result[string] {
	params := url.Values{}
	params.Set("query", GNDQuery(gndID))
	params.Set("format", "json")

	res := transport.Fetch[sparqlResponse](ctx, s.sparql, s.sparqlURL+"?"+params.Encode())
	resp, ok := res.Get()
	if !ok {
		return lookup.Failed[string](res.Err())
	}

	bindings := resp.Results.Bindings
	if len(bindings) != 1 {
		return lookup.Emptyf[string]("%d entities carry GND %s", len(bindings), gndID)
	}

	m := entityPattern.FindStringSubmatch(bindings[0].Item.Value)
	if m == nil {
		return lookup.Emptyf[string]("unexpected entity uri %q", bindings[0].Item.Value)
	}
	return lookup.OK(m[1])
}

type pagepropsResponse struct {
	Query struct {
		Pages map[string]struct {
			PageProps struct {
				WikibaseItem string `json:"wikibase_item"`
			} `json:"pageprops"`
		} `json:"pages"`
	} `json:"query"`
}

func (s *Service) fromWikipedia(ctx context.Context, locale, pageID string) lookup.Result[string] {
	if locale == "" {
		return lookup.Empty[string]("wikipedia provider without language edition")
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("pageids", pageID)
	params.Set("prop", "pageprops")

	endpoint := strings.ReplaceAll(s.wikipediaURL, providers.PlaceholderLocale, locale)
	res := transport.Fetch[pagepropsResponse](ctx, s.wikipedia, endpoint+"?"+params.Encode())
	resp, ok := res.Get()
	if !ok {
		return lookup.Failed[string](res.Err())
	}

	page, ok := resp.Query.Pages[pageID]
	if !ok || page.PageProps.WikibaseItem == "" {
		return lookup.Emptyf[string]("page %s has no wikibase_item", pageID)
	}
	return lookup.OK(page.PageProps.WikibaseItem)
}
