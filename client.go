// Package resources keeps the authority identifiers of arbitrary subjects
// (persons, places, organizations) in sync across Wikidata, the GND,
// Wikipedia, Metagrid and the other providers of the registry.
//
// A subject that holds one identifier, say a GND number, is resolved to its
// Wikidata entity; the entity's claims yield the subject's identifiers in
// every other provider, which are then stored as resources. Storing is an
// upsert keyed by (subject, provider), so repeated syncs never duplicate.
//
// Example usage:
//
//	rc, err := resources.New(
//	    resources.WithLocale("de"),
//	    resources.WithStoreConfig(resources.StoreConfig{Driver: "badger", Path: "./data"}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rc.Close()
//
//	person := resource.NewSubject("person", "42")
//
//	// Store the one identifier we know, e.g. a chosen search hit
//	if _, err := rc.Save(ctx, person, resource.Triple{Provider: "gnd", ProviderID: "118561219"}); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Derive all the others
//	result := rc.Sync(ctx, person, "gnd", sync.WithExclude("viaf"))
//	fmt.Println(result.Summary())
package resources

import (
	"context"
	stdsync "sync"

	"github.com/kraenzle-ritter/resources/internal/cache"
	"github.com/kraenzle-ritter/resources/internal/metrics"
	"github.com/kraenzle-ritter/resources/internal/sources/registry"
	"github.com/kraenzle-ritter/resources/internal/transport"
	"github.com/kraenzle-ritter/resources/pkg/constants"
	"github.com/kraenzle-ritter/resources/pkg/crossref"
	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/logging"
	"github.com/kraenzle-ritter/resources/pkg/lookup"
	"github.com/kraenzle-ritter/resources/pkg/metagrid"
	"github.com/kraenzle-ritter/resources/pkg/providers"
	"github.com/kraenzle-ritter/resources/pkg/resolve"
	"github.com/kraenzle-ritter/resources/pkg/search"
	"github.com/kraenzle-ritter/resources/pkg/store"
	"github.com/kraenzle-ritter/resources/pkg/sync"
)

// Client resolves, syncs, searches and stores authority identifiers.
type Client interface {

	// Resolver converts a provider identifier into a Wikidata id
	Resolver

	// Syncer derives and stores a subject's identifiers
	Syncer

	// Searcher searches a provider by name
	Searcher

	// Persistence manages stored resources
	Persistence

	// Hooks provides access to event callback registration
	Hooks

	// Registry returns the provider registry in use.
	Registry() *providers.Registry

	// Close releases the store and the cache.
	Close() error
}

// Compile-time interface check to ensure proper implementation.
var _ Resolver = (*client)(nil)

// Resolver converts a provider identifier into a Wikidata id.
type Resolver interface {
	// Resolve returns OK with the Wikidata id, Empty when the provider has
	// no path to Wikidata or nothing matches, and Failed on transport errors.
	Resolve(ctx context.Context, provider, id string) lookup.Result[string]
}

// client is the internal implementation of the Client interface.
type client struct {

	// options are the configured options for the client
	options *options

	registry *providers.Registry
	pool     *transport.Pool
	metrics  *metrics.Metrics

	// resolution and cross-references
	resolver resolve.Resolver
	cache    cache.Store

	// persistence and sync
	store        *store.Reconciler
	orchestrator *sync.Orchestrator
	hooks        *hooks

	// search clients, built on first use
	searchMu  stdsync.Mutex
	searchers map[string]search.Client

	closeOnce stdsync.Once
	closeErr  error
}

// New creates a new Client instance with the given options.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
	defer cancel()

	c := &client{
		options:   o,
		hooks:     newHooks(),
		searchers: make(map[string]search.Client),
	}

	// provider registry: embedded or given, plus an optional override file
	if c.registry, err = loadRegistry(o); err != nil {
		return nil, err
	}

	if o.registerer != nil {
		c.metrics = metrics.New(o.registerer)
	}

	// one bounded HTTP client per external system
	userAgent := o.userAgent
	if userAgent == "" {
		userAgent = transport.UserAgent(o.version)
	}
	poolOpts := []transport.Option{transport.WithUserAgent(userAgent)}
	if c.metrics != nil {
		poolOpts = append(poolOpts, transport.WithObserver(c.metrics))
	}
	c.pool = transport.NewPool(o.http, o.perSystem, poolOpts...)

	canon, err := store.NewCanonicalizer(o.aliases, o.idRules...)
	if err != nil {
		return nil, err
	}

	backend := o.backend
	if backend == nil {
		if backend, err = openStore(ctx, o.storage); err != nil {
			return nil, err
		}
	}
	c.store = store.NewReconciler(backend, canon)

	c.cache = o.cacheStore
	if c.cache == nil {
		if c.cache, err = cache.Open(ctx, o.cache); err != nil {
			_ = backend.Close()
			return nil, err
		}
	}

	sparqlURL := c.endpoint(EndpointSPARQL, constants.WikidataSPARQL)
	service := resolve.New(c.registry,
		c.pool.Client(transport.SystemSPARQL),
		c.pool.Client(transport.SystemWikipedia),
		resolve.WithSPARQLEndpoint(sparqlURL),
		resolve.WithWikipediaAPI(c.endpoint(EndpointWikipedia, constants.WikipediaAPI)),
		resolve.WithMetrics(c.metrics),
	)
	c.resolver = service
	if c.cache != nil {
		c.resolver = resolve.NewCached(service, c.cache, o.cache.TTL, c.metrics)
	}

	claims := crossref.New(c.registry, c.pool.Client(transport.SystemWikidata),
		crossref.WithLocale(o.locale),
		crossref.WithAPIEndpoint(c.endpoint(EndpointWikidata, constants.WikidataAPI)),
		crossref.WithFormatterDiscovery(c.pool.Client(transport.SystemSPARQL), sparqlURL),
	)
	concordances := metagrid.New(c.pool.Client(transport.SystemMetagrid))

	c.orchestrator = sync.New(c.store, c.registry, c.resolver, claims, concordances).
		WithMetrics(c.metrics).
		OnReconciled(c.hooks.reconciled)

	logging.Debug().
		Int("providers", c.registry.Len()).
		Str("store", backend.Name()).
		Bool("cache", c.cache != nil).
		Msg("Resources client created")

	return c, nil
}

func loadRegistry(o *options) (*providers.Registry, error) {
	reg := o.registry
	if reg == nil {
		var err error
		if reg, err = providers.Default(); err != nil {
			return nil, err
		}
	}
	if o.providersFile == "" {
		return reg, nil
	}
	extra, err := providers.LoadFile(o.providersFile)
	if err != nil {
		return nil, err
	}
	return reg.Merge(extra)
}

func (c *client) endpoint(name, fallback string) string {
	if u := c.options.endpoints[name]; u != "" {
		return u
	}
	return fallback
}

// Registry implements Client.
func (c *client) Registry() *providers.Registry {
	return c.registry
}

// Resolve implements Resolver.
func (c *client) Resolve(ctx context.Context, provider, id string) lookup.Result[string] {
	canon := c.store.Canonical()
	provider = canon.Provider(provider)
	return c.resolver.Resolve(ctx, provider, canon.ProviderID(provider, id))
}

// Close implements Client. It is safe to call more than once.
func (c *client) Close() error {
	c.closeOnce.Do(func() {
		var errs []error
		if err := c.store.Close(); err != nil {
			errs = append(errs, err)
		}
		if c.cache != nil {
			if err := c.cache.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		c.closeErr = errors.Join(errs...)
	})
	return c.closeErr
}

// searchDeps are the collaborators handed to search-client factories.
func (c *client) searchDeps() registry.Deps {
	return registry.Deps{
		Pool:      c.pool,
		Locale:    c.options.locale,
		Geonames:  c.options.geonames,
		Metrics:   c.metrics,
		Endpoints: c.options.endpoints,
	}
}
