package resources

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kraenzle-ritter/resources/internal/cache"
	"github.com/kraenzle-ritter/resources/internal/sources/registry"
	"github.com/kraenzle-ritter/resources/internal/transport"
	"github.com/kraenzle-ritter/resources/pkg/constants"
	"github.com/kraenzle-ritter/resources/pkg/providers"
	"github.com/kraenzle-ritter/resources/pkg/store"
)

// Re-exported configuration types.
type (
	// HTTPSettings bounds the calls made to one external system.
	HTTPSettings = transport.Settings

	// CacheConfig selects the resolution cache.
	CacheConfig = cache.Config

	// GeonamesSettings configures the Geonames search client.
	GeonamesSettings = registry.GeonamesSettings

	// IDRule rewrites stored identifiers of one provider.
	IDRule = store.Rule
)

// Endpoint names accepted by WithEndpoint.
const (
	EndpointWikidata  = transport.SystemWikidata  // Wikidata action API
	EndpointSPARQL    = transport.SystemSPARQL    // Wikidata query service
	EndpointWikipedia = transport.SystemWikipedia // Wikipedia action API, may contain {LOCALE}
	EndpointGND       = transport.SystemGND       // lobid GND search
	EndpointGeonames  = transport.SystemGeonames  // Geonames web service base
	EndpointMetagrid  = transport.SystemMetagrid  // Metagrid API base
)

// Option is a function that configures a Client.
type Option func(*options) error

// options holds the configuration of a Client.
type options struct {
	registry      *providers.Registry
	providersFile string

	locale    string
	version   string
	userAgent string
	http      HTTPSettings
	perSystem map[string]HTTPSettings
	endpoints map[string]string

	backend store.Backend
	storage StoreConfig

	cacheStore cache.Store
	cache      CacheConfig

	aliases  map[string]string
	idRules  []IDRule
	exclude  []string
	throttle time.Duration

	geonames   GeonamesSettings
	registerer prometheus.Registerer
}

// defaults returns the default options.
func defaults() *options {
	return &options{
		locale:    constants.DefaultLocale,
		http:      transport.DefaultSettings(),
		perSystem: make(map[string]HTTPSettings),
		endpoints: make(map[string]string),
		storage:   StoreConfig{Driver: StoreMemory, Table: constants.DefaultTable},
		cache:     CacheConfig{Driver: cache.DriverMemory},
		throttle:  constants.DefaultThrottle,
	}
}

// apply applies opts in order and stops at the first error.
func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithRegistry uses reg instead of the embedded provider registry.
func WithRegistry(reg *providers.Registry) Option {
	return func(o *options) error {
		o.registry = reg
		return nil
	}
}

// WithProvidersFile merges the providers of a YAML file over the embedded
// registry. Entries with the same key replace the embedded ones.
func WithProvidersFile(path string) Option {
	return func(o *options) error {
		o.providersFile = path
		return nil
	}
}

// WithLocale sets the preferred locale for labels and searches.
func WithLocale(locale string) Option {
	return func(o *options) error {
		if locale != "" {
			o.locale = locale
		}
		return nil
	}
}

// WithVersion sets the version reported in the default User-Agent.
func WithVersion(version string) Option {
	return func(o *options) error {
		o.version = version
		return nil
	}
}

// WithUserAgent overrides the User-Agent sent to every external system.
func WithUserAgent(ua string) Option {
	return func(o *options) error {
		o.userAgent = ua
		return nil
	}
}

// WithHTTPSettings sets the default bounds for outgoing requests.
func WithHTTPSettings(s HTTPSettings) Option {
	return func(o *options) error {
		o.http = s
		return nil
	}
}

// WithSystemHTTPSettings sets the bounds for one external system.
func WithSystemHTTPSettings(system string, s HTTPSettings) Option {
	return func(o *options) error {
		o.perSystem[system] = s
		return nil
	}
}

// WithEndpoint overrides the base URL of an external system, e.g. to point
// the client at a mirror or a test server.
func WithEndpoint(name, url string) Option {
	return func(o *options) error {
		o.endpoints[name] = url
		return nil
	}
}

// WithStore uses backend for persistence. The client closes it on Close.
func WithStore(backend store.Backend) Option {
	return func(o *options) error {
		o.backend = backend
		return nil
	}
}

// WithStoreConfig selects the persistence backend by driver.
func WithStoreConfig(cfg StoreConfig) Option {
	return func(o *options) error {
		o.storage = cfg
		return nil
	}
}

// WithCache uses s as the resolution cache.
func WithCache(s cache.Store) Option {
	return func(o *options) error {
		o.cacheStore = s
		return nil
	}
}

// WithCacheConfig selects the resolution cache by driver. The "none"
// driver disables caching.
func WithCacheConfig(cfg CacheConfig) Option {
	return func(o *options) error {
		o.cache = cfg
		return nil
	}
}

// WithAliases maps legacy provider keys to canonical ones.
func WithAliases(aliases map[string]string) Option {
	return func(o *options) error {
		o.aliases = aliases
		return nil
	}
}

// WithIDRules adds identifier rewrite rules applied before persistence.
func WithIDRules(rules ...IDRule) Option {
	return func(o *options) error {
		o.idRules = append(o.idRules, rules...)
		return nil
	}
}

// WithDefaultExclude excludes providers from every sync in addition to the
// ones a call excludes itself.
func WithDefaultExclude(providers ...string) Option {
	return func(o *options) error {
		o.exclude = append(o.exclude, providers...)
		return nil
	}
}

// WithThrottle sets the default pause between subjects of a bulk re-sync.
func WithThrottle(d time.Duration) Option {
	return func(o *options) error {
		o.throttle = d
		return nil
	}
}

// WithGeonames configures the Geonames search client.
func WithGeonames(s GeonamesSettings) Option {
	return func(o *options) error {
		o.geonames = s
		return nil
	}
}

// WithMetrics registers the client's collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}
