// Package constants provides shared constants used throughout the resources codebase.
// This includes timeouts, limits, endpoints, and other configuration values
// that should be consistent across the application.
package constants

import "time"

// Timeout constants define the default bounds for calls to external systems.
const (
	// DefaultTimeout is the total timeout for one request to an external API.
	DefaultTimeout = 10 * time.Second

	// DefaultConnectTimeout bounds connection establishment.
	DefaultConnectTimeout = 5 * time.Second

	// GeonamesTimeout is the total timeout for the Geonames search API.
	GeonamesTimeout = 15 * time.Second

	// CommandTimeout is the default timeout for CLI commands.
	CommandTimeout = 10 * time.Minute

	// ShutdownTimeout is the grace period for HTTP server shutdown.
	ShutdownTimeout = 5 * time.Second

	// DefaultThrottle is the fixed delay between subjects in a bulk re-sync.
	DefaultThrottle = 1 * time.Second
)

// File permission constants define standard Unix file permissions.
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants.
const (
	// DefaultLimit is the default number of search results per query.
	DefaultLimit = 5

	// MaxLimit caps the number of search results a caller may request.
	MaxLimit = 1000

	// BodyExcerptSize is how many bytes of an error response body are logged.
	BodyExcerptSize = 256

	// MaxBodySize caps how many bytes of an upstream response are read.
	MaxBodySize = 16 << 20
)

// Cache constants.
const (
	// CacheTTL is the default time-to-live for cached resolutions.
	CacheTTL = 24 * time.Hour

	// CacheCleanupInterval is how often expired in-process entries are removed.
	CacheCleanupInterval = 10 * time.Minute
)

// Locale and identity defaults.
const (
	// DefaultLocale is the preferred locale when none is configured.
	DefaultLocale = "de"

	// DefaultTable is the default table name for persisted resources.
	DefaultTable = "resources"

	// ProjectURL is embedded into the default User-Agent.
	ProjectURL = "https://github.com/kraenzle-ritter/resources"

	// UserAgentEnv overrides the default User-Agent header.
	UserAgentEnv = "RESOURCES_USER_AGENT"
)

// External endpoints.
const (
	// WikidataAPI is the Wikidata action API.
	WikidataAPI = "https://www.wikidata.org/w/api.php"

	// WikidataSPARQL is the Wikidata query service.
	WikidataSPARQL = "https://query.wikidata.org/sparql"

	// WikidataPage is the prefix of canonical Wikidata entity pages.
	WikidataPage = "https://www.wikidata.org/wiki/"

	// WikipediaAPI is the per-language Wikipedia action API; {LOCALE} is replaced.
	WikipediaAPI = "https://{LOCALE}.wikipedia.org/w/api.php"

	// LobidGND is the lobid GND search API.
	LobidGND = "https://lobid.org/gnd/search"

	// GeonamesAPI is the Geonames web service base.
	GeonamesAPI = "http://api.geonames.org/"

	// MetagridAPI is the Metagrid API base.
	MetagridAPI = "https://api.metagrid.ch/"
)

// Server defaults.
const (
	// DefaultHost is the default bind host of the HTTP API.
	DefaultHost = "localhost"

	// DefaultPort is the default port of the HTTP API.
	DefaultPort = 8080
)
