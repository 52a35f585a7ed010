// Package config holds the runtime configuration shared by the CLI and the
// HTTP server, and turns it into client options.
package config

import (
	"maps"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kraenzle-ritter/resources"
	"github.com/kraenzle-ritter/resources/internal/cache"
	"github.com/kraenzle-ritter/resources/internal/transport"
	"github.com/kraenzle-ritter/resources/pkg/constants"
	"github.com/kraenzle-ritter/resources/pkg/errors"
)

// HTTPDefault is the key of the default bounds in Config.HTTP.
const HTTPDefault = "default"

// Config is the runtime configuration.
type Config struct {
	Locale        string                        `mapstructure:"locale" yaml:"locale"`                 // Preferred locale for labels and searches
	Limit         int                           `mapstructure:"limit" yaml:"limit"`                   // Default number of search hits
	UserAgent     string                        `mapstructure:"user_agent" yaml:"user_agent"`         // User-Agent override for outgoing requests
	HTTP          map[string]transport.Settings `mapstructure:"http" yaml:"http"`                     // Bounds per external system plus "default"
	Exclude       []string                      `mapstructure:"exclude" yaml:"exclude"`               // Providers never created or updated by a sync
	Aliases       map[string]string             `mapstructure:"aliases" yaml:"aliases"`               // Legacy provider key to canonical key
	IDRules       []resources.IDRule            `mapstructure:"id_rules" yaml:"id_rules"`             // Identifier rewrites applied before storing
	ProvidersFile string                        `mapstructure:"providers_file" yaml:"providers_file"` // Registry entries merged over the embedded ones
	Throttle      time.Duration                 `mapstructure:"throttle" yaml:"throttle"`             // Pause between subjects of a bulk re-sync

	Store    resources.StoreConfig      `mapstructure:"store" yaml:"store"`
	Cache    resources.CacheConfig      `mapstructure:"cache" yaml:"cache"`
	Geonames resources.GeonamesSettings `mapstructure:"geonames" yaml:"geonames"`
	Server   ServerConfig               `mapstructure:"server" yaml:"server"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" yaml:"-"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Systems are the external systems with their own HTTP bounds.
var Systems = []string{
	transport.SystemWikidata,
	transport.SystemSPARQL,
	transport.SystemWikipedia,
	transport.SystemGND,
	transport.SystemGeonames,
	transport.SystemMetagrid,
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	http := map[string]transport.Settings{HTTPDefault: transport.DefaultSettings()}
	for _, system := range Systems {
		http[system] = transport.DefaultSettings()
	}
	http[transport.SystemGeonames] = transport.Settings{
		Timeout:        constants.GeonamesTimeout,
		ConnectTimeout: constants.DefaultConnectTimeout,
	}

	return &Config{
		Locale:   constants.DefaultLocale,
		Limit:    constants.DefaultLimit,
		HTTP:     http,
		Throttle: constants.DefaultThrottle,
		Store: resources.StoreConfig{
			Driver: resources.StoreMemory,
			Table:  constants.DefaultTable,
		},
		Cache: resources.CacheConfig{
			Driver: cache.DriverMemory,
			TTL:    constants.CacheTTL,
		},
		Server: ServerConfig{
			Host: constants.DefaultHost,
			Port: constants.DefaultPort,
		},
	}
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(field string, value any, msg string) {
		errs = append(errs, errors.NewValidationError(field, value, msg))
	}

	if strings.TrimSpace(c.Locale) == "" {
		invalid("locale", c.Locale, "locale is required")
	}
	if c.Limit < 1 || c.Limit > constants.MaxLimit {
		invalid("limit", c.Limit, "limit must be between 1 and "+strconv.Itoa(constants.MaxLimit))
	}
	if c.Throttle < 0 {
		invalid("throttle", c.Throttle, "throttle must be non-negative")
	}
	for name, s := range c.HTTP {
		if s.Timeout < 0 || s.ConnectTimeout < 0 {
			invalid("http."+name, s, "timeouts must be non-negative")
		}
	}

	switch strings.ToLower(c.Store.Driver) {
	case resources.StoreMemory, resources.StoreBadger:
	case resources.StorePostgres:
		if c.Store.DSN == "" {
			invalid("store.dsn", c.Store.DSN, "dsn is required for the postgres driver")
		}
	default:
		invalid("store.driver", c.Store.Driver, "driver must be memory, postgres or badger")
	}

	switch strings.ToLower(c.Cache.Driver) {
	case "", cache.DriverNone, cache.DriverMemory:
	case cache.DriverRedis:
		if c.Cache.RedisURL == "" {
			invalid("cache.redis_url", c.Cache.RedisURL, "redis_url is required for the redis driver")
		}
	default:
		invalid("cache.driver", c.Cache.Driver, "driver must be none, memory or redis")
	}
	if c.Cache.TTL < 0 {
		invalid("cache.ttl", c.Cache.TTL, "ttl must be non-negative")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		invalid("server.port", c.Server.Port, "port out of range")
	}
	return errors.Join(errs...)
}

// Options converts the configuration into client options. A nil reg
// disables metrics.
func (c *Config) Options(version string, reg prometheus.Registerer) []resources.Option {
	opts := []resources.Option{
		resources.WithLocale(c.Locale),
		resources.WithVersion(version),
		resources.WithUserAgent(c.UserAgent),
		resources.WithStoreConfig(c.Store),
		resources.WithCacheConfig(c.Cache),
		resources.WithAliases(c.Aliases),
		resources.WithIDRules(c.IDRules...),
		resources.WithDefaultExclude(c.Exclude...),
		resources.WithThrottle(c.Throttle),
		resources.WithGeonames(c.Geonames),
		resources.WithProvidersFile(c.ProvidersFile),
	}
	for _, name := range slices.Sorted(maps.Keys(c.HTTP)) {
		if name == HTTPDefault {
			opts = append(opts, resources.WithHTTPSettings(c.HTTP[name]))
			continue
		}
		opts = append(opts, resources.WithSystemHTTPSettings(name, c.HTTP[name]))
	}
	if reg != nil {
		opts = append(opts, resources.WithMetrics(reg))
	}
	return opts
}
