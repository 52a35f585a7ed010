package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kraenzle-ritter/resources/pkg/errors"
)

// EnvPrefix prefixes every environment variable read by Load, e.g.
// RESOURCES_STORE_DSN for store.dsn.
const EnvPrefix = "RESOURCES"

// ConfigName is the base name of the config file searched in the home
// directory and the working directory.
const ConfigName = ".resources"

// LoadOptions controls where Load looks for configuration.
type LoadOptions struct {
	// File is an explicit config file; empty searches the default locations.
	File string

	// EnvFiles are dotenv files loaded before the environment is read.
	// Variables already set are never overwritten, so earlier files win.
	EnvFiles []string
}

// DefaultEnvFiles are loaded when LoadOptions.EnvFiles is nil.
var DefaultEnvFiles = []string{".env.local", ".env"}

// Load reads the configuration from, in order of precedence:
// 1. Environment variables (RESOURCES_*)
// 2. .env files
// 3. Config file (~/.resources.yaml or ./.resources.yaml)
// 4. Defaults
//
// A missing config file is not an error; an explicit File that cannot be
// read is.
func Load(opts LoadOptions) (*Config, error) {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = DefaultEnvFiles
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	v := newViper()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "reading "+opts.File, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(ConfigName)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("config", "reading config file", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.NewConfigError("config", "decoding configuration", err)
	}
	cfg.File = v.ConfigFileUsed()
	return cfg, nil
}

// newViper returns a viper instance with the defaults registered, so that
// every key is also bound to its environment variable.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("locale", d.Locale)
	v.SetDefault("limit", d.Limit)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("exclude", []string{})
	v.SetDefault("providers_file", "")
	v.SetDefault("throttle", d.Throttle)
	for name, s := range d.HTTP {
		v.SetDefault("http."+name+".timeout", s.Timeout)
		v.SetDefault("http."+name+".connect_timeout", s.ConnectTimeout)
	}

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.path", "")
	v.SetDefault("store.table", d.Store.Table)

	v.SetDefault("cache.driver", d.Cache.Driver)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.prefix", "")

	v.SetDefault("geonames.username", "")
	v.SetDefault("geonames.continent_code", "")
	v.SetDefault("geonames.country_bias", "")

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	return v
}
