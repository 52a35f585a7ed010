// Package registry holds the search-client factories. Client packages
// register themselves in init(); callers build a client for a provider
// from the provider registry.
package registry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/kraenzle-ritter/resources/internal/metrics"
	"github.com/kraenzle-ritter/resources/internal/transport"
	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/providers"
	"github.com/kraenzle-ritter/resources/pkg/search"
)

// GeonamesSettings configures the Geonames client.
type GeonamesSettings struct {
	Username      string `mapstructure:"username" yaml:"username"`             // Registered Geonames account
	ContinentCode string `mapstructure:"continent_code" yaml:"continent_code"` // Restrict hits to one continent, e.g. EU
	CountryBias   string `mapstructure:"country_bias" yaml:"country_bias"`     // List hits from this country first, e.g. CH
}

// Deps are the shared collaborators handed to every factory.
type Deps struct {
	Pool     *transport.Pool
	Locale   string
	Geonames GeonamesSettings
	Metrics  *metrics.Metrics

	// Endpoints overrides a client's base URL by factory name.
	Endpoints map[string]string
}

// Endpoint returns the configured base URL for name or fallback.
func (d Deps) Endpoint(name, fallback string) string {
	if u, ok := d.Endpoints[name]; ok && u != "" {
		return u
	}
	return fallback
}

// Factory builds a search client for one provider entry.
type Factory func(p providers.Provider, deps Deps) (search.Client, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register registers a factory under a provider key or a family name.
// This is called by client packages in their init() functions.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[name]; dup {
		panic(fmt.Sprintf("search client %q registered twice", name))
	}
	factories[name] = f
}

// Lookup returns the factory for a provider: one registered under its key
// wins over one registered under its family.
func Lookup(p providers.Provider) (Factory, bool) {
	mu.RLock()
	defer mu.RUnlock()
	if f, ok := factories[p.Key]; ok {
		return f, true
	}
	f, ok := factories[p.Family.String()]
	return f, ok
}

// Has reports whether p can be searched.
func Has(p providers.Provider) bool {
	_, ok := Lookup(p)
	return ok
}

// Build creates the search client for p.
func Build(p providers.Provider, deps Deps) (search.Client, error) {
	f, ok := Lookup(p)
	if !ok {
		return nil, fmt.Errorf("search %s: %w", p.Key, errors.ErrUnsupported)
	}
	if deps.Pool == nil {
		deps.Pool = transport.NewPool(transport.DefaultSettings(), nil)
	}
	return f(p, deps)
}

// Names returns the registered factory names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
