package transport

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kraenzle-ritter/resources/pkg/constants"
)

// External systems with their own bounds.
const (
	SystemWikidata  = "wikidata"
	SystemSPARQL    = "sparql"
	SystemWikipedia = "wikipedia"
	SystemGND       = "gnd"
	SystemGeonames  = "geonames"
	SystemMetagrid  = "metagrid"
)

// Pool hands out one Client per external system, each bounded by that
// system's settings.
type Pool struct {
	mu        sync.Mutex
	defaults  Settings
	perSystem map[string]Settings
	opts      []Option
	clients   map[string]*Client
}

// NewPool creates a pool. Systems without an entry in perSystem use
// defaults; Geonames gets a longer timeout unless configured otherwise.
func NewPool(defaults Settings, perSystem map[string]Settings, opts ...Option) *Pool {
	defaults = defaults.withDefaults(DefaultSettings())

	systems := map[string]Settings{
		SystemGeonames: {Timeout: constants.GeonamesTimeout},
	}
	for name, s := range perSystem {
		systems[strings.ToLower(name)] = s
	}

	return &Pool{
		defaults:  defaults,
		perSystem: systems,
		opts:      opts,
		clients:   make(map[string]*Client),
	}
}

// Settings returns the effective bounds for system.
func (p *Pool) Settings(system string) Settings {
	return p.perSystem[system].withDefaults(p.defaults)
}

// Client returns the shared client for system. Extra options produce a
// dedicated client that is not cached.
func (p *Pool) Client(system string, extra ...Option) *Client {
	if len(extra) > 0 {
		return New(system, p.Settings(system), append(append([]Option{}, p.opts...), extra...)...)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[system]; ok {
		return c
	}
	c := New(system, p.Settings(system), p.opts...)
	p.clients[system] = c
	return c
}

// UserAgent returns the User-Agent for outgoing requests. The environment
// variable RESOURCES_USER_AGENT overrides the default
// "resources/<version> (+https://github.com/kraenzle-ritter/resources)".
func UserAgent(version string) string {
	if ua := strings.TrimSpace(os.Getenv(constants.UserAgentEnv)); ua != "" {
		return ua
	}
	if version == "" {
		version = "dev"
	}
	return fmt.Sprintf("resources/%s (+%s)", version, constants.ProjectURL)
}
