// Package sources links every search client into the binary. Importing it
// registers the clients' factories with the registry package.
package sources

import (
	"github.com/kraenzle-ritter/resources/internal/sources/registry"
	"github.com/kraenzle-ritter/resources/pkg/providers"

	// Import all search clients for auto-registration via init()
	_ "github.com/kraenzle-ritter/resources/internal/sources/geonames"
	_ "github.com/kraenzle-ritter/resources/internal/sources/gnd"
	_ "github.com/kraenzle-ritter/resources/internal/sources/metagrid"
	_ "github.com/kraenzle-ritter/resources/internal/sources/wikidata"
	_ "github.com/kraenzle-ritter/resources/internal/sources/wikipedia"
)

// Searchable returns the providers of reg that have a search client.
func Searchable(reg *providers.Registry) []providers.Provider {
	var out []providers.Provider
	for _, p := range reg.All() {
		if registry.Has(p) {
			out = append(out, p)
		}
	}
	return out
}
