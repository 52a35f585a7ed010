package resources

import (
	"context"

	"github.com/kraenzle-ritter/resources/internal/sources"
	"github.com/kraenzle-ritter/resources/internal/sources/registry"
	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/lookup"
	"github.com/kraenzle-ritter/resources/pkg/providers"
	"github.com/kraenzle-ritter/resources/pkg/search"
)

// Compile-time interface check to ensure proper implementation.
var _ Searcher = (*client)(nil)

// Searcher searches providers by name.
type Searcher interface {
	// Search queries one provider. Unknown providers and providers without
	// a search client fail; a search without hits is Empty.
	Search(ctx context.Context, provider, query string, opts search.Options) lookup.Result[[]search.Result]

	// Searchable lists the providers that can be searched.
	Searchable() []providers.Provider
}

// Search implements Searcher.
func (c *client) Search(ctx context.Context, provider, query string, opts search.Options) lookup.Result[[]search.Result] {
	if opts.Locale == "" {
		opts.Locale = c.options.locale
	}
	sc, err := c.searcher(c.store.Canonical().Provider(provider))
	if err != nil {
		return lookup.Failed[[]search.Result](err)
	}
	return sc.Search(ctx, query, opts)
}

// Searchable implements Searcher.
func (c *client) Searchable() []providers.Provider {
	return sources.Searchable(c.registry)
}

// searcher returns the cached search client for key, building it on first
// use.
func (c *client) searcher(key string) (search.Client, error) {
	c.searchMu.Lock()
	defer c.searchMu.Unlock()

	if sc, ok := c.searchers[key]; ok {
		return sc, nil
	}
	p, ok := c.registry.Get(key)
	if !ok {
		return nil, errors.NewNotFoundError("provider", key)
	}
	sc, err := registry.Build(p, c.searchDeps())
	if err != nil {
		return nil, err
	}
	c.searchers[key] = sc
	return sc, nil
}
