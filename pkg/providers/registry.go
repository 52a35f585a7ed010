// Package providers holds the read-only registry of authority systems: their
// URL templates, Wikidata properties, locales and identifier patterns.
//
// A Registry is built once, validated at construction, and then shared by the
// resolver, the fetchers and the store. It never changes after New returns.
//
// Example:
//
//	reg, err := providers.Default()
//	if err != nil {
//	    return err
//	}
//	gnd := reg.MustGet("gnd")
//	fmt.Println(gnd.URL("118519522", "de")) // http://d-nb.info/gnd/118519522
package providers

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/kraenzle-ritter/resources/pkg/errors"
)

var (
	keyPattern      = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)
	propertyPattern = regexp.MustCompile(`^P\d+$`)
)

// Registry is an immutable set of providers indexed by key.
type Registry struct {
	providers  map[string]Provider
	byProperty map[string]string
	keys       []string
}

// New validates the given definitions and builds a registry.
// Keys must be unique, lowercase and non-empty.
func New(defs ...Provider) (*Registry, error) {
	r := &Registry{
		providers:  make(map[string]Provider, len(defs)),
		byProperty: make(map[string]string),
	}

	for _, def := range defs {
		p, err := prepare(def)
		if err != nil {
			return nil, err
		}
		if _, exists := r.providers[p.Key]; exists {
			return nil, errors.NewValidationError("key", p.Key, "duplicate provider key")
		}
		if p.WikidataProperty != "" {
			if other, taken := r.byProperty[p.WikidataProperty]; taken {
				return nil, errors.NewValidationError("wikidata_property", p.WikidataProperty,
					fmt.Sprintf("already used by provider %q", other))
			}
			r.byProperty[p.WikidataProperty] = p.Key
		}
		r.providers[p.Key] = p
	}

	r.keys = slices.Sorted(maps.Keys(r.providers))
	return r, nil
}

// prepare normalizes a definition and compiles its identifier pattern.
func prepare(p Provider) (Provider, error) {
	p.Key = strings.TrimSpace(p.Key)
	if !keyPattern.MatchString(p.Key) {
		return p, errors.NewValidationError("key", p.Key, "must be a non-empty lowercase key")
	}

	family, err := ParseFamily(string(p.Family))
	if err != nil {
		return p, errors.WrapValidation(p.Key+".family", err)
	}
	p.Family = family

	if p.Family == FamilyWikipedia && p.Locale == "" {
		return p, errors.NewValidationError(p.Key+".locale", "", "wikipedia providers need a language edition")
	}
	if p.WikidataProperty != "" && !propertyPattern.MatchString(p.WikidataProperty) {
		return p, errors.NewValidationError(p.Key+".wikidata_property", p.WikidataProperty, "must look like P123")
	}
	if p.URLPattern != "" && !strings.Contains(p.URLPattern, PlaceholderID) {
		return p, errors.NewValidationError(p.Key+".url_pattern", p.URLPattern, "missing {ID} placeholder")
	}
	if p.Regex != "" {
		re, err := regexp.Compile(`^(?:` + p.Regex + `)$`)
		if err != nil {
			return p, errors.WrapValidation(p.Key+".regex", err)
		}
		p.re = re
	}
	if p.Name == "" {
		p.Name = p.Key
	}

	p.Locales = slices.Clone(p.Locales)
	p.Description = maps.Clone(p.Description)
	if p.Beacon != nil {
		beacon := *p.Beacon
		p.Beacon = &beacon
	}
	return p, nil
}

// Get returns the provider registered under key.
func (r *Registry) Get(key string) (Provider, bool) {
	p, ok := r.providers[strings.ToLower(strings.TrimSpace(key))]
	return p, ok
}

// MustGet returns the provider registered under key and panics if there is none.
func (r *Registry) MustGet(key string) Provider {
	p, ok := r.Get(key)
	if !ok {
		panic(fmt.Sprintf("providers: unknown provider %q", key))
	}
	return p
}

// Has reports whether key is registered.
func (r *Registry) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// ByProperty returns the provider whose ids live under a Wikidata property.
func (r *Registry) ByProperty(property string) (Provider, bool) {
	key, ok := r.byProperty[property]
	if !ok {
		return Provider{}, false
	}
	return r.providers[key], true
}

// All returns every provider sorted by key.
func (r *Registry) All() []Provider {
	out := make([]Provider, 0, len(r.keys))
	for _, key := range r.keys {
		out = append(out, r.providers[key])
	}
	return out
}

// Keys returns the sorted provider keys.
func (r *Registry) Keys() []string {
	return slices.Clone(r.keys)
}

// WithProperty returns the providers that declare a Wikidata property,
// sorted by key.
func (r *Registry) WithProperty() []Provider {
	var out []Provider
	for _, key := range r.keys {
		if p := r.providers[key]; p.WikidataProperty != "" {
			out = append(out, p)
		}
	}
	return out
}

// OfFamily returns the providers of one family, sorted by key.
func (r *Registry) OfFamily(f Family) []Provider {
	var out []Provider
	for _, key := range r.keys {
		if p := r.providers[key]; p.Family == f {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of providers.
func (r *Registry) Len() int {
	return len(r.providers)
}

// Merge returns a new registry holding r's providers overlaid with other's.
// Entries of other replace entries of r with the same key.
func (r *Registry) Merge(other *Registry) (*Registry, error) {
	merged := maps.Clone(r.providers)
	if other != nil {
		maps.Copy(merged, other.providers)
	}

	defs := make([]Provider, 0, len(merged))
	for _, key := range slices.Sorted(maps.Keys(merged)) {
		defs = append(defs, merged[key])
	}
	return New(defs...)
}
