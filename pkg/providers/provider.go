package providers

import (
	"regexp"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// URL template placeholders, substituted by literal string replacement.
const (
	PlaceholderID     = "{ID}"
	PlaceholderLocale = "{LOCALE}"
)

// Provider is a read-only registry entry describing one authority system.
type Provider struct {
	Key              string            `json:"key" yaml:"key"`                                                 // Canonical lowercase key, e.g. "gnd"
	Name             string            `json:"name" yaml:"name"`                                               // Display name
	Description      map[string]string `json:"description,omitempty" yaml:"description,omitempty"`             // Human label per locale
	Family           Family            `json:"family" yaml:"family"`                                           // Resolution strategy
	Locale           string            `json:"locale,omitempty" yaml:"locale,omitempty"`                       // Language edition for the wikipedia family
	Locales          []string          `json:"locales,omitempty" yaml:"locales,omitempty"`                     // Locales accepted by {LOCALE}
	URLPattern       string            `json:"url_pattern,omitempty" yaml:"url_pattern,omitempty"`             // Human-navigable URL template
	APIURLPattern    string            `json:"api_url_pattern,omitempty" yaml:"api_url_pattern,omitempty"`     // Machine-readable URL template
	WikidataProperty string            `json:"wikidata_property,omitempty" yaml:"wikidata_property,omitempty"` // Wikidata property carrying this provider's ids
	Regex            string            `json:"regex,omitempty" yaml:"regex,omitempty"`                         // Identifier validation pattern
	Beacon           *Beacon           `json:"beacon,omitempty" yaml:"beacon,omitempty"`                       // Optional cross-reference source
	Comment          string            `json:"comment,omitempty" yaml:"comment,omitempty"`                     // Free-form maintainer note

	re *regexp.Regexp
}

// Beacon describes a BEACON cross-reference file for a provider.
type Beacon struct {
	URL    string `json:"url" yaml:"url"`
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// URL builds the human-navigable URL for id. It returns "" when the provider
// has no URL template.
func (p Provider) URL(id, locale string) string {
	return p.expand(p.URLPattern, id, locale)
}

// APIURL builds the machine-readable URL for id, if the provider has one.
func (p Provider) APIURL(id, locale string) string {
	return p.expand(p.APIURLPattern, id, locale)
}

func (p Provider) expand(pattern, id, locale string) string {
	if pattern == "" {
		return ""
	}
	out := strings.ReplaceAll(pattern, PlaceholderID, id)
	if strings.Contains(out, PlaceholderLocale) {
		out = strings.ReplaceAll(out, PlaceholderLocale, p.ResolveLocale(locale))
	}
	return out
}

// ResolveLocale picks the locale substituted for {LOCALE}: the requested one
// if the provider lists it, otherwise the first listed locale. Providers of
// the wikipedia family always use their own language edition.
func (p Provider) ResolveLocale(locale string) string {
	if p.Family == FamilyWikipedia && p.Locale != "" {
		return p.Locale
	}
	if len(p.Locales) == 0 {
		return locale
	}
	if slices.Contains(p.Locales, locale) {
		return locale
	}
	return p.Locales[0]
}

// HasTemplate reports whether a URL can be built without formatter discovery.
func (p Provider) HasTemplate() bool {
	return p.URLPattern != ""
}

// Valid reports whether id matches the provider's identifier pattern.
// Providers without a pattern accept every id.
func (p Provider) Valid(id string) bool {
	if p.re == nil {
		return true
	}
	return p.re.MatchString(id)
}

// Label returns the best description for locale, falling back to the name
// and finally to the title-cased key.
func (p Provider) Label(locale string) string {
	if len(p.Description) > 0 {
		if d, ok := p.Description[locale]; ok && d != "" {
			return d
		}

		langs := make([]string, 0, len(p.Description))
		for l := range p.Description {
			langs = append(langs, l)
		}
		sort.Strings(langs)

		tags := make([]language.Tag, 0, len(langs))
		for _, l := range langs {
			tags = append(tags, language.Make(l))
		}
		_, idx, _ := language.NewMatcher(tags).Match(language.Make(locale))
		if d := p.Description[langs[idx]]; d != "" {
			return d
		}
	}
	if p.Name != "" && p.Name != p.Key {
		return p.Name
	}
	return cases.Title(language.Und).String(strings.ReplaceAll(p.Key, "-", " "))
}
