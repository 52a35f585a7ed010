package store

import (
	"maps"
	"net/url"
	"regexp"
	"strings"

	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/resource"
)

// Rule rewrites identifiers of one provider before they are stored, e.g.
// stripping a URL prefix that some sources include.
type Rule struct {
	Provider string `mapstructure:"provider" yaml:"provider"` // Canonical provider key the rule applies to
	Pattern  string `mapstructure:"pattern" yaml:"pattern"`   // Regular expression matched against the id
	Replace  string `mapstructure:"replace" yaml:"replace"`   // Replacement, may reference groups as $1

	re *regexp.Regexp
}

// Canonicalizer folds provider keys and identifiers into their stored form.
// A nil *Canonicalizer only lowercases keys and URL-decodes identifiers.
type Canonicalizer struct {
	aliases map[string]string
	rules   map[string][]Rule
}

// NewCanonicalizer builds a canonicalizer from an alias table (historical
// key to current key) and identifier rewrite rules.
func NewCanonicalizer(aliases map[string]string, rules ...Rule) (*Canonicalizer, error) {
	c := &Canonicalizer{
		aliases: make(map[string]string, len(aliases)),
		rules:   make(map[string][]Rule),
	}
	for from, to := range aliases {
		from, to = normalizeKey(from), normalizeKey(to)
		if from == "" || to == "" {
			return nil, errors.NewValidationError("aliases", from+"="+to, "alias keys cannot be empty")
		}
		c.aliases[from] = to
	}

	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, errors.WrapValidation("id_rules."+r.Provider, err)
		}
		r.re = re
		r.Provider = c.Provider(r.Provider)
		if r.Provider == "" {
			return nil, errors.NewValidationError("id_rules", r.Pattern, "rule needs a provider")
		}
		c.rules[r.Provider] = append(c.rules[r.Provider], r)
	}
	return c, nil
}

// MustCanonicalizer is NewCanonicalizer for static tables; it panics on error.
func MustCanonicalizer(aliases map[string]string, rules ...Rule) *Canonicalizer {
	c, err := NewCanonicalizer(aliases, rules...)
	if err != nil {
		panic(err)
	}
	return c
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Provider returns the canonical provider key: lowercased, trimmed and
// mapped through the alias table.
func (c *Canonicalizer) Provider(key string) string {
	key = normalizeKey(key)
	if c == nil {
		return key
	}
	if to, ok := c.aliases[key]; ok {
		return to
	}
	return key
}

// ProviderID returns the stored form of id for a canonical provider:
// URL-decoded, trimmed, then rewritten by the provider's rules in order.
func (c *Canonicalizer) ProviderID(provider, id string) string {
	if decoded, err := url.QueryUnescape(id); err == nil {
		id = decoded
	}
	id = strings.TrimSpace(id)
	if c == nil {
		return id
	}
	for _, r := range c.rules[provider] {
		id = r.re.ReplaceAllString(id, r.Replace)
	}
	return id
}

// Triple canonicalizes a triple's provider and identifier.
func (c *Canonicalizer) Triple(t resource.Triple) resource.Triple {
	t.Provider = c.Provider(t.Provider)
	t.ProviderID = c.ProviderID(t.Provider, t.ProviderID)
	t.URL = strings.TrimSpace(t.URL)
	return t
}

// Aliases returns a copy of the alias table.
func (c *Canonicalizer) Aliases() map[string]string {
	if c == nil {
		return map[string]string{}
	}
	return maps.Clone(c.aliases)
}
