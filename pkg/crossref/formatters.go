package crossref

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/kraenzle-ritter/resources/internal/transport"
	"github.com/kraenzle-ritter/resources/pkg/logging"
)

// formatterProperty is the Wikidata property holding a property's
// formatter URL, with $1 standing for the value.
const formatterProperty = "P1630"

type formatterResponse struct {
	Results struct {
		Bindings []struct {
			Property struct {
				Value string `json:"value"`
			} `json:"property"`
			Formatter struct {
				Value string `json:"value"`
			} `json:"formatter"`
		} `json:"bindings"`
	} `json:"results"`
}

// FormatterQuery selects the formatter URLs of the given properties.
func FormatterQuery(properties []string) string {
	values := make([]string, 0, len(properties))
	for _, p := range properties {
		values = append(values, "wd:"+p)
	}
	return fmt.Sprintf("SELECT ?property ?formatter WHERE { VALUES ?property { %s } ?property wdt:%s ?formatter }",
		strings.Join(values, " "), formatterProperty)
}

// formatter returns the formatter URL for property, discovering the
// formatters of every template-less provider on first use. A failed
// discovery is retried on the next call.
func (f *Fetcher) formatter(ctx context.Context, property string) string {
	if f.sparql == nil {
		return ""
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.discovered {
		formatters, ok := f.discover(ctx)
		if ok {
			f.formatters = formatters
			f.discovered = true
		}
	}
	return f.formatters[property]
}

func (f *Fetcher) discover(ctx context.Context) (map[string]string, bool) {
	var properties []string
	for _, p := range f.registry.WithProperty() {
		if !p.HasTemplate() {
			properties = append(properties, p.WikidataProperty)
		}
	}
	formatters := make(map[string]string, len(properties))
	if len(properties) == 0 {
		return formatters, true
	}

	params := url.Values{}
	params.Set("query", FormatterQuery(properties))
	params.Set("format", "json")

	resp, ok := transport.Fetch[formatterResponse](ctx, f.sparql, f.sparqlURL+"?"+params.Encode()).Get()
	if !ok {
		return nil, false
	}

	for _, b := range resp.Results.Bindings {
		prop := b.Property.Value
		if i := strings.LastIndexByte(prop, '/'); i >= 0 {
			prop = prop[i+1:]
		}
		if _, seen := formatters[prop]; seen || !strings.Contains(b.Formatter.Value, "$1") {
			continue
		}
		formatters[prop] = b.Formatter.Value
	}

	logging.FromContext(ctx).Debug().Int("count", len(formatters)).Msg("Discovered formatter URLs")
	return formatters, true
}
