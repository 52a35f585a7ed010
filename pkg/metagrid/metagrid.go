// Package metagrid turns a Metagrid concordance into cross-reference
// triples.
package metagrid

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kraenzle-ritter/resources/internal/transport"
	"github.com/kraenzle-ritter/resources/pkg/constants"
	"github.com/kraenzle-ritter/resources/pkg/logging"
	"github.com/kraenzle-ritter/resources/pkg/lookup"
	"github.com/kraenzle-ritter/resources/pkg/resource"
)

// Concordance is one group of equivalent records.
type Concordance struct {
	ID        json.RawMessage `json:"id,omitempty"`
	Resources []Record        `json:"resources"`
}

// Record is one provider's entry in a concordance.
type Record struct {
	Provider struct {
		Slug string `json:"slug"`
	} `json:"provider"`
	Link struct {
		URI string `json:"uri"`
	} `json:"link"`
	Identifier json.RawMessage `json:"identifier,omitempty"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
}

// Response is the payload of a concordance or search endpoint.
type Response struct {
	Concordances []Concordance `json:"concordances"`
}

// ConcordanceURL returns the resource endpoint of a concordance id.
func ConcordanceURL(id string) string {
	return constants.MetagridAPI + "concordance/" + id + ".json"
}

// Fetcher reads concordances.
type Fetcher struct {
	client transport.Getter
}

// New creates a Fetcher.
func New(client transport.Getter) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch retrieves the concordance behind a subject's stored Metagrid URL
// and projects its first group into triples.
//
// Records missing a provider slug or a link are dropped. A payload without
// concordances[0].resources is Empty and logged as a warning; transport and
// decoding failures are Failed.
func (f *Fetcher) Fetch(ctx context.Context, metagridURL string) lookup.Result[[]resource.Triple] {
	metagridURL = strings.TrimSpace(metagridURL)
	if metagridURL == "" {
		return lookup.Empty[[]resource.Triple]("no metagrid url")
	}

	res := transport.Fetch[Response](ctx, f.client, metagridURL)
	resp, ok := res.Get()
	if !ok {
		return lookup.Failed[[]resource.Triple](res.Err())
	}

	logger := logging.FromContext(ctx)
	if len(resp.Concordances) == 0 || resp.Concordances[0].Resources == nil {
		logger.Warn().Str("url", metagridURL).Msg("No concordances found in Metagrid response")
		return lookup.Empty[[]resource.Triple]("no concordances")
	}

	triples := Triples(resp.Concordances[0].Resources)
	logger.Info().Int("count", len(triples)).Str("url", metagridURL).Msg("Fetched resources from Metagrid")
	return lookup.OK(triples)
}

// Triples projects records into triples, dropping incomplete ones.
func Triples(records []Record) []resource.Triple {
	triples := make([]resource.Triple, 0, len(records))
	for _, r := range records {
		slug := strings.TrimSpace(r.Provider.Slug)
		uri := strings.TrimSpace(r.Link.URI)
		if slug == "" || uri == "" {
			continue
		}
		triples = append(triples, resource.Triple{
			Provider:   slug,
			ProviderID: r.ID(),
			URL:        uri,
		})
	}
	return triples
}

// ID returns the record's identifier. Metagrid sends strings or numbers;
// an absent identifier is empty.
func (r Record) ID() string {
	if len(r.Identifier) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(r.Identifier, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(r.Identifier, &n); err == nil {
		return n.String()
	}
	return ""
}

// Label returns a display name from the record's metadata.
func (r Record) Label() string {
	if name := r.meta("name"); name != "" {
		return name
	}
	first, last := r.meta("first_name"), r.meta("last_name")
	switch {
	case first != "" && last != "":
		return last + ", " + first
	case last != "":
		return last
	default:
		return first
	}
}

// ConcordanceID returns the concordance's id as a string.
func (c Concordance) ConcordanceID() string {
	var n json.Number
	if err := json.Unmarshal(c.ID, &n); err == nil {
		return n.String()
	}
	var s string
	if err := json.Unmarshal(c.ID, &s); err == nil {
		return s
	}
	return ""
}

// Lifespan formats birth and death years found in a record's metadata.
func (r Record) Lifespan() string {
	birth, death := r.meta("birth_date"), r.meta("death_date")
	if birth == "" && death == "" {
		return ""
	}
	return year(birth) + "–" + year(death)
}

func (r Record) meta(key string) string {
	switch v := r.Metadata[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func year(date string) string {
	if len(date) >= 4 {
		if _, err := strconv.Atoi(date[:4]); err == nil {
			return date[:4]
		}
	}
	return date
}
