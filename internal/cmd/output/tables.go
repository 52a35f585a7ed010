package output

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/kraenzle-ritter/resources/pkg/providers"
	"github.com/kraenzle-ritter/resources/pkg/resource"
	"github.com/kraenzle-ritter/resources/pkg/search"
	"github.com/kraenzle-ritter/resources/pkg/sync"
)

// Resources lays out stored resources.
type Resources []resource.Resource

// Table implements Tabular.
func (rs Resources) Table() Data {
	data := Data{Headers: []string{"ID", "Subject", "Provider", "Provider ID", "URL", "Updated"}}
	for _, r := range rs {
		data.Rows = append(data.Rows, []string{
			r.ID,
			r.Subject().String(),
			r.Provider,
			r.ProviderID,
			r.URL,
			r.UpdatedAt.Format(time.DateTime),
		})
	}
	return data
}

// SearchResults lays out search hits.
type SearchResults []search.Result

// Table implements Tabular.
func (hits SearchResults) Table() Data {
	data := Data{
		Headers:         []string{"#", "ID", "Label", "Description", "URL"},
		ColumnAlignment: []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft},
	}
	for i, h := range hits {
		data.Rows = append(data.Rows, []string{strconv.Itoa(i + 1), h.ID, h.Label, h.Description, h.URL})
	}
	return data
}

// Providers lays out registry entries with labels in one locale.
type Providers struct {
	Items  []providers.Provider
	Locale string
}

// Table implements Tabular.
func (p Providers) Table() Data {
	data := Data{Headers: []string{"Key", "Label", "Family", "Property", "URL Pattern"}}
	for _, item := range p.Items {
		data.Rows = append(data.Rows, []string{
			item.Key,
			item.Label(p.Locale),
			string(item.Family),
			item.WikidataProperty,
			item.URLPattern,
		})
	}
	return data
}

// MarshalJSON writes the entries only.
func (p Providers) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Items)
}

// MarshalYAML writes the entries only.
func (p Providers) MarshalYAML() (any, error) {
	return p.Items, nil
}

// SyncReport lays out a sync result, one row per triple.
type SyncReport sync.Report

// NewSyncReport converts r for output.
func NewSyncReport(r *sync.Result) SyncReport {
	return SyncReport(r.Report())
}

// Table implements Tabular. Each triple is one row with its outcome.
func (s SyncReport) Table() Data {
	data := Data{Headers: []string{"Outcome", "Provider", "Provider ID", "URL"}}
	for _, r := range s.Synced {
		outcome := sync.OutcomeUpdated
		if r.CreatedAt.Equal(r.UpdatedAt) {
			outcome = sync.OutcomeCreated
		}
		data.Rows = append(data.Rows, []string{outcome, r.Provider, r.ProviderID, r.URL})
	}
	for _, t := range s.Planned {
		data.Rows = append(data.Rows, []string{sync.OutcomePlanned, t.Provider, t.ProviderID, t.URL})
	}
	for _, t := range s.Excluded {
		data.Rows = append(data.Rows, []string{sync.OutcomeExcluded, t.Provider, t.ProviderID, t.URL})
	}
	for _, f := range s.Failures {
		data.Rows = append(data.Rows, []string{sync.OutcomeFailed, f.Provider, f.ProviderID, f.Error})
	}
	return data
}

// BatchReport lays out a bulk re-sync, one row per subject.
type BatchReport sync.BatchReport

// NewBatchReport converts b for output.
func NewBatchReport(b *sync.BatchResult) BatchReport {
	return BatchReport(b.Report())
}

// Table implements Tabular with one row per subject.
func (b BatchReport) Table() Data {
	data := Data{
		Headers:         []string{"Subject", "Status", "Created", "Updated", "Reason"},
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignRight, AlignLeft},
	}
	for _, r := range b.Results {
		data.Rows = append(data.Rows, []string{
			r.Subject, r.Status, strconv.Itoa(r.Created), strconv.Itoa(r.Updated), r.Reason,
		})
	}
	return data
}
