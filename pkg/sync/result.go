package sync

import (
	"fmt"
	"strings"
	"time"

	"github.com/kraenzle-ritter/resources/pkg/lookup"
	"github.com/kraenzle-ritter/resources/pkg/resource"
)

// Item outcomes recorded in metrics.
const (
	OutcomeCreated  = "created"
	OutcomeUpdated  = "updated"
	OutcomeExcluded = "excluded"
	OutcomeFailed   = "failed"
	OutcomePlanned  = "planned"
)

// Result is the outcome of one SyncFromProvider call.
//
// Status is OK once the fetch step produced triples, even if every triple
// was then excluded or failed to persist. Empty means there was nothing to
// sync (no seed resource, no Wikidata match, no cross-references) and Failed
// means an upstream call or the initial load failed.
type Result struct {
	Subject resource.Subject
	Seed    string
	DryRun  bool

	Status lookup.Status
	Reason string
	Err    error

	Synced   []resource.Resource // Successfully reconciled resources, in fetch order
	Created  int                 // How many of Synced were new
	Excluded []resource.Triple   // Triples skipped by the exclusion list
	Failures []Failure           // Triples whose upsert failed
	Planned  []resource.Triple   // Triples a dry run would reconcile

	Duration time.Duration
}

// Failure records one triple that could not be persisted.
type Failure struct {
	Triple resource.Triple
	Err    error
}

// Resources returns the successfully reconciled resources. It is never nil.
func (r *Result) Resources() []resource.Resource {
	if r.Synced == nil {
		return []resource.Resource{}
	}
	return r.Synced
}

// Updated returns how many synced resources already existed.
func (r *Result) Updated() int {
	return len(r.Synced) - r.Created
}

// HasChanges returns true if the sync wrote or would write anything.
func (r *Result) HasChanges() bool {
	return len(r.Synced) > 0 || len(r.Planned) > 0
}

// Summary returns a human-readable summary of the sync result.
func (r *Result) Summary() string {
	if r.Status != lookup.StatusOK {
		if r.Reason != "" {
			return fmt.Sprintf("%s from %s: nothing synced (%s)", r.Subject, r.Seed, r.Reason)
		}
		return fmt.Sprintf("%s from %s: nothing synced", r.Subject, r.Seed)
	}

	var parts []string
	if r.DryRun {
		parts = append(parts, fmt.Sprintf("%d planned", len(r.Planned)))
	} else {
		parts = append(parts, fmt.Sprintf("%d created", r.Created), fmt.Sprintf("%d updated", r.Updated()))
	}
	if len(r.Excluded) > 0 {
		parts = append(parts, fmt.Sprintf("%d excluded", len(r.Excluded)))
	}
	if len(r.Failures) > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", len(r.Failures)))
	}

	summary := fmt.Sprintf("%s from %s: %s", r.Subject, r.Seed, strings.Join(parts, ", "))
	if r.DryRun {
		summary += " (Dry run)"
	}
	return summary
}

// BatchResult is the outcome of SyncAll.
type BatchResult struct {
	Provider string
	DryRun   bool
	Results  []*Result

	Subjects int // Subjects visited
	Synced   int // Resources reconciled across all subjects
	Created  int
	Empty    int // Subjects with nothing to sync
	Failed   int // Subjects whose sync failed

	Canceled bool // The context ended before every subject was visited
	Duration time.Duration
}

func (b *BatchResult) add(r *Result) {
	b.Results = append(b.Results, r)
	b.Subjects++
	b.Synced += len(r.Synced)
	b.Created += r.Created
	switch r.Status {
	case lookup.StatusEmpty:
		b.Empty++
	case lookup.StatusFailed:
		b.Failed++
	}
}

// Summary returns a human-readable summary of the batch.
func (b *BatchResult) Summary() string {
	summary := fmt.Sprintf("%s: %d subjects, %d resources synced (%d created), %d empty, %d failed",
		b.Provider, b.Subjects, b.Synced, b.Created, b.Empty, b.Failed)
	if b.DryRun {
		summary += " (Dry run)"
	}
	if b.Canceled {
		summary += " (Canceled)"
	}
	return summary
}
