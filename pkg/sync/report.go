package sync

import (
	"time"

	"github.com/kraenzle-ritter/resources/pkg/resource"
)

// Report is the serializable form of a Result.
type Report struct {
	Subject  string              `json:"subject" yaml:"subject"`
	Seed     string              `json:"seed" yaml:"seed"`
	Status   string              `json:"status" yaml:"status"`
	Reason   string              `json:"reason,omitempty" yaml:"reason,omitempty"`
	DryRun   bool                `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Created  int                 `json:"created" yaml:"created"`
	Updated  int                 `json:"updated" yaml:"updated"`
	Synced   []resource.Resource `json:"synced" yaml:"synced"`
	Planned  []resource.Triple   `json:"planned,omitempty" yaml:"planned,omitempty"`
	Excluded []resource.Triple   `json:"excluded,omitempty" yaml:"excluded,omitempty"`
	Failures []FailureReport     `json:"failures,omitempty" yaml:"failures,omitempty"`
	Duration string              `json:"duration" yaml:"duration"`
}

// FailureReport is one triple that could not be stored.
type FailureReport struct {
	Provider   string `json:"provider" yaml:"provider"`
	ProviderID string `json:"provider_id" yaml:"provider_id"`
	Error      string `json:"error" yaml:"error"`
}

// Report converts the result for output.
func (r *Result) Report() Report {
	report := Report{
		Subject:  r.Subject.String(),
		Seed:     r.Seed,
		Status:   r.Status.String(),
		Reason:   r.Reason,
		DryRun:   r.DryRun,
		Created:  r.Created,
		Updated:  r.Updated(),
		Synced:   r.Resources(),
		Planned:  r.Planned,
		Excluded: r.Excluded,
		Duration: r.Duration.Round(time.Millisecond).String(),
	}
	for _, f := range r.Failures {
		report.Failures = append(report.Failures, FailureReport{
			Provider:   f.Triple.Provider,
			ProviderID: f.Triple.ProviderID,
			Error:      f.Err.Error(),
		})
	}
	return report
}

// BatchReport is the serializable form of a BatchResult.
type BatchReport struct {
	Provider string   `json:"provider" yaml:"provider"`
	DryRun   bool     `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Subjects int      `json:"subjects" yaml:"subjects"`
	Synced   int      `json:"synced" yaml:"synced"`
	Created  int      `json:"created" yaml:"created"`
	Empty    int      `json:"empty" yaml:"empty"`
	Failed   int      `json:"failed" yaml:"failed"`
	Canceled bool     `json:"canceled,omitempty" yaml:"canceled,omitempty"`
	Duration string   `json:"duration" yaml:"duration"`
	Results  []Report `json:"results" yaml:"results"`
}

// Report converts the batch for output.
func (b *BatchResult) Report() BatchReport {
	report := BatchReport{
		Provider: b.Provider,
		DryRun:   b.DryRun,
		Subjects: b.Subjects,
		Synced:   b.Synced,
		Created:  b.Created,
		Empty:    b.Empty,
		Failed:   b.Failed,
		Canceled: b.Canceled,
		Duration: b.Duration.Round(time.Millisecond).String(),
		Results:  make([]Report, 0, len(b.Results)),
	}
	for _, r := range b.Results {
		report.Results = append(report.Results, r.Report())
	}
	return report
}
