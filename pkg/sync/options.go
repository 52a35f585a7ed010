// Package sync materializes a subject's identifiers in every configured
// authority system, starting from one identifier it already holds.
package sync

import (
	"time"

	"github.com/kraenzle-ritter/resources/pkg/constants"
	"github.com/kraenzle-ritter/resources/pkg/errors"
)

// Options controls a single sync or a bulk re-sync.
type Options struct {
	Exclude  []string      // Provider keys that must not be created or updated
	DryRun   bool          // Report what would be reconciled without writing
	Throttle time.Duration // Pause between subjects in SyncAll
	Limit    int           // Maximum subjects in SyncAll (0 means all)
}

// Option is a function that configures sync Options.
type Option func(*Options)

// Defaults returns the default sync options.
func Defaults() *Options {
	return &Options{
		Exclude:  nil,
		DryRun:   false,
		Throttle: constants.DefaultThrottle,
		Limit:    0,
	}
}

// Apply applies the given options to the sync options.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validate checks if the sync options are valid.
func (o *Options) Validate() error {
	if o.Throttle < 0 {
		return &errors.ValidationError{
			Field:   "Throttle",
			Value:   o.Throttle,
			Message: "throttle must be non-negative",
		}
	}
	if o.Limit < 0 {
		return &errors.ValidationError{
			Field:   "Limit",
			Value:   o.Limit,
			Message: "limit must be non-negative",
		}
	}
	return nil
}

// WithExclude adds providers to the exclusion list. Keys are compared after
// canonicalization.
func WithExclude(providers ...string) Option {
	return func(o *Options) {
		o.Exclude = append(o.Exclude, providers...)
	}
}

// WithDryRun configures dry run mode.
func WithDryRun(dryRun bool) Option {
	return func(o *Options) {
		o.DryRun = dryRun
	}
}

// WithThrottle sets the pause between subjects in SyncAll.
func WithThrottle(d time.Duration) Option {
	return func(o *Options) {
		o.Throttle = d
	}
}

// WithLimit caps the number of subjects SyncAll visits.
func WithLimit(n int) Option {
	return func(o *Options) {
		o.Limit = n
	}
}
