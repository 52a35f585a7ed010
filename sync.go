package resources

import (
	"context"

	"github.com/kraenzle-ritter/resources/pkg/resource"
	"github.com/kraenzle-ritter/resources/pkg/sync"
)

// Sync result types.
type (
	// SyncOption configures a sync; see the options of package sync.
	SyncOption = sync.Option

	// SyncResult reports one subject's sync.
	SyncResult = sync.Result

	// BatchResult reports a bulk re-sync.
	BatchResult = sync.BatchResult
)

// Compile-time interface check to ensure proper implementation.
var _ Syncer = (*client)(nil)

// Syncer derives a subject's identifiers from one it already holds.
type Syncer interface {
	// Sync derives and stores subject's identifiers in every other provider
	// from its resource of seed. It never fails; the result's status and
	// reason say why nothing was synced.
	Sync(ctx context.Context, subject resource.Subject, seed string, opts ...SyncOption) *SyncResult

	// SyncAll re-syncs every subject holding a resource of provider.
	SyncAll(ctx context.Context, provider string, opts ...SyncOption) (*BatchResult, error)
}

// Sync implements Syncer. The client's default exclusions apply in
// addition to the ones given.
func (c *client) Sync(ctx context.Context, subject resource.Subject, seed string, opts ...SyncOption) *SyncResult {
	return c.orchestrator.SyncFromProvider(ctx, subject, seed, c.syncOptions(opts)...)
}

// SyncAll implements Syncer.
func (c *client) SyncAll(ctx context.Context, provider string, opts ...SyncOption) (*BatchResult, error) {
	return c.orchestrator.SyncAll(ctx, provider, c.syncOptions(opts)...)
}

// syncOptions puts the configured defaults before the caller's options.
func (c *client) syncOptions(opts []SyncOption) []SyncOption {
	all := make([]SyncOption, 0, len(opts)+2)
	all = append(all, sync.WithThrottle(c.options.throttle))
	if len(c.options.exclude) > 0 {
		all = append(all, sync.WithExclude(c.options.exclude...))
	}
	return append(all, opts...)
}
