package sync

import (
	"context"
	"slices"
	"time"

	"github.com/kraenzle-ritter/resources/internal/metrics"
	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/logging"
	"github.com/kraenzle-ritter/resources/pkg/lookup"
	"github.com/kraenzle-ritter/resources/pkg/providers"
	"github.com/kraenzle-ritter/resources/pkg/resolve"
	"github.com/kraenzle-ritter/resources/pkg/resource"
	"github.com/kraenzle-ritter/resources/pkg/store"
)

// Store is the persistence boundary of the orchestrator. *store.Reconciler
// implements it.
type Store interface {
	Load(ctx context.Context, subject resource.Subject) ([]resource.Resource, error)
	Upsert(ctx context.Context, subject resource.Subject, t resource.Triple) (resource.Resource, bool, error)
	ListByProvider(ctx context.Context, provider string) ([]resource.Resource, error)
	Canonical() *store.Canonicalizer
}

// Fetcher turns a key into cross-reference triples. The Wikidata fetcher
// takes a Q-id and the Metagrid fetcher a concordance URL.
type Fetcher interface {
	Fetch(ctx context.Context, key string) lookup.Result[[]resource.Triple]
}

// Hook is called after each resource is persisted.
type Hook func(ctx context.Context, r resource.Resource, created bool)

// Orchestrator runs syncs. It holds no per-call state and is safe for
// concurrent use.
type Orchestrator struct {
	store    Store
	registry *providers.Registry
	resolver resolve.Resolver
	crossref Fetcher
	metagrid Fetcher
	metrics  *metrics.Metrics
	hooks    []Hook
	sleep    func(ctx context.Context, d time.Duration) error
}

// New creates an orchestrator.
func New(st Store, registry *providers.Registry, resolver resolve.Resolver, crossref, metagrid Fetcher) *Orchestrator {
	return &Orchestrator{
		store:    st,
		registry: registry,
		resolver: resolver,
		crossref: crossref,
		metagrid: metagrid,
		sleep:    sleep,
	}
}

// WithMetrics records sync outcomes in m.
func (o *Orchestrator) WithMetrics(m *metrics.Metrics) *Orchestrator {
	o.metrics = m
	return o
}

// OnReconciled registers a hook fired after every successful upsert.
func (o *Orchestrator) OnReconciled(h Hook) *Orchestrator {
	o.hooks = append(o.hooks, h)
	return o
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SyncFromProvider derives the subject's identifiers in every other
// configured provider from the one it holds for seed, and reconciles them.
//
// The seed resource must already exist; without it the call returns an
// empty result without touching the network. A Metagrid seed is expanded
// through its stored concordance URL; any other seed is resolved to a
// Wikidata id whose claims are read (the first claim of each property
// wins). Excluded providers are skipped, and a failed upsert is recorded
// without stopping the remaining items. SyncFromProvider never returns an
// error; the Result says why nothing was synced.
func (o *Orchestrator) SyncFromProvider(ctx context.Context, subject resource.Subject, seed string, opts ...Option) *Result {
	options := Defaults().Apply(opts...)
	canon := o.store.Canonical()
	seed = canon.Provider(seed)

	ctx = logging.WithSubject(ctx, subject.Type, subject.ID)
	ctx = logging.WithProvider(ctx, seed)
	ctx = logging.WithOperation(ctx, "sync")
	logger := logging.FromContext(ctx)

	start := time.Now()
	result := &Result{Subject: subject, Seed: seed, DryRun: options.DryRun}
	defer func() {
		result.Duration = time.Since(start)
		o.metrics.ObserveSync(seed, result.Status.String(), result.Duration)
	}()

	triples := o.fetch(ctx, subject, seed)
	result.Status, result.Reason, result.Err = triples.Status(), triples.Reason(), triples.Err()
	if !triples.IsOK() {
		return result
	}
	if len(triples.Value()) == 0 {
		logger.Warn().Msg("No cross-references found for seed identifier")
		result.Status, result.Reason = lookup.StatusEmpty, "no cross-references"
		return result
	}

	exclude := make([]string, 0, len(options.Exclude))
	for _, key := range options.Exclude {
		exclude = append(exclude, canon.Provider(key))
	}

	for _, t := range triples.Value() {
		if slices.Contains(exclude, canon.Provider(t.Provider)) {
			logger.Info().Str("item_provider", t.Provider).Str("item_id", t.ProviderID).Msg("Skipping excluded provider")
			result.Excluded = append(result.Excluded, t)
			continue
		}

		if options.DryRun {
			result.Planned = append(result.Planned, canon.Triple(t))
			continue
		}

		saved, created, err := o.store.Upsert(ctx, subject, t)
		if err != nil {
			logger.Error().Err(err).
				Str("item_provider", t.Provider).
				Str("item_id", t.ProviderID).
				Str("item_url", t.URL).
				Msg("Failed to reconcile resource")
			result.Failures = append(result.Failures, Failure{Triple: t, Err: err})
			continue
		}

		result.Synced = append(result.Synced, saved)
		if created {
			result.Created++
		}
		for _, h := range o.hooks {
			h(ctx, saved, created)
		}
	}

	o.metrics.AddSyncItems(OutcomeCreated, result.Created)
	o.metrics.AddSyncItems(OutcomeUpdated, result.Updated())
	o.metrics.AddSyncItems(OutcomeExcluded, len(result.Excluded))
	o.metrics.AddSyncItems(OutcomeFailed, len(result.Failures))
	o.metrics.AddSyncItems(OutcomePlanned, len(result.Planned))

	logger.Info().
		Int("synced", len(result.Synced)).
		Int("created", result.Created).
		Int("excluded", len(result.Excluded)).
		Int("failed", len(result.Failures)).
		Bool("dry_run", options.DryRun).
		Msg("Sync finished")
	return result
}

// fetch loads the seed resource and expands it into triples.
func (o *Orchestrator) fetch(ctx context.Context, subject resource.Subject, seed string) lookup.Result[[]resource.Triple] {
	logger := logging.FromContext(ctx)

	existing, err := o.store.Load(ctx, subject)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load subject resources")
		return lookup.Failed[[]resource.Triple](err)
	}

	canon := o.store.Canonical()
	idx := slices.IndexFunc(existing, func(r resource.Resource) bool {
		return canon.Provider(r.Provider) == seed
	})
	if idx < 0 {
		logger.Warn().Msg("Subject has no resource for seed provider")
		return lookup.Empty[[]resource.Triple]("no seed resource")
	}
	current := existing[idx]

	family := providers.FamilyGeneric
	if p, ok := o.registry.Get(seed); ok {
		family = p.Family
	}

	if family == providers.FamilyMetagrid {
		if current.URL == "" {
			logger.Warn().Msg("Metagrid resource has no url")
			return lookup.Empty[[]resource.Triple]("metagrid resource without url")
		}
		return o.metagrid.Fetch(ctx, current.URL)
	}

	qid := o.resolver.Resolve(ctx, seed, current.ProviderID)
	if !qid.IsOK() {
		logger.Warn().Str("id", current.ProviderID).Str("reason", qid.Reason()).Msg("Could not resolve seed to Wikidata")
		return lookup.Map(qid, func(string) []resource.Triple { return nil })
	}
	return o.crossref.Fetch(ctx, qid.Value())
}

// SyncAll re-syncs every subject that holds a resource for provider, one
// subject at a time with options.Throttle between them. Only providers with
// a path to Wikidata or Metagrid can seed a bulk sync. It stops early when
// ctx ends and reports what was done so far.
func (o *Orchestrator) SyncAll(ctx context.Context, provider string, opts ...Option) (*BatchResult, error) {
	options := Defaults().Apply(opts...)
	if err := options.Validate(); err != nil {
		return nil, err
	}

	seed := o.store.Canonical().Provider(provider)
	p, ok := o.registry.Get(seed)
	if !ok {
		return nil, errors.NewNotFoundError("provider", seed)
	}
	if !p.Family.Resolvable() && p.Family != providers.FamilyMetagrid {
		return nil, errors.NewValidationError("provider", seed, "bulk sync needs a wikidata, gnd, wikipedia or metagrid provider")
	}

	seeds, err := o.store.ListByProvider(ctx, seed)
	if err != nil {
		return nil, errors.NewSyncError("*", seed, err)
	}
	if options.Limit > 0 && len(seeds) > options.Limit {
		seeds = seeds[:options.Limit]
	}

	logger := logging.FromContext(ctx)
	logger.Info().Str("provider", seed).Int("subjects", len(seeds)).Msg("Starting bulk sync")

	start := time.Now()
	batch := &BatchResult{Provider: seed, DryRun: options.DryRun}
	for i, r := range seeds {
		if i > 0 {
			if err := o.sleep(ctx, options.Throttle); err != nil {
				batch.Canceled = true
				break
			}
		} else if ctx.Err() != nil {
			batch.Canceled = true
			break
		}
		batch.add(o.SyncFromProvider(ctx, r.Subject(), seed, opts...))
	}
	batch.Duration = time.Since(start)

	logger.Info().Str("summary", batch.Summary()).Msg("Bulk sync finished")
	return batch, nil
}
