package store

import (
	"context"

	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/logging"
	"github.com/kraenzle-ritter/resources/pkg/resource"
)

// Reconciler upserts triples against a subject's existing resources.
type Reconciler struct {
	backend Backend
	canon   *Canonicalizer
}

// NewReconciler wraps backend. canon may be nil.
func NewReconciler(backend Backend, canon *Canonicalizer) *Reconciler {
	return &Reconciler{backend: backend, canon: canon}
}

// Backend returns the wrapped backend.
func (r *Reconciler) Backend() Backend {
	return r.backend
}

// Canonical returns the canonicalizer in use.
func (r *Reconciler) Canonical() *Canonicalizer {
	return r.canon
}

// Load returns a subject's resources.
func (r *Reconciler) Load(ctx context.Context, subject resource.Subject) ([]resource.Resource, error) {
	if err := subject.Validate(); err != nil {
		return nil, err
	}
	return r.backend.Load(ctx, subject)
}

// Find returns the subject's resource for provider, after canonicalizing the
// key.
func (r *Reconciler) Find(ctx context.Context, subject resource.Subject, provider string) (resource.Resource, bool, error) {
	existing, err := r.Load(ctx, subject)
	if err != nil {
		return resource.Resource{}, false, err
	}
	res, ok := r.match(existing, r.canon.Provider(provider))
	return res, ok, nil
}

// match picks the resource stored under key. A row still stored under a
// historical alias of key is returned only when no row uses key itself.
func (r *Reconciler) match(existing []resource.Resource, key string) (resource.Resource, bool) {
	var alias *resource.Resource
	for i, res := range existing {
		if res.Provider == key {
			return res, true
		}
		if alias == nil && r.canon.Provider(res.Provider) == key {
			alias = &existing[i]
		}
	}
	if alias != nil {
		return *alias, true
	}
	return resource.Resource{}, false
}

// Upsert canonicalizes t and stores it for subject. It reports whether a new
// resource was created.
func (r *Reconciler) Upsert(ctx context.Context, subject resource.Subject, t resource.Triple) (resource.Resource, bool, error) {
	if err := subject.Validate(); err != nil {
		return resource.Resource{}, false, err
	}

	t = r.canon.Triple(t)
	if t.Provider == "" {
		return resource.Resource{}, false, errors.NewValidationError("provider", t.Provider, "cannot be empty")
	}

	if err := r.fold(ctx, subject, t.Provider); err != nil {
		return resource.Resource{}, false, err
	}

	saved, created, err := r.backend.Upsert(ctx, resource.Resource{
		SubjectType: subject.Type,
		SubjectID:   subject.ID,
		Provider:    t.Provider,
		ProviderID:  t.ProviderID,
		URL:         t.URL,
		FullJSON:    t.FullJSON,
	})
	if err != nil {
		return resource.Resource{}, false, err
	}

	logging.FromContext(ctx).Debug().
		Str("resource_id", saved.ID).
		Str("provider", saved.Provider).
		Str("provider_id", saved.ProviderID).
		Bool("created", created).
		Msg("Resource reconciled")
	return saved, created, nil
}

// fold moves a resource stored under a historical alias of provider onto
// the canonical key, so the following upsert updates it instead of adding a
// second row.
func (r *Reconciler) fold(ctx context.Context, subject resource.Subject, provider string) error {
	existing, err := r.backend.Load(ctx, subject)
	if err != nil {
		return err
	}
	res, ok := r.match(existing, provider)
	if !ok || res.Provider == provider {
		return nil
	}
	if _, err := r.backend.Rekey(ctx, res.ID, provider); err != nil {
		return err
	}
	logging.FromContext(ctx).Info().
		Str("resource_id", res.ID).
		Str("from", res.Provider).
		Str("to", provider).
		Msg("Resource moved to canonical provider key")
	return nil
}

// Get returns one resource by id.
func (r *Reconciler) Get(ctx context.Context, id string) (resource.Resource, error) {
	return r.backend.Get(ctx, id)
}

// Delete removes a resource by id. Sync never calls it.
func (r *Reconciler) Delete(ctx context.Context, id string) (bool, error) {
	return r.backend.Delete(ctx, id)
}

// ListByProvider returns every resource stored for a provider.
func (r *Reconciler) ListByProvider(ctx context.Context, provider string) ([]resource.Resource, error) {
	return r.backend.ListByProvider(ctx, r.canon.Provider(provider))
}

// Close closes the backend.
func (r *Reconciler) Close() error {
	return r.backend.Close()
}
