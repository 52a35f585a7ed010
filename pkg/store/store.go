// Package store reconciles cross-reference triples into persisted resources.
//
// A subject holds at most one resource per canonical provider key. Upserting
// a triple for a provider the subject already has overwrites that resource's
// provider_id, url and full_json in place; its id and created_at are kept.
// A later sync that finds a different id for the same provider therefore
// replaces the earlier one instead of adding a second record.
//
// Backends (memory, postgres, badger) implement the atomic single-row upsert;
// the Reconciler canonicalizes provider keys and identifiers before handing
// a resource to the backend.
package store

import (
	"context"

	"github.com/kraenzle-ritter/resources/pkg/resource"
)

// Backend persists resources. Implementations must make Upsert atomic for a
// single (subject, provider) row.
type Backend interface {
	// Name identifies the backend in errors and logs.
	Name() string

	// Load returns every resource of a subject ordered by provider.
	Load(ctx context.Context, subject resource.Subject) ([]resource.Resource, error)

	// Get returns one resource by id or a *errors.NotFoundError.
	Get(ctx context.Context, id string) (resource.Resource, error)

	// Upsert inserts r or updates the row with the same subject and
	// provider. On update the stored id and created_at are kept, and an
	// empty FullJSON leaves the stored payload untouched. It reports
	// whether a new row was created.
	Upsert(ctx context.Context, r resource.Resource) (resource.Resource, bool, error)

	// Rekey moves the resource with id to another provider key, keeping its
	// id, payload and created_at. It fails with a *errors.ValidationError
	// when the subject already holds a resource under provider.
	Rekey(ctx context.Context, id, provider string) (resource.Resource, error)

	// Delete removes a resource by id and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// ListByProvider returns every resource of one provider ordered by
	// subject.
	ListByProvider(ctx context.Context, provider string) ([]resource.Resource, error)

	// Close releases the backend's resources.
	Close() error
}
