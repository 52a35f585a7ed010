package resources

import (
	"context"
	"strings"

	"github.com/kraenzle-ritter/resources/pkg/constants"
	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/logging"
	"github.com/kraenzle-ritter/resources/pkg/resource"
	"github.com/kraenzle-ritter/resources/pkg/store"
	"github.com/kraenzle-ritter/resources/pkg/store/badgerdb"
	"github.com/kraenzle-ritter/resources/pkg/store/memory"
	"github.com/kraenzle-ritter/resources/pkg/store/postgres"
)

// Store drivers.
const (
	StoreMemory   = memory.Name
	StorePostgres = postgres.Name
	StoreBadger   = badgerdb.Name
)

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // memory, postgres or badger
	DSN    string `mapstructure:"dsn" yaml:"dsn"`       // Postgres connection string
	Path   string `mapstructure:"path" yaml:"path"`     // Badger directory; empty keeps the data in memory
	Table  string `mapstructure:"table" yaml:"table"`   // Postgres table name
}

// openStore opens the backend named by cfg.Driver.
func openStore(ctx context.Context, cfg StoreConfig) (store.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", StoreMemory:
		return memory.New(), nil
	case StorePostgres:
		if cfg.DSN == "" {
			return nil, errors.NewConfigError("store", "store.dsn is required for the postgres driver", nil)
		}
		table := cfg.Table
		if table == "" {
			table = constants.DefaultTable
		}
		return postgres.Open(ctx, cfg.DSN, table)
	case StoreBadger:
		return badgerdb.Open(badgerdb.Options{
			Path:   cfg.Path,
			Logger: badgerdb.Logger(logging.FromContext(ctx)),
		})
	default:
		return nil, errors.NewConfigError("store", "unknown store driver "+cfg.Driver, nil)
	}
}

// Compile-time interface check to ensure proper implementation.
var _ Persistence = (*client)(nil)

// Persistence manages the stored resources of subjects.
type Persistence interface {
	// Resources returns every resource stored for subject.
	Resources(ctx context.Context, subject resource.Subject) ([]resource.Resource, error)

	// Save stores a triple for subject, e.g. a chosen search hit. An
	// existing resource of the same provider is updated.
	Save(ctx context.Context, subject resource.Subject, t resource.Triple) (resource.Resource, error)

	// Delete removes a resource by id and reports whether it existed.
	Delete(ctx context.Context, id string) (bool, error)

	// ResourcesByProvider returns every resource of provider, across subjects.
	ResourcesByProvider(ctx context.Context, provider string) ([]resource.Resource, error)
}

// Resources implements Persistence.
func (c *client) Resources(ctx context.Context, subject resource.Subject) ([]resource.Resource, error) {
	return c.store.Load(ctx, subject)
}

// ResourcesByProvider implements Persistence.
func (c *client) ResourcesByProvider(ctx context.Context, provider string) ([]resource.Resource, error) {
	return c.store.ListByProvider(ctx, provider)
}

// Save implements Persistence.
func (c *client) Save(ctx context.Context, subject resource.Subject, t resource.Triple) (resource.Resource, error) {
	canon := c.store.Canonical()
	if p, ok := c.registry.Get(canon.Provider(t.Provider)); ok {
		if t.URL == "" {
			t.URL = p.URL(canon.ProviderID(p.Key, t.ProviderID), c.options.locale)
		}
	}

	r, created, err := c.store.Upsert(ctx, subject, t)
	if err != nil {
		return resource.Resource{}, err
	}
	c.hooks.reconciled(ctx, r, created)
	return r, nil
}

// Delete implements Persistence.
func (c *client) Delete(ctx context.Context, id string) (bool, error) {
	r, err := c.store.Get(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	deleted, err := c.store.Delete(ctx, id)
	if err != nil || !deleted {
		return deleted, err
	}
	logging.FromContext(ctx).Debug().
		Str("id", id).
		Str("item_provider", r.Provider).
		Msg("Resource deleted")
	c.hooks.triggerDeleted(r)
	return true, nil
}
