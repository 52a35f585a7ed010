// Package postgres stores resources in a PostgreSQL table.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kraenzle-ritter/resources/pkg/constants"
	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/resource"
	"github.com/kraenzle-ritter/resources/pkg/store"
)

// Name is the backend name.
const Name = "postgres"

// DefaultTable is the table used when none is configured.
const DefaultTable = constants.DefaultTable

// Store persists resources in PostgreSQL.
type Store struct {
	db    *sql.DB
	table string
	owned bool
}

var _ store.Backend = (*Store)(nil)

// New wraps an open database handle. The caller keeps ownership of db.
func New(db *sql.DB, table string) *Store {
	if strings.TrimSpace(table) == "" {
		table = DefaultTable
	}
	return &Store{db: db, table: pq.QuoteIdentifier(table)}
}

// Open connects to dsn, verifies the connection and creates the table if it
// does not exist.
func Open(ctx context.Context, dsn, table string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.NewConfigError("postgres", "invalid dsn", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.WrapStore("open", Name, "", err)
	}

	s := New(db, table)
	s.owned = true
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the resources table and its indexes.
func (s *Store) Migrate(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id UUID PRIMARY KEY,
			subject_type TEXT NOT NULL,
			subject_id TEXT NOT NULL,
			provider TEXT NOT NULL,
			provider_id TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			full_json JSON,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (subject_type, subject_id, provider)
		);
		CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s (provider);
	`, s.table, pq.QuoteIdentifier(strings.Trim(s.table, `"`)+"_provider_idx"))
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return errors.WrapStore("migrate", Name, "", fmt.Errorf("create table: %w", err))
	}
	return nil
}

// Name implements store.Backend.
func (s *Store) Name() string { return Name }

const columns = `id, subject_type, subject_id, provider, provider_id, url, full_json, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanResource(row scanner) (resource.Resource, error) {
	var r resource.Resource
	var payload []byte
	err := row.Scan(&r.ID, &r.SubjectType, &r.SubjectID, &r.Provider, &r.ProviderID, &r.URL, &payload, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return resource.Resource{}, err
	}
	if len(payload) > 0 {
		r.FullJSON = payload
	}
	return r, nil
}

func (s *Store) query(ctx context.Context, op, where string, args ...any) ([]resource.Resource, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+columns+` FROM `+s.table+` `+where, args...)
	if err != nil {
		return nil, errors.WrapStore(op, Name, "", err)
	}
	defer rows.Close()

	var out []resource.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, errors.WrapStore(op, Name, "", fmt.Errorf("scan: %w", err))
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapStore(op, Name, "", err)
	}
	return out, nil
}

// Load implements store.Backend.
func (s *Store) Load(ctx context.Context, subject resource.Subject) ([]resource.Resource, error) {
	return s.query(ctx, "load", `WHERE subject_type = $1 AND subject_id = $2 ORDER BY provider`, subject.Type, subject.ID)
}

// ListByProvider implements store.Backend.
func (s *Store) ListByProvider(ctx context.Context, provider string) ([]resource.Resource, error) {
	return s.query(ctx, "list", `WHERE provider = $1 ORDER BY subject_type, subject_id`, provider)
}

// Get implements store.Backend.
func (s *Store) Get(ctx context.Context, id string) (resource.Resource, error) {
	if _, err := uuid.Parse(id); err != nil {
		return resource.Resource{}, errors.NewNotFoundError("resource", id)
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM `+s.table+` WHERE id = $1`, id)
	r, err := scanResource(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return resource.Resource{}, errors.NewNotFoundError("resource", id)
		}
		return resource.Resource{}, errors.WrapStore("get", Name, id, err)
	}
	return r, nil
}

// Upsert implements store.Backend. The conflict target is the subject and
// provider, so an update leaves id and created_at alone.
func (s *Store) Upsert(ctx context.Context, r resource.Resource) (resource.Resource, bool, error) {
	query := `
		INSERT INTO ` + s.table + ` AS r (id, subject_type, subject_id, provider, provider_id, url, full_json, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (subject_type, subject_id, provider) DO UPDATE SET
			provider_id = EXCLUDED.provider_id,
			url = EXCLUDED.url,
			full_json = COALESCE(EXCLUDED.full_json, r.full_json),
			updated_at = NOW()
		RETURNING ` + columns + `, (xmax = 0) AS inserted
	`
	row := s.db.QueryRowContext(ctx, query,
		uuid.NewString(), r.SubjectType, r.SubjectID, r.Provider, r.ProviderID, r.URL, nullJSON(r.FullJSON),
	)

	var saved resource.Resource
	var payload []byte
	var inserted bool
	err := row.Scan(&saved.ID, &saved.SubjectType, &saved.SubjectID, &saved.Provider, &saved.ProviderID,
		&saved.URL, &payload, &saved.CreatedAt, &saved.UpdatedAt, &inserted)
	if err != nil {
		return resource.Resource{}, false, errors.WrapStore("upsert", Name, r.Subject().String()+"/"+r.Provider, err)
	}
	if len(payload) > 0 {
		saved.FullJSON = payload
	}
	return saved, inserted, nil
}

// Rekey implements store.Backend.
func (s *Store) Rekey(ctx context.Context, id, provider string) (resource.Resource, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return resource.Resource{}, err
	}
	if existing.Provider == provider {
		return existing, nil
	}

	row := s.db.QueryRowContext(ctx,
		`UPDATE `+s.table+` SET provider = $2, updated_at = NOW() WHERE id = $1 RETURNING `+columns,
		id, provider,
	)
	r, err := scanResource(row)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return resource.Resource{}, errors.NewValidationError("provider", provider, "subject already has a resource for this provider")
		}
		if err == sql.ErrNoRows {
			return resource.Resource{}, errors.NewNotFoundError("resource", id)
		}
		return resource.Resource{}, errors.WrapStore("rekey", Name, id, err)
	}
	return r, nil
}

// Delete implements store.Backend.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM `+s.table+` WHERE id = $1`, id)
	if err != nil {
		return false, errors.WrapStore("delete", Name, id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.WrapStore("delete", Name, id, err)
	}
	return n > 0, nil
}

// Close closes the database handle when the store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func nullJSON(payload []byte) any {
	if len(payload) == 0 {
		return nil
	}
	return string(payload)
}
