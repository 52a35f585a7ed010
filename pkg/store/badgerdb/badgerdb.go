// Package badgerdb stores resources in an embedded BadgerDB database, for
// single-process deployments that want durability without a server.
package badgerdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/resource"
	"github.com/kraenzle-ritter/resources/pkg/store"
)

// Name is the backend name.
const Name = "badger"

const maxConflictRetries = 16

// Options configures the database.
type Options struct {
	// Path to the database directory. If empty, uses in-memory mode.
	Path string
	// InMemory forces in-memory mode even if Path is set.
	InMemory bool
	// Logger for BadgerDB. If nil, logging is disabled.
	Logger badger.Logger
}

// Store persists resources in BadgerDB.
//
// Key layout:
//
//	res/<subject_type>/<subject_id>/<provider>  resource record
//	id/<id>                                     primary key of the record
//	prov/<provider>/<subject_type>/<subject_id> primary key of the record
type Store struct {
	db  *badger.DB
	now func() time.Time
}

var _ store.Backend = (*Store)(nil)

// record is the stored form. FullJSON is kept as bytes so the payload is
// returned exactly as written.
type record struct {
	ID          string    `json:"id"`
	SubjectType string    `json:"subject_type"`
	SubjectID   string    `json:"subject_id"`
	Provider    string    `json:"provider"`
	ProviderID  string    `json:"provider_id"`
	URL         string    `json:"url"`
	FullJSON    []byte    `json:"full_json,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toRecord(r resource.Resource) record {
	return record{
		ID:          r.ID,
		SubjectType: r.SubjectType,
		SubjectID:   r.SubjectID,
		Provider:    r.Provider,
		ProviderID:  r.ProviderID,
		URL:         r.URL,
		FullJSON:    r.FullJSON,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (rec record) resource() resource.Resource {
	r := resource.Resource{
		ID:          rec.ID,
		SubjectType: rec.SubjectType,
		SubjectID:   rec.SubjectID,
		Provider:    rec.Provider,
		ProviderID:  rec.ProviderID,
		URL:         rec.URL,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if len(rec.FullJSON) > 0 {
		r.FullJSON = rec.FullJSON
	}
	return r
}

// Open opens or creates a database.
func Open(opts Options) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.Path)
	if opts.Path == "" || opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	badgerOpts = badgerOpts.WithLogger(opts.Logger)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, errors.WrapStore("open", Name, opts.Path, err)
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Name implements store.Backend.
func (s *Store) Name() string { return Name }

func esc(part string) string {
	return url.PathEscape(part)
}

func subjectPrefix(subjectType, subjectID string) []byte {
	return []byte("res/" + esc(subjectType) + "/" + esc(subjectID) + "/")
}

func resourceKey(subjectType, subjectID, provider string) []byte {
	return append(subjectPrefix(subjectType, subjectID), esc(provider)...)
}

func idKey(id string) []byte {
	return []byte("id/" + id)
}

func providerPrefix(provider string) []byte {
	return []byte("prov/" + esc(provider) + "/")
}

func providerKey(provider, subjectType, subjectID string) []byte {
	return append(providerPrefix(provider), esc(subjectType)+"/"+esc(subjectID)...)
}

func readRecord(txn *badger.Txn, key []byte) (record, error) {
	var rec record
	item, err := txn.Get(key)
	if err != nil {
		return rec, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	})
	return rec, err
}

func writeRecord(txn *badger.Txn, rec record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	key := resourceKey(rec.SubjectType, rec.SubjectID, rec.Provider)
	if err := txn.Set(key, data); err != nil {
		return err
	}
	if err := txn.Set(idKey(rec.ID), key); err != nil {
		return err
	}
	return txn.Set(providerKey(rec.Provider, rec.SubjectType, rec.SubjectID), key)
}

// scan collects the records referenced by keys under prefix. When indirect
// is set the values are primary keys rather than records.
func scan(txn *badger.Txn, prefix []byte, indirect bool) ([]resource.Resource, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	defer it.Close()

	var out []resource.Resource
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var rec record
		err := it.Item().Value(func(val []byte) error {
			if !indirect {
				return json.Unmarshal(val, &rec)
			}
			var err error
			rec, err = readRecord(txn, val)
			return err
		})
		if err != nil {
			return nil, err
		}
		out = append(out, rec.resource())
	}
	return out, nil
}

// Load implements store.Backend.
func (s *Store) Load(_ context.Context, subject resource.Subject) ([]resource.Resource, error) {
	var out []resource.Resource
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = scan(txn, subjectPrefix(subject.Type, subject.ID), false)
		return err
	})
	if err != nil {
		return nil, errors.WrapStore("load", Name, subject.String(), err)
	}
	return out, nil
}

// ListByProvider implements store.Backend.
func (s *Store) ListByProvider(_ context.Context, provider string) ([]resource.Resource, error) {
	var out []resource.Resource
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		out, err = scan(txn, providerPrefix(provider), true)
		return err
	})
	if err != nil {
		return nil, errors.WrapStore("list", Name, provider, err)
	}
	return out, nil
}

// Get implements store.Backend.
func (s *Store) Get(_ context.Context, id string) (resource.Resource, error) {
	var rec record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(id))
		if err != nil {
			return err
		}
		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		rec, err = readRecord(txn, key)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return resource.Resource{}, errors.NewNotFoundError("resource", id)
	}
	if err != nil {
		return resource.Resource{}, errors.WrapStore("get", Name, id, err)
	}
	return rec.resource(), nil
}

// Upsert implements store.Backend. Concurrent writers to the same key are
// serialized by retrying on transaction conflicts.
func (s *Store) Upsert(ctx context.Context, r resource.Resource) (resource.Resource, bool, error) {
	var saved record
	var created bool
	var err error
	for range maxConflictRetries {
		saved, created, err = s.upsert(r)
		if err != badger.ErrConflict {
			break
		}
		if ctx.Err() != nil {
			return resource.Resource{}, false, ctx.Err()
		}
	}
	if err != nil {
		return resource.Resource{}, false, errors.WrapStore("upsert", Name, r.Subject().String()+"/"+r.Provider, err)
	}
	return saved.resource(), created, nil
}

func (s *Store) upsert(r resource.Resource) (record, bool, error) {
	var saved record
	var created bool
	err := s.db.Update(func(txn *badger.Txn) error {
		now := s.now()
		existing, err := readRecord(txn, resourceKey(r.SubjectType, r.SubjectID, r.Provider))
		switch {
		case err == badger.ErrKeyNotFound:
			saved = toRecord(r)
			saved.ID = uuid.NewString()
			saved.CreatedAt = now
			created = true
		case err != nil:
			return fmt.Errorf("read existing: %w", err)
		default:
			saved = existing
			saved.ProviderID = r.ProviderID
			saved.URL = r.URL
			if len(r.FullJSON) > 0 {
				saved.FullJSON = r.FullJSON
			}
		}
		saved.UpdatedAt = now
		return writeRecord(txn, saved)
	})
	return saved, created, err
}

// errProviderTaken aborts a rekey whose target key is in use.
var errProviderTaken = errors.New("provider taken")

// Rekey implements store.Backend.
func (s *Store) Rekey(_ context.Context, id, provider string) (resource.Resource, error) {
	var saved record
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(id))
		if err != nil {
			return err
		}
		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		rec, err := readRecord(txn, key)
		if err != nil {
			return err
		}
		if rec.Provider == provider {
			saved = rec
			return nil
		}
		if _, err := txn.Get(resourceKey(rec.SubjectType, rec.SubjectID, provider)); err == nil {
			return errProviderTaken
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		for _, k := range [][]byte{key, providerKey(rec.Provider, rec.SubjectType, rec.SubjectID)} {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		rec.Provider = provider
		rec.UpdatedAt = s.now()
		saved = rec
		return writeRecord(txn, rec)
	})
	switch {
	case err == badger.ErrKeyNotFound:
		return resource.Resource{}, errors.NewNotFoundError("resource", id)
	case err == errProviderTaken:
		return resource.Resource{}, errors.NewValidationError("provider", provider, "subject already has a resource for this provider")
	case err != nil:
		return resource.Resource{}, errors.WrapStore("rekey", Name, id, err)
	}
	return saved.resource(), nil
}

// Delete implements store.Backend.
func (s *Store) Delete(_ context.Context, id string) (bool, error) {
	var deleted bool
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		rec, err := readRecord(txn, key)
		if err != nil {
			return err
		}
		for _, k := range [][]byte{key, idKey(id), providerKey(rec.Provider, rec.SubjectType, rec.SubjectID)} {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, errors.WrapStore("delete", Name, id, err)
	}
	return deleted, nil
}

// Close implements store.Backend.
func (s *Store) Close() error {
	return s.db.Close()
}

// Logger adapts a zerolog logger to badger's logging interface. Badger's
// info chatter is demoted to debug.
func Logger(l *zerolog.Logger) badger.Logger {
	return badgerLogger{l: l}
}

type badgerLogger struct {
	l *zerolog.Logger
}

func (b badgerLogger) Errorf(format string, args ...any) {
	b.l.Error().Str("component", Name).Msgf(strings.TrimSpace(format), args...)
}

func (b badgerLogger) Warningf(format string, args ...any) {
	b.l.Warn().Str("component", Name).Msgf(strings.TrimSpace(format), args...)
}

func (b badgerLogger) Infof(format string, args ...any) {
	b.l.Debug().Str("component", Name).Msgf(strings.TrimSpace(format), args...)
}

func (b badgerLogger) Debugf(format string, args ...any) {
	b.l.Trace().Str("component", Name).Msgf(strings.TrimSpace(format), args...)
}
