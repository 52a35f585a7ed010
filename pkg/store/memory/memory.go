// Package memory is an in-process resource store, used by tests and by the
// CLI when no database is configured.
package memory

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/resource"
	"github.com/kraenzle-ritter/resources/pkg/store"
)

// Name is the backend name.
const Name = "memory"

type key struct {
	subjectType string
	subjectID   string
	provider    string
}

func keyOf(r resource.Resource) key {
	return key{r.SubjectType, r.SubjectID, r.Provider}
}

// Store keeps resources in maps guarded by a mutex.
type Store struct {
	mu    sync.RWMutex
	byKey map[key]string
	byID  map[string]resource.Resource
	now   func() time.Time
}

var _ store.Backend = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		byKey: make(map[key]string),
		byID:  make(map[string]resource.Resource),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Name implements store.Backend.
func (s *Store) Name() string { return Name }

// Load implements store.Backend.
func (s *Store) Load(_ context.Context, subject resource.Subject) ([]resource.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []resource.Resource
	for _, r := range s.byID {
		if r.SubjectType == subject.Type && r.SubjectID == subject.ID {
			out = append(out, clone(r))
		}
	}
	slices.SortFunc(out, func(a, b resource.Resource) int {
		return strings.Compare(a.Provider, b.Provider)
	})
	return out, nil
}

// Get implements store.Backend.
func (s *Store) Get(_ context.Context, id string) (resource.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[id]
	if !ok {
		return resource.Resource{}, errors.NewNotFoundError("resource", id)
	}
	return clone(r), nil
}

// Upsert implements store.Backend.
func (s *Store) Upsert(_ context.Context, r resource.Resource) (resource.Resource, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	k := keyOf(r)
	if id, ok := s.byKey[k]; ok {
		existing := s.byID[id]
		existing.ProviderID = r.ProviderID
		existing.URL = r.URL
		if len(r.FullJSON) > 0 {
			existing.FullJSON = bytes.Clone(r.FullJSON)
		}
		existing.UpdatedAt = now
		s.byID[id] = existing
		return clone(existing), false, nil
	}

	r.ID = uuid.NewString()
	r.FullJSON = bytes.Clone(r.FullJSON)
	r.CreatedAt = now
	r.UpdatedAt = now
	s.byKey[k] = r.ID
	s.byID[r.ID] = r
	return clone(r), true, nil
}

// Rekey implements store.Backend.
func (s *Store) Rekey(_ context.Context, id, provider string) (resource.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok {
		return resource.Resource{}, errors.NewNotFoundError("resource", id)
	}
	if r.Provider == provider {
		return clone(r), nil
	}
	target := key{r.SubjectType, r.SubjectID, provider}
	if _, taken := s.byKey[target]; taken {
		return resource.Resource{}, errors.NewValidationError("provider", provider, "subject already has a resource for this provider")
	}

	delete(s.byKey, keyOf(r))
	r.Provider = provider
	r.UpdatedAt = s.now()
	s.byKey[target] = id
	s.byID[id] = r
	return clone(r), nil
}

// Delete implements store.Backend.
func (s *Store) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	delete(s.byID, id)
	delete(s.byKey, keyOf(r))
	return true, nil
}

// ListByProvider implements store.Backend.
func (s *Store) ListByProvider(_ context.Context, provider string) ([]resource.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []resource.Resource
	for _, r := range s.byID {
		if r.Provider == provider {
			out = append(out, clone(r))
		}
	}
	slices.SortFunc(out, func(a, b resource.Resource) int {
		if c := strings.Compare(a.SubjectType, b.SubjectType); c != 0 {
			return c
		}
		return strings.Compare(a.SubjectID, b.SubjectID)
	})
	return out, nil
}

// Len returns the number of stored resources.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Close implements store.Backend.
func (s *Store) Close() error { return nil }

func clone(r resource.Resource) resource.Resource {
	r.FullJSON = bytes.Clone(r.FullJSON)
	return r
}
