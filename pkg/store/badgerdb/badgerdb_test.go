package badgerdb_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraenzle-ritter/resources/pkg/logging"
	"github.com/kraenzle-ritter/resources/pkg/resource"
	"github.com/kraenzle-ritter/resources/pkg/store"
	"github.com/kraenzle-ritter/resources/pkg/store/badgerdb"
	"github.com/kraenzle-ritter/resources/pkg/store/storetest"
)

func openInMemory(t *testing.T) *badgerdb.Store {
	t.Helper()
	s, err := badgerdb.Open(badgerdb.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Backend {
		return openInMemory(t)
	})
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := badgerdb.Open(badgerdb.Options{Path: dir})
	require.NoError(t, err)
	saved, _, err := s.Upsert(ctx, resource.Resource{
		SubjectType: "person", SubjectID: "1", Provider: "wikidata", ProviderID: "Q1",
		FullJSON: []byte(`{ "id" : "Q1" }`),
	})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = badgerdb.Open(badgerdb.Options{Path: dir})
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, `{ "id" : "Q1" }`, string(got.FullJSON), "payload bytes are kept as written")
}

func TestSubjectIDsWithSeparators(t *testing.T) {
	ctx := context.Background()
	s := openInMemory(t)

	for _, id := range []string{"a", "a/b"} {
		_, _, err := s.Upsert(ctx, resource.Resource{SubjectType: "person", SubjectID: id, Provider: "gnd", ProviderID: id})
		require.NoError(t, err)
	}

	got, err := s.Load(ctx, resource.NewSubject("person", "a"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ProviderID)
}

func TestConcurrentUpsertsKeepOneRow(t *testing.T) {
	ctx := context.Background()
	s := openInMemory(t)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.Upsert(ctx, resource.Resource{SubjectType: "person", SubjectID: "1", Provider: "viaf", ProviderID: "42"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Load(ctx, resource.NewSubject("person", "1"))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestLoggerRoutesBadgerOutput(t *testing.T) {
	tl := logging.NewTestLogger(t)
	l := badgerdb.Logger(tl.Logger)

	l.Warningf("value log %s is full\n", "000001")
	l.Infof("replaying from %d", 42)

	tl.AssertContains(t, "value log 000001 is full")
	tl.AssertContains(t, `"level":"warn"`)
	tl.AssertContains(t, `"level":"debug"`)
	tl.AssertContains(t, `"component":"badger"`)
}
