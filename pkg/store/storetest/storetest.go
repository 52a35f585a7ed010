// Package storetest holds the behavior every store.Backend must share.
// Backend packages run it from their own tests.
package storetest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/resource"
	"github.com/kraenzle-ritter/resources/pkg/store"
)

// Factory returns an empty backend. Cleanup is registered on t.
type Factory func(t *testing.T) store.Backend

// Run exercises a backend.
func Run(t *testing.T, newBackend Factory) {
	t.Helper()

	t.Run("InsertThenUpdateKeepsIdentity", func(t *testing.T) {
		testInsertThenUpdate(t, newBackend(t))
	})
	t.Run("UpdateWithoutPayloadKeepsFullJSON", func(t *testing.T) {
		testKeepFullJSON(t, newBackend(t))
	})
	t.Run("ProvidersAreIsolatedPerSubject", func(t *testing.T) {
		testIsolation(t, newBackend(t))
	})
	t.Run("GetAndDelete", func(t *testing.T) {
		testGetAndDelete(t, newBackend(t))
	})
	t.Run("ListByProvider", func(t *testing.T) {
		testListByProvider(t, newBackend(t))
	})
	t.Run("FullJSONRoundTrip", func(t *testing.T) {
		testFullJSONRoundTrip(t, newBackend(t))
	})
	t.Run("RekeyMovesProvider", func(t *testing.T) {
		testRekey(t, newBackend(t))
	})
}

func newResource(subject resource.Subject, provider, id, url string) resource.Resource {
	return resource.Resource{
		SubjectType: subject.Type,
		SubjectID:   subject.ID,
		Provider:    provider,
		ProviderID:  id,
		URL:         url,
	}
}

func testInsertThenUpdate(t *testing.T, b store.Backend) {
	ctx := context.Background()
	subject := resource.NewSubject("person", "1")

	first, created, err := b.Upsert(ctx, newResource(subject, "gnd", "118540238", "https://d-nb.info/gnd/118540238"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	time.Sleep(5 * time.Millisecond)

	second, created, err := b.Upsert(ctx, newResource(subject, "gnd", "118540239", "https://d-nb.info/gnd/118540239"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt), "created_at survives an update")
	assert.False(t, second.UpdatedAt.Before(first.UpdatedAt))
	assert.Equal(t, "118540239", second.ProviderID)

	all, err := b.Load(ctx, subject)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "118540239", all[0].ProviderID)
	assert.Equal(t, "https://d-nb.info/gnd/118540239", all[0].URL)
}

func testKeepFullJSON(t *testing.T, b store.Backend) {
	ctx := context.Background()
	subject := resource.NewSubject("person", "2")
	payload := json.RawMessage(`{"id":"Q57188","labels":{"de":"Gottfried Keller"}}`)

	r := newResource(subject, "wikidata", "Q57188", "https://www.wikidata.org/wiki/Q57188")
	r.FullJSON = payload
	_, _, err := b.Upsert(ctx, r)
	require.NoError(t, err)

	r.FullJSON = nil
	saved, created, err := b.Upsert(ctx, r)
	require.NoError(t, err)
	assert.False(t, created)
	assert.JSONEq(t, string(payload), string(saved.FullJSON))

	got, err := b.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(got.FullJSON))
}

func testIsolation(t *testing.T, b store.Backend) {
	ctx := context.Background()
	alice := resource.NewSubject("person", "alice")
	bob := resource.NewSubject("person", "bob")
	place := resource.NewSubject("place", "alice")

	for _, s := range []resource.Subject{alice, bob, place} {
		_, created, err := b.Upsert(ctx, newResource(s, "viaf", s.String(), "https://viaf.org/viaf/"+s.ID))
		require.NoError(t, err)
		assert.True(t, created, s.String())
	}
	_, _, err := b.Upsert(ctx, newResource(alice, "gnd", "1", "https://d-nb.info/gnd/1"))
	require.NoError(t, err)

	got, err := b.Load(ctx, alice)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "gnd", got[0].Provider, "ordered by provider")
	assert.Equal(t, "viaf", got[1].Provider)

	got, err = b.Load(ctx, place)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "place:alice", got[0].ProviderID)

	got, err = b.Load(ctx, resource.NewSubject("person", "nobody"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testGetAndDelete(t *testing.T, b store.Backend) {
	ctx := context.Background()
	subject := resource.NewSubject("person", "3")

	saved, _, err := b.Upsert(ctx, newResource(subject, "hls-dhs-dss", "012345", "https://hls-dhs-dss.ch/de/articles/012345/"))
	require.NoError(t, err)

	got, err := b.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, subject, got.Subject())

	deleted, err := b.Delete(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = b.Delete(ctx, saved.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = b.Get(ctx, saved.ID)
	assert.True(t, errors.IsNotFound(err), "got %v", err)

	// The slot is free again.
	again, created, err := b.Upsert(ctx, newResource(subject, "hls-dhs-dss", "012345", "https://hls-dhs-dss.ch/de/articles/012345/"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, saved.ID, again.ID)
}

func testListByProvider(t *testing.T, b store.Backend) {
	ctx := context.Background()
	for _, id := range []string{"b", "a", "c"} {
		_, _, err := b.Upsert(ctx, newResource(resource.NewSubject("person", id), "dodis", "P"+id, "https://dodis.ch/P"+id))
		require.NoError(t, err)
	}
	_, _, err := b.Upsert(ctx, newResource(resource.NewSubject("person", "a"), "gnd", "1", "https://d-nb.info/gnd/1"))
	require.NoError(t, err)

	got, err := b.ListByProvider(ctx, "dodis")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].SubjectID, got[1].SubjectID, got[2].SubjectID})

	got, err = b.ListByProvider(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func testFullJSONRoundTrip(t *testing.T, b store.Backend) {
	ctx := context.Background()
	payload, err := resource.EncodeJSON(map[string]any{
		"labels":    map[string]string{"fr": "Genève <ville>", "de": "Zürich"},
		"sitelinks": []string{"dewiki"},
	})
	require.NoError(t, err)

	r := newResource(resource.NewSubject("place", "geneva"), "wikidata", "Q71", "https://www.wikidata.org/wiki/Q71")
	r.FullJSON = payload
	saved, _, err := b.Upsert(ctx, r)
	require.NoError(t, err)

	got, err := b.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(got.FullJSON))
	assert.Contains(t, string(got.FullJSON), "Genève <ville>")
}

func testRekey(t *testing.T, b store.Backend) {
	ctx := context.Background()
	subject := resource.NewSubject("person", "4")

	r := newResource(subject, "hls", "012345", "https://hls-dhs-dss.ch/de/articles/012345/")
	r.FullJSON = json.RawMessage(`{"title":"Keller"}`)
	legacy, _, err := b.Upsert(ctx, r)
	require.NoError(t, err)

	moved, err := b.Rekey(ctx, legacy.ID, "hls-dhs-dss")
	require.NoError(t, err)
	assert.Equal(t, legacy.ID, moved.ID)
	assert.Equal(t, "hls-dhs-dss", moved.Provider)
	assert.Equal(t, "012345", moved.ProviderID)
	assert.WithinDuration(t, legacy.CreatedAt, moved.CreatedAt, time.Second)

	got, err := b.Load(ctx, subject)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hls-dhs-dss", got[0].Provider)
	assert.JSONEq(t, `{"title":"Keller"}`, string(got[0].FullJSON))

	old, err := b.ListByProvider(ctx, "hls")
	require.NoError(t, err)
	assert.Empty(t, old)

	// The canonical key now resolves to the moved row.
	updated, created, err := b.Upsert(ctx, newResource(subject, "hls-dhs-dss", "099999", "https://hls-dhs-dss.ch/de/articles/099999/"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, legacy.ID, updated.ID)

	other, _, err := b.Upsert(ctx, newResource(subject, "gnd", "1", "https://d-nb.info/gnd/1"))
	require.NoError(t, err)
	_, err = b.Rekey(ctx, other.ID, "hls-dhs-dss")
	assert.True(t, errors.IsValidationError(err), "got %v", err)

	_, err = b.Rekey(ctx, "00000000-0000-0000-0000-000000000000", "gnd")
	assert.True(t, errors.IsNotFound(err), "got %v", err)
}
