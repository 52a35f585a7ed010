package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/logging"
	"github.com/kraenzle-ritter/resources/pkg/resource"
	"github.com/kraenzle-ritter/resources/pkg/store"
	"github.com/kraenzle-ritter/resources/pkg/store/memory"
)

func TestCanonicalizer(t *testing.T) {
	c, err := store.NewCanonicalizer(
		map[string]string{"HLS": "hls-dhs-dss", "wikipedia_de": "wikipedia-de"},
		store.Rule{Provider: "hls", Pattern: `^https?://hls-dhs-dss\.ch/\w+/articles/(\d+)/?$`, Replace: "$1"},
	)
	require.NoError(t, err)

	assert.Equal(t, "hls-dhs-dss", c.Provider(" hls "))
	assert.Equal(t, "wikipedia-de", c.Provider("Wikipedia_DE"))
	assert.Equal(t, "gnd", c.Provider("GND"))

	assert.Equal(t, "012345", c.ProviderID("hls-dhs-dss", "https://hls-dhs-dss.ch/de/articles/012345/"))
	assert.Equal(t, "Gottfried Keller", c.ProviderID("wikipedia-de", "Gottfried%20Keller"))
	assert.Equal(t, "100%", c.ProviderID("gnd", "100%"), "undecodable ids are kept")

	got := c.Triple(resource.Triple{Provider: "HLS", ProviderID: " 012345 ", URL: " https://x "})
	assert.Equal(t, resource.Triple{Provider: "hls-dhs-dss", ProviderID: "012345", URL: "https://x"}, got)
	assert.Equal(t, map[string]string{"hls": "hls-dhs-dss", "wikipedia_de": "wikipedia-de"}, c.Aliases())
}

func TestNilCanonicalizer(t *testing.T) {
	var c *store.Canonicalizer
	assert.Equal(t, "gnd", c.Provider(" GND"))
	assert.Equal(t, "a b", c.ProviderID("gnd", "a+b"))
	assert.Empty(t, c.Aliases())
}

func TestCanonicalizerRejectsBadRules(t *testing.T) {
	_, err := store.NewCanonicalizer(nil, store.Rule{Provider: "gnd", Pattern: "("})
	assert.True(t, errors.IsValidationError(err))

	_, err = store.NewCanonicalizer(nil, store.Rule{Pattern: ".*"})
	assert.True(t, errors.IsValidationError(err))

	_, err = store.NewCanonicalizer(map[string]string{"": "gnd"})
	assert.True(t, errors.IsValidationError(err))

	assert.Panics(t, func() { store.MustCanonicalizer(nil, store.Rule{Provider: "x", Pattern: "["}) })
}

func TestReconcilerUpsertsByCanonicalProvider(t *testing.T) {
	logging.DisableLoggingForTest(t)
	ctx := context.Background()
	r := store.NewReconciler(memory.New(), store.MustCanonicalizer(map[string]string{"hls": "hls-dhs-dss"}))
	subject := resource.NewSubject("person", "1")

	first, created, err := r.Upsert(ctx, subject, resource.Triple{Provider: "HLS", ProviderID: "1", URL: "u1"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "hls-dhs-dss", first.Provider)

	second, created, err := r.Upsert(ctx, subject, resource.Triple{Provider: "hls-dhs-dss", ProviderID: "2", URL: "u2"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	found, ok, err := r.Find(ctx, subject, "hls")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2", found.ProviderID)

	_, ok, err = r.Find(ctx, subject, "gnd")
	require.NoError(t, err)
	assert.False(t, ok)

	list, err := r.ListByProvider(ctx, "HLS")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	deleted, err := r.Delete(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	require.NoError(t, r.Close())
}

func TestReconcilerFoldsHistoricalProviderKeys(t *testing.T) {
	logging.DisableLoggingForTest(t)
	ctx := context.Background()
	backend := memory.New()
	subject := resource.NewSubject("person", "1")

	// Written before the alias existed.
	legacy, created, err := store.NewReconciler(backend, nil).Upsert(ctx, subject,
		resource.Triple{Provider: "hls", ProviderID: "012345", URL: "https://hls-dhs-dss.ch/de/articles/012345/"})
	require.NoError(t, err)
	require.True(t, created)

	r := store.NewReconciler(backend, store.MustCanonicalizer(map[string]string{"hls": "hls-dhs-dss"}))
	found, ok, err := r.Find(ctx, subject, "hls-dhs-dss")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, legacy.ID, found.ID)

	saved, created, err := r.Upsert(ctx, subject,
		resource.Triple{Provider: "hls-dhs-dss", ProviderID: "099999", URL: "https://hls-dhs-dss.ch/de/articles/099999/"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, legacy.ID, saved.ID)
	assert.Equal(t, "hls-dhs-dss", saved.Provider)
	assert.Equal(t, "099999", saved.ProviderID)
	assert.Equal(t, 1, backend.Len())

	all, err := r.Load(ctx, subject)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "hls-dhs-dss", all[0].Provider)
}

func TestReconcilerFindPrefersCanonicalRow(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	subject := resource.NewSubject("person", "1")

	plain := store.NewReconciler(backend, nil)
	_, _, err := plain.Upsert(ctx, subject, resource.Triple{Provider: "hls", ProviderID: "old"})
	require.NoError(t, err)
	current, _, err := plain.Upsert(ctx, subject, resource.Triple{Provider: "hls-dhs-dss", ProviderID: "new"})
	require.NoError(t, err)

	r := store.NewReconciler(backend, store.MustCanonicalizer(map[string]string{"hls": "hls-dhs-dss"}))
	found, ok, err := r.Find(ctx, subject, "hls")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, current.ID, found.ID)

	saved, created, err := r.Upsert(ctx, subject, resource.Triple{Provider: "hls", ProviderID: "newer"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, current.ID, saved.ID)
}

func TestReconcilerValidates(t *testing.T) {
	ctx := context.Background()
	r := store.NewReconciler(memory.New(), nil)

	_, _, err := r.Upsert(ctx, resource.NewSubject("", "1"), resource.Triple{Provider: "gnd"})
	assert.True(t, errors.IsValidationError(err))

	_, _, err = r.Upsert(ctx, resource.NewSubject("person", "1"), resource.Triple{Provider: "  "})
	assert.True(t, errors.IsValidationError(err))

	_, err = r.Load(ctx, resource.NewSubject("person", ""))
	assert.True(t, errors.IsValidationError(err))
}
