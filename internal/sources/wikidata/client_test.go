package wikidata_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraenzle-ritter/resources/internal/sources/registry"
	"github.com/kraenzle-ritter/resources/internal/sources/testhelper"
	"github.com/kraenzle-ritter/resources/internal/sources/wikidata"
	"github.com/kraenzle-ritter/resources/pkg/providers"
	"github.com/kraenzle-ritter/resources/pkg/search"
)

func newClient(t *testing.T, fixture string) (search.Client, *testhelper.Upstream) {
	t.Helper()
	up := testhelper.NewUpstream(t, fixture)
	reg, err := providers.Default()
	require.NoError(t, err)

	client, err := registry.Build(reg.MustGet("wikidata"), registry.Deps{
		Locale:    "de",
		Endpoints: map[string]string{wikidata.Name: up.URL + "/w/api.php"},
	})
	require.NoError(t, err)
	return client, up
}

func TestSearch(t *testing.T) {
	client, up := newClient(t, "search_keller.json")

	res := client.Search(context.Background(), " Gottfried Keller ", search.Options{Limit: 2, Locale: "fr"})
	require.True(t, res.IsOK(), res.String())

	hits := res.Value()
	require.Len(t, hits, 2)
	assert.Equal(t, search.Result{
		Provider:    "wikidata",
		ID:          "Q57188",
		Label:       "Gottfried Keller",
		Description: "Schweizer Dichter und Politiker (1819–1890)",
		URL:         "https://www.wikidata.org/wiki/Q57188",
		FullJSON:    hits[0].FullJSON,
	}, hits[0])
	assert.Equal(t, "wikidata:Q57188", hits[0].Triple().String())

	_, q := up.Last(t)
	assert.Equal(t, "wbsearchentities", q.Get("action"))
	assert.Equal(t, "Gottfried Keller", q.Get("search"))
	assert.Equal(t, "fr", q.Get("language"))
	assert.Equal(t, "fr", q.Get("uselang"))
	assert.Equal(t, "item", q.Get("type"))
	assert.Equal(t, "2", q.Get("limit"))
}

func TestSearchWithoutHits(t *testing.T) {
	client, up := newClient(t, "search_empty.json")

	res := client.Search(context.Background(), "zzzzqqq", search.Options{})
	assert.True(t, res.IsEmpty())

	_, q := up.Last(t)
	assert.Equal(t, "de", q.Get("language"), "falls back to the configured locale")
	assert.Equal(t, "5", q.Get("limit"))
}
