package wikipedia_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraenzle-ritter/resources/internal/sources/registry"
	"github.com/kraenzle-ritter/resources/internal/sources/testhelper"
	"github.com/kraenzle-ritter/resources/internal/sources/wikipedia"
	"github.com/kraenzle-ritter/resources/internal/transport"
	"github.com/kraenzle-ritter/resources/pkg/constants"
	"github.com/kraenzle-ritter/resources/pkg/providers"
	"github.com/kraenzle-ritter/resources/pkg/search"
)

func newClient(t *testing.T, key, fixture string) (search.Client, *testhelper.Upstream) {
	t.Helper()
	up := testhelper.NewUpstream(t, fixture)
	reg, err := providers.Default()
	require.NoError(t, err)

	client, err := registry.Build(reg.MustGet(key), registry.Deps{
		Locale:    "en",
		Endpoints: map[string]string{wikipedia.Name: up.URL + "/w/api.php"},
	})
	require.NoError(t, err)
	return client, up
}

func TestSearch(t *testing.T) {
	client, up := newClient(t, "wikipedia-de", "search_keller.json")

	res := client.Search(context.Background(), " Gottfried Keller ", search.Options{Limit: 2})
	require.True(t, res.IsOK(), res.String())

	hits := res.Value()
	require.Len(t, hits, 2)
	assert.Equal(t, "wikipedia-de", hits[0].Provider)
	assert.Equal(t, "19843", hits[0].ID)
	assert.Equal(t, "Gottfried Keller", hits[0].Label)
	assert.Equal(t, "Gottfried Keller (* 19. Juli 1819 in Zürich; † 15. Juli 1890 ebenda) war ein Schweizer Dichter & Politiker.", hits[0].Description)
	assert.Equal(t, "https://de.wikipedia.org/?curid=19843", hits[0].URL)
	assert.Contains(t, string(hits[0].FullJSON), `"wordcount": 8012`)

	path, q := up.Last(t)
	assert.Equal(t, "/w/api.php", path)
	assert.Equal(t, "query", q.Get("action"))
	assert.Equal(t, "search", q.Get("list"))
	assert.Equal(t, "intitle:Gottfried_Keller", q.Get("srsearch"))
	assert.Equal(t, "0", q.Get("srnamespace"))
	assert.Equal(t, "2", q.Get("srlimit"))
}

func TestSearchWithoutHits(t *testing.T) {
	client, up := newClient(t, "wikipedia-fr", "search_empty.json")

	res := client.Search(context.Background(), "zzzzqqq", search.Options{})
	assert.True(t, res.IsEmpty())

	_, q := up.Last(t)
	assert.Equal(t, "5", q.Get("srlimit"))
}

func TestEndpointUsesProviderEdition(t *testing.T) {
	reg, err := providers.Default()
	require.NoError(t, err)

	client := wikipedia.New(reg.MustGet("wikipedia-it"), transport.New(transport.SystemWikipedia, transport.DefaultSettings()), constants.WikipediaAPI, nil)
	assert.Equal(t,
		"https://it.wikipedia.org/w/api.php?action=query&format=json&list=search&srlimit=3&srnamespace=0&srsearch=intitle%3AZ%C3%BCrich",
		client.Query("Zürich", search.Options{Limit: 3}))
}
