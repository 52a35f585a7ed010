package metagrid_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraenzle-ritter/resources/internal/sources/metagrid"
	"github.com/kraenzle-ritter/resources/internal/sources/registry"
	"github.com/kraenzle-ritter/resources/internal/sources/testhelper"
	"github.com/kraenzle-ritter/resources/pkg/logging"
	"github.com/kraenzle-ritter/resources/pkg/providers"
	"github.com/kraenzle-ritter/resources/pkg/search"
)

func newClient(t *testing.T, fixture string) (search.Client, *testhelper.Upstream) {
	t.Helper()
	up := testhelper.NewUpstream(t, fixture)
	reg, err := providers.Default()
	require.NoError(t, err)

	client, err := registry.Build(reg.MustGet("metagrid"), registry.Deps{
		Endpoints: map[string]string{metagrid.Name: up.URL},
	})
	require.NoError(t, err)
	return client, up
}

func TestSearch(t *testing.T) {
	client, up := newClient(t, "search_keller.json")

	res := client.Search(context.Background(), "Gottfried Keller", search.Options{Limit: 3})
	require.True(t, res.IsOK(), res.String())

	hits := res.Value()
	require.Len(t, hits, 2, "concordances without records are skipped")
	assert.Equal(t, search.Result{
		Provider:    "metagrid",
		ID:          "77",
		Label:       "Keller, Gottfried",
		Description: "1819–1890 (hls-dhs-dss, gnd)",
		URL:         "https://api.metagrid.ch/concordance/77.json",
	}, hits[0])
	assert.Equal(t, "8812", hits[1].ID)
	assert.Equal(t, "Keller, Gottfried (Diplomat)", hits[1].Label)
	assert.Equal(t, "dodis", hits[1].Description)

	path, q := up.Last(t)
	assert.Equal(t, "/search", path)
	assert.Equal(t, "Gottfried Keller", q.Get("query"))
	assert.Equal(t, "1", q.Get("group"))
	assert.Equal(t, "3", q.Get("take"))
}

func TestSearchWithoutHits(t *testing.T) {
	client, _ := newClient(t, "search_empty.json")

	res := client.Search(context.Background(), "zzzzqqq", search.Options{})
	assert.True(t, res.IsEmpty())
}

func TestSearchFailure(t *testing.T) {
	logging.DisableLoggingForTest(t)
	client, up := newClient(t, "")
	up.Respond(http.StatusBadGateway, "")

	res := client.Search(context.Background(), "Keller", search.Options{})
	assert.True(t, res.IsFailed())
	assert.Equal(t, 1, up.Count())
}
