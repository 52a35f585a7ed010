package resolve_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraenzle-ritter/resources/internal/transport"
	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/logging"
	"github.com/kraenzle-ritter/resources/pkg/providers"
	"github.com/kraenzle-ritter/resources/pkg/resolve"
)

// upstream fakes the Wikidata query service and the Wikipedia API.
type upstream struct {
	*httptest.Server
	calls     atomic.Int32
	lastQuery atomic.Value
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		switch {
		case r.URL.Path == "/sparql":
			query := r.URL.Query().Get("query")
			u.lastQuery.Store(query)
			assert.Equal(t, "json", r.URL.Query().Get("format"))
			switch {
			case strings.Contains(query, `"118519522"`):
				serveFixture(t, w, "sparql_single.json")
			case strings.Contains(query, `"ambiguous"`):
				serveFixture(t, w, "sparql_multiple.json")
			case strings.Contains(query, `"broken"`):
				w.WriteHeader(http.StatusInternalServerError)
			default:
				serveFixture(t, w, "sparql_none.json")
			}
		case strings.HasSuffix(r.URL.Path, "/api.php"):
			q := r.URL.Query()
			assert.Equal(t, "query", q.Get("action"))
			assert.Equal(t, "pageprops", q.Get("prop"))
			assert.Equal(t, "/de/api.php", r.URL.Path)
			if q.Get("pageids") == "1092223" {
				serveFixture(t, w, "pageprops.json")
				return
			}
			serveFixture(t, w, "pageprops_missing.json")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(u.Close)
	return u
}

func serveFixture(t *testing.T, w http.ResponseWriter, name string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func newService(t *testing.T, u *upstream) *resolve.Service {
	t.Helper()
	reg, err := providers.Default()
	require.NoError(t, err)

	client := transport.New("test", transport.Settings{})
	return resolve.New(reg, client, client,
		resolve.WithSPARQLEndpoint(u.URL+"/sparql"),
		resolve.WithWikipediaAPI(u.URL+"/{LOCALE}/api.php"),
	)
}

func TestResolveWikidataPassthrough(t *testing.T) {
	u := newUpstream(t)
	svc := newService(t, u)

	r := svc.Resolve(context.Background(), "wikidata", "Q42")
	require.True(t, r.IsOK())
	assert.Equal(t, "Q42", r.Value())
	assert.Zero(t, u.calls.Load(), "wikidata ids resolve without network calls")
}

func TestResolveGND(t *testing.T) {
	logging.DisableLoggingForTest(t)
	u := newUpstream(t)
	svc := newService(t, u)
	ctx := context.Background()

	t.Run("single binding", func(t *testing.T) {
		r := svc.Resolve(ctx, "gnd", "118519522")
		require.True(t, r.IsOK(), r.String())
		assert.Equal(t, "Q57188", r.Value())
		assert.Equal(t, `SELECT ?item WHERE { ?item wdt:P227 "118519522" }`, u.lastQuery.Load())
	})

	t.Run("zero bindings", func(t *testing.T) {
		r := svc.Resolve(ctx, "gnd", "000000000")
		assert.True(t, r.IsEmpty())
		assert.Contains(t, r.Reason(), "0 entities")
	})

	t.Run("ambiguous bindings are never guessed", func(t *testing.T) {
		r := svc.Resolve(ctx, "gnd", "ambiguous")
		assert.True(t, r.IsEmpty())
		assert.Empty(t, r.Value())
	})

	t.Run("upstream failure", func(t *testing.T) {
		r := svc.Resolve(ctx, "gnd", "broken")
		require.True(t, r.IsFailed())
		assert.True(t, errors.IsProviderUnavailable(r.Err()))
	})

	t.Run("quotes are escaped", func(t *testing.T) {
		r := svc.Resolve(ctx, "gnd", `x" } UNION { ?item ?p "y`)
		assert.True(t, r.IsEmpty())
		assert.Equal(t, `SELECT ?item WHERE { ?item wdt:P227 "x\" } UNION { ?item ?p \"y" }`, u.lastQuery.Load())
	})
}

func TestResolveWikipedia(t *testing.T) {
	logging.DisableLoggingForTest(t)
	u := newUpstream(t)
	svc := newService(t, u)

	r := svc.Resolve(context.Background(), "wikipedia-de", "1092223")
	require.True(t, r.IsOK(), r.String())
	assert.Equal(t, "Q57188", r.Value())

	r = svc.Resolve(context.Background(), "wikipedia-de", "404")
	assert.True(t, r.IsEmpty())
}

func TestResolveUnsupported(t *testing.T) {
	u := newUpstream(t)
	svc := newService(t, u)
	ctx := context.Background()

	for _, provider := range []string{"viaf", "metagrid", "not-registered"} {
		r := svc.Resolve(ctx, provider, "123")
		assert.True(t, r.IsEmpty(), provider)
	}
	assert.True(t, svc.Resolve(ctx, "gnd", "  ").IsEmpty())
	assert.Zero(t, u.calls.Load())
}

func TestResolveLogsFailures(t *testing.T) {
	u := newUpstream(t)
	svc := newService(t, u)

	logger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), logger.Logger)

	svc.Resolve(ctx, "gnd", "broken")
	logger.AssertContains(t, "Resolution failed")
	logger.AssertContains(t, `"provider":"gnd"`)
}

func TestEscapeLiteral(t *testing.T) {
	assert.Equal(t, `a\\b\"c\n`, resolve.EscapeLiteral("a\\b\"c\n"))
}
