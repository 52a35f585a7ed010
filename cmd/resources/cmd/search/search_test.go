package search

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraenzle-ritter/resources"
	"github.com/kraenzle-ritter/resources/cmd/application"
	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/logging"
	"github.com/kraenzle-ritter/resources/pkg/search"
)

func newApp(t *testing.T, queries chan<- string) *application.Mock {
	t.Helper()
	logging.DisableLoggingForTest(t)

	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") != "wbsearchentities" {
			http.NotFound(w, r)
			return
		}
		select {
		case queries <- r.URL.Query().Get("search"):
		default:
		}
		data, err := os.ReadFile(filepath.Join("testdata", "wbsearchentities_keller.json"))
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}))
	t.Cleanup(up.Close)

	rc, err := resources.New(
		resources.WithEndpoint(resources.EndpointWikidata, up.URL+"/w/api.php"),
		resources.WithCacheConfig(resources.CacheConfig{Driver: "none"}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	return &application.Mock{
		ClientFunc: func() (resources.Client, error) { return rc, nil },
	}
}

func run(t *testing.T, app application.Application, args ...string) ([]search.Result, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewCommand(app)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())

	var hits []search.Result
	if err == nil {
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &hits), stdout.String())
	}
	return hits, err
}

func TestSearch(t *testing.T) {
	queries := make(chan string, 1)
	app := newApp(t, queries)

	hits, err := run(t, app, "wikidata", "Gottfried", "Keller", "--limit", "2")
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "Q57188", hits[0].ID)
	assert.Equal(t, "Gottfried Keller", hits[0].Label)
	assert.Equal(t, "Gottfried Keller", <-queries, "query words are joined")
}

func TestSearchErrors(t *testing.T) {
	app := newApp(t, make(chan string, 1))

	tests := []struct {
		name  string
		args  []string
		check func(error) bool
	}{
		{"unknown provider", []string{"nope", "Keller"}, errors.IsNotFound},
		{"malformed filter", []string{"wikidata", "Keller", "--filter", "nokey"}, errors.IsValidationError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, app, tt.args...)
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}

	_, err := run(t, app, "wikidata")
	assert.Error(t, err, "a query is required")
}
