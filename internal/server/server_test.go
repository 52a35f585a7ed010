package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraenzle-ritter/resources"
	"github.com/kraenzle-ritter/resources/internal/server"
	"github.com/kraenzle-ritter/resources/internal/server/middleware"
	"github.com/kraenzle-ritter/resources/pkg/logging"
)

// envelope mirrors response.Response with raw data for per-test decoding.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// newUpstream fakes the Wikidata action API.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var name string
		switch {
		case r.URL.Path == "/w/api.php" && q.Get("action") == "wbsearchentities":
			name = "wbsearchentities_keller.json"
		case r.URL.Path == "/w/api.php" && q.Get("ids") == "Q57188":
			name = "wbgetentities_Q57188.json"
		default:
			http.NotFound(w, r)
			return
		}
		data, err := os.ReadFile(filepath.Join("testdata", name))
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
	}))
	t.Cleanup(up.Close)
	return up
}

func newHandler(t *testing.T, mutate ...func(*server.Config)) http.Handler {
	t.Helper()
	logging.DisableLoggingForTest(t)
	up := newUpstream(t)

	reg := prometheus.NewRegistry()
	rc, err := resources.New(
		resources.WithEndpoint(resources.EndpointWikidata, up.URL+"/w/api.php"),
		resources.WithCacheConfig(resources.CacheConfig{Driver: "none"}),
		resources.WithThrottle(0),
		resources.WithMetrics(reg),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	cfg := server.DefaultConfig()
	cfg.Version = "test"
	for _, m := range mutate {
		m(&cfg)
	}
	logger := zerolog.Nop()
	return server.New(rc, reg, &logger, cfg).Handler()
}

func do(t *testing.T, h http.Handler, method, target string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func TestHealth(t *testing.T) {
	h := newHandler(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec, env := do(t, h, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)

		var data map[string]any
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "healthy", data["status"])
		assert.Equal(t, "test", data["version"])
		assert.Greater(t, data["providers"], float64(0))
	}
}

func TestProviders(t *testing.T) {
	h := newHandler(t)

	t.Run("list", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, "/api/v1/providers", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var data struct {
			Providers []struct {
				Key string `json:"key"`
			} `json:"providers"`
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, len(data.Providers), data.Count)

		var keys []string
		for _, p := range data.Providers {
			keys = append(keys, p.Key)
		}
		assert.Contains(t, keys, "gnd")
		assert.Contains(t, keys, "wikidata")
	})

	t.Run("searchable subset", func(t *testing.T) {
		_, all := do(t, h, http.MethodGet, "/api/v1/providers", nil)
		_, some := do(t, h, http.MethodGet, "/api/v1/providers?searchable=true", nil)

		var a, s struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(all.Data, &a))
		require.NoError(t, json.Unmarshal(some.Data, &s))
		assert.Positive(t, s.Count)
		assert.LessOrEqual(t, s.Count, a.Count)
	})

	t.Run("get", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, "/api/v1/providers/gnd", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(env.Data), `"key":"gnd"`)
	})

	t.Run("unknown", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, "/api/v1/providers/nope", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})

	t.Run("invalid flag", func(t *testing.T) {
		rec, _ := do(t, h, http.MethodGet, "/api/v1/providers?searchable=maybe", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestResolve(t *testing.T) {
	h := newHandler(t)

	rec, env := do(t, h, http.MethodGet, "/api/v1/resolve/wikidata/Q57188", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var data map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "Q57188", data["wikidata"])

	rec, env = do(t, h, http.MethodGet, "/api/v1/resolve/nope/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "empty", data["status"])
	assert.NotEmpty(t, data["reason"])
}

func TestSearch(t *testing.T) {
	h := newHandler(t)

	t.Run("hits", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, "/api/v1/search/wikidata?q=Gottfried+Keller&limit=5", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var data struct {
			Results []struct {
				ID    string `json:"id"`
				Label string `json:"label"`
			} `json:"results"`
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		require.NotEmpty(t, data.Results)
		assert.Equal(t, "Q57188", data.Results[0].ID)
		assert.Equal(t, "Gottfried Keller", data.Results[0].Label)
		assert.Equal(t, len(data.Results), data.Count)
	})

	t.Run("missing query", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, "/api/v1/search/wikidata", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "BAD_REQUEST", env.Error.Code)
	})

	t.Run("invalid limit", func(t *testing.T) {
		rec, _ := do(t, h, http.MethodGet, "/api/v1/search/wikidata?q=x&limit=ten", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown provider", func(t *testing.T) {
		rec, _ := do(t, h, http.MethodGet, "/api/v1/search/nope?q=x", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestResourceLifecycle(t *testing.T) {
	h := newHandler(t)
	base := "/api/v1/subjects/person/keller"

	rec, env := do(t, h, http.MethodPost, base+"/resources", map[string]string{
		"provider":    "wikidata",
		"provider_id": "Q57188",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var saved struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &saved))
	require.NotEmpty(t, saved.ID)
	assert.Contains(t, saved.URL, "Q57188")

	t.Run("dry run leaves the store alone", func(t *testing.T) {
		rec, env := do(t, h, http.MethodPost, base+"/sync/wikidata?dry_run=true", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var report struct {
			Status  string `json:"status"`
			DryRun  bool   `json:"dry_run"`
			Planned []struct {
				Provider string `json:"provider"`
			} `json:"planned"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &report))
		assert.Equal(t, "ok", report.Status)
		assert.True(t, report.DryRun)
		assert.NotEmpty(t, report.Planned)

		_, env = do(t, h, http.MethodGet, base+"/resources", nil)
		var list struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &list))
		assert.Equal(t, 1, list.Count)
	})

	t.Run("sync with exclusion", func(t *testing.T) {
		rec, env := do(t, h, http.MethodPost, base+"/sync/wikidata?exclude=viaf", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var report struct {
			Status   string `json:"status"`
			Created  int    `json:"created"`
			Excluded []struct {
				Provider string `json:"provider"`
			} `json:"excluded"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &report))
		assert.Equal(t, "ok", report.Status)
		assert.Equal(t, 1, report.Created)
		require.Len(t, report.Excluded, 1)
		assert.Equal(t, "viaf", report.Excluded[0].Provider)
	})

	t.Run("list", func(t *testing.T) {
		rec, env := do(t, h, http.MethodGet, base+"/resources", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var list struct {
			Resources []struct {
				Provider   string `json:"provider"`
				ProviderID string `json:"provider_id"`
			} `json:"resources"`
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &list))
		assert.Equal(t, 2, list.Count)
		got := map[string]string{}
		for _, r := range list.Resources {
			got[r.Provider] = r.ProviderID
		}
		assert.Equal(t, map[string]string{"wikidata": "Q57188", "gnd": "118519522"}, got)
	})

	t.Run("delete", func(t *testing.T) {
		rec, _ := do(t, h, http.MethodDelete, "/api/v1/resources/"+saved.ID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec, env := do(t, h, http.MethodDelete, "/api/v1/resources/"+saved.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		require.NotNil(t, env.Error)
	})
}

func TestSaveResourceRejectsBadBodies(t *testing.T) {
	h := newHandler(t)

	rec, _ := do(t, h, http.MethodPost, "/api/v1/subjects/person/keller/resources", map[string]string{"provider": "gnd"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/api/v1/subjects/person/keller/resources", map[string]string{
		"provider": "gnd", "provider_id": "1", "colour": "blue",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDEcho(t *testing.T) {
	h := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "trace-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "trace-42", rec.Header().Get(middleware.RequestIDHeader))
}

func TestMetrics(t *testing.T) {
	h := newHandler(t)
	do(t, h, http.MethodGet, "/api/v1/search/wikidata?q=Gottfried+Keller", nil)

	rec, _ := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "resources_")

	disabled := newHandler(t, func(c *server.Config) { c.MetricsEnabled = false })
	rec, _ = do(t, disabled, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutingErrors(t *testing.T) {
	h := newHandler(t)

	rec, env := do(t, h, http.MethodGet, "/api/v1/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rec, env = do(t, h, http.MethodPut, "/api/v1/providers", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "METHOD_NOT_ALLOWED", env.Error.Code)

	rec, _ = do(t, h, http.MethodGet, "/favicon.ico", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestCustomPrefix(t *testing.T) {
	h := newHandler(t, func(c *server.Config) { c.PathPrefix = "/v2" })

	rec, _ := do(t, h, http.MethodGet, "/v2/providers/gnd", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = do(t, h, http.MethodGet, "/api/v1/providers/gnd", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
