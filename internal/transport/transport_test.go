package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/logging"
)

type payload struct {
	Name string `json:"name"`
}

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetJSON(t *testing.T) {
	t.Run("decodes body and sends common headers", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.Equal(t, "resources-test/1.0", r.Header.Get("User-Agent"))
			assert.Equal(t, "demo", r.URL.Query().Get("username"))
			assert.Equal(t, "yes", r.Header.Get("X-Extra"))
			_, _ = w.Write([]byte(`{"name":"Zürich"}`))
		})

		c := New("test", Settings{}, WithUserAgent("resources-test/1.0"),
			WithDecorators(QueryParam("username", "demo"), Header("X-Extra", "yes")))

		var got payload
		require.NoError(t, c.GetJSON(context.Background(), srv.URL+"/x?q=1", &got))
		assert.Equal(t, "Zürich", got.Name)
	})

	t.Run("non-2xx becomes APIError with excerpt", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(strings.Repeat("a", 1000)))
		})

		c := New("wikidata", Settings{})
		err := c.GetJSON(context.Background(), srv.URL+"/api?username=secret", &payload{})

		var apiErr *errors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
		assert.Equal(t, "wikidata", apiErr.System)
		assert.Len(t, apiErr.Message, 256+len("..."))
		assert.NotContains(t, apiErr.Endpoint, "secret")
		assert.True(t, errors.IsProviderUnavailable(err))
	})

	t.Run("too many requests is rate limited", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		err := New("sparql", Settings{}).GetJSON(context.Background(), srv.URL, &payload{})
		assert.True(t, errors.IsRateLimited(err))
	})

	t.Run("malformed JSON becomes ParseError", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>oops</html>`))
		})
		err := New("gnd", Settings{}).GetJSON(context.Background(), srv.URL, &payload{})

		var parseErr *errors.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("oversized body becomes ParseError", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"name":"` + strings.Repeat("x", 200) + `"}`))
		})

		err := New("gnd", Settings{}, WithMaxBodySize(64)).GetJSON(context.Background(), srv.URL, &payload{})
		var parseErr *errors.ParseError
		require.ErrorAs(t, err, &parseErr)
		assert.Contains(t, parseErr.Message, "exceeds 64 bytes")

		var got payload
		require.NoError(t, New("gnd", Settings{}, WithMaxBodySize(256)).GetJSON(context.Background(), srv.URL, &got))
		assert.Len(t, got.Name, 200)
	})

	t.Run("slow upstream times out", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(2 * time.Second):
			case <-r.Context().Done():
			}
		})
		c := New("metagrid", Settings{Timeout: 50 * time.Millisecond})
		err := c.GetJSON(context.Background(), srv.URL, &payload{})
		assert.True(t, errors.IsTimeout(err), "got %v", err)
	})

	t.Run("connection refused becomes APIError", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		err := New("gnd", Settings{}).GetJSON(context.Background(), addr, &payload{})
		var apiErr *errors.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Zero(t, apiErr.StatusCode)
	})
}

func TestFetchAndSafeGet(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			_, _ = w.Write([]byte(`{"name":"ok"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`missing`))
	})
	c := New("test", Settings{})

	t.Run("fetch ok", func(t *testing.T) {
		r := Fetch[payload](context.Background(), c, srv.URL+"/ok")
		require.True(t, r.IsOK())
		assert.Equal(t, "ok", r.Value().Name)
	})

	t.Run("fetch failure is logged and reported", func(t *testing.T) {
		logger := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), logger.Logger)

		r := Fetch[payload](ctx, c, srv.URL+"/gone")
		assert.True(t, r.IsFailed())
		logger.AssertContains(t, `"status":404`)
		logger.AssertContains(t, `"body":"missing"`)
		logger.AssertContains(t, "HTTP request failed")
	})

	t.Run("safe get returns fallback", func(t *testing.T) {
		logging.DisableLoggingForTest(t)
		fallback := payload{Name: "fallback"}
		assert.Equal(t, fallback, SafeGet(context.Background(), c, srv.URL+"/gone", fallback))
		assert.Equal(t, "ok", SafeGet(context.Background(), c, srv.URL+"/ok", fallback).Name)
	})
}

type countingObserver struct {
	calls  atomic.Int32
	status atomic.Int32
}

func (o *countingObserver) ObserveRequest(_ string, status int, _ time.Duration, _ error) {
	o.calls.Add(1)
	o.status.Store(int32(status))
}

func TestObserver(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	obs := &countingObserver{}
	c := New("test", Settings{}, WithObserver(obs))
	_ = c.GetJSON(context.Background(), srv.URL, &payload{})

	assert.Equal(t, int32(1), obs.calls.Load())
	assert.Equal(t, int32(http.StatusTeapot), obs.status.Load())
}

func TestPool(t *testing.T) {
	pool := NewPool(Settings{Timeout: 3 * time.Second}, map[string]Settings{
		"Wikidata": {Timeout: 7 * time.Second, ConnectTimeout: 2 * time.Second},
	})

	assert.Equal(t, Settings{Timeout: 7 * time.Second, ConnectTimeout: 2 * time.Second}, pool.Settings(SystemWikidata))
	assert.Equal(t, Settings{Timeout: 3 * time.Second, ConnectTimeout: 5 * time.Second}, pool.Settings(SystemGND))
	assert.Equal(t, 15*time.Second, pool.Settings(SystemGeonames).Timeout)

	a := pool.Client(SystemGND)
	assert.Same(t, a, pool.Client(SystemGND))
	assert.Equal(t, SystemGND, a.System())
	assert.NotSame(t, a, pool.Client(SystemGND, WithDecorators(Header("X", "y"))))
}

func TestUserAgent(t *testing.T) {
	t.Setenv("RESOURCES_USER_AGENT", "")
	assert.Equal(t, "resources/1.2.3 (+https://github.com/kraenzle-ritter/resources)", UserAgent("1.2.3"))
	assert.Equal(t, "resources/dev (+https://github.com/kraenzle-ritter/resources)", UserAgent(""))

	t.Setenv("RESOURCES_USER_AGENT", "my-app/1.0 (ops@example.org)")
	assert.Equal(t, "my-app/1.0 (ops@example.org)", UserAgent("1.2.3"))
}

func TestEndpointAndExcerpt(t *testing.T) {
	assert.Equal(t, "http://api.geonames.org/searchJSON", Endpoint("http://api.geonames.org/searchJSON?username=secret&q=Bern"))
	assert.Equal(t, "https://x.org/a", Endpoint("https://user:pw@x.org/a#frag"))

	assert.Equal(t, "short", Excerpt([]byte("  short \n")))
	long := strings.Repeat("ä", 200)
	ex := Excerpt([]byte(long))
	assert.True(t, strings.HasSuffix(ex, "..."))
	assert.LessOrEqual(t, len(ex), 256+3)
}
