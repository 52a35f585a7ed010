// Package testhelper provides utilities for managing testdata files in
// search-client tests and for faking their upstream APIs.
package testhelper

import (
	"encoding/json"
	"flag"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/kraenzle-ritter/resources/pkg/constants"
)

// UpdateTestdata is the global flag for updating testdata files.
var UpdateTestdata = flag.Bool("update", false, "update testdata files")

// LoadTestdata loads a testdata file from the caller's testdata directory.
func LoadTestdata(t *testing.T, filename string) []byte {
	t.Helper()

	testdataPath := filepath.Join("testdata", filename)

	data, err := os.ReadFile(testdataPath) //nolint:gosec // Test file paths are controlled
	if err != nil {
		t.Fatalf("Failed to load testdata file %s: %v", testdataPath, err)
	}

	return data
}

// SaveTestdata saves data to a testdata file if the -update flag is set.
func SaveTestdata(t *testing.T, filename string, data []byte) {
	t.Helper()

	if !*UpdateTestdata {
		return
	}

	testdataDir := "testdata"
	if err := os.MkdirAll(testdataDir, constants.DirPermissions); err != nil {
		t.Fatalf("Failed to create testdata directory: %v", err)
	}

	testdataPath := filepath.Join(testdataDir, filename)

	if err := os.WriteFile(testdataPath, data, constants.FilePermissions); err != nil {
		t.Fatalf("Failed to save testdata file %s: %v", testdataPath, err)
	}

	t.Logf("Updated testdata file: %s", testdataPath)
}

// LoadJSON loads and unmarshals JSON from a testdata file.
func LoadJSON(t *testing.T, filename string, v any) {
	t.Helper()

	data := LoadTestdata(t, filename)

	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("Failed to unmarshal JSON from testdata file %s: %v", filename, err)
	}
}

// Upstream is a fake API that answers every request with one testdata file
// (or status) and remembers the requests it saw.
type Upstream struct {
	*httptest.Server

	mu       sync.Mutex
	file     string
	status   int
	requests []*http.Request
}

// NewUpstream starts a fake API serving filename with 200 OK.
func NewUpstream(t *testing.T, filename string) *Upstream {
	t.Helper()
	u := &Upstream{file: filename, status: http.StatusOK}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.requests = append(u.requests, r.Clone(r.Context()))
		file, status := u.file, u.status
		u.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if file != "" {
			_, _ = w.Write(LoadTestdata(t, file))
		}
	}))
	t.Cleanup(u.Close)
	return u
}

// Respond changes the answer for subsequent requests. An empty filename
// sends no body.
func (u *Upstream) Respond(status int, filename string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status, u.file = status, filename
}

// Last returns the path and query of the most recent request.
func (u *Upstream) Last(t *testing.T) (string, url.Values) {
	t.Helper()
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.requests) == 0 {
		t.Fatal("upstream saw no request")
	}
	r := u.requests[len(u.requests)-1]
	return r.URL.Path, r.URL.Query()
}

// Count returns how many requests were served.
func (u *Upstream) Count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.requests)
}
