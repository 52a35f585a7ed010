package resources

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rs "github.com/kraenzle-ritter/resources"
	"github.com/kraenzle-ritter/resources/cmd/application"
	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/logging"
	"github.com/kraenzle-ritter/resources/pkg/resource"
)

func newApp(t *testing.T) (*application.Mock, rs.Client) {
	t.Helper()
	logging.DisableLoggingForTest(t)
	rc, err := rs.New(rs.WithCacheConfig(rs.CacheConfig{Driver: "none"}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	return &application.Mock{
		ClientFunc:       func() (rs.Client, error) { return rc, nil },
		OutputFormatFunc: func() string { return "json" },
	}, rc
}

func run(t *testing.T, app application.Application, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewCommand(app)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestAddAndList(t *testing.T) {
	app, _ := newApp(t)

	out, err := run(t, app, "add", "person", "42", "gnd", "118561219")
	require.NoError(t, err)
	var added []resource.Resource
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	require.Len(t, added, 1)
	assert.Equal(t, "gnd", added[0].Provider)
	assert.Contains(t, added[0].URL, "118561219")

	out, err = run(t, app, "list", "person", "42")
	require.NoError(t, err)
	var listed []resource.Resource
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, added[0].ID, listed[0].ID)

	out, err = run(t, app, "list", "--provider", "gnd")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	assert.Len(t, listed, 1)
}

func TestAddWithExplicitURL(t *testing.T) {
	app, _ := newApp(t)

	out, err := run(t, app, "add", "place", "7", "geonames", "2657896", "--url", "https://example.org/zurich")
	require.NoError(t, err)
	var added []resource.Resource
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.Equal(t, "https://example.org/zurich", added[0].URL)
}

func TestListArguments(t *testing.T) {
	app, _ := newApp(t)

	_, err := run(t, app, "list", "person")
	assert.Error(t, err)
	_, err = run(t, app, "list", "person", "42", "--provider", "gnd")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	app, rc := newApp(t)
	saved, err := rc.Save(context.Background(), resource.NewSubject("person", "42"), resource.Triple{Provider: "gnd", ProviderID: "118561219"})
	require.NoError(t, err)

	_, err = run(t, app, "delete", saved.ID)
	require.NoError(t, err)

	_, err = run(t, app, "delete", saved.ID)
	assert.True(t, errors.IsNotFound(err))
}
