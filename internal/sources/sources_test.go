package sources_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraenzle-ritter/resources/internal/sources"
	"github.com/kraenzle-ritter/resources/internal/sources/registry"
	"github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/kraenzle-ritter/resources/pkg/providers"
)

func TestAllClientsRegistered(t *testing.T) {
	assert.Equal(t, []string{"geonames", "gnd", "metagrid", "wikidata", "wikipedia"}, registry.Names())
}

func TestSearchable(t *testing.T) {
	reg, err := providers.Default()
	require.NoError(t, err)

	var keys []string
	for _, p := range sources.Searchable(reg) {
		keys = append(keys, p.Key)
	}
	assert.Subset(t, keys, []string{"wikidata", "gnd", "metagrid", "geonames", "wikipedia-de", "wikipedia-en", "wikipedia-fr", "wikipedia-it"})
	assert.NotContains(t, keys, "viaf")
}

func TestBuildUnsupported(t *testing.T) {
	reg, err := providers.Default()
	require.NoError(t, err)

	_, err = registry.Build(reg.MustGet("viaf"), registry.Deps{})
	assert.ErrorIs(t, err, errors.ErrUnsupported)
}
