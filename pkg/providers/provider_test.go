package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderURL(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	tests := []struct {
		name     string
		provider string
		id       string
		locale   string
		want     string
	}{
		{"plain template", "gnd", "118519522", "de", "http://d-nb.info/gnd/118519522"},
		{"listed locale", "hls-dhs-dss", "012345", "fr", "https://hls-dhs-dss.ch/fr/articles/012345"},
		{"unlisted locale uses first", "hls-dhs-dss", "012345", "en", "https://hls-dhs-dss.ch/de/articles/012345"},
		{"wikipedia edition wins", "wikipedia-fr", "42", "de", "https://fr.wikipedia.org/?curid=42"},
		{"wikidata page", "wikidata", "Q42", "", "https://www.wikidata.org/wiki/Q42"},
		{"no template", "worldcat", "lccn-n79-23811", "de", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reg.MustGet(tt.provider).URL(tt.id, tt.locale))
		})
	}
}

func TestProviderAPIURL(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "https://lobid.org/gnd/118519522.json", reg.MustGet("gnd").APIURL("118519522", "de"))
	assert.Empty(t, reg.MustGet("viaf").APIURL("1", "de"))
}

func TestProviderResolveLocaleWithoutLocales(t *testing.T) {
	p := Provider{Key: "x", URLPattern: "https://x/{LOCALE}/{ID}"}
	assert.Equal(t, "it", p.ResolveLocale("it"))
	assert.Equal(t, "https://x/it/7", p.URL("7", "it"))
}

func TestProviderValid(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	hls := reg.MustGet("hls-dhs-dss")
	assert.True(t, hls.Valid("012345"))
	assert.False(t, hls.Valid("12345"))
	assert.False(t, hls.Valid("0123456"))

	wd := reg.MustGet("wikidata")
	assert.True(t, wd.Valid("Q42"))
	assert.False(t, wd.Valid("xQ42"))

	assert.True(t, reg.MustGet("hallernet").Valid("anything"))
}

func TestProviderLabel(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	hls := reg.MustGet("hls-dhs-dss")
	assert.Equal(t, "Dictionnaire historique de la Suisse", hls.Label("fr"))
	assert.Equal(t, "Historisches Lexikon der Schweiz", hls.Label("de-CH"))

	bare := Provider{Key: "alfred-escher", Name: "alfred-escher"}
	assert.Equal(t, "Alfred Escher", bare.Label("de"))

	named := Provider{Key: "x", Name: "Example"}
	assert.Equal(t, "Example", named.Label("de"))
}

func TestParseFamily(t *testing.T) {
	f, err := ParseFamily(" Wikipedia ")
	require.NoError(t, err)
	assert.Equal(t, FamilyWikipedia, f)

	f, err = ParseFamily("")
	require.NoError(t, err)
	assert.Equal(t, FamilyGeneric, f)

	_, err = ParseFamily("viaf")
	assert.Error(t, err)

	assert.True(t, FamilyGND.Resolvable())
	assert.False(t, FamilyMetagrid.Resolvable())
	assert.False(t, FamilyGeneric.Resolvable())
}
