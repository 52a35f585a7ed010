package providers

import (
	_ "embed"
	"os"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/kraenzle-ritter/resources/pkg/errors"
)

//go:embed providers.yaml
var embeddedProviders []byte

// file is the on-disk layout of a registry definition.
type file struct {
	Providers []Provider `yaml:"providers"`
}

var defaultRegistry = sync.OnceValues(func() (*Registry, error) {
	return Load(embeddedProviders)
})

// Default returns the registry built from the embedded providers.yaml.
// It is parsed once per process.
func Default() (*Registry, error) {
	return defaultRegistry()
}

// Load parses a YAML registry definition.
func Load(data []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.WrapParse("yaml", "providers", err)
	}
	reg, err := New(f.Providers...)
	if err != nil {
		return nil, errors.NewConfigError("providers", "invalid provider registry", err)
	}
	return reg, nil
}

// LoadFile reads and parses a YAML registry definition from disk.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, errors.NewConfigError("providers", "cannot read "+path, err)
	}
	return Load(data)
}

// Marshal encodes the registry in the same layout Load accepts.
func (r *Registry) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(file{Providers: r.All()})
	if err != nil {
		return nil, errors.WrapParse("yaml", "providers", err)
	}
	return data, nil
}
