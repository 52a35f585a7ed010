package errors_test

import (
	"errors"
	"testing"

	pkgerrors "github.com/kraenzle-ritter/resources/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("basic error", func(t *testing.T) {
		err := &pkgerrors.NotFoundError{
			Resource: "resource",
			ID:       "5c1f",
		}
		assert.Equal(t, "resource with ID 5c1f not found", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrNotFound))
	})

	t.Run("constructor", func(t *testing.T) {
		err := pkgerrors.NewNotFoundError("provider", "gnd")
		assert.Equal(t, "provider with ID gnd not found", err.Error())
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("wrapped error", func(t *testing.T) {
		base := pkgerrors.NewNotFoundError("provider", "viaf")
		wrapped := errors.Join(errors.New("failed"), base)
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "provider",
			Message: "cannot be empty",
		}
		assert.Equal(t, "validation failed for field provider: cannot be empty", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid configuration"}
		assert.Equal(t, "validation failed: invalid configuration", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("wrap helper", func(t *testing.T) {
		err := pkgerrors.WrapValidation("regex", errors.New("missing closing )"))
		assert.True(t, pkgerrors.IsValidationError(err))
		assert.Nil(t, pkgerrors.WrapValidation("regex", nil))
	})
}

func TestAPIError(t *testing.T) {
	t.Run("with status code", func(t *testing.T) {
		err := &pkgerrors.APIError{
			System:     "wikidata",
			StatusCode: 429,
			Message:    "too many requests",
			Endpoint:   "https://www.wikidata.org/w/api.php",
		}
		assert.Contains(t, err.Error(), "wikidata")
		assert.Contains(t, err.Error(), "429")
		assert.True(t, pkgerrors.IsRateLimited(err))
		assert.False(t, pkgerrors.IsProviderUnavailable(err))
	})

	t.Run("server error", func(t *testing.T) {
		err := pkgerrors.NewAPIError("sparql", 503, "service unavailable")
		assert.True(t, pkgerrors.IsProviderUnavailable(err))
	})

	t.Run("client error matches neither", func(t *testing.T) {
		err := pkgerrors.NewAPIError("geonames", 404, "not found")
		assert.False(t, pkgerrors.IsProviderUnavailable(err))
		assert.False(t, pkgerrors.IsRateLimited(err))
	})

	t.Run("without status", func(t *testing.T) {
		base := errors.New("connection refused")
		err := pkgerrors.WrapAPI("metagrid", 0, base)
		var apiErr *pkgerrors.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, "API error from metagrid: connection refused", apiErr.Error())
		assert.ErrorIs(t, err, base)
	})
}

func TestConfigError(t *testing.T) {
	err := pkgerrors.NewConfigError("store", "unknown driver", nil)
	assert.Equal(t, "configuration error in store: unknown driver", err.Error())

	base := errors.New("dial tcp: refused")
	wrapped := pkgerrors.NewConfigError("", "cannot open", base)
	assert.Equal(t, "configuration error: cannot open", wrapped.Error())
	assert.ErrorIs(t, wrapped, base)
}

func TestSyncError(t *testing.T) {
	base := errors.New("upstream down")
	err := pkgerrors.NewSyncError("person:7", "gnd", base)
	assert.Equal(t, "sync error for person:7 from gnd: upstream down", err.Error())
	assert.Equal(t, base, err.Unwrap())
}

func TestParseError(t *testing.T) {
	t.Run("with source", func(t *testing.T) {
		err := pkgerrors.NewParseError("json", "https://lobid.org/gnd/search", "unexpected EOF", nil)
		assert.Equal(t, "json parse error in https://lobid.org/gnd/search: unexpected EOF", err.Error())
	})

	t.Run("format only", func(t *testing.T) {
		err := &pkgerrors.ParseError{Format: "yaml", Message: "bad indent"}
		assert.Equal(t, "yaml parse error: bad indent", err.Error())
	})

	t.Run("wrap helper", func(t *testing.T) {
		base := errors.New("EOF")
		wrapped := pkgerrors.WrapParse("json", "providers.yaml", base)
		var parseErr *pkgerrors.ParseError
		require.True(t, errors.As(wrapped, &parseErr))
		assert.Equal(t, "providers.yaml", parseErr.Source)
		assert.Equal(t, base, parseErr.Unwrap())
	})
}

func TestStoreError(t *testing.T) {
	base := errors.New("duplicate key")
	err := pkgerrors.WrapStore("upsert", "postgres", "gnd", base)
	assert.True(t, pkgerrors.IsStoreError(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "postgres store: failed to upsert gnd: duplicate key", err.Error())

	noID := pkgerrors.NewStoreError("open", "badger", "", base)
	assert.Equal(t, "badger store: failed to open: duplicate key", noID.Error())

	assert.Nil(t, pkgerrors.WrapStore("load", "memory", "", nil))
}

func TestTimeoutError(t *testing.T) {
	err := pkgerrors.NewTimeoutError("GET wikidata", "10s", "deadline exceeded")
	assert.True(t, pkgerrors.IsTimeout(err))
	assert.Contains(t, err.Error(), "after 10s")

	short := &pkgerrors.TimeoutError{Operation: "resolve", Message: "slow"}
	assert.Equal(t, "operation resolve timed out: slow", short.Error())
}
