package lookup_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kraenzle-ritter/resources/pkg/lookup"
)

func TestResultOutcomes(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		r := lookup.OK("Q42")
		assert.True(t, r.IsOK())
		assert.False(t, r.IsEmpty())
		assert.False(t, r.IsFailed())
		v, ok := r.Get()
		assert.True(t, ok)
		assert.Equal(t, "Q42", v)
		assert.Equal(t, "ok(Q42)", r.String())
	})

	t.Run("empty", func(t *testing.T) {
		r := lookup.Emptyf[string]("%d bindings", 2)
		assert.True(t, r.IsEmpty())
		assert.Equal(t, "2 bindings", r.Reason())
		assert.Nil(t, r.Err())
		_, ok := r.Get()
		assert.False(t, ok)
		assert.Equal(t, "empty(2 bindings)", r.String())
	})

	t.Run("failed", func(t *testing.T) {
		err := errors.New("connection refused")
		r := lookup.Failed[[]string](err)
		assert.True(t, r.IsFailed())
		assert.Equal(t, err, r.Err())
		assert.Equal(t, "connection refused", r.Reason())
		assert.Nil(t, r.Value())
	})

	t.Run("zero value is empty", func(t *testing.T) {
		var r lookup.Result[int]
		assert.True(t, r.IsEmpty())
		assert.Equal(t, "empty", r.String())
	})
}

func TestStatusText(t *testing.T) {
	text, err := lookup.StatusFailed.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "failed", string(text))
	assert.Equal(t, "status(9)", lookup.Status(9).String())
}

func TestMap(t *testing.T) {
	length := func(s string) int { return len(s) }

	assert.Equal(t, 3, lookup.Map(lookup.OK("Q42"), length).Value())

	empty := lookup.Map(lookup.Empty[string]("none"), length)
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, "none", empty.Reason())

	cause := errors.New("timeout")
	failed := lookup.Map(lookup.Failed[string](cause), strconv.Quote)
	assert.True(t, failed.IsFailed())
	assert.ErrorIs(t, failed.Err(), cause)
}
