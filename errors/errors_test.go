package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionEmpty(t *testing.T) {
	t.Parallel()

	c := &Collection{}

	assert.False(t, c.HasError())
	assert.Zero(t, c.Len())
	assert.NoError(t, c.GetError())
}

func TestCollectionIgnoresNil(t *testing.T) {
	t.Parallel()

	c := &Collection{}
	c.Add(nil)

	assert.False(t, c.HasError())
	assert.NoError(t, c.GetError())
}

func TestCollectionSingleErrorReturnedAsIs(t *testing.T) {
	t.Parallel()

	only := stderrors.New("chunk 2 rejected")

	c := &Collection{}
	c.Add(only)

	require.True(t, c.HasError())
	assert.Equal(t, 1, c.Len())
	assert.Same(t, only, c.GetError())
}

func TestCollectionJoinsMultiple(t *testing.T) {
	t.Parallel()

	first := stderrors.New("chunk 1 rejected")
	second := stderrors.New("chunk 3 rejected")

	c := &Collection{}
	c.Add(first)
	c.Add(nil)
	c.Add(second)

	err := c.GetError()
	require.Error(t, err)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
	assert.Equal(t, 2, c.Len())
}

func TestCollectionClear(t *testing.T) {
	t.Parallel()

	c := &Collection{}
	c.Add(stderrors.New("stale"))
	c.Clear()

	assert.False(t, c.HasError())
	assert.NoError(t, c.GetError())
}
