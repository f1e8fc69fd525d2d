package pointer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTo(t *testing.T) {
	t.Parallel()

	p := To(5 * time.Second)
	require.NotNil(t, p)
	assert.Equal(t, 5*time.Second, *p)
}

func TestValue(t *testing.T) {
	t.Parallel()

	v, ok := Value(To("x"))
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	v, ok = Value[string](nil)
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestValueOrElse(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, ValueOrElse(To(1), 2))
	assert.Equal(t, 2, ValueOrElse[int](nil, 2))
}
