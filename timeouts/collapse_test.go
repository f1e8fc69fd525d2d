package timeouts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amp-labs/dataapi-go/pointer"
)

func TestCollapseAllNilIsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Collapse(nil, nil, nil))
}

func TestCollapseStructuredFieldsLaterWins(t *testing.T) {
	t.Parallel()

	clientLevel := &Override{
		Request:       pointer.To(5 * time.Second),
		GeneralMethod: pointer.To(20 * time.Second),
	}
	callLevel := &Override{Request: pointer.To(time.Second)}

	out := Collapse(clientLevel, nil, callLevel)

	require.NotNil(t, out)
	assert.Equal(t, time.Second, *out.Request)
	assert.Equal(t, 20*time.Second, *out.GeneralMethod)
	assert.Nil(t, out.Provided)
}

func TestCollapseFlatSupersedesInheritedStructured(t *testing.T) {
	t.Parallel()

	clientLevel := &Override{Request: pointer.To(5 * time.Second)}
	callLevel := ProvidedOverride(time.Second)

	out := Collapse(clientLevel, callLevel)

	require.NotNil(t, out)
	require.NotNil(t, out.Provided)
	assert.Equal(t, time.Second, *out.Provided)
	assert.Nil(t, out.Request)
}

func TestCollapseStructuredSupersedesInheritedFlat(t *testing.T) {
	t.Parallel()

	clientLevel := ProvidedOverride(time.Second)
	callLevel := &Override{GeneralMethod: pointer.To(time.Minute)}

	out := Collapse(clientLevel, callLevel)

	require.NotNil(t, out)
	assert.Nil(t, out.Provided)
	assert.Equal(t, time.Minute, *out.GeneralMethod)
}

func TestCollapseMixedLevelKeepsBoth(t *testing.T) {
	t.Parallel()

	out := Collapse(&Override{
		Provided: pointer.To(time.Second),
		Request:  pointer.To(2 * time.Second),
	})

	require.NotNil(t, out)
	assert.NotNil(t, out.Provided)
	assert.NotNil(t, out.Request)
}
