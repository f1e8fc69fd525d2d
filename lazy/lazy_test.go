package lazy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/atomic"
)

func TestGetInitializesOnce(t *testing.T) {
	t.Parallel()

	calls := atomic.NewInt32(0)

	v := New(func() int {
		calls.Inc()

		return 42
	})

	assert.False(t, v.Initialized())
	assert.Equal(t, 42, v.Get())
	assert.Equal(t, 42, v.Get())
	assert.True(t, v.Initialized())
	assert.Equal(t, int32(1), calls.Load())
}

func TestSetBypassesInitializer(t *testing.T) {
	t.Parallel()

	v := New(func() int {
		t.Fatal("initializer must not run after Set")

		return 0
	})

	v.Set(7)

	assert.True(t, v.Initialized())
	assert.Equal(t, 7, v.Get())
}

func TestFailedInitializationRetries(t *testing.T) {
	t.Parallel()

	calls := atomic.NewInt32(0)

	v := New(func() int {
		if calls.Inc() == 1 {
			panic("first attempt fails")
		}

		return 9
	})

	assert.Panics(t, func() { v.Get() })
	assert.Equal(t, 9, v.Get())
}
