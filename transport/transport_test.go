package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOptions(t *testing.T) {
	t.Parallel()

	t.Run("defaults are all off", func(t *testing.T) {
		t.Parallel()

		cfg := readOptions()

		require.NotNil(t, cfg)
		assert.False(t, cfg.disablePooling)
		assert.False(t, cfg.enableDNSCache)
		assert.False(t, cfg.insecureTLS)
		assert.Empty(t, cfg.overrides)
	})

	t.Run("applies options and skips nils", func(t *testing.T) {
		t.Parallel()

		cfg := readOptions(nil, DisableConnectionPooling, EnableDNSCache, nil, InsecureTLS)

		assert.True(t, cfg.disablePooling)
		assert.True(t, cfg.enableDNSCache)
		assert.True(t, cfg.insecureTLS)
	})
}

func TestNewAppliesConfig(t *testing.T) {
	t.Parallel()

	t.Run("pooling disabled", func(t *testing.T) {
		t.Parallel()

		trans := New(DisableConnectionPooling)
		assert.True(t, trans.DisableKeepAlives)
	})

	t.Run("insecure TLS", func(t *testing.T) {
		t.Parallel()

		trans := New(InsecureTLS)
		require.NotNil(t, trans.TLSClientConfig)
		assert.True(t, trans.TLSClientConfig.InsecureSkipVerify)
	})

	t.Run("fresh instances are distinct", func(t *testing.T) {
		t.Parallel()

		assert.NotSame(t, New(), New())
	})
}

func TestGetReturnsSharedSingletons(t *testing.T) {
	t.Parallel()

	assert.Same(t, Get(), Get())
	assert.Same(t, Get(DisableConnectionPooling), Get(DisableConnectionPooling))
	assert.NotSame(t, Get(), Get(DisableConnectionPooling))
}

func TestGetOverrideWins(t *testing.T) {
	t.Parallel()

	custom := NewCustom(nil)

	got := Get(WithOverride(nil, custom), DisableConnectionPooling)

	assert.Same(t, custom, got)
}
