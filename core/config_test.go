package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKernelConfig(t *testing.T) {
	cfg := DefaultKernelConfig()

	assert.Equal(t, 1000, cfg.TickRateHz)
	assert.Equal(t, DefaultStackSize, cfg.DefaultStackSize)
	assert.Greater(t, cfg.NumCores, 0, "core discovery should find at least one core")
	assert.NoError(t, cfg.Validate())
}

func TestLoadKernelConfig(t *testing.T) {
	t.Run("overrides and defaults", func(t *testing.T) {
		path := writeConfig(t, `
tick_rate_hz: 100
num_cores: 4
max_tasks: 16
`)

		cfg, err := LoadKernelConfig(path)
		require.NoError(t, err)

		assert.Equal(t, 100, cfg.TickRateHz)
		assert.Equal(t, 4, cfg.NumCores)
		assert.Equal(t, 16, cfg.MaxTasks)
		// Unset fields keep their defaults.
		assert.Equal(t, DefaultStackSize, cfg.DefaultStackSize)
		assert.Equal(t, 0, cfg.MaxSemaphores)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadKernelConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfig(t, "tick_rate_hz: [not a number")

		_, err := LoadKernelConfig(path)
		require.Error(t, err)
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		path := writeConfig(t, "tick_rate_hz: -5")

		_, err := LoadKernelConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tick_rate_hz")
	})
}

func TestKernelConfig_Validate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*KernelConfig)
		wantErr bool
	}{
		{"default is valid", func(c *KernelConfig) {}, false},
		{"zero tick rate", func(c *KernelConfig) { c.TickRateHz = 0 }, true},
		{"negative stack", func(c *KernelConfig) { c.DefaultStackSize = -1 }, true},
		{"negative cores", func(c *KernelConfig) { c.NumCores = -1 }, true},
		{"negative max tasks", func(c *KernelConfig) { c.MaxTasks = -1 }, true},
		{"negative max semaphores", func(c *KernelConfig) { c.MaxSemaphores = -1 }, true},
		{"zero cores means discover", func(c *KernelConfig) { c.NumCores = 0 }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultKernelConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestKernelConfig_WithDiscoveredCores(t *testing.T) {
	cfg := KernelConfig{TickRateHz: 1000, DefaultStackSize: DefaultStackSize}

	filled := cfg.withDiscoveredCores()
	assert.Greater(t, filled.NumCores, 0)

	pinned := cfg
	pinned.NumCores = 8
	assert.Equal(t, 8, pinned.withDiscoveredCores().NumCores)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kernel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
