package core

import (
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"gopkg.in/yaml.v3"
)

// KernelConfig controls the in-process kernel: timebase, per-task defaults
// and resource limits. The zero value is not usable; start from
// DefaultKernelConfig or LoadKernelConfig.
type KernelConfig struct {
	// TickRateHz is the kernel tick frequency used to convert tick
	// timeouts to wall-clock time.
	TickRateHz int `yaml:"tick_rate_hz"`

	// DefaultStackSize is the stack depth recorded for tasks created
	// without an explicit size.
	DefaultStackSize int `yaml:"default_stack_size"`

	// NumCores is the number of schedulable cores. Affinity requests are
	// validated against it. 0 means "discover at startup".
	NumCores int `yaml:"num_cores"`

	// MaxTasks caps live tasks; 0 means unlimited.
	MaxTasks int `yaml:"max_tasks"`

	// MaxSemaphores caps live signaling objects (semaphores and mutexes
	// combined); 0 means unlimited.
	MaxSemaphores int `yaml:"max_semaphores"`
}

// DefaultKernelConfig returns a configuration with a 1 kHz timebase and the
// core count discovered from the host.
func DefaultKernelConfig() KernelConfig {
	return KernelConfig{
		TickRateHz:       1000,
		DefaultStackSize: DefaultStackSize,
		NumCores:         discoverCoreCount(),
	}
}

// LoadKernelConfig reads a YAML kernel configuration from path. Fields left
// unset in the file keep their defaults.
func LoadKernelConfig(path string) (KernelConfig, error) {
	cfg := DefaultKernelConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read kernel config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse kernel config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the kernel cannot run with.
func (c KernelConfig) Validate() error {
	if c.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be positive, got %d", c.TickRateHz)
	}
	if c.DefaultStackSize <= 0 {
		return fmt.Errorf("default_stack_size must be positive, got %d", c.DefaultStackSize)
	}
	if c.NumCores < 0 {
		return fmt.Errorf("num_cores must be >= 0, got %d", c.NumCores)
	}
	if c.MaxTasks < 0 {
		return fmt.Errorf("max_tasks must be >= 0, got %d", c.MaxTasks)
	}
	if c.MaxSemaphores < 0 {
		return fmt.Errorf("max_semaphores must be >= 0, got %d", c.MaxSemaphores)
	}
	return nil
}

// withDiscoveredCores fills NumCores when the config left it at "discover".
func (c KernelConfig) withDiscoveredCores() KernelConfig {
	if c.NumCores == 0 {
		c.NumCores = discoverCoreCount()
	}
	return c
}

// withDefaults fills every zero or invalid field the way DefaultKernelConfig
// would, so a partially-specified config is always runnable. In particular a
// missing tick rate must never reach the tick arithmetic as zero.
func (c KernelConfig) withDefaults() KernelConfig {
	if c.TickRateHz <= 0 {
		c.TickRateHz = 1000
	}
	if c.DefaultStackSize <= 0 {
		c.DefaultStackSize = DefaultStackSize
	}
	return c.withDiscoveredCores()
}

// discoverCoreCount prefers the logical core count reported by the host;
// runtime.NumCPU is the fallback when host probing fails (containers,
// restricted environments).
func discoverCoreCount() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}
