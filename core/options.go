package core

// wrapperConfig holds settings shared by the task and synchronization
// wrappers.
type wrapperConfig struct {
	logger Logger
}

func defaultWrapperConfig() wrapperConfig {
	return wrapperConfig{logger: NewDefaultLogger()}
}

// WrapperOption configures a task or synchronization wrapper.
type WrapperOption func(*wrapperConfig)

// WithWrapperLogger routes a wrapper's misuse and failure diagnostics to l.
func WithWrapperLogger(l Logger) WrapperOption {
	return func(c *wrapperConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// StartOptions carries the per-task scheduling parameters. The zero value
// of each field selects the default (kernel default stack, lowest priority,
// no core affinity).
type StartOptions struct {
	// StackSize is the requested stack depth; <= 0 selects the kernel's
	// configured default.
	StackSize int

	// Priority is the task's scheduling priority, 0 being the lowest.
	Priority Priority

	// Core pins the task to a physical core; NoAffinity leaves placement
	// to the kernel.
	Core CoreID
}

// DefaultStartOptions returns the defaults used by Start and CreateTask.
func DefaultStartOptions() StartOptions {
	return StartOptions{Core: NoAffinity}
}
