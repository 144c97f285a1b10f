package rtask

import (
	"sync"

	"github.com/embedkit/rtask/core"
)

// =============================================================================
// Global Kernel Helper (Singleton)
// =============================================================================

var (
	globalKernel *core.GoroutineKernel
	globalMu     sync.Mutex
)

// InitGlobalKernel initializes the global kernel with the given
// configuration. Calling it again while initialized is a no-op.
func InitGlobalKernel(cfg core.KernelConfig, opts ...core.KernelOption) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalKernel != nil {
		return // Already initialized
	}
	globalKernel = core.NewGoroutineKernel(cfg, opts...)
}

// GlobalKernel returns the global kernel instance.
// It panics if InitGlobalKernel has not been called.
func GlobalKernel() *core.GoroutineKernel {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalKernel == nil {
		panic("GlobalKernel not initialized. Call InitGlobalKernel() first.")
	}
	return globalKernel
}

// ShutdownGlobalKernel deletes all live tasks and signaling objects and
// drops the global kernel.
func ShutdownGlobalKernel() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalKernel != nil {
		_ = globalKernel.Close()
		globalKernel = nil
	}
}
