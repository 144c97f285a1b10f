package core

import (
	"sync"
	"time"
)

// newTestKernel returns a quiet kernel with a deterministic two-core,
// 1 kHz configuration so tests do not depend on the host machine.
func newTestKernel() *GoroutineKernel {
	return NewGoroutineKernel(KernelConfig{
		TickRateHz:       1000,
		DefaultStackSize: DefaultStackSize,
		NumCores:         2,
	}, WithLogger(NewNoOpLogger()))
}

// recordingLogger captures warning and error messages so tests can assert
// on the misuse diagnostics the wrappers emit.
type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
	errors   []string
}

func (l *recordingLogger) Debug(msg string, fields ...Field) {}
func (l *recordingLogger) Info(msg string, fields ...Field)  {}

func (l *recordingLogger) Warn(msg string, fields ...Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, msg)
}

func (l *recordingLogger) Error(msg string, fields ...Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *recordingLogger) warnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warnings)
}

// waitFor polls cond until it reports true or the deadline passes.
func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}
