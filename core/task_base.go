package core

import (
	"context"
	"sync"
)

// =============================================================================
// TaskBase: schedulable-by-subtyping variant of the task wrapper
// =============================================================================

// Runnable is the thread body contract for TaskBase. Types that embed
// TaskBase implement Run and pass themselves to CreateTask.
type Runnable interface {
	// Run is invoked once on the task's own thread of execution. ctx is
	// cancelled when the task is deleted; long-running bodies must
	// checkpoint on it.
	Run(ctx context.Context)
}

// taskBaseTrampoline adapts a Runnable to the kernel's entry signature.
func taskBaseTrampoline(ctx context.Context, arg any) {
	arg.(Runnable).Run(ctx)
}

// TaskBase manages the kernel task of a type that is itself the
// schedulable unit:
//
//	type Blinker struct {
//		core.TaskBase
//	}
//
//	func (b *Blinker) Run(ctx context.Context) { ... }
//
//	b := &Blinker{}
//	b.CreateTask(kernel, b, "blinker")
//	defer b.Close()
//
// The zero value is ready to use.
type TaskBase struct {
	mu     sync.Mutex
	kernel Kernel
	logger Logger
	handle TaskHandle
}

// SetLogger routes the wrapper's diagnostics to l. Call before CreateTask.
func (b *TaskBase) SetLogger(l Logger) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if l != nil {
		b.logger = l
	}
}

// CreateTask schedules body.Run as a new kernel task with default options.
// It returns false, leaving any running task untouched, when a task is
// already created or the kernel rejects the creation.
func (b *TaskBase) CreateTask(k Kernel, body Runnable, name string) bool {
	return b.CreateTaskWithOptions(k, body, name, DefaultStartOptions())
}

// CreateTaskWithOptions is CreateTask with explicit stack size, priority
// and core affinity.
func (b *TaskBase) CreateTaskWithOptions(k Kernel, body Runnable, name string, opts StartOptions) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.handle.IsZero() {
		b.log().Warn("task is already created", F("task", name))
		return false
	}

	handle, err := k.CreateTask(taskBaseTrampoline, name, opts.StackSize, body, opts.Priority, opts.Core)
	if err != nil {
		b.log().Warn("couldn't create the task", F("task", name), F("error", err))
		return false
	}

	b.kernel = k
	b.handle = handle
	return true
}

// DeleteTask deletes the associated kernel task. Unlike Task.Terminate it
// logs a warning when no task is created; the call is still a safe no-op.
func (b *TaskBase) DeleteTask() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handle.IsZero() {
		b.log().Warn("task is not created")
		return
	}
	b.kernel.DeleteTask(b.handle)
	b.handle = TaskHandle{}
}

// Close deletes the task unconditionally without the not-created warning,
// so embedders can defer it regardless of whether CreateTask ever ran.
func (b *TaskBase) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handle.IsZero() {
		return nil
	}
	b.kernel.DeleteTask(b.handle)
	b.handle = TaskHandle{}
	return nil
}

// Handle returns the associated kernel task handle; the zero handle when
// not created.
func (b *TaskBase) Handle() TaskHandle {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handle
}

// log returns the configured logger, defaulting lazily so the zero value
// of TaskBase works.
func (b *TaskBase) log() Logger {
	if b.logger == nil {
		b.logger = NewDefaultLogger()
	}
	return b.logger
}
