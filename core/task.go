package core

import (
	"context"
	"sync"
)

// =============================================================================
// Task: run any object's method as an independently scheduled kernel task
// =============================================================================

// BoundMethod is the shape of a schedulable method: the method expression of
// a pointer-receiver method taking a context, e.g. (*Worker).Poll for
//
//	func (w *Worker) Poll(ctx context.Context)
//
// The context is cancelled when the task is deleted.
type BoundMethod[T any] func(target *T, ctx context.Context)

// binding pairs a target object with the method to invoke on it. It is the
// opaque argument handed to the kernel at creation time; the trampoline
// recovers it and dispatches the call. The target is borrowed, never owned.
type binding[T any] struct {
	target *T
	method BoundMethod[T]
}

// taskTrampoline matches the kernel's entry signature and forwards to the
// bound method. The kernel accepts only plain functions with one untyped
// argument, so the method binding is erased into arg here and restored on
// the task's own thread of execution.
func taskTrampoline[T any](ctx context.Context, arg any) {
	b := arg.(*binding[T])
	b.method(b.target, ctx)
}

// Task runs a method of a target object as an independently scheduled task,
// optionally pinned to a core. At most one kernel task is associated with a
// Task at a time.
//
// Concurrent Start/Terminate calls on the same Task are serialized by an
// internal lock so misuse cannot corrupt the handle, but the caller should
// still drive a Task from one place.
type Task[T any] struct {
	kernel Kernel
	logger Logger

	mu     sync.Mutex
	handle TaskHandle
	bound  *binding[T]
}

// NewTask creates an unbound task wrapper on the given kernel.
func NewTask[T any](k Kernel, opts ...WrapperOption) *Task[T] {
	cfg := defaultWrapperConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Task[T]{kernel: k, logger: cfg.logger}
}

// Start schedules method on target as a new kernel task with default stack,
// priority 0 and no core affinity. It returns false, leaving any running
// task untouched, when the wrapper is already bound or the kernel rejects
// the creation.
//
// The wrapper stays bound until Terminate, even after the method returns on
// its own and the kernel has released the underlying task. Restarting a
// self-exited task therefore requires Terminate first; it only clears the
// binding, the kernel-side release already happened.
func (t *Task[T]) Start(target *T, method BoundMethod[T], name string) bool {
	return t.StartWithOptions(target, method, name, DefaultStartOptions())
}

// StartWithOptions is Start with explicit stack size, priority and core
// affinity.
func (t *Task[T]) StartWithOptions(target *T, method BoundMethod[T], name string, opts StartOptions) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.handle.IsZero() {
		t.logger.Warn("task is already created", F("task", name))
		return false
	}

	bound := &binding[T]{target: target, method: method}
	handle, err := t.kernel.CreateTask(taskTrampoline[T], name, opts.StackSize, bound, opts.Priority, opts.Core)
	if err != nil {
		t.logger.Warn("couldn't create the task", F("task", name), F("error", err))
		return false
	}

	t.bound = bound
	t.handle = handle
	return true
}

// Terminate deletes the associated kernel task. It is a silent no-op when
// no task is associated, so calling it repeatedly is safe.
func (t *Task[T]) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.handle.IsZero() {
		return
	}
	t.kernel.DeleteTask(t.handle)
	t.handle = TaskHandle{}
	t.bound = nil
}

// Close terminates the task unconditionally. It exists so a Task can be
// deferred or handed to anything expecting an io.Closer; no task is leaked
// even if the application never calls Terminate explicitly.
func (t *Task[T]) Close() error {
	t.Terminate()
	return nil
}

// Handle returns the associated kernel task handle; the zero handle when
// unbound.
func (t *Task[T]) Handle() TaskHandle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handle
}
