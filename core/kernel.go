package core

import (
	"context"
	"errors"
	"time"
)

// =============================================================================
// Kernel boundary: the underlying real-time kernel consumed by the wrappers
// =============================================================================

// TaskEntry is the kernel's required task entry-point signature.
//
// The kernel invokes the entry exactly once on the task's own thread of
// execution. ctx is cancelled when the task is deleted; arg is the opaque
// context pointer supplied at creation time. Entries that loop must
// checkpoint on ctx to observe deletion.
type TaskEntry func(ctx context.Context, arg any)

// Ticks is a duration expressed in kernel ticks.
type Ticks uint32

// MaxDelay blocks indefinitely when passed as a take timeout.
const MaxDelay Ticks = ^Ticks(0)

// DurationToTicks converts a wall-clock duration to kernel ticks at the
// given tick rate, rounding up so short positive durations never truncate
// to a zero (non-blocking) timeout.
func DurationToTicks(d time.Duration, tickRateHz int) Ticks {
	if d <= 0 || tickRateHz <= 0 {
		return 0
	}
	ticks := (int64(d)*int64(tickRateHz) + int64(time.Second) - 1) / int64(time.Second)
	if ticks >= int64(MaxDelay) {
		return MaxDelay - 1
	}
	return Ticks(ticks)
}

// Priority is a task scheduling priority. 0 is the lowest priority.
type Priority uint8

// CoreID selects the physical core a task is pinned to.
type CoreID int

// NoAffinity lets the kernel schedule the task on any core.
const NoAffinity CoreID = -1

// DefaultStackSize is the stack depth requested when the caller does not
// specify one, matching the kernel's minimal task stack.
const DefaultStackSize = 2048

// TaskHandle is an opaque reference to a kernel-scheduled task.
// The zero value means "no task".
type TaskHandle struct {
	id string
}

// IsZero reports whether the handle refers to no task.
func (h TaskHandle) IsZero() bool { return h.id == "" }

// String returns the kernel-assigned handle identity, or "<none>".
func (h TaskHandle) String() string {
	if h.id == "" {
		return "<none>"
	}
	return h.id
}

// SemaphoreHandle is an opaque reference to a kernel signaling object
// (binary semaphore or mutex). The zero value means "no object".
type SemaphoreHandle struct {
	id string
}

// IsZero reports whether the handle refers to no signaling object.
func (h SemaphoreHandle) IsZero() bool { return h.id == "" }

// String returns the kernel-assigned handle identity, or "<none>".
func (h SemaphoreHandle) String() string {
	if h.id == "" {
		return "<none>"
	}
	return h.id
}

// ResourceCounts is a snapshot of live kernel resources. Tests use it as a
// leak probe; the observability package exports it as gauges.
type ResourceCounts struct {
	Tasks      int
	Semaphores int
	Mutexes    int
}

// TaskInfo describes a live task as recorded by the kernel.
type TaskInfo struct {
	Handle    TaskHandle
	Name      string
	StackSize int
	Priority  Priority
	Core      CoreID
	CreatedAt time.Time
}

// Kernel is the thread/synchronization API of the underlying real-time
// kernel. The wrappers in this package are thin adapters over it and add no
// scheduling or signaling behavior of their own.
//
// Give, GiveFromISR, task creation and task deletion return promptly;
// Take is the only call that may block the caller.
type Kernel interface {
	// CreateTask schedules entry as an independent task. stackSize <= 0
	// selects DefaultStackSize. The returned handle is non-zero iff err is
	// nil.
	CreateTask(entry TaskEntry, name string, stackSize int, arg any, priority Priority, core CoreID) (TaskHandle, error)

	// DeleteTask terminates the task immediately and releases its kernel
	// bookkeeping. Deleting a zero or stale handle is a no-op. There is no
	// graceful-shutdown signal beyond the entry context's cancellation.
	DeleteTask(h TaskHandle)

	// CreateBinarySemaphore creates a binary semaphore in the taken
	// (unavailable) state.
	CreateBinarySemaphore() (SemaphoreHandle, error)

	// CreateMutex creates a mutex in the available state.
	CreateMutex() (SemaphoreHandle, error)

	// DeleteSemaphore releases a signaling object. Zero or stale handles
	// are ignored.
	DeleteSemaphore(h SemaphoreHandle)

	// Give signals the object. Returns false when the handle is stale or
	// the object is already available.
	Give(h SemaphoreHandle) bool

	// GiveFromISR signals the object from interrupt context. It never
	// blocks and never yields the caller.
	GiveFromISR(h SemaphoreHandle) bool

	// Take acquires the object, blocking for at most timeout ticks.
	// MaxDelay blocks indefinitely; 0 polls. Returns false on timeout or
	// stale handle.
	Take(h SemaphoreHandle, timeout Ticks) bool

	// Counts returns a snapshot of live kernel resources.
	Counts() ResourceCounts
}

// =============================================================================
// Kernel errors
// =============================================================================

var (
	// ErrKernelClosed is returned when a resource is requested from a
	// kernel that has been shut down.
	ErrKernelClosed = errors.New("rtask: kernel closed")

	// ErrNoFreeHandle is returned when the kernel's configured resource
	// limit has been reached.
	ErrNoFreeHandle = errors.New("rtask: kernel out of free handles")

	// ErrNilEntry is returned by CreateTask when the entry function is nil.
	ErrNilEntry = errors.New("rtask: nil task entry")

	// ErrBadCore is returned when the requested core affinity does not
	// exist on this machine.
	ErrBadCore = errors.New("rtask: core affinity out of range")
)
