package rtask

import "github.com/embedkit/rtask/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the rtask package for most use cases.

// Kernel is the underlying real-time kernel boundary
type Kernel = core.Kernel

// KernelConfig controls the in-process kernel
type KernelConfig = core.KernelConfig

// GoroutineKernel is the hosted, goroutine-backed kernel implementation
type GoroutineKernel = core.GoroutineKernel

// TaskBase is the embeddable schedulable-by-subtyping task wrapper
type TaskBase = core.TaskBase

// Runnable is the thread body contract for TaskBase
type Runnable = core.Runnable

// Semaphore owns a kernel binary semaphore
type Semaphore = core.Semaphore

// Mutex owns a kernel mutex
type Mutex = core.Mutex

// StartOptions carries per-task scheduling parameters
type StartOptions = core.StartOptions

// Ticks is a duration expressed in kernel ticks
type Ticks = core.Ticks

// Priority is a task scheduling priority
type Priority = core.Priority

// CoreID selects the physical core a task is pinned to
type CoreID = core.CoreID

// Scheduling constants
const (
	// MaxDelay blocks indefinitely when passed as a take timeout
	MaxDelay = core.MaxDelay

	// NoAffinity lets the kernel schedule a task on any core
	NoAffinity = core.NoAffinity
)
