package core

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
)

// GoroutineKernel is an in-process Kernel backed by goroutines. It stands in
// for the real-time kernel when running on a hosted OS: each task is a
// dedicated goroutine, pinned tasks lock their OS thread (and bind it to the
// requested core where the platform supports that), and signaling objects
// are single-slot channels so takes park in the runtime's wait queues rather
// than busy-polling.
//
// Deletion is immediate at the kernel level: the task's bookkeeping is
// released and its context cancelled. A body that never checkpoints on its
// context keeps its goroutine alive until it returns on its own; avoiding
// that is the caller's responsibility, as with any force-delete primitive.
type GoroutineKernel struct {
	cfg     KernelConfig
	logger  Logger
	metrics Metrics
	started time.Time

	mu     sync.Mutex
	closed bool
	tasks  map[string]*kernelTask
	sems   map[string]*kernelSem
}

type kernelTask struct {
	info   TaskInfo
	cancel context.CancelFunc
}

type kernelSem struct {
	kind string        // "semaphore" or "mutex"
	slot chan struct{} // holds the token when the object is available
	dead chan struct{} // closed on deletion to release blocked takers
}

// give deposits the token. A deleted object refuses the signal even when its
// slot has room, so gives racing deletion report failure like takes do.
func (s *kernelSem) give() bool {
	select {
	case <-s.dead:
		return false
	default:
	}
	select {
	case s.slot <- struct{}{}:
		return true
	default:
		return false
	}
}

// KernelOption configures a GoroutineKernel.
type KernelOption func(*GoroutineKernel)

// WithLogger sets the kernel's diagnostic logger.
func WithLogger(l Logger) KernelOption {
	return func(k *GoroutineKernel) {
		if l != nil {
			k.logger = l
		}
	}
}

// WithMetrics sets the kernel's metrics sink.
func WithMetrics(m Metrics) KernelOption {
	return func(k *GoroutineKernel) {
		if m != nil {
			k.metrics = m
		}
	}
}

var _ Kernel = (*GoroutineKernel)(nil)

// NewGoroutineKernel creates a kernel with the given configuration.
// A zero NumCores is filled in from the host's logical core count, and a
// zero TickRateHz or DefaultStackSize falls back to the package defaults.
func NewGoroutineKernel(cfg KernelConfig, opts ...KernelOption) *GoroutineKernel {
	cfg = cfg.withDefaults()
	k := &GoroutineKernel{
		cfg:     cfg,
		logger:  NewDefaultLogger(),
		metrics: &NilMetrics{},
		started: time.Now(),
		tasks:   make(map[string]*kernelTask),
		sems:    make(map[string]*kernelSem),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Config returns the kernel's effective configuration.
func (k *GoroutineKernel) Config() KernelConfig {
	return k.cfg
}

// TickCount returns the number of ticks elapsed since the kernel started.
func (k *GoroutineKernel) TickCount() Ticks {
	return DurationToTicks(time.Since(k.started), k.cfg.TickRateHz)
}

// =============================================================================
// Task creation / deletion
// =============================================================================

// CreateTask schedules entry as an independent task.
func (k *GoroutineKernel) CreateTask(entry TaskEntry, name string, stackSize int, arg any, priority Priority, core CoreID) (TaskHandle, error) {
	if entry == nil {
		k.metrics.RecordCreateFailure("task", "nil_entry")
		return TaskHandle{}, ErrNilEntry
	}
	if core != NoAffinity && (core < 0 || int(core) >= k.cfg.NumCores) {
		k.metrics.RecordCreateFailure("task", "bad_core")
		return TaskHandle{}, ErrBadCore
	}
	if stackSize <= 0 {
		stackSize = k.cfg.DefaultStackSize
	}

	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		k.metrics.RecordCreateFailure("task", "kernel_closed")
		return TaskHandle{}, ErrKernelClosed
	}
	if k.cfg.MaxTasks > 0 && len(k.tasks) >= k.cfg.MaxTasks {
		k.mu.Unlock()
		k.metrics.RecordCreateFailure("task", "no_free_handle")
		return TaskHandle{}, ErrNoFreeHandle
	}

	handle := TaskHandle{id: uuid.NewString()}
	ctx, cancel := context.WithCancel(context.Background())
	k.tasks[handle.id] = &kernelTask{
		info: TaskInfo{
			Handle:    handle,
			Name:      name,
			StackSize: stackSize,
			Priority:  priority,
			Core:      core,
			CreatedAt: time.Now(),
		},
		cancel: cancel,
	}
	k.mu.Unlock()

	k.metrics.RecordTaskCreated(name)
	go k.runTask(ctx, handle, name, core, entry, arg)
	return handle, nil
}

// runTask is the goroutine body hosting one task.
func (k *GoroutineKernel) runTask(ctx context.Context, h TaskHandle, name string, core CoreID, entry TaskEntry, arg any) {
	if core != NoAffinity {
		// A pinned task owns its OS thread for its whole lifetime. The
		// goroutine exits without unlocking, so the runtime discards the
		// thread instead of returning a possibly still-pinned one to the
		// pool.
		runtime.LockOSThread()
		if err := pinCurrentThread(int(core)); err != nil {
			k.logger.Debug("core pinning unavailable, task runs unpinned",
				F("task", name), F("core", int(core)), F("error", err))
		}
	}

	defer func() {
		if rec := recover(); rec != nil {
			k.logger.Error("task panicked",
				F("task", name), F("panic", rec), F("stack", string(debug.Stack())))
		}
		// A body that returns on its own releases its handle; after
		// DeleteTask this is a no-op.
		k.releaseTask(h, name)
	}()

	entry(ctx, arg)
}

// DeleteTask terminates the task and releases its bookkeeping.
func (k *GoroutineKernel) DeleteTask(h TaskHandle) {
	if h.IsZero() {
		return
	}
	k.mu.Lock()
	t, ok := k.tasks[h.id]
	k.mu.Unlock()
	if !ok {
		return
	}
	t.cancel()
	k.releaseTask(h, t.info.Name)
}

// releaseTask removes the handle from the task table exactly once.
func (k *GoroutineKernel) releaseTask(h TaskHandle, name string) {
	k.mu.Lock()
	t, ok := k.tasks[h.id]
	if ok {
		delete(k.tasks, h.id)
	}
	k.mu.Unlock()
	if !ok {
		return
	}
	t.cancel()
	k.metrics.RecordTaskDeleted(name)
}

// Tasks returns a snapshot of the live task table.
func (k *GoroutineKernel) Tasks() []TaskInfo {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]TaskInfo, 0, len(k.tasks))
	for _, t := range k.tasks {
		out = append(out, t.info)
	}
	return out
}

// =============================================================================
// Signaling objects
// =============================================================================

// CreateBinarySemaphore creates a binary semaphore in the taken state.
func (k *GoroutineKernel) CreateBinarySemaphore() (SemaphoreHandle, error) {
	return k.createSem("semaphore", false)
}

// CreateMutex creates a mutex in the available state.
func (k *GoroutineKernel) CreateMutex() (SemaphoreHandle, error) {
	return k.createSem("mutex", true)
}

func (k *GoroutineKernel) createSem(kind string, available bool) (SemaphoreHandle, error) {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		k.metrics.RecordCreateFailure(kind, "kernel_closed")
		return SemaphoreHandle{}, ErrKernelClosed
	}
	if k.cfg.MaxSemaphores > 0 && len(k.sems) >= k.cfg.MaxSemaphores {
		k.mu.Unlock()
		k.metrics.RecordCreateFailure(kind, "no_free_handle")
		return SemaphoreHandle{}, ErrNoFreeHandle
	}

	s := &kernelSem{
		kind: kind,
		slot: make(chan struct{}, 1),
		dead: make(chan struct{}),
	}
	if available {
		s.slot <- struct{}{}
	}
	handle := SemaphoreHandle{id: uuid.NewString()}
	k.sems[handle.id] = s
	k.mu.Unlock()

	k.metrics.RecordSyncCreated(kind)
	return handle, nil
}

// DeleteSemaphore releases a signaling object and unblocks its takers,
// which observe a failed take.
func (k *GoroutineKernel) DeleteSemaphore(h SemaphoreHandle) {
	if h.IsZero() {
		return
	}
	k.mu.Lock()
	s, ok := k.sems[h.id]
	if ok {
		delete(k.sems, h.id)
	}
	k.mu.Unlock()
	if !ok {
		return
	}
	close(s.dead)
	k.metrics.RecordSyncDeleted(s.kind)
}

func (k *GoroutineKernel) lookupSem(h SemaphoreHandle) *kernelSem {
	if h.IsZero() {
		return nil
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.sems[h.id]
}

// Give signals the object. False when the handle is stale or the object is
// already available.
func (k *GoroutineKernel) Give(h SemaphoreHandle) bool {
	s := k.lookupSem(h)
	if s == nil {
		return false
	}
	return s.give()
}

// GiveFromISR signals the object without blocking or yielding. The hosted
// kernel has no separate interrupt call path, so the semantics match Give;
// the split entry point is kept so callers preserve kernel discipline.
func (k *GoroutineKernel) GiveFromISR(h SemaphoreHandle) bool {
	return k.Give(h)
}

// Take acquires the object within timeout ticks.
func (k *GoroutineKernel) Take(h SemaphoreHandle, timeout Ticks) bool {
	s := k.lookupSem(h)
	if s == nil {
		return false
	}

	switch timeout {
	case 0:
		select {
		case <-s.slot:
			return true
		default:
			return false
		}
	case MaxDelay:
		select {
		case <-s.slot:
			return true
		case <-s.dead:
			return false
		}
	default:
		timer := time.NewTimer(k.ticksToDuration(timeout))
		defer timer.Stop()
		select {
		case <-s.slot:
			return true
		case <-s.dead:
			return false
		case <-timer.C:
			return false
		}
	}
}

func (k *GoroutineKernel) ticksToDuration(t Ticks) time.Duration {
	return time.Duration(int64(t) * int64(time.Second) / int64(k.cfg.TickRateHz))
}

// =============================================================================
// Introspection / shutdown
// =============================================================================

// Counts returns a snapshot of live kernel resources.
func (k *GoroutineKernel) Counts() ResourceCounts {
	k.mu.Lock()
	defer k.mu.Unlock()
	c := ResourceCounts{Tasks: len(k.tasks)}
	for _, s := range k.sems {
		if s.kind == "mutex" {
			c.Mutexes++
		} else {
			c.Semaphores++
		}
	}
	return c
}

// Close deletes every live task and signaling object and rejects further
// creation. It does not wait for non-cooperative task bodies to observe
// their cancelled contexts.
func (k *GoroutineKernel) Close() error {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = true
	tasks := make([]TaskHandle, 0, len(k.tasks))
	for id := range k.tasks {
		tasks = append(tasks, TaskHandle{id: id})
	}
	sems := make([]SemaphoreHandle, 0, len(k.sems))
	for id := range k.sems {
		sems = append(sems, SemaphoreHandle{id: id})
	}
	k.mu.Unlock()

	for _, h := range tasks {
		k.DeleteTask(h)
	}
	for _, h := range sems {
		k.DeleteSemaphore(h)
	}
	return nil
}
