package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// TestGoroutineKernel_CreateTaskValidation verifies creation error paths
// Given: A two-core kernel
// When: CreateTask is called with a nil entry or an out-of-range core
// Then: The matching sentinel error is returned and nothing is created
func TestGoroutineKernel_CreateTaskValidation(t *testing.T) {
	// Arrange
	kernel := newTestKernel()
	defer kernel.Close()

	entry := func(ctx context.Context, arg any) {}

	// Act and Assert
	if _, err := kernel.CreateTask(nil, "nil-entry", 0, nil, 0, NoAffinity); !errors.Is(err, ErrNilEntry) {
		t.Fatalf("nil entry error = %v, want ErrNilEntry", err)
	}
	if _, err := kernel.CreateTask(entry, "bad-core", 0, nil, 0, CoreID(2)); !errors.Is(err, ErrBadCore) {
		t.Fatalf("core 2 on a 2-core kernel error = %v, want ErrBadCore", err)
	}
	if counts := kernel.Counts(); counts.Tasks != 0 {
		t.Fatalf("live tasks = %d, want 0 after rejected creations", counts.Tasks)
	}
}

// TestGoroutineKernel_MaxTasksEnforced verifies the resource limit
// Given: A kernel configured with MaxTasks=1 and one live task
// When: A second task is created
// Then: CreateTask returns ErrNoFreeHandle
func TestGoroutineKernel_MaxTasksEnforced(t *testing.T) {
	// Arrange
	kernel := NewGoroutineKernel(KernelConfig{
		TickRateHz:       1000,
		DefaultStackSize: DefaultStackSize,
		NumCores:         2,
		MaxTasks:         1,
	}, WithLogger(NewNoOpLogger()))
	defer kernel.Close()

	park := func(ctx context.Context, arg any) { <-ctx.Done() }

	first, err := kernel.CreateTask(park, "first", 0, nil, 0, NoAffinity)
	if err != nil {
		t.Fatalf("first CreateTask failed: %v", err)
	}

	// Act
	_, err = kernel.CreateTask(park, "second", 0, nil, 0, NoAffinity)

	// Assert
	if !errors.Is(err, ErrNoFreeHandle) {
		t.Fatalf("second CreateTask error = %v, want ErrNoFreeHandle", err)
	}

	// Deleting the first frees the slot
	kernel.DeleteTask(first)
	if _, err := kernel.CreateTask(park, "third", 0, nil, 0, NoAffinity); err != nil {
		t.Fatalf("CreateTask after delete failed: %v", err)
	}
}

// TestGoroutineKernel_ZeroConfigGetsDefaults verifies config normalization
// Given: A kernel built from the zero-value config
// When: The effective config is read and a timed take runs against an
// unavailable semaphore
// Then: Tick rate and stack size carry the defaults and the take times out
// cleanly instead of dividing by a zero tick rate
func TestGoroutineKernel_ZeroConfigGetsDefaults(t *testing.T) {
	// Arrange
	kernel := NewGoroutineKernel(KernelConfig{}, WithLogger(NewNoOpLogger()))
	defer kernel.Close()

	// Assert - effective config
	cfg := kernel.Config()
	if cfg.TickRateHz != 1000 {
		t.Fatalf("effective TickRateHz = %d, want 1000", cfg.TickRateHz)
	}
	if cfg.DefaultStackSize != DefaultStackSize {
		t.Fatalf("effective DefaultStackSize = %d, want %d", cfg.DefaultStackSize, DefaultStackSize)
	}
	if cfg.NumCores <= 0 {
		t.Fatalf("effective NumCores = %d, want a discovered positive count", cfg.NumCores)
	}

	// Act - the timed path exercises the tick arithmetic
	handle, err := kernel.CreateBinarySemaphore()
	if err != nil {
		t.Fatalf("CreateBinarySemaphore failed: %v", err)
	}

	// Assert
	if kernel.Take(handle, 5) {
		t.Fatal("Take on an unavailable semaphore = true, want timeout")
	}
}

// TestGoroutineKernel_EntryReceivesArgAndDefaults verifies entry plumbing
// Given: A task created with an opaque argument and stackSize <= 0
// When: The entry runs and the task table is inspected
// Then: The entry observes the argument and the recorded stack size is the
// configured default
func TestGoroutineKernel_EntryReceivesArgAndDefaults(t *testing.T) {
	// Arrange
	kernel := newTestKernel()
	defer kernel.Close()

	type payload struct{ value int }
	var got atomic.Value
	entry := func(ctx context.Context, arg any) {
		got.Store(arg.(*payload).value)
		<-ctx.Done()
	}

	// Act
	handle, err := kernel.CreateTask(entry, "plumbing", 0, &payload{value: 42}, 3, NoAffinity)
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	defer kernel.DeleteTask(handle)

	// Assert
	if !waitFor(2*time.Second, func() bool { return got.Load() != nil }) {
		t.Fatal("entry never ran")
	}
	if v := got.Load().(int); v != 42 {
		t.Fatalf("entry arg = %d, want 42", v)
	}

	infos := kernel.Tasks()
	if len(infos) != 1 {
		t.Fatalf("task table size = %d, want 1", len(infos))
	}
	if infos[0].StackSize != DefaultStackSize {
		t.Fatalf("recorded stack size = %d, want default %d", infos[0].StackSize, DefaultStackSize)
	}
	if infos[0].Priority != 3 {
		t.Fatalf("recorded priority = %d, want 3", infos[0].Priority)
	}
}

// TestGoroutineKernel_DeleteCancelsEntryContext verifies force-delete
// Given: A task parked on its entry context
// When: DeleteTask is called
// Then: The bookkeeping is released immediately and the entry observes the
// cancellation
func TestGoroutineKernel_DeleteCancelsEntryContext(t *testing.T) {
	// Arrange
	kernel := newTestKernel()
	defer kernel.Close()

	cancelled := make(chan struct{})
	entry := func(ctx context.Context, arg any) {
		<-ctx.Done()
		close(cancelled)
	}

	handle, err := kernel.CreateTask(entry, "parked", 0, nil, 0, NoAffinity)
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	// Act
	kernel.DeleteTask(handle)

	// Assert
	if counts := kernel.Counts(); counts.Tasks != 0 {
		t.Fatalf("live tasks = %d, want 0 immediately after DeleteTask", counts.Tasks)
	}
	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("entry context was never cancelled")
	}

	// Stale handle deletion is a no-op
	kernel.DeleteTask(handle)
}

// TestGoroutineKernel_PanickingEntryReleasesHandle verifies panic recovery
// Given: A task whose entry panics
// When: The panic propagates to the kernel's task goroutine
// Then: The kernel logs it and releases the handle instead of crashing
func TestGoroutineKernel_PanickingEntryReleasesHandle(t *testing.T) {
	// Arrange
	kernel := newTestKernel()
	defer kernel.Close()

	entry := func(ctx context.Context, arg any) {
		panic("boom")
	}

	// Act
	_, err := kernel.CreateTask(entry, "panicker", 0, nil, 0, NoAffinity)
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	// Assert
	if !waitFor(2*time.Second, func() bool { return kernel.Counts().Tasks == 0 }) {
		t.Fatal("panicked task still held in the task table")
	}
}

// TestGoroutineKernel_DeleteSemaphoreUnblocksTakers verifies deletion wakeup
// Given: A goroutine blocked indefinitely on a semaphore
// When: The semaphore is deleted
// Then: The blocked take returns false instead of hanging forever
func TestGoroutineKernel_DeleteSemaphoreUnblocksTakers(t *testing.T) {
	// Arrange
	kernel := newTestKernel()
	defer kernel.Close()

	handle, err := kernel.CreateBinarySemaphore()
	if err != nil {
		t.Fatalf("CreateBinarySemaphore failed: %v", err)
	}

	result := make(chan bool, 1)
	go func() {
		result <- kernel.Take(handle, MaxDelay)
	}()
	time.Sleep(20 * time.Millisecond)

	// Act
	kernel.DeleteSemaphore(handle)

	// Assert
	select {
	case got := <-result:
		if got {
			t.Fatal("Take on a deleted semaphore = true, want false")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Take did not unblock when the semaphore was deleted")
	}
}

// TestGoroutineKernel_GiveRefusedAfterDeletion verifies deletion vs give
// Given: A binary semaphore that has been deleted
// When: Give is attempted through the stale handle and, separately, through
// a signaling object captured before the deletion
// Then: Both report failure even though the slot has room
func TestGoroutineKernel_GiveRefusedAfterDeletion(t *testing.T) {
	// Arrange
	kernel := newTestKernel()
	defer kernel.Close()

	handle, err := kernel.CreateBinarySemaphore()
	if err != nil {
		t.Fatalf("CreateBinarySemaphore failed: %v", err)
	}
	sem := kernel.lookupSem(handle)
	if sem == nil {
		t.Fatal("fresh handle did not resolve")
	}

	// Act
	kernel.DeleteSemaphore(handle)

	// Assert
	if kernel.Give(handle) {
		t.Fatal("Give on a deleted handle = true, want false")
	}
	// A giver that resolved the object before the deletion must also fail.
	if sem.give() {
		t.Fatal("give racing deletion = true, want false")
	}
	if len(sem.slot) != 0 {
		t.Fatalf("deleted semaphore holds %d tokens, want 0", len(sem.slot))
	}
}

// TestGoroutineKernel_CloseRejectsCreation verifies shutdown behavior
// Given: A closed kernel that previously held resources
// When: Counts is probed and creation is attempted
// Then: All resources are released and creation returns ErrKernelClosed
func TestGoroutineKernel_CloseRejectsCreation(t *testing.T) {
	// Arrange
	kernel := newTestKernel()

	park := func(ctx context.Context, arg any) { <-ctx.Done() }
	if _, err := kernel.CreateTask(park, "parked", 0, nil, 0, NoAffinity); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if _, err := kernel.CreateMutex(); err != nil {
		t.Fatalf("CreateMutex failed: %v", err)
	}

	// Act
	if err := kernel.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Assert
	if counts := kernel.Counts(); counts != (ResourceCounts{}) {
		t.Fatalf("counts after Close = %+v, want all zero", counts)
	}
	if _, err := kernel.CreateBinarySemaphore(); !errors.Is(err, ErrKernelClosed) {
		t.Fatalf("creation on a closed kernel error = %v, want ErrKernelClosed", err)
	}
	if _, err := kernel.CreateTask(park, "late", 0, nil, 0, NoAffinity); !errors.Is(err, ErrKernelClosed) {
		t.Fatalf("task creation on a closed kernel error = %v, want ErrKernelClosed", err)
	}

	// Close is idempotent
	if err := kernel.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

// TestDurationToTicks verifies tick conversion edge cases
// Given: Durations around tick boundaries at a 1 kHz timebase
// When: DurationToTicks converts them
// Then: Zero and negative map to 0, sub-tick durations round up, and exact
// multiples convert one-to-one
func TestDurationToTicks(t *testing.T) {
	// Arrange
	cases := []struct {
		name string
		d    time.Duration
		hz   int
		want Ticks
	}{
		{"zero", 0, 1000, 0},
		{"negative", -time.Second, 1000, 0},
		{"sub-tick rounds up", time.Microsecond, 1000, 1},
		{"exact tick", time.Millisecond, 1000, 1},
		{"one second", time.Second, 1000, 1000},
		{"coarse timebase", time.Second, 100, 100},
	}

	// Act and Assert
	for _, tc := range cases {
		if got := DurationToTicks(tc.d, tc.hz); got != tc.want {
			t.Errorf("%s: DurationToTicks(%v, %d) = %d, want %d", tc.name, tc.d, tc.hz, got, tc.want)
		}
	}
}

// TestGoroutineKernel_TickCountAdvances verifies the kernel timebase
// Given: A running kernel
// When: TickCount is sampled across a sleep
// Then: The later sample is strictly greater
func TestGoroutineKernel_TickCountAdvances(t *testing.T) {
	// Arrange
	kernel := newTestKernel()
	defer kernel.Close()

	// Act
	before := kernel.TickCount()
	time.Sleep(10 * time.Millisecond)
	after := kernel.TickCount()

	// Assert
	if after <= before {
		t.Fatalf("TickCount did not advance: before=%d after=%d", before, after)
	}
}
