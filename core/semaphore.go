package core

import "sync"

// =============================================================================
// Semaphore / Mutex: ownership wrappers over kernel signaling objects
// =============================================================================

// syncObject carries the shared give/take plumbing of Semaphore and Mutex;
// the two differ only in which kernel constructor produced the handle.
type syncObject struct {
	kernel Kernel

	mu     sync.Mutex
	handle SemaphoreHandle
}

// Give releases the object. Returns false when the kernel call fails, the
// object is already available, or the wrapper is closed.
func (o *syncObject) Give() bool {
	return o.kernel.Give(o.currentHandle())
}

// GiveFromISR releases the object from interrupt context. It never blocks
// and never yields the caller. Keeping the ISR and task call paths separate
// is the caller's responsibility; the wrapper does not enforce it.
func (o *syncObject) GiveFromISR() bool {
	return o.kernel.GiveFromISR(o.currentHandle())
}

// Take acquires the object, blocking for at most timeout ticks. A timeout
// of 0 polls; MaxDelay blocks indefinitely. Returns false on timeout or
// when the wrapper is closed.
func (o *syncObject) Take(timeout Ticks) bool {
	return o.kernel.Take(o.currentHandle(), timeout)
}

// TakeIndefinite blocks until the object becomes available.
func (o *syncObject) TakeIndefinite() bool {
	return o.Take(MaxDelay)
}

// Close releases the kernel handle. After Close every operation returns
// false. Idempotent.
func (o *syncObject) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.handle.IsZero() {
		return nil
	}
	o.kernel.DeleteSemaphore(o.handle)
	o.handle = SemaphoreHandle{}
	return nil
}

// Handle returns the kernel handle; the zero handle after Close.
func (o *syncObject) Handle() SemaphoreHandle {
	return o.currentHandle()
}

func (o *syncObject) currentHandle() SemaphoreHandle {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.handle
}

// Semaphore owns a kernel binary semaphore. It is created in the taken
// state: the first Take blocks (or times out) until someone gives.
type Semaphore struct {
	syncObject
}

// NewSemaphore creates a binary semaphore on the given kernel. Kernel
// allocation failure is returned as an error (and logged), never hidden in
// a half-constructed wrapper.
func NewSemaphore(k Kernel, opts ...WrapperOption) (*Semaphore, error) {
	cfg := defaultWrapperConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	handle, err := k.CreateBinarySemaphore()
	if err != nil {
		cfg.logger.Error("binary semaphore creation failed", F("error", err))
		return nil, err
	}
	return &Semaphore{syncObject{kernel: k, handle: handle}}, nil
}

// Mutex owns a kernel mutex. It is created available: the first Take
// succeeds immediately. Ownership tracking and priority inheritance are
// supplied entirely by the kernel and invisible at this level.
type Mutex struct {
	syncObject
}

// NewMutex creates a mutex on the given kernel. Kernel allocation failure
// is returned as an error (and logged).
func NewMutex(k Kernel, opts ...WrapperOption) (*Mutex, error) {
	cfg := defaultWrapperConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	handle, err := k.CreateMutex()
	if err != nil {
		cfg.logger.Error("mutex creation failed", F("error", err))
		return nil, err
	}
	return &Mutex{syncObject{kernel: k, handle: handle}}, nil
}
