// Package rtask provides object-style lifecycle management for real-time
// tasks and kernel synchronization primitives on top of a preemptive,
// tick-based, multicore kernel.
//
// The library is a thin, type-safe adapter: scheduling, preemption,
// priority handling and signaling all belong to the underlying kernel
// (the core.Kernel interface). rtask only binds Go methods to kernel task
// entry points and manages handle lifetimes.
//
// # Quick Start
//
// Initialize the global kernel at application startup:
//
//	rtask.InitGlobalKernel(core.DefaultKernelConfig())
//	defer rtask.ShutdownGlobalKernel()
//
// Run a method of any type as a pinned kernel task:
//
//	type Sensor struct{ ... }
//
//	func (s *Sensor) Poll(ctx context.Context) { ... }
//
//	task := core.NewTask[Sensor](rtask.GlobalKernel())
//	task.StartWithOptions(sensor, (*Sensor).Poll, "sensor-poll", core.StartOptions{
//		Priority: 2,
//		Core:     0,
//	})
//	defer task.Close()
//
// Or make the type itself the schedulable unit by embedding core.TaskBase
// and implementing Run.
//
// # Key Concepts
//
// Task: a wrapper owning at most one kernel task handle. Start registers a
// trampoline that invokes the bound method; Terminate deletes the task.
// Creation while a task is already bound is rejected with a warning.
//
// Semaphore / Mutex: ownership wrappers over kernel signaling objects with
// Give, GiveFromISR and Take-with-timeout. Creation is fallible: the
// factories return an error instead of leaving a silently broken object.
//
// Kernel: the external boundary. GoroutineKernel is the hosted
// implementation used by tests and examples; embedded targets supply their
// own.
//
// The observability/prometheus package exports kernel resource counts and
// lifecycle events as Prometheus collectors.
package rtask
