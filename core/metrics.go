package core

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for recording kernel resource lifecycle
// events. Implementations can send metrics to monitoring systems
// (Prometheus, StatsD, etc.).
//
// Methods must be non-blocking and fast; the kernel calls them on the
// create/delete paths, which are expected to return promptly.
// Implementations must be safe for concurrent use.
type Metrics interface {
	// RecordTaskCreated records a successful task creation.
	RecordTaskCreated(name string)

	// RecordTaskDeleted records a task deletion.
	RecordTaskDeleted(name string)

	// RecordSyncCreated records creation of a signaling object.
	// kind is "semaphore" or "mutex".
	RecordSyncCreated(kind string)

	// RecordSyncDeleted records deletion of a signaling object.
	RecordSyncDeleted(kind string)

	// RecordCreateFailure records a kernel allocation failure.
	// kind is "task", "semaphore" or "mutex"; reason names the failure.
	RecordCreateFailure(kind string, reason string)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

// RecordTaskCreated is a no-op.
func (m *NilMetrics) RecordTaskCreated(name string) {}

// RecordTaskDeleted is a no-op.
func (m *NilMetrics) RecordTaskDeleted(name string) {}

// RecordSyncCreated is a no-op.
func (m *NilMetrics) RecordSyncCreated(kind string) {}

// RecordSyncDeleted is a no-op.
func (m *NilMetrics) RecordSyncDeleted(kind string) {}

// RecordCreateFailure is a no-op.
func (m *NilMetrics) RecordCreateFailure(kind string, reason string) {}
