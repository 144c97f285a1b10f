package prometheus

import (
	"errors"
	"fmt"

	"github.com/embedkit/rtask/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	tasksCreatedTotal   *prom.CounterVec
	tasksDeletedTotal   *prom.CounterVec
	syncCreatedTotal    *prom.CounterVec
	syncDeletedTotal    *prom.CounterVec
	createFailuresTotal *prom.CounterVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "rtask"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	createdVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of kernel tasks created.",
	}, []string{"task"})
	deletedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_deleted_total",
		Help:      "Total number of kernel tasks deleted.",
	}, []string{"task"})
	syncCreatedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "sync_created_total",
		Help:      "Total number of signaling objects created.",
	}, []string{"kind"})
	syncDeletedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "sync_deleted_total",
		Help:      "Total number of signaling objects deleted.",
	}, []string{"kind"})
	failuresVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "create_failures_total",
		Help:      "Total number of kernel allocation failures.",
	}, []string{"kind", "reason"})

	var err error
	if createdVec, err = registerCollector(reg, createdVec); err != nil {
		return nil, err
	}
	if deletedVec, err = registerCollector(reg, deletedVec); err != nil {
		return nil, err
	}
	if syncCreatedVec, err = registerCollector(reg, syncCreatedVec); err != nil {
		return nil, err
	}
	if syncDeletedVec, err = registerCollector(reg, syncDeletedVec); err != nil {
		return nil, err
	}
	if failuresVec, err = registerCollector(reg, failuresVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		tasksCreatedTotal:   createdVec,
		tasksDeletedTotal:   deletedVec,
		syncCreatedTotal:    syncCreatedVec,
		syncDeletedTotal:    syncDeletedVec,
		createFailuresTotal: failuresVec,
	}, nil
}

// RecordTaskCreated records a successful task creation.
func (m *MetricsExporter) RecordTaskCreated(name string) {
	if m == nil {
		return
	}
	m.tasksCreatedTotal.WithLabelValues(normalizeLabel(name, "unnamed")).Inc()
}

// RecordTaskDeleted records a task deletion.
func (m *MetricsExporter) RecordTaskDeleted(name string) {
	if m == nil {
		return
	}
	m.tasksDeletedTotal.WithLabelValues(normalizeLabel(name, "unnamed")).Inc()
}

// RecordSyncCreated records creation of a signaling object.
func (m *MetricsExporter) RecordSyncCreated(kind string) {
	if m == nil {
		return
	}
	m.syncCreatedTotal.WithLabelValues(normalizeLabel(kind, "unknown")).Inc()
}

// RecordSyncDeleted records deletion of a signaling object.
func (m *MetricsExporter) RecordSyncDeleted(kind string) {
	if m == nil {
		return
	}
	m.syncDeletedTotal.WithLabelValues(normalizeLabel(kind, "unknown")).Inc()
}

// RecordCreateFailure records a kernel allocation failure.
func (m *MetricsExporter) RecordCreateFailure(kind string, reason string) {
	if m == nil {
		return
	}
	m.createFailuresTotal.WithLabelValues(normalizeLabel(kind, "unknown"), normalizeLabel(reason, "unknown")).Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
