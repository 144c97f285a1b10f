package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/embedkit/rtask/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// KernelSnapshotProvider provides current kernel resource snapshots.
type KernelSnapshotProvider interface {
	Counts() core.ResourceCounts
}

// SnapshotPoller periodically exports Kernel.Counts() snapshots into
// Prometheus gauges, one gauge series per registered kernel.
type SnapshotPoller struct {
	interval time.Duration

	kernelsMu sync.RWMutex
	kernels   map[string]KernelSnapshotProvider

	liveTasks      *prom.GaugeVec
	liveSemaphores *prom.GaugeVec
	liveMutexes    *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	liveTasks := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "rtask",
		Name:      "kernel_tasks",
		Help:      "Live kernel tasks.",
	}, []string{"kernel"})
	liveSemaphores := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "rtask",
		Name:      "kernel_semaphores",
		Help:      "Live kernel binary semaphores.",
	}, []string{"kernel"})
	liveMutexes := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "rtask",
		Name:      "kernel_mutexes",
		Help:      "Live kernel mutexes.",
	}, []string{"kernel"})

	var err error
	if liveTasks, err = registerCollector(reg, liveTasks); err != nil {
		return nil, err
	}
	if liveSemaphores, err = registerCollector(reg, liveSemaphores); err != nil {
		return nil, err
	}
	if liveMutexes, err = registerCollector(reg, liveMutexes); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:       interval,
		kernels:        make(map[string]KernelSnapshotProvider),
		liveTasks:      liveTasks,
		liveSemaphores: liveSemaphores,
		liveMutexes:    liveMutexes,
	}, nil
}

// AddKernel adds or replaces a kernel snapshot provider by name.
func (p *SnapshotPoller) AddKernel(name string, provider KernelSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "kernel")
	p.kernelsMu.Lock()
	p.kernels[name] = provider
	p.kernelsMu.Unlock()
}

// RemoveKernel drops a kernel snapshot provider and its gauge series.
func (p *SnapshotPoller) RemoveKernel(name string) {
	if p == nil {
		return
	}
	name = normalizeLabel(name, "kernel")
	p.kernelsMu.Lock()
	delete(p.kernels, name)
	p.kernelsMu.Unlock()

	p.liveTasks.DeleteLabelValues(name)
	p.liveSemaphores.DeleteLabelValues(name)
	p.liveMutexes.DeleteLabelValues(name)
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

// Poll exports one snapshot of every registered kernel immediately.
func (p *SnapshotPoller) Poll() {
	p.kernelsMu.RLock()
	defer p.kernelsMu.RUnlock()

	for name, provider := range p.kernels {
		counts := provider.Counts()
		p.liveTasks.WithLabelValues(name).Set(float64(counts.Tasks))
		p.liveSemaphores.WithLabelValues(name).Set(float64(counts.Semaphores))
		p.liveMutexes.WithLabelValues(name).Set(float64(counts.Mutexes))
	}
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Poll()
	for {
		select {
		case <-ticker.C:
			p.Poll()
		case <-ctx.Done():
			return
		}
	}
}
