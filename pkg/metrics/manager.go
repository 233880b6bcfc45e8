package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mfreeman451/checkmate/pkg/models"
)

// NodeMetrics holds one host's timing buffer behind a fine-grained lock.
type NodeMetrics struct {
	mu     sync.RWMutex
	buffer MetricStore
}

// MetricsManager keeps a timing buffer per host, up to MaxHosts when
// that limit is configured.
type MetricsManager struct {
	hosts       sync.Map   // host -> *NodeMetrics
	admission   sync.Mutex // serializes first-sight host admission
	config      models.MetricsConfig
	activeHosts int64 // Atomic counter for active hosts
}

func NewMetricsManager(cfg models.MetricsConfig) *MetricsManager {
	if cfg.Retention <= 0 {
		cfg.Retention = 100
	}

	return &MetricsManager{
		config: cfg,
	}
}

// AddMetric records one evaluation timing for a host's service. Timings
// for hosts beyond the configured MaxHosts cap are discarded.
func (m *MetricsManager) AddMetric(host string, timestamp time.Time, elapsedMicros int64, serviceName string) {
	if !m.config.Enabled {
		return
	}

	nodeMetrics, ok := m.hosts.Load(host)
	if !ok {
		nodeMetrics, ok = m.admit(host)
		if !ok {
			return
		}
	}

	nm := nodeMetrics.(*NodeMetrics)

	nm.mu.Lock()
	defer nm.mu.Unlock()

	nm.buffer.Add(timestamp, elapsedMicros, serviceName)
}

// admit registers a first-seen host, refusing once MaxHosts buffers are
// tracked.
func (m *MetricsManager) admit(host string) (interface{}, bool) {
	m.admission.Lock()
	defer m.admission.Unlock()

	if nodeMetrics, ok := m.hosts.Load(host); ok {
		return nodeMetrics, true
	}

	if m.config.MaxHosts > 0 && atomic.LoadInt64(&m.activeHosts) >= int64(m.config.MaxHosts) {
		return nil, false
	}

	nodeMetrics := &NodeMetrics{buffer: NewBuffer(m.config.Retention)}
	m.hosts.Store(host, nodeMetrics)
	atomic.AddInt64(&m.activeHosts, 1)

	return nodeMetrics, true
}

// GetMetrics returns a host's recorded timings, newest first.
func (m *MetricsManager) GetMetrics(host string) []models.MetricPoint {
	nodeMetrics, ok := m.hosts.Load(host)
	if !ok {
		return nil
	}

	nm := nodeMetrics.(*NodeMetrics)

	nm.mu.RLock()
	defer nm.mu.RUnlock()

	return nm.buffer.GetPoints()
}

func (m *MetricsManager) GetActiveHosts() int64 {
	return atomic.LoadInt64(&m.activeHosts)
}
