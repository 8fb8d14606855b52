// Package metrics exposes recognition counters and process gauges for Prometheus.
package metrics

import (
	"context"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/ayusman/mudra/internal/logger"
)

// Metrics holds mudra's collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	framesProcessed prometheus.Counter
	classifications *prometheus.CounterVec
	stableGestures  *prometheus.CounterVec
	activeSessions  prometheus.Gauge
	memUsage        prometheus.Gauge
	cpuUsage        prometheus.Gauge

	proc *process.Process
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		framesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mudra_frames_processed_total",
			Help: "Total number of frames run through a tracker",
		}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mudra_classifications_total",
			Help: "Raw per-frame classifications by gesture",
		}, []string{"gesture"}),
		stableGestures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mudra_stable_gestures_total",
			Help: "Stable gesture changes by gesture",
		}, []string{"gesture"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mudra_active_sessions",
			Help: "Number of open recognition sessions",
		}),
		memUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mudra_process_memory_megabytes",
			Help: "Resident memory usage in megabytes",
		}),
		cpuUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mudra_process_cpu_percent",
			Help: "CPU usage in percent",
		}),
	}

	m.registry.MustRegister(
		m.framesProcessed,
		m.classifications,
		m.stableGestures,
		m.activeSessions,
		m.memUsage,
		m.cpuUsage,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveFrame records one processed frame and its raw classification.
func (m *Metrics) ObserveFrame(raw string) {
	if m == nil {
		return
	}
	m.framesProcessed.Inc()
	m.classifications.WithLabelValues(raw).Inc()
}

// ObserveStable records a stable gesture change.
func (m *Metrics) ObserveStable(gesture string) {
	if m == nil {
		return
	}
	m.stableGestures.WithLabelValues(gesture).Inc()
}

// SetActiveSessions sets the open session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// SampleProcess updates the memory and CPU gauges for the current process.
func (m *Metrics) SampleProcess() error {
	if m.proc == nil {
		p, err := process.NewProcess(int32(os.Getpid()))
		if err != nil {
			return err
		}
		m.proc = p
	}

	memInfo, err := m.proc.MemoryInfo()
	if err != nil {
		return err
	}
	m.memUsage.Set(megabytes(memInfo.RSS))

	cpu, err := m.proc.CPUPercent()
	if err != nil {
		return err
	}
	m.cpuUsage.Set(math.Round(cpu*100) / 100)
	return nil
}

func megabytes(b uint64) float64 {
	return float64(b) / (1 << 20)
}

// Run samples process gauges every interval until ctx is cancelled.
func (m *Metrics) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.SampleProcess(); err != nil {
				logger.S().Debugw("process sample failed", "error", err)
			}
		}
	}
}
