package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the per-run collectors on a private registry. dircap is
// a one-shot job with no listener, so instead of serving /metrics the
// registry is dumped to a textfile that node_exporter's textfile
// collector picks up.
type Metrics struct {
	registry *prometheus.Registry

	// FilesDeletedTotal counts files deleted (or simulated in dry-run)
	FilesDeletedTotal prometheus.Counter

	// BytesFreedTotal counts bytes freed (or simulated in dry-run)
	BytesFreedTotal prometheus.Counter

	// DirsPrunedTotal counts emptied ancestor directories removed
	DirsPrunedTotal prometheus.Counter

	// SizeBytes records the tree's counted size, labeled by phase
	// (initial or final)
	SizeBytes *prometheus.GaugeVec

	// RunDurationSeconds records how long the run took
	RunDurationSeconds prometheus.Gauge

	// DryRun is 1 when the run was a simulation
	DryRun prometheus.Gauge
}

// New creates the run metrics and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.FilesDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dircap_files_deleted_total",
		Help: "Total files deleted during this run (simulated ones included in dry-run mode).",
	})
	m.BytesFreedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dircap_bytes_freed_total",
		Help: "Total bytes freed during this run (simulated ones included in dry-run mode).",
	})
	m.DirsPrunedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dircap_dirs_pruned_total",
		Help: "Total emptied ancestor directories removed during this run.",
	})
	m.SizeBytes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dircap_size_bytes",
		Help: "Aggregate counted size of the managed tree, by phase.",
	}, []string{"phase"})
	m.RunDurationSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dircap_run_duration_seconds",
		Help: "Wall-clock duration of the run.",
	})
	m.DryRun = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dircap_dry_run",
		Help: "1 when the run was a dry run, 0 otherwise.",
	})

	m.registry.MustRegister(
		m.FilesDeletedTotal,
		m.BytesFreedTotal,
		m.DirsPrunedTotal,
		m.SizeBytes,
		m.RunDurationSeconds,
		m.DryRun,
	)
	return m
}

// WriteTextfile dumps the registry to path in the Prometheus text
// exposition format. The client library writes via tempfile and rename,
// so node_exporter never observes a partial file.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics file %s: %w", path, err)
	}
	return nil
}
