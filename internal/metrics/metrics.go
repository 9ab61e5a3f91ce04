// Package metrics provides Prometheus metrics for playlist runs.
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors/version"
)

const namespace = "m3utidy"

// Metrics holds the counters of a single run and the registry they live in.
type Metrics struct {
	Registry *prometheus.Registry

	// Channels tracks the number of channels read, per command and playlist role.
	Channels *prometheus.GaugeVec
	// Categories tracks the number of categories written by organize.
	Categories prometheus.Gauge
	// Skipped tracks entries left out of the output, per reason.
	Skipped *prometheus.GaugeVec
	// IndexKeys tracks the number of keys in the logo index.
	IndexKeys prometheus.Gauge
	// LogosReplaced tracks the number of description lines whose logo was set.
	LogosReplaced prometheus.Gauge
	// LastRun reports when the run finished, per command.
	LastRun *prometheus.GaugeVec
	// RunDuration reports how long the run took, per command.
	RunDuration *prometheus.GaugeVec
}

// New returns Metrics registered in a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Channels: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "channels",
				Name:      "total",
				Help:      "Number of channels read from a playlist.",
			},
			[]string{"command", "playlist"},
		),
		Categories: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "organize",
				Name:      "categories",
				Help:      "Number of categories written.",
			},
		),
		Skipped: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "channels",
				Name:      "skipped",
				Help:      "Number of channels left out of the output.",
			},
			[]string{"command", "reason"},
		),
		IndexKeys: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "logos",
				Name:      "index_keys",
				Help:      "Number of keys in the reference logo index.",
			},
		),
		LogosReplaced: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "logos",
				Name:      "replaced",
				Help:      "Number of channels whose logo was set.",
			},
		),
		LastRun: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last run finished.",
			},
			[]string{"command"},
		),
		RunDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of the last run in seconds.",
			},
			[]string{"command"},
		),
	}

	m.Registry.MustRegister(
		version.NewCollector(namespace),
		m.Channels,
		m.Categories,
		m.Skipped,
		m.IndexKeys,
		m.LogosReplaced,
		m.LastRun,
		m.RunDuration,
	)

	return m
}

// Finish records the end of a run of command that started at start.
func (m *Metrics) Finish(command string, start, end time.Time) {
	m.LastRun.WithLabelValues(command).Set(float64(end.Unix()))
	m.RunDuration.WithLabelValues(command).Set(end.Sub(start).Seconds())
}

// WriteTextfile writes every metric to path in the text exposition format,
// for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return errors.Wrapf(err, "error writing metrics to %s", path)
	}
	return nil
}
