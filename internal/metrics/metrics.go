package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "settlement_pipeline"

// Metrics holds the pipeline collectors on a dedicated registry so they can
// be served over HTTP or dumped to a textfile after a batch run.
type Metrics struct {
	Registry *prometheus.Registry

	Runs              *prometheus.CounterVec
	RowsRead          *prometheus.GaugeVec
	RowsNormalized    *prometheus.GaugeVec
	RowsMerged        prometheus.Gauge
	RowsSynthesized   prometheus.Gauge
	CellsInterpolated *prometheus.GaugeVec
	CellsMissing      *prometheus.GaugeVec
	StageDuration     *prometheus.HistogramVec
	LastSuccess       prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by command and outcome.",
		}, []string{"command", "status"}),
		RowsRead: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_read",
			Help:      "Rows read from each raw source in the last run.",
		}, []string{"source"}),
		RowsNormalized: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_normalized",
			Help:      "Rows in each normalized table in the last run.",
		}, []string{"table"}),
		RowsMerged: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_merged",
			Help:      "Rows in the merged table in the last run.",
		}),
		RowsSynthesized: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_synthesized",
			Help:      "Calendar periods observed in neither generation nor demand.",
		}),
		CellsInterpolated: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cells_interpolated",
			Help:      "Cells filled by interpolation per column in the last run.",
		}, []string{"column"}),
		CellsMissing: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cells_missing",
			Help:      "Cells left missing after interpolation per column in the last run.",
		}, []string{"column"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time per pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"stage"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
	m.Registry.MustRegister(
		m.Runs,
		m.RowsRead,
		m.RowsNormalized,
		m.RowsMerged,
		m.RowsSynthesized,
		m.CellsInterpolated,
		m.CellsMissing,
		m.StageDuration,
		m.LastSuccess,
	)
	return m
}

// ObserveStage records the time since start for stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// WriteTextfile dumps the registry in the text exposition format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
