package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// File-processing statuses used as label values.
const (
	FileStatusImported = "imported"
	FileStatusEmpty    = "empty"
	FileStatusFailed   = "failed"
	FileStatusSkipped  = "skipped"
)

// ImporterMetrics captures pipeline health signals: files dispatched, rows
// parsed and rejected, chunk write failures, refresh step outcomes.
type ImporterMetrics struct {
	filesProcessed *prometheus.CounterVec
	rowsParsed     *prometheus.CounterVec
	rowsRejected   *prometheus.CounterVec
	rowsLoaded     *prometheus.CounterVec
	batchErrors    *prometheus.CounterVec
	refreshSteps   *prometheus.CounterVec
	importDuration *prometheus.HistogramVec
}

var (
	importerMetricsOnce sync.Once
	importerMetrics     *ImporterMetrics
)

// Importer returns the singleton importer metrics registry.
func Importer() *ImporterMetrics {
	importerMetricsOnce.Do(func() {
		importerMetrics = &ImporterMetrics{
			filesProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "importer_files_processed_total",
				Help: "Files dispatched through an import pipeline, by outcome.",
			}, []string{"pipeline", "status"}),
			rowsParsed: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "importer_rows_parsed_total",
				Help: "Valid rows produced by the spreadsheet parsers.",
			}, []string{"pipeline"}),
			rowsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "importer_rows_rejected_total",
				Help: "Rows dropped during parsing, by reason.",
			}, []string{"pipeline", "reason"}),
			rowsLoaded: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "importer_rows_loaded_total",
				Help: "Rows written to the destination tables.",
			}, []string{"pipeline"}),
			batchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "importer_batch_errors_total",
				Help: "Destination chunk writes that failed and were skipped.",
			}, []string{"pipeline"}),
			refreshSteps: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "importer_refresh_steps_total",
				Help: "Cache refresh step outcomes.",
			}, []string{"step", "outcome"}),
			importDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "importer_file_duration_seconds",
				Help:    "End-to-end duration of one file import.",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			}, []string{"pipeline"}),
		}
	})
	return importerMetrics
}

func (m *ImporterMetrics) IncFileProcessed(pipeline, status string) {
	m.filesProcessed.WithLabelValues(pipeline, status).Inc()
}

func (m *ImporterMetrics) AddRowsParsed(pipeline string, n int) {
	m.rowsParsed.WithLabelValues(pipeline).Add(float64(n))
}

func (m *ImporterMetrics) AddRowsRejected(pipeline, reason string, n int) {
	m.rowsRejected.WithLabelValues(pipeline, reason).Add(float64(n))
}

func (m *ImporterMetrics) AddRowsLoaded(pipeline string, n int) {
	m.rowsLoaded.WithLabelValues(pipeline).Add(float64(n))
}

func (m *ImporterMetrics) IncBatchError(pipeline string) {
	m.batchErrors.WithLabelValues(pipeline).Inc()
}

func (m *ImporterMetrics) IncRefreshStep(step, outcome string) {
	m.refreshSteps.WithLabelValues(step, outcome).Inc()
}

func (m *ImporterMetrics) ObserveImportDuration(pipeline string, d time.Duration) {
	m.importDuration.WithLabelValues(pipeline).Observe(d.Seconds())
}
