package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finsolve/knowledge-assistant/internal/core/domain"
)

// IngestMetrics instruments the batch ingestion pipeline in the reindex
// worker.
type IngestMetrics struct {
	registry *prometheus.Registry

	runsTotal   *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	filesTotal  *prometheus.CounterVec
	chunksTotal *prometheus.CounterVec
}

func NewIngestMetrics(service string) *IngestMetrics {
	registry := prometheus.NewRegistry()

	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ka",
			Subsystem: "ingest",
			Name:      "runs_total",
			Help:      "Total ingestion runs by outcome.",
		},
		[]string{"service", "status"},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ka",
			Subsystem: "ingest",
			Name:      "run_duration_seconds",
			Help:      "Ingestion run duration in seconds.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	filesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ka",
			Subsystem: "ingest",
			Name:      "files_total",
			Help:      "Total corpus files seen by load status.",
		},
		[]string{"service", "status"},
	)
	chunksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ka",
			Subsystem: "ingest",
			Name:      "chunks_total",
			Help:      "Total chunks published to the index.",
		},
		[]string{"service"},
	)

	registry.MustRegister(runsTotal, runDuration, filesTotal, chunksTotal)

	return &IngestMetrics{
		registry:    registry,
		runsTotal:   runsTotal,
		runDuration: runDuration,
		filesTotal:  filesTotal,
		chunksTotal: chunksTotal,
	}
}

func (m *IngestMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *IngestMetrics) RecordRun(service string, report domain.IngestReport, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.runsTotal.WithLabelValues(service, status).Inc()
	m.runDuration.WithLabelValues(service).Observe(duration.Seconds())

	m.filesTotal.WithLabelValues(service, string(domain.LoadOK)).Add(float64(report.FilesLoaded))
	m.filesTotal.WithLabelValues(service, string(domain.LoadSkipped)).Add(float64(report.FilesSkipped))
	m.filesTotal.WithLabelValues(service, string(domain.LoadFailed)).Add(float64(report.FilesFailed))
	if err == nil {
		m.chunksTotal.WithLabelValues(service).Add(float64(report.Chunks))
	}
}
