package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "ledger_"

	// ResultSuccess labels a successful ledger operation.
	ResultSuccess = "success"
	// ResultError labels a failed ledger operation.
	ResultError = "error"
)

var (
	registerOnce sync.Once

	submitTotal   *prometheus.CounterVec
	submitLatency *prometheus.HistogramVec

	cancelTotal   *prometheus.CounterVec
	cancelLatency *prometheus.HistogramVec

	contentionRetries *prometheus.CounterVec

	movementAppends prometheus.Counter

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers ledger metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		submitTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "submit_total",
				Help: "Total stage submissions by stage and result",
			},
			[]string{"stage", "result"},
		)
		submitLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "submit_latency_seconds",
				Help:    "Stage submission latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage", "result"},
		)

		cancelTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cancel_total",
				Help: "Total stage cancellations by stage and result",
			},
			[]string{"stage", "result"},
		)
		cancelLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "cancel_latency_seconds",
				Help:    "Stage cancellation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage", "result"},
		)

		contentionRetries = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "contention_retries_total",
				Help: "Total optimistic-conflict retries by stage",
			},
			[]string{"stage"},
		)

		movementAppends = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "movement_appends_total",
				Help: "Total movement history records appended",
			},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total document exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Document export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			submitTotal,
			submitLatency,
			cancelTotal,
			cancelLatency,
			contentionRetries,
			movementAppends,
			exportTotal,
			exportLatency,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveSubmit records a stage submission and its duration.
func ObserveSubmit(stage, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if submitTotal != nil {
		submitTotal.WithLabelValues(stage, result).Inc()
	}
	if submitLatency != nil {
		submitLatency.WithLabelValues(stage, result).Observe(duration.Seconds())
	}
}

// ObserveCancel records a stage cancellation and its duration.
func ObserveCancel(stage, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if cancelTotal != nil {
		cancelTotal.WithLabelValues(stage, result).Inc()
	}
	if cancelLatency != nil {
		cancelLatency.WithLabelValues(stage, result).Observe(duration.Seconds())
	}
}

// IncContentionRetry counts one optimistic-conflict retry.
func IncContentionRetry(stage string) {
	if contentionRetries != nil {
		contentionRetries.WithLabelValues(stage).Inc()
	}
}

// IncMovementAppend counts one movement history append.
func IncMovementAppend() {
	if movementAppends != nil {
		movementAppends.Inc()
	}
}

// ObserveExport records a document export and its duration.
func ObserveExport(format, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}
