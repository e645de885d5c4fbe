package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "taxfiling_"

	// ResultSuccess and ResultError label observation outcomes.
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	filingGenerateTotal   *prometheus.CounterVec
	filingGenerateLatency *prometheus.HistogramVec
	filingExportTotal     *prometheus.CounterVec
	filingExportLatency   *prometheus.HistogramVec
	filingRows            prometheus.Histogram
	invalidRegimeTotal    prometheus.Counter

	dbUp prometheus.GaugeFunc
)

// Init registers observability metrics and the DB-backed gauge.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		filingGenerateTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "filing_generate_total",
				Help: "Total declaration generate operations by result",
			},
			[]string{"result"},
		)
		filingGenerateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "filing_generate_latency_seconds",
				Help:    "Declaration generate latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		filingExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "filing_export_total",
				Help: "Total declaration export operations by format and result",
			},
			[]string{"format", "result"},
		)
		filingExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "filing_export_latency_seconds",
				Help:    "Declaration export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)
		filingRows = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "filing_rows",
				Help:    "Declaration rows per generated filing",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		)
		invalidRegimeTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "invalid_regime_total",
				Help: "Total qualification records with an invalid regime config",
			},
		)

		prometheus.MustRegister(
			filingGenerateTotal,
			filingGenerateLatency,
			filingExportTotal,
			filingExportLatency,
			filingRows,
			invalidRegimeTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveFilingGenerate records generate latency and result.
func ObserveFilingGenerate(result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if filingGenerateTotal != nil {
		filingGenerateTotal.WithLabelValues(result).Inc()
	}
	if filingGenerateLatency != nil {
		filingGenerateLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveFilingExport records export latency and result.
func ObserveFilingExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = ResultSuccess
	}
	if filingExportTotal != nil {
		filingExportTotal.WithLabelValues(format, result).Inc()
	}
	if filingExportLatency != nil {
		filingExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// ObserveFilingRows records the row count of a generated filing.
func ObserveFilingRows(count int) {
	if count < 0 {
		return
	}
	if filingRows != nil {
		filingRows.Observe(float64(count))
	}
}

// IncInvalidRegime increments the invalid-regime counter.
func IncInvalidRegime() {
	if invalidRegimeTotal != nil {
		invalidRegimeTotal.Inc()
	}
}

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	dbUp = prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "db_up",
			Help: "Whether the declaration database answers pings",
		},
		func() float64 {
			if err := db.Ping(); err != nil {
				return 0
			}
			return 1
		},
	)
	if err := prometheus.Register(dbUp); err != nil {
		if logger != nil {
			logger.Printf("metrics: db gauge registration: %v", err)
		}
	}
}
