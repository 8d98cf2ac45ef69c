package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "carbonsite_"

	resultSuccess = "success"
)

var (
	registerOnce sync.Once

	siteRegistrations *prometheus.CounterVec

	evaluationTotal   *prometheus.CounterVec
	evaluationLatency *prometheus.HistogramVec

	analysisTotal   *prometheus.CounterVec
	analysisLatency *prometheus.HistogramVec
	analysisSites   prometheus.Histogram

	whatifTotal *prometheus.CounterVec

	reportExportTotal   *prometheus.CounterVec
	reportExportLatency *prometheus.HistogramVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		siteRegistrations = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "site_registrations_total",
				Help: "Total site registration attempts by result",
			},
			[]string{"result"},
		)

		evaluationTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "evaluation_total",
				Help: "Total screening evaluations by result",
			},
			[]string{"result"},
		)
		evaluationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "evaluation_latency_seconds",
				Help:    "Screening evaluation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		analysisTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "analysis_total",
				Help: "Total comprehensive analysis runs by result",
			},
			[]string{"result"},
		)
		analysisLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "analysis_latency_seconds",
				Help:    "Comprehensive analysis latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		analysisSites = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "analysis_sites_per_report",
				Help:    "Number of sites analyzed per report",
				Buckets: []float64{1, 2, 3, 5, 10, 20},
			},
		)

		whatifTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "whatif_total",
				Help: "Total what-if scenario runs by result",
			},
			[]string{"result"},
		)

		reportExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_export_total",
				Help: "Total report export operations by format and result",
			},
			[]string{"format", "result"},
		)
		reportExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			siteRegistrations,
			evaluationTotal,
			evaluationLatency,
			analysisTotal,
			analysisLatency,
			analysisSites,
			whatifTotal,
			reportExportTotal,
			reportExportLatency,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// IncSiteRegistration increments the site registration counter.
func IncSiteRegistration(result string) {
	if result == "" {
		result = resultSuccess
	}
	if siteRegistrations != nil {
		siteRegistrations.WithLabelValues(result).Inc()
	}
}

// ObserveEvaluation records screening evaluation duration and result.
func ObserveEvaluation(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if evaluationTotal != nil {
		evaluationTotal.WithLabelValues(result).Inc()
	}
	if evaluationLatency != nil {
		evaluationLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveAnalysis records analysis run duration, result and sites analyzed.
func ObserveAnalysis(result string, duration time.Duration, sites int) {
	if result == "" {
		result = resultSuccess
	}
	if analysisTotal != nil {
		analysisTotal.WithLabelValues(result).Inc()
	}
	if analysisLatency != nil {
		analysisLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
	if analysisSites != nil && sites > 0 {
		analysisSites.Observe(float64(sites))
	}
}

// IncWhatIf increments the what-if counter.
func IncWhatIf(result string) {
	if result == "" {
		result = resultSuccess
	}
	if whatifTotal != nil {
		whatifTotal.WithLabelValues(result).Inc()
	}
}

// ObserveReportExport records export duration by format and result.
func ObserveReportExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportExportTotal != nil {
		reportExportTotal.WithLabelValues(format, result).Inc()
	}
	if reportExportLatency != nil {
		reportExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}
