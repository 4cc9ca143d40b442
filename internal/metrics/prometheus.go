package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics
type Collector struct {
	// Import metrics
	ImportJobsTotal     *prometheus.CounterVec
	ImportRowsTotal     *prometheus.CounterVec
	ImportFindingsTotal *prometheus.CounterVec
	ImportJobsActive    prometheus.Gauge
	ImportJobDuration   *prometheus.HistogramVec
	ImportBatchDuration prometheus.Histogram
	DuplicateGroupsObs  prometheus.Histogram

	// Detection metrics
	DetectionsTotal      *prometheus.CounterVec
	DetectionConfidence  prometheus.Histogram
	TemplateMatchesTotal *prometheus.CounterVec

	// Export metrics
	ExportRecordsTotal prometheus.Counter

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		ImportJobsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "import_jobs_total",
				Help: "Total number of import jobs",
			},
			[]string{"status"},
		),
		ImportRowsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "import_rows_total",
				Help: "Total number of rows processed during import",
			},
			[]string{"outcome"},
		),
		ImportFindingsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "import_findings_total",
				Help: "Total number of validation findings by code",
			},
			[]string{"severity", "code"},
		),
		ImportJobsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "import_jobs_active",
				Help: "Number of currently active import jobs",
			},
		),
		ImportJobDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "import_job_duration_seconds",
				Help:    "Duration of import jobs in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
			},
			[]string{"status"},
		),
		ImportBatchDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "import_batch_duration_seconds",
				Help:    "Duration of batch processing in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
		),
		DuplicateGroupsObs: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "import_duplicate_groups",
				Help:    "Duplicate groups found per import",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		DetectionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "column_detections_total",
				Help: "Total number of column detections by matched template",
			},
			[]string{"template"},
		),
		DetectionConfidence: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "column_detection_company_confidence",
				Help:    "Confidence of the company field per detection",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
		),
		TemplateMatchesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "template_matches_total",
				Help: "Template match outcomes",
			},
			[]string{"template", "confidence"},
		),
		ExportRecordsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "export_records_total",
				Help: "Total number of applications exported",
			},
		),
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
			},
			[]string{"method", "path"},
		),
	}
}

// RecordImportJobStarted records when an import job starts
func (c *Collector) RecordImportJobStarted() {
	c.ImportJobsActive.Inc()
}

// RecordImportJobCompleted records when an import job reaches a terminal state
func (c *Collector) RecordImportJobCompleted(status string, duration float64) {
	c.ImportJobsTotal.WithLabelValues(status).Inc()
	c.ImportJobsActive.Dec()
	c.ImportJobDuration.WithLabelValues(status).Observe(duration)
}

// RecordImportRows records processed row counts by outcome
func (c *Collector) RecordImportRows(outcome string, count int) {
	c.ImportRowsTotal.WithLabelValues(outcome).Add(float64(count))
}

// RecordFinding records a validation finding
func (c *Collector) RecordFinding(severity, code string) {
	c.ImportFindingsTotal.WithLabelValues(severity, code).Inc()
}

// RecordImportBatch records batch processing duration
func (c *Collector) RecordImportBatch(duration float64) {
	c.ImportBatchDuration.Observe(duration)
}

// RecordDuplicateGroups records the duplicate group count of an import
func (c *Collector) RecordDuplicateGroups(count int) {
	if count > 0 {
		c.DuplicateGroupsObs.Observe(float64(count))
	}
}

// RecordDetection records a detection run and its company confidence
func (c *Collector) RecordDetection(template string, companyConfidence float64) {
	if template == "" {
		template = "none"
	}
	c.DetectionsTotal.WithLabelValues(template).Inc()
	c.DetectionConfidence.Observe(companyConfidence)
}

// RecordTemplateMatch records a template match outcome
func (c *Collector) RecordTemplateMatch(template, confidence string) {
	c.TemplateMatchesTotal.WithLabelValues(template, confidence).Inc()
}

// RecordExportRecords records exported applications
func (c *Collector) RecordExportRecords(count int) {
	c.ExportRecordsTotal.Add(float64(count))
}

// RecordHTTPRequest records an HTTP request
func (c *Collector) RecordHTTPRequest(method, path, status string, duration float64) {
	c.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}
