package prometheus

import (
	"time"

	"catalog-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors stay nil until InitMetrics runs; the Record helpers are no-ops
// in that case so packages can be used without a registry (tests, CLI).
var (
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Catalog metrics
	CatalogOperationsCounter *prometheus.CounterVec
	ListingQueriesCounter    *prometheus.CounterVec
	ProductViewsCounter      *prometheus.CounterVec

	// Storefront interactions
	ContactSubmissionsCounter *prometheus.CounterVec
	NewsletterSignupsCounter  *prometheus.CounterVec

	// Image pipeline metrics
	RenditionsDerivedCounter prometheus.Counter
	ImageErrorsCounter       *prometheus.CounterVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of admin authentication attempts",
		},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of admin authentication errors",
		},
	)

	DbOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	CatalogOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_catalog_operations_total",
			Help: "Total number of admin catalog operations",
		},
		[]string{"entity", "operation"},
	)

	ListingQueriesCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_listing_queries_total",
			Help: "Total number of catalog listing queries",
		},
		[]string{"sort"},
	)

	ProductViewsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_product_views_total",
			Help: "Total number of product detail views",
		},
		[]string{"product_slug", "category"},
	)

	ContactSubmissionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_contact_submissions_total",
			Help: "Total number of contact form submissions",
		},
		[]string{"outcome"},
	)

	NewsletterSignupsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_newsletter_signups_total",
			Help: "Total number of newsletter signups",
		},
		[]string{"outcome"},
	)

	RenditionsDerivedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_renditions_derived_total",
			Help: "Total number of image renditions derived and stored",
		},
	)

	ImageErrorsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_image_errors_total",
			Help: "Total number of image items that failed to process",
		},
		[]string{"stage"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if DbOperationDuration == nil {
			return
		}
		DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordHTTPRequest records one served request
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if HttpRequestsTotal == nil {
		return
	}
	HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordAuthAttempt counts an admin authentication attempt and its failure
func RecordAuthAttempt(ok bool) {
	if AuthAttemptsCounter == nil {
		return
	}
	AuthAttemptsCounter.Inc()
	if !ok {
		AuthErrorsCounter.Inc()
	}
}

// RecordCatalogOperation increments the counter for admin catalog operations
func RecordCatalogOperation(entity, operation string) {
	if CatalogOperationsCounter == nil {
		return
	}
	CatalogOperationsCounter.WithLabelValues(entity, operation).Inc()
}

// RecordListingQuery counts a listing request by sort key
func RecordListingQuery(sort string) {
	if ListingQueriesCounter == nil {
		return
	}
	ListingQueriesCounter.WithLabelValues(sort).Inc()
}

// RecordProductView increments the counter for product views
func RecordProductView(slug string, category string) {
	if ProductViewsCounter == nil {
		return
	}
	ProductViewsCounter.WithLabelValues(slug, category).Inc()
}

// RecordContactSubmission counts a contact form outcome
func RecordContactSubmission(outcome string) {
	if ContactSubmissionsCounter == nil {
		return
	}
	ContactSubmissionsCounter.WithLabelValues(outcome).Inc()
}

// RecordNewsletterSignup counts a newsletter outcome
func RecordNewsletterSignup(outcome string) {
	if NewsletterSignupsCounter == nil {
		return
	}
	NewsletterSignupsCounter.WithLabelValues(outcome).Inc()
}

// RecordRenditions adds n derived renditions
func RecordRenditions(n int) {
	if RenditionsDerivedCounter == nil {
		return
	}
	RenditionsDerivedCounter.Add(float64(n))
}

// RecordImageError counts a failed image item
func RecordImageError(stage string) {
	if ImageErrorsCounter == nil {
		return
	}
	ImageErrorsCounter.WithLabelValues(stage).Inc()
}
