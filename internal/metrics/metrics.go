package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casesurf_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "casesurf_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Generation Metrics
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casesurf_generations_total",
			Help: "Total number of AI generation requests",
		},
		[]string{"kind", "status"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "casesurf_generation_duration_seconds",
			Help:    "AI generation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4 minutes
		},
		[]string{"kind"},
	)

	// Credit Metrics
	CreditsConsumedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "casesurf_credits_consumed_total",
			Help: "Total number of credits consumed by script improvements",
		},
	)

	CreditDenialsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "casesurf_credit_denials_total",
			Help: "Total number of requests denied for insufficient credit",
		},
	)

	// Payment Metrics
	PaymentCapturesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casesurf_payment_captures_total",
			Help: "Total number of payment capture attempts",
		},
		[]string{"plan", "status"},
	)

	PaymentAmountCents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casesurf_payment_amount_cents_total",
			Help: "Total captured payment amount in cents",
		},
		[]string{"plan"},
	)

	// Feed Metrics
	FeedSyncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casesurf_feed_syncs_total",
			Help: "Total number of video feed synchronizations",
		},
		[]string{"status"},
	)

	FeedSyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "casesurf_feed_sync_duration_seconds",
			Help:    "Feed synchronization duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)

	FeedVideosTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "casesurf_feed_videos_total",
			Help: "Number of videos in the current feed snapshot",
		},
	)

	VideoClicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "casesurf_video_clicks_total",
			Help: "Total number of video click events recorded",
		},
	)

	VideoLikesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casesurf_video_likes_total",
			Help: "Total number of video like and unlike events",
		},
		[]string{"action"},
	)

	// Storage Metrics
	StorageOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casesurf_storage_operations_total",
			Help: "Total number of storage operations",
		},
		[]string{"operation", "status"},
	)

	StorageOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "casesurf_storage_operation_duration_seconds",
			Help:    "Storage operation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"operation"},
	)

	// Database Metrics
	DatabaseOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casesurf_database_operations_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "status"},
	)

	DatabaseOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "casesurf_database_operation_duration_seconds",
			Help:    "Database operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DatabaseConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "casesurf_database_connections_active",
			Help: "Number of active database connections",
		},
	)

	// Cache Metrics
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casesurf_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casesurf_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// Queue Metrics
	TasksPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casesurf_tasks_published_total",
			Help: "Total number of tasks published to the queue",
		},
		[]string{"task_type"},
	)

	TasksProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casesurf_tasks_processed_total",
			Help: "Total number of tasks processed by the worker",
		},
		[]string{"task_type", "status"},
	)

	// Error Metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casesurf_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(method, endpoint, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordGeneration records an AI generation request
func RecordGeneration(kind, status string, duration float64) {
	GenerationsTotal.WithLabelValues(kind, status).Inc()
	GenerationDuration.WithLabelValues(kind).Observe(duration)
}

// RecordCreditConsumed records a successful credit deduction
func RecordCreditConsumed() {
	CreditsConsumedTotal.Inc()
}

// RecordCreditDenial records a request rejected for insufficient credit
func RecordCreditDenial() {
	CreditDenialsTotal.Inc()
}

// RecordPaymentCapture records a payment capture attempt
func RecordPaymentCapture(plan, status string, amountCents int64) {
	PaymentCapturesTotal.WithLabelValues(plan, status).Inc()
	if amountCents > 0 {
		PaymentAmountCents.WithLabelValues(plan).Add(float64(amountCents))
	}
}

// RecordFeedSync records a feed synchronization run
func RecordFeedSync(status string, duration float64, videoCount int) {
	FeedSyncsTotal.WithLabelValues(status).Inc()
	FeedSyncDuration.Observe(duration)
	if status == "success" {
		FeedVideosTotal.Set(float64(videoCount))
	}
}

// RecordVideoClick records a video click event
func RecordVideoClick() {
	VideoClicksTotal.Inc()
}

// RecordVideoLike records a like or unlike event
func RecordVideoLike(action string) {
	VideoLikesTotal.WithLabelValues(action).Inc()
}

// RecordStorageOperation records a storage operation
func RecordStorageOperation(operation, status string, duration float64) {
	StorageOperationsTotal.WithLabelValues(operation, status).Inc()
	StorageOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordDatabaseOperation records a database operation
func RecordDatabaseOperation(operation, status string, duration float64) {
	DatabaseOperationsTotal.WithLabelValues(operation, status).Inc()
	DatabaseOperationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordCacheAccess records cache hit or miss
func RecordCacheAccess(cacheType string, hit bool) {
	if hit {
		CacheHitsTotal.WithLabelValues(cacheType).Inc()
	} else {
		CacheMissesTotal.WithLabelValues(cacheType).Inc()
	}
}

// RecordTaskPublished records a task published to the queue
func RecordTaskPublished(taskType string) {
	TasksPublishedTotal.WithLabelValues(taskType).Inc()
}

// RecordTaskProcessed records a task handled by the worker
func RecordTaskProcessed(taskType, status string) {
	TasksProcessedTotal.WithLabelValues(taskType, status).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
