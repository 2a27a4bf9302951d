package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "salon_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Signup counters
	SignupCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "salon_signup_total",
			Help: "Total number of exhibitor registrations",
		},
	)

	// Visitor token issuance counter
	TokenIssuedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "salon_tokens_issued_total",
			Help: "Total number of newly minted visitor tokens",
		},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salon_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salon_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // type can be "login_failure", "invalid_token", "no_session" etc.
	)

	// Ownership rejection counter
	OwnershipRejectionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salon_ownership_rejections_total",
			Help: "Total number of rejected cross-salon interactions",
		},
		[]string{"reason"}, // reason can be "actor_missing", "content_missing", "content_orphaned"
	)

	// Like toggle counter
	LikeToggleCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salon_like_toggles_total",
			Help: "Total number of like toggle operations",
		},
		[]string{"action"}, // action is "liked" or "unliked"
	)

	// Unified like counter
	UnifiedLikeCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salon_unified_like_toggles_total",
			Help: "Total number of unified like toggle operations",
		},
		[]string{"action"},
	)

	// Fallback attempt counter per sibling server
	FallbackAttemptCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salon_fallback_attempts_total",
			Help: "Total number of fallback requests by server and outcome",
		},
		[]string{"server", "outcome"}, // outcome is "success" or "failure"
	)

	// Fallback exhaustion counter
	FallbackExhaustedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salon_fallback_exhausted_total",
			Help: "Total number of reads where every sibling server failed",
		},
		[]string{"endpoint"},
	)

	// Salon switch counter
	SalonSwitchCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "salon_switches_total",
			Help: "Total number of active salon switches",
		},
	)

	// Push notification counter
	PushCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salon_push_notifications_total",
			Help: "Total number of push notification deliveries by outcome",
		},
		[]string{"outcome"}, // outcome is "sent" or "failed"
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "salon_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "salon_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)

	// Fallback request duration per sibling
	FallbackDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "salon_fallback_duration_seconds",
			Help:    "Duration of fallback requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"server"},
	)
)

// Gauge metrics
var (
	// Registered devices
	RegisteredDevicesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "salon_registered_devices",
			Help: "Number of currently registered push devices",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "salon_info",
			Help: "Information about the salon service",
		},
		[]string{"version", "salon"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(SignupCounter)
	prometheus.MustRegister(TokenIssuedCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(OwnershipRejectionCounter)
	prometheus.MustRegister(LikeToggleCounter)
	prometheus.MustRegister(UnifiedLikeCounter)
	prometheus.MustRegister(FallbackAttemptCounter)
	prometheus.MustRegister(FallbackExhaustedCounter)
	prometheus.MustRegister(SalonSwitchCounter)
	prometheus.MustRegister(PushCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)
	prometheus.MustRegister(FallbackDuration)

	// Register gauges
	prometheus.MustRegister(RegisteredDevicesGauge)
	prometheus.MustRegister(InfoGauge)
}

// SetServiceInfo sets the service info gauge once at startup
func SetServiceInfo(version, salon string) {
	InfoGauge.With(prometheus.Labels{"version": version, "salon": salon}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			// Record metrics
			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordOwnershipRejection records a rejected cross-salon interaction
func RecordOwnershipRejection(reason string) {
	OwnershipRejectionCounter.With(prometheus.Labels{"reason": reason}).Inc()
}

// RecordLikeToggle records a like toggle by resulting action
func RecordLikeToggle(action string) {
	LikeToggleCounter.With(prometheus.Labels{"action": action}).Inc()
}

// RecordUnifiedLikeToggle records a unified like toggle by resulting action
func RecordUnifiedLikeToggle(action string) {
	UnifiedLikeCounter.With(prometheus.Labels{"action": action}).Inc()
}

// RecordFallbackAttempt records one sibling request by outcome
func RecordFallbackAttempt(server, outcome string) {
	FallbackAttemptCounter.With(prometheus.Labels{"server": server, "outcome": outcome}).Inc()
}

// RecordFallbackExhausted records a read where no sibling answered
func RecordFallbackExhausted(endpoint string) {
	FallbackExhaustedCounter.With(prometheus.Labels{"endpoint": endpoint}).Inc()
}

// TrackFallbackRequest measures one sibling request's duration
func TrackFallbackRequest(server string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		FallbackDuration.With(prometheus.Labels{"server": server}).Observe(duration)
	}
}

// RecordPush records push notification deliveries by outcome
func RecordPush(outcome string, count int) {
	PushCounter.With(prometheus.Labels{"outcome": outcome}).Add(float64(count))
}

// UpdateRegisteredDevices updates the registered devices gauge
func UpdateRegisteredDevices(count int) {
	RegisteredDevicesGauge.Set(float64(count))
}
