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
			Name: "rental_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rental_register_total",
			Help: "Total number of user registrations",
		},
	)

	// OTP dispatch counter by flow ("verify" or "reset")
	OTPSentCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_otp_sent_total",
			Help: "Total number of one-time codes dispatched by flow",
		},
		[]string{"flow"},
	)

	// OTP verification counter by outcome
	OTPVerifyCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_otp_verify_total",
			Help: "Total number of OTP verification attempts by outcome",
		},
		[]string{"outcome"}, // outcome can be "success", "mismatch", "expired", "exhausted", etc.
	)

	// Property operation counter
	PropertyOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_property_operations_total",
			Help: "Total number of property operations",
		},
		[]string{"operation"}, // operation can be "create", "list", "update", "delete"
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // type can be "login_failure", "invalid_token", "db_error" etc.
	)

	// SMS delivery failure counter
	SMSErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_sms_errors_total",
			Help: "Total number of SMS delivery failures",
		},
		[]string{"type"}, // type can be "invalid_number", "not_sms_capable", "delivery_failed"
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rental_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rental_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Active users (logged in, not yet logged out)
	ActiveUsersGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rental_active_users",
			Help: "Number of users currently marked active",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rental_info",
			Help: "Information about the rental service",
		},
		[]string{"version"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(OTPSentCounter)
	prometheus.MustRegister(OTPVerifyCounter)
	prometheus.MustRegister(PropertyOperationCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(SMSErrorCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(ActiveUsersGauge)
	prometheus.MustRegister(InfoGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
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

// IncreaseActiveUsers increments the active users gauge
func IncreaseActiveUsers() {
	ActiveUsersGauge.Inc()
}

// DecreaseActiveUsers decrements the active users gauge
func DecreaseActiveUsers() {
	ActiveUsersGauge.Dec()
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordOTPSent records a dispatched one-time code by flow
func RecordOTPSent(flow string) {
	OTPSentCounter.With(prometheus.Labels{"flow": flow}).Inc()
}

// RecordOTPVerify records an OTP verification attempt by outcome
func RecordOTPVerify(outcome string) {
	OTPVerifyCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// RecordPropertyOperation records a property operation
func RecordPropertyOperation(operation string) {
	PropertyOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordSMSError records an SMS delivery failure by type
func RecordSMSError(errorType string) {
	SMSErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}
