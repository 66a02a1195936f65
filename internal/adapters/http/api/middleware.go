package api

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/typerank/pkg/logger"
	"github.com/okian/typerank/pkg/metrics"
	"golang.org/x/crypto/bcrypt"
)

// HTTP status code constants.
const (
	statusBadRequest      = 400
	statusUnauthorized    = 401
	statusNotFound        = 404
	statusTooManyRequests = 429
	statusInternalError   = 500
)

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		durationMs := float64(time.Since(start).Milliseconds())
		statusCodeStr := strconv.Itoa(wrapped.statusCode)

		metrics.RecordHTTPRequest(endpoint, r.Method, statusCodeStr)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, statusCodeStr, durationMs)

		// Record error metrics if status indicates an error
		if wrapped.statusCode >= statusBadRequest {
			errorType := getErrorType(wrapped.statusCode)
			severity := getErrorSeverity(wrapped.statusCode)
			metrics.RecordErrorByEndpoint(endpoint, r.Method, errorType)
			metrics.RecordErrorByType(errorType, severity)
		}
	}
}

// getErrorType returns a standardized error type based on HTTP status code.
func getErrorType(statusCode int) string {
	switch {
	case statusCode >= statusInternalError:
		return "server_error"
	case statusCode == statusTooManyRequests:
		return "rate_limit"
	case statusCode == statusNotFound:
		return "not_found"
	case statusCode == statusUnauthorized:
		return "unauthorized"
	case statusCode >= statusBadRequest:
		return "client_error"
	default:
		return "unknown"
	}
}

// getErrorSeverity returns error severity based on HTTP status code.
func getErrorSeverity(statusCode int) string {
	switch {
	case statusCode >= statusInternalError:
		return "high"
	case statusCode >= statusBadRequest:
		return "medium"
	default:
		return "low"
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}

// withLogging logs each request at debug level once it completes.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		s.logger.Debug(r.Context(), "http request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.String("query", r.URL.RawQuery),
			logger.Int("status", wrapped.statusCode),
			logger.Duration("duration", time.Since(start)),
		)
	}
}

// BasicAuth guards handlers with a single HTTP Basic credential pair.
type BasicAuth struct {
	user     []byte
	password []byte
	hash     []byte
	realm    string
	logger   logger.Logger
}

// AuthOption customizes NewBasicAuth.
type AuthOption func(*BasicAuth)

// WithPassword sets a plaintext password, compared in constant time.
func WithPassword(password string) AuthOption {
	return func(a *BasicAuth) { a.password = []byte(password) }
}

// WithPasswordHash sets a bcrypt hash; it takes precedence over WithPassword.
func WithPasswordHash(hash string) AuthOption {
	return func(a *BasicAuth) { a.hash = []byte(hash) }
}

// WithRealm sets the realm announced in the challenge.
func WithRealm(realm string) AuthOption {
	return func(a *BasicAuth) {
		if realm != "" {
			a.realm = realm
		}
	}
}

// WithAuthLogger sets the logger used for rejected attempts.
func WithAuthLogger(l logger.Logger) AuthOption {
	return func(a *BasicAuth) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewBasicAuth builds the guard for user. With neither a password nor a
// hash every request is rejected.
func NewBasicAuth(user string, opts ...AuthOption) *BasicAuth {
	a := &BasicAuth{user: []byte(user), realm: "admin", logger: logger.Discard()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Check reports whether user and password match the configured pair.
func (a *BasicAuth) Check(user, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), a.user) == 1
	var passOK bool
	switch {
	case len(a.hash) > 0:
		passOK = bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
	case len(a.password) > 0:
		passOK = subtle.ConstantTimeCompare([]byte(password), a.password) == 1
	}
	return userOK && passOK
}

// Wrap challenges requests without valid credentials with 401.
func (a *BasicAuth) Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, password, ok := r.BasicAuth()
		if !ok || !a.Check(user, password) {
			metrics.RecordAuthFailure()
			a.logger.Warn(r.Context(), "admin authentication failed",
				logger.String("path", r.URL.Path),
				logger.String("remote", ClientIP(r)),
				logger.Bool("credentials_present", ok),
			)
			w.Header().Set("WWW-Authenticate", `Basic realm="`+a.realm+`", charset="UTF-8"`)
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	}
}
