package middleware

import (
	"net/http"
	"time"

	"github.com/Conceptual-Machines/moodsic-api/internal/logger"
	"github.com/Conceptual-Machines/moodsic-api/internal/metrics"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	sentryFlushTimeout = 2 * time.Second
)

var sentryMetrics = metrics.NewSentryMetrics()

// RequestID returns the id RequestTracking assigned to the request
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// requestID keeps a gateway-issued X-Request-ID when it is a UUID and mints one otherwise
func requestID(c *gin.Context) string {
	if id := c.GetHeader(requestIDHeader); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return uuid.New().String()
}

// endpoint is the route template, so /api/v1/compositions/:id is one series
// rather than one per composition
func endpoint(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

// RequestTracking tags each request with an id, logs it once it finishes and records
// request metrics in Sentry and CloudWatch. A nil CloudWatch client is allowed.
func RequestTracking(cloudwatch *metrics.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := requestID(c)
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.Scope().SetTag(requestIDKey, id)
		}

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		status := c.Writer.Status()

		route := endpoint(c)
		logger.LogAPIRequest(c, elapsed, status, logger.Fields{"endpoint": route})
		sentryMetrics.RecordAPIRequest(c.Request.Context(), route, status, elapsed)
		cloudwatch.RecordAPIRequest(route, status, elapsed)
	}
}

// SentryMiddleware attaches a Sentry hub to every request. Panics are re-raised for
// RecoverWithSentry to answer.
func SentryMiddleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic: true,
		Timeout: sentryFlushTimeout,
	})
}

// RecoverWithSentry turns a panic in a handler (a composition run included) into a
// 500 carrying the request id, and reports it with the caller attached
func RecoverWithSentry() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			reportPanic(c, recovered)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":      "Internal server error",
				"request_id": RequestID(c),
			})
		}()
		c.Next()
	}
}

func reportPanic(c *gin.Context, recovered interface{}) {
	fields := logger.WithContext(c)
	fields["panic"] = recovered
	logger.Warn("Panic recovered", fields)

	hub := sentrygin.GetHubFromContext(c)
	if hub == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(c.Request)
		scope.SetTag("endpoint", endpoint(c))
		scope.SetTag(requestIDKey, RequestID(c))
		if user := UserID(c); user != "" {
			scope.SetUser(sentry.User{ID: user, Email: UserEmail(c)})
		}
		hub.RecoverWithContext(c.Request.Context(), recovered)
	})
}
