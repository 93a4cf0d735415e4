package logger

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

// Fields represents structured log fields
type Fields map[string]interface{}

// tags promoted from fields onto Sentry events for filtering
var sentryTags = []string{"request_id", "sentiment", "track", "model", "composition_id"}

// WithContext extracts request context for logging
func WithContext(c *gin.Context) Fields {
	fields := Fields{
		"request_id": c.GetString("request_id"),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	}

	if userID, exists := c.Get("user_id"); exists {
		fields["user_id"] = userID
	}

	return fields
}

// Info logs an informational message with structured fields
func Info(msg string, fields Fields) {
	log.Printf("[INFO] %s %s", msg, formatFields(fields))
	breadcrumb("info", sentry.LevelInfo, msg, fields)
}

// Warn logs a warning message with structured fields
func Warn(msg string, fields Fields) {
	log.Printf("[WARN] %s %s", msg, formatFields(fields))
	breadcrumb("warning", sentry.LevelWarning, msg, fields)
}

// Debug logs a debug message with structured fields
func Debug(msg string, fields Fields) {
	log.Printf("[DEBUG] %s %s", msg, formatFields(fields))
	breadcrumb("debug", sentry.LevelDebug, msg, fields)
}

// Error logs an error message with structured fields and sends it to Sentry
func Error(msg string, err error, fields Fields) {
	log.Printf("[ERROR] %s: %v %s", msg, err, formatFields(fields))

	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			applyScope(scope, fields)
			hub.CaptureException(err)
		})
	}
}

// LogToSentry sends a log message directly to Sentry as an event
func LogToSentry(level sentry.Level, msg string, fields Fields) {
	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetLevel(level)
			applyScope(scope, fields)
			hub.CaptureMessage(msg)
		})
	}
}

// LogAPIRequest logs one finished request at a level picked from its status code:
// server errors go to Sentry, client errors are warnings
func LogAPIRequest(c *gin.Context, duration time.Duration, statusCode int, fields Fields) {
	if fields == nil {
		fields = Fields{}
	}
	for k, v := range WithContext(c) {
		fields[k] = v
	}
	fields["duration_ms"] = duration.Milliseconds()
	fields["status_code"] = statusCode
	fields["client_ip"] = c.ClientIP()

	switch {
	case statusCode >= 500:
		Error("Request failed with server error", fmt.Errorf("%s %s: status %d", c.Request.Method, c.Request.URL.Path, statusCode), fields)
	case statusCode >= 400:
		Warn("Request failed with client error", fields)
	default:
		Info("Request completed", fields)
	}
}

// LogComposition logs the outcome of one composition and records it on the active span
func LogComposition(ctx context.Context, sentiment string, duration time.Duration, tracks int, fields Fields) {
	if fields == nil {
		fields = Fields{}
	}

	fields["sentiment"] = sentiment
	fields["duration_ms"] = duration.Milliseconds()
	fields["tracks"] = tracks

	Info("Composition completed", fields)

	if span := sentry.SpanFromContext(ctx); span != nil {
		span.SetData("duration_ms", duration.Milliseconds())
		span.SetData("tracks", tracks)
	}
}

func breadcrumb(kind string, level sentry.Level, msg string, fields Fields) {
	if hub := sentry.CurrentHub(); hub.Client() != nil {
		sentry.AddBreadcrumb(&sentry.Breadcrumb{
			Type:     kind,
			Category: "log",
			Message:  msg,
			Data:     convertFieldsToMap(fields),
			Level:    level,
		})
	}
}

func applyScope(scope *sentry.Scope, fields Fields) {
	for key, value := range fields {
		scope.SetContext(key, map[string]interface{}{
			"value": value,
		})
	}
	for _, tag := range sentryTags {
		if v, ok := fields[tag]; ok {
			scope.SetTag(tag, formatValue(v))
		}
	}
}

// formatFields renders fields as {k=v, ...} with keys in sorted order
func formatFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(formatValue(fields[k]))
	}
	b.WriteByte('}')
	return b.String()
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return fmt.Sprintf("%d", val)
	case int64:
		return fmt.Sprintf("%d", val)
	case float64:
		return fmt.Sprintf("%.2f", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

func convertFieldsToMap(fields Fields) map[string]interface{} {
	result := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		result[k] = v
	}
	return result
}
