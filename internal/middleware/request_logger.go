package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sjperalta/smartdebt-api/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger logs every request with its latency and a request id
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		c.Next()

		// Skip health and metrics scrapes
		if path == "/api/v1/health" || path == "/metrics" {
			return
		}

		statusCode := c.Writer.Status()
		if raw != "" {
			path = path + "?" + raw
		}

		attrs := []any{
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", statusCode),
			slog.String("ip", c.ClientIP()),
			slog.Duration("latency", time.Since(start)),
		}
		if msg := c.Errors.ByType(gin.ErrorTypePrivate).String(); msg != "" {
			attrs = append(attrs, slog.String("error", msg))
		}
		if p := GetPrincipal(c); p != nil {
			attrs = append(attrs, slog.String("user", p.Username))
		}

		switch {
		case statusCode >= 500:
			logger.Log.Error("Incoming request", attrs...)
		case statusCode >= 400:
			logger.Log.Warn("Incoming request", attrs...)
		default:
			logger.Log.Info("Incoming request", attrs...)
		}
	}
}
