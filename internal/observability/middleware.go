package observability

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RequestLogger logs one line per request. Codec errors stored on the context
// by handlers are attached as error_kind.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= 500 {
			event = logger.Error()
		} else if status >= 400 {
			event = logger.Warn()
		}

		if kind := c.GetString(ErrorKindKey); kind != "" {
			event = event.Str("error_kind", kind)
		}
		if v := c.Query("variant"); v != "" {
			event = event.Str("variant", v)
		}
		event.
			Str("method", c.Request.Method).
			Str("path", routePath(c)).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Int64("request_bytes", c.Request.ContentLength).
			Int("bytes", c.Writer.Size()).
			Msg("http_request")
	}
}

func RequestMetricsMiddleware(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		RecordHTTPRequest(service, c.Request.Method, routePath(c), c.Writer.Status(), time.Since(start))
	}
}

// ErrorKindKey is the gin context key handlers use to report a codec error kind.
const ErrorKindKey = "pals.error_kind"

func routePath(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return path
	}
	return c.Request.URL.Path
}
