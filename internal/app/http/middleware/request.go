package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"artist-media/internal/ctxlog"

	"github.com/gin-gonic/gin"
)

// RequestLogger puts a request-scoped logger on the request context and logs
// one line per request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLogger := logger.With("method", c.Request.Method, "path", c.Request.URL.Path)
		c.Request = c.Request.WithContext(ctxlog.WithLogger(c.Request.Context(), reqLogger))

		c.Next()

		reqLogger.Info("Request handled.", "status", c.Writer.Status(), "duration", time.Since(start))
	}
}

// LimitBody caps request bodies at n bytes.
func LimitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}
