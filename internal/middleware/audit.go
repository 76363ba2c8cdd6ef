package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-console/pkg/middleware/requestid"
)

// Audit writes one structured log line per admin action once the request
// has been handled. Failed actions are logged too, at warn level.
func Audit(logger *zap.Logger, action, resource string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("audit")
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		fields := []zap.Field{
			zap.String("action", action),
			zap.String("resource", resource),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Int64("latency_ms", time.Since(start).Milliseconds()),
			zap.String("ip", c.ClientIP()),
		}
		if id := c.Param("id"); id != "" {
			fields = append(fields, zap.String("resource_id", id))
		}
		if shell := ShellFromContext(c); shell != nil {
			fields = append(fields, zap.String("workspace", shell.ID()), zap.String("role", shell.Session().Role()))
		}
		if reqID := requestid.Value(c); reqID != "" {
			fields = append(fields, zap.String("request_id", reqID))
		}

		if c.Writer.Status() >= 400 {
			logger.Warn("admin action failed", fields...)
			return
		}
		logger.Info("admin action", fields...)
	}
}
