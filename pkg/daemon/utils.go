package daemon

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ginLogger routes gin access logs through logrus. Successful requests log
// at debug so a healthy daemon stays quiet.
func ginLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Handlers may rewrite the path, keep the original.
		path := c.Request.URL.Path
		start := time.Now()
		c.Next()
		latencyMs := time.Since(start).Milliseconds()

		status := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"statusCode": status,
			"latencyMs":  latencyMs,
			"method":     c.Request.Method,
			"path":       path,
		})

		if len(c.Errors) > 0 {
			entry.Error(c.Errors.ByType(gin.ErrorTypePrivate).String())
			return
		}

		msg := fmt.Sprintf("%s %s %d (%dms)", c.Request.Method, path, status, latencyMs)
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error(msg)
		case status >= http.StatusBadRequest:
			entry.Warn(msg)
		default:
			entry.Debug(msg)
		}
	}
}
